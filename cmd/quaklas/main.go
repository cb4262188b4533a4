// Command quaklas serves a quaklas viewer described by a YAML config file.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"gopkg.in/yaml.v3"

	"github.com/manzt/quaklas"
	"github.com/manzt/quaklas/auth"
	"github.com/manzt/quaklas/dataset"
)

type fileConfig struct {
	// Listen is the address the HTTP server binds to.
	Listen string `yaml:"listen"`

	// Database is the DuckDB database path. Empty means in-memory.
	Database string `yaml:"database"`

	// BasePath is the URL prefix the viewer is mounted under.
	BasePath string `yaml:"base_path"`

	Observations sourceConfig `yaml:"observations"`
	Cells        sourceConfig `yaml:"cells"`

	// Link renders one column of data responses as hyperlinks.
	Link struct {
		Column string `yaml:"column"`
		// URL is a format string; the cell value replaces %s.
		URL string `yaml:"url"`
	} `yaml:"link"`

	// CellCoords names the centroid coordinate columns, default x and y.
	CellCoords []string `yaml:"cell_coords"`

	// Tokens lists accepted bearer tokens as token: identity pairs.
	// Empty means no authentication.
	Tokens map[string]string `yaml:"tokens"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

type sourceConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

func loadConfig(path string) (*fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &fileConfig{
		Listen: ":8080",
	}
	if err := yaml.Unmarshal(raw, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return config, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func main() {
	configPath := flag.String("config", "quaklas.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "quaklas:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	config, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	level, err := parseLevel(config.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	db, err := sql.Open("duckdb", config.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverConfig := quaklas.ServerConfig{
		Registry:     dataset.NewRegistry(db, dataset.WithLogger(logger)),
		Observations: dataset.Source{Name: config.Observations.Name, URL: config.Observations.URL},
		Cells:        dataset.Source{Name: config.Cells.Name, URL: config.Cells.URL},
		BasePath:     config.BasePath,
		Logger:       logger,
	}

	if config.Link.Column != "" {
		format := config.Link.URL
		serverConfig.LinkColumn = config.Link.Column
		serverConfig.LinkFunc = func(value string) string {
			return fmt.Sprintf(format, value)
		}
	}

	if len(config.CellCoords) == 2 {
		serverConfig.CellCoords = [2]string{config.CellCoords[0], config.CellCoords[1]}
	} else if len(config.CellCoords) != 0 {
		return fmt.Errorf("cell_coords needs exactly two columns, got %d", len(config.CellCoords))
	}

	if len(config.Tokens) > 0 {
		tokens := config.Tokens
		serverConfig.Auth = auth.BearerAuth(func(token string) (string, error) {
			identity, ok := tokens[token]
			if !ok {
				return "", quaklas.ErrUnauthorized
			}
			return identity, nil
		})
	}

	mux := http.NewServeMux()
	if err := quaklas.NewServer(ctx, mux, serverConfig); err != nil {
		return err
	}

	server := &http.Server{
		Addr:    config.Listen,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", config.Listen)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
