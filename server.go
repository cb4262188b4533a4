package quaklas

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/manzt/quaklas/auth"
	"github.com/manzt/quaklas/dataset"
	"github.com/manzt/quaklas/internal/serialize"
)

// Server serves the two viewer modes and their data API.
//
// Filter state lives in derived DuckDB views shared by all requests;
// redefinition and the query reading from it run under one lock, so
// concurrent requests see a consistent subset.
type Server struct {
	registry   *dataset.Registry
	obs        string
	cells      string
	basePath   string
	linkColumn string
	linkFunc   func(string) string
	cellCoords [2]string
	allocator  memory.Allocator
	logger     *slog.Logger
	compressor *serialize.Compressor

	mu sync.Mutex
}

// NewServer fetches and registers both datasets and mounts viewer handlers
// on the provided mux. This is the main entry point for the quaklas package.
//
// The function:
//  1. Validates the ServerConfig
//  2. Fetches both datasets concurrently and registers them with DuckDB
//  3. Initializes the derived subset views (unfiltered)
//  4. Registers page and API handlers on mux
//
// Registration must complete before any query runs; a fetch or register
// failure aborts setup with an error, there is no retry. Does NOT start
// an HTTP server - user controls lifecycle via http.Server.
//
// Example:
//
//	mux := http.NewServeMux()
//	err := quaklas.NewServer(ctx, mux, quaklas.ServerConfig{
//	    Registry:     dataset.NewRegistry(db),
//	    Observations: dataset.Source{Name: "obs", URL: obsURL},
//	    Cells:        dataset.Source{Name: "cells", URL: cellsURL},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", mux)
func NewServer(ctx context.Context, mux *http.ServeMux, config ServerConfig) error {
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	logger := config.Logger
	if logger == nil && config.LogLevel != nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: *config.LogLevel}))
	}
	if logger == nil {
		logger = slog.Default()
	}

	allocator := config.Allocator
	if allocator == nil {
		allocator = memory.DefaultAllocator
	}

	cellCoords := config.CellCoords
	if cellCoords == [2]string{} {
		cellCoords = [2]string{"x", "y"}
	}

	if err := config.Registry.Register(ctx, config.Observations, config.Cells); err != nil {
		return fmt.Errorf("register datasets: %w", err)
	}

	s := &Server{
		registry:   config.Registry,
		obs:        config.Observations.Name,
		cells:      config.Cells.Name,
		basePath:   config.BasePath,
		linkColumn: config.LinkColumn,
		linkFunc:   config.LinkFunc,
		cellCoords: cellCoords,
		allocator:  allocator,
		logger:     logger,
	}

	// Start with the unfiltered subsets so the views always exist.
	if err := s.applyFilters(ctx, nil); err != nil {
		return fmt.Errorf("initialize views: %w", err)
	}

	compressor, err := serialize.NewCompressor()
	if err != nil {
		return err
	}
	s.compressor = compressor

	s.mount(mux, config.Auth)

	logger.Info("quaklas viewer registered",
		"observations", s.obs,
		"cells", s.cells,
		"base_path", s.basePath,
		"has_auth", config.Auth != nil,
	)
	return nil
}

// validateConfig checks that required ServerConfig fields are valid.
func validateConfig(config ServerConfig) error {
	if config.Registry == nil {
		return fmt.Errorf("registry is required")
	}
	if config.Observations.Name == "" || config.Observations.URL == "" {
		return fmt.Errorf("observations source is required")
	}
	if config.Cells.Name == "" || config.Cells.URL == "" {
		return fmt.Errorf("cells source is required")
	}
	if config.Observations.Name == config.Cells.Name {
		return fmt.Errorf("datasets need distinct names")
	}
	if config.LinkColumn != "" && config.LinkFunc == nil {
		return fmt.Errorf("LinkFunc is required when LinkColumn is set")
	}
	return nil
}

// mount registers all handlers under the base path.
func (s *Server) mount(mux *http.ServeMux, authenticator auth.Authenticator) {
	wrap := func(h http.Handler) http.Handler {
		return auth.Middleware(authenticator, h)
	}

	mux.Handle("GET "+s.basePath+"/{$}", wrap(http.HandlerFunc(s.handleObservationsPage)))
	mux.Handle("GET "+s.basePath+"/cells", wrap(http.HandlerFunc(s.handleCellsPage)))
	mux.Handle("GET "+s.basePath+"/api/data", wrap(http.HandlerFunc(s.handleData)))
	mux.Handle("POST "+s.basePath+"/api/query", wrap(http.HandlerFunc(s.handleQuery)))
	mux.Handle("GET "+s.basePath+"/api/bounds", wrap(http.HandlerFunc(s.handleBounds)))
	mux.Handle("GET "+s.basePath+"/api/health", wrap(http.HandlerFunc(s.handleHealth)))
}
