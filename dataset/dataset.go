// Package dataset registers columnar data files with an embedded DuckDB
// database and maintains the derived views the table viewer reads from.
//
// Two related datasets are expected: an observation-level table and a
// cell-level table sharing the observation_id join key. Each dataset is
// fetched as a Parquet file and registered under its name; the viewer then
// queries derived subset views scoped by the active filter.
package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// JoinKey is the field relating the cell-level dataset to the
// observation-level dataset.
const JoinKey = "observation_id"

// Source names one columnar data file to register.
type Source struct {
	// Name is the view name the dataset is registered under.
	// REQUIRED: MUST be non-empty and unique within the registry.
	Name string

	// URL locates the Parquet file. http(s) URLs are fetched; anything
	// else is treated as a local path.
	// REQUIRED: MUST be non-empty.
	URL string
}

// Registry registers datasets with a DuckDB database and owns the
// derived-view DDL. Not goroutine-safe for concurrent Register calls;
// query methods are safe once registration completed.
type Registry struct {
	db     *sql.DB
	client *http.Client
	logger *slog.Logger
	dir    string
}

// Option configures a Registry.
type Option func(*Registry)

// WithHTTPClient sets the client used to fetch http(s) sources.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Registry) { r.client = c }
}

// WithLogger sets the registry logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithScratchDir sets the directory fetched files are stored in.
// Defaults to the OS temp directory.
func WithScratchDir(dir string) Option {
	return func(r *Registry) { r.dir = dir }
}

// NewRegistry creates a registry over an open DuckDB database.
func NewRegistry(db *sql.DB, opts ...Option) *Registry {
	r := &Registry{
		db:     db,
		client: http.DefaultClient,
		logger: slog.Default(),
		dir:    os.TempDir(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DB exposes the underlying database for query execution.
func (r *Registry) DB() *sql.DB {
	return r.db
}

// Register fetches all sources and registers each as a named view.
//
// Fetches run concurrently with no ordering dependency between them; all
// must complete before registration. Any failure aborts the whole
// registration, there is no partial-failure recovery.
func (r *Registry) Register(ctx context.Context, sources ...Source) error {
	for _, src := range sources {
		if src.Name == "" || src.URL == "" {
			return fmt.Errorf("dataset: source needs both name and url, got %+v", src)
		}
	}

	paths := make([]string, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			path, err := r.fetch(gctx, src)
			if err != nil {
				return fmt.Errorf("dataset %q: %w", src.Name, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, src := range sources {
		ddl := fmt.Sprintf(`CREATE OR REPLACE VIEW %s AS SELECT * FROM read_parquet('%s')`,
			quoteIdent(src.Name), escapeLiteral(paths[i]))
		if _, err := r.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("dataset %q: register: %w", src.Name, err)
		}
		r.logger.Info("dataset registered", "name", src.Name, "path", paths[i])
	}
	return nil
}

// fetch resolves a source to a local file path, downloading if needed.
func (r *Registry) fetch(ctx context.Context, src Source) (string, error) {
	if !strings.HasPrefix(src.URL, "http://") && !strings.HasPrefix(src.URL, "https://") {
		if _, err := os.Stat(src.URL); err != nil {
			return "", fmt.Errorf("stat: %w", err)
		}
		return src.URL, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch: unexpected status %s", resp.Status)
	}

	path := filepath.Join(r.dir, src.Name+".parquet")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	r.logger.Debug("dataset fetched", "name", src.Name, "bytes", n)

	return path, nil
}

// quoteIdent renders a SQL identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// escapeLiteral renders the inside of a single-quoted SQL string.
func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, `'`, `''`)
}
