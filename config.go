package quaklas

import (
	"errors"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/manzt/quaklas/auth"
	"github.com/manzt/quaklas/dataset"
)

// ServerConfig contains configuration for a quaklas viewer.
type ServerConfig struct {
	// Registry over an open DuckDB database.
	// REQUIRED: MUST NOT be nil.
	Registry *dataset.Registry

	// Observations is the observation-level dataset.
	// REQUIRED: Name and URL must be set.
	Observations dataset.Source

	// Cells is the cell-level dataset. Both datasets must expose the
	// dataset.JoinKey field relating cells to observations.
	// REQUIRED: Name and URL must be set.
	Cells dataset.Source

	// BasePath is the URL prefix handlers are mounted under.
	// OPTIONAL: Defaults to "". The cell-level view lives at
	// BasePath + "/cells".
	BasePath string

	// Auth provides authentication logic.
	// OPTIONAL: If nil, no authentication (all requests allowed).
	Auth auth.Authenticator

	// LinkColumn names the column whose cell values render as hyperlinks
	// in data responses.
	// OPTIONAL: Empty string disables the hook.
	LinkColumn string

	// LinkFunc maps a LinkColumn cell value to its target URL.
	// OPTIONAL: Required when LinkColumn is set.
	LinkFunc func(value string) string

	// CellCoords names the centroid coordinate columns of the cell
	// dataset, used by the bounds endpoint.
	// OPTIONAL: Defaults to ["x", "y"].
	CellCoords [2]string

	// Allocator for Arrow memory management.
	// OPTIONAL: Uses memory.DefaultAllocator if nil.
	Allocator memory.Allocator

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	// Note: If LogLevel is specified, a new logger will be created with that level.
	Logger *slog.Logger

	// LogLevel sets the logging level.
	// OPTIONAL: If nil, uses Info level.
	// If Logger is also provided, LogLevel is ignored (use pre-configured logger).
	LogLevel *slog.Level
}

// Standard errors returned by the quaklas package.
var (
	// ErrInvalidConfig indicates ServerConfig validation failed.
	ErrInvalidConfig = errors.New("invalid server config")

	// ErrUnauthorized indicates authentication failed.
	// Return this from Authenticator implementations for invalid tokens.
	ErrUnauthorized = errors.New("unauthorized")
)
