package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quaklas.yaml")
	err := os.WriteFile(path, []byte(`
listen: ":9000"
database: atlas.db
observations:
  name: obs
  url: https://example.com/obs.parquet
cells:
  name: cells
  url: https://example.com/cells.parquet
link:
  column: observation_id
  url: https://atlas.example/obs/%s
tokens:
  secret: alice
log_level: debug
`), 0o600)
	if err != nil {
		t.Fatal(err)
	}

	config, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if config.Listen != ":9000" {
		t.Errorf("listen = %q", config.Listen)
	}
	if config.Observations.Name != "obs" || config.Cells.URL != "https://example.com/cells.parquet" {
		t.Errorf("sources = %+v / %+v", config.Observations, config.Cells)
	}
	if config.Link.Column != "observation_id" {
		t.Errorf("link column = %q", config.Link.Column)
	}
	if config.Tokens["secret"] != "alice" {
		t.Errorf("tokens = %v", config.Tokens)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quaklas.yaml")
	if err := os.WriteFile(path, []byte("observations:\n  name: obs\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	config, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if config.Listen != ":8080" {
		t.Errorf("listen = %q, want :8080", config.Listen)
	}
}

func TestParseLevel(t *testing.T) {
	level, err := parseLevel("")
	if err != nil || level != slog.LevelInfo {
		t.Errorf("empty level = %v, %v", level, err)
	}

	level, err = parseLevel("warn")
	if err != nil || level != slog.LevelWarn {
		t.Errorf("warn = %v, %v", level, err)
	}

	if _, err := parseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
