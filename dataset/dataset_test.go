package dataset

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/manzt/quaklas/filter"
)

// openTestDB opens an in-memory DuckDB database.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("DuckDB not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// writeTestParquet materializes sample observation and cell data as Parquet
// files and returns their paths.
func writeTestParquet(t *testing.T, db *sql.DB) (obsPath, cellsPath string) {
	t.Helper()

	dir := t.TempDir()
	obsPath = filepath.Join(dir, "obs.parquet")
	cellsPath = filepath.Join(dir, "cells.parquet")

	_, err := db.Exec(`COPY (
		SELECT * FROM (VALUES
			('obs-1', 12.0, 'brain'),
			('obs-2', 30.0, 'liver'),
			('obs-3', 45.0, 'brain')
	) t(observation_id, age, organ)) TO '` + obsPath + `' (FORMAT PARQUET)`)
	if err != nil {
		t.Fatalf("write observations parquet: %v", err)
	}

	_, err = db.Exec(`COPY (
		SELECT * FROM (VALUES
			('obs-1', 'cell-1', 0.5, 1.5),
			('obs-1', 'cell-2', -2.0, 4.0),
			('obs-2', 'cell-3', 3.0, -1.0)
	) t(observation_id, cell_id, x, y)) TO '` + cellsPath + `' (FORMAT PARQUET)`)
	if err != nil {
		t.Fatalf("write cells parquet: %v", err)
	}
	return obsPath, cellsPath
}

// newTestRegistry registers the sample datasets from local files.
func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	db := openTestDB(t)
	obsPath, cellsPath := writeTestParquet(t, db)

	r := NewRegistry(db)
	err := r.Register(context.Background(),
		Source{Name: "obs", URL: obsPath},
		Source{Name: "cells", URL: cellsPath},
	)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return r
}

func TestRegisterFromFiles(t *testing.T) {
	r := newTestRegistry(t)

	n, err := r.Count(context.Background(), "obs")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("obs count = %d, want 3", n)
	}

	n, err = r.Count(context.Background(), "cells")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("cells count = %d, want 3", n)
	}
}

func TestRegisterFromHTTP(t *testing.T) {
	db := openTestDB(t)
	obsPath, _ := writeTestParquet(t, db)

	data, err := os.ReadFile(obsPath)
	if err != nil {
		t.Fatalf("read parquet: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	r := NewRegistry(db, WithScratchDir(t.TempDir()))
	err = r.Register(context.Background(), Source{Name: "remote_obs", URL: srv.URL + "/obs.parquet"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	n, err := r.Count(context.Background(), "remote_obs")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestRegisterFetchFailureAborts(t *testing.T) {
	db := openTestDB(t)
	obsPath, _ := writeTestParquet(t, db)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	r := NewRegistry(db, WithScratchDir(t.TempDir()))
	err := r.Register(context.Background(),
		Source{Name: "good", URL: obsPath},
		Source{Name: "bad", URL: srv.URL + "/missing.parquet"},
	)
	if err == nil {
		t.Fatal("expected registration to abort on fetch failure")
	}

	// Nothing was registered, not even the good source.
	if _, err := r.Count(context.Background(), "good"); err == nil {
		t.Error("expected no partial registration")
	}
}

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry(openTestDB(t))
	if err := r.Register(context.Background(), Source{Name: "", URL: "x"}); err == nil {
		t.Error("expected error for empty name")
	}
	if err := r.Register(context.Background(), Source{Name: "x", URL: ""}); err == nil {
		t.Error("expected error for empty url")
	}
}

func TestApplySubsetFiltered(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	fs := filter.Filters{filter.Range{Name: "age", Min: 10, Max: 35}}
	if err := r.ApplySubset(ctx, "obs", fs); err != nil {
		t.Fatalf("ApplySubset failed: %v", err)
	}

	n, err := r.Count(ctx, SubsetName("obs"))
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("subset count = %d, want 2", n)
	}
}

func TestApplySubsetUnfiltered(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	// No filters: the subset view is the full dataset.
	if err := r.ApplySubset(ctx, "obs", nil); err != nil {
		t.Fatalf("ApplySubset failed: %v", err)
	}

	n, err := r.Count(ctx, SubsetName("obs"))
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("subset count = %d, want 3", n)
	}
}

func TestApplyCellSubset(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	fs := filter.Filters{filter.Categorical{Name: "organ", Values: []string{"brain"}}}
	if err := r.ApplySubset(ctx, "obs", fs); err != nil {
		t.Fatalf("ApplySubset failed: %v", err)
	}
	if err := r.ApplyCellSubset(ctx, "cells", "obs"); err != nil {
		t.Fatalf("ApplyCellSubset failed: %v", err)
	}

	// obs-1 and obs-3 are brain; only obs-1 has cells (two of them).
	n, err := r.Count(ctx, SubsetName("cells"))
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("cell subset count = %d, want 2", n)
	}
}

func TestColumns(t *testing.T) {
	r := newTestRegistry(t)

	cols, err := r.Columns(context.Background(), "obs")
	if err != nil {
		t.Fatalf("Columns failed: %v", err)
	}
	want := []string{"observation_id", "age", "organ"}
	if !reflect.DeepEqual(cols, want) {
		t.Errorf("columns = %v, want %v", cols, want)
	}
}

func TestCellBounds(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	b, ok, err := r.CellBounds(ctx, "cells", "x", "y")
	if err != nil {
		t.Fatalf("CellBounds failed: %v", err)
	}
	if !ok {
		t.Fatal("expected bounds for non-empty view")
	}
	if b.Min[0] != -2.0 || b.Min[1] != -1.0 || b.Max[0] != 3.0 || b.Max[1] != 4.0 {
		t.Errorf("bounds = %v", b)
	}
}

func TestCellBoundsEmptyView(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	// Scope the cell subset to an observation filter matching nothing.
	fs := filter.Filters{filter.Categorical{Name: "organ", Values: []string{"none"}}}
	if err := r.ApplySubset(ctx, "obs", fs); err != nil {
		t.Fatalf("ApplySubset failed: %v", err)
	}
	if err := r.ApplyCellSubset(ctx, "cells", "obs"); err != nil {
		t.Fatalf("ApplyCellSubset failed: %v", err)
	}

	_, ok, err := r.CellBounds(ctx, SubsetName("cells"), "x", "y")
	if err != nil {
		t.Fatalf("CellBounds failed: %v", err)
	}
	if ok {
		t.Error("expected no bounds for empty view")
	}
}
