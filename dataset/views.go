package dataset

import (
	"context"
	"fmt"

	"github.com/manzt/quaklas/filter"
)

// SubsetName returns the name of the filtered subset view derived from a
// base dataset.
func SubsetName(base string) string {
	return base + "_subset"
}

// ApplySubset redefines the subset view of base for the given filters.
// With no filters the subset view is the full dataset, so the viewer
// always reads from the same view name.
func (r *Registry) ApplySubset(ctx context.Context, base string, fs filter.Filters) error {
	q, ok := filter.Query(base, fs)
	if !ok {
		q = `SELECT * FROM ` + quoteIdent(base)
	}

	ddl := fmt.Sprintf(`CREATE OR REPLACE VIEW %s AS %s`, quoteIdent(SubsetName(base)), q)
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("dataset: subset view for %q: %w", base, err)
	}
	return nil
}

// ApplyCellSubset redefines the cell subset view: cells joined to the
// observation subset on the shared join key, so the cell-level view is
// scoped by the current observation filter.
func (r *Registry) ApplyCellSubset(ctx context.Context, cells, obs string) error {
	ddl := fmt.Sprintf(
		`CREATE OR REPLACE VIEW %s AS SELECT c.* FROM %s c JOIN %s o USING (%s)`,
		quoteIdent(SubsetName(cells)), quoteIdent(cells), quoteIdent(SubsetName(obs)), JoinKey,
	)
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("dataset: cell subset view for %q: %w", cells, err)
	}
	return nil
}

// Count returns the row count of a registered view.
func (r *Registry) Count(ctx context.Context, view string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM `+quoteIdent(view)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("dataset: count %q: %w", view, err)
	}
	return n, nil
}

// Columns returns the column names of a registered view, in table order.
func (r *Registry) Columns(ctx context.Context, view string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT column_name FROM (DESCRIBE `+quoteIdent(view)+`)`)
	if err != nil {
		return nil, fmt.Errorf("dataset: describe %q: %w", view, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("dataset: describe %q: %w", view, err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}
