package dataset

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/paulmach/orb"
)

// CellBounds returns the spatial extent of a cell view, read from its
// centroid coordinate columns. The second return is false when the view is
// empty or the coordinates are all NULL.
func (r *Registry) CellBounds(ctx context.Context, view, xCol, yCol string) (orb.Bound, bool, error) {
	q := fmt.Sprintf(`SELECT min(%[1]s), min(%[2]s), max(%[1]s), max(%[2]s) FROM %[3]s`,
		quoteIdent(xCol), quoteIdent(yCol), quoteIdent(view))

	var minX, minY, maxX, maxY sql.NullFloat64
	err := r.db.QueryRowContext(ctx, q).Scan(&minX, &minY, &maxX, &maxY)
	if err != nil {
		return orb.Bound{}, false, fmt.Errorf("dataset: bounds of %q: %w", view, err)
	}

	if !minX.Valid || !minY.Valid || !maxX.Valid || !maxY.Valid {
		return orb.Bound{}, false, nil
	}

	return orb.Bound{
		Min: orb.Point{minX.Float64, minY.Float64},
		Max: orb.Point{maxX.Float64, maxY.Float64},
	}, true, nil
}
