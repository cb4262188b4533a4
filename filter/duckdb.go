package filter

import "strings"

// Clause encodes one filter as a DuckDB SQL condition.
//
// Categorical values are interpolated without quote escaping; see the
// package trust boundary note.
func Clause(f Filter) string {
	switch f := f.(type) {
	case Range:
		return `"` + f.Name + `" BETWEEN ` + formatNumber(f.Min) + ` AND ` + formatNumber(f.Max)
	case Categorical:
		quoted := make([]string, len(f.Values))
		for i, v := range f.Values {
			quoted[i] = "'" + v + "'"
		}
		return `"` + f.Name + `" IN (` + strings.Join(quoted, ", ") + `)`
	default:
		return ""
	}
}

// Where encodes a filter list as a WHERE clause body, one parenthesized
// condition per filter, AND-combined. Empty list yields "".
func Where(fs Filters) string {
	if len(fs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(fs))
	for _, f := range fs {
		if c := Clause(f); c != "" {
			parts = append(parts, c)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, ") AND (") + ")"
}

// Query builds the filtered SELECT over the named base view. The second
// return is false when fs is empty: "no filter" is an absence, not an
// empty query string, and callers must fall back to the unfiltered view.
func Query(base string, fs Filters) (string, bool) {
	w := Where(fs)
	if w == "" {
		return "", false
	}
	return `SELECT * FROM "` + base + `" WHERE ` + w, true
}
