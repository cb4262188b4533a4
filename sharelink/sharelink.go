// Package sharelink encodes filter state as a compact URL-safe token.
//
// Long filter sets make unwieldy query strings; a token packs the whole
// filter list into a single "v" parameter. Plain per-field parameters
// remain the canonical encoding and win when both are present.
package sharelink

import (
	"encoding/base64"
	"fmt"

	"github.com/manzt/quaklas/filter"
	"github.com/manzt/quaklas/internal/msgpack"
)

// Param is the query parameter a token travels under.
const Param = "v"

// wireFilter is the token wire form of one filter.
type wireFilter struct {
	Field  string    `msgpack:"f"`
	Kind   string    `msgpack:"k"`
	Bounds []float64 `msgpack:"b,omitempty"`
	Values []string  `msgpack:"v,omitempty"`
}

// Encode packs a filter list into a URL-safe token.
// An empty list encodes to the empty string.
func Encode(fs filter.Filters) (string, error) {
	if len(fs) == 0 {
		return "", nil
	}

	wire := make([]wireFilter, 0, len(fs))
	for _, f := range fs {
		switch f := f.(type) {
		case filter.Range:
			wire = append(wire, wireFilter{
				Field:  f.Name,
				Kind:   string(filter.KindRange),
				Bounds: []float64{f.Min, f.Max},
			})
		case filter.Categorical:
			wire = append(wire, wireFilter{
				Field:  f.Name,
				Kind:   string(filter.KindCategorical),
				Values: f.Values,
			})
		default:
			return "", fmt.Errorf("sharelink: unknown filter kind %q", f.Kind())
		}
	}

	data, err := msgpack.Encode(wire)
	if err != nil {
		return "", fmt.Errorf("sharelink: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode unpacks a token back into a filter list.
// The empty token decodes to nil.
func Decode(token string) (filter.Filters, error) {
	if token == "" {
		return nil, nil
	}

	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("sharelink: invalid token: %w", err)
	}

	var wire []wireFilter
	if err := msgpack.Decode(data, &wire); err != nil {
		return nil, fmt.Errorf("sharelink: invalid token: %w", err)
	}

	fs := make(filter.Filters, 0, len(wire))
	for _, w := range wire {
		switch filter.Kind(w.Kind) {
		case filter.KindRange:
			if len(w.Bounds) != 2 {
				return nil, fmt.Errorf("sharelink: range %q needs two bounds, got %d", w.Field, len(w.Bounds))
			}
			fs = append(fs, filter.Range{Name: w.Field, Min: w.Bounds[0], Max: w.Bounds[1]})
		case filter.KindCategorical:
			if len(w.Values) == 0 {
				return nil, fmt.Errorf("sharelink: categorical %q has no values", w.Field)
			}
			fs = append(fs, filter.Categorical{Name: w.Field, Values: w.Values})
		default:
			return nil, fmt.Errorf("sharelink: unknown filter kind %q", w.Kind)
		}
	}
	return fs, nil
}
