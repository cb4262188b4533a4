package filter

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
)

// rangeParamRe matches a serialized Range: two floats separated by a
// single space.
var rangeParamRe = regexp.MustCompile(`^(` + number + `) (` + number + `)$`)

// EncodeParams appends one query parameter per filter to params.
//
// A Range becomes "<min> <max>"; a Categorical becomes its space-joined
// values, quoted per QuoteTokens. Parameters are always appended, never
// overwritten: several filters on the same field produce several entries
// under the same key, and decoding relies on those multi-map semantics.
func EncodeParams(params url.Values, fs Filters) {
	for _, f := range fs {
		switch f := f.(type) {
		case Range:
			params.Add(f.Name, formatNumber(f.Min)+" "+formatNumber(f.Max))
		case Categorical:
			params.Add(f.Name, QuoteTokens(f.Values))
		}
	}
}

// DecodeParams rebuilds filters from URL query parameters.
//
// A value of the form "<number> <number>" decodes as a Range; anything
// else is tokenized into a Categorical. An empty parameter set decodes to
// nil ("no filter"), which callers must branch on to fall back to the
// unfiltered view.
//
// Keys are visited in sorted order so decoding is deterministic; entries
// under one key keep their order. Empty values are skipped.
func DecodeParams(params url.Values) Filters {
	if len(params) == 0 {
		return nil
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fs Filters
	for _, k := range keys {
		for _, raw := range params[k] {
			if m := rangeParamRe.FindStringSubmatch(raw); m != nil {
				lo, errLo := strconv.ParseFloat(m[1], 64)
				hi, errHi := strconv.ParseFloat(m[2], 64)
				if errLo == nil && errHi == nil {
					fs = append(fs, Range{Name: k, Min: lo, Max: hi})
					continue
				}
			}
			if values := Tokenize(raw); len(values) > 0 {
				fs = append(fs, Categorical{Name: k, Values: values})
			}
		}
	}
	return fs
}

// formatNumber prints a float the way it appears in params and SQL.
// Integral values print without a fraction, so 10.0 round-trips as "10".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
