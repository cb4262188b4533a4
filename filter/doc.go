// Package filter provides the predicate codec between table-widget SQL,
// structured filter values, and URL query parameters.
//
// The grid widget emits a full SELECT statement whenever the user changes
// filter state. This package understands exactly the predicate shapes that
// widget generates and nothing more:
//   - null-safe equality: "field" IS NOT DISTINCT FROM 'value'
//   - numeric intervals:  "field" BETWEEN 10 AND 20
//   - value lists:        "field" IN ('a', 'b')
//
// Parsed conditions become a closed tagged-variant set (Range | Categorical)
// so the rest of the application never touches SQL text directly, and the
// upstream predicate format can change without touching anything outside
// this package.
//
// # Basic Usage
//
// Parse the WHERE clause of widget-emitted SQL:
//
//	fs, err := filter.Extract(sql)
//	if err != nil {
//	    return err // unsupported condition
//	}
//
//	// Mirror the filter state into a shareable URL
//	params := url.Values{}
//	filter.EncodeParams(params, fs)
//
// Rebuild a query from a shared link:
//
//	fs := filter.DecodeParams(r.URL.Query())
//	q, ok := filter.Query("observations", fs)
//	if !ok {
//	    // no filter present, fall back to the unfiltered view
//	}
//
// # Round Trips
//
// The three directions are mutually consistent: extracting the SQL built by
// Query, and decoding the parameters written by EncodeParams, both
// reproduce an equivalent filter list (same fields, kinds and values, up to
// numeric formatting). Parameter keys decode in sorted order; entries under
// one key keep their order, and repeated keys produce repeated filters.
//
// # Trust Boundary
//
// Categorical values are interpolated into SQL without quote escaping. The
// values are expected to come from links this application generated itself;
// do not feed attacker-controlled parameters into Query.
package filter
