package quaklas

import (
	"net/url"

	"github.com/manzt/quaklas/filter"
)

// Links are the two shareable mode URLs for one filter state.
type Links struct {
	// Observations is the observation-level view link.
	Observations string `json:"observations"`

	// Cells is the cell-level view link, scoped to the same observation
	// filter via the "/cells" path suffix.
	Cells string `json:"cells"`
}

// ViewLinks builds the shareable links for a filter set. With no filters
// the links carry no query string and address the unfiltered views.
func (s *Server) ViewLinks(fs filter.Filters) Links {
	params := url.Values{}
	filter.EncodeParams(params, fs)

	suffix := ""
	if q := params.Encode(); q != "" {
		suffix = "?" + q
	}

	return Links{
		Observations: s.basePath + "/" + suffix,
		Cells:        s.basePath + "/cells" + suffix,
	}
}
