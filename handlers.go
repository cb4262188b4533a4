package quaklas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/manzt/quaklas/dataset"
	"github.com/manzt/quaklas/filter"
	"github.com/manzt/quaklas/internal/recovery"
	"github.com/manzt/quaklas/internal/serialize"
	"github.com/manzt/quaklas/sharelink"
)

// arrowMIME is the Arrow IPC stream media type the data endpoint negotiates.
const arrowMIME = "application/vnd.apache.arrow.stream"

// reservedParams are query parameters that are not filter fields.
var reservedParams = map[string]bool{
	sharelink.Param: true,
	"mode":          true,
	"limit":         true,
}

const (
	defaultLimit = 500
	maxLimit     = 5000
)

// filtersFromRequest reads filter state from a request's query parameters.
// Plain per-field parameters are canonical; a share token is consulted
// only when no plain parameters are present. No parameters means "no
// filter" (nil), never an error.
func filtersFromRequest(query url.Values) (filter.Filters, error) {
	fields := url.Values{}
	for k, vs := range query {
		if reservedParams[k] {
			continue
		}
		fields[k] = vs
	}

	if fs := filter.DecodeParams(fields); fs != nil {
		return fs, nil
	}
	return sharelink.Decode(query.Get(sharelink.Param))
}

// applyFilters redefines both subset views for the given filter set.
// Callers must hold s.mu unless running during setup.
func (s *Server) applyFilters(ctx context.Context, fs filter.Filters) error {
	if err := s.registry.ApplySubset(ctx, s.obs, fs); err != nil {
		return err
	}
	return s.registry.ApplyCellSubset(ctx, s.cells, s.obs)
}

// dataResponse is the JSON shape of the data endpoint.
type dataResponse struct {
	Mode    string       `json:"mode"`
	Columns []string     `json:"columns"`
	Rows    [][]any      `json:"rows"`
	Links   *columnLinks `json:"links,omitempty"`
}

// columnLinks carries rendered hyperlinks for one column, parallel to Rows.
type columnLinks struct {
	Column string   `json:"column"`
	Hrefs  []string `json:"hrefs"`
}

// handleData serves rows of the filtered view for either mode.
// JSON by default; Arrow IPC (optionally zstd-compressed) when requested
// via Accept / Accept-Encoding.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	mode := query.Get("mode")
	if mode == "" {
		mode = "observations"
	}
	var view string
	switch mode {
	case "observations":
		view = dataset.SubsetName(s.obs)
	case "cells":
		view = dataset.SubsetName(s.cells)
	default:
		http.Error(w, fmt.Sprintf("unknown mode %q", mode), http.StatusBadRequest)
		return
	}

	fs, err := filtersFromRequest(query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	limit := defaultLimit
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, fmt.Sprintf("invalid limit %q", raw), http.StatusBadRequest)
			return
		}
		limit = min(n, maxLimit)
	}

	table, err := s.queryView(ctx, view, fs, limit)
	if err != nil {
		s.logger.Error("data query failed", "view", view, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), arrowMIME) {
		s.writeArrow(w, r, table)
		return
	}

	resp := dataResponse{Mode: mode, Columns: table.Columns, Rows: table.Rows}
	if links, err := s.renderLinks(table); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	} else if links != nil {
		resp.Links = links
	}

	writeJSON(w, http.StatusOK, resp)
}

// queryView rebuilds the subset views for fs and reads up to limit rows.
func (s *Server) queryView(ctx context.Context, view string, fs filter.Filters, limit int) (*serialize.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.applyFilters(ctx, fs); err != nil {
		return nil, err
	}

	rows, err := s.registry.DB().QueryContext(ctx,
		fmt.Sprintf(`SELECT * FROM "%s" LIMIT %d`, view, limit))
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", view, err)
	}
	defer rows.Close()

	return serialize.ScanTable(rows)
}

// renderLinks applies the cell link hook to the configured column.
// Returns nil when the hook is disabled or the column is absent.
func (s *Server) renderLinks(table *serialize.Table) (*columnLinks, error) {
	if s.linkColumn == "" {
		return nil, nil
	}

	col := -1
	for i, name := range table.Columns {
		if name == s.linkColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, nil
	}

	hrefs := make([]string, len(table.Rows))
	for i, row := range table.Rows {
		value := fmt.Sprint(row[col])
		href, err := recovery.RecoverToValue(s.logger, "LinkFunc", func() (string, error) {
			return s.linkFunc(value), nil
		})
		if err != nil {
			return nil, err
		}
		hrefs[i] = href
	}
	return &columnLinks{Column: s.linkColumn, Hrefs: hrefs}, nil
}

// writeArrow streams a table as Arrow IPC, zstd-compressed when accepted.
func (s *Server) writeArrow(w http.ResponseWriter, r *http.Request, table *serialize.Table) {
	data, err := serialize.IPC(table, s.allocator)
	if err != nil {
		s.logger.Error("arrow serialization failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", arrowMIME)
	if strings.Contains(r.Header.Get("Accept-Encoding"), "zstd") {
		data = s.compressor.Compress(data)
		w.Header().Set("Content-Encoding", "zstd")
	}
	w.Write(data)
}

// queryResponse is the JSON shape of the live query notification endpoint.
type queryResponse struct {
	Params string `json:"params"`
	Token  string `json:"token"`
	Links  Links  `json:"links"`
}

// handleQuery receives the widget's live emitted SQL, extracts the filter
// state and responds with the canonical query string and shareable links.
// An unsupported condition is a hard error surfaced as 422 with the
// offending text.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req struct {
		SQL string `json:"sql"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "body must be JSON with a sql field", http.StatusBadRequest)
		return
	}

	fs, err := filter.Extract(req.SQL)
	var uce *filter.UnsupportedConditionError
	if errors.As(err, &uce) {
		http.Error(w, uce.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := url.Values{}
	filter.EncodeParams(params, fs)

	token, err := sharelink.Encode(fs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Params: params.Encode(),
		Token:  token,
		Links:  s.ViewLinks(fs),
	})
}

// boundsResponse is the JSON shape of the bounds endpoint.
type boundsResponse struct {
	Empty bool       `json:"empty"`
	Min   [2]float64 `json:"min,omitempty"`
	Max   [2]float64 `json:"max,omitempty"`
}

// handleBounds reports the spatial extent of the filtered cell set.
func (s *Server) handleBounds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	fs, err := filtersFromRequest(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.applyFilters(ctx, fs); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	bound, ok, err := s.registry.CellBounds(ctx, dataset.SubsetName(s.cells), s.cellCoords[0], s.cellCoords[1])
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, boundsResponse{Empty: true})
		return
	}

	writeJSON(w, http.StatusOK, boundsResponse{
		Min: [2]float64{bound.Min[0], bound.Min[1]},
		Max: [2]float64{bound.Max[0], bound.Max[1]},
	})
}

// handleHealth reports liveness and dataset registration state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts := map[string]int64{}
	for _, name := range []string{s.obs, s.cells} {
		n, err := s.registry.Count(ctx, name)
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
		counts[name] = n
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"datasets": counts,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
