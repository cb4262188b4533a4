package quaklas

import (
	"html/template"
	"net/http"
)

// pageTemplate is the minimal embedding page. The table widget is an
// external collaborator: it reads rows from the data endpoint, and posts
// its live generated SQL to the query endpoint whenever the user changes
// filter state so the share links stay current.
var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
<nav>
  <a id="link-observations" href="{{.Links.Observations}}">observations</a>
  <a id="link-cells" href="{{.Links.Cells}}">cells</a>
</nav>
<div id="grid"
     data-mode="{{.Mode}}"
     data-endpoint="{{.BasePath}}/api/data"
     data-notify="{{.BasePath}}/api/query"></div>
<script type="module" src="{{.BasePath}}/assets/widget.js"></script>
</body>
</html>
`))

// pageData feeds pageTemplate.
type pageData struct {
	Title    string
	Mode     string
	BasePath string
	Links    Links
}

// servePage renders one viewer mode, carrying the request's filter state
// into the mode links so switching modes keeps the current filter.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request, mode, title string) {
	fs, err := filtersFromRequest(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = pageTemplate.Execute(w, pageData{
		Title:    title,
		Mode:     mode,
		BasePath: s.basePath,
		Links:    s.ViewLinks(fs),
	})
	if err != nil {
		s.logger.Error("page render failed", "mode", mode, "error", err)
	}
}

func (s *Server) handleObservationsPage(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, "observations", "Observations: "+s.obs)
}

func (s *Server) handleCellsPage(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, "cells", "Cells: "+s.cells)
}
