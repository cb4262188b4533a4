// Package quaklas provides an embeddable browser viewer for paired
// observation and cell datasets backed by DuckDB.
//
// The quaklas package serves two linked table views over Parquet data:
//   - Registering page and API handlers on an existing http.ServeMux
//   - Loading observation- and cell-level Parquet files into DuckDB views
//   - Translating widget SQL into filter state, URL query params and back
//   - Scoping the cell-level view to the current observation filter
//   - Streaming results as JSON or zstd-compressed Arrow IPC
//
// # Quick Start
//
// Serve a viewer over two Parquet files in under 30 lines:
//
//	package main
//
//	import (
//	    "context"
//	    "database/sql"
//	    "log"
//	    "net/http"
//
//	    _ "github.com/duckdb/duckdb-go/v2"
//
//	    "github.com/manzt/quaklas"
//	    "github.com/manzt/quaklas/dataset"
//	)
//
//	func main() {
//	    db, err := sql.Open("duckdb", "")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    mux := http.NewServeMux()
//	    err = quaklas.NewServer(context.Background(), mux, quaklas.ServerConfig{
//	        Registry:     dataset.NewRegistry(db),
//	        Observations: dataset.Source{Name: "obs", URL: "https://example.com/obs.parquet"},
//	        Cells:        dataset.Source{Name: "cells", URL: "https://example.com/cells.parquet"},
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    log.Fatal(http.ListenAndServe(":8080", mux))
//	}
//
// The observation view lives at "/" and the cell view at "/cells". Filter
// state travels in the URL query string, so any view can be shared by
// copying the address. Both datasets must expose the dataset.JoinKey
// column relating cells to their observation.
//
// # Filter Round Trips
//
// The filter subpackage converts between the three representations of
// filter state: DuckDB WHERE clauses emitted by the widget, structured
// filters, and URL query parameters. See the filter package documentation
// for the supported condition shapes.
//
// # Authentication
//
// Pass an auth.Authenticator in ServerConfig to gate every endpoint
// behind bearer tokens. With no authenticator all requests are allowed.
package quaklas
