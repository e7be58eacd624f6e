// Package pkg provides the libraries behind conceptmap, a layout engine for
// concept maps.
//
// # Overview
//
// A concept map is a set of concepts joined by labeled relations
// ("Fotosíntesis" requiere "Luz solar"). conceptmap places the concepts on a
// fixed number of horizontal levels below a root and keeps the relations
// that join adjacent levels, so the map reads top to bottom.
//
// The typical data flow:
//
//	JSON/YAML graph, stored map or generated map
//	         ↓
//	    [concept] package (decode and normalize)
//	         ↓
//	    [layout] package (root, levels, x/y positions, kept edges)
//	         ↓
//	    [render] package (SVG, DOT, Graphviz SVG, layout JSON)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/conceptmap/pkg/concept"
//	    "github.com/matzehuels/conceptmap/pkg/layout"
//	    "github.com/matzehuels/conceptmap/pkg/render"
//	)
//
//	doc, _ := concept.ReadDocumentFile("fotosintesis.json")
//	res := layout.Compute(doc.Map, 3)
//	svg := render.RenderSVG(res, render.WithSize(1000, 700))
//
// # Main Packages
//
// [concept] - Graph and document types with their JSON and YAML codecs.
//
// [layout] - The layout algorithm: root selection, bounded breadth-first
// leveling, per-level positioning and edge filtering. Coordinates are
// percentages of the frame.
//
// [render] - Output formats for a computed layout.
//
// [analysis] - Structural diagnostics (components, cycles, PageRank,
// crossings) for the inspect command.
//
// [pipeline] - Load → layout → render with caching, shared by the CLI and
// the HTTP server.
//
// [cache] - Content-addressed cache with file, Redis and no-op backends.
//
// [store] - Persistence for named maps, on disk or in MongoDB.
//
// [generate] - Concept map generation through an OpenAI-compatible API.
//
// [config], [errors], [observability] and [buildinfo] carry configuration,
// coded errors, hooks and version information.
//
// [concept]: https://pkg.go.dev/github.com/matzehuels/conceptmap/pkg/concept
// [layout]: https://pkg.go.dev/github.com/matzehuels/conceptmap/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/conceptmap/pkg/render
// [analysis]: https://pkg.go.dev/github.com/matzehuels/conceptmap/pkg/analysis
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/conceptmap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/conceptmap/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/conceptmap/pkg/store
// [generate]: https://pkg.go.dev/github.com/matzehuels/conceptmap/pkg/generate
// [config]: https://pkg.go.dev/github.com/matzehuels/conceptmap/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/conceptmap/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/conceptmap/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/conceptmap/pkg/buildinfo
package pkg
