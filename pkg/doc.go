// Package pkg provides the core libraries for Kintower family diagrams.
//
// # Overview
//
// Kintower lays out a family tree around one primary person: ancestors in
// rows above, descendants below, spouses and siblings beside the people they
// belong to. A display year greys out people not yet born and marriages not
// yet made. The pkg directory is organized into these areas:
//
//  1. [family] - People and their parent, child, sibling and spouse edges
//  2. [diagram] - The layout engine: nodes, groups, rows, connectors and the
//     controller that runs layout passes and the populate choreography
//  3. [graph] - Family and layout files (JSON and TOML)
//  4. [render] - DOT, Graphviz SVG, chart SVG, PNG and PDF output
//  5. [pipeline] - Orchestration (load → layout → render) with caching
//  6. [cache], [observability], [errors], [server] - Infrastructure
//
// # Architecture
//
//	family.json / family.toml
//	         ↓
//	    [graph] package (decode into a family.Graph)
//	         ↓
//	    [diagram] package (rows around the primary person, budgeted)
//	         ↓
//	    [graph] package (capture a serializable Layout)
//	         ↓
//	    [render] package (DOT / SVG / PNG / PDF)
//
// # Quick Start
//
//	g, _ := graph.ReadFamilyFile("family.json")
//	opts := pipeline.Options{Primary: "ada", Year: 1840, Formats: []string{"chart"}}
//	_ = opts.ValidateAndSetDefaults()
//	l, _ := pipeline.GenerateLayout(g, opts, nil)
//	artifacts, _ := pipeline.RenderLayout(ctx, l, opts)
//
// Or with caching:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	result, _ := runner.ExecuteFile(ctx, "family.json", opts)
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test -short ./pkg/...   # Skip tests that need Graphviz rendering
//	go test -run Example       # Examples only
//
// [family]: https://pkg.go.dev/github.com/matzehuels/kintower/pkg/family
// [diagram]: https://pkg.go.dev/github.com/matzehuels/kintower/pkg/diagram
// [graph]: https://pkg.go.dev/github.com/matzehuels/kintower/pkg/graph
// [render]: https://pkg.go.dev/github.com/matzehuels/kintower/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/kintower/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/kintower/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/kintower/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/kintower/pkg/errors
// [server]: https://pkg.go.dev/github.com/matzehuels/kintower/pkg/server
package pkg
