// Package nodelink renders family layouts as Graphviz node-link diagrams.
//
// # Overview
//
// Every generation of a layout becomes a rank=same subgraph, so Graphviz
// keeps parents above children while routing the edges itself. Parent to
// child edges are arrows; marriages are undirected, bold when current and
// dashed when former.
//
// # Usage
//
//	dot := nodelink.ToDOT(layout, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Detailed: labels include life years, age at the display year and the
//     node classification
//
// Nodes filtered by the display year are drawn dashed on a grey fill.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
