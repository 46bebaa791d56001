// Package render turns serialized family layouts into pictures.
//
// # Overview
//
// Two renderers consume a graph.Layout:
//
//   - [nodelink]: Graphviz DOT with one rank per generation, laid out again
//     by Graphviz
//   - [chart]: SVG drawn directly from the layout's own coordinates
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg):
//
//	svg := chart.RenderSVG(layout)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/kintower/pkg/render/nodelink
// [chart]: github.com/matzehuels/kintower/pkg/render/chart
package render
