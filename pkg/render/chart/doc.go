// Package chart draws family layouts as SVG at the coordinates the layout
// engine computed.
//
// Unlike the Graphviz renderer, nothing is laid out again: every box sits
// where the engine placed it, so the picture matches what an interactive
// host would show. Connectors are drawn first, then boxes, then labels.
//
//	svg := chart.RenderSVG(layout, chart.WithDetails(), chart.WithInteraction())
//
// # Options
//
//   - [WithStyle]: visual style (default [Simple])
//   - [WithPadding]: margin around the diagram (default 20)
//   - [WithDetails]: life years and age under each name
//   - [WithInteraction]: hover highlighting of a person's connectors
package chart
