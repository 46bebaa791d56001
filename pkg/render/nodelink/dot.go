package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/kintower/pkg/graph"
)

const baseFontSize = 24.0

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds life years, age and classification to node labels.
	// When false, only the name is shown.
	Detailed bool
}

// ToDOT converts a layout to Graphviz DOT format.
// Each generation becomes a rank=same subgraph so Graphviz keeps rows
// intact. Filtered nodes are drawn dashed and grey, former marriages dashed,
// and marriages without arrowheads. Hidden nodes are left out.
func ToDOT(l graph.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")

	hidden := make(map[string]bool)
	for i, row := range l.Rows {
		fmt.Fprintf(&buf, "\n  subgraph row%d {\n    rank=same;\n", i)
		for _, g := range row.Groups {
			for _, n := range g.Nodes {
				if n.Hidden {
					hidden[n.ID] = true
					continue
				}
				fmt.Fprintf(&buf, "    %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts.Detailed), ", "))
			}
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, c := range l.Connectors {
		if hidden[c.From] || hidden[c.To] {
			continue
		}
		attrs := edgeAttrs(c)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", c.From, c.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", c.From, c.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	if !detailed {
		return n.Name
	}

	parts := []string{n.Name}
	if n.Years != "" {
		parts = append(parts, n.Years)
	}
	if n.Age != "" {
		parts = append(parts, "age: "+n.Age)
	}
	parts = append(parts, n.Class)
	return strings.Join(parts, "\n")
}

func nodeAttrs(n graph.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed))}
	if n.Scale > 0 && n.Scale != 1 {
		attrs = append(attrs, "fontsize="+strconv.FormatFloat(baseFontSize*n.Scale, 'f', 1, 64))
	}
	if n.Class == "primary" {
		attrs = append(attrs, "penwidth=3")
	}
	if n.Filtered {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=grey40")
	}
	return attrs
}

func edgeAttrs(c graph.Connector) []string {
	var attrs []string
	if c.Kind == "married" {
		attrs = append(attrs, "dir=none", "constraint=false")
		if c.Former {
			attrs = append(attrs, "style=dashed")
		} else {
			attrs = append(attrs, "style=bold")
		}
		if c.MarriedDate != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", marriageLabel(c)))
		}
	}
	if c.Filtered {
		attrs = append(attrs, "color=grey")
	}
	return attrs
}

func marriageLabel(c graph.Connector) string {
	if c.DivorcedDate != "" {
		return fmt.Sprintf("m. %s, div. %s", c.MarriedDate, c.DivorcedDate)
	}
	return "m. " + c.MarriedDate
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// render.ToPDF or render.ToPNG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
