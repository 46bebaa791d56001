package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/kintower/pkg/graph"
)

func testLayout() graph.Layout {
	return graph.Layout{
		Primary: "ada",
		Rows: []graph.Row{
			{Groups: []graph.Group{
				{Nodes: []graph.Node{{ID: "george", Name: "George Byron", Class: "related", Scale: 0.9}}},
				{Nodes: []graph.Node{{ID: "annabella", Name: "Annabella", Class: "related", Scale: 0.9}}},
			}},
			{Groups: []graph.Group{
				{Nodes: []graph.Node{{ID: "william", Name: "William", Class: "spouse", Scale: 0.8}}},
				{Nodes: []graph.Node{{ID: "ada", Name: "Ada", Class: "primary", Scale: 1, Years: "1815 - 1852", Age: "14"}}},
			}},
			{Groups: []graph.Group{
				{Nodes: []graph.Node{{ID: "byron", Name: "Byron", Class: "related", Scale: 1, Filtered: true}}},
			}},
		},
		Connectors: []graph.Connector{
			{From: "ada", To: "william", Kind: "married", Married: true, MarriedDate: "1835"},
			{From: "george", To: "ada", Kind: "child"},
			{From: "ada", To: "byron", Kind: "child", Filtered: true},
			{From: "george", To: "annabella", Kind: "married", Former: true, MarriedDate: "1815", DivorcedDate: "1816"},
		},
	}
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(testLayout(), Options{})

	for _, want := range []string{
		"digraph G",
		"subgraph row0 {\n    rank=same;",
		"subgraph row2",
		`"ada" [label="Ada", penwidth=3]`,
		`"george" -> "ada";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "1815 - 1852") {
		t.Error("ToDOT() simple output should not contain life years")
	}
}

func TestToDOT_RowsKeepOrder(t *testing.T) {
	dot := ToDOT(testLayout(), Options{})
	g, w, a, b := strings.Index(dot, `"george" [`), strings.Index(dot, `"william" [`), strings.Index(dot, `"ada" [`), strings.Index(dot, `"byron" [`)
	if !(g < w && w < a && a < b) {
		t.Errorf("node order = %d %d %d %d", g, w, a, b)
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(testLayout(), Options{Detailed: true})

	if !strings.Contains(dot, `label="Ada\n1815 - 1852\nage: 14\nprimary"`) {
		t.Errorf("ToDOT() detailed output missing years and age:\n%s", dot)
	}
}

func TestToDOT_Edges(t *testing.T) {
	dot := ToDOT(testLayout(), Options{})

	tests := []struct {
		name string
		want string
	}{
		{"current marriage", `"ada" -> "william" [dir=none, constraint=false, style=bold, label="m. 1835"]`},
		{"former marriage", `"george" -> "annabella" [dir=none, constraint=false, style=dashed, label="m. 1815, div. 1816"]`},
		{"filtered child", `"ada" -> "byron" [color=grey]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(dot, tt.want) {
				t.Errorf("missing %s", tt.want)
			}
		})
	}
}

func TestToDOT_Filtered(t *testing.T) {
	dot := ToDOT(testLayout(), Options{})
	if !strings.Contains(dot, `"byron" [label="Byron", style="rounded,filled,dashed", fillcolor=lightgrey, fontcolor=grey40]`) {
		t.Errorf("filtered node not styled:\n%s", dot)
	}
	if !strings.Contains(dot, `"george" [label="George Byron", fontsize=21.6]`) {
		t.Errorf("scaled node missing font size:\n%s", dot)
	}
}

func TestToDOT_Hidden(t *testing.T) {
	l := testLayout()
	l.Rows[2].Groups[0].Nodes[0].Hidden = true

	dot := ToDOT(l, Options{})
	if strings.Contains(dot, `"byron"`) {
		t.Errorf("hidden node or its edges rendered:\n%s", dot)
	}
}

func TestToDOT_Empty(t *testing.T) {
	dot := ToDOT(graph.Layout{}, Options{})
	if dot != "digraph G {\n  rankdir=TB;\n  bgcolor=\"transparent\";\n  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n  ranksep=0.5;\n  nodesep=0.3;\n\n}\n" {
		t.Errorf("unexpected empty output:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("normalizeViewBox() should leave SVG without viewBox untouched")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testLayout(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	s := string(svg)
	if !strings.Contains(s, "<svg") || !strings.Contains(s, "Annabella") {
		t.Errorf("unexpected SVG output: %.200s", s)
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("expected error for invalid DOT")
	}
}
