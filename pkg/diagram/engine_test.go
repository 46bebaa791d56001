package diagram

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/kintower/pkg/family"
)

// nuclear builds a primary person with parents, a full sibling, a paternal
// half-sibling, a current and a former spouse, and a paternal uncle.
func nuclear(t *testing.T) (*tree, map[string]*family.Person) {
	tr := newTree(t)
	ps := map[string]*family.Person{}
	for id, year := range map[string]int{
		"P": 1980, "mom": 1950, "dad": 1948, "B": 1982, "H": 1990,
		"S1": 1981, "F1": 1979, "U": 1945,
	} {
		ps[id] = tr.person(id, year)
	}
	tr.parents(ps["P"], ps["mom"], ps["dad"])
	tr.parents(ps["B"], ps["mom"], ps["dad"])
	tr.parents(ps["H"], ps["dad"])
	tr.marry(ps["P"], ps["S1"], family.Marriage{Married: family.Year(2010)})
	tr.marry(ps["P"], ps["F1"], family.Marriage{Former: true, Married: family.Year(2000), Divorced: family.Year(2005)})
	tr.marry(ps["mom"], ps["dad"], family.Marriage{Married: family.Year(1975)})
	tr.sibling(ps["dad"], ps["U"])
	return tr, ps
}

func TestCreatePrimaryRow(t *testing.T) {
	_, ps := nuclear(t)
	e := NewEngine(testOptions())

	row := e.CreatePrimaryRow(ps["P"], 1, 0.8)
	if row == nil {
		t.Fatal("CreatePrimaryRow returned nil")
	}

	want := [][]string{{"H", "B", "F1", "S1"}, {"P"}}
	if diff := cmp.Diff(want, groupIDs(row)); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}

	classes := map[string]Classification{
		"P": Primary, "S1": Spouse, "F1": Spouse, "B": Sibling, "H": HalfSiblingLeft,
	}
	for id, want := range classes {
		n := e.Node(ps[id])
		if n == nil {
			t.Fatalf("%s not placed", id)
		}
		if n.Class() != want {
			t.Errorf("%s class = %v, want %v", id, n.Class(), want)
		}
		wantScale := 0.8
		if id == "P" {
			wantScale = 1
		}
		if n.Scale() != wantScale {
			t.Errorf("%s scale = %v, want %v", id, n.Scale(), wantScale)
		}
	}

	wantEdges := []edge{
		{Married, "P", "S1", true},
		{Married, "P", "F1", false},
	}
	if diff := cmp.Diff(wantEdges, edges(e.Connectors())); diff != "" {
		t.Errorf("connectors mismatch (-want +got):\n%s", diff)
	}
}

func TestCreatePrimaryRowOmitsEmptyGroup(t *testing.T) {
	tr := newTree(t)
	p := tr.person("P", 1980)
	e := NewEngine(testOptions())

	row := e.CreatePrimaryRow(p, 1, 0.8)
	if row.Len() != 1 || row.NodeCount() != 1 {
		t.Errorf("row has %d groups and %d nodes, want 1 and 1", row.Len(), row.NodeCount())
	}
	if len(e.Connectors()) != 0 {
		t.Errorf("connectors = %d, want 0", len(e.Connectors()))
	}
	if e.CreatePrimaryRow(nil, 1, 0.8) != nil {
		t.Error("CreatePrimaryRow(nil) should return nil")
	}
}

func TestCreateParentRow(t *testing.T) {
	_, ps := nuclear(t)
	e := NewEngine(testOptions())
	row := e.CreatePrimaryRow(ps["P"], 1, 0.8)

	parents := e.Parents(row)
	if diff := cmp.Diff([]string{"mom", "dad"}, personIDs(parents)); diff != "" {
		t.Fatalf("Parents mismatch (-want +got):\n%s", diff)
	}

	up := e.CreateParentRow(parents, 0.9, 0.72)
	if up == nil {
		t.Fatal("CreateParentRow returned nil")
	}
	want := [][]string{{"mom"}, {"dad", "U"}}
	if diff := cmp.Diff(want, groupIDs(up)); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
	if n := e.Node(ps["U"]); n.Class() != Sibling || n.Scale() != 0.72 {
		t.Errorf("U = (%v, %v), want (sibling, 0.72)", n.Class(), n.Scale())
	}
	if n := e.Node(ps["dad"]); n.Class() != Related || n.Scale() != 0.9 {
		t.Errorf("dad = (%v, %v), want (related, 0.9)", n.Class(), n.Scale())
	}

	wantEdges := []edge{
		{Married, "P", "S1", true},
		{Married, "P", "F1", false},
		{Child, "mom", "P", false},
		{Child, "mom", "B", false},
		{Child, "dad", "P", false},
		{Child, "dad", "B", false},
		{Child, "dad", "H", false},
		{Married, "mom", "dad", true},
	}
	if diff := cmp.Diff(wantEdges, edges(e.Connectors())); diff != "" {
		t.Errorf("connectors mismatch (-want +got):\n%s", diff)
	}

	if e.CreateParentRow(parents, 0.9, 0.72) != nil {
		t.Error("second CreateParentRow over placed parents should return nil")
	}
	if e.CreateParentRow(nil, 0.9, 0.72) != nil {
		t.Error("CreateParentRow(nil) should return nil")
	}
}

func TestCreateParentRowHalfSiblingSides(t *testing.T) {
	tr := newTree(t)
	p := tr.person("P", 1980)
	mom := tr.person("mom", 1950)
	dad := tr.person("dad", 1948)
	mgp := tr.person("mgp", 1920)
	x := tr.person("x", 1925)
	dgp := tr.person("dgp", 1918)
	dgm := tr.person("dgm", 1921)
	ma := tr.person("MA", 1955)
	da := tr.person("DA", 1952)

	tr.parents(p, mom, dad)
	tr.parents(mom, mgp)
	tr.parents(ma, mgp, x)
	tr.parents(dad, dgp, dgm)
	tr.parents(da, dgp)

	e := NewEngine(testOptions())
	row := e.CreatePrimaryRow(p, 1, 0.8)
	up := e.CreateParentRow(e.Parents(row), 0.9, 0.72)

	want := [][]string{{"MA", "mom"}, {"dad", "DA"}}
	if diff := cmp.Diff(want, groupIDs(up)); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
	if got := e.Node(ma).Class(); got != HalfSiblingLeft {
		t.Errorf("MA class = %v, want half-sibling-left", got)
	}
	if got := e.Node(da).Class(); got != HalfSiblingRight {
		t.Errorf("DA class = %v, want half-sibling-right", got)
	}
}

func TestCreateParentRowStepParent(t *testing.T) {
	tr := newTree(t)
	p := tr.person("P", 1980)
	dad := tr.person("dad", 1948)
	step := tr.person("step", 1955)
	h := tr.person("H", 1985)

	tr.parents(p, dad)
	tr.parents(h, dad, step)
	tr.marry(dad, step, family.Marriage{Former: true, Married: family.Year(1983), Divorced: family.Year(1990)})

	e := NewEngine(testOptions())
	row := e.CreatePrimaryRow(p, 1, 0.8)
	up := e.CreateParentRow(e.Parents(row), 0.9, 0.72)

	if diff := cmp.Diff([][]string{{"H"}, {"P"}}, groupIDs(row)); diff != "" {
		t.Errorf("primary groups mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]string{{"step", "dad"}}, groupIDs(up)); diff != "" {
		t.Errorf("parent groups mismatch (-want +got):\n%s", diff)
	}

	wantEdges := []edge{
		{Married, "dad", "step", false},
		{Child, "dad", "P", false},
		{Child, "dad", "H", false},
		{Child, "step", "H", false},
	}
	if diff := cmp.Diff(wantEdges, edges(e.Connectors())); diff != "" {
		t.Errorf("connectors mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateParentRowPlacedParent(t *testing.T) {
	tests := []struct {
		name string
		// build returns the primary person; parents of f and m meet in
		// some earlier-placed ancestor.
		build      func(tr *tree) *family.Person
		rows       int
		wantGroups [][]string
		wantEdges  []edge
	}{
		{
			// h1 is placed as g1's sibling before h1's own turn.
			name: "sibling of an earlier parent",
			build: func(tr *tree) *family.Person {
				gg1, gg2 := tr.person("gg1", 1900), tr.person("gg2", 1902)
				g1, h1 := tr.person("g1", 1925), tr.person("h1", 1928)
				g2, h2 := tr.person("g2", 1926), tr.person("h2", 1929)
				f, m := tr.person("f", 1950), tr.person("m", 1952)
				p := tr.person("p", 1980)
				tr.parents(g1, gg1, gg2)
				tr.parents(h1, gg1, gg2)
				tr.parents(f, g1, g2)
				tr.parents(m, h1, h2)
				tr.parents(p, f, m)
				return p
			},
			rows:       2,
			wantGroups: [][]string{{"h1", "g1"}, {"g2"}, {"h2"}},
			wantEdges: []edge{
				{Child, "f", "p", false},
				{Child, "m", "p", false},
				{Child, "g1", "f", false},
				{Child, "g2", "f", false},
				{Child, "h1", "m", false},
				{Child, "h2", "m", false},
			},
		},
		{
			// g1 is both a grandparent and a great-grandparent of p.
			name: "ancestor in two generations",
			build: func(tr *tree) *family.Person {
				g1, g2, y := tr.person("g1", 1900), tr.person("g2", 1926), tr.person("y", 1905)
				h1, h2 := tr.person("h1", 1928), tr.person("h2", 1929)
				f, m := tr.person("f", 1950), tr.person("m", 1952)
				p := tr.person("p", 1980)
				tr.parents(f, g1, g2)
				tr.parents(h1, g1, y)
				tr.parents(m, h1, h2)
				tr.parents(p, f, m)
				return p
			},
			rows:       3,
			wantGroups: [][]string{{"y"}},
			wantEdges: []edge{
				{Child, "f", "p", false},
				{Child, "m", "p", false},
				{Child, "g1", "f", false},
				{Child, "g2", "f", false},
				{Child, "h1", "m", false},
				{Child, "h2", "m", false},
				{Child, "g1", "h1", false},
				{Child, "y", "h1", false},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.build(newTree(t))
			e := NewEngine(testOptions())
			row := e.CreatePrimaryRow(p, 1, 0.8)
			for i := 0; i < tt.rows; i++ {
				row = e.CreateParentRow(e.Parents(row), 0.9, 0.72)
				if row == nil {
					t.Fatalf("parent row %d is nil", i+1)
				}
			}

			if diff := cmp.Diff(tt.wantGroups, groupIDs(row)); diff != "" {
				t.Errorf("groups mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantEdges, edges(e.Connectors())); diff != "" {
				t.Errorf("connectors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCreateChildrenRow(t *testing.T) {
	tr := newTree(t)
	p := tr.person("P", 1950)
	s := tr.person("S", 1952)
	f := tr.person("F", 1949)
	c1 := tr.person("c1", 1975)
	c2 := tr.person("c2", 1972)
	c3 := tr.person("c3", 1980)
	w := tr.person("W", 1976)
	v := tr.person("V", 1974)
	wp := tr.person("wp", 1950)

	tr.marry(p, s, family.Marriage{})
	tr.marry(p, f, family.Marriage{Former: true})
	tr.parents(c1, p, s)
	tr.parents(c2, p, f)
	tr.parents(c3, p)
	tr.marry(c1, w, family.Marriage{})
	tr.marry(c1, v, family.Marriage{Former: true})
	tr.parents(w, wp)

	e := NewEngine(testOptions())
	row := e.CreatePrimaryRow(p, 1, 0.8)

	children := e.Children(row)
	if diff := cmp.Diff([]string{"c1", "c2", "c3"}, personIDs(children)); diff != "" {
		t.Fatalf("Children mismatch (-want +got):\n%s", diff)
	}

	down := e.CreateChildrenRow(children, 1, 0.8)
	want := [][]string{{"V", "W", "c1"}, {"c2"}, {"c3"}}
	if diff := cmp.Diff(want, groupIDs(down)); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}

	wantEdges := []edge{
		{Married, "P", "S", true},
		{Married, "P", "F", false},
		{Married, "c1", "W", true},
		{Married, "c1", "V", false},
		{Child, "P", "c1", false},
		{Child, "S", "c1", false},
		{Child, "P", "c2", false},
		{Child, "F", "c2", false},
		{Child, "P", "c3", false},
	}
	if diff := cmp.Diff(wantEdges, edges(e.Connectors())); diff != "" {
		t.Errorf("connectors mismatch (-want +got):\n%s", diff)
	}

	// spouses do not propagate: W's parent is not a traversal source
	if diff := cmp.Diff([]string{"P", "S", "F"}, personIDs(e.Parents(down))); diff != "" {
		t.Errorf("Parents(children row) mismatch (-want +got):\n%s", diff)
	}

	if e.CreateChildrenRow(children, 1, 0.8) != nil {
		t.Error("CreateChildrenRow over placed children should return nil")
	}
	if e.CreateChildrenRow(nil, 1, 0.8) != nil {
		t.Error("CreateChildrenRow(nil) should return nil")
	}
}

func TestLookupNeverPanics(t *testing.T) {
	e := NewEngine(testOptions())
	stranger := &family.Person{ID: "x"}

	if e.Node(nil) != nil || e.Node(stranger) != nil {
		t.Error("Node should be nil for absent persons")
	}
	if r, ok := e.NodeBounds(nil); ok || r != (Rect{}) {
		t.Error("NodeBounds(nil) should report false")
	}
	if _, ok := e.NodeBounds(stranger); ok {
		t.Error("NodeBounds(stranger) should report false")
	}
	if e.Parents(nil) != nil || e.Children(nil) != nil {
		t.Error("Parents/Children of a nil row should be nil")
	}
}

func TestClear(t *testing.T) {
	_, ps := nuclear(t)
	e := NewEngine(testOptions())
	e.CreatePrimaryRow(ps["P"], 1, 0.8)
	e.SetDisplayYear(1900)

	e.Clear()
	if e.Len() != 0 || len(e.Connectors()) != 0 || len(e.Placements()) != 0 {
		t.Error("Clear should drop placements and connectors")
	}
	if e.DisplayYear() != testNow.Year() {
		t.Errorf("DisplayYear = %d, want %d", e.DisplayYear(), testNow.Year())
	}
	if e.Node(ps["P"]) != nil {
		t.Error("P should not be placed after Clear")
	}
}

func TestMinimumYear(t *testing.T) {
	tests := []struct {
		name  string
		build func(tr *tree) *family.Person
		want  int
	}{
		{
			name:  "empty",
			build: func(*tree) *family.Person { return nil },
			want:  2024,
		},
		{
			name: "births and marriage",
			build: func(tr *tree) *family.Person {
				a := tr.person("a", 1900)
				b := tr.person("b", 1950)
				tr.marry(a, b, family.Marriage{Married: family.Year(1975)})
				return a
			},
			want: 1900,
		},
		{
			name: "former marriage before births",
			build: func(tr *tree) *family.Person {
				a := tr.person("a", 0)
				b := tr.person("b", 0)
				tr.marry(a, b, family.Marriage{Former: true, Married: family.Year(1890), Divorced: family.Year(1895)})
				return a
			},
			want: 1890,
		},
		{
			name: "future births ignored",
			build: func(tr *tree) *family.Person {
				return tr.person("a", 2030)
			},
			want: 2024,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTree(t)
			primary := tt.build(tr)
			e := NewEngine(testOptions())
			e.CreatePrimaryRow(primary, 1, 0.8)
			if got := e.MinimumYear(); got != tt.want {
				t.Errorf("MinimumYear = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestArrange(t *testing.T) {
	tr := newTree(t)
	x := tr.person("X", 1950)
	s1 := tr.person("s1", 1952)
	s2 := tr.person("s2", 1955)
	c := tr.person("c", 1975)
	tr.marry(x, s1, family.Marriage{})
	tr.marry(x, s2, family.Marriage{})
	tr.parents(c, x, s1)

	e := NewEngine(testOptions())
	top := e.CreatePrimaryRow(x, 1, 0.8)
	bottom := e.CreateChildrenRow(e.Children(top), 1, 0.8)
	bounds := e.Arrange([]*Row{top, bottom})

	if want := (Rect{Width: 352, Height: 160}); bounds != want {
		t.Errorf("bounds = %+v, want %+v", bounds, want)
	}

	tests := []struct {
		p    *family.Person
		want Rect
	}{
		{s2, Rect{X: 0, Y: 6, Width: 96, Height: 48}},
		{s1, Rect{X: 106, Y: 6, Width: 96, Height: 48}},
		{x, Rect{X: 232, Y: 0, Width: 120, Height: 60}},
		{c, Rect{X: 116, Y: 100, Width: 120, Height: 60}},
	}
	for _, tt := range tests {
		t.Run(tt.p.ID, func(t *testing.T) {
			got, ok := e.NodeBounds(tt.p)
			if !ok {
				t.Fatal("not placed")
			}
			if got != tt.want {
				t.Errorf("NodeBounds = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConnectorEndpointsArePlaced(t *testing.T) {
	tr := newTree(t)
	// one-sided edge: c lists p as a parent but p does not list c
	p := tr.person("p", 1950)
	c := tr.person("c", 1975)
	c.AddRelationship(&family.Relationship{Kind: family.Parent, Person: p})
	ghost := &family.Person{ID: "ghost"}
	c.AddRelationship(&family.Relationship{Kind: family.Spouse, Person: ghost})

	e := NewEngine(testOptions())
	row := e.CreatePrimaryRow(c, 1, 0.8)
	e.CreateParentRow(e.Parents(row), 0.9, 0.72)

	for _, conn := range e.Connectors() {
		for _, pl := range []*Placement{conn.Start(), conn.End()} {
			if e.Placement(pl.Node.Person()) != pl {
				t.Errorf("connector endpoint %s is not the placed node", pl.Node.Person().ID)
			}
		}
	}
	if e.Node(ghost) == nil {
		t.Error("one-sided spouse should still be placed")
	}
}
