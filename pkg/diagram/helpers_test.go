package diagram

import (
	"testing"
	"time"

	"github.com/matzehuels/kintower/pkg/family"
)

var testNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func testOptions() Options {
	o := DefaultOptions()
	o.Now = func() time.Time { return testNow }
	return o
}

// tree is a small builder over family.Graph that fails the test on any
// graph error.
type tree struct {
	t *testing.T
	g *family.Graph
}

func newTree(t *testing.T) *tree {
	t.Helper()
	return &tree{t: t, g: family.New()}
}

func (tr *tree) person(id string, birth int) *family.Person {
	tr.t.Helper()
	p := &family.Person{ID: id, FirstName: id, Living: true}
	if birth != 0 {
		p.Birth = family.Year(birth)
	}
	if err := tr.g.AddPerson(p); err != nil {
		tr.t.Fatalf("AddPerson(%s): %v", id, err)
	}
	return p
}

func (tr *tree) parents(child *family.Person, parents ...*family.Person) {
	tr.t.Helper()
	for _, p := range parents {
		if err := tr.g.AddParent(child, p); err != nil {
			tr.t.Fatalf("AddParent(%s, %s): %v", child.ID, p.ID, err)
		}
	}
}

func (tr *tree) marry(a, b *family.Person, m family.Marriage) {
	tr.t.Helper()
	if err := tr.g.AddSpouse(a, b, m); err != nil {
		tr.t.Fatalf("AddSpouse(%s, %s): %v", a.ID, b.ID, err)
	}
}

func (tr *tree) sibling(a, b *family.Person) {
	tr.t.Helper()
	if err := tr.g.AddSibling(a, b); err != nil {
		tr.t.Fatalf("AddSibling(%s, %s): %v", a.ID, b.ID, err)
	}
}

func nodeIDs(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Person().ID
	}
	return out
}

func personIDs(ps []*family.Person) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func groupIDs(row *Row) [][]string {
	var out [][]string
	for _, g := range row.Groups() {
		out = append(out, nodeIDs(g.Nodes()))
	}
	return out
}

type edge struct {
	Kind     ConnectorKind
	From, To string
	Married  bool
}

func edges(cs []*Connector) []edge {
	out := make([]edge, len(cs))
	for i, c := range cs {
		out[i] = edge{c.Kind(), c.Start().Node.Person().ID, c.End().Node.Person().ID, c.IsMarried()}
	}
	return out
}
