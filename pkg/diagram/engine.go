package diagram

import (
	"slices"

	"github.com/matzehuels/kintower/pkg/family"
)

// Placement records where a person was placed in the current pass.
type Placement struct {
	Node  *Node
	Group *Group
	Row   *Row
}

// Bounds returns the node's rectangle in diagram coordinates.
func (p *Placement) Bounds() Rect {
	loc := p.Row.location.Add(p.Group.location).Add(p.Node.location)
	return RectAt(loc, p.Node.size)
}

type connectorKey struct {
	kind       ConnectorKind
	start, end *family.Person
}

// Engine places people into rows, groups and nodes and records the
// connectors between them. It holds the state of exactly one pass; call
// [Engine.Clear] before starting another.
type Engine struct {
	opts Options

	lookup     map[*family.Person]*Placement
	order      []*family.Person
	connectors []*Connector
	seen       map[connectorKey]struct{}

	displayYear int
}

// NewEngine returns an empty engine. Zero option fields take their defaults.
func NewEngine(opts Options) *Engine {
	e := &Engine{opts: opts.WithDefaults()}
	e.Clear()
	return e
}

// Options returns the engine's effective options.
func (e *Engine) Options() Options { return e.opts }

// Clear forgets every placement and connector and resets the display year
// to the current year.
func (e *Engine) Clear() {
	e.lookup = make(map[*family.Person]*Placement)
	e.order = nil
	e.connectors = nil
	e.seen = make(map[connectorKey]struct{})
	e.displayYear = e.opts.Now().Year()
}

// Len returns the number of placed people.
func (e *Engine) Len() int { return len(e.lookup) }

// Placement returns where p was placed, or nil.
func (e *Engine) Placement(p *family.Person) *Placement {
	if p == nil {
		return nil
	}
	return e.lookup[p]
}

// Node returns the node for p, or nil when p is not placed.
func (e *Engine) Node(p *family.Person) *Node {
	if pl := e.Placement(p); pl != nil {
		return pl.Node
	}
	return nil
}

// NodeBounds returns p's rectangle in diagram coordinates.
func (e *Engine) NodeBounds(p *family.Person) (Rect, bool) {
	pl := e.Placement(p)
	if pl == nil {
		return Rect{}, false
	}
	return pl.Bounds(), true
}

// Placements returns every placement in the order people were placed.
func (e *Engine) Placements() []*Placement {
	out := make([]*Placement, len(e.order))
	for i, p := range e.order {
		out[i] = e.lookup[p]
	}
	return out
}

// Connectors returns the connectors in creation order.
func (e *Engine) Connectors() []*Connector { return slices.Clone(e.connectors) }

func (e *Engine) DisplayYear() int { return e.displayYear }

// SetDisplayYear updates the filtered state of every placed node.
func (e *Engine) SetDisplayYear(y int) {
	e.displayYear = y
	for _, p := range e.order {
		e.lookup[p].Node.SetDisplayYear(y)
	}
}

// MinimumYear returns the earliest birth, marriage or divorce year in the
// current pass, or the current year if there is nothing earlier.
func (e *Engine) MinimumYear() int {
	year := e.opts.Now().Year()
	for _, p := range e.order {
		if b := p.Birth; !b.IsZero() && b.Year < year {
			year = b.Year
		}
	}
	for _, c := range e.connectors {
		for _, get := range []func() (family.Date, bool){c.MarriedDate, c.PreviousMarriedDate, c.DivorcedDate} {
			if d, ok := get(); ok && d.Year < year {
				year = d.Year
			}
		}
	}
	return year
}

// Parents returns the parents of every Primary or Related node in row, in
// row order and without duplicates.
func (e *Engine) Parents(row *Row) []*family.Person {
	return collect(row, (*family.Person).Parents)
}

// Children returns the children of every Primary or Related node in row, in
// row order and without duplicates.
func (e *Engine) Children(row *Row) []*family.Person {
	return collect(row, (*family.Person).Children)
}

func collect(row *Row, next func(*family.Person) []*family.Person) []*family.Person {
	if row == nil {
		return nil
	}
	var out []*family.Person
	for _, n := range row.Nodes() {
		if !n.class.IsLineage() {
			continue
		}
		for _, p := range next(n.person) {
			if p != nil && !slices.Contains(out, p) {
				out = append(out, p)
			}
		}
	}
	return out
}

// CreatePrimaryRow places the primary person in its own group, preceded by
// a group of current spouses, former spouses, siblings and half-siblings.
// That group is reversed so the spouses sit next to the primary person.
func (e *Engine) CreatePrimaryRow(primary *family.Person, scale, relatedScale float64) *Row {
	if primary == nil {
		return nil
	}

	row := newRow(e.opts.GroupSpacing)
	left := newGroup(e.opts.NodeSpacing)
	center := newGroup(e.opts.NodeSpacing)

	if e.place(primary, Primary, scale, center, row) == nil {
		return nil
	}
	e.placeSpouses(primary, nil, relatedScale, left, row)
	for _, s := range primary.Siblings() {
		e.place(s, Sibling, relatedScale, left, row)
	}
	for _, h := range primary.HalfSiblings() {
		e.place(h, HalfSiblingLeft, relatedScale, left, row)
	}
	left.Reverse()

	if left.Len() > 0 {
		row.add(left)
	}
	row.add(center)
	return row
}

// CreateChildrenRow creates one group per child that is not placed yet,
// holding the child and the child's spouses. Each child is connected to
// every parent already in the diagram. It returns nil if nobody was placed.
func (e *Engine) CreateChildrenRow(children []*family.Person, scale, relatedScale float64) *Row {
	row := newRow(e.opts.GroupSpacing)
	for _, child := range children {
		if child == nil || e.lookup[child] != nil {
			continue
		}

		group := newGroup(e.opts.NodeSpacing)
		e.place(child, Related, scale, group, row)
		e.placeSpouses(child, nil, relatedScale, group, row)
		for _, parent := range child.Parents() {
			e.connect(Child, parent, child, false, nil)
		}
		group.Reverse()
		row.add(group)
	}
	if row.Len() == 0 {
		return nil
	}
	return row
}

// CreateParentRow creates one group per parent, holding the parent unless
// already placed, their spouses who are not themselves in parents, and their
// siblings and half-siblings. Empty groups are dropped. Groups at even
// indexes are reversed and take left half-siblings; odd indexes take right
// ones. Every parent and each spouse placed with them is connected to their
// placed children, including parents placed earlier in the pass. Marriages
// between the parents are connected last, current before former. It returns
// nil if nobody was placed.
func (e *Engine) CreateParentRow(parents []*family.Person, scale, relatedScale float64) *Row {
	row := newRow(e.opts.GroupSpacing)
	for i, parent := range parents {
		if parent == nil {
			continue
		}

		group := newGroup(e.opts.NodeSpacing)
		e.place(parent, Related, scale, group, row)
		spouses := e.placeSpouses(parent, parents, relatedScale, group, row)
		for _, s := range parent.Siblings() {
			e.place(s, Sibling, relatedScale, group, row)
		}
		half := HalfSiblingLeft
		if i%2 == 1 {
			half = HalfSiblingRight
		}
		for _, h := range parent.HalfSiblings() {
			e.place(h, half, relatedScale, group, row)
		}
		if i%2 == 0 {
			group.Reverse()
		}

		for _, p := range append([]*family.Person{parent}, spouses...) {
			for _, c := range p.Children() {
				e.connect(Child, p, c, false, nil)
			}
		}
		if group.Len() > 0 {
			row.add(group)
		}
	}

	for _, mod := range []family.SpouseModifier{family.Current, family.Former} {
		for i := range parents {
			for j := i + 1; j < len(parents); j++ {
				a, b := parents[i], parents[j]
				if a == nil || b == nil {
					continue
				}
				rel := a.SpouseRelationship(b)
				if rel == nil || rel.Modifier != mod {
					continue
				}
				e.connect(Married, a, b, mod == family.Current, rel)
			}
		}
	}

	if row.Len() == 0 {
		return nil
	}
	return row
}

// placeSpouses places p's current then former spouses in group, skipping
// anyone in exclude or already placed, and connects each one placed here to
// p. It returns the spouses it placed.
func (e *Engine) placeSpouses(p *family.Person, exclude []*family.Person, scale float64, group *Group, row *Row) []*family.Person {
	var placed []*family.Person
	for _, current := range []bool{true, false} {
		spouses := p.Spouses()
		if !current {
			spouses = p.PreviousSpouses()
		}
		for _, s := range spouses {
			if slices.Contains(exclude, s) {
				continue
			}
			if e.place(s, Spouse, scale, group, row) == nil {
				continue
			}
			e.connect(Married, p, s, current, p.SpouseRelationship(s))
			placed = append(placed, s)
		}
	}
	return placed
}

// place adds p to group unless p is nil or already placed, in which case it
// returns nil.
func (e *Engine) place(p *family.Person, class Classification, scale float64, group *Group, row *Row) *Placement {
	if p == nil || e.lookup[p] != nil {
		return nil
	}
	n := newNode(p, class, scale, e.displayYear, e.opts.Now)
	group.add(n)
	pl := &Placement{Node: n, Group: group, Row: row}
	e.lookup[p] = pl
	e.order = append(e.order, p)
	return pl
}

// connect records a connector between two placed people. Missing endpoints
// and duplicates are ignored.
func (e *Engine) connect(kind ConnectorKind, from, to *family.Person, married bool, rel *family.Relationship) {
	start, end := e.Placement(from), e.Placement(to)
	if start == nil || end == nil || start == end {
		return
	}

	key := connectorKey{kind: kind, start: from, end: to}
	if _, ok := e.seen[key]; ok {
		return
	}
	if kind == Married {
		if _, ok := e.seen[connectorKey{kind: kind, start: to, end: from}]; ok {
			return
		}
	}
	e.seen[key] = struct{}{}
	e.connectors = append(e.connectors, newConnector(kind, start, end, married, rel))
}

// Arrange measures and positions rows top to bottom. Rows are centered on
// the widest one and separated by RowSpacing. It returns the bounds of the
// whole diagram.
func (e *Engine) Arrange(rows []*Row) Rect {
	var width float64
	for _, r := range rows {
		width = max(width, r.Arrange(e.opts.Measurer).Width)
	}

	var bounds Rect
	var y float64
	for i, r := range rows {
		if i > 0 {
			y += e.opts.RowSpacing
		}
		r.location = Point{X: (width - r.size.Width) / 2, Y: y}
		bounds = bounds.Union(RectAt(r.location, r.size))
		y += r.size.Height
	}
	return bounds
}
