package diagram

import "github.com/matzehuels/kintower/pkg/family"

// ConnectorKind is the type of line between two placed nodes.
type ConnectorKind int

const (
	// Child connects a parent (start) to a child (end).
	Child ConnectorKind = iota
	// Married connects two spouses.
	Married
)

func (k ConnectorKind) String() string {
	switch k {
	case Child:
		return "child"
	case Married:
		return "married"
	default:
		return "unknown"
	}
}

// Connector is a line between two placed nodes.
//
// Filtered state is derived from the endpoints and the marriage dates each
// time it is queried. [Connector.FilterChanged] compares it with the value
// seen on the previous call so hosts can animate transitions.
type Connector struct {
	kind  ConnectorKind
	start *Placement
	end   *Placement

	married      bool
	relationship *family.Relationship

	lastFiltered bool
}

func newConnector(kind ConnectorKind, start, end *Placement, married bool, rel *family.Relationship) *Connector {
	c := &Connector{kind: kind, start: start, end: end, married: married, relationship: rel}
	c.lastFiltered = c.Filtered()
	return c
}

func (c *Connector) Kind() ConnectorKind { return c.kind }

// Start is the parent for a Child connector, or the first spouse.
func (c *Connector) Start() *Placement { return c.start }

func (c *Connector) End() *Placement { return c.end }

// IsMarried reports whether a Married connector is a current marriage.
// It is false for former spouses and for Child connectors.
func (c *Connector) IsMarried() bool { return c.kind == Married && c.married }

// IsFormer reports whether a Married connector is a former marriage.
func (c *Connector) IsFormer() bool { return c.kind == Married && !c.married }

// Visible reports whether both endpoints are revealed.
func (c *Connector) Visible() bool {
	return !c.start.Node.Hidden() && !c.end.Node.Hidden()
}

// Filtered reports whether the connector is dimmed at the endpoints'
// display year. It never changes connector state.
func (c *Connector) Filtered() bool {
	if c.start.Node.Filtered() || c.end.Node.Filtered() {
		return true
	}
	if c.kind != Married || c.relationship == nil {
		return false
	}

	year := c.start.Node.DisplayYear()
	if d := c.relationship.Married; !d.IsZero() && d.Year > year {
		return true
	}
	if d := c.relationship.Divorced; !c.married && !d.IsZero() && d.Year > year {
		return true
	}
	return false
}

// FilterChanged returns the current filtered state and whether it differs
// from the state seen by the previous call (or at creation).
func (c *Connector) FilterChanged() (filtered, changed bool) {
	filtered = c.Filtered()
	changed = filtered != c.lastFiltered
	c.lastFiltered = filtered
	return filtered, changed
}

// MarriedDate returns the marriage date of a current marriage.
func (c *Connector) MarriedDate() (family.Date, bool) {
	if !c.IsMarried() || c.relationship == nil || c.relationship.Married.IsZero() {
		return family.Date{}, false
	}
	return c.relationship.Married, true
}

// PreviousMarriedDate returns the marriage date of a former marriage.
func (c *Connector) PreviousMarriedDate() (family.Date, bool) {
	if !c.IsFormer() || c.relationship == nil || c.relationship.Married.IsZero() {
		return family.Date{}, false
	}
	return c.relationship.Married, true
}

// DivorcedDate returns the divorce date of a former marriage.
func (c *Connector) DivorcedDate() (family.Date, bool) {
	if !c.IsFormer() || c.relationship == nil || c.relationship.Divorced.IsZero() {
		return family.Date{}, false
	}
	return c.relationship.Divorced, true
}

// Line returns the end points of the connector in diagram coordinates.
// Child lines run from the bottom of the parent to the top of the child;
// marriage lines join the facing sides of the two spouses.
func (c *Connector) Line() (from, to Point) {
	a, b := c.start.Bounds(), c.end.Bounds()
	switch c.kind {
	case Married:
		if b.Center().X < a.Center().X {
			a, b = b, a
		}
		return Point{a.Right(), a.Center().Y}, Point{b.Left(), b.Center().Y}
	default:
		return Point{a.Center().X, a.Bottom()}, Point{b.Center().X, b.Top()}
	}
}
