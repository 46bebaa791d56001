package diagram

import (
	"strconv"
	"time"

	"github.com/matzehuels/kintower/pkg/family"
)

// Classification tells a renderer how a node relates to the primary person.
type Classification int

const (
	// Primary is the person the diagram is centered on.
	Primary Classification = iota
	// Related is a direct ancestor or descendant of the primary person.
	Related
	Spouse
	Sibling
	// HalfSiblingLeft is drawn on the left of its group.
	HalfSiblingLeft
	// HalfSiblingRight is drawn on the right of its group.
	HalfSiblingRight
)

// String returns the lowercase classification name.
func (c Classification) String() string {
	switch c {
	case Primary:
		return "primary"
	case Related:
		return "related"
	case Spouse:
		return "spouse"
	case Sibling:
		return "sibling"
	case HalfSiblingLeft:
		return "half-sibling-left"
	case HalfSiblingRight:
		return "half-sibling-right"
	default:
		return "unknown"
	}
}

// IsLineage reports whether nodes of this class propagate the expansion to
// further generations.
func (c Classification) IsLineage() bool { return c == Primary || c == Related }

// Node is one placed person.
type Node struct {
	person *family.Person
	class  Classification
	scale  float64
	now    func() time.Time

	displayYear int
	filtered    bool
	hidden      bool

	size     Size
	location Point
}

func newNode(p *family.Person, class Classification, scale float64, displayYear int, now func() time.Time) *Node {
	n := &Node{person: p, class: class, scale: scale, now: now}
	n.SetDisplayYear(displayYear)
	return n
}

func (n *Node) Person() *family.Person { return n.person }

func (n *Node) Class() Classification { return n.class }

// Scale is fixed for the lifetime of the node.
func (n *Node) Scale() float64 { return n.scale }

func (n *Node) DisplayYear() int { return n.displayYear }

// SetDisplayYear sets the year cutoff. The node is filtered when the person
// has a known birth year after y.
func (n *Node) SetDisplayYear(y int) {
	n.displayYear = y
	n.filtered = !n.person.Birth.IsZero() && n.person.Birth.Year > y
}

func (n *Node) Filtered() bool { return n.filtered }

// Hidden reports whether the node is held back by a pending populate.
func (n *Node) Hidden() bool { return n.hidden }

func (n *Node) setHidden(h bool) { n.hidden = h }

// Size is the measured size from the most recent arrange.
func (n *Node) Size() Size { return n.size }

// Location is the node's offset inside its group.
func (n *Node) Location() Point { return n.location }

// AgeAt returns the person's age as of the given year. It reports false when
// the dates are unknown or the person had not been born yet.
func (n *Node) AgeAt(year int) (int, bool) {
	p := n.person
	if p.Birth.IsZero() {
		return 0, false
	}

	var age int
	if p.Living {
		now := n.now()
		current, ok := p.Age(family.FromTime(now))
		if !ok {
			return 0, false
		}
		age = current - (now.Year() - year)
	} else {
		lifespan, ok := p.Age(family.Date{})
		if !ok {
			return 0, false
		}
		age = lifespan
		if year < p.Death.Year {
			age -= p.Death.Year - year
		}
	}

	if age < 0 {
		return 0, false
	}
	return age, true
}

// AgeText formats [Node.AgeAt], or returns "" when the age is unknown.
func (n *Node) AgeText(year int) string {
	age, ok := n.AgeAt(year)
	if !ok {
		return ""
	}
	return strconv.Itoa(age)
}

// YearsText formats the birth and death years. Living people show only the
// birth year; unknown years are shown as "?".
func (n *Node) YearsText() string {
	p := n.person
	birth, death := "?", "?"
	if !p.Birth.IsZero() {
		birth = strconv.Itoa(p.Birth.Year)
	}
	if !p.Death.IsZero() {
		death = strconv.Itoa(p.Death.Year)
	}

	switch {
	case p.Living && p.Birth.IsZero():
		return ""
	case p.Living:
		return birth
	case p.Birth.IsZero() && p.Death.IsZero():
		return ""
	default:
		return birth + " - " + death
	}
}

// Label is the display name, falling back to the person ID.
func (n *Node) Label() string {
	if name := n.person.FullName(); name != "" {
		return name
	}
	return n.person.ID
}
