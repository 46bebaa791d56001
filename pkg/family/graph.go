package family

import (
	"errors"
	"slices"

	"github.com/google/uuid"
)

var (
	// ErrInvalidPersonID is returned by [Graph.AddPerson] for a nil person.
	ErrInvalidPersonID = errors.New("person ID must not be empty")

	// ErrDuplicatePersonID is returned by [Graph.AddPerson] when a person with
	// the same ID is already in the graph.
	ErrDuplicatePersonID = errors.New("duplicate person ID")

	// ErrUnknownPerson is returned by relationship edits when either person
	// is not part of the graph.
	ErrUnknownPerson = errors.New("unknown person")

	// ErrSelfRelationship is returned when both ends of a relationship are
	// the same person.
	ErrSelfRelationship = errors.New("person cannot be related to themselves")
)

// Marriage describes a spouse relationship for [Graph.AddSpouse].
type Marriage struct {
	Former   bool
	Married  Date
	Divorced Date
}

// Graph is an in-memory family graph. People keep insertion order.
//
// The zero value is not usable; use [New].
type Graph struct {
	people  []*Person
	byID    map[string]*Person
	primary *Person
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{byID: make(map[string]*Person)}
}

// AddPerson adds p to the graph. A person without an ID is assigned a random
// UUID. The first person added becomes the primary person unless one has
// been set explicitly.
func (g *Graph) AddPerson(p *Person) error {
	if p == nil {
		return ErrInvalidPersonID
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, ok := g.byID[p.ID]; ok {
		return ErrDuplicatePersonID
	}
	g.byID[p.ID] = p
	g.people = append(g.people, p)
	if g.primary == nil {
		g.primary = p
	}
	return nil
}

// Person returns the person with the given ID.
func (g *Graph) Person(id string) (*Person, bool) {
	p, ok := g.byID[id]
	return p, ok
}

// People returns all people in insertion order.
func (g *Graph) People() []*Person { return slices.Clone(g.people) }

// Len returns the number of people.
func (g *Graph) Len() int { return len(g.people) }

// Primary returns the default primary person, or nil for an empty graph.
func (g *Graph) Primary() *Person { return g.primary }

// SetPrimary records p as the default primary person. p must be in the graph.
func (g *Graph) SetPrimary(p *Person) error {
	if !g.contains(p) {
		return ErrUnknownPerson
	}
	g.primary = p
	return nil
}

// AddParent records parent as a parent of child, writing both directions.
// Repeating an existing edge is a no-op.
func (g *Graph) AddParent(child, parent *Person) error {
	if err := g.check(child, parent); err != nil {
		return err
	}
	child.AddRelationship(&Relationship{Kind: Parent, Person: parent})
	parent.AddRelationship(&Relationship{Kind: Child, Person: child})
	return nil
}

// AddSibling records an explicit sibling edge in both directions.
func (g *Graph) AddSibling(a, b *Person) error {
	if err := g.check(a, b); err != nil {
		return err
	}
	a.AddRelationship(&Relationship{Kind: Sibling, Person: b})
	b.AddRelationship(&Relationship{Kind: Sibling, Person: a})
	return nil
}

// AddSpouse records a marriage between a and b. If they are already spouses
// the existing edges are updated with m.
func (g *Graph) AddSpouse(a, b *Person, m Marriage) error {
	if err := g.check(a, b); err != nil {
		return err
	}
	mod := Current
	if m.Former {
		mod = Former
	}
	for _, pair := range [][2]*Person{{a, b}, {b, a}} {
		from, to := pair[0], pair[1]
		if r := from.relationship(Spouse, to); r != nil {
			r.Modifier, r.Married, r.Divorced = mod, m.Married, m.Divorced
			continue
		}
		from.AddRelationship(&Relationship{
			Kind:     Spouse,
			Person:   to,
			Modifier: mod,
			Married:  m.Married,
			Divorced: m.Divorced,
		})
	}
	return nil
}

// RemoveRelationships deletes every edge between a and b in both directions.
func (g *Graph) RemoveRelationships(a, b *Person) error {
	if err := g.check(a, b); err != nil {
		return err
	}
	for _, k := range []RelationshipKind{Parent, Child, Sibling, Spouse} {
		a.removeRelationship(k, b)
		b.removeRelationship(k, a)
	}
	return nil
}

// RemovePerson deletes p and every edge that points at it. If p was the
// primary person, the first remaining person becomes primary.
func (g *Graph) RemovePerson(p *Person) error {
	if !g.contains(p) {
		return ErrUnknownPerson
	}
	for _, r := range p.Relationships() {
		_ = g.RemoveRelationships(p, r.Person)
	}
	for _, other := range g.people {
		for _, k := range []RelationshipKind{Parent, Child, Sibling, Spouse} {
			other.removeRelationship(k, p)
		}
	}
	delete(g.byID, p.ID)
	g.people = slices.DeleteFunc(g.people, func(q *Person) bool { return q == p })
	if g.primary == p {
		g.primary = nil
		if len(g.people) > 0 {
			g.primary = g.people[0]
		}
	}
	return nil
}

func (g *Graph) contains(p *Person) bool {
	if p == nil {
		return false
	}
	q, ok := g.byID[p.ID]
	return ok && q == p
}

func (g *Graph) check(a, b *Person) error {
	if !g.contains(a) || !g.contains(b) {
		return ErrUnknownPerson
	}
	if a == b {
		return ErrSelfRelationship
	}
	return nil
}
