package family

import (
	"slices"
	"strings"
)

// Gender is the recorded gender of a person.
type Gender int

const (
	Unknown Gender = iota
	Male
	Female
)

// String returns the lowercase name used in family files.
func (g Gender) String() string {
	switch g {
	case Male:
		return "male"
	case Female:
		return "female"
	default:
		return "unknown"
	}
}

// ParseGender maps "male", "female" and their one-letter forms to a Gender.
// Anything else is Unknown.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male
	case "female", "f":
		return Female
	default:
		return Unknown
	}
}

// RelationshipKind is the type of an edge between two people.
type RelationshipKind int

const (
	// Parent edges point from a person to one of their parents.
	Parent RelationshipKind = iota
	// Child edges point from a person to one of their children.
	Child
	Sibling
	Spouse
)

// String returns the lowercase kind name.
func (k RelationshipKind) String() string {
	switch k {
	case Parent:
		return "parent"
	case Child:
		return "child"
	case Sibling:
		return "sibling"
	case Spouse:
		return "spouse"
	default:
		return "unknown"
	}
}

// SpouseModifier distinguishes current from former spouses.
type SpouseModifier int

const (
	Current SpouseModifier = iota
	Former
)

// Relationship is one directed edge from the owning person to Person.
// Modifier, Married and Divorced are only meaningful for Spouse edges.
type Relationship struct {
	Kind     RelationshipKind
	Person   *Person
	Modifier SpouseModifier
	Married  Date
	Divorced Date
}

// Person is a node in the family graph.
//
// The zero value is usable as a detached person. Relationship edges are
// normally managed through [Graph]; see [Person.AddRelationship] for the
// one-sided, low-level form.
type Person struct {
	ID        string
	FirstName string
	LastName  string
	Gender    Gender
	Living    bool
	Birth     Date
	Death     Date

	relationships []*Relationship
}

// FullName joins the first and last names, skipping empty parts.
func (p *Person) FullName() string {
	return strings.TrimSpace(strings.Join([]string{p.FirstName, p.LastName}, " "))
}

// Relationships returns a copy of the person's outgoing edges.
func (p *Person) Relationships() []*Relationship {
	return slices.Clone(p.relationships)
}

// AddRelationship appends a one-sided edge. It is a no-op if an edge of the
// same kind to the same person already exists. Prefer the [Graph] methods,
// which write both directions.
func (p *Person) AddRelationship(r *Relationship) {
	if r == nil || r.Person == nil || r.Person == p {
		return
	}
	if p.relationship(r.Kind, r.Person) != nil {
		return
	}
	p.relationships = append(p.relationships, r)
}

func (p *Person) relationship(kind RelationshipKind, other *Person) *Relationship {
	for _, r := range p.relationships {
		if r.Kind == kind && r.Person == other {
			return r
		}
	}
	return nil
}

func (p *Person) removeRelationship(kind RelationshipKind, other *Person) {
	p.relationships = slices.DeleteFunc(p.relationships, func(r *Relationship) bool {
		return r.Kind == kind && r.Person == other
	})
}

func (p *Person) related(kind RelationshipKind, match func(*Relationship) bool) []*Person {
	var out []*Person
	for _, r := range p.relationships {
		if r.Kind == kind && (match == nil || match(r)) {
			out = append(out, r.Person)
		}
	}
	return out
}

// Parents returns the person's parents in edge order.
func (p *Person) Parents() []*Person { return p.related(Parent, nil) }

// Children returns the person's children in edge order.
func (p *Person) Children() []*Person { return p.related(Child, nil) }

// Spouses returns current spouses in edge order.
func (p *Person) Spouses() []*Person {
	return p.related(Spouse, func(r *Relationship) bool { return r.Modifier == Current })
}

// PreviousSpouses returns former spouses in edge order.
func (p *Person) PreviousSpouses() []*Person {
	return p.related(Spouse, func(r *Relationship) bool { return r.Modifier == Former })
}

// SpouseRelationship returns the spouse edge from p to other, or nil.
func (p *Person) SpouseRelationship(other *Person) *Relationship {
	return p.relationship(Spouse, other)
}

// Siblings returns explicit sibling edges followed by people who share the
// exact same non-empty set of parents.
func (p *Person) Siblings() []*Person {
	out := p.related(Sibling, nil)
	parents := p.Parents()
	if len(parents) == 0 {
		return out
	}
	for _, parent := range parents {
		for _, c := range parent.Children() {
			if c == p || slices.Contains(out, c) {
				continue
			}
			if sameSet(parents, c.Parents()) {
				out = append(out, c)
			}
		}
	}
	return out
}

// HalfSiblings returns children of any of the person's parents that are
// neither the person nor one of their full siblings.
func (p *Person) HalfSiblings() []*Person {
	siblings := p.Siblings()
	var out []*Person
	for _, parent := range p.Parents() {
		for _, c := range parent.Children() {
			if c == p || slices.Contains(siblings, c) || slices.Contains(out, c) {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

// Age returns the person's age in whole years at now, or at their death if
// they are not living. It reports false when the birth date is unknown or
// when a deceased person has no recorded death date.
func (p *Person) Age(now Date) (int, bool) {
	if p.Birth.IsZero() {
		return 0, false
	}
	end := now
	if !p.Living {
		if p.Death.IsZero() {
			return 0, false
		}
		end = p.Death
	}
	age := yearsBetween(p.Birth, end)
	if age < 0 {
		return 0, false
	}
	return age, true
}

func sameSet(a, b []*Person) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		if !slices.Contains(b, x) {
			return false
		}
	}
	return true
}
