package graph

import (
	"fmt"

	"github.com/matzehuels/kintower/pkg/errors"
	"github.com/matzehuels/kintower/pkg/family"
)

// Relationship types used in family files.
const (
	RelParent  = "parent"
	RelSpouse  = "spouse"
	RelSibling = "sibling"
)

// =============================================================================
// File - Family Interchange Format
// =============================================================================

// File is the interchange format for family graphs. The same structure is
// read from JSON and TOML.
type File struct {
	Primary       string         `json:"primary,omitempty" toml:"primary,omitempty"`
	People        []Person       `json:"people" toml:"people"`
	Relationships []Relationship `json:"relationships,omitempty" toml:"relationships,omitempty"`
}

// Person is one entry of [File.People]. Dates are "YYYY", "YYYY-MM" or
// "YYYY-MM-DD"; empty means unknown.
type Person struct {
	ID        string `json:"id" toml:"id"`
	FirstName string `json:"first_name,omitempty" toml:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty" toml:"last_name,omitempty"`
	Gender    string `json:"gender,omitempty" toml:"gender,omitempty"`
	Living    bool   `json:"living,omitempty" toml:"living,omitempty"`
	Birth     string `json:"birth,omitempty" toml:"birth,omitempty"`
	Death     string `json:"death,omitempty" toml:"death,omitempty"`
}

// Relationship is one edge of [File.Relationships]. For "parent", From is
// the parent and To the child.
type Relationship struct {
	Type     string `json:"type" toml:"type"`
	From     string `json:"from" toml:"from"`
	To       string `json:"to" toml:"to"`
	Former   bool   `json:"former,omitempty" toml:"former,omitempty"`
	Married  string `json:"married,omitempty" toml:"married,omitempty"`
	Divorced string `json:"divorced,omitempty" toml:"divorced,omitempty"`
}

// =============================================================================
// family.Graph ↔ File Conversion
// =============================================================================

// ToFamily builds a family graph from f. People keep file order; the
// primary person defaults to the first one when f.Primary is empty.
func ToFamily(f File) (*family.Graph, error) {
	g := family.New()

	for i, rec := range f.People {
		p, err := rec.toPerson()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "person %d (%s)", i, rec.ID)
		}
		if err := g.AddPerson(p); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "person %d (%s)", i, rec.ID)
		}
	}

	for i, rel := range f.Relationships {
		if err := addRelationship(g, rel); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "relationship %d (%s %s→%s)", i, rel.Type, rel.From, rel.To)
		}
	}

	if f.Primary != "" {
		p, ok := g.Person(f.Primary)
		if !ok {
			return nil, errors.New(errors.ErrCodePersonNotFound, "primary person %q not found", f.Primary)
		}
		_ = g.SetPrimary(p)
	}
	return g, nil
}

// FromFamily converts g to its interchange format. Each parent edge is
// written once from the child's side, and each sibling and spouse pair once
// from the side of the person that comes first.
func FromFamily(g *family.Graph) File {
	people := g.People()
	index := make(map[*family.Person]int, len(people))
	for i, p := range people {
		index[p] = i
	}

	out := File{People: make([]Person, len(people))}
	if p := g.Primary(); p != nil {
		out.Primary = p.ID
	}

	for i, p := range people {
		out.People[i] = fromPerson(p)
	}

	for _, p := range people {
		for _, r := range p.Relationships() {
			j, ok := index[r.Person]
			if !ok {
				continue
			}
			switch r.Kind {
			case family.Parent:
				out.Relationships = append(out.Relationships, Relationship{Type: RelParent, From: r.Person.ID, To: p.ID})
			case family.Sibling:
				if index[p] < j {
					out.Relationships = append(out.Relationships, Relationship{Type: RelSibling, From: p.ID, To: r.Person.ID})
				}
			case family.Spouse:
				if index[p] < j {
					out.Relationships = append(out.Relationships, Relationship{
						Type:     RelSpouse,
						From:     p.ID,
						To:       r.Person.ID,
						Former:   r.Modifier == family.Former,
						Married:  r.Married.String(),
						Divorced: r.Divorced.String(),
					})
				}
			}
		}
	}
	return out
}

func (rec Person) toPerson() (*family.Person, error) {
	if err := errors.ValidatePersonID(rec.ID); err != nil {
		return nil, err
	}
	birth, err := family.ParseDate(rec.Birth)
	if err != nil {
		return nil, fmt.Errorf("birth: %w", err)
	}
	death, err := family.ParseDate(rec.Death)
	if err != nil {
		return nil, fmt.Errorf("death: %w", err)
	}
	return &family.Person{
		ID:        rec.ID,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Gender:    family.ParseGender(rec.Gender),
		Living:    rec.Living,
		Birth:     birth,
		Death:     death,
	}, nil
}

func fromPerson(p *family.Person) Person {
	rec := Person{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Living:    p.Living,
		Birth:     p.Birth.String(),
		Death:     p.Death.String(),
	}
	if p.Gender != family.Unknown {
		rec.Gender = p.Gender.String()
	}
	return rec
}

func addRelationship(g *family.Graph, rel Relationship) error {
	from, ok := g.Person(rel.From)
	if !ok {
		return fmt.Errorf("%w: %q", family.ErrUnknownPerson, rel.From)
	}
	to, ok := g.Person(rel.To)
	if !ok {
		return fmt.Errorf("%w: %q", family.ErrUnknownPerson, rel.To)
	}

	switch rel.Type {
	case RelParent:
		return g.AddParent(to, from)
	case RelSibling:
		return g.AddSibling(from, to)
	case RelSpouse:
		married, err := family.ParseDate(rel.Married)
		if err != nil {
			return fmt.Errorf("married: %w", err)
		}
		divorced, err := family.ParseDate(rel.Divorced)
		if err != nil {
			return fmt.Errorf("divorced: %w", err)
		}
		return g.AddSpouse(from, to, family.Marriage{Former: rel.Former, Married: married, Divorced: divorced})
	default:
		return fmt.Errorf("unknown relationship type %q", rel.Type)
	}
}
