package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/kintower/pkg/diagram"
	"github.com/matzehuels/kintower/pkg/errors"
)

// =============================================================================
// Layout - Serialized Diagram
// =============================================================================

// Layout is the serialized result of one layout pass. Coordinates are in
// diagram space with the origin at the top left.
type Layout struct {
	Primary     string  `json:"primary,omitempty"`
	DisplayYear int     `json:"display_year"`
	MinimumYear int     `json:"minimum_year"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`

	// Rows run from the oldest generation to the youngest.
	Rows       []Row       `json:"rows"`
	Connectors []Connector `json:"connectors,omitempty"`
}

// Row is one generation.
type Row struct {
	Groups []Group `json:"groups"`
}

// Group is a run of adjacent nodes, such as a person with their spouses.
type Group struct {
	Nodes []Node `json:"nodes"`
}

// Node is a placed person.
type Node struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Class    string  `json:"class"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Scale    float64 `json:"scale"`
	Filtered bool    `json:"filtered,omitempty"`
	Hidden   bool    `json:"hidden,omitempty"`
	Years    string  `json:"years,omitempty"`
	Age      string  `json:"age,omitempty"`
}

// Center returns the middle of the node's rectangle.
func (n Node) Center() (float64, float64) {
	return n.X + n.Width/2, n.Y + n.Height/2
}

// Connector is a line between two placed people.
type Connector struct {
	From         string  `json:"from"`
	To           string  `json:"to"`
	Kind         string  `json:"kind"`
	Married      bool    `json:"married,omitempty"`
	Former       bool    `json:"former,omitempty"`
	Filtered     bool    `json:"filtered,omitempty"`
	MarriedDate  string  `json:"married_date,omitempty"`
	DivorcedDate string  `json:"divorced_date,omitempty"`
	X1           float64 `json:"x1"`
	Y1           float64 `json:"y1"`
	X2           float64 `json:"x2"`
	Y2           float64 `json:"y2"`
}

// Nodes returns every node in row order.
func (l *Layout) Nodes() []Node {
	var out []Node
	for _, r := range l.Rows {
		for _, g := range r.Groups {
			out = append(out, g.Nodes...)
		}
	}
	return out
}

// Node returns the node with the given person ID.
func (l *Layout) Node(id string) (Node, bool) {
	for _, n := range l.Nodes() {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// =============================================================================
// Controller → Layout Conversion
// =============================================================================

// FromController captures the controller's current pass.
func FromController(c *diagram.Controller) Layout {
	e := c.Engine()
	bounds := c.Bounds()
	year := c.DisplayYear()

	out := Layout{
		DisplayYear: year,
		MinimumYear: c.MinimumYear(),
		Width:       bounds.Width,
		Height:      bounds.Height,
		Rows:        []Row{},
	}
	if p := c.Primary(); p != nil {
		out.Primary = p.ID
	}

	for _, r := range c.Rows() {
		row := Row{}
		for _, g := range r.Groups() {
			group := Group{}
			for _, n := range g.Nodes() {
				b, _ := e.NodeBounds(n.Person())
				group.Nodes = append(group.Nodes, Node{
					ID:       n.Person().ID,
					Name:     n.Label(),
					Class:    n.Class().String(),
					X:        b.X,
					Y:        b.Y,
					Width:    b.Width,
					Height:   b.Height,
					Scale:    n.Scale(),
					Filtered: n.Filtered(),
					Hidden:   n.Hidden(),
					Years:    n.YearsText(),
					Age:      n.AgeText(year),
				})
			}
			row.Groups = append(row.Groups, group)
		}
		out.Rows = append(out.Rows, row)
	}

	for _, conn := range c.Connectors() {
		from, to := conn.Line()
		lc := Connector{
			From:     conn.Start().Node.Person().ID,
			To:       conn.End().Node.Person().ID,
			Kind:     conn.Kind().String(),
			Married:  conn.IsMarried(),
			Former:   conn.IsFormer(),
			Filtered: conn.Filtered(),
			X1:       from.X,
			Y1:       from.Y,
			X2:       to.X,
			Y2:       to.Y,
		}
		if d, ok := conn.MarriedDate(); ok {
			lc.MarriedDate = d.String()
		} else if d, ok := conn.PreviousMarriedDate(); ok {
			lc.MarriedDate = d.String()
		}
		if d, ok := conn.DivorcedDate(); ok {
			lc.DivorcedDate = d.String()
		}
		out.Connectors = append(out.Connectors, lc)
	}
	return out
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Every connector must reference nodes present in the layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal layout")
	}

	ids := make(map[string]bool)
	for _, n := range l.Nodes() {
		if n.ID == "" {
			return Layout{}, errors.New(errors.ErrCodeInvalidFormat, "layout node without id")
		}
		ids[n.ID] = true
	}
	for _, c := range l.Connectors {
		if !ids[c.From] || !ids[c.To] {
			return Layout{}, errors.New(errors.ErrCodeInvalidFormat, "connector %s→%s references unknown node", c.From, c.To)
		}
	}
	if l.Primary != "" && !ids[l.Primary] {
		return Layout{}, errors.New(errors.ErrCodeInvalidFormat, "primary %q is not in the layout", l.Primary)
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
