package diagram

import "slices"

// Row is one generation of the diagram.
type Row struct {
	groups   []*Group
	spacing  float64
	size     Size
	location Point
}

func newRow(spacing float64) *Row {
	return &Row{spacing: spacing}
}

func (r *Row) add(g *Group) { r.groups = append(r.groups, g) }

// Groups returns the groups in display order.
func (r *Row) Groups() []*Group { return slices.Clone(r.groups) }

func (r *Row) Len() int { return len(r.groups) }

// Nodes returns every node in the row, left to right.
func (r *Row) Nodes() []*Node {
	var out []*Node
	for _, g := range r.groups {
		out = append(out, g.nodes...)
	}
	return out
}

// NodeCount returns the number of nodes across all groups.
func (r *Row) NodeCount() int {
	var n int
	for _, g := range r.groups {
		n += len(g.nodes)
	}
	return n
}

// Arrange arranges every group and lays the groups out left to right.
func (r *Row) Arrange(m Measurer) Size {
	for _, g := range r.groups {
		g.Arrange(m)
	}
	r.place()
	return r.size
}

func (r *Row) place() {
	var width, height float64
	for i, g := range r.groups {
		if i > 0 {
			width += r.spacing
		}
		width += g.size.Width
		height = max(height, g.size.Height)
	}

	var x float64
	for _, g := range r.groups {
		g.location = Point{X: x, Y: (height - g.size.Height) / 2}
		x += g.size.Width + r.spacing
	}
	r.size = Size{Width: width, Height: height}
}

func (r *Row) Size() Size { return r.size }

// Location is the row's offset in the diagram.
func (r *Row) Location() Point { return r.location }

// Bounds returns the row's rectangle in diagram coordinates.
func (r *Row) Bounds() Rect { return RectAt(r.location, r.size) }
