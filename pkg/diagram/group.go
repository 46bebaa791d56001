package diagram

import "slices"

// Group is a horizontal run of nodes: a relative together with their
// spouses and siblings, or the primary person alone.
type Group struct {
	nodes    []*Node
	spacing  float64
	size     Size
	location Point
}

func newGroup(spacing float64) *Group {
	return &Group{spacing: spacing}
}

func (g *Group) add(n *Node) { g.nodes = append(g.nodes, n) }

// Nodes returns the nodes in display order, left to right.
func (g *Group) Nodes() []*Node { return slices.Clone(g.nodes) }

func (g *Group) Len() int { return len(g.nodes) }

// Reverse flips the display order. Measured sizes are kept.
func (g *Group) Reverse() {
	slices.Reverse(g.nodes)
	g.place()
}

// Arrange measures every node and lays them out left to right.
func (g *Group) Arrange(m Measurer) Size {
	for _, n := range g.nodes {
		n.size = m.Measure(n)
	}
	g.place()
	return g.size
}

func (g *Group) place() {
	var width, height float64
	for i, n := range g.nodes {
		if i > 0 {
			width += g.spacing
		}
		width += n.size.Width
		height = max(height, n.size.Height)
	}

	var x float64
	for _, n := range g.nodes {
		n.location = Point{X: x, Y: (height - n.size.Height) / 2}
		x += n.size.Width + g.spacing
	}
	g.size = Size{Width: width, Height: height}
}

// Size is the summed width plus spacing and the tallest node's height.
func (g *Group) Size() Size { return g.size }

// Location is the group's offset inside its row.
func (g *Group) Location() Point { return g.location }
