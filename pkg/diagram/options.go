package diagram

import (
	"time"

	"github.com/matzehuels/kintower/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultMaxNodes is the node budget for one layout pass.
	DefaultMaxNodes = 50

	// DefaultRelatedMultiplier scales spouses and siblings relative to the
	// row they are placed in.
	DefaultRelatedMultiplier = 0.8

	// DefaultGenerationMultiplier compounds once per parent generation.
	DefaultGenerationMultiplier = 0.9

	// DefaultChildMultiplier is the scale of every child row.
	DefaultChildMultiplier = 1.0

	DefaultNodeWidth    = 120.0
	DefaultNodeHeight   = 60.0
	DefaultNodeSpacing  = 10.0
	DefaultGroupSpacing = 30.0
	DefaultRowSpacing   = 40.0
)

// Measurer supplies the intrinsic size of a node. Rows and groups only add
// up what it returns.
type Measurer interface {
	Measure(n *Node) Size
}

// FixedMeasurer sizes every node as Size multiplied by the node's scale.
type FixedMeasurer struct {
	Size Size
}

// Measure implements [Measurer].
func (m FixedMeasurer) Measure(n *Node) Size {
	return Size{Width: m.Size.Width * n.Scale(), Height: m.Size.Height * n.Scale()}
}

// Options configures an [Engine] and a [Controller]. Zero budgets,
// multipliers, node sizes, clock and measurer are replaced by their defaults
// (see [Options.WithDefaults]); spacing is used as given.
type Options struct {
	MaxNodes             int
	RelatedMultiplier    float64
	GenerationMultiplier float64
	ChildMultiplier      float64

	// NodeSize is the unscaled node size used by the default measurer.
	NodeSize     Size
	NodeSpacing  float64
	GroupSpacing float64
	RowSpacing   float64

	// Now is the clock used for the current year and living ages.
	Now func() time.Time

	// Measurer overrides the fixed-size measurer built from NodeSize.
	Measurer Measurer
}

// DefaultOptions returns the standard layout configuration.
func DefaultOptions() Options {
	return Options{
		MaxNodes:             DefaultMaxNodes,
		RelatedMultiplier:    DefaultRelatedMultiplier,
		GenerationMultiplier: DefaultGenerationMultiplier,
		ChildMultiplier:      DefaultChildMultiplier,
		NodeSize:             Size{Width: DefaultNodeWidth, Height: DefaultNodeHeight},
		NodeSpacing:          DefaultNodeSpacing,
		GroupSpacing:         DefaultGroupSpacing,
		RowSpacing:           DefaultRowSpacing,
		Now:                  time.Now,
	}
}

// Validate checks that o describes a usable layout. Zero fields are
// accepted since [Options.WithDefaults] fills them in.
func (o Options) Validate() error {
	if o.MaxNodes < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "max nodes must be positive, got %d", o.MaxNodes)
	}
	multipliers := []struct {
		name  string
		value float64
	}{
		{"related multiplier", o.RelatedMultiplier},
		{"generation multiplier", o.GenerationMultiplier},
		{"child multiplier", o.ChildMultiplier},
	}
	for _, m := range multipliers {
		if m.value < 0 || m.value > 1 {
			return errors.New(errors.ErrCodeInvalidOptions, "%s must be in (0, 1], got %g", m.name, m.value)
		}
	}
	if o.NodeSize.Width < 0 || o.NodeSize.Height < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "node size must not be negative")
	}
	if o.NodeSpacing < 0 || o.GroupSpacing < 0 || o.RowSpacing < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "spacing must not be negative")
	}
	return nil
}

// WithDefaults returns a copy of o with zero budgets, multipliers, node
// sizes, clock and measurer replaced by their defaults.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.MaxNodes == 0 {
		o.MaxNodes = d.MaxNodes
	}
	if o.RelatedMultiplier == 0 {
		o.RelatedMultiplier = d.RelatedMultiplier
	}
	if o.GenerationMultiplier == 0 {
		o.GenerationMultiplier = d.GenerationMultiplier
	}
	if o.ChildMultiplier == 0 {
		o.ChildMultiplier = d.ChildMultiplier
	}
	if o.NodeSize.Width == 0 {
		o.NodeSize.Width = d.NodeSize.Width
	}
	if o.NodeSize.Height == 0 {
		o.NodeSize.Height = d.NodeSize.Height
	}
	if o.Now == nil {
		o.Now = d.Now
	}
	if o.Measurer == nil {
		o.Measurer = FixedMeasurer{Size: o.NodeSize}
	}
	return o
}
