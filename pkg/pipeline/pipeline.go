// Package pipeline provides the load → layout → render pipeline shared by the
// CLI, the terminal browser and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read a JSON or TOML family file into a [family.Graph]
//  2. Layout: run a diagram pass around the primary person and capture it as
//     a [graph.Layout]
//  3. Render: produce artifacts (JSON, DOT, SVG, chart SVG, PNG, PDF)
//
// Each stage can be run on its own or through [Runner.Execute]. Every stage
// is cached: loaded families by file content, layouts by family content and
// layout options, artifacts by layout content and render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	g, _, err := runner.Load(ctx, "lovelace.json")
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Execute(ctx, g, pipeline.Options{
//	    Primary: "ada",
//	    Year:    1840,
//	    Formats: []string{"svg", "json"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/kintower/pkg/cache"
	"github.com/matzehuels/kintower/pkg/diagram"
	"github.com/matzehuels/kintower/pkg/errors"
	"github.com/matzehuels/kintower/pkg/graph"
)

// dateLayout is the format of [Options.Today].
const dateLayout = "2006-01-02"

// Format constants for output formats.
const (
	// FormatJSON is the serialized [graph.Layout].
	FormatJSON = "json"
	// FormatDOT is the Graphviz source of the node-link diagram.
	FormatDOT = "dot"
	// FormatSVG is the node-link diagram rendered by Graphviz.
	FormatSVG = "svg"
	// FormatChart is the positioned diagram drawn at the layout's own
	// coordinates.
	FormatChart = "chart"
	// FormatPNG and FormatPDF convert the chart through rsvg-convert.
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:  true,
	FormatDOT:   true,
	FormatSVG:   true,
	FormatChart: true,
	FormatPNG:   true,
	FormatPDF:   true,
}

// ContentType returns the MIME type served for format.
func ContentType(format string) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatSVG, FormatChart:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Extension returns the file extension written for format.
func Extension(format string) string {
	if format == FormatChart {
		return "chart.svg"
	}
	return format
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline. Field tags allow
// decoding from JSON bodies and from query parameters via mapstructure.
type Options struct {
	// Primary is the person the diagram is centered on. Empty means the
	// family file's primary person.
	Primary string `json:"primary,omitempty" mapstructure:"primary"`
	// Year is the display year; 0 keeps the current year.
	Year int `json:"year,omitempty" mapstructure:"year"`
	// Today fixes the date used for ages of living people (YYYY-MM-DD).
	// Empty means the current date.
	Today string `json:"today,omitempty" mapstructure:"today"`

	MaxNodes             int     `json:"max_nodes,omitempty" mapstructure:"max_nodes"`
	RelatedMultiplier    float64 `json:"related_multiplier,omitempty" mapstructure:"related_multiplier"`
	GenerationMultiplier float64 `json:"generation_multiplier,omitempty" mapstructure:"generation_multiplier"`
	ChildMultiplier      float64 `json:"child_multiplier,omitempty" mapstructure:"child_multiplier"`
	NodeWidth            float64 `json:"node_width,omitempty" mapstructure:"node_width"`
	NodeHeight           float64 `json:"node_height,omitempty" mapstructure:"node_height"`
	NodeSpacing          float64 `json:"node_spacing,omitempty" mapstructure:"node_spacing"`
	GroupSpacing         float64 `json:"group_spacing,omitempty" mapstructure:"group_spacing"`
	RowSpacing           float64 `json:"row_spacing,omitempty" mapstructure:"row_spacing"`

	Formats  []string `json:"formats,omitempty" mapstructure:"formats"`
	Detailed bool     `json:"detailed,omitempty" mapstructure:"detailed"`
	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty" mapstructure:"refresh"`

	today     time.Time
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Layout    graph.Layout
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	People     int
	Nodes      int
	Connectors int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool
	LayoutHit bool
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(formatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and fills in defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Primary != "" {
		if err := errors.ValidatePersonID(o.Primary); err != nil {
			return err
		}
	}
	if o.Year < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "year must not be negative, got %d", o.Year)
	}

	if o.Today == "" {
		o.today = time.Now()
		o.Today = o.today.Format(dateLayout)
	} else {
		t, err := time.Parse(dateLayout, o.Today)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidOptions, err, "invalid today %q (want YYYY-MM-DD)", o.Today)
		}
		o.today = t
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	d := diagram.DefaultOptions()
	if o.NodeSpacing == 0 {
		o.NodeSpacing = d.NodeSpacing
	}
	if o.GroupSpacing == 0 {
		o.GroupSpacing = d.GroupSpacing
	}
	if o.RowSpacing == 0 {
		o.RowSpacing = d.RowSpacing
	}
	if err := o.diagramOptions().Validate(); err != nil {
		return err
	}

	filled := o.diagramOptions().WithDefaults()
	o.MaxNodes = filled.MaxNodes
	o.RelatedMultiplier = filled.RelatedMultiplier
	o.GenerationMultiplier = filled.GenerationMultiplier
	o.ChildMultiplier = filled.ChildMultiplier
	o.NodeWidth = filled.NodeSize.Width
	o.NodeHeight = filled.NodeSize.Height

	o.validated = true
	return nil
}

// DiagramOptions returns the layout configuration for the diagram engine.
// Call ValidateAndSetDefaults first.
func (o *Options) DiagramOptions() diagram.Options {
	return o.diagramOptions().WithDefaults()
}

func (o *Options) diagramOptions() diagram.Options {
	today := o.today
	opts := diagram.Options{
		MaxNodes:             o.MaxNodes,
		RelatedMultiplier:    o.RelatedMultiplier,
		GenerationMultiplier: o.GenerationMultiplier,
		ChildMultiplier:      o.ChildMultiplier,
		NodeSize:             diagram.Size{Width: o.NodeWidth, Height: o.NodeHeight},
		NodeSpacing:          o.NodeSpacing,
		GroupSpacing:         o.GroupSpacing,
		RowSpacing:           o.RowSpacing,
	}
	if !today.IsZero() {
		opts.Now = func() time.Time { return today }
	}
	return opts
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Primary:              o.Primary,
		Year:                 o.Year,
		Today:                o.Today,
		MaxNodes:             o.MaxNodes,
		RelatedMultiplier:    o.RelatedMultiplier,
		GenerationMultiplier: o.GenerationMultiplier,
		ChildMultiplier:      o.ChildMultiplier,
		NodeWidth:            o.NodeWidth,
		NodeHeight:           o.NodeHeight,
		NodeSpacing:          o.NodeSpacing,
		GroupSpacing:         o.GroupSpacing,
		RowSpacing:           o.RowSpacing,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
	}
}
