package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/kintower/pkg/errors"
	"github.com/matzehuels/kintower/pkg/graph"
	"github.com/matzehuels/kintower/pkg/render"
	"github.com/matzehuels/kintower/pkg/render/chart"
	"github.com/matzehuels/kintower/pkg/render/nodelink"
)

// pngScale is the rasterization factor for PNG output.
const pngScale = 2.0

// RenderLayout generates output artifacts in the requested formats.
func RenderLayout(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(ctx, l, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, l graph.Layout, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return graph.MarshalLayout(l)
	case FormatDOT:
		return []byte(nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed})), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(l, nodelink.Options{Detailed: opts.Detailed}))
	case FormatChart:
		return chartSVG(l, opts, chart.WithInteraction()), nil
	case FormatPNG:
		return render.ToPNG(ctx, chartSVG(l, opts), pngScale)
	case FormatPDF:
		return render.ToPDF(ctx, chartSVG(l, opts))
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
	}
}

// chartSVG draws the layout at its own coordinates. Hover highlighting is
// only added for the SVG itself; rasterized output cannot use it.
func chartSVG(l graph.Layout, opts Options, extra ...chart.Option) []byte {
	svgOpts := extra
	if opts.Detailed {
		svgOpts = append(svgOpts, chart.WithDetails())
	}
	return chart.RenderSVG(l, svgOpts...)
}
