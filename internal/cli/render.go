package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintower/pkg/graph"
	"github.com/matzehuels/kintower/pkg/pipeline"
	"github.com/matzehuels/kintower/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string // output file (single format) or base path
	formats    []string
	fromLayout bool // input is a layout.json instead of a family file
	noCache    bool
}

// renderCommand creates the render command for generating diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var ro renderOpts
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a family diagram to SVG, PNG, PDF, DOT or JSON",
		Long: `Render a family diagram.

Formats:
  svg    node-link diagram laid out by Graphviz
  chart  the computed layout drawn at its own coordinates
  png    chart rasterized with rsvg-convert
  pdf    chart converted with rsvg-convert
  dot    Graphviz source
  json   the layout itself

The input is a family file, or a layout written by 'layout' when
--from-layout is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ro.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(ro.formats); err != nil {
				return err
			}
			opts.Formats = ro.formats
			return c.runRender(cmd.Context(), args[0], c.withConfig(opts), ro)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), chart, png, pdf, dot, json (comma-separated)")
	cmd.Flags().BoolVar(&ro.fromLayout, "from-layout", false, "read a layout.json instead of a family file")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show life years, age and classification in labels")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	layoutFlags(cmd, &opts)
	_ = cmd.RegisterFlagCompletionFunc("primary", completePeople)
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"svg", "chart", "png", "pdf", "dot", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, ro renderOpts) error {
	if needsConverter(ro.formats) && !render.Available() {
		printWarning(c.Out, "rsvg-convert not found; png and pdf output will fail")
	}

	runner, err := c.newRunner(ctx, ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinner(ctx, os.Stderr, "Rendering "+strings.Join(ro.formats, ", ")+"...")
	spinner.Start()

	artifacts, people, nodes, cached, err := c.renderInput(ctx, runner, input, opts, ro.fromLayout)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths := outputPaths(ro.output, input, ro.formats)
	for _, format := range ro.formats {
		if err := os.WriteFile(paths[format], artifacts[format], 0644); err != nil {
			return fmt.Errorf("write %s: %w", paths[format], err)
		}
	}
	prog.done("rendered", "formats", len(ro.formats), "cached", cached)

	printSuccess(c.Out, "Render complete")
	for _, format := range ro.formats {
		printFile(c.Out, paths[format])
	}
	if people > 0 {
		printStats(c.Out, people, nodes, cached)
	}
	return nil
}

// renderInput runs the pipeline on a family file, or only the render stage
// on a saved layout.
func (c *CLI) renderInput(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options, fromLayout bool) (map[string][]byte, int, int, bool, error) {
	if fromLayout {
		l, err := graph.ReadLayoutFile(input)
		if err != nil {
			return nil, 0, 0, false, fmt.Errorf("load layout %s: %w", input, err)
		}
		artifacts, cached, err := runner.Render(ctx, l, opts)
		if err != nil {
			return nil, 0, 0, false, err
		}
		return artifacts, 0, len(l.Nodes()), cached, nil
	}

	result, err := runner.ExecuteFile(ctx, input, opts)
	if err != nil {
		return nil, 0, 0, false, err
	}
	cached := result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit
	return result.Artifacts, result.Stats.People, result.Stats.Nodes, cached, nil
}

func needsConverter(formats []string) bool {
	return slices.Contains(formats, pipeline.FormatPNG) || slices.Contains(formats, pipeline.FormatPDF)
}

// outputPaths decides where each format is written. A single format goes
// to output as given; several formats share output (or the input name) as
// base path with a per-format extension. JSON layouts get ".layout.json" so
// a family.json input is never overwritten.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		ext := pipeline.Extension(f)
		if f == pipeline.FormatJSON {
			ext = "layout.json"
		}
		paths[f] = base + "." + ext
	}
	return paths
}

// basePath derives the base output path from the output and input file
// paths, stripping a known extension from either.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".layout")
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
