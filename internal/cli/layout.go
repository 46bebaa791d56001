package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintower/pkg/graph"
	"github.com/matzehuels/kintower/pkg/pipeline"
)

// layoutCommand creates the layout command for computing diagram layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		summary bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [family.json|family.toml]",
		Short: "Compute the diagram layout around a person",
		Long: `Compute the diagram layout around a person.

The layout command reads a family file and arranges the primary person's
ancestors, descendants, spouses and siblings into generational rows. The
output is a layout.json file (same format as 'render -f json') that can be
rendered with 'render --from-layout'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], c.withConfig(opts), output, noCache, summary)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&summary, "summary", true, "print a table of the generations")
	layoutFlags(cmd, &opts)
	_ = cmd.RegisterFlagCompletionFunc("primary", completePeople)

	return cmd
}

// runLayout loads the family, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache, summary bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, _, err := runner.Load(ctx, input)
	if err != nil {
		return fmt.Errorf("load family %s: %w", input, err)
	}

	l, cacheHit, err := runner.Layout(ctx, g, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	if err := graph.WriteLayoutFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess(c.Out, "Layout complete")
	printFile(c.Out, outputPath)
	printStats(c.Out, g.Len(), len(l.Nodes()), cacheHit)
	if summary {
		fmt.Fprintln(c.Out, layoutTable(l))
	}
	fmt.Fprintln(c.Out)
	printNextStep(c.Out, "Render", appName+" render --from-layout "+outputPath)

	return nil
}
