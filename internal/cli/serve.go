package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintower/pkg/observability"
	"github.com/matzehuels/kintower/pkg/pipeline"
	"github.com/matzehuels/kintower/pkg/server"
)

// serveCommand creates the serve command for the HTTP diagram server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve diagrams of a family over HTTP",
		Long: `Serve diagrams of a family over HTTP.

Diagrams are served at /diagram/<person>.<format>, for example
/diagram/ada.svg?year=1840. Query parameters override the layout flags.
The family file is re-read on every request, so edits show up without a
restart. Prometheus metrics are exposed at /metrics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, args[0], addr, c.withConfig(opts), noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show life years, age and classification in labels")
	layoutFlags(cmd, &opts)
	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, input, addr string, opts pipeline.Options, noCache bool) error {
	ctx := cmd.Context()

	// Validate a copy so bad flags fail at startup; requests start from the
	// unvalidated defaults.
	check := opts
	if err := check.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()
	if _, _, err := runner.Load(ctx, input); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observability.NewMetrics(reg).Register()
	defer observability.Reset()

	printInfo(c.Out, "Serving %s on http://%s", input, addr)
	return server.New(runner, input, opts, reg, c.Logger).Run(ctx, addr)
}
