// Package cli implements the kintower command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintower/pkg/buildinfo"
	"github.com/matzehuels/kintower/pkg/cache"
	"github.com/matzehuels/kintower/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "kintower"

	// redisKeyPrefix scopes every Redis key written by kintower.
	redisKeyPrefix = appName + ":"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Out    io.Writer

	configPath string
	config     Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Kintower lays out family trees around one person",
		Long: `Kintower lays out family trees as generational rows centered on a
primary person: ancestors above, descendants below, spouses and siblings
beside each person, with a display year that greys out people and marriages
that did not yet exist.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/kintower/kintower.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, keyer, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

// newCache picks the backend: none when disabled, Redis when a URL is
// configured, the file cache otherwise.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, cache.Keyer, error) {
	cfg := c.config.Cache
	if noCache || cfg.Disabled {
		return cache.NewNullCache(), nil, nil
	}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		c.Logger.Debug("using redis cache")
		return cache.WithTTL(rc, cfg.TTL.Duration), cache.NewScopedKeyer(nil, redisKeyPrefix), nil
	}

	dir := cfg.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil, nil
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, err
	}
	return cache.WithTTL(fc, cfg.TTL.Duration), nil, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/kintower/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags registers the layout options shared by layout, render, browse
// and serve.
func layoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVarP(&opts.Primary, "primary", "p", "", "person to center on (default: the file's primary)")
	cmd.Flags().IntVarP(&opts.Year, "year", "y", 0, "display year (default: current year)")
	cmd.Flags().StringVar(&opts.Today, "today", "", "date used for ages of living people, YYYY-MM-DD")
	cmd.Flags().IntVar(&opts.MaxNodes, "max-nodes", 0, "node budget (default 50)")
	cmd.Flags().Float64Var(&opts.RelatedMultiplier, "related-multiplier", 0, "scale of spouses and siblings relative to their person (default 0.8)")
	cmd.Flags().Float64Var(&opts.GenerationMultiplier, "generation-multiplier", 0, "scale applied per ancestor generation (default 0.9)")
	cmd.Flags().Float64Var(&opts.ChildMultiplier, "child-multiplier", 0, "scale of descendant generations (default 1)")
}

// withConfig returns opts with the config file's layout values filled in.
func (c *CLI) withConfig(opts pipeline.Options) pipeline.Options {
	c.config.Layout.apply(&opts)
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}
