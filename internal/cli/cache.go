package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintower/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear the layout and render cache",
	}

	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheStatsCommand())
	cmd.AddCommand(c.cachePruneCommand())
	cmd.AddCommand(c.cacheClearCommand())

	return cmd
}

// fileCacheDir returns the directory of the file cache, from the config or
// the XDG default.
func (c *CLI) fileCacheDir() (string, error) {
	if dir := c.config.Cache.Dir; dir != "" {
		return dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}

func (c *CLI) openFileCache() (*cache.FileCache, error) {
	dir, err := c.fileCacheDir()
	if err != nil {
		return nil, err
	}
	return cache.NewFileCache(dir)
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.fileCacheDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Out, dir)
			return nil
		},
	}
}

// cacheStatsCommand creates the "cache stats" subcommand.
func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the number and size of cached entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := c.openFileCache()
			if err != nil {
				return err
			}
			st, err := fc.Stats(cmd.Context())
			if err != nil {
				return err
			}

			printKeyValue(c.Out, "Directory", fc.Dir())
			printKeyValue(c.Out, "Entries", strconv.Itoa(st.Entries))
			printKeyValue(c.Out, "Expired", strconv.Itoa(st.Expired))
			printKeyValue(c.Out, "Size", formatBytes(st.Bytes))

			types := make([]string, 0, len(st.ByType))
			for t := range st.ByType {
				types = append(types, t)
			}
			sort.Strings(types)
			for _, t := range types {
				printDetail(c.Out, "%s: %d", t, st.ByType[t])
			}
			return nil
		},
	}
}

// cachePruneCommand creates the "cache prune" subcommand.
func (c *CLI) cachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := c.openFileCache()
			if err != nil {
				return err
			}
			n, err := fc.Prune(cmd.Context())
			if err != nil {
				return err
			}
			printSuccess(c.Out, "Pruned %d expired entries", n)
			return nil
		},
	}
}

// cacheClearCommand creates the "cache clear" subcommand. With a Redis URL
// configured, kintower's keys in Redis are cleared instead.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached layout and render",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if url := c.config.Cache.RedisURL; url != "" {
				rc, err := cache.NewRedisCache(ctx, url)
				if err != nil {
					return err
				}
				defer rc.Close()
				n, err := rc.Clear(ctx, redisKeyPrefix)
				if err != nil {
					return err
				}
				printSuccess(c.Out, "Cleared %d cached entries", n)
				printDetail(c.Out, "Redis keys: %s*", redisKeyPrefix)
				return nil
			}

			fc, err := c.openFileCache()
			if err != nil {
				return err
			}
			st, err := fc.Stats(ctx)
			if err != nil {
				return err
			}
			if err := fc.Clear(ctx); err != nil {
				return err
			}
			printSuccess(c.Out, "Cleared %d cached entries", st.Entries+st.Expired)
			printDetail(c.Out, "Directory: %s", fc.Dir())
			return nil
		},
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}
