package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacksize/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local download and estimate cache",
	}

	cmd.AddCommand(c.cacheSweepCommand("clear", "Clear all cached indexes, API responses and estimates", (*cache.FileCache).Clear))
	cmd.AddCommand(c.cacheSweepCommand("prune", "Remove expired cache entries", (*cache.FileCache).Prune))
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheSweepCommand builds "cache clear" and "cache prune", which differ
// only in which entries they remove.
func (c *CLI) cacheSweepCommand(use, short string, sweep func(*cache.FileCache) (int, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if b := c.Config.Cache.Backend; b != backendFile && b != backendNone {
				c.Logger.Warnf("cache backend is %s; only the local file cache is touched", b)
			}
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			n, err := sweep(fc)
			if err != nil {
				return fmt.Errorf("cache %s: %w", use, err)
			}
			printSuccess("Removed %d cached entries", n)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
