package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wfstudio/wfrender/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the frame cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := c.newCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer fc.Close()

			clearer, ok := fc.(cache.Clearer)
			if !ok {
				printInfo("Cache is disabled")
				return nil
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared the %s frame cache", c.cacheBackend())
			if f, ok := fc.(*cache.FileCache); ok {
				printDetail("Directory: %s", f.Dir())
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if b := c.cacheBackend(); b != backendFile {
				return fmt.Errorf("the %s cache backend has no directory", b)
			}
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}

func (c *CLI) cacheBackend() string {
	if c.Config.Cache.Backend == "" {
		return backendFile
	}
	return c.Config.Cache.Backend
}
