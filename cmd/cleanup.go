package cmd

import (
	"fmt"

	"github.com/jparise/gh-codesearch/internal/cache"
	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove the scratch directory and every downloaded file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cacheDir
		if dir == "" {
			dir = cache.DefaultDir()
		}

		if err := cache.New(dir).Cleanup(); err != nil {
			return err
		}

		if verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "Removed %s\n", dir)
		}
		return nil
	},
}
