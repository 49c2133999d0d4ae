package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jparise/gh-codesearch/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve code search as MCP tools over stdio",
	Long: `Serve code search as Model Context Protocol tools over stdio.

Tools:
  search_code   Search and download every matching file ({"query", "url"})
  cleanup       Remove the scratch directory

Logs go to stderr when --verbose is set; stdout carries the protocol.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts, err := searchOptions(newLogger(cmd.ErrOrStderr(), verbose), nil)
		if err != nil {
			return err
		}

		server, err := mcp.NewServer(opts, version)
		if err != nil {
			return err
		}

		return server.Serve(ctx)
	},
}
