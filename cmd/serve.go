package cmd

import (
	"github.com/spf13/cobra"

	"whiteboard/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdin/stdout",
	Long: `Serve the whiteboard tools over MCP stdio without a window. Edits are
saved to the shared database; destructive tools wait for approval in a
running desktop app.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return app.ServeMCP(cfg)
	},
}
