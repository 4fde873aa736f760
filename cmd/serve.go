package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/ai-tutor/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the ask_document, search_document and get_active_namespace tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.close()

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "tutor MCP server started on stdio (store=%s)\n", a.cfg.VectorStore.Type)

		srv := mcpserver.NewServer(a.service, a.namespaces)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
