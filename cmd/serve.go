package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"azdo-cli/internal/mcp"
)

var serveNoHistory bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio",
	Long: `Start a Model Context Protocol (MCP) server that exposes the Azure
DevOps query tools to AI agents over stdio.

Every call is validated against the tool's schema before it reaches the
server, and recorded in the local history database unless --no-history
is set.

To use with an MCP client, register the binary as a stdio server:
  {
    "mcpServers": {
      "azdo": {
        "command": "azdo-cli",
        "args": ["serve"],
        "env": {
          "AZDO_SERVER_URL": "https://dev.azure.com",
          "AZDO_COLLECTION": "my-org",
          "AZDO_PAT": "..."
        }
      }
    }
  }`,
	Example: `  # Start the MCP server
  azdo-cli serve

  # Test manually (sends JSON-RPC via stdin)
  echo '{"jsonrpc":"2.0","method":"tools/list","id":1}' | azdo-cli serve`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		dispatcher, cleanup, err := newDispatcher(cfg, !serveNoHistory)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		if err := mcp.Serve(dispatcher, "azdo-cli", version); err != nil {
			fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveNoHistory, "no-history", false, "Do not record invocations to the local database")
}
