package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"azdo-cli/internal/tools"
)

var (
	toolsSearch string
	toolsSchema string
	toolsJSON   bool
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the available query tools",
	Example: `  # List every tool grouped by domain
  azdo-cli tools

  # Find tools about builds
  azdo-cli tools --search build

  # Show the input schema of one tool
  azdo-cli tools --schema list_commits`,
	Run: runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.Flags().StringVar(&toolsSearch, "search", "", "Rank tools against a search query")
	toolsCmd.Flags().StringVar(&toolsSchema, "schema", "", "Print the input schema of one tool")
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "Print the listing as JSON")
}

func runTools(cmd *cobra.Command, args []string) {
	registry := tools.Catalog()

	if toolsSchema != "" {
		op, ok := registry.Lookup(toolsSchema)
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown tool: %s\n", toolsSchema)
			os.Exit(1)
		}
		data, err := json.MarshalIndent(op.InputSchema(), "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	var listing []tools.OperationInfo
	if toolsSearch != "" {
		listing = registry.Search(toolsSearch)
	} else {
		listing = registry.List()
	}

	if toolsJSON {
		data, err := json.MarshalIndent(listing, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	if toolsSearch != "" {
		for _, info := range listing {
			fmt.Printf("  %-26s %s\n", info.Name, info.Description)
		}
		if len(listing) == 0 {
			fmt.Printf("No tools match %q\n", toolsSearch)
		}
		return
	}

	domain := ""
	for _, info := range listing {
		if info.Domain != domain {
			domain = info.Domain
			fmt.Printf("%s\n", domain)
		}
		fmt.Printf("  %-26s %s\n", info.Name, info.Description)
	}
	fmt.Printf("\n%d tools\n", registry.Count())
}
