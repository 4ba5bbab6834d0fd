package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"azdo-cli/internal/storage"
	"azdo-cli/internal/textutil"
)

var (
	historyLimit  int
	historyFailed bool
	historySearch string
	historyStats  bool
	historyJSON   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent tool invocations",
	Example: `  # Last 20 invocations
  azdo-cli history

  # Only failures
  azdo-cli history --failed

  # Invocations mentioning a repository
  azdo-cli history --search web

  # Per-tool call counts
  azdo-cli history --stats`,
	Run: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of entries to show")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "Show only failed invocations")
	historyCmd.Flags().StringVar(&historySearch, "search", "", "Filter by tool name, arguments, or error text")
	historyCmd.Flags().BoolVar(&historyStats, "stats", false, "Show per-tool call counts instead of entries")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print entries as JSON")
}

func runHistory(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	db := openHistoryDB(cfg)
	defer db.Close()

	if historyStats {
		counts, err := storage.ToolCounts(db)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(counts) == 0 {
			fmt.Println("No invocations recorded yet")
			return
		}
		for _, c := range counts {
			fmt.Printf("  %-26s %5d calls  %4d failed\n", c.Tool, c.Calls, c.Failures)
		}
		return
	}

	var items []storage.InvocationRow
	var err error
	switch {
	case historyFailed:
		items, err = storage.GetFailedInvocations(db, storage.QueryOpts{Limit: historyLimit, Tool: historySearch})
	case historySearch != "":
		items, err = storage.SearchInvocations(db, historySearch, historyLimit)
	default:
		items, err = storage.GetRecentInvocations(db, historyLimit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if historyJSON {
		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	if len(items) == 0 {
		fmt.Println("No invocations recorded yet")
		return
	}
	for _, item := range items {
		icon := "\033[32m✓\033[0m"
		if !item.OK {
			icon = "\033[31m✗\033[0m"
		}
		fmt.Printf("%s %s  %-26s %5dms  %s\n",
			icon,
			item.Timestamp.Format("2006-01-02 15:04:05"),
			item.Tool,
			item.DurationMs,
			textutil.TruncateWithEllipsis(item.Error, 60),
		)
	}
}
