package cmd

import (
	"database/sql"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"azdo-cli/internal/storage"
	"azdo-cli/internal/tools"
	"azdo-cli/internal/tui"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Browse tools and call history interactively",
	Long: `Launch an interactive console for exploring the tool catalog and
the local invocation history.

The Tools tab lists every tool with its input schema. The History tab
shows recent calls recorded in the local database.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		var db *sql.DB
		if cfg.History {
			opened, err := storage.OpenDB(cfg.DatabasePath())
			if err == nil {
				db = opened
				defer db.Close()
			}
		}

		p := tea.NewProgram(tui.InitialModel(tools.Catalog(), db), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error running console: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}
