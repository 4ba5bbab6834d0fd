package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"azdo-cli/internal/azdo"
	"azdo-cli/internal/config"
	"azdo-cli/internal/logger"
	"azdo-cli/internal/storage"
	"azdo-cli/internal/tools"
)

const version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "azdo-cli",
	Short: "Read-only Azure DevOps query tools for AI agents and people",
	Long: `azdo-cli exposes an Azure DevOps Server instance as a set of read-only
query tools: projects, repositories, work items, builds, releases,
pipelines, and test results.

The same tool catalog is reachable three ways: as an MCP server for AI
agents (serve), as one-shot CLI calls (call), and as an interactive
browser (console). Configuration comes from AZDO_* environment
variables, AZDO_SERVER_URL, AZDO_COLLECTION, and AZDO_PAT at minimum.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newDispatcher wires the dispatch stack: upstream client, catalog, and,
// when history is on, the database and JSONL recorders. The returned
// cleanup closes the database.
func newDispatcher(cfg *config.Config, withHistory bool) (*tools.Dispatcher, func(), error) {
	client, err := azdo.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	registry, err := tools.BuildRegistry(tools.Tables()...)
	if err != nil {
		return nil, nil, err
	}
	dispatcher := tools.NewDispatcher(registry, client)

	cleanup := func() {}
	if withHistory && cfg.History {
		log, err := logger.New(cfg.LogPath())
		if err != nil {
			return nil, nil, err
		}
		db, err := storage.OpenDB(cfg.DatabasePath())
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { db.Close() }
		dispatcher.WithRecorder(tools.MultiRecorder(
			storage.NewRecorder(db, log),
			logRecorder{log: log},
		))
	}
	return dispatcher, cleanup, nil
}

func openHistoryDB(cfg *config.Config) *sql.DB {
	db, err := storage.OpenDB(cfg.DatabasePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening history database: %v\n", err)
		os.Exit(1)
	}
	return db
}

// logRecorder mirrors invocation records into the JSONL log.
type logRecorder struct {
	log *logger.Logger
}

func (r logRecorder) Record(_ context.Context, inv tools.Invocation) {
	_ = r.log.LogInvocation(inv.Tool, inv.OK, inv.Error, inv.Arguments, inv.DurationMs, inv.SessionID)
}
