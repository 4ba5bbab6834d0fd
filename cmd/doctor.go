package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"azdo-cli/internal/azdo"
	"azdo-cli/internal/config"
	"azdo-cli/internal/storage"
	"azdo-cli/internal/tools"
)

var doctorQuiet bool

type CheckResult struct {
	Name    string
	Status  string // "ok", "warn", "fail"
	Message string
	FixCmd  string
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and connectivity",
	Long: `Run health checks on everything azdo-cli needs to work.

Checks:
  - AZDO_* configuration completeness
  - Default project
  - Data directory and history database
  - Saved queries file
  - Tool catalog consistency
  - Azure DevOps connectivity`,
	Example: `  # Run health checks
  azdo-cli doctor

  # Only show problems
  azdo-cli doctor --quiet`,
	Run: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorQuiet, "quiet", false, "Only show failures")
}

func runDoctor(cmd *cobra.Command, args []string) {
	fmt.Println("\033[1m🔍 azdo-cli doctor\033[0m")
	fmt.Println()

	checks := []func() CheckResult{
		checkConfig,
		checkDefaultProject,
		checkDataDir,
		checkDatabase,
		checkSavedQueries,
		checkCatalog,
		checkConnectivity,
	}

	var failed, warned, passed int

	for _, check := range checks {
		result := check()

		if doctorQuiet && result.Status == "ok" {
			passed++
			continue
		}

		icon := getStatusIcon(result.Status)
		fmt.Printf("%s \033[1m%s\033[0m\n", icon, result.Name)
		fmt.Printf("   %s\n", result.Message)

		switch result.Status {
		case "ok":
			passed++
		case "warn":
			warned++
		case "fail":
			failed++
			if result.FixCmd != "" {
				fmt.Printf("   \033[36m💡 Fix: %s\033[0m\n", result.FixCmd)
			}
		}
		fmt.Println()
	}

	fmt.Println("\033[90m────────────────────────────────\033[0m")
	fmt.Printf("✓ %d passed  ", passed)
	if warned > 0 {
		fmt.Printf("⚠ %d warnings  ", warned)
	}
	if failed > 0 {
		fmt.Printf("\033[31m✗ %d failed\033[0m", failed)
	}
	fmt.Println()

	if failed > 0 {
		os.Exit(1)
	}
}

func getStatusIcon(status string) string {
	switch status {
	case "ok":
		return "\033[32m✓\033[0m"
	case "warn":
		return "\033[33m⚠\033[0m"
	case "fail":
		return "\033[31m✗\033[0m"
	default:
		return "?"
	}
}

func checkConfig() CheckResult {
	cfg, err := config.Load()
	if err != nil {
		return CheckResult{
			Name:    "Configuration",
			Status:  "fail",
			Message: err.Error(),
		}
	}
	if err := cfg.Validate(); err != nil {
		return CheckResult{
			Name:    "Configuration",
			Status:  "fail",
			Message: err.Error(),
			FixCmd:  "export AZDO_SERVER_URL=... AZDO_COLLECTION=... AZDO_PAT=...",
		}
	}
	return CheckResult{
		Name:    "Configuration",
		Status:  "ok",
		Message: fmt.Sprintf("Connecting to %s", cfg.OrganizationURL()),
	}
}

func checkDefaultProject() CheckResult {
	cfg, err := config.Load()
	if err != nil || cfg.Project == "" {
		return CheckResult{
			Name:    "Default project",
			Status:  "warn",
			Message: "AZDO_PROJECT not set, every call must pass a project argument",
		}
	}
	return CheckResult{
		Name:    "Default project",
		Status:  "ok",
		Message: cfg.Project,
	}
}

func checkDataDir() CheckResult {
	cfg, err := config.Load()
	if err != nil {
		return CheckResult{Name: "Data directory", Status: "fail", Message: err.Error()}
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return CheckResult{
			Name:    "Data directory",
			Status:  "fail",
			Message: fmt.Sprintf("Cannot create %s: %v", cfg.DataDir, err),
		}
	}
	return CheckResult{
		Name:    "Data directory",
		Status:  "ok",
		Message: cfg.DataDir,
	}
}

func checkDatabase() CheckResult {
	cfg, err := config.Load()
	if err != nil {
		return CheckResult{Name: "History database", Status: "fail", Message: err.Error()}
	}
	if !cfg.History {
		return CheckResult{
			Name:    "History database",
			Status:  "warn",
			Message: "History recording is disabled (AZDO_HISTORY=false)",
		}
	}
	db, err := storage.OpenDB(cfg.DatabasePath())
	if err != nil {
		return CheckResult{
			Name:    "History database",
			Status:  "fail",
			Message: fmt.Sprintf("Cannot open %s: %v", cfg.DatabasePath(), err),
		}
	}
	defer db.Close()

	items, err := storage.GetRecentInvocations(db, 1)
	if err != nil {
		return CheckResult{
			Name:    "History database",
			Status:  "fail",
			Message: fmt.Sprintf("Cannot query %s: %v", cfg.DatabasePath(), err),
		}
	}
	if len(items) == 0 {
		return CheckResult{
			Name:    "History database",
			Status:  "ok",
			Message: "Empty, no invocations recorded yet",
		}
	}
	return CheckResult{
		Name:    "History database",
		Status:  "ok",
		Message: fmt.Sprintf("Last invocation %s at %s", items[0].Tool, items[0].Timestamp.Format(time.RFC3339)),
	}
}

func checkSavedQueries() CheckResult {
	cfg, err := config.Load()
	if err != nil {
		return CheckResult{Name: "Saved queries", Status: "fail", Message: err.Error()}
	}
	queries, err := config.LoadQueries(cfg.QueriesPath())
	if err != nil {
		return CheckResult{
			Name:    "Saved queries",
			Status:  "fail",
			Message: err.Error(),
		}
	}
	if len(queries) == 0 {
		return CheckResult{
			Name:    "Saved queries",
			Status:  "ok",
			Message: "No saved queries",
		}
	}
	return CheckResult{
		Name:    "Saved queries",
		Status:  "ok",
		Message: fmt.Sprintf("%d saved queries in %s", len(queries), cfg.QueriesPath()),
	}
}

func checkCatalog() CheckResult {
	registry, err := tools.BuildRegistry(tools.Tables()...)
	if err != nil {
		return CheckResult{
			Name:    "Tool catalog",
			Status:  "fail",
			Message: err.Error(),
		}
	}
	return CheckResult{
		Name:    "Tool catalog",
		Status:  "ok",
		Message: fmt.Sprintf("%d tools registered", registry.Count()),
	}
}

func checkConnectivity() CheckResult {
	cfg, err := config.Load()
	if err != nil || cfg.Validate() != nil {
		return CheckResult{
			Name:    "Azure DevOps",
			Status:  "warn",
			Message: "Skipped, configuration incomplete",
		}
	}
	client, err := azdo.New(cfg)
	if err != nil {
		return CheckResult{Name: "Azure DevOps", Status: "fail", Message: err.Error()}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Core(ctx); err != nil {
		return CheckResult{
			Name:    "Azure DevOps",
			Status:  "fail",
			Message: fmt.Sprintf("Cannot reach %s: %v", cfg.OrganizationURL(), err),
			FixCmd:  "Check AZDO_SERVER_URL, AZDO_COLLECTION, and AZDO_PAT",
		}
	}
	return CheckResult{
		Name:    "Azure DevOps",
		Status:  "ok",
		Message: fmt.Sprintf("Reached %s", cfg.OrganizationURL()),
	}
}
