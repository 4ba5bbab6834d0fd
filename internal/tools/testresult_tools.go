package tools

import (
	"context"
	"fmt"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/test"

	"azdo-cli/internal/azdo"
	"azdo-cli/internal/textutil"
)

const stackTraceLimit = 2000

// TestResultTable declares the test run and result operations.
func TestResultTable() Table {
	return Table{
		Domain: "tests",
		Operations: []Operation{
			{
				Name:        "list_test_runs",
				Description: "List recent test runs, optionally scoped to one build.",
				Params: objectParams(map[string]*Param{
					"project":  {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
					"build_id": {Kind: KindNumber, Description: "Restrict to runs of one build.", Optional: true},
					"top":      {Kind: KindNumber, Description: "Maximum number of runs to return.", Default: 20},
				}),
				Handler: listTestRuns,
			},
			{
				Name:        "get_test_run",
				Description: "Get one test run with its outcome statistics.",
				Params: objectParams(map[string]*Param{
					"run_id":  {Kind: KindNumber, Description: "Test run ID."},
					"project": {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
				}),
				Handler: getTestRun,
			},
			{
				Name:        "list_test_results",
				Description: "List the individual results of a test run.",
				Params: objectParams(map[string]*Param{
					"run_id":  {Kind: KindNumber, Description: "Test run ID."},
					"project": {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
					"outcome": {Kind: KindEnum, Description: "Outcome to filter on.", Enum: []string{"all", "passed", "failed", "notExecuted"}, Default: "all"},
					"top":     {Kind: KindNumber, Description: "Maximum number of results to return.", Default: 100},
				}),
				Handler: listTestResults,
			},
			{
				Name:        "summarize_test_failures",
				Description: "Group the failures of a test run by error message.",
				Params: objectParams(map[string]*Param{
					"run_id":        {Kind: KindNumber, Description: "Test run ID."},
					"project":       {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
					"prefix_length": {Kind: KindNumber, Description: "Length of the message prefix used for grouping.", Default: 80},
					"top":           {Kind: KindNumber, Description: "Maximum number of failed results to read.", Default: 1000},
				}),
				Handler: summarizeTestFailures,
			},
		},
	}
}

// buildURI renders the resource URI the test run API filters builds by.
func buildURI(buildID int) string {
	return fmt.Sprintf("vstfs:///Build/Build/%d", buildID)
}

func outcomeFilter(s string) *[]test.TestOutcome {
	switch s {
	case "passed":
		return &[]test.TestOutcome{test.TestOutcomeValues.Passed}
	case "failed":
		return &[]test.TestOutcome{test.TestOutcomeValues.Failed}
	case "notExecuted":
		return &[]test.TestOutcome{test.TestOutcomeValues.NotExecuted}
	}
	return nil
}

func testRunMap(r test.TestRun) map[string]any {
	out := map[string]any{
		"id":            intVal(r.Id),
		"name":          strVal(r.Name),
		"state":         strVal(r.State),
		"isAutomated":   boolVal(r.IsAutomated),
		"startedDate":   timeVal(r.StartedDate),
		"completedDate": timeVal(r.CompletedDate),
		"totalTests":    intVal(r.TotalTests),
		"passedTests":   intVal(r.PassedTests),
		"unanalyzed":    intVal(r.UnanalyzedTests),
		"incomplete":    intVal(r.IncompleteTests),
		"webAccessUrl":  strVal(r.WebAccessUrl),
	}
	if r.Build != nil {
		out["build"] = map[string]any{
			"id":   strVal(r.Build.Id),
			"name": strVal(r.Build.Name),
		}
	}
	return out
}

func runStatistics(r test.TestRun) []map[string]any {
	stats := []map[string]any{}
	if r.RunStatistics == nil {
		return stats
	}
	for _, s := range *r.RunStatistics {
		stats = append(stats, map[string]any{
			"outcome": strVal(s.Outcome),
			"state":   strVal(s.State),
			"count":   intVal(s.Count),
		})
	}
	return stats
}

func listTestRuns(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	testClient, err := client.Tests(ctx)
	if err != nil {
		return nil, err
	}

	top := args.Int("top")
	runArgs := test.GetTestRunsArgs{
		Project: &project,
		Top:     &top,
	}
	if args.Has("build_id") {
		runArgs.BuildUri = ptr(buildURI(args.Int("build_id")))
	}
	runs, err := testClient.GetTestRuns(ctx, runArgs)
	if err != nil {
		return nil, fmt.Errorf("listing test runs in %q: %w", project, err)
	}

	out := make([]map[string]any, 0, len(*runs))
	for _, r := range *runs {
		out = append(out, testRunMap(r))
	}
	return map[string]any{
		"count": len(out),
		"runs":  out,
	}, nil
}

func getTestRun(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	testClient, err := client.Tests(ctx)
	if err != nil {
		return nil, err
	}

	runID := args.Int("run_id")
	r, err := testClient.GetTestRunById(ctx, test.GetTestRunByIdArgs{
		Project: &project,
		RunId:   &runID,
	})
	if err != nil {
		if azdo.IsNotFound(err) {
			return nil, fmt.Errorf("test run %d not found in %q", runID, project)
		}
		return nil, fmt.Errorf("getting test run %d: %w", runID, err)
	}

	out := testRunMap(*r)
	out["statistics"] = runStatistics(*r)
	if msg := strVal(r.ErrorMessage); msg != "" {
		out["errorMessage"] = msg
	}
	return out, nil
}

func testName(r test.TestCaseResult) string {
	if name := strVal(r.TestCaseTitle); name != "" {
		return name
	}
	return strVal(r.AutomatedTestName)
}

func fetchTestResults(ctx context.Context, testClient test.Client, project string, runID, top int, outcomes *[]test.TestOutcome) ([]test.TestCaseResult, error) {
	results, err := testClient.GetTestResults(ctx, test.GetTestResultsArgs{
		Project:  &project,
		RunId:    &runID,
		Top:      &top,
		Outcomes: outcomes,
	})
	if err != nil {
		if azdo.IsNotFound(err) {
			return nil, fmt.Errorf("test run %d not found in %q", runID, project)
		}
		return nil, fmt.Errorf("listing results of test run %d: %w", runID, err)
	}
	return *results, nil
}

func listTestResults(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	testClient, err := client.Tests(ctx)
	if err != nil {
		return nil, err
	}

	runID := args.Int("run_id")
	results, err := fetchTestResults(ctx, testClient, project, runID,
		args.Int("top"), outcomeFilter(args.String("outcome")))
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(results))
	for _, r := range results {
		entry := map[string]any{
			"id":            intVal(r.Id),
			"test":          testName(r),
			"outcome":       strVal(r.Outcome),
			"state":         strVal(r.State),
			"durationMs":    floatVal(r.DurationInMs),
			"completedDate": timeVal(r.CompletedDate),
		}
		if name := strVal(r.AutomatedTestName); name != "" {
			entry["automatedTestName"] = name
		}
		if msg := strVal(r.ErrorMessage); msg != "" {
			entry["errorMessage"] = msg
		}
		if trace := strVal(r.StackTrace); trace != "" {
			entry["stackTrace"] = textutil.TruncateWithEllipsis(trace, stackTraceLimit)
		}
		if computer := strVal(r.ComputerName); computer != "" {
			entry["computerName"] = computer
		}
		out = append(out, entry)
	}
	return map[string]any{
		"count":   len(out),
		"results": out,
	}, nil
}

func summarizeTestFailures(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	testClient, err := client.Tests(ctx)
	if err != nil {
		return nil, err
	}

	runID := args.Int("run_id")
	failed := &[]test.TestOutcome{test.TestOutcomeValues.Failed}
	results, err := fetchTestResults(ctx, testClient, project, runID, args.Int("top"), failed)
	if err != nil {
		return nil, err
	}

	cases := make([]FailureCase, 0, len(results))
	for _, r := range results {
		cases = append(cases, FailureCase{
			Test:    testName(r),
			Message: strVal(r.ErrorMessage),
		})
	}
	groups := GroupFailures(cases, args.Int("prefix_length"))
	return map[string]any{
		"runId":       runID,
		"failedCount": len(cases),
		"groupCount":  len(groups),
		"groups":      groups,
	}, nil
}
