package tools

import (
	"context"
	"fmt"
	"regexp"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/build"
	"golang.org/x/sync/errgroup"

	"azdo-cli/internal/azdo"
)

// BuildTable declares the build pipeline operations.
func BuildTable() Table {
	return Table{
		Domain: "builds",
		Operations: []Operation{
			{
				Name:        "list_build_definitions",
				Description: "List the build definitions of a project.",
				Params: objectParams(map[string]*Param{
					"project": {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
					"name":    {Kind: KindString, Description: "Definition name filter, * wildcards allowed.", Default: ""},
					"top":     {Kind: KindNumber, Description: "Maximum number of definitions to return.", Default: 50},
				}),
				Handler: listBuildDefinitions,
			},
			{
				Name:        "list_builds",
				Description: "List recent builds, filterable by definition, status, result, and branch.",
				Params: objectParams(map[string]*Param{
					"project":       {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
					"definition_id": {Kind: KindNumber, Description: "Restrict to one build definition.", Optional: true},
					"status":        {Kind: KindEnum, Description: "Build status to filter on.", Enum: []string{"all", "inProgress", "completed", "notStarted"}, Default: "all"},
					"result":        {Kind: KindEnum, Description: "Build result to filter on.", Enum: []string{"all", "succeeded", "partiallySucceeded", "failed", "canceled"}, Default: "all"},
					"branch":        {Kind: KindString, Description: "Source branch to filter on.", Default: ""},
					"top":           {Kind: KindNumber, Description: "Maximum number of builds to return.", Default: 20},
				}),
				Handler: listBuilds,
			},
			{
				Name:        "get_build",
				Description: "Get one build with its timeline and any errors or warnings.",
				Params: objectParams(map[string]*Param{
					"build_id": {Kind: KindNumber, Description: "Build ID."},
					"project":  {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
				}),
				Handler: getBuild,
			},
			{
				Name:        "get_build_log",
				Description: "Read the tail of a build log.",
				Params: objectParams(map[string]*Param{
					"build_id": {Kind: KindNumber, Description: "Build ID."},
					"project":  {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
					"log_id":   {Kind: KindNumber, Description: "Log to read. Defaults to the last log of the build.", Optional: true},
					"tail":     {Kind: KindNumber, Description: "Number of trailing lines to return, 0 for the whole log.", Default: 200},
				}),
				Handler: getBuildLog,
			},
			{
				Name:        "scan_build_log",
				Description: "Scan build logs for lines matching a pattern, errors by default.",
				Params: objectParams(map[string]*Param{
					"build_id":    {Kind: KindNumber, Description: "Build ID."},
					"project":     {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
					"pattern":     {Kind: KindString, Description: "Regular expression to scan for. Defaults to common failure keywords.", Default: ""},
					"log_id":      {Kind: KindNumber, Description: "Restrict the scan to one log.", Optional: true},
					"max_matches": {Kind: KindNumber, Description: "Stop after this many matches.", Default: 50},
				}),
				Handler: scanBuildLog,
			},
		},
	}
}

func buildStatusFilter(s string) *build.BuildStatus {
	switch s {
	case "inProgress":
		return &build.BuildStatusValues.InProgress
	case "completed":
		return &build.BuildStatusValues.Completed
	case "notStarted":
		return &build.BuildStatusValues.NotStarted
	}
	return nil
}

func buildResultFilter(s string) *build.BuildResult {
	switch s {
	case "succeeded":
		return &build.BuildResultValues.Succeeded
	case "partiallySucceeded":
		return &build.BuildResultValues.PartiallySucceeded
	case "failed":
		return &build.BuildResultValues.Failed
	case "canceled":
		return &build.BuildResultValues.Canceled
	}
	return nil
}

func buildMap(b build.Build) map[string]any {
	out := map[string]any{
		"id":            intVal(b.Id),
		"buildNumber":   strVal(b.BuildNumber),
		"status":        enumVal(b.Status),
		"result":        enumVal(b.Result),
		"sourceBranch":  trimRef(strVal(b.SourceBranch)),
		"sourceVersion": strVal(b.SourceVersion),
		"queueTime":     timeVal(b.QueueTime),
		"startTime":     timeVal(b.StartTime),
		"finishTime":    timeVal(b.FinishTime),
		"requestedFor":  identityName(b.RequestedFor),
		"reason":        enumVal(b.Reason),
		"url":           strVal(b.Url),
	}
	if b.Definition != nil {
		out["definition"] = map[string]any{
			"id":   intVal(b.Definition.Id),
			"name": strVal(b.Definition.Name),
		}
	}
	return out
}

func listBuildDefinitions(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	buildClient, err := client.Builds(ctx)
	if err != nil {
		return nil, err
	}

	top := args.Int("top")
	defArgs := build.GetDefinitionsArgs{
		Project:             &project,
		Top:                 &top,
		IncludeLatestBuilds: ptr(true),
	}
	if name := args.String("name"); name != "" {
		defArgs.Name = &name
	}
	resp, err := buildClient.GetDefinitions(ctx, defArgs)
	if err != nil {
		return nil, fmt.Errorf("listing build definitions in %q: %w", project, err)
	}

	defs := make([]map[string]any, 0, len(resp.Value))
	for _, d := range resp.Value {
		entry := map[string]any{
			"id":          intVal(d.Id),
			"name":        strVal(d.Name),
			"path":        strVal(d.Path),
			"type":        enumVal(d.Type),
			"queueStatus": enumVal(d.QueueStatus),
			"authoredBy":  identityName(d.AuthoredBy),
		}
		if d.LatestCompletedBuild != nil {
			entry["latestCompletedBuild"] = map[string]any{
				"id":         intVal(d.LatestCompletedBuild.Id),
				"result":     enumVal(d.LatestCompletedBuild.Result),
				"finishTime": timeVal(d.LatestCompletedBuild.FinishTime),
			}
		}
		defs = append(defs, entry)
	}
	return map[string]any{
		"count":       len(defs),
		"definitions": defs,
	}, nil
}

func listBuilds(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	buildClient, err := client.Builds(ctx)
	if err != nil {
		return nil, err
	}

	top := args.Int("top")
	buildArgs := build.GetBuildsArgs{
		Project:      &project,
		Top:          &top,
		StatusFilter: buildStatusFilter(args.String("status")),
		ResultFilter: buildResultFilter(args.String("result")),
	}
	if args.Has("definition_id") {
		buildArgs.Definitions = &[]int{args.Int("definition_id")}
	}
	if branch := args.String("branch"); branch != "" {
		buildArgs.BranchName = ptr(fullRef(branch))
	}
	resp, err := buildClient.GetBuilds(ctx, buildArgs)
	if err != nil {
		return nil, fmt.Errorf("listing builds in %q: %w", project, err)
	}

	builds := make([]map[string]any, 0, len(resp.Value))
	for _, b := range resp.Value {
		builds = append(builds, buildMap(b))
	}
	return map[string]any{
		"count":  len(builds),
		"builds": builds,
	}, nil
}

func timelineRecordMap(r build.TimelineRecord) map[string]any {
	entry := map[string]any{
		"name":         strVal(r.Name),
		"type":         strVal(r.Type),
		"state":        enumVal(r.State),
		"result":       enumVal(r.Result),
		"startTime":    timeVal(r.StartTime),
		"finishTime":   timeVal(r.FinishTime),
		"errorCount":   intVal(r.ErrorCount),
		"warningCount": intVal(r.WarningCount),
		"workerName":   strVal(r.WorkerName),
	}
	if r.Log != nil {
		entry["logId"] = intVal(r.Log.Id)
	}
	return entry
}

func getBuild(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	buildClient, err := client.Builds(ctx)
	if err != nil {
		return nil, err
	}

	buildID := args.Int("build_id")

	// Build and timeline are independent reads. Builds predating timeline
	// retention come back without one, which is not an error.
	var b *build.Build
	var timeline *build.Timeline
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		got, err := buildClient.GetBuild(gctx, build.GetBuildArgs{
			Project: &project,
			BuildId: &buildID,
		})
		if err != nil {
			if azdo.IsNotFound(err) {
				return fmt.Errorf("build %d not found in %q", buildID, project)
			}
			return fmt.Errorf("getting build %d: %w", buildID, err)
		}
		b = got
		return nil
	})
	g.Go(func() error {
		got, err := buildClient.GetBuildTimeline(gctx, build.GetBuildTimelineArgs{
			Project: &project,
			BuildId: &buildID,
		})
		if err != nil {
			if azdo.IsNotFound(err) {
				return nil
			}
			return fmt.Errorf("getting timeline of build %d: %w", buildID, err)
		}
		timeline = got
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := buildMap(*b)
	if timeline == nil || timeline.Records == nil {
		out["timeline"] = nil
		return out, nil
	}

	records := make([]map[string]any, 0, len(*timeline.Records))
	issues := []map[string]any{}
	for _, r := range *timeline.Records {
		records = append(records, timelineRecordMap(r))
		if r.Issues == nil {
			continue
		}
		for _, issue := range *r.Issues {
			issues = append(issues, map[string]any{
				"type":    enumVal(issue.Type),
				"message": strVal(issue.Message),
				"task":    strVal(r.Name),
			})
		}
	}
	out["timeline"] = map[string]any{
		"records": records,
		"issues":  issues,
	}
	return out, nil
}

// pickLog selects the log to read: the requested one, or the last log of
// the build which holds the overall run output.
func pickLog(logs []build.BuildLog, logID int, explicit bool) (build.BuildLog, bool) {
	if explicit {
		for _, l := range logs {
			if intVal(l.Id) == logID {
				return l, true
			}
		}
		return build.BuildLog{}, false
	}
	if len(logs) == 0 {
		return build.BuildLog{}, false
	}
	best := logs[0]
	for _, l := range logs[1:] {
		if intVal(l.Id) > intVal(best.Id) {
			best = l
		}
	}
	return best, true
}

func getBuildLog(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	buildClient, err := client.Builds(ctx)
	if err != nil {
		return nil, err
	}

	buildID := args.Int("build_id")
	logs, err := buildClient.GetBuildLogs(ctx, build.GetBuildLogsArgs{
		Project: &project,
		BuildId: &buildID,
	})
	if err != nil {
		if azdo.IsNotFound(err) {
			return nil, fmt.Errorf("build %d not found in %q", buildID, project)
		}
		return nil, fmt.Errorf("listing logs of build %d: %w", buildID, err)
	}

	selected, ok := pickLog(*logs, args.Int("log_id"), args.Has("log_id"))
	if !ok {
		if args.Has("log_id") {
			return nil, fmt.Errorf("log %d not found in build %d", args.Int("log_id"), buildID)
		}
		return nil, fmt.Errorf("build %d has no logs", buildID)
	}

	tail := args.Int("tail")
	var total int64
	if selected.LineCount != nil {
		total = int64(*selected.LineCount)
	}
	linesArgs := build.GetBuildLogLinesArgs{
		Project: &project,
		BuildId: &buildID,
		LogId:   selected.Id,
	}
	if tail > 0 && total > int64(tail) {
		start := uint64(total - int64(tail))
		linesArgs.StartLine = &start
	}
	lines, err := buildClient.GetBuildLogLines(ctx, linesArgs)
	if err != nil {
		return nil, fmt.Errorf("reading log %d of build %d: %w", intVal(selected.Id), buildID, err)
	}

	returned := *lines
	if tail > 0 && len(returned) > tail {
		returned = returned[len(returned)-tail:]
	}
	return map[string]any{
		"buildId":    buildID,
		"logId":      intVal(selected.Id),
		"totalLines": total,
		"returned":   len(returned),
		"truncated":  int64(len(returned)) < total,
		"lines":      returned,
	}, nil
}

func scanBuildLog(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	buildClient, err := client.Builds(ctx)
	if err != nil {
		return nil, err
	}

	re := DefaultLogPattern
	if pattern := args.String("pattern"); pattern != "" {
		re, err = regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
	}

	buildID := args.Int("build_id")
	logs, err := buildClient.GetBuildLogs(ctx, build.GetBuildLogsArgs{
		Project: &project,
		BuildId: &buildID,
	})
	if err != nil {
		if azdo.IsNotFound(err) {
			return nil, fmt.Errorf("build %d not found in %q", buildID, project)
		}
		return nil, fmt.Errorf("listing logs of build %d: %w", buildID, err)
	}

	scanLogs := *logs
	if args.Has("log_id") {
		selected, ok := pickLog(scanLogs, args.Int("log_id"), true)
		if !ok {
			return nil, fmt.Errorf("log %d not found in build %d", args.Int("log_id"), buildID)
		}
		scanLogs = []build.BuildLog{selected}
	}

	maxMatches := args.Int("max_matches")
	matches := []LogMatch{}
	scanned := 0
	for _, l := range scanLogs {
		if maxMatches > 0 && len(matches) >= maxMatches {
			break
		}
		lines, err := buildClient.GetBuildLogLines(ctx, build.GetBuildLogLinesArgs{
			Project: &project,
			BuildId: &buildID,
			LogId:   l.Id,
		})
		if err != nil {
			return nil, fmt.Errorf("reading log %d of build %d: %w", intVal(l.Id), buildID, err)
		}
		scanned++
		remaining := 0
		if maxMatches > 0 {
			remaining = maxMatches - len(matches)
		}
		matches = append(matches, ScanLines(intVal(l.Id), *lines, re, remaining)...)
	}

	return map[string]any{
		"buildId":     buildID,
		"pattern":     re.String(),
		"scannedLogs": scanned,
		"count":       len(matches),
		"truncated":   maxMatches > 0 && len(matches) >= maxMatches,
		"matches":     matches,
	}, nil
}
