package tools

import (
	"context"
	"fmt"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/pipelines"

	"azdo-cli/internal/azdo"
)

// PipelineTable declares the YAML pipeline operations.
func PipelineTable() Table {
	return Table{
		Domain: "pipelines",
		Operations: []Operation{
			{
				Name:        "list_pipelines",
				Description: "List the YAML pipelines of a project.",
				Params: objectParams(map[string]*Param{
					"project": {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
					"top":     {Kind: KindNumber, Description: "Maximum number of pipelines to return.", Default: 50},
				}),
				Handler: listPipelines,
			},
			{
				Name:        "list_pipeline_runs",
				Description: "List recent runs of one pipeline.",
				Params: objectParams(map[string]*Param{
					"pipeline_id": {Kind: KindNumber, Description: "Pipeline ID."},
					"project":     {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
					"top":         {Kind: KindNumber, Description: "Maximum number of runs to return.", Default: 20},
				}),
				Handler: listPipelineRuns,
			},
			{
				Name:        "get_pipeline_run",
				Description: "Get one pipeline run with its resources and parameters.",
				Params: objectParams(map[string]*Param{
					"pipeline_id": {Kind: KindNumber, Description: "Pipeline ID."},
					"run_id":      {Kind: KindNumber, Description: "Run ID."},
					"project":     {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
				}),
				Handler: getPipelineRun,
			},
		},
	}
}

func runMap(r pipelines.Run) map[string]any {
	out := map[string]any{
		"id":           intVal(r.Id),
		"name":         strVal(r.Name),
		"state":        enumVal(r.State),
		"result":       enumVal(r.Result),
		"createdDate":  timeVal(r.CreatedDate),
		"finishedDate": timeVal(r.FinishedDate),
		"url":          strVal(r.Url),
	}
	if r.Pipeline != nil {
		out["pipeline"] = map[string]any{
			"id":     intVal(r.Pipeline.Id),
			"name":   strVal(r.Pipeline.Name),
			"folder": strVal(r.Pipeline.Folder),
		}
	}
	return out
}

func listPipelines(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	pipelinesClient := client.Pipelines(ctx)

	top := args.Int("top")
	resp, err := pipelinesClient.ListPipelines(ctx, pipelines.ListPipelinesArgs{
		Project: &project,
		Top:     &top,
	})
	if err != nil {
		return nil, fmt.Errorf("listing pipelines in %q: %w", project, err)
	}

	out := make([]map[string]any, 0, len(*resp))
	for _, p := range *resp {
		out = append(out, map[string]any{
			"id":       intVal(p.Id),
			"name":     strVal(p.Name),
			"folder":   strVal(p.Folder),
			"revision": intVal(p.Revision),
			"url":      strVal(p.Url),
		})
	}
	return map[string]any{
		"count":     len(out),
		"pipelines": out,
	}, nil
}

func listPipelineRuns(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	pipelinesClient := client.Pipelines(ctx)

	pipelineID := args.Int("pipeline_id")
	runs, err := pipelinesClient.ListRuns(ctx, pipelines.ListRunsArgs{
		Project:    &project,
		PipelineId: &pipelineID,
	})
	if err != nil {
		if azdo.IsNotFound(err) {
			return nil, fmt.Errorf("pipeline %d not found in %q", pipelineID, project)
		}
		return nil, fmt.Errorf("listing runs of pipeline %d: %w", pipelineID, err)
	}

	top := args.Int("top")
	out := make([]map[string]any, 0, len(*runs))
	for _, r := range *runs {
		if top > 0 && len(out) >= top {
			break
		}
		out = append(out, runMap(r))
	}
	return map[string]any{
		"count": len(out),
		"runs":  out,
	}, nil
}

func getPipelineRun(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	pipelinesClient := client.Pipelines(ctx)

	pipelineID := args.Int("pipeline_id")
	runID := args.Int("run_id")
	run, err := pipelinesClient.GetRun(ctx, pipelines.GetRunArgs{
		Project:    &project,
		PipelineId: &pipelineID,
		RunId:      &runID,
	})
	if err != nil {
		if azdo.IsNotFound(err) {
			return nil, fmt.Errorf("run %d not found in pipeline %d", runID, pipelineID)
		}
		return nil, fmt.Errorf("getting run %d of pipeline %d: %w", runID, pipelineID, err)
	}

	out := runMap(*run)
	if run.Resources != nil {
		resources := map[string]any{}
		if run.Resources.Repositories != nil {
			repos := map[string]any{}
			for alias, repo := range *run.Resources.Repositories {
				repos[alias] = map[string]any{
					"refName": strVal(repo.RefName),
					"version": strVal(repo.Version),
				}
			}
			resources["repositories"] = repos
		}
		if run.Resources.Pipelines != nil {
			upstream := map[string]any{}
			for alias, p := range *run.Resources.Pipelines {
				upstream[alias] = map[string]any{
					"version": strVal(p.Version),
				}
			}
			resources["pipelines"] = upstream
		}
		out["resources"] = resources
	}
	if run.TemplateParameters != nil {
		out["templateParameters"] = *run.TemplateParameters
	}
	if run.Variables != nil {
		vars := map[string]any{}
		for name, v := range *run.Variables {
			if boolVal(v.IsSecret) {
				vars[name] = "(secret)"
				continue
			}
			vars[name] = strVal(v.Value)
		}
		out["variables"] = vars
	}
	return out, nil
}
