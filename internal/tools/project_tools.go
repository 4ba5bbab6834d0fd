package tools

import (
	"context"
	"fmt"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/core"

	"azdo-cli/internal/azdo"
)

// ProjectTable declares the project discovery operations.
func ProjectTable() Table {
	return Table{
		Domain: "projects",
		Operations: []Operation{
			{
				Name:        "list_projects",
				Description: "List the projects in the collection.",
				Params: objectParams(map[string]*Param{
					"top": {Kind: KindNumber, Description: "Maximum number of projects to return.", Default: 100},
				}),
				Handler: listProjects,
			},
			{
				Name:        "get_project",
				Description: "Get one project with its capabilities and default team.",
				Params: objectParams(map[string]*Param{
					"project": {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
				}),
				Handler: getProject,
			},
		},
	}
}

// objectParams wraps a field set in the top-level object spec every
// operation uses.
func objectParams(fields map[string]*Param) *Param {
	return &Param{Kind: KindObject, Fields: fields}
}

func listProjects(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	coreClient, err := client.Core(ctx)
	if err != nil {
		return nil, err
	}

	top := args.Int("top")
	listArgs := core.GetProjectsArgs{}
	if top > 0 {
		listArgs.Top = &top
	}
	resp, err := coreClient.GetProjects(ctx, listArgs)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	projects := make([]map[string]any, 0, len(resp.Value))
	for _, p := range resp.Value {
		if top > 0 && len(projects) >= top {
			break
		}
		projects = append(projects, map[string]any{
			"id":             uuidVal(p.Id),
			"name":           strVal(p.Name),
			"description":    strVal(p.Description),
			"state":          enumVal(p.State),
			"visibility":     enumVal(p.Visibility),
			"lastUpdateTime": timeVal(p.LastUpdateTime),
			"url":            strVal(p.Url),
		})
	}
	return map[string]any{
		"count":    len(projects),
		"projects": projects,
	}, nil
}

func getProject(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	coreClient, err := client.Core(ctx)
	if err != nil {
		return nil, err
	}

	p, err := coreClient.GetProject(ctx, core.GetProjectArgs{
		ProjectId:           &project,
		IncludeCapabilities: ptr(true),
	})
	if err != nil {
		if azdo.IsNotFound(err) {
			return nil, fmt.Errorf("project %q not found", project)
		}
		return nil, fmt.Errorf("getting project %q: %w", project, err)
	}

	out := map[string]any{
		"id":          uuidVal(p.Id),
		"name":        strVal(p.Name),
		"description": strVal(p.Description),
		"state":       enumVal(p.State),
		"visibility":  enumVal(p.Visibility),
		"url":         strVal(p.Url),
	}
	if p.DefaultTeam != nil {
		out["defaultTeam"] = strVal(p.DefaultTeam.Name)
	}
	if p.Capabilities != nil {
		caps := map[string]any{}
		for area, settings := range *p.Capabilities {
			inner := map[string]any{}
			for k, v := range settings {
				inner[k] = v
			}
			caps[area] = inner
		}
		out["capabilities"] = caps
	}
	return out, nil
}
