package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/release"

	"azdo-cli/internal/azdo"
)

// ReleaseTable declares the classic release management operations.
func ReleaseTable() Table {
	return Table{
		Domain: "releases",
		Operations: []Operation{
			{
				Name:        "list_release_definitions",
				Description: "List the release definitions of a project.",
				Params: objectParams(map[string]*Param{
					"project": {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
					"search":  {Kind: KindString, Description: "Definition name search text.", Default: ""},
					"top":     {Kind: KindNumber, Description: "Maximum number of definitions to return.", Default: 50},
				}),
				Handler: listReleaseDefinitions,
			},
			{
				Name:        "list_releases",
				Description: "List recent releases with their environment states.",
				Params: objectParams(map[string]*Param{
					"project":       {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
					"definition_id": {Kind: KindNumber, Description: "Restrict to one release definition.", Optional: true},
					"top":           {Kind: KindNumber, Description: "Maximum number of releases to return.", Default: 20},
				}),
				Handler: listReleases,
			},
			{
				Name:        "get_release",
				Description: "Get one release with environments and artifact versions.",
				Params: objectParams(map[string]*Param{
					"release_id": {Kind: KindNumber, Description: "Release ID."},
					"project":    {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
				}),
				Handler: getRelease,
			},
			{
				Name:        "get_release_environment",
				Description: "Get one environment of a release with deployments and approvals.",
				Params: objectParams(map[string]*Param{
					"release_id":  {Kind: KindNumber, Description: "Release ID."},
					"environment": {Kind: KindString, Description: "Environment name or numeric ID."},
					"project":     {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
				}),
				Handler: getReleaseEnvironment,
			},
		},
	}
}

func environmentSummary(e release.ReleaseEnvironment) map[string]any {
	return map[string]any{
		"id":     intVal(e.Id),
		"name":   strVal(e.Name),
		"status": enumVal(e.Status),
		"rank":   intVal(e.Rank),
	}
}

func artifactList(artifacts *[]release.Artifact) []map[string]any {
	out := []map[string]any{}
	if artifacts == nil {
		return out
	}
	for _, a := range *artifacts {
		entry := map[string]any{
			"alias":     strVal(a.Alias),
			"type":      strVal(a.Type),
			"isPrimary": boolVal(a.IsPrimary),
		}
		if a.DefinitionReference != nil {
			if version, ok := (*a.DefinitionReference)["version"]; ok {
				entry["version"] = strVal(version.Name)
			}
		}
		out = append(out, entry)
	}
	return out
}

func releaseMap(r release.Release) map[string]any {
	out := map[string]any{
		"id":          intVal(r.Id),
		"name":        strVal(r.Name),
		"status":      enumVal(r.Status),
		"reason":      enumVal(r.Reason),
		"createdOn":   timeVal(r.CreatedOn),
		"createdBy":   identityName(r.CreatedBy),
		"description": strVal(r.Description),
	}
	if r.ReleaseDefinition != nil {
		out["definition"] = map[string]any{
			"id":   intVal(r.ReleaseDefinition.Id),
			"name": strVal(r.ReleaseDefinition.Name),
		}
	}
	if r.Environments != nil {
		envs := make([]map[string]any, 0, len(*r.Environments))
		for _, e := range *r.Environments {
			envs = append(envs, environmentSummary(e))
		}
		out["environments"] = envs
	}
	return out
}

func listReleaseDefinitions(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	releaseClient, err := client.Releases(ctx)
	if err != nil {
		return nil, err
	}

	top := args.Int("top")
	defArgs := release.GetReleaseDefinitionsArgs{
		Project: &project,
		Top:     &top,
		Expand:  &release.ReleaseDefinitionExpandsValues.Environments,
	}
	if search := args.String("search"); search != "" {
		defArgs.SearchText = &search
	}
	resp, err := releaseClient.GetReleaseDefinitions(ctx, defArgs)
	if err != nil {
		return nil, fmt.Errorf("listing release definitions in %q: %w", project, err)
	}

	defs := make([]map[string]any, 0, len(resp.Value))
	for _, d := range resp.Value {
		entry := map[string]any{
			"id":         intVal(d.Id),
			"name":       strVal(d.Name),
			"path":       strVal(d.Path),
			"createdBy":  identityName(d.CreatedBy),
			"createdOn":  timeVal(d.CreatedOn),
			"modifiedOn": timeVal(d.ModifiedOn),
		}
		if d.Environments != nil {
			envs := make([]string, 0, len(*d.Environments))
			for _, e := range *d.Environments {
				envs = append(envs, strVal(e.Name))
			}
			entry["environments"] = envs
		}
		defs = append(defs, entry)
	}
	return map[string]any{
		"count":       len(defs),
		"definitions": defs,
	}, nil
}

func listReleases(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	releaseClient, err := client.Releases(ctx)
	if err != nil {
		return nil, err
	}

	top := args.Int("top")
	relArgs := release.GetReleasesArgs{
		Project: &project,
		Top:     &top,
		Expand:  &release.ReleaseExpandsValues.Environments,
	}
	if args.Has("definition_id") {
		relArgs.DefinitionId = ptr(args.Int("definition_id"))
	}
	resp, err := releaseClient.GetReleases(ctx, relArgs)
	if err != nil {
		return nil, fmt.Errorf("listing releases in %q: %w", project, err)
	}

	releases := make([]map[string]any, 0, len(resp.Value))
	for _, r := range resp.Value {
		releases = append(releases, releaseMap(r))
	}
	return map[string]any{
		"count":    len(releases),
		"releases": releases,
	}, nil
}

func fetchRelease(ctx context.Context, releaseClient release.Client, project string, releaseID int) (*release.Release, error) {
	r, err := releaseClient.GetRelease(ctx, release.GetReleaseArgs{
		Project:   &project,
		ReleaseId: &releaseID,
	})
	if err != nil {
		if azdo.IsNotFound(err) {
			return nil, fmt.Errorf("release %d not found in %q", releaseID, project)
		}
		return nil, fmt.Errorf("getting release %d: %w", releaseID, err)
	}
	return r, nil
}

func getRelease(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	releaseClient, err := client.Releases(ctx)
	if err != nil {
		return nil, err
	}

	r, err := fetchRelease(ctx, releaseClient, project, args.Int("release_id"))
	if err != nil {
		return nil, err
	}
	out := releaseMap(*r)
	out["artifacts"] = artifactList(r.Artifacts)
	return out, nil
}

func approvalList(approvals *[]release.ReleaseApproval) []map[string]any {
	out := []map[string]any{}
	if approvals == nil {
		return out
	}
	for _, a := range *approvals {
		out = append(out, map[string]any{
			"approver":    identityName(a.Approver),
			"approvedBy":  identityName(a.ApprovedBy),
			"status":      enumVal(a.Status),
			"comments":    strVal(a.Comments),
			"isAutomated": boolVal(a.IsAutomated),
			"createdOn":   timeVal(a.CreatedOn),
			"attempt":     intVal(a.Attempt),
		})
	}
	return out
}

func deploymentList(steps *[]release.DeploymentAttempt) []map[string]any {
	out := []map[string]any{}
	if steps == nil {
		return out
	}
	for _, d := range *steps {
		out = append(out, map[string]any{
			"attempt":         intVal(d.Attempt),
			"reason":          enumVal(d.Reason),
			"status":          enumVal(d.Status),
			"operationStatus": enumVal(d.OperationStatus),
			"requestedFor":    identityName(d.RequestedFor),
			"queuedOn":        timeVal(d.QueuedOn),
			"lastModifiedOn":  timeVal(d.LastModifiedOn),
		})
	}
	return out
}

func getReleaseEnvironment(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	releaseClient, err := client.Releases(ctx)
	if err != nil {
		return nil, err
	}

	releaseID := args.Int("release_id")
	r, err := fetchRelease(ctx, releaseClient, project, releaseID)
	if err != nil {
		return nil, err
	}

	wanted := args.String("environment")
	wantedID, numeric := 0, false
	if id, err := strconv.Atoi(wanted); err == nil {
		wantedID, numeric = id, true
	}

	var env *release.ReleaseEnvironment
	if r.Environments != nil {
		for i, e := range *r.Environments {
			if numeric && intVal(e.Id) == wantedID {
				env = &(*r.Environments)[i]
				break
			}
			if !numeric && strings.EqualFold(strVal(e.Name), wanted) {
				env = &(*r.Environments)[i]
				break
			}
		}
	}
	if env == nil {
		return nil, fmt.Errorf("environment %q not found in release %d", wanted, releaseID)
	}

	out := environmentSummary(*env)
	out["release"] = map[string]any{
		"id":   intVal(r.Id),
		"name": strVal(r.Name),
	}
	out["triggerReason"] = strVal(env.TriggerReason)
	out["deployments"] = deploymentList(env.DeploySteps)
	out["preDeployApprovals"] = approvalList(env.PreDeployApprovals)
	out["postDeployApprovals"] = approvalList(env.PostDeployApprovals)
	return out, nil
}
