package tools

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"
	"golang.org/x/sync/errgroup"

	"azdo-cli/internal/azdo"
)

// workItemBatchSize is the most IDs one work item read accepts upstream.
const workItemBatchSize = 200

// listFields is the compact field set returned by the listing operations.
var listFields = []string{
	"System.Id",
	"System.Title",
	"System.WorkItemType",
	"System.State",
	"System.AssignedTo",
	"System.ChangedDate",
	"System.Tags",
	"System.IterationPath",
}

// WorkItemTable declares the work item tracking operations.
func WorkItemTable() Table {
	return Table{
		Domain: "work items",
		Operations: []Operation{
			{
				Name:        "get_work_item",
				Description: "Get one work item with all fields, relations, and comments.",
				Params: objectParams(map[string]*Param{
					"id":      {Kind: KindNumber, Description: "Work item ID."},
					"project": {Kind: KindString, Description: "Project used for the comment lookup. Defaults to the work item's own project.", Optional: true},
				}),
				Handler: getWorkItem,
			},
			{
				Name:        "query_work_items",
				Description: "Query work items with raw WIQL or structured filters.",
				Params: objectParams(map[string]*Param{
					"query":       {Kind: KindString, Description: "Raw WIQL. When set, the structured filters are ignored.", Optional: true},
					"type":        {Kind: KindString, Description: "Work item type, for example Bug or User Story.", Default: ""},
					"states":      {Kind: KindArray, Description: "States to match.", Elem: &Param{Kind: KindString}, Optional: true},
					"assigned_to": {Kind: KindString, Description: "Assignee display name or email.", Default: ""},
					"area_path":   {Kind: KindString, Description: "Area path to search under.", Default: ""},
					"filters":     {Kind: KindRecord, Description: "Extra field equality filters, keyed by field reference name.", Elem: &Param{Kind: KindString}, Optional: true},
					"project":     {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
					"top":         {Kind: KindNumber, Description: "Maximum number of work items to return.", Default: 25},
				}),
				Handler: queryWorkItems,
			},
			{
				Name:        "list_work_items",
				Description: "Fetch a batch of work items by ID.",
				Params: objectParams(map[string]*Param{
					"ids":     {Kind: KindArray, Description: "Work item IDs.", Elem: &Param{Kind: KindNumber}},
					"project": {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
					"fields":  {Kind: KindArray, Description: "Extra field reference names to include with each item.", Elem: &Param{Kind: KindString}, Optional: true},
				}),
				Handler: listWorkItems,
			},
		},
	}
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML flattens the HTML-formatted rich text fields into plain text.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "<br>", "\n")
	s = strings.ReplaceAll(s, "<br/>", "\n")
	s = strings.ReplaceAll(s, "<br />", "\n")
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}

// fieldString renders one work item field value. Identity fields arrive
// as nested maps; everything else stringifies.
func fieldString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]any:
		if name, ok := val["displayName"].(string); ok {
			return name
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func workItemField(item workitemtracking.WorkItem, name string) string {
	if item.Fields == nil {
		return ""
	}
	return fieldString((*item.Fields)[name])
}

func workItemSummary(item workitemtracking.WorkItem) map[string]any {
	return map[string]any{
		"id":          intVal(item.Id),
		"title":       workItemField(item, "System.Title"),
		"type":        workItemField(item, "System.WorkItemType"),
		"state":       workItemField(item, "System.State"),
		"assignedTo":  workItemField(item, "System.AssignedTo"),
		"changedDate": workItemField(item, "System.ChangedDate"),
		"tags":        workItemField(item, "System.Tags"),
		"iteration":   workItemField(item, "System.IterationPath"),
		"url":         strVal(item.Url),
	}
}

func getWorkItem(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	witClient, err := client.WorkItems(ctx)
	if err != nil {
		return nil, err
	}

	id := args.Int("id")
	item, err := witClient.GetWorkItem(ctx, workitemtracking.GetWorkItemArgs{
		Id:     &id,
		Expand: &workitemtracking.WorkItemExpandValues.All,
	})
	if err != nil {
		if azdo.IsNotFound(err) {
			return nil, fmt.Errorf("work item %d not found", id)
		}
		return nil, fmt.Errorf("getting work item %d: %w", id, err)
	}

	out := workItemSummary(*item)
	out["rev"] = intVal(item.Rev)
	out["createdDate"] = workItemField(*item, "System.CreatedDate")
	out["createdBy"] = workItemField(*item, "System.CreatedBy")
	out["areaPath"] = workItemField(*item, "System.AreaPath")
	out["description"] = stripHTML(workItemField(*item, "System.Description"))
	if repro := workItemField(*item, "Microsoft.VSTS.TCM.ReproSteps"); repro != "" {
		out["reproSteps"] = stripHTML(repro)
	}
	if item.Relations != nil {
		relations := make([]map[string]any, 0, len(*item.Relations))
		for _, rel := range *item.Relations {
			relations = append(relations, map[string]any{
				"rel": strVal(rel.Rel),
				"url": strVal(rel.Url),
			})
		}
		out["relations"] = relations
	}

	// The comment endpoint is project scoped, so the item's own project
	// field supplies one when the caller and config do not.
	project := args.String("project")
	if project == "" {
		project = client.DefaultProject()
	}
	if project == "" {
		project = workItemField(*item, "System.TeamProject")
	}
	if project != "" {
		comments, err := witClient.GetComments(ctx, workitemtracking.GetCommentsArgs{
			Project:    &project,
			WorkItemId: &id,
		})
		if err != nil {
			return nil, fmt.Errorf("getting comments of work item %d: %w", id, err)
		}
		out["comments"] = commentList(comments)
	}
	return out, nil
}

func commentList(comments *workitemtracking.CommentList) []map[string]any {
	out := []map[string]any{}
	if comments == nil || comments.Comments == nil {
		return out
	}
	for _, c := range *comments.Comments {
		out = append(out, map[string]any{
			"id":          intVal(c.Id),
			"text":        stripHTML(strVal(c.Text)),
			"createdBy":   identityName(c.CreatedBy),
			"createdDate": timeVal(c.CreatedDate),
		})
	}
	return out
}

func queryWorkItems(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	witClient, err := client.WorkItems(ctx)
	if err != nil {
		return nil, err
	}

	wiql := args.String("query")
	if wiql == "" {
		wiql = BuildWIQL(WIQLFilter{
			Project:      project,
			WorkItemType: args.String("type"),
			States:       args.StringSlice("states"),
			AssignedTo:   args.String("assigned_to"),
			AreaPath:     args.String("area_path"),
			Fields:       args.StringMap("filters"),
		})
	}

	top := args.Int("top")
	queryArgs := workitemtracking.QueryByWiqlArgs{
		Wiql:    &workitemtracking.Wiql{Query: &wiql},
		Project: &project,
	}
	if top > 0 {
		queryArgs.Top = &top
	}
	result, err := witClient.QueryByWiql(ctx, queryArgs)
	if err != nil {
		return nil, fmt.Errorf("running work item query: %w", err)
	}

	ids := []int{}
	if result.WorkItems != nil {
		for _, ref := range *result.WorkItems {
			if ref.Id != nil {
				ids = append(ids, *ref.Id)
			}
		}
	}
	if top > 0 && len(ids) > top {
		ids = ids[:top]
	}

	items, err := fetchWorkItemBatches(ctx, witClient, project, ids, nil)
	if err != nil {
		return nil, err
	}
	summaries := make([]map[string]any, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, workItemSummary(item))
	}
	return map[string]any{
		"count":     len(summaries),
		"query":     wiql,
		"workItems": summaries,
	}, nil
}

func listWorkItems(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	witClient, err := client.WorkItems(ctx)
	if err != nil {
		return nil, err
	}

	ids := args.IntSlice("ids")
	if len(ids) == 0 {
		return nil, fmt.Errorf("ids must not be empty")
	}
	extra := args.StringSlice("fields")
	items, err := fetchWorkItemBatches(ctx, witClient, project, ids, extra)
	if err != nil {
		return nil, err
	}
	summaries := make([]map[string]any, 0, len(items))
	for _, item := range items {
		summary := workItemSummary(item)
		if len(extra) > 0 {
			values := map[string]string{}
			for _, name := range extra {
				values[name] = workItemField(item, name)
			}
			summary["fields"] = values
		}
		summaries = append(summaries, summary)
	}
	return map[string]any{
		"count":     len(summaries),
		"requested": len(ids),
		"workItems": summaries,
	}, nil
}

// fetchWorkItemBatches reads work items in batches of the upstream limit,
// one batch per goroutine, keeping the caller's ID order in the result.
// Missing IDs are omitted rather than failing the whole read. Extra field
// names extend the compact listing set.
func fetchWorkItemBatches(ctx context.Context, witClient workitemtracking.Client, project string, ids []int, extraFields []string) ([]workitemtracking.WorkItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	fields := withExtraFields(listFields, extraFields)

	var batches [][]int
	for start := 0; start < len(ids); start += workItemBatchSize {
		end := start + workItemBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}

	results := make([]*[]workitemtracking.WorkItem, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		g.Go(func() error {
			items, err := witClient.GetWorkItems(gctx, workitemtracking.GetWorkItemsArgs{
				Ids:         &batch,
				Project:     &project,
				Fields:      &fields,
				ErrorPolicy: &workitemtracking.WorkItemErrorPolicyValues.Omit,
			})
			if err != nil {
				return fmt.Errorf("getting work items: %w", err)
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []workitemtracking.WorkItem
	for _, batch := range results {
		if batch != nil {
			out = append(out, *batch...)
		}
	}
	return out, nil
}

// withExtraFields appends the caller's field names to base, dropping
// blanks and duplicates.
func withExtraFields(base, extra []string) []string {
	out := append([]string{}, base...)
	seen := make(map[string]bool, len(out))
	for _, name := range out {
		seen[name] = true
	}
	for _, name := range extra {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
