package tools

import (
	"fmt"
	"sort"
	"strings"
)

// WIQLFilter carries the structured pieces a work item query is assembled
// from when the caller does not supply raw WIQL.
type WIQLFilter struct {
	Project      string
	WorkItemType string
	States       []string
	AssignedTo   string
	AreaPath     string
	Fields       map[string]string
}

// BuildWIQL assembles a WIQL statement from structured filters. String
// values are embedded as quoted literals with quotes doubled, which is
// how WIQL escapes them. Results come back newest change first.
func BuildWIQL(f WIQLFilter) string {
	conditions := []string{
		fmt.Sprintf("[System.TeamProject] = %s", wiqlString(f.Project)),
	}
	if f.WorkItemType != "" {
		conditions = append(conditions, fmt.Sprintf("[System.WorkItemType] = %s", wiqlString(f.WorkItemType)))
	}
	switch len(f.States) {
	case 0:
	case 1:
		conditions = append(conditions, fmt.Sprintf("[System.State] = %s", wiqlString(f.States[0])))
	default:
		quoted := make([]string, len(f.States))
		for i, s := range f.States {
			quoted[i] = wiqlString(s)
		}
		conditions = append(conditions, fmt.Sprintf("[System.State] IN (%s)", strings.Join(quoted, ", ")))
	}
	if f.AssignedTo != "" {
		conditions = append(conditions, fmt.Sprintf("[System.AssignedTo] = %s", wiqlString(f.AssignedTo)))
	}
	if f.AreaPath != "" {
		conditions = append(conditions, fmt.Sprintf("[System.AreaPath] UNDER %s", wiqlString(f.AreaPath)))
	}
	for _, field := range sortedFilterFields(f.Fields) {
		conditions = append(conditions, fmt.Sprintf("[%s] = %s", field, wiqlString(f.Fields[field])))
	}

	return fmt.Sprintf(
		"SELECT [System.Id], [System.Title], [System.State] FROM WorkItems WHERE %s ORDER BY [System.ChangedDate] DESC",
		strings.Join(conditions, " AND "),
	)
}

func wiqlString(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func sortedFilterFields(fields map[string]string) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
