package tools

import (
	"reflect"
	"testing"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "no markup here", "no markup here"},
		{"tags removed", "<div><b>Steps:</b> click login</div>", "Steps: click login"},
		{"br becomes newline", "line one<br>line two<br/>line three", "line one\nline two\nline three"},
		{"entities unescaped", "a &lt; b &amp;&amp; c &gt; d", "a < b && c > d"},
		{"blank lines dropped", "<p>first</p><br><br>  <br>second", "first\nsecond"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripHTML(tt.in); got != tt.want {
				t.Errorf("stripHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFieldString(t *testing.T) {
	if got := fieldString(nil); got != "" {
		t.Errorf("nil = %q", got)
	}
	if got := fieldString("Active"); got != "Active" {
		t.Errorf("string = %q", got)
	}
	if got := fieldString(3.0); got != "3" {
		t.Errorf("number = %q", got)
	}
	identity := map[string]any{
		"displayName": "Casey Jensen",
		"uniqueName":  "casey@fabrikam.com",
	}
	if got := fieldString(identity); got != "Casey Jensen" {
		t.Errorf("identity = %q", got)
	}
}

func TestWorkItemSummary(t *testing.T) {
	fields := map[string]any{
		"System.Title":        "Login button unresponsive",
		"System.WorkItemType": "Bug",
		"System.State":        "Active",
		"System.AssignedTo":   map[string]any{"displayName": "Casey Jensen"},
		"System.Tags":         "regression; ui",
	}
	item := workitemtracking.WorkItem{Id: ptr(1234), Fields: &fields}

	out := workItemSummary(item)
	if out["id"] != 1234 {
		t.Errorf("id = %v", out["id"])
	}
	if out["title"] != "Login button unresponsive" || out["type"] != "Bug" {
		t.Errorf("out = %v", out)
	}
	if out["assignedTo"] != "Casey Jensen" {
		t.Errorf("assignedTo = %v", out["assignedTo"])
	}
}

func TestWorkItemSummary_NoFields(t *testing.T) {
	out := workItemSummary(workitemtracking.WorkItem{Id: ptr(7)})
	if out["id"] != 7 || out["title"] != "" {
		t.Errorf("missing fields should render empty, got %v", out)
	}
}

func TestWithExtraFields(t *testing.T) {
	base := []string{"System.Id", "System.Title"}

	got := withExtraFields(base, nil)
	if !reflect.DeepEqual(got, base) {
		t.Errorf("no extras should keep the base set, got %v", got)
	}

	got = withExtraFields(base, []string{"System.Title", "", "Microsoft.VSTS.Common.Priority"})
	want := []string{"System.Id", "System.Title", "Microsoft.VSTS.Common.Priority"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
