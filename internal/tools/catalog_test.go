package tools

import (
	"encoding/json"
	"testing"
)

var catalogTools = map[string][]string{
	"projects": {"list_projects", "get_project"},
	"repositories": {
		"list_repositories", "get_repository", "list_branches", "list_commits",
		"search_commits", "get_commit", "get_file", "diff_commit_file",
		"list_pull_requests", "get_pull_request",
	},
	"work items": {"get_work_item", "query_work_items", "list_work_items"},
	"builds":     {"list_build_definitions", "list_builds", "get_build", "get_build_log", "scan_build_log"},
	"releases":   {"list_release_definitions", "list_releases", "get_release", "get_release_environment"},
	"pipelines":  {"list_pipelines", "list_pipeline_runs", "get_pipeline_run"},
	"tests":      {"list_test_runs", "get_test_run", "list_test_results", "summarize_test_failures"},
}

func TestCatalog_Complete(t *testing.T) {
	reg := Catalog()

	total := 0
	for domain, toolNames := range catalogTools {
		total += len(toolNames)
		for _, name := range toolNames {
			op, ok := reg.Lookup(name)
			if !ok {
				t.Errorf("missing tool %s", name)
				continue
			}
			if op.Description == "" {
				t.Errorf("%s has no description", name)
			}
			if op.Handler == nil {
				t.Errorf("%s has no handler", name)
			}
			if got := reg.Domain(name); got != domain {
				t.Errorf("%s registered under %q, want %q", name, got, domain)
			}
		}
	}
	if reg.Count() != total {
		t.Errorf("catalog has %d tools, want %d", reg.Count(), total)
	}
}

func TestCatalog_SchemasRender(t *testing.T) {
	for _, info := range Catalog().List() {
		if info.InputSchema["type"] != "object" {
			t.Errorf("%s schema is not an object: %v", info.Name, info.InputSchema["type"])
		}
		if _, err := json.Marshal(info.InputSchema); err != nil {
			t.Errorf("%s schema does not marshal: %v", info.Name, err)
		}
	}
}

func TestCatalog_ValidatesWithoutArguments(t *testing.T) {
	// Tools whose every field is optional or defaulted must accept an
	// empty call; the rest must reject it with a required-field error.
	reg := Catalog()

	requiredless := map[string]bool{
		"list_projects":            true,
		"list_repositories":        true,
		"list_pull_requests":       true,
		"query_work_items":         true,
		"list_build_definitions":   true,
		"list_builds":              true,
		"list_release_definitions": true,
		"list_releases":            true,
		"list_pipelines":           true,
		"list_test_runs":           true,
	}

	for _, name := range reg.Names() {
		op, _ := reg.Lookup(name)
		_, err := op.Validate(nil)
		if requiredless[name] && err != nil {
			t.Errorf("%s should accept an empty call: %v", name, err)
		}
		if !requiredless[name] && err == nil {
			t.Errorf("%s should demand its required fields", name)
		}
	}
}
