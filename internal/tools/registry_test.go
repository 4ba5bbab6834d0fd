package tools

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"azdo-cli/internal/azdo"
)

func nopHandler(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	return nil, nil
}

func opNamed(name, desc string) Operation {
	return Operation{
		Name:        name,
		Description: desc,
		Params:      &Param{Kind: KindObject},
		Handler:     nopHandler,
	}
}

func TestBuildRegistry_Order(t *testing.T) {
	reg, err := BuildRegistry(
		Table{Domain: "repositories", Operations: []Operation{
			opNamed("list_repositories", "List repositories."),
			opNamed("get_repository", "Get one repository."),
		}},
		Table{Domain: "builds", Operations: []Operation{
			opNamed("list_builds", "List builds."),
		}},
	)
	if err != nil {
		t.Fatalf("BuildRegistry failed: %v", err)
	}

	want := []string{"list_repositories", "get_repository", "list_builds"}
	if !reflect.DeepEqual(reg.Names(), want) {
		t.Errorf("Names() = %v, want %v", reg.Names(), want)
	}
	if reg.Count() != 3 {
		t.Errorf("Count() = %d, want 3", reg.Count())
	}
	if reg.Domain("list_builds") != "builds" {
		t.Errorf("Domain(list_builds) = %q", reg.Domain("list_builds"))
	}
}

func TestBuildRegistry_DuplicateRejected(t *testing.T) {
	_, err := BuildRegistry(
		Table{Domain: "repositories", Operations: []Operation{opNamed("get_file", "")}},
		Table{Domain: "builds", Operations: []Operation{opNamed("get_file", "")}},
	)
	if err == nil {
		t.Fatal("duplicate name should fail registry construction")
	}
	msg := err.Error()
	if !strings.Contains(msg, `"get_file"`) {
		t.Errorf("error should name the colliding tool: %s", msg)
	}
	if !strings.Contains(msg, "repositories") || !strings.Contains(msg, "builds") {
		t.Errorf("error should name both domains: %s", msg)
	}
}

func TestRegistry_Lookup(t *testing.T) {
	reg := MustBuildRegistry(Table{Domain: "projects", Operations: []Operation{
		opNamed("list_projects", "List projects."),
	}})

	if _, ok := reg.Lookup("list_projects"); !ok {
		t.Error("expected to find list_projects")
	}
	if _, ok := reg.Lookup("nope"); ok {
		t.Error("unexpected hit for unregistered name")
	}
}

func TestRegistry_List(t *testing.T) {
	reg := MustBuildRegistry(Table{Domain: "projects", Operations: []Operation{
		opNamed("list_projects", "List all projects."),
	}})

	infos := reg.List()
	if len(infos) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(infos))
	}
	info := infos[0]
	if info.Name != "list_projects" || info.Domain != "projects" {
		t.Errorf("unexpected info: %+v", info)
	}
	if info.InputSchema["type"] != "object" {
		t.Errorf("schema should be attached: %v", info.InputSchema)
	}
}

func TestRegistry_Search(t *testing.T) {
	reg := MustBuildRegistry(
		Table{Domain: "builds", Operations: []Operation{
			opNamed("list_builds", "List builds for a project."),
			opNamed("get_build", "Get one build with its timeline."),
			opNamed("scan_build_log", "Scan a build log for error lines."),
		}},
		Table{Domain: "repositories", Operations: []Operation{
			opNamed("list_commits", "List commits on a branch."),
		}},
	)

	results := reg.Search("get_build")
	if len(results) == 0 || results[0].Name != "get_build" {
		t.Fatalf("exact name should rank first, got %v", names(results))
	}

	results = reg.Search("build")
	for _, r := range results {
		if r.Name == "list_commits" {
			t.Error("list_commits should not match query build")
		}
	}
	if len(results) != 3 {
		t.Errorf("expected 3 build matches, got %v", names(results))
	}

	// Empty query returns the full listing in declaration order.
	all := reg.Search("   ")
	if len(all) != reg.Count() {
		t.Errorf("empty query should list everything, got %d", len(all))
	}
	if all[0].Name != "list_builds" {
		t.Errorf("empty query should preserve order, got %s first", all[0].Name)
	}
}

func names(infos []OperationInfo) []string {
	out := make([]string, len(infos))
	for i, info := range infos {
		out[i] = info.Name
	}
	return out
}
