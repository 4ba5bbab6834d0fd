package tools

import (
	"testing"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
)

func TestTrimRef(t *testing.T) {
	tests := []struct{ in, want string }{
		{"refs/heads/main", "main"},
		{"refs/heads/feature/login", "feature/login"},
		{"main", "main"},
		{"refs/tags/v1.0", "refs/tags/v1.0"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := trimRef(tt.in); got != tt.want {
			t.Errorf("trimRef(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFullRef(t *testing.T) {
	tests := []struct{ in, want string }{
		{"main", "refs/heads/main"},
		{"refs/heads/main", "refs/heads/main"},
		{"refs/tags/v1.0", "refs/tags/v1.0"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := fullRef(tt.in); got != tt.want {
			t.Errorf("fullRef(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsCommitSHA(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0f1e2d3c4b5a69788796a5b4c3d2e1f00f1e2d3c", true},
		{"0F1E2D3C4B5A69788796A5B4C3D2E1F00F1E2D3C", true},
		{"0f1e2d3c", false},
		{"main", false},
		{"gggggggggggggggggggggggggggggggggggggggg", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isCommitSHA(tt.in); got != tt.want {
			t.Errorf("isCommitSHA(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVersionDescriptor(t *testing.T) {
	if versionDescriptor("") != nil {
		t.Error("empty ref should mean repository default")
	}

	vd := versionDescriptor("0f1e2d3c4b5a69788796a5b4c3d2e1f00f1e2d3c")
	if *vd.VersionType != git.GitVersionTypeValues.Commit {
		t.Errorf("sha should resolve as commit, got %v", *vd.VersionType)
	}

	vd = versionDescriptor("refs/heads/main")
	if *vd.VersionType != git.GitVersionTypeValues.Branch {
		t.Errorf("branch ref type = %v", *vd.VersionType)
	}
	if *vd.Version != "main" {
		t.Errorf("branch ref should be unqualified, got %q", *vd.Version)
	}
}

func TestChangeList(t *testing.T) {
	raw := []interface{}{
		map[string]any{
			"changeType": "edit",
			"item":       map[string]any{"path": "/src/main.go"},
		},
		map[string]any{
			"changeType": "add",
			"item":       map[string]any{"path": "/src/util.go"},
		},
		map[string]any{
			"changeType": "edit",
			"item":       map[string]any{"path": "/docs", "isFolder": true},
		},
		"not a map",
	}
	changes := &git.GitCommitChanges{Changes: &raw}

	files, counts := changeList(changes)
	if len(files) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(files))
	}
	if files[0]["path"] != "/src/main.go" || files[0]["changeType"] != "edit" {
		t.Errorf("entry 0 = %v", files[0])
	}
	if files[2]["isFolder"] != true {
		t.Errorf("folder flag lost: %v", files[2])
	}
	if counts["edit"] != 2 || counts["add"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestChangeList_Empty(t *testing.T) {
	files, counts := changeList(nil)
	if files == nil || len(files) != 0 {
		t.Errorf("nil changes should yield empty list, got %v", files)
	}
	if len(counts) != 0 {
		t.Errorf("counts = %v", counts)
	}
}

func TestLineCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"one line", 1},
		{"a\nb", 2},
		{"a\nb\n", 3},
	}
	for _, tt := range tests {
		if got := lineCount(tt.in); got != tt.want {
			t.Errorf("lineCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPullRequestStatus(t *testing.T) {
	if *pullRequestStatus("active") != git.PullRequestStatusValues.Active {
		t.Error("active")
	}
	if *pullRequestStatus("completed") != git.PullRequestStatusValues.Completed {
		t.Error("completed")
	}
	if *pullRequestStatus("abandoned") != git.PullRequestStatusValues.Abandoned {
		t.Error("abandoned")
	}
	if *pullRequestStatus("all") != git.PullRequestStatusValues.All {
		t.Error("all")
	}
}

func TestVoteLabel(t *testing.T) {
	tests := []struct {
		vote int
		want string
	}{
		{10, "approved"},
		{5, "approved with suggestions"},
		{0, "no vote"},
		{-5, "waiting for author"},
		{-10, "rejected"},
	}
	for _, tt := range tests {
		if got := voteLabel(tt.vote); got != tt.want {
			t.Errorf("voteLabel(%d) = %q, want %q", tt.vote, got, tt.want)
		}
	}
}

func TestPullRequestMap(t *testing.T) {
	pr := git.GitPullRequest{
		PullRequestId: ptr(42),
		Title:         ptr("Fix login redirect"),
		Status:        &git.PullRequestStatusValues.Active,
		SourceRefName: ptr("refs/heads/fix/login"),
		TargetRefName: ptr("refs/heads/main"),
		IsDraft:       ptr(false),
	}

	out := pullRequestMap(pr)
	if out["id"] != 42 || out["title"] != "Fix login redirect" {
		t.Errorf("out = %v", out)
	}
	if out["status"] != "active" {
		t.Errorf("status = %v", out["status"])
	}
	if out["sourceBranch"] != "fix/login" || out["targetBranch"] != "main" {
		t.Errorf("branches should be unqualified: %v", out)
	}
}
