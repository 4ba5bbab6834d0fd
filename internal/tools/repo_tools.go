package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/git"
	"golang.org/x/sync/errgroup"

	"azdo-cli/internal/azdo"
)

// RepositoryTable declares the git repository operations.
func RepositoryTable() Table {
	return Table{
		Domain: "repositories",
		Operations: []Operation{
			{
				Name:        "list_repositories",
				Description: "List the git repositories of a project.",
				Params: objectParams(map[string]*Param{
					"project": {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
				}),
				Handler: listRepositories,
			},
			{
				Name:        "get_repository",
				Description: "Get one git repository by name or ID.",
				Params: objectParams(map[string]*Param{
					"repository": {Kind: KindString, Description: "Repository name or ID."},
					"project":    {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
				}),
				Handler: getRepository,
			},
			{
				Name:        "list_branches",
				Description: "List the branches of a repository with ahead/behind counts.",
				Params: objectParams(map[string]*Param{
					"repository": {Kind: KindString, Description: "Repository name or ID."},
					"project":    {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
					"filter":     {Kind: KindString, Description: "Keep only branches whose name contains this text.", Default: ""},
				}),
				Handler: listBranches,
			},
			{
				Name:        "list_commits",
				Description: "List recent commits of a repository, optionally scoped to a branch or author.",
				Params: objectParams(map[string]*Param{
					"repository": {Kind: KindString, Description: "Repository name or ID."},
					"project":    {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
					"branch":     {Kind: KindString, Description: "Branch name or commit SHA to walk from. Defaults to the default branch.", Default: ""},
					"author":     {Kind: KindString, Description: "Keep only commits whose author matches this name or email.", Default: ""},
					"top":        {Kind: KindNumber, Description: "Maximum number of commits to return.", Default: 20},
					"skip":       {Kind: KindNumber, Description: "Number of commits to skip, for paging.", Default: 0},
				}),
				Handler: listCommits,
			},
			{
				Name:        "search_commits",
				Description: "Search commit messages within the most recent commits of a repository.",
				Params: objectParams(map[string]*Param{
					"repository":     {Kind: KindString, Description: "Repository name or ID."},
					"text":           {Kind: KindString, Description: "Text to look for in commit messages."},
					"project":        {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
					"branch":         {Kind: KindString, Description: "Branch to search. Defaults to the default branch.", Default: ""},
					"case_sensitive": {Kind: KindBoolean, Description: "Match case exactly.", Default: false},
					"top":            {Kind: KindNumber, Description: "Size of the recent-commit window to search.", Default: 100},
				}),
				Handler: searchCommits,
			},
			{
				Name:        "get_commit",
				Description: "Get one commit with its changed files.",
				Params: objectParams(map[string]*Param{
					"repository": {Kind: KindString, Description: "Repository name or ID."},
					"commit":     {Kind: KindString, Description: "Commit SHA."},
					"project":    {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
				}),
				Handler: getCommit,
			},
			{
				Name:        "get_file",
				Description: "Read a file from a repository at a branch, tag, or commit.",
				Params: objectParams(map[string]*Param{
					"repository": {Kind: KindString, Description: "Repository name or ID."},
					"path":       {Kind: KindString, Description: "File path inside the repository."},
					"project":    {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
					"ref":        {Kind: KindString, Description: "Branch name or commit SHA. Defaults to the default branch.", Default: ""},
				}),
				Handler: getFile,
			},
			{
				Name:        "diff_commit_file",
				Description: "Fetch a file as of one commit and as of its first parent, for diffing.",
				Params: objectParams(map[string]*Param{
					"repository": {Kind: KindString, Description: "Repository name or ID."},
					"commit":     {Kind: KindString, Description: "Commit SHA."},
					"path":       {Kind: KindString, Description: "File path inside the repository."},
					"project":    {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
				}),
				Handler: diffCommitFile,
			},
			{
				Name:        "list_pull_requests",
				Description: "List pull requests of a repository or a whole project.",
				Params: objectParams(map[string]*Param{
					"repository": {Kind: KindString, Description: "Repository name or ID. Omit to search the whole project.", Optional: true},
					"project":    {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
					"status":     {Kind: KindEnum, Description: "Pull request state to list.", Enum: []string{"active", "completed", "abandoned", "all"}, Default: "active"},
					"top":        {Kind: KindNumber, Description: "Maximum number of pull requests to return.", Default: 20},
				}),
				Handler: listPullRequests,
			},
			{
				Name:        "get_pull_request",
				Description: "Get one pull request with reviewers, votes, and linked work items.",
				Params: objectParams(map[string]*Param{
					"repository":      {Kind: KindString, Description: "Repository name or ID."},
					"pull_request_id": {Kind: KindNumber, Description: "Pull request ID."},
					"project":         {Kind: KindString, Description: "Project name or ID. Defaults to the configured project.", Optional: true},
				}),
				Handler: getPullRequest,
			},
		},
	}
}

// trimRef shortens refs/heads/main to main.
func trimRef(ref string) string {
	return strings.TrimPrefix(ref, "refs/heads/")
}

// fullRef expands main to refs/heads/main, leaving qualified refs alone.
func fullRef(branch string) string {
	if branch == "" || strings.HasPrefix(branch, "refs/") {
		return branch
	}
	return "refs/heads/" + branch
}

func isCommitSHA(s string) bool {
	if len(s) != 40 {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') && (r < 'A' || r > 'F') {
			return false
		}
	}
	return true
}

// versionDescriptor interprets ref as a commit SHA or a branch name. An
// empty ref means the repository default and yields nil.
func versionDescriptor(ref string) *git.GitVersionDescriptor {
	if ref == "" {
		return nil
	}
	if isCommitSHA(ref) {
		return &git.GitVersionDescriptor{
			Version:     &ref,
			VersionType: &git.GitVersionTypeValues.Commit,
		}
	}
	branch := trimRef(ref)
	return &git.GitVersionDescriptor{
		Version:     &branch,
		VersionType: &git.GitVersionTypeValues.Branch,
	}
}

func repositoryMap(r git.GitRepository) map[string]any {
	out := map[string]any{
		"id":            uuidVal(r.Id),
		"name":          strVal(r.Name),
		"defaultBranch": trimRef(strVal(r.DefaultBranch)),
		"size":          r.Size,
		"remoteUrl":     strVal(r.RemoteUrl),
		"webUrl":        strVal(r.WebUrl),
		"isDisabled":    boolVal(r.IsDisabled),
		"isFork":        boolVal(r.IsFork),
	}
	if r.Project != nil {
		out["project"] = strVal(r.Project.Name)
	}
	return out
}

func gitUserMap(u *git.GitUserDate) map[string]any {
	if u == nil {
		return nil
	}
	return map[string]any{
		"name":  strVal(u.Name),
		"email": strVal(u.Email),
		"date":  timeVal(u.Date),
	}
}

func commitRefMap(c git.GitCommitRef) map[string]any {
	return map[string]any{
		"id":        strVal(c.CommitId),
		"message":   strVal(c.Comment),
		"author":    gitUserMap(c.Author),
		"committer": gitUserMap(c.Committer),
		"url":       strVal(c.RemoteUrl),
	}
}

func listRepositories(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	gitClient, err := client.Git(ctx)
	if err != nil {
		return nil, err
	}

	repos, err := gitClient.GetRepositories(ctx, git.GetRepositoriesArgs{Project: &project})
	if err != nil {
		return nil, fmt.Errorf("listing repositories in %q: %w", project, err)
	}

	out := make([]map[string]any, 0, len(*repos))
	for _, r := range *repos {
		out = append(out, repositoryMap(r))
	}
	return map[string]any{
		"count":        len(out),
		"repositories": out,
	}, nil
}

func getRepository(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	gitClient, err := client.Git(ctx)
	if err != nil {
		return nil, err
	}

	repo := args.String("repository")
	r, err := gitClient.GetRepository(ctx, git.GetRepositoryArgs{
		RepositoryId: &repo,
		Project:      &project,
	})
	if err != nil {
		if azdo.IsNotFound(err) {
			return nil, fmt.Errorf("repository %q not found in %q", repo, project)
		}
		return nil, fmt.Errorf("getting repository %q: %w", repo, err)
	}
	return repositoryMap(*r), nil
}

func listBranches(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	gitClient, err := client.Git(ctx)
	if err != nil {
		return nil, err
	}

	repo := args.String("repository")
	stats, err := gitClient.GetBranches(ctx, git.GetBranchesArgs{
		RepositoryId: &repo,
		Project:      &project,
	})
	if err != nil {
		if azdo.IsNotFound(err) {
			return nil, fmt.Errorf("repository %q not found in %q", repo, project)
		}
		return nil, fmt.Errorf("listing branches of %q: %w", repo, err)
	}

	filter := strings.ToLower(args.String("filter"))
	branches := make([]map[string]any, 0, len(*stats))
	for _, b := range *stats {
		name := strVal(b.Name)
		if filter != "" && !strings.Contains(strings.ToLower(name), filter) {
			continue
		}
		entry := map[string]any{
			"name":          name,
			"aheadCount":    intVal(b.AheadCount),
			"behindCount":   intVal(b.BehindCount),
			"isBaseVersion": boolVal(b.IsBaseVersion),
		}
		if b.Commit != nil {
			entry["lastCommit"] = commitRefMap(*b.Commit)
		}
		branches = append(branches, entry)
	}
	return map[string]any{
		"count":    len(branches),
		"branches": branches,
	}, nil
}

func fetchCommits(ctx context.Context, gitClient git.Client, project, repo, branch, author string, top, skip int) ([]git.GitCommitRef, error) {
	criteria := git.GitQueryCommitsCriteria{
		Top:  &top,
		Skip: &skip,
	}
	if author != "" {
		criteria.Author = &author
	}
	if desc := versionDescriptor(branch); desc != nil {
		criteria.ItemVersion = desc
	}
	commits, err := gitClient.GetCommits(ctx, git.GetCommitsArgs{
		RepositoryId:   &repo,
		Project:        &project,
		SearchCriteria: &criteria,
	})
	if err != nil {
		if azdo.IsNotFound(err) {
			return nil, fmt.Errorf("repository %q not found in %q", repo, project)
		}
		return nil, fmt.Errorf("listing commits of %q: %w", repo, err)
	}
	return *commits, nil
}

func listCommits(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	gitClient, err := client.Git(ctx)
	if err != nil {
		return nil, err
	}

	commits, err := fetchCommits(ctx, gitClient, project,
		args.String("repository"), args.String("branch"), args.String("author"),
		args.Int("top"), args.Int("skip"))
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(commits))
	for _, c := range commits {
		out = append(out, commitRefMap(c))
	}
	return map[string]any{
		"count":   len(out),
		"commits": out,
	}, nil
}

func searchCommits(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	gitClient, err := client.Git(ctx)
	if err != nil {
		return nil, err
	}

	window := args.Int("top")
	commits, err := fetchCommits(ctx, gitClient, project,
		args.String("repository"), args.String("branch"), "", window, 0)
	if err != nil {
		return nil, err
	}

	text := args.String("text")
	caseSensitive := args.Bool("case_sensitive")
	needle := text
	if !caseSensitive {
		needle = strings.ToLower(text)
	}

	matches := make([]map[string]any, 0)
	for _, c := range commits {
		message := strVal(c.Comment)
		haystack := message
		if !caseSensitive {
			haystack = strings.ToLower(message)
		}
		if strings.Contains(haystack, needle) {
			matches = append(matches, commitRefMap(c))
		}
	}
	return map[string]any{
		"count":    len(matches),
		"searched": len(commits),
		"text":     text,
		"commits":  matches,
	}, nil
}

func getCommit(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	gitClient, err := client.Git(ctx)
	if err != nil {
		return nil, err
	}

	repo := args.String("repository")
	sha := args.String("commit")
	commit, err := gitClient.GetCommit(ctx, git.GetCommitArgs{
		CommitId:     &sha,
		RepositoryId: &repo,
		Project:      &project,
	})
	if err != nil {
		if azdo.IsNotFound(err) {
			return nil, fmt.Errorf("commit %q not found in %q", sha, repo)
		}
		return nil, fmt.Errorf("getting commit %q: %w", sha, err)
	}

	out := map[string]any{
		"id":        strVal(commit.CommitId),
		"message":   strVal(commit.Comment),
		"author":    gitUserMap(commit.Author),
		"committer": gitUserMap(commit.Committer),
		"url":       strVal(commit.RemoteUrl),
	}
	if commit.Parents != nil {
		out["parents"] = *commit.Parents
	}

	changes, err := gitClient.GetChanges(ctx, git.GetChangesArgs{
		CommitId:     &sha,
		RepositoryId: &repo,
		Project:      &project,
	})
	if err != nil {
		return nil, fmt.Errorf("getting changes of %q: %w", sha, err)
	}
	files, counts := changeList(changes)
	out["changes"] = files
	out["changeCounts"] = counts
	return out, nil
}

// changeList flattens the loosely typed change entries into path and
// change type pairs, counting per change type along the way.
func changeList(changes *git.GitCommitChanges) ([]map[string]any, map[string]int) {
	counts := map[string]int{}
	if changes == nil || changes.Changes == nil {
		return []map[string]any{}, counts
	}
	files := make([]map[string]any, 0, len(*changes.Changes))
	for _, raw := range *changes.Changes {
		change, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		entry := map[string]any{}
		if ct, ok := change["changeType"].(string); ok {
			entry["changeType"] = ct
			counts[ct]++
		}
		if item, ok := change["item"].(map[string]any); ok {
			if path, ok := item["path"].(string); ok {
				entry["path"] = path
			}
			if folder, ok := item["isFolder"].(bool); ok && folder {
				entry["isFolder"] = true
			}
		}
		if len(entry) > 0 {
			files = append(files, entry)
		}
	}
	return files, counts
}

func fetchItem(ctx context.Context, gitClient git.Client, project, repo, path, ref string) (*git.GitItem, error) {
	return gitClient.GetItem(ctx, git.GetItemArgs{
		RepositoryId:           &repo,
		Path:                   &path,
		Project:                &project,
		IncludeContent:         ptr(true),
		IncludeContentMetadata: ptr(true),
		VersionDescriptor:      versionDescriptor(ref),
	})
}

func fileMap(item *git.GitItem, ref string) map[string]any {
	content := strVal(item.Content)
	out := map[string]any{
		"path":     strVal(item.Path),
		"ref":      ref,
		"commitId": strVal(item.CommitId),
		"objectId": strVal(item.ObjectId),
		"content":  content,
		"lines":    lineCount(content),
	}
	if meta := item.ContentMetadata; meta != nil {
		out["fileName"] = strVal(meta.FileName)
		out["contentType"] = strVal(meta.ContentType)
		out["isBinary"] = boolVal(meta.IsBinary)
	}
	return out
}

func lineCount(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}

func getFile(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	gitClient, err := client.Git(ctx)
	if err != nil {
		return nil, err
	}

	repo := args.String("repository")
	path := args.String("path")
	ref := args.String("ref")
	item, err := fetchItem(ctx, gitClient, project, repo, path, ref)
	if err != nil {
		if azdo.IsNotFound(err) {
			return nil, fmt.Errorf("file %q not found in %q", path, repo)
		}
		return nil, fmt.Errorf("reading %q from %q: %w", path, repo, err)
	}
	return fileMap(item, ref), nil
}

func diffCommitFile(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	gitClient, err := client.Git(ctx)
	if err != nil {
		return nil, err
	}

	repo := args.String("repository")
	sha := args.String("commit")
	path := args.String("path")

	commit, err := gitClient.GetCommit(ctx, git.GetCommitArgs{
		CommitId:     &sha,
		RepositoryId: &repo,
		Project:      &project,
	})
	if err != nil {
		if azdo.IsNotFound(err) {
			return nil, fmt.Errorf("commit %q not found in %q", sha, repo)
		}
		return nil, fmt.Errorf("getting commit %q: %w", sha, err)
	}
	parent := ""
	if commit.Parents != nil && len(*commit.Parents) > 0 {
		parent = (*commit.Parents)[0]
	}

	// The two content fetches only depend on the commit lookup above, so
	// they run side by side. A file absent from the parent is not an
	// error; it just means the commit introduced it.
	var current, previous *git.GitItem
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		item, err := fetchItem(gctx, gitClient, project, repo, path, sha)
		if err != nil {
			if azdo.IsNotFound(err) {
				return fmt.Errorf("file %q not found in commit %s", path, sha)
			}
			return fmt.Errorf("reading %q at %s: %w", path, sha, err)
		}
		current = item
		return nil
	})
	if parent != "" {
		g.Go(func() error {
			item, err := fetchItem(gctx, gitClient, project, repo, path, parent)
			if err != nil {
				if azdo.IsNotFound(err) {
					return nil
				}
				return fmt.Errorf("reading %q at parent %s: %w", path, parent, err)
			}
			previous = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := map[string]any{
		"repository":   repo,
		"path":         path,
		"commit":       sha,
		"parent":       parent,
		"changeType":   "modified",
		"current":      strVal(current.Content),
		"currentLines": lineCount(strVal(current.Content)),
	}
	if previous == nil {
		out["changeType"] = "added"
		out["previous"] = nil
		out["previousLines"] = 0
	} else {
		out["previous"] = strVal(previous.Content)
		out["previousLines"] = lineCount(strVal(previous.Content))
	}
	return out, nil
}

func pullRequestStatus(s string) *git.PullRequestStatus {
	switch s {
	case "active":
		return &git.PullRequestStatusValues.Active
	case "completed":
		return &git.PullRequestStatusValues.Completed
	case "abandoned":
		return &git.PullRequestStatusValues.Abandoned
	default:
		return &git.PullRequestStatusValues.All
	}
}

func pullRequestMap(pr git.GitPullRequest) map[string]any {
	out := map[string]any{
		"id":           intVal(pr.PullRequestId),
		"title":        strVal(pr.Title),
		"status":       enumVal(pr.Status),
		"createdBy":    identityName(pr.CreatedBy),
		"creationDate": timeVal(pr.CreationDate),
		"sourceBranch": trimRef(strVal(pr.SourceRefName)),
		"targetBranch": trimRef(strVal(pr.TargetRefName)),
		"isDraft":      boolVal(pr.IsDraft),
		"mergeStatus":  enumVal(pr.MergeStatus),
	}
	if pr.Repository != nil {
		out["repository"] = strVal(pr.Repository.Name)
	}
	if pr.ClosedDate != nil {
		out["closedDate"] = timeVal(pr.ClosedDate)
	}
	return out
}

func listPullRequests(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	gitClient, err := client.Git(ctx)
	if err != nil {
		return nil, err
	}

	criteria := git.GitPullRequestSearchCriteria{
		Status: pullRequestStatus(args.String("status")),
	}
	top := args.Int("top")

	var prs *[]git.GitPullRequest
	if repo := args.String("repository"); repo != "" {
		prs, err = gitClient.GetPullRequests(ctx, git.GetPullRequestsArgs{
			RepositoryId:   &repo,
			Project:        &project,
			SearchCriteria: &criteria,
			Top:            &top,
		})
		if err != nil && azdo.IsNotFound(err) {
			return nil, fmt.Errorf("repository %q not found in %q", repo, project)
		}
	} else {
		prs, err = gitClient.GetPullRequestsByProject(ctx, git.GetPullRequestsByProjectArgs{
			Project:        &project,
			SearchCriteria: &criteria,
			Top:            &top,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("listing pull requests: %w", err)
	}

	out := make([]map[string]any, 0, len(*prs))
	for _, pr := range *prs {
		out = append(out, pullRequestMap(pr))
	}
	return map[string]any{
		"count":        len(out),
		"pullRequests": out,
	}, nil
}

// voteLabel translates reviewer vote weights into the words the web UI
// shows for them.
func voteLabel(vote int) string {
	switch {
	case vote >= 10:
		return "approved"
	case vote > 0:
		return "approved with suggestions"
	case vote <= -10:
		return "rejected"
	case vote < 0:
		return "waiting for author"
	default:
		return "no vote"
	}
}

func getPullRequest(ctx context.Context, client *azdo.Client, args Args) (any, error) {
	project, err := client.RequireProject(args.String("project"))
	if err != nil {
		return nil, err
	}
	gitClient, err := client.Git(ctx)
	if err != nil {
		return nil, err
	}

	repo := args.String("repository")
	prID := args.Int("pull_request_id")
	pr, err := gitClient.GetPullRequest(ctx, git.GetPullRequestArgs{
		RepositoryId:        &repo,
		PullRequestId:       &prID,
		Project:             &project,
		IncludeWorkItemRefs: ptr(true),
	})
	if err != nil {
		if azdo.IsNotFound(err) {
			return nil, fmt.Errorf("pull request %d not found in %q", prID, repo)
		}
		return nil, fmt.Errorf("getting pull request %d: %w", prID, err)
	}

	out := pullRequestMap(*pr)
	out["description"] = strVal(pr.Description)
	if pr.Reviewers != nil {
		reviewers := make([]map[string]any, 0, len(*pr.Reviewers))
		for _, r := range *pr.Reviewers {
			reviewers = append(reviewers, map[string]any{
				"name":       strVal(r.DisplayName),
				"vote":       voteLabel(intVal(r.Vote)),
				"isRequired": boolVal(r.IsRequired),
			})
		}
		out["reviewers"] = reviewers
	}
	if pr.WorkItemRefs != nil {
		ids := make([]string, 0, len(*pr.WorkItemRefs))
		for _, ref := range *pr.WorkItemRefs {
			ids = append(ids, strVal(ref.Id))
		}
		out["workItems"] = ids
	}
	return out, nil
}
