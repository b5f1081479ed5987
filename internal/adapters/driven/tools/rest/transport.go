// Package rest provides the fallback tool transport, calling the GitHub
// REST API directly when the MCP transport is down or unconfigured.
package rest

import (
	"context"
	"fmt"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
)

// Ensure Transport implements the interface.
var _ driven.ToolTransport = (*Transport)(nil)

const (
	// requestTimeout bounds a single API call.
	requestTimeout = 30 * time.Second

	// proactiveRate throttles below GitHub's authenticated quota
	// (~1.2 req/sec is 4320/hour against a 5000/hour limit).
	proactiveRate = 1.2
)

// Transport serves tool capabilities from the GitHub REST API.
type Transport struct {
	gh      *gh.Client
	limiter *rate.Limiter
}

// NewTransport creates a REST tool transport. An empty token yields an
// unauthenticated client with a much lower rate limit, which is still
// usable for public repositories.
func NewTransport(token string) *Transport {
	var client *gh.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		tc := oauth2.NewClient(context.Background(), ts)
		tc.Timeout = requestTimeout
		client = gh.NewClient(tc)
	} else {
		client = gh.NewClient(nil)
	}

	return &Transport{
		gh:      client,
		limiter: rate.NewLimiter(rate.Limit(proactiveRate), 1),
	}
}

// Name identifies the transport in traces.
func (t *Transport) Name() string { return "rest" }

// Invoke executes one capability call against the REST API.
func (t *Transport) Invoke(ctx context.Context, req driven.ToolRequest) (*driven.ToolResult, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rest: rate limit wait: %w", err)
	}

	switch req.Tool {
	case driven.ToolRepoMetadata:
		return t.repoMetadata(ctx, req.Args)
	case driven.ToolRepoFile:
		return t.repoFile(ctx, req.Args)
	case driven.ToolCodeSearch:
		return t.codeSearch(ctx, req.Args)
	default:
		return nil, fmt.Errorf("rest: no handler for capability %q", req.Tool)
	}
}

// Close releases resources.
func (t *Transport) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// repoMetadata fetches a repository and flattens the fields the pipeline
// cares about.
func (t *Transport) repoMetadata(ctx context.Context, args map[string]any) (*driven.ToolResult, error) {
	owner, repo, err := repoArgs(args)
	if err != nil {
		return nil, err
	}

	repository, _, err := t.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("rest: get repo %s/%s: %w", owner, repo, err)
	}

	content := map[string]any{
		"full_name":   repository.GetFullName(),
		"description": repository.GetDescription(),
		"stars":       repository.GetStargazersCount(),
		"forks":       repository.GetForksCount(),
		"open_issues": repository.GetOpenIssuesCount(),
		"language":    repository.GetLanguage(),
		"topics":      repository.Topics,
		"archived":    repository.GetArchived(),
		"pushed_at":   repository.GetPushedAt().Format(time.RFC3339),
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", repository.GetFullName(), repository.GetDescription())
	fmt.Fprintf(&b, "Stars: %d, Forks: %d, Open issues: %d\n",
		repository.GetStargazersCount(), repository.GetForksCount(), repository.GetOpenIssuesCount())
	if repository.GetLanguage() != "" {
		fmt.Fprintf(&b, "Language: %s\n", repository.GetLanguage())
	}
	if len(repository.Topics) > 0 {
		fmt.Fprintf(&b, "Topics: %s\n", strings.Join(repository.Topics, ", "))
	}
	if repository.GetArchived() {
		b.WriteString("Status: archived\n")
	}

	return &driven.ToolResult{Content: content, Text: strings.TrimSpace(b.String())}, nil
}

// repoFile fetches one file's decoded content.
func (t *Transport) repoFile(ctx context.Context, args map[string]any) (*driven.ToolResult, error) {
	owner, repo, err := repoArgs(args)
	if err != nil {
		return nil, err
	}
	path := stringArg(args, "path")
	if path == "" {
		return nil, fmt.Errorf("rest: missing path argument")
	}

	opts := &gh.RepositoryContentGetOptions{Ref: stringArg(args, "ref")}
	file, _, _, err := t.gh.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		return nil, fmt.Errorf("rest: get contents %s/%s/%s: %w", owner, repo, path, err)
	}
	if file == nil {
		return nil, fmt.Errorf("rest: %s is a directory, not a file", path)
	}

	decoded, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("rest: decode content: %w", err)
	}

	return &driven.ToolResult{
		Content: map[string]any{"path": path, "size": file.GetSize()},
		Text:    decoded,
	}, nil
}

// codeSearch runs a code search and returns the top matches.
func (t *Transport) codeSearch(ctx context.Context, args map[string]any) (*driven.ToolResult, error) {
	query := stringArg(args, "query")
	if query == "" {
		return nil, fmt.Errorf("rest: missing query argument")
	}

	opts := &gh.SearchOptions{ListOptions: gh.ListOptions{PerPage: 10}}
	results, _, err := t.gh.Search.Code(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("rest: search code: %w", err)
	}

	matches := make([]map[string]any, 0, len(results.CodeResults))
	var b strings.Builder
	fmt.Fprintf(&b, "%d matches for %q\n", results.GetTotal(), query)
	for _, item := range results.CodeResults {
		matches = append(matches, map[string]any{
			"repository": item.GetRepository().GetFullName(),
			"path":       item.GetPath(),
			"url":        item.GetHTMLURL(),
		})
		fmt.Fprintf(&b, "%s: %s\n", item.GetRepository().GetFullName(), item.GetPath())
	}

	return &driven.ToolResult{
		Content: map[string]any{"total": results.GetTotal(), "matches": matches},
		Text:    strings.TrimSpace(b.String()),
	}, nil
}

// repoArgs extracts the owner and repo arguments.
func repoArgs(args map[string]any) (owner, repo string, err error) {
	owner = stringArg(args, "owner")
	repo = stringArg(args, "repo")
	if owner == "" || repo == "" {
		return "", "", fmt.Errorf("rest: missing owner or repo argument")
	}
	return owner, repo, nil
}

// stringArg reads a string argument, tolerating absence.
func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}
