package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Client wraps the go-github client with rate limiting and error mapping.
type Client struct {
	gh          *gh.Client
	token       string
	rateLimiter *RateLimiter
}

// NewClient creates a new GitHub API client. An empty token yields an
// unauthenticated client, usable for public data at a lower quota.
func NewClient(token string) *Client {
	return &Client{
		token:       token,
		rateLimiter: NewRateLimiter(),
	}
}

// ensureClient initializes the go-github client if not already done.
// This is called lazily so construction never does I/O.
func (c *Client) ensureClient(ctx context.Context) {
	if c.gh != nil {
		return
	}

	if c.token == "" {
		httpClient := &http.Client{Timeout: DefaultTimeout}
		c.gh = gh.NewClient(httpClient)
		return
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: c.token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout
	c.gh = gh.NewClient(tc)
}

// SearchRepositories runs a repository search, following pagination until
// max results have been collected.
func (c *Client) SearchRepositories(ctx context.Context, query string, max int) ([]*gh.Repository, error) {
	c.ensureClient(ctx)

	var repos []*gh.Repository

	opts := &gh.SearchOptions{
		Sort:        "updated",
		Order:       "desc",
		ListOptions: gh.ListOptions{PerPage: min(max, 100)},
	}

	for len(repos) < max {
		select {
		case <-ctx.Done():
			return repos, ctx.Err()
		default:
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		result, resp, err := c.gh.Search.Repositories(ctx, query, opts)
		if err != nil {
			return nil, c.wrapError(err, "search repos")
		}

		c.rateLimiter.UpdateFromResponse(resp.Response)
		repos = append(repos, result.Repositories...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if len(repos) > max {
		repos = repos[:max]
	}
	return repos, nil
}

// GetReadme fetches and decodes a repository's README.
func (c *Client) GetReadme(ctx context.Context, owner, repo string) (string, error) {
	c.ensureClient(ctx)

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	readme, resp, err := c.gh.Repositories.GetReadme(ctx, owner, repo, nil)
	if err != nil {
		return "", c.wrapError(err, "get readme")
	}

	c.rateLimiter.UpdateFromResponse(resp.Response)

	content, err := readme.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode readme: %w", err)
	}
	return content, nil
}

// ValidateCredentials checks if the configured token is valid by making an API call.
func (c *Client) ValidateCredentials(ctx context.Context) error {
	c.ensureClient(ctx)

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	_, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return c.wrapError(err, "validate credentials")
	}

	c.rateLimiter.UpdateFromResponse(resp.Response)
	return nil
}

// wrapError maps go-github errors onto the package error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	// Check for GitHub error response
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) {
		return &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
			URL:        ghErr.Response.Request.URL.String(),
		}
	}

	// Check for rate limit error
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   c.rateLimiter.ResetTime(),
			Remaining: c.rateLimiter.Remaining(),
			Limit:     c.rateLimiter.Limit(),
		}
	}

	return fmt.Errorf("%s: %w", operation, err)
}
