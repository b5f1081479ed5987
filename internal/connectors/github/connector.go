package github

import (
	"context"
	"fmt"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
	"github.com/devpulse-labs/pulse-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

const (
	// DefaultQuery finds active repositories with some traction. The
	// pushed window keeps the feed fresh between runs.
	DefaultQuery = "stars:>100 pushed:>%s"

	// DefaultMaxResults bounds one discovery batch.
	DefaultMaxResults = 30

	// maxReadmeLength caps README content carried in the payload.
	maxReadmeLength = 4000
)

// Config holds configuration for the GitHub connector.
type Config struct {
	// Token is a personal access token. Optional for public data.
	Token string

	// Query is a GitHub repository search query. When empty, a default
	// recent-activity query is used.
	Query string

	// MaxResults bounds one fetch batch (default 30).
	MaxResults int

	// FetchReadmes fetches each repository's README for richer
	// summaries. One extra API call per repository.
	FetchReadmes bool
}

// Connector discovers recently active repositories as raw signals.
type Connector struct {
	client *Client
	cfg    Config
}

// NewConnector creates a GitHub connector.
func NewConnector(cfg Config) *Connector {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	return &Connector{
		client: NewClient(cfg.Token),
		cfg:    cfg,
	}
}

// Source returns the source kind this connector serves.
func (c *Connector) Source() domain.SourceKind {
	return domain.SourceGitHub
}

// Fetch returns one batch of recently active repositories.
func (c *Connector) Fetch(ctx context.Context) ([]driven.RawSignal, error) {
	query := c.cfg.Query
	if query == "" {
		since := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
		query = fmt.Sprintf(DefaultQuery, since)
	}

	repos, err := c.client.SearchRepositories(ctx, query, c.cfg.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("github: discover repos: %w", err)
	}

	signals := make([]driven.RawSignal, 0, len(repos))
	for _, repo := range repos {
		signals = append(signals, driven.RawSignal{
			Source:     domain.SourceGitHub,
			ExternalID: repo.GetFullName(),
			Payload:    c.buildPayload(ctx, repo),
		})
	}

	logger.Debug("GitHub: discovered %d repositories for query %q", len(signals), query)
	return signals, nil
}

// Close releases resources.
func (c *Connector) Close() error {
	return nil
}

// buildPayload flattens a repository into the normaliser's input shape.
// README fetch failures are absorbed; the payload just lacks the extra
// context.
func (c *Connector) buildPayload(ctx context.Context, repo *gh.Repository) map[string]any {
	payload := map[string]any{
		"name":        repo.GetName(),
		"full_name":   repo.GetFullName(),
		"description": repo.GetDescription(),
		"stars":       repo.GetStargazersCount(),
		"forks":       repo.GetForksCount(),
		"language":    repo.GetLanguage(),
		"topics":      repo.Topics,
		"url":         repo.GetHTMLURL(),
		"pushed_at":   repo.GetPushedAt().Format(time.RFC3339),
	}

	if c.cfg.FetchReadmes {
		readme, err := c.client.GetReadme(ctx, repo.GetOwner().GetLogin(), repo.GetName())
		if err != nil {
			logger.Debug("GitHub: readme unavailable for %s: %v", repo.GetFullName(), err)
		} else {
			if len(readme) > maxReadmeLength {
				readme = readme[:maxReadmeLength]
			}
			payload["readme"] = readme
		}
	}

	return payload
}
