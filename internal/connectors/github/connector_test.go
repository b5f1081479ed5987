package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
)

// newTestConnector points the connector at a stub API server with rate
// limiting disabled.
func newTestConnector(t *testing.T, handler http.Handler, cfg Config) *Connector {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ghClient := gh.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	ghClient.BaseURL = base

	client := &Client{
		gh: ghClient,
		rateLimiter: &RateLimiter{
			remaining: GitHubRateLimit,
			limit:     GitHubRateLimit,
			bucket:    rate.NewLimiter(rate.Inf, 1),
		},
	}

	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	return &Connector{client: client, cfg: cfg}
}

func searchHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/repositories", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"total_count": 2,
			"items": [
				{
					"name": "sqlc",
					"full_name": "sqlc-dev/sqlc",
					"owner": {"login": "sqlc-dev"},
					"description": "Generate type-safe code from SQL",
					"stargazers_count": 12000,
					"forks_count": 800,
					"language": "Go",
					"topics": ["go", "sql", "codegen"],
					"html_url": "https://github.com/sqlc-dev/sqlc"
				},
				{
					"name": "zap",
					"full_name": "uber-go/zap",
					"owner": {"login": "uber-go"},
					"description": "Blazing fast structured logging",
					"stargazers_count": 21000,
					"forks_count": 1500,
					"language": "Go",
					"topics": ["logging"],
					"html_url": "https://github.com/uber-go/zap"
				}
			]
		}`))
	})
	return mux
}

func TestFetchDiscoversRepositories(t *testing.T) {
	conn := newTestConnector(t, searchHandler(), Config{})

	signals, err := conn.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, signals, 2)

	assert.Equal(t, domain.SourceGitHub, signals[0].Source)
	assert.Equal(t, "sqlc-dev/sqlc", signals[0].ExternalID)
	assert.Equal(t, "Generate type-safe code from SQL", signals[0].Payload["description"])
	assert.Equal(t, 12000, signals[0].Payload["stars"])
	assert.Equal(t, []string{"go", "sql", "codegen"}, signals[0].Payload["topics"])
	assert.Equal(t, "uber-go/zap", signals[1].ExternalID)

	// Readmes not requested
	assert.NotContains(t, signals[0].Payload, "readme")
}

func TestFetchWithReadmes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/repositories", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"total_count": 1,
			"items": [
				{
					"name": "sqlc",
					"full_name": "sqlc-dev/sqlc",
					"owner": {"login": "sqlc-dev"},
					"description": "Generate type-safe code from SQL",
					"stargazers_count": 12000,
					"html_url": "https://github.com/sqlc-dev/sqlc"
				}
			]
		}`))
	})
	mux.HandleFunc("/repos/sqlc-dev/sqlc/readme", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// "# sqlc" base64-encoded
		w.Write([]byte(`{"type": "file", "encoding": "base64", "content": "IyBzcWxj"}`))
	})

	conn := newTestConnector(t, mux, Config{FetchReadmes: true})

	signals, err := conn.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "# sqlc", signals[0].Payload["readme"])
}

func TestFetchReadmeFailureIsAbsorbed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/repositories", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"total_count": 1,
			"items": [
				{
					"name": "ghost",
					"full_name": "acme/ghost",
					"owner": {"login": "acme"},
					"description": "No readme here",
					"html_url": "https://github.com/acme/ghost"
				}
			]
		}`))
	})
	// /repos/acme/ghost/readme returns 404 via the mux default

	conn := newTestConnector(t, mux, Config{FetchReadmes: true})

	signals, err := conn.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.NotContains(t, signals[0].Payload, "readme")
}

func TestFetchRespectsMaxResults(t *testing.T) {
	conn := newTestConnector(t, searchHandler(), Config{MaxResults: 1})

	signals, err := conn.Fetch(context.Background())

	require.NoError(t, err)
	assert.Len(t, signals, 1)
}

func TestFetchSearchFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/repositories", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message": "boom"}`, http.StatusInternalServerError)
	})

	conn := newTestConnector(t, mux, Config{})

	_, err := conn.Fetch(context.Background())
	assert.Error(t, err)
}

func TestSource(t *testing.T) {
	conn := NewConnector(Config{})
	assert.Equal(t, domain.SourceGitHub, conn.Source())
	assert.NoError(t, conn.Close())
}

func TestErrorHelpers(t *testing.T) {
	notFound := &APIError{StatusCode: 404, Message: "missing"}
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsUnauthorized(notFound))

	unauthorized := &APIError{StatusCode: 401, Message: "bad credentials"}
	assert.True(t, IsUnauthorized(unauthorized))

	assert.True(t, IsRateLimited(&RateLimitError{}))
	assert.False(t, IsRateLimited(notFound))
	assert.ErrorIs(t, fmt.Errorf("search: %w", &RateLimitError{}), domain.ErrRateLimited)
}
