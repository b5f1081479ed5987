package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
)

// newTestTransport points the transport at a stub API server.
func newTestTransport(t *testing.T, handler http.Handler) *Transport {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := gh.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base

	return &Transport{gh: client, limiter: rate.NewLimiter(rate.Inf, 1)}
}

func TestRepoMetadata(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/golang/go", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"full_name": "golang/go",
			"description": "The Go programming language",
			"stargazers_count": 120000,
			"forks_count": 17000,
			"open_issues_count": 9000,
			"language": "Go",
			"topics": ["go", "language"]
		}`))
	})

	tr := newTestTransport(t, mux)

	result, err := tr.Invoke(context.Background(), driven.ToolRequest{
		Tool: driven.ToolRepoMetadata,
		Args: map[string]any{"owner": "golang", "repo": "go"},
	})

	require.NoError(t, err)
	assert.Equal(t, "golang/go", result.Content["full_name"])
	assert.Equal(t, 120000, result.Content["stars"])
	assert.Contains(t, result.Text, "The Go programming language")
	assert.Contains(t, result.Text, "Stars: 120000")
	assert.Contains(t, result.Text, "Topics: go, language")
}

func TestRepoMetadata_MissingArgs(t *testing.T) {
	tr := newTestTransport(t, http.NewServeMux())

	_, err := tr.Invoke(context.Background(), driven.ToolRequest{
		Tool: driven.ToolRepoMetadata,
		Args: map[string]any{"owner": "golang"},
	})

	assert.ErrorContains(t, err, "missing owner or repo")
}

func TestRepoFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/golang/go/contents/README.md", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// "hello" base64-encoded
		w.Write([]byte(`{
			"type": "file",
			"path": "README.md",
			"size": 5,
			"encoding": "base64",
			"content": "aGVsbG8="
		}`))
	})

	tr := newTestTransport(t, mux)

	result, err := tr.Invoke(context.Background(), driven.ToolRequest{
		Tool: driven.ToolRepoFile,
		Args: map[string]any{"owner": "golang", "repo": "go", "path": "README.md"},
	})

	require.NoError(t, err)
	assert.Equal(t, "hello", result.Text)
	assert.Equal(t, "README.md", result.Content["path"])
}

func TestCodeSearch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/code", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"total_count": 1,
			"items": [
				{"path": "pkg/util.go", "html_url": "https://example.com", "repository": {"full_name": "golang/go"}}
			]
		}`))
	})

	tr := newTestTransport(t, mux)

	result, err := tr.Invoke(context.Background(), driven.ToolRequest{
		Tool: driven.ToolCodeSearch,
		Args: map[string]any{"query": "func main"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Content["total"])
	assert.Contains(t, result.Text, "golang/go: pkg/util.go")
}

func TestUnknownCapability(t *testing.T) {
	tr := newTestTransport(t, http.NewServeMux())

	_, err := tr.Invoke(context.Background(), driven.ToolRequest{Tool: "no.such.tool"})

	assert.ErrorContains(t, err, "no handler")
}

func TestServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/golang/go", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message": "boom"}`, http.StatusInternalServerError)
	})

	tr := newTestTransport(t, mux)

	_, err := tr.Invoke(context.Background(), driven.ToolRequest{
		Tool: driven.ToolRepoMetadata,
		Args: map[string]any{"owner": "golang", "repo": "go"},
	})

	assert.Error(t, err)
}

func TestNewTransport_Name(t *testing.T) {
	tr := NewTransport("")
	assert.Equal(t, "rest", tr.Name())
	assert.NoError(t, tr.Close())
}
