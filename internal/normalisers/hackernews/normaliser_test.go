package hackernews

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
)

func TestNormaliseLinkStory(t *testing.T) {
	n := New()

	sig, err := n.Normalise(context.Background(), "41000000", map[string]any{
		"title": "Go 1.25 released",
		"url":   "https://go.dev/blog/go1.25",
		"score": float64(450),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SourceHackerNews, sig.Source)
	assert.Equal(t, "Go 1.25 released", sig.Title)
	assert.Equal(t, "Go 1.25 released", sig.Content)
	assert.Equal(t, "https://go.dev/blog/go1.25", sig.URL)
}

func TestNormaliseSelfPost(t *testing.T) {
	n := New()

	sig, err := n.Normalise(context.Background(), "41000001", map[string]any{
		"title": "Ask HN: Favourite Go libraries?",
		"text":  "Looking for recommendations.",
	})
	require.NoError(t, err)

	assert.Contains(t, sig.Content, "Ask HN: Favourite Go libraries?")
	assert.Contains(t, sig.Content, "Looking for recommendations.")
	assert.Equal(t, "https://news.ycombinator.com/item?id=41000001", sig.URL)
}

func TestNormaliseScoreStaysOutOfHash(t *testing.T) {
	n := New()
	ctx := context.Background()

	a, err := n.Normalise(ctx, "1", map[string]any{"title": "T", "score": float64(1)})
	require.NoError(t, err)
	b, err := n.Normalise(ctx, "1", map[string]any{"title": "T", "score": float64(500)})
	require.NoError(t, err)

	assert.Equal(t, a.ContentHash, b.ContentHash)
}

func TestNormaliseMalformedItem(t *testing.T) {
	n := New()
	ctx := context.Background()

	_, err := n.Normalise(ctx, "", map[string]any{"title": "T"})
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)

	_, err = n.Normalise(ctx, "1", nil)
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)

	_, err = n.Normalise(ctx, "1", map[string]any{"url": "https://x"})
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}
