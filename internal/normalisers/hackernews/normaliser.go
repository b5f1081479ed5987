// Package hackernews normalises story items fetched from the Hacker News API.
package hackernews

import (
	"context"
	"fmt"
	"strings"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Hacker News story payloads. The external ID is the
// numeric item ID as a string.
type Normaliser struct{}

// New creates a new Hacker News normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Source returns the source kind this normaliser handles.
func (n *Normaliser) Source() domain.SourceKind {
	return domain.SourceHackerNews
}

// Normalise builds a Signal from a raw story item. Link stories carry no
// body, so the title stands in as content; self posts use their text.
// Points and comment counts stay out of the hash.
func (n *Normaliser) Normalise(_ context.Context, externalID string, payload map[string]any) (*domain.Signal, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: empty item id", domain.ErrMalformedPayload)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: nil payload for item %s", domain.ErrMalformedPayload, externalID)
	}

	title, _ := payload["title"].(string)
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: item %s has no title", domain.ErrMalformedPayload, externalID)
	}

	url, _ := payload["url"].(string)
	if url == "" {
		url = "https://news.ycombinator.com/item?id=" + externalID
	}

	content := title
	if text, _ := payload["text"].(string); strings.TrimSpace(text) != "" {
		content = title + "\n\n" + strings.TrimSpace(text)
	}

	return &domain.Signal{
		Source:      domain.SourceHackerNews,
		ExternalID:  externalID,
		Title:       title,
		Content:     content,
		URL:         url,
		Payload:     payload,
		ContentHash: domain.ComputeContentHash(domain.SourceHackerNews, externalID, content),
	}, nil
}
