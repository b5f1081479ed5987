// Package github normalises repository payloads fetched from the GitHub API.
package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles GitHub repository payloads. The external ID is the
// repository's "owner/name" full name.
type Normaliser struct{}

// New creates a new GitHub normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Source returns the source kind this normaliser handles.
func (n *Normaliser) Source() domain.SourceKind {
	return domain.SourceGitHub
}

// Normalise builds a Signal from a raw repository payload. The content
// covers the fields that make a repository worth re-analysing when they
// change: description, topics and README. Volatile counters like stars
// feed the payload for scoring but never the content hash.
func (n *Normaliser) Normalise(_ context.Context, externalID string, payload map[string]any) (*domain.Signal, error) {
	if externalID == "" || !strings.Contains(externalID, "/") {
		return nil, fmt.Errorf("%w: repository external_id must be owner/name, got %q", domain.ErrMalformedPayload, externalID)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: nil payload for %s", domain.ErrMalformedPayload, externalID)
	}

	description, _ := payload["description"].(string)
	readme, _ := payload["readme"].(string)
	url, _ := payload["html_url"].(string)
	if url == "" {
		url = "https://github.com/" + externalID
	}

	var sb strings.Builder
	sb.WriteString(description)
	if topics := stringSlice(payload["topics"]); len(topics) > 0 {
		sb.WriteString("\nTopics: ")
		sb.WriteString(strings.Join(topics, ", "))
	}
	if readme != "" {
		sb.WriteString("\n\n")
		sb.WriteString(readme)
	}

	content := strings.TrimSpace(sb.String())
	if content == "" {
		return nil, fmt.Errorf("%w: repository %s has no description or readme", domain.ErrMalformedPayload, externalID)
	}

	return &domain.Signal{
		Source:      domain.SourceGitHub,
		ExternalID:  externalID,
		Title:       externalID,
		Content:     content,
		URL:         url,
		Payload:     payload,
		ContentHash: domain.ComputeContentHash(domain.SourceGitHub, externalID, content),
	}, nil
}

// stringSlice coerces a JSON array value into []string.
func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
