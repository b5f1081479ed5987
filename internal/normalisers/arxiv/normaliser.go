// Package arxiv normalises paper entries fetched from the arXiv Atom API.
package arxiv

import (
	"context"
	"fmt"
	"strings"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles arXiv paper payloads. The external ID is the bare
// arXiv identifier (e.g. "2401.00001").
type Normaliser struct{}

// New creates a new arXiv normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Source returns the source kind this normaliser handles.
func (n *Normaliser) Source() domain.SourceKind {
	return domain.SourceArxiv
}

// Normalise builds a Signal from a raw paper entry. The abstract is the
// content; a revised abstract is what marks a paper as changed.
func (n *Normaliser) Normalise(_ context.Context, externalID string, payload map[string]any) (*domain.Signal, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: empty arxiv identifier", domain.ErrMalformedPayload)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: nil payload for %s", domain.ErrMalformedPayload, externalID)
	}

	title, _ := payload["title"].(string)
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return nil, fmt.Errorf("%w: paper %s has no title", domain.ErrMalformedPayload, externalID)
	}

	abstract, _ := payload["summary"].(string)
	abstract = strings.TrimSpace(abstract)
	if abstract == "" {
		return nil, fmt.Errorf("%w: paper %s has no abstract", domain.ErrMalformedPayload, externalID)
	}

	url, _ := payload["link"].(string)
	if url == "" {
		url = "https://arxiv.org/abs/" + externalID
	}

	content := abstract
	if authors := authorLine(payload["authors"]); authors != "" {
		content = abstract + "\n\nAuthors: " + authors
	}

	return &domain.Signal{
		Source:      domain.SourceArxiv,
		ExternalID:  externalID,
		Title:       title,
		Content:     content,
		URL:         url,
		Payload:     payload,
		ContentHash: domain.ComputeContentHash(domain.SourceArxiv, externalID, content),
	}, nil
}

// authorLine flattens the authors payload field.
func authorLine(v any) string {
	switch authors := v.(type) {
	case string:
		return authors
	case []any:
		names := make([]string, 0, len(authors))
		for _, a := range authors {
			if s, ok := a.(string); ok {
				names = append(names, s)
			}
		}
		return strings.Join(names, ", ")
	default:
		return ""
	}
}
