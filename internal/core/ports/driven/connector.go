package driven

import (
	"context"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
)

// RawSignal is a connector's output before normalisation: the natural key
// plus the source-shaped payload.
type RawSignal struct {
	// Source is the connector's source kind.
	Source domain.SourceKind

	// ExternalID is the source-scoped unique key.
	ExternalID string

	// Payload is the raw document as fetched.
	Payload map[string]any
}

// Connector discovers fresh raw signals from one external source.
// Connectors only fetch; admission and processing are the core's concern.
type Connector interface {
	// Source returns the source kind this connector serves.
	Source() domain.SourceKind

	// Fetch returns a batch of current raw signals.
	Fetch(ctx context.Context) ([]RawSignal, error)

	// Close releases resources.
	Close() error
}
