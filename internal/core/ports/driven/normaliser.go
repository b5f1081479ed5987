package driven

import (
	"context"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
)

// Normaliser maps one source kind's raw adapter payload into a canonical
// Signal. Implementations must be total over well-formed adapter output and
// return domain.ErrMalformedPayload (wrapped) on missing required fields.
type Normaliser interface {
	// Source returns the source kind this normaliser handles.
	Source() domain.SourceKind

	// Normalise builds a Signal from a raw payload. The returned signal
	// has Source, ExternalID, Title, Content, URL, Payload and
	// ContentHash populated; identity fields are assigned at insertion.
	Normalise(ctx context.Context, externalID string, payload map[string]any) (*domain.Signal, error)
}

// NormaliserRegistry selects the normaliser for a source kind.
type NormaliserRegistry interface {
	// Normalise dispatches to the registered normaliser.
	// Returns domain.ErrUnsupportedSource for unknown kinds.
	Normalise(ctx context.Context, source domain.SourceKind, externalID string, payload map[string]any) (*domain.Signal, error)
}
