package normalisers

import (
	"context"
	"fmt"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches raw payloads to the normaliser registered for their
// source kind.
type Registry struct {
	bySource map[domain.SourceKind]driven.Normaliser
}

// NewRegistry creates a registry over the given normalisers.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	bySource := make(map[domain.SourceKind]driven.Normaliser, len(normalisers))
	for _, n := range normalisers {
		bySource[n.Source()] = n
	}
	return &Registry{bySource: bySource}
}

// Normalise dispatches to the registered normaliser.
func (r *Registry) Normalise(ctx context.Context, source domain.SourceKind, externalID string, payload map[string]any) (*domain.Signal, error) {
	n, ok := r.bySource[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedSource, source)
	}
	return n.Normalise(ctx, externalID, payload)
}
