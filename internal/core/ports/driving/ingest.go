package driving

import (
	"context"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
)

// IngestResult reports the outcome of one signal ingestion.
type IngestResult struct {
	// Decision is the dedup outcome.
	Decision domain.AdmitDecision

	// SignalID is the stored signal's ID. Empty when the item was
	// skipped as an unchanged duplicate and the caller did not need it.
	SignalID string

	// Version is the stored signal version after ingestion.
	Version int
}

// BatchItemError pairs a failed batch item with its error.
type BatchItemError struct {
	ExternalID string
	Err        error
}

// BatchResult summarises one batch ingestion. A failed item never blocks
// the rest of the batch.
type BatchResult struct {
	Fetched   int
	Admitted  int
	Updated   int
	Skipped   int
	Failures  []BatchItemError
	SignalIDs []string
}

// IngestService admits normalised signals into the store.
type IngestService interface {
	// Ingest normalises and admits one raw payload.
	Ingest(ctx context.Context, source domain.SourceKind, externalID string, payload map[string]any) (*IngestResult, error)

	// IngestBatch admits a batch with per-item failure isolation.
	IngestBatch(ctx context.Context, items []BatchItem) (*BatchResult, error)
}

// BatchItem is one raw payload in a batch.
type BatchItem struct {
	Source     domain.SourceKind
	ExternalID string
	Payload    map[string]any
}
