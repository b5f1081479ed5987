package driven

import (
	"context"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
)

// DedupStore is the content-addressed membership check over
// (source, external_id, content_hash).
type DedupStore interface {
	// Admit reports whether a signal version has been seen before.
	// A storage error surfaces as domain.ErrDedupUnavailable (wrapped) and
	// aborts ingestion of that item only.
	Admit(ctx context.Context, source domain.SourceKind, externalID, contentHash string) (domain.AdmitDecision, error)
}

// SignalStore persists normalised signals.
// Backed by SQLite; the (source, external_id) pair is unique.
type SignalStore interface {
	// Insert writes a signal, or updates the stored version when the
	// content hash changed. The store is the atomic arbiter for races:
	// of two concurrent inserts of the same unseen signal exactly one
	// observes domain.Admitted, the other domain.DuplicateUnchanged.
	Insert(ctx context.Context, signal *domain.Signal) (domain.AdmitDecision, error)

	// Get retrieves a signal by ID.
	Get(ctx context.Context, id string) (*domain.Signal, error)

	// GetByExternalID retrieves a signal by its natural key.
	GetByExternalID(ctx context.Context, source domain.SourceKind, externalID string) (*domain.Signal, error)

	// List returns recent signals, newest first.
	List(ctx context.Context, limit int) ([]domain.Signal, error)
}

// IntelligenceStore persists processed intelligence with
// upsert-by-unique-key semantics on (signal_id, agent_name, agent_version).
type IntelligenceStore interface {
	// Upsert writes intelligence, overwriting an existing row with the
	// same unique key. Returns the row ID. Re-running a pipeline for the
	// same key never creates a duplicate.
	Upsert(ctx context.Context, intel *domain.ProcessedIntelligence) (string, error)

	// Get retrieves intelligence by ID.
	Get(ctx context.Context, id string) (*domain.ProcessedIntelligence, error)

	// Query returns intelligence matching the filter, newest first.
	Query(ctx context.Context, filter domain.IntelligenceFilter) ([]domain.ProcessedIntelligence, error)
}

// TraceStore is the append-only execution ledger for pipeline steps.
type TraceStore interface {
	// Append writes a new trace in the running state.
	Append(ctx context.Context, trace *domain.Trace) error

	// Update transitions a trace to its terminal state, recording output
	// state, tool calls, latency and any error. A trace is updated at
	// most once.
	Update(ctx context.Context, trace *domain.Trace) error

	// ListByRun returns all traces for a run in insertion order.
	ListByRun(ctx context.Context, runID string) ([]domain.Trace, error)
}

// FeedbackStore persists user votes on intelligence.
type FeedbackStore interface {
	// Record stores one vote.
	Record(ctx context.Context, fb domain.Feedback) error

	// Weight returns the aggregate feedback weight for an intelligence
	// row, normalised into [0, 1] with 0.5 meaning no feedback.
	Weight(ctx context.Context, intelligenceID string) (float64, error)
}
