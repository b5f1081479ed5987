package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driving"
	"github.com/devpulse-labs/pulse-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService admits normalised signals into the store: it maps raw
// adapter payloads through the normaliser registry, runs the dedup gate and
// persists admitted versions.
type IngestService struct {
	registry    driven.NormaliserRegistry
	dedupStore  driven.DedupStore
	signalStore driven.SignalStore
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	registry driven.NormaliserRegistry,
	dedupStore driven.DedupStore,
	signalStore driven.SignalStore,
) *IngestService {
	return &IngestService{
		registry:    registry,
		dedupStore:  dedupStore,
		signalStore: signalStore,
	}
}

// Ingest normalises and admits one raw payload.
//
// An unchanged duplicate is skipped entirely; a changed content hash is
// admitted as a new version of the same logical signal. The signal store's
// insert is the atomic arbiter, so a race between two ingestions of the
// same external ID resolves to exactly one admitted outcome.
func (s *IngestService) Ingest(
	ctx context.Context, source domain.SourceKind, externalID string, payload map[string]any,
) (*driving.IngestResult, error) {
	logger.Debug("Ingest: source=%s external_id=%s", source, externalID)

	signal, err := s.registry.Normalise(ctx, source, externalID, payload)
	if err != nil {
		return nil, fmt.Errorf("normalise %s/%s: %w", source, externalID, err)
	}

	decision, err := s.dedupStore.Admit(ctx, signal.Source, signal.ExternalID, signal.ContentHash)
	if err != nil {
		return nil, fmt.Errorf("dedup check %s/%s: %w", source, externalID, err)
	}

	if decision == domain.DuplicateUnchanged {
		logger.Debug("Ingest: %s/%s unchanged, skipping", source, externalID)
		existing, err := s.signalStore.GetByExternalID(ctx, signal.Source, signal.ExternalID)
		if err != nil {
			return nil, fmt.Errorf("load duplicate %s/%s: %w", source, externalID, err)
		}
		return &driving.IngestResult{
			Decision: domain.DuplicateUnchanged,
			SignalID: existing.ID,
			Version:  existing.Version,
		}, nil
	}

	// Admitted or changed: persist. Insert re-checks under the store's
	// uniqueness constraint, so a concurrent winner downgrades us to an
	// unchanged duplicate here rather than a second admission.
	decision, err = s.signalStore.Insert(ctx, signal)
	if err != nil {
		return nil, fmt.Errorf("insert signal %s/%s: %w", source, externalID, err)
	}

	logger.Info("Ingest: %s/%s %s (version %d)", source, externalID, decision, signal.Version)
	return &driving.IngestResult{
		Decision: decision,
		SignalID: signal.ID,
		Version:  signal.Version,
	}, nil
}

// IngestBatch admits a batch with per-item failure isolation: a malformed
// or failing item is recorded and the rest of the batch proceeds.
func (s *IngestService) IngestBatch(ctx context.Context, items []driving.BatchItem) (*driving.BatchResult, error) {
	logger.Section("Batch Ingestion")
	result := &driving.BatchResult{Fetched: len(items)}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		res, err := s.Ingest(ctx, item.Source, item.ExternalID, item.Payload)
		if err != nil {
			logger.Warn("Ingest failed for %s/%s: %v", item.Source, item.ExternalID, err)
			result.Failures = append(result.Failures, driving.BatchItemError{
				ExternalID: item.ExternalID,
				Err:        err,
			})
			continue
		}

		switch res.Decision {
		case domain.Admitted:
			result.Admitted++
			result.SignalIDs = append(result.SignalIDs, res.SignalID)
		case domain.DuplicateChanged:
			result.Updated++
			result.SignalIDs = append(result.SignalIDs, res.SignalID)
		case domain.DuplicateUnchanged:
			result.Skipped++
		}
	}

	logger.Info("Batch complete: %d fetched, %d admitted, %d updated, %d skipped, %d failed",
		result.Fetched, result.Admitted, result.Updated, result.Skipped, len(result.Failures))
	return result, nil
}

// IsRetryable reports whether an ingestion error is a collaborator outage
// the caller may retry with backoff, as opposed to a rejected item.
func IsRetryable(err error) bool {
	return errors.Is(err, domain.ErrDedupUnavailable) ||
		errors.Is(err, domain.ErrPersistenceUnavailable)
}
