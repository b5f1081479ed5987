package mcp

import (
	"context"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driving"
)

// mockRecommendService is a mock implementation of driving.RecommendService.
type mockRecommendService struct {
	recs []domain.Recommendation
	err  error

	gotQuery domain.RecommendationQuery
}

func (m *mockRecommendService) Recommend(
	_ context.Context,
	query domain.RecommendationQuery,
) ([]domain.Recommendation, error) {
	m.gotQuery = query
	return m.recs, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result *driving.IngestResult
	err    error

	gotSource     domain.SourceKind
	gotExternalID string
}

func (m *mockIngestService) Ingest(
	_ context.Context,
	source domain.SourceKind,
	externalID string,
	_ map[string]any,
) (*driving.IngestResult, error) {
	m.gotSource = source
	m.gotExternalID = externalID
	return m.result, m.err
}

func (m *mockIngestService) IngestBatch(_ context.Context, _ []driving.BatchItem) (*driving.BatchResult, error) {
	return nil, m.err
}

// mockIntelStore is a mock implementation of driven.IntelligenceStore.
type mockIntelStore struct {
	rows []domain.ProcessedIntelligence
	row  *domain.ProcessedIntelligence
	err  error

	gotFilter domain.IntelligenceFilter
}

func (m *mockIntelStore) Upsert(_ context.Context, _ *domain.ProcessedIntelligence) (string, error) {
	return "", m.err
}

func (m *mockIntelStore) Get(_ context.Context, _ string) (*domain.ProcessedIntelligence, error) {
	return m.row, m.err
}

func (m *mockIntelStore) Query(_ context.Context, filter domain.IntelligenceFilter) ([]domain.ProcessedIntelligence, error) {
	m.gotFilter = filter
	return m.rows, m.err
}

// mockSignalStore is a mock implementation of driven.SignalStore.
type mockSignalStore struct {
	signals []domain.Signal
	signal  *domain.Signal
	err     error
}

func (m *mockSignalStore) Insert(_ context.Context, _ *domain.Signal) (domain.AdmitDecision, error) {
	return domain.Admitted, m.err
}

func (m *mockSignalStore) Get(_ context.Context, _ string) (*domain.Signal, error) {
	return m.signal, m.err
}

func (m *mockSignalStore) GetByExternalID(_ context.Context, _ domain.SourceKind, _ string) (*domain.Signal, error) {
	return m.signal, m.err
}

func (m *mockSignalStore) List(_ context.Context, _ int) ([]domain.Signal, error) {
	return m.signals, m.err
}

// mockTraceStore is a mock implementation of driven.TraceStore.
type mockTraceStore struct {
	traces []domain.Trace
	err    error
}

func (m *mockTraceStore) Append(_ context.Context, _ *domain.Trace) error {
	return m.err
}

func (m *mockTraceStore) Update(_ context.Context, _ *domain.Trace) error {
	return m.err
}

func (m *mockTraceStore) ListByRun(_ context.Context, _ string) ([]domain.Trace, error) {
	return m.traces, m.err
}
