package cli

import (
	"context"
	"time"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driving"
)

// setupTestServices wires mock services into the package-level slots and
// returns a cleanup that restores the previous wiring.
func setupTestServices() func() {
	oldIngest := ingestService
	oldPipeline := pipelineService
	oldRecommend := recommendService
	oldSettings := settingsService
	oldSignals := signalStore
	oldIntel := intelStore
	oldTraces := traceStore
	oldFeedback := feedbackStore

	ingestService = &mockIngestService{
		batch: &driving.BatchResult{Fetched: 1, Admitted: 1},
	}
	pipelineService = &mockPipelineService{
		result: &driving.PipelineResult{
			RunID:          "run-1",
			Status:         domain.RunCompleted,
			IntelligenceID: "intel-1",
		},
	}
	recommendService = &mockRecommendService{
		recs: []domain.Recommendation{
			{
				IntelligenceID: "intel-1",
				SignalID:       "sig-1",
				Title:          "Go 1.25 released",
				Score:          0.91,
				Reason:         "strong semantic match",
			},
		},
	}
	settingsService = &mockSettingsService{}
	signalStore = &mockSignalStore{
		signals: []domain.Signal{
			{
				ID:         "sig-1",
				Source:     domain.SourceGitHub,
				ExternalID: "golang/go",
				Title:      "golang/go",
				Version:    1,
				IngestedAt: time.Now(),
			},
		},
	}
	intelStore = &mockIntelStore{
		rows: []domain.ProcessedIntelligence{
			{
				ID:       "intel-1",
				SignalID: "sig-1",
				Output: domain.IntelligenceOutput{
					Summary: "A fast release cycle",
					Score:   82,
					Risk:    domain.RiskLow,
				},
			},
		},
		row: &domain.ProcessedIntelligence{
			ID:        "intel-1",
			SignalID:  "sig-1",
			AgentName: "relevance",
			Output: domain.IntelligenceOutput{
				Summary: "A fast release cycle",
				Score:   82,
				Risk:    domain.RiskLow,
			},
		},
	}
	traceStore = &mockTraceStore{}
	feedbackStore = &mockFeedbackStore{}

	return func() {
		ingestService = oldIngest
		pipelineService = oldPipeline
		recommendService = oldRecommend
		settingsService = oldSettings
		signalStore = oldSignals
		intelStore = oldIntel
		traceStore = oldTraces
		feedbackStore = oldFeedback
	}
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result *driving.IngestResult
	batch  *driving.BatchResult
	err    error
}

func (m *mockIngestService) Ingest(
	_ context.Context, _ domain.SourceKind, _ string, _ map[string]any,
) (*driving.IngestResult, error) {
	return m.result, m.err
}

func (m *mockIngestService) IngestBatch(_ context.Context, _ []driving.BatchItem) (*driving.BatchResult, error) {
	return m.batch, m.err
}

// mockPipelineService is a mock implementation of driving.PipelineService.
type mockPipelineService struct {
	result *driving.PipelineResult
	err    error

	gotSignalID string
}

func (m *mockPipelineService) Run(_ context.Context, signalID string) (*driving.PipelineResult, error) {
	m.gotSignalID = signalID
	return m.result, m.err
}

// mockRecommendService is a mock implementation of driving.RecommendService.
type mockRecommendService struct {
	recs []domain.Recommendation
	err  error

	gotQuery domain.RecommendationQuery
}

func (m *mockRecommendService) Recommend(
	_ context.Context, query domain.RecommendationQuery,
) ([]domain.Recommendation, error) {
	m.gotQuery = query
	return m.recs, m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings *domain.AppSettings
	err      error

	gotWeights domain.BlendWeights
	gotToken   string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.settings != nil {
		return m.settings, m.err
	}
	defaults := domain.DefaultAppSettings()
	return &defaults, m.err
}

func (m *mockSettingsService) Save(_ *domain.AppSettings) error {
	return m.err
}

func (m *mockSettingsService) SetEmbeddingProvider(_ domain.AIProvider, _, _ string) error {
	return m.err
}

func (m *mockSettingsService) SetLLMProvider(_ domain.AIProvider, _, _ string) error {
	return m.err
}

func (m *mockSettingsService) SetGitHubToken(token string) error {
	m.gotToken = token
	return m.err
}

func (m *mockSettingsService) SetBlendWeights(weights domain.BlendWeights) error {
	m.gotWeights = weights
	return m.err
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
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

// mockIntelStore is a mock implementation of driven.IntelligenceStore.
type mockIntelStore struct {
	rows []domain.ProcessedIntelligence
	row  *domain.ProcessedIntelligence
	err  error
}

func (m *mockIntelStore) Upsert(_ context.Context, _ *domain.ProcessedIntelligence) (string, error) {
	return "", m.err
}

func (m *mockIntelStore) Get(_ context.Context, _ string) (*domain.ProcessedIntelligence, error) {
	return m.row, m.err
}

func (m *mockIntelStore) Query(_ context.Context, _ domain.IntelligenceFilter) ([]domain.ProcessedIntelligence, error) {
	return m.rows, m.err
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

// mockFeedbackStore is a mock implementation of driven.FeedbackStore.
type mockFeedbackStore struct {
	err error

	gotFeedback domain.Feedback
}

func (m *mockFeedbackStore) Record(_ context.Context, fb domain.Feedback) error {
	m.gotFeedback = fb
	return m.err
}

func (m *mockFeedbackStore) Weight(_ context.Context, _ string) (float64, error) {
	return 0.5, m.err
}
