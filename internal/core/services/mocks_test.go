package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
)

// memSignalStore is an in-memory SignalStore with the real conflict
// semantics on (source, external_id).
type memSignalStore struct {
	mu     sync.Mutex
	nextID int
	byID   map[string]*domain.Signal
	byKey  map[string]*domain.Signal
	getErr error
	insErr error
}

func newMemSignalStore() *memSignalStore {
	return &memSignalStore{
		byID:  make(map[string]*domain.Signal),
		byKey: make(map[string]*domain.Signal),
	}
}

func signalKey(source domain.SourceKind, externalID string) string {
	return string(source) + "/" + externalID
}

func (m *memSignalStore) Insert(_ context.Context, signal *domain.Signal) (domain.AdmitDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insErr != nil {
		return 0, m.insErr
	}

	key := signalKey(signal.Source, signal.ExternalID)
	if existing, ok := m.byKey[key]; ok {
		if existing.ContentHash == signal.ContentHash {
			*signal = *existing
			return domain.DuplicateUnchanged, nil
		}
		existing.Content = signal.Content
		existing.ContentHash = signal.ContentHash
		existing.Payload = signal.Payload
		existing.Version++
		*signal = *existing
		return domain.DuplicateChanged, nil
	}

	m.nextID++
	signal.ID = fmt.Sprintf("sig-%d", m.nextID)
	signal.Version = 1
	clone := *signal
	m.byID[signal.ID] = &clone
	m.byKey[key] = &clone
	return domain.Admitted, nil
}

func (m *memSignalStore) Get(_ context.Context, id string) (*domain.Signal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	sig, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("signal %s: %w", id, domain.ErrNotFound)
	}
	return sig, nil
}

func (m *memSignalStore) GetByExternalID(_ context.Context, source domain.SourceKind, externalID string) (*domain.Signal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sig, ok := m.byKey[signalKey(source, externalID)]
	if !ok {
		return nil, fmt.Errorf("signal %s/%s: %w", source, externalID, domain.ErrNotFound)
	}
	return sig, nil
}

func (m *memSignalStore) List(_ context.Context, limit int) ([]domain.Signal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Signal, 0, len(m.byID))
	for _, sig := range m.byID {
		out = append(out, *sig)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// memDedupStore answers Admit from the signal store's state.
type memDedupStore struct {
	signals *memSignalStore
	err     error
}

func (m *memDedupStore) Admit(_ context.Context, source domain.SourceKind, externalID, contentHash string) (domain.AdmitDecision, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.signals.mu.Lock()
	defer m.signals.mu.Unlock()
	existing, ok := m.signals.byKey[signalKey(source, externalID)]
	if !ok {
		return domain.Admitted, nil
	}
	if existing.ContentHash == contentHash {
		return domain.DuplicateUnchanged, nil
	}
	return domain.DuplicateChanged, nil
}

// memIntelStore upserts on (signal_id, agent_name, agent_version).
type memIntelStore struct {
	mu     sync.Mutex
	nextID int
	rows   map[string]*domain.ProcessedIntelligence
	err    error
}

func newMemIntelStore() *memIntelStore {
	return &memIntelStore{rows: make(map[string]*domain.ProcessedIntelligence)}
}

func (m *memIntelStore) Upsert(_ context.Context, intel *domain.ProcessedIntelligence) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	key := intel.SignalID + "/" + intel.AgentName + "/" + intel.AgentVersion
	for id, row := range m.rows {
		if row.SignalID+"/"+row.AgentName+"/"+row.AgentVersion == key {
			intel.ID = id
			m.rows[id] = intel
			return id, nil
		}
	}
	m.nextID++
	intel.ID = fmt.Sprintf("intel-%d", m.nextID)
	m.rows[intel.ID] = intel
	return intel.ID, nil
}

func (m *memIntelStore) Get(_ context.Context, id string) (*domain.ProcessedIntelligence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, fmt.Errorf("intelligence %s: %w", id, domain.ErrNotFound)
	}
	return row, nil
}

func (m *memIntelStore) Query(_ context.Context, filter domain.IntelligenceFilter) ([]domain.ProcessedIntelligence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ProcessedIntelligence, 0, len(m.rows))
	for _, row := range m.rows {
		if filter.SignalID != "" && row.SignalID != filter.SignalID {
			continue
		}
		if filter.AgentName != "" && row.AgentName != filter.AgentName {
			continue
		}
		if filter.MinScore > 0 && row.Output.Score < filter.MinScore {
			continue
		}
		out = append(out, *row)
	}
	// Newest first, matching the port contract.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// memTraceStore keeps traces in insertion order.
type memTraceStore struct {
	mu     sync.Mutex
	traces []*domain.Trace
	appErr error
}

func (m *memTraceStore) Append(_ context.Context, trace *domain.Trace) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appErr != nil {
		return m.appErr
	}
	clone := *trace
	m.traces = append(m.traces, &clone)
	return nil
}

func (m *memTraceStore) Update(_ context.Context, trace *domain.Trace) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.traces) - 1; i >= 0; i-- {
		t := m.traces[i]
		if t.RunID == trace.RunID && t.StepName == trace.StepName && !t.Status.Terminal() {
			clone := *trace
			m.traces[i] = &clone
			return nil
		}
	}
	return fmt.Errorf("trace %s/%s: %w", trace.RunID, trace.StepName, domain.ErrNotFound)
}

func (m *memTraceStore) ListByRun(_ context.Context, runID string) ([]domain.Trace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Trace
	for _, t := range m.traces {
		if t.RunID == runID {
			out = append(out, *t)
		}
	}
	return out, nil
}

// memFeedbackStore returns configured weights, neutral otherwise.
type memFeedbackStore struct {
	weights map[string]float64
	votes   []domain.Feedback
}

func (m *memFeedbackStore) Record(_ context.Context, fb domain.Feedback) error {
	m.votes = append(m.votes, fb)
	return nil
}

func (m *memFeedbackStore) Weight(_ context.Context, intelligenceID string) (float64, error) {
	if w, ok := m.weights[intelligenceID]; ok {
		return w, nil
	}
	return 0.5, nil
}

// mockRegistry builds signals straight from the payload's title/content.
type mockRegistry struct {
	err error
}

func (m *mockRegistry) Normalise(_ context.Context, source domain.SourceKind, externalID string, payload map[string]any) (*domain.Signal, error) {
	if m.err != nil {
		return nil, m.err
	}
	title, _ := payload["title"].(string)
	content, _ := payload["content"].(string)
	return &domain.Signal{
		Source:      source,
		ExternalID:  externalID,
		Title:       title,
		Content:     content,
		Payload:     payload,
		ContentHash: domain.ComputeContentHash(source, externalID, content),
	}, nil
}

// scriptedLLM pops one canned JSON response per GenerateJSON call.
type scriptedLLM struct {
	responses []string
	err       error
	calls     int
}

func (m *scriptedLLM) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	return "", m.err
}

func (m *scriptedLLM) GenerateJSON(_ context.Context, _ string, _ driven.GenerateOptions, out any) error {
	if m.err != nil {
		return m.err
	}
	if m.calls >= len(m.responses) {
		return fmt.Errorf("scriptedLLM: no response for call %d", m.calls+1)
	}
	resp := m.responses[m.calls]
	m.calls++
	return json.Unmarshal([]byte(resp), out)
}

func (m *scriptedLLM) ModelName() string { return "scripted" }
func (m *scriptedLLM) Ping(_ context.Context) error { return nil }
func (m *scriptedLLM) Close() error { return nil }

// mockEmbedder returns a fixed vector.
type mockEmbedder struct {
	vec []float32
	err error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return m.vec, m.err
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.vec
	}
	return out, m.err
}

func (m *mockEmbedder) Dimensions() int { return len(m.vec) }
func (m *mockEmbedder) ModelName() string { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error { return nil }

// mockIndex records upserts and serves canned search hits.
type mockIndex struct {
	hits      []driven.VectorHit
	searchErr error
	upserts   map[string][]float32
}

func newMockIndex() *mockIndex {
	return &mockIndex{upserts: make(map[string][]float32)}
}

func (m *mockIndex) Upsert(_ context.Context, intelligenceID string, embedding []float32) error {
	m.upserts[intelligenceID] = embedding
	return nil
}

func (m *mockIndex) Delete(_ context.Context, intelligenceID string) error {
	delete(m.upserts, intelligenceID)
	return nil
}

func (m *mockIndex) Search(_ context.Context, _ []float32, _ int) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.hits, nil
}

func (m *mockIndex) Close() error { return nil }

// mockTransport serves one canned result or error.
type mockTransport struct {
	name   string
	result *driven.ToolResult
	err    error
	calls  int
}

func (m *mockTransport) Name() string { return m.name }

func (m *mockTransport) Invoke(_ context.Context, _ driven.ToolRequest) (*driven.ToolResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	res := *m.result
	return &res, nil
}

func (m *mockTransport) Close() error { return nil }

// callSink collects recorded tool calls.
type callSink struct {
	calls []domain.ToolCall
}

func (s *callSink) RecordToolCall(call domain.ToolCall) {
	s.calls = append(s.calls, call)
}

// memConfigStore is an in-memory ConfigStore.
type memConfigStore struct {
	values map[string]any
	setErr error
}

func newMemConfigStore() *memConfigStore {
	return &memConfigStore{values: make(map[string]any)}
}

func (m *memConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *memConfigStore) GetString(key string) string {
	if v, ok := m.values[key].(string); ok {
		return v
	}
	return ""
}

func (m *memConfigStore) GetInt(key string) int {
	switch v := m.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func (m *memConfigStore) GetFloat(key string) float64 {
	switch v := m.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func (m *memConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *memConfigStore) Save() error { return nil }
func (m *memConfigStore) Load() error { return nil }
func (m *memConfigStore) Path() string { return "/tmp/pulse-test.toml" }
