package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devpulse-labs/pulse-cli/internal/agents"
	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driving"
	"github.com/devpulse-labs/pulse-cli/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.PipelineService = (*PipelineService)(nil)

// PipelineService drives the researcher, analyst and critic steps over one
// stored signal, recording a trace per step and persisting the verified
// output atomically. The embedding service and vector index are optional;
// without them a completed run simply is not indexed for semantic search.
type PipelineService struct {
	signalStore driven.SignalStore
	intelStore  driven.IntelligenceStore
	traceStore  driven.TraceStore
	embedder    driven.EmbeddingService
	index       driven.VectorIndex
	settings    domain.PipelineSettings

	researcher agents.Step
	analyst    agents.Step
	critic     agents.Step
}

// NewPipelineService creates the pipeline runner. llm, tools, prompts,
// embedder and index may be nil; the steps degrade or skip accordingly.
func NewPipelineService(
	signalStore driven.SignalStore,
	intelStore driven.IntelligenceStore,
	traceStore driven.TraceStore,
	llm driven.LLMService,
	tools driven.ToolGateway,
	prompts driven.PromptStore,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	settings domain.PipelineSettings,
) *PipelineService {
	return &PipelineService{
		signalStore: signalStore,
		intelStore:  intelStore,
		traceStore:  traceStore,
		embedder:    embedder,
		index:       index,
		settings:    settings,
		researcher:  agents.NewResearcher(llm, tools, prompts),
		analyst:     agents.NewAnalyst(llm, prompts),
		critic:      agents.NewCritic(settings.ReviewThreshold),
	}
}

// Run executes the step chain for one signal. The step order is fixed:
// summarizing, scoring, verifying. A verification failure triggers at most
// one re-score before the run fails; nothing is persisted to the
// intelligence store unless every step completed.
func (p *PipelineService) Run(ctx context.Context, signalID string) (*driving.PipelineResult, error) {
	signal, err := p.signalStore.Get(ctx, signalID)
	if err != nil {
		return nil, fmt.Errorf("load signal %s: %w", signalID, err)
	}

	runID := uuid.NewString()
	state := &agents.State{Signal: signal}
	failed := &driving.PipelineResult{RunID: runID, Status: domain.RunFailed}

	logger.Info("Pipeline run %s started for %s/%s", runID, signal.Source, signal.ExternalID)

	for _, step := range []agents.Step{p.researcher, p.analyst, p.critic} {
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		err := p.runStep(ctx, runID, step, state)
		if err == nil {
			continue
		}

		// The critic may send the output back for one re-score. The
		// retry gets fresh scoring and verifying traces under the same
		// run ID.
		if step.StepName() == domain.StepVerifying && errors.Is(err, domain.ErrInconsistentOutput) && !state.Rescored {
			state.Rescored = true
			logger.Info("Pipeline run %s: verification failed, re-scoring once: %v", runID, err)
			if err := p.runStep(ctx, runID, p.analyst, state); err != nil {
				return failed, fmt.Errorf("%w: re-score: %w", domain.ErrStageFailed, err)
			}
			if err := p.runStep(ctx, runID, p.critic, state); err != nil {
				return failed, fmt.Errorf("%w: %s: %w", domain.ErrStageFailed, step.StepName(), err)
			}
			continue
		}

		return failed, fmt.Errorf("%w: %s: %w", domain.ErrStageFailed, step.StepName(), err)
	}

	intel := &domain.ProcessedIntelligence{
		SignalID:     signal.ID,
		AgentName:    p.settings.AgentName,
		AgentVersion: p.settings.AgentVersion,
		Output:       state.Output(),
		CreatedAt:    time.Now().UTC(),
	}
	intelID, err := p.intelStore.Upsert(ctx, intel)
	if err != nil {
		return failed, fmt.Errorf("persist intelligence for %s: %w", signal.ID, err)
	}

	p.indexIntelligence(ctx, intelID, state)

	logger.Info("Pipeline run %s completed: intelligence %s (score %.0f, risk %s)",
		runID, intelID, state.Score, state.Risk)

	return &driving.PipelineResult{
		RunID:          runID,
		Status:         domain.RunCompleted,
		IntelligenceID: intelID,
	}, nil
}

// runStep wraps one step execution in its trace lifecycle: append running,
// execute under the step timeout, transition to a terminal state exactly
// once. The trace itself collects the step's tool calls.
func (p *PipelineService) runStep(ctx context.Context, runID string, step agents.Step, state *agents.State) error {
	trace := &domain.Trace{
		RunID:      runID,
		AgentName:  step.AgentName(),
		StepName:   step.StepName(),
		InputState: snapshotState(state),
		Status:     domain.StepRunning,
		StartedAt:  time.Now().UTC(),
	}
	if err := p.traceStore.Append(ctx, trace); err != nil {
		return fmt.Errorf("append trace: %w", err)
	}

	stepCtx := ctx
	if p.settings.StepTimeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, p.settings.StepTimeout)
		defer cancel()
	}

	execErr := step.Execute(stepCtx, state, trace)

	trace.LatencyMS = time.Since(trace.StartedAt).Milliseconds()
	trace.OutputState = snapshotState(state)
	if execErr != nil {
		trace.Status = domain.StepFailed
		trace.ErrorMessage = execErr.Error()
	} else {
		trace.Status = domain.StepCompleted
	}
	if err := p.traceStore.Update(ctx, trace); err != nil {
		logger.Warn("Pipeline run %s: trace update for %s failed: %v", runID, step.StepName(), err)
	}

	return execErr
}

// indexIntelligence embeds the summary and upserts the vector. Best
// effort: the intelligence row is already persisted, and recommendation
// degrades to metadata-only ranking for unindexed rows.
func (p *PipelineService) indexIntelligence(ctx context.Context, intelID string, state *agents.State) {
	if p.embedder == nil || p.index == nil {
		return
	}

	vec, err := p.embedder.Embed(ctx, state.Summary)
	if err != nil {
		logger.Warn("Pipeline: embedding for %s failed: %v", intelID, err)
		return
	}
	if err := p.index.Upsert(ctx, intelID, vec); err != nil {
		logger.Warn("Pipeline: vector upsert for %s failed: %v", intelID, err)
	}
}

// snapshotState captures the trace-relevant fields of the working state.
func snapshotState(state *agents.State) map[string]any {
	snap := map[string]any{
		"signal_id": state.Signal.ID,
	}
	if state.Enrichment != "" {
		snap["enriched"] = true
	}
	if state.Summary != "" {
		snap["summary"] = state.Summary
		snap["key_points"] = len(state.KeyPoints)
	}
	if state.Risk != "" {
		snap["score"] = state.Score
		snap["risk"] = string(state.Risk)
	}
	if state.Rescored {
		snap["rescored"] = true
	}
	return snap
}
