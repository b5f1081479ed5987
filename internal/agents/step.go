package agents

import (
	"context"
	"strings"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
)

// State is the working state threaded through one pipeline run. Each step
// reads its predecessor's fields and fills its own; the runner snapshots
// the state into traces around every step.
type State struct {
	// Signal is the signal under analysis.
	Signal *domain.Signal

	// Enrichment is supplementary context fetched via the tool gateway.
	// Empty when the tools were unavailable; enrichment is optional.
	Enrichment string

	// Summary and KeyPoints are produced by the researcher.
	Summary   string
	KeyPoints []string

	// Score, Risk, Reasoning, Tags and Evidence are produced by the
	// analyst and verified by the critic.
	Score     float64
	Risk      domain.RiskLevel
	Reasoning string
	Tags      []string
	Evidence  []string

	// Rescored is set once the critic has requested its single allowed
	// re-scoring pass.
	Rescored bool
}

// Output assembles the final structured result persisted as intelligence.
func (s *State) Output() domain.IntelligenceOutput {
	evidence := s.Evidence
	if len(evidence) == 0 && s.Reasoning != "" {
		evidence = []string{s.Reasoning}
	}
	return domain.IntelligenceOutput{
		Summary:   s.Summary,
		KeyPoints: s.KeyPoints,
		Score:     s.Score,
		Risk:      s.Risk,
		Tags:      s.Tags,
		Evidence:  evidence,
	}
}

// Step is one stage of the pipeline. Steps are stateless; all run state
// lives in State.
type Step interface {
	// AgentName identifies the step's agent in traces.
	AgentName() string

	// StepName is the pipeline stage name (domain.StepSummarizing etc).
	StepName() string

	// Execute runs the step. Tool gateway attempts made during the step
	// are reported to rec. A returned error fails the step.
	Execute(ctx context.Context, state *State, rec driven.ToolCallRecorder) error
}

// Embedded instruction headers used when no prompt store is configured
// or a prompt fails to load. The file-based prompt store carries the
// same text as its on-disk defaults.
const (
	defaultResearchPrompt = `You are a technical research assistant for a developer intelligence feed.
Summarise the following signal concisely and extract key takeaways.
Return raw JSON only, no markdown. Format: {"summary": "...", "key_points": ["...", "..."]}`

	defaultScorePrompt = `Rate this developer signal's relevance for a senior platform engineer, 0-100.
Classify risk as LOW or HIGH (HIGH only for security issues or breaking changes, and requires evidence).
Return raw JSON only. Format: {"score": 85, "risk": "LOW", "reasoning": "...", "tags": ["..."], "evidence": ["..."]}`
)

// promptHeader loads a named prompt, falling back to the embedded
// default when no store is configured or the load fails.
func promptHeader(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	header, err := store.Load(name)
	if err != nil || strings.TrimSpace(header) == "" {
		return fallback
	}
	return header
}
