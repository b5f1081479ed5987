package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
	"github.com/devpulse-labs/pulse-cli/internal/logger"
)

// Ensure Analyst implements the interface.
var _ Step = (*Analyst)(nil)

// Rubric weights for the deterministic half of the score. The model
// refines the rubric; it cannot replace it entirely, which keeps repeat
// runs on the same signal stable.
const (
	rubricWeight = 0.4
	modelWeight  = 0.6
)

// riskTerms flag content that warrants a HIGH classification when the
// model gives no usable answer.
var riskTerms = []string{
	"vulnerability", "CVE-", "exploit", "remote code execution",
	"breaking change", "deprecated", "security advisory",
}

// Analyst turns the researcher's summary into a relevance score in
// [0, 100] and a LOW/HIGH risk classification, combining a fixed
// deterministic rubric with model-assisted judgment. Out-of-range model
// scores are clamped, never propagated.
type Analyst struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewAnalyst creates an analyst step. The prompt store is optional.
func NewAnalyst(llm driven.LLMService, prompts driven.PromptStore) *Analyst {
	return &Analyst{llm: llm, prompts: prompts}
}

// AgentName identifies the step's agent in traces.
func (a *Analyst) AgentName() string { return "analyst" }

// StepName is the pipeline stage name.
func (a *Analyst) StepName() string { return domain.StepScoring }

// analystResponse is the JSON shape requested from the model.
type analystResponse struct {
	Score     float64  `json:"score"`
	Risk      string   `json:"risk"`
	Reasoning string   `json:"reasoning"`
	Tags      []string `json:"tags"`
	Evidence  []string `json:"evidence"`
}

// Execute scores the summarised signal.
func (a *Analyst) Execute(ctx context.Context, state *State, _ driven.ToolCallRecorder) error {
	if state.Summary == "" {
		return fmt.Errorf("analyst: no summary to score")
	}

	rubric := a.rubricScore(state)

	if a.llm == nil {
		// Rubric-only scoring keeps the pipeline deterministic when no
		// model is configured.
		state.Score = domain.ClampScore(rubric)
		state.Risk = a.fallbackRisk(state.Signal)
		state.Reasoning = "rubric-only scoring (no model configured)"
		return nil
	}

	var resp analystResponse
	err := a.llm.GenerateJSON(ctx, a.buildPrompt(state), driven.GenerateOptions{MaxTokens: 512, Temperature: 0.1}, &resp)
	if err != nil {
		return fmt.Errorf("score %s/%s: %w", state.Signal.Source, state.Signal.ExternalID, err)
	}

	modelScore := domain.ClampScore(resp.Score)
	state.Score = domain.ClampScore(rubricWeight*rubric + modelWeight*modelScore)
	state.Reasoning = resp.Reasoning
	state.Tags = resp.Tags
	state.Evidence = resp.Evidence

	risk := domain.RiskLevel(strings.ToUpper(strings.TrimSpace(resp.Risk)))
	if !risk.Valid() {
		logger.Warn("Analyst: model returned invalid risk %q, using keyword fallback", resp.Risk)
		risk = a.fallbackRisk(state.Signal)
	}
	state.Risk = risk

	return nil
}

// rubricScore is the deterministic half of the score: source weight plus
// popularity and substance signals from the payload.
func (a *Analyst) rubricScore(state *State) float64 {
	score := 30.0

	switch state.Signal.Source {
	case domain.SourceGitHub:
		score += 10
		if stars, ok := numericField(state.Signal.Payload, "stars"); ok {
			switch {
			case stars >= 1000:
				score += 30
			case stars >= 100:
				score += 20
			case stars >= 10:
				score += 10
			}
		}
	case domain.SourceArxiv:
		score += 15
	case domain.SourceHackerNews:
		if points, ok := numericField(state.Signal.Payload, "score"); ok && points >= 100 {
			score += 20
		}
	}

	if len(state.Signal.Content) > 400 {
		score += 10
	}
	if state.Enrichment != "" {
		score += 5
	}

	return score
}

// fallbackRisk derives the classification from content keywords when the
// model is absent or answers out of taxonomy.
func (a *Analyst) fallbackRisk(signal *domain.Signal) domain.RiskLevel {
	haystack := strings.ToLower(signal.Title + " " + signal.Content)
	for _, term := range riskTerms {
		if strings.Contains(haystack, strings.ToLower(term)) {
			return domain.RiskHigh
		}
	}
	return domain.RiskLow
}

func (a *Analyst) buildPrompt(state *State) string {
	var b strings.Builder
	b.WriteString(promptHeader(a.prompts, driven.PromptScore, defaultScorePrompt))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Title: %s\nSummary: %s\n", state.Signal.Title, state.Summary)
	if len(state.KeyPoints) > 0 {
		fmt.Fprintf(&b, "Key points: %s\n", strings.Join(state.KeyPoints, "; "))
	}
	return b.String()
}

// numericField reads a numeric payload field regardless of its JSON type.
func numericField(payload map[string]any, key string) (float64, bool) {
	switch v := payload[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
