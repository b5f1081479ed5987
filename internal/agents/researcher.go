package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
	"github.com/devpulse-labs/pulse-cli/internal/logger"
)

// Ensure Researcher implements the interface.
var _ Step = (*Researcher)(nil)

// Researcher condenses a signal into a textual summary, optionally
// enriching github signals with repository metadata fetched through the
// tool gateway. A tool outage degrades to an unenriched summary; an LLM
// failure is fatal for the run; the pipeline never proceeds to scoring
// with an empty summary.
type Researcher struct {
	llm     driven.LLMService
	tools   driven.ToolGateway
	prompts driven.PromptStore
}

// NewResearcher creates a researcher step. The tool gateway and prompt
// store are optional; without a prompt store the embedded instruction
// header is used.
func NewResearcher(llm driven.LLMService, tools driven.ToolGateway, prompts driven.PromptStore) *Researcher {
	return &Researcher{llm: llm, tools: tools, prompts: prompts}
}

// AgentName identifies the step's agent in traces.
func (r *Researcher) AgentName() string { return "researcher" }

// StepName is the pipeline stage name.
func (r *Researcher) StepName() string { return domain.StepSummarizing }

// researchResponse is the JSON shape requested from the model.
type researchResponse struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
}

// Execute summarises the signal.
func (r *Researcher) Execute(ctx context.Context, state *State, rec driven.ToolCallRecorder) error {
	if r.llm == nil {
		return domain.ErrLLMUnavailable
	}

	state.Enrichment = r.enrich(ctx, state.Signal, rec)

	prompt := r.buildPrompt(state.Signal, state.Enrichment)
	var resp researchResponse
	err := r.llm.GenerateJSON(ctx, prompt, driven.GenerateOptions{MaxTokens: 512, Temperature: 0.2}, &resp)
	if err != nil {
		return fmt.Errorf("summarise %s/%s: %w", state.Signal.Source, state.Signal.ExternalID, err)
	}
	if strings.TrimSpace(resp.Summary) == "" {
		return fmt.Errorf("summarise %s/%s: model returned empty summary", state.Signal.Source, state.Signal.ExternalID)
	}

	state.Summary = strings.TrimSpace(resp.Summary)
	state.KeyPoints = resp.KeyPoints
	return nil
}

// enrich fetches repository metadata for github signals. Failures are
// absorbed: the tool calls are still recorded in the trace, and the
// summary proceeds without the extra context.
func (r *Researcher) enrich(ctx context.Context, signal *domain.Signal, rec driven.ToolCallRecorder) string {
	if r.tools == nil || signal.Source != domain.SourceGitHub {
		return ""
	}

	owner, repo, ok := splitRepo(signal.ExternalID)
	if !ok {
		return ""
	}

	result, err := r.tools.Invoke(ctx, driven.ToolRequest{
		Tool: driven.ToolRepoMetadata,
		Args: map[string]any{"owner": owner, "repo": repo},
	}, rec)
	if err != nil {
		if errors.Is(err, domain.ErrToolUnavailable) {
			logger.Warn("Researcher: enrichment unavailable for %s: %v", signal.ExternalID, err)
			return ""
		}
		logger.Warn("Researcher: enrichment failed for %s: %v", signal.ExternalID, err)
		return ""
	}

	return result.Text
}

func (r *Researcher) buildPrompt(signal *domain.Signal, enrichment string) string {
	var b strings.Builder
	b.WriteString(promptHeader(r.prompts, driven.PromptResearch, defaultResearchPrompt))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Source: %s\nTitle: %s\nContent: %s\n", signal.Source, signal.Title, signal.Content)
	if enrichment != "" {
		fmt.Fprintf(&b, "\nRepository context:\n%s\n", enrichment)
	}
	return b.String()
}

// splitRepo parses an "owner/repo" external ID.
func splitRepo(externalID string) (owner, repo string, ok bool) {
	parts := strings.Split(externalID, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
