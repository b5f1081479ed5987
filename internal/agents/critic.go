package agents

import (
	"context"
	"fmt"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
)

// Ensure Critic implements the interface.
var _ Step = (*Critic)(nil)

// Critic verifies the assembled output before it is allowed to persist.
// Its checks are pure: no model calls, no tool calls, so a verification
// verdict is reproducible from the state alone.
type Critic struct {
	reviewThreshold float64
}

// NewCritic creates a critic step. Scores above reviewThreshold must be
// backed by evidence.
func NewCritic(reviewThreshold float64) *Critic {
	return &Critic{reviewThreshold: reviewThreshold}
}

// AgentName identifies the step's agent in traces.
func (c *Critic) AgentName() string { return "critic" }

// StepName is the pipeline stage name.
func (c *Critic) StepName() string { return domain.StepVerifying }

// Execute checks the state for internal consistency. A failed check
// returns domain.ErrInconsistentOutput wrapped with the reason.
func (c *Critic) Execute(_ context.Context, state *State, _ driven.ToolCallRecorder) error {
	if state.Summary == "" {
		return fmt.Errorf("%w: empty summary", domain.ErrInconsistentOutput)
	}
	if state.Score < 0 || state.Score > 100 {
		return fmt.Errorf("%w: score %.1f outside [0, 100]", domain.ErrInconsistentOutput, state.Score)
	}
	if !state.Risk.Valid() {
		return fmt.Errorf("%w: risk %q not in taxonomy", domain.ErrInconsistentOutput, state.Risk)
	}
	if state.Risk == domain.RiskHigh && len(state.Evidence) == 0 {
		return fmt.Errorf("%w: HIGH risk without supporting evidence", domain.ErrInconsistentOutput)
	}
	if state.Score > c.reviewThreshold && len(state.Evidence) == 0 {
		return fmt.Errorf("%w: score %.1f above review threshold %.1f without evidence", domain.ErrInconsistentOutput, state.Score, c.reviewThreshold)
	}
	return nil
}
