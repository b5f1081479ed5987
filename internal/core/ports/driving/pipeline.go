package driving

import (
	"context"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
)

// PipelineResult is the outcome of one pipeline run.
type PipelineResult struct {
	// RunID correlates the run's traces.
	RunID string

	// Status is the terminal run outcome.
	Status domain.RunStatus

	// IntelligenceID is set when the run completed and persisted output.
	IntelligenceID string
}

// PipelineService executes the researcher-analyst-critic chain for one
// stored signal.
type PipelineService interface {
	// Run processes a signal end to end. Stage failures are reported via
	// the result and error; no partial intelligence is ever written.
	Run(ctx context.Context, signalID string) (*PipelineResult, error)
}
