package domain

import "time"

// StepStatus is the lifecycle state of one pipeline step execution.
type StepStatus string

// Step lifecycle states. A trace is created running, transitioned to a
// terminal state exactly once, and never mutated afterwards.
const (
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s StepStatus) Terminal() bool {
	return s == StepCompleted || s == StepFailed
}

// Pipeline step names, in execution order.
const (
	StepSummarizing = "summarizing"
	StepScoring     = "scoring"
	StepVerifying   = "verifying"
)

// ToolCall records one transport attempt made through the tool gateway.
// Failed attempts are recorded alongside successes so the ledger reflects
// what was actually tried, not just the outcome.
type ToolCall struct {
	// Tool is the logical capability name (e.g. "repo.metadata").
	Tool string `json:"tool"`

	// Transport is the transport that served (or failed) the attempt.
	Transport string `json:"transport"`

	// Args are the call arguments.
	Args map[string]any `json:"args,omitempty"`

	// ResultSummary is a short description of the result or error.
	ResultSummary string `json:"result_summary"`

	// OK reports whether the attempt succeeded.
	OK bool `json:"ok"`

	// LatencyMS is the attempt duration in milliseconds.
	LatencyMS int64 `json:"latency_ms"`
}

// Trace is the append-only execution record of one pipeline step,
// correlated with its sibling steps by RunID.
type Trace struct {
	// RunID groups all steps of one pipeline invocation.
	RunID string

	// AgentName is the step's agent (researcher, analyst, critic).
	AgentName string

	// StepName is the pipeline stage (summarizing, scoring, verifying).
	StepName string

	// InputState is a snapshot of the state the step consumed.
	InputState map[string]any

	// OutputState is a snapshot of the state the step produced.
	OutputState map[string]any

	// ToolCalls lists gateway attempts made during the step, in call order.
	ToolCalls []ToolCall

	// Status is the lifecycle state.
	Status StepStatus

	// ErrorMessage is set when Status is failed.
	ErrorMessage string

	// LatencyMS is the step duration in milliseconds.
	LatencyMS int64

	// StartedAt is when the step began.
	StartedAt time.Time
}

// RecordToolCall appends one gateway attempt to the trace's ledger. The
// pipeline passes the active step's trace as the recorder.
func (t *Trace) RecordToolCall(call ToolCall) {
	t.ToolCalls = append(t.ToolCalls, call)
}

// RunStatus is the terminal outcome of a whole pipeline run.
type RunStatus string

// Run outcomes.
const (
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)
