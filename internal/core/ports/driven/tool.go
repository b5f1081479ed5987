package driven

import (
	"context"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
)

// Logical tool capabilities invoked by agent steps. Each capability is
// served by every configured transport so fallback selection stays
// deterministic.
const (
	ToolRepoMetadata = "repo.metadata"
	ToolRepoFile     = "repo.file"
	ToolCodeSearch   = "code.search"
)

// ToolRequest names one logical external capability call.
type ToolRequest struct {
	// Tool is the capability name (e.g. ToolRepoMetadata).
	Tool string

	// Args are the call arguments.
	Args map[string]any
}

// ToolResult is the uniform result of a capability call, independent of
// which transport served it.
type ToolResult struct {
	// Content is the structured payload returned by the tool.
	Content map[string]any

	// Text is the flattened textual form used for prompt enrichment.
	Text string

	// Transport names the transport that produced the result.
	Transport string
}

// ToolTransport is one way of reaching an external capability. The gateway
// tries transports in order; implementations must map their own failure
// modes onto the shared error taxonomy.
type ToolTransport interface {
	// Name identifies the transport in traces ("mcp", "rest").
	Name() string

	// Invoke executes one capability call.
	Invoke(ctx context.Context, req ToolRequest) (*ToolResult, error)

	// Close releases resources.
	Close() error
}

// ToolGateway is the resilient invocation surface agents use. The gateway
// absorbs single-transport failures; only a full outage surfaces as
// domain.ErrToolUnavailable.
type ToolGateway interface {
	// Invoke executes a capability call, falling back across transports.
	// Every attempt is reported to the recorder in call order.
	Invoke(ctx context.Context, req ToolRequest, rec ToolCallRecorder) (*ToolResult, error)
}

// ToolCallRecorder receives one record per transport attempt. The pipeline
// passes the active step's trace as the recorder.
type ToolCallRecorder interface {
	// RecordToolCall appends one attempt to the step's ledger.
	RecordToolCall(call domain.ToolCall)
}
