package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
	"github.com/devpulse-labs/pulse-cli/internal/logger"
)

// Ensure ToolGateway implements the interface.
var _ driven.ToolGateway = (*ToolGateway)(nil)

// DefaultAttemptTimeout bounds one transport attempt when the settings
// give no value.
const DefaultAttemptTimeout = 15 * time.Second

// ToolGateway invokes a named external capability over an explicit ordered
// list of transports: the structured MCP transport first, the plain REST
// transport as fallback. Fallback is transparent to the caller (same
// result type, same error taxonomy) and every attempt is recorded in the
// active step's trace so the ledger reflects what was actually tried.
//
// The gateway performs no caching; repeated failures are repeated attempts.
type ToolGateway struct {
	transports     []driven.ToolTransport
	attemptTimeout time.Duration
}

// NewToolGateway creates a gateway over the given transports, tried in
// order. Nil transports are skipped so callers can pass an unconfigured
// primary without special-casing.
func NewToolGateway(attemptTimeout time.Duration, transports ...driven.ToolTransport) *ToolGateway {
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}

	active := make([]driven.ToolTransport, 0, len(transports))
	for _, t := range transports {
		if t != nil {
			active = append(active, t)
		}
	}

	return &ToolGateway{
		transports:     active,
		attemptTimeout: attemptTimeout,
	}
}

// Invoke executes one logical capability call. Each transport attempt is
// bounded by the gateway's timeout and reported to the recorder in call
// order, failures included. If every transport fails the last errors are
// folded into a single domain.ErrToolUnavailable carrying what was tried.
func (g *ToolGateway) Invoke(
	ctx context.Context, req driven.ToolRequest, rec driven.ToolCallRecorder,
) (*driven.ToolResult, error) {
	if len(g.transports) == 0 {
		return nil, fmt.Errorf("%w: no transports configured for %s", domain.ErrToolUnavailable, req.Tool)
	}

	var attemptErrs []error

	for _, transport := range g.transports {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		attemptCtx, cancel := context.WithTimeout(ctx, g.attemptTimeout)
		result, err := transport.Invoke(attemptCtx, req)
		cancel()
		latency := time.Since(start).Milliseconds()

		if err != nil {
			logger.Warn("Tool %s via %s failed: %v", req.Tool, transport.Name(), err)
			attemptErrs = append(attemptErrs, fmt.Errorf("%s: %w", transport.Name(), err))
			if rec != nil {
				rec.RecordToolCall(domain.ToolCall{
					Tool:          req.Tool,
					Transport:     transport.Name(),
					Args:          req.Args,
					ResultSummary: err.Error(),
					OK:            false,
					LatencyMS:     latency,
				})
			}
			continue
		}

		logger.Debug("Tool %s served by %s in %dms", req.Tool, transport.Name(), latency)
		result.Transport = transport.Name()
		if rec != nil {
			rec.RecordToolCall(domain.ToolCall{
				Tool:          req.Tool,
				Transport:     transport.Name(),
				Args:          req.Args,
				ResultSummary: summarise(result.Text),
				OK:            true,
				LatencyMS:     latency,
			})
		}
		return result, nil
	}

	return nil, fmt.Errorf("%w: %s: %w", domain.ErrToolUnavailable, req.Tool, errors.Join(attemptErrs...))
}

// summarise truncates tool output for the trace ledger.
func summarise(text string) string {
	const maxLen = 200
	if len(text) > maxLen {
		return text[:maxLen] + "..."
	}
	return text
}
