package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Pulse resources.
	uriScheme = "pulse://"

	// signalListLimit bounds the signals resource.
	signalListLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for recent signals.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "signals",
		Name:        "signals",
		Description: "Recently ingested signals, newest first",
		MIMEType:    "application/json",
	}, s.handleSignalsResource)

	// Template for a stored analysis.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "intelligence/{intelligenceId}",
		Name:        "intelligence",
		Description: "One stored signal analysis",
		MIMEType:    "application/json",
	}, s.handleIntelligenceResource)

	// Template for the execution trace of a pipeline run.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "runs/{runId}/traces",
		Name:        "run-traces",
		Description: "Step traces of one pipeline run, in execution order",
		MIMEType:    "application/json",
	}, s.handleTracesResource)
}

// handleSignalsResource returns a list of recently ingested signals.
func (s *Server) handleSignalsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Signals == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	signals, err := s.ports.Signals.List(ctx, signalListLimit)
	if err != nil {
		return nil, fmt.Errorf("listing signals: %w", err)
	}

	// Build simplified signal list.
	type signalInfo struct {
		ID         string `json:"id"`
		Source     string `json:"source"`
		ExternalID string `json:"external_id"`
		Title      string `json:"title"`
		URL        string `json:"url,omitempty"`
		Version    int    `json:"version"`
		IngestedAt string `json:"ingested_at"`
	}

	infos := make([]signalInfo, len(signals))
	for i := range signals {
		infos[i] = signalInfo{
			ID:         signals[i].ID,
			Source:     string(signals[i].Source),
			ExternalID: signals[i].ExternalID,
			Title:      signals[i].Title,
			URL:        signals[i].URL,
			Version:    signals[i].Version,
			IngestedAt: signals[i].IngestedAt.Format(time.RFC3339),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling signals: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleIntelligenceResource returns one stored analysis.
func (s *Server) handleIntelligenceResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Intel == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract intelligenceId from URI: pulse://intelligence/{intelligenceId}
	intelID := extractIntelligenceID(req.Params.URI)
	if intelID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	intel, err := s.ports.Intel.Get(ctx, intelID)
	if err != nil {
		return nil, fmt.Errorf("getting intelligence: %w", err)
	}

	data, err := json.MarshalIndent(intelligenceRow(intel), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling intelligence: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleTracesResource returns the step traces of one pipeline run.
func (s *Server) handleTracesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Traces == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract runId from URI: pulse://runs/{runId}/traces
	runID := extractRunID(req.Params.URI)
	if runID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	traces, err := s.ports.Traces.ListByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("listing traces: %w", err)
	}

	// Build simplified trace list.
	type traceInfo struct {
		AgentName string `json:"agent_name"`
		StepName  string `json:"step_name"`
		Status    string `json:"status"`
		Error     string `json:"error,omitempty"`
		ToolCalls int    `json:"tool_calls"`
		LatencyMS int64  `json:"latency_ms"`
	}

	infos := make([]traceInfo, len(traces))
	for i := range traces {
		infos[i] = traceInfo{
			AgentName: traces[i].AgentName,
			StepName:  traces[i].StepName,
			Status:    string(traces[i].Status),
			Error:     traces[i].ErrorMessage,
			ToolCalls: len(traces[i].ToolCalls),
			LatencyMS: traces[i].LatencyMS,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling traces: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractIntelligenceID extracts the ID from a URI like pulse://intelligence/{intelligenceId}.
func extractIntelligenceID(uri string) string {
	const prefix = uriScheme + "intelligence/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}

// extractRunID extracts the run ID from a URI like pulse://runs/{runId}/traces.
func extractRunID(uri string) string {
	const prefix = uriScheme + "runs/"
	const suffix = "/traces"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
