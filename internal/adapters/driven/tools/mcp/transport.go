// Package mcp provides the primary tool transport, speaking the Model
// Context Protocol to a local or remote tool server.
package mcp

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driven"
)

// Ensure Transport implements the interface.
var _ driven.ToolTransport = (*Transport)(nil)

// Version is sent in the MCP handshake.
const Version = "0.1.0"

// toolNames maps logical capability names onto the tool names exposed by
// GitHub-style MCP servers.
var toolNames = map[string]string{
	driven.ToolRepoMetadata: "get_repository",
	driven.ToolRepoFile:     "get_file_contents",
	driven.ToolCodeSearch:   "search_code",
}

// Config holds configuration for the MCP tool transport. Exactly one of
// Command or Endpoint should be set; Command wins when both are.
type Config struct {
	// Command launches a stdio MCP server (e.g. "github-mcp-server stdio").
	Command string

	// Endpoint is a streamable HTTP MCP server URL.
	Endpoint string
}

// Transport invokes tools over one MCP session. The session is dialled
// lazily on first use so constructing the transport never does I/O, and
// redialled after a connection-level failure.
type Transport struct {
	mu       sync.Mutex
	session  *mcp.ClientSession
	command  string
	endpoint string
}

// NewTransport creates an MCP tool transport. Returns nil when neither a
// command nor an endpoint is configured; the gateway skips nil transports.
func NewTransport(cfg Config) *Transport {
	if cfg.Command == "" && cfg.Endpoint == "" {
		return nil
	}
	return &Transport{command: cfg.Command, endpoint: cfg.Endpoint}
}

// Name identifies the transport in traces.
func (t *Transport) Name() string { return "mcp" }

// Invoke executes one capability call over the MCP session.
func (t *Transport) Invoke(ctx context.Context, req driven.ToolRequest) (*driven.ToolResult, error) {
	name, ok := toolNames[req.Tool]
	if !ok {
		return nil, fmt.Errorf("mcp: no tool mapped for capability %q", req.Tool)
	}

	session, err := t.ensureSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("mcp: connect: %w", err)
	}

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: req.Args,
	})
	if err != nil {
		// Connection-level failure; drop the session so the next call redials.
		t.dropSession(session)
		return nil, fmt.Errorf("mcp: call %s: %w", name, err)
	}

	text := flattenContent(res.Content)
	if res.IsError {
		return nil, fmt.Errorf("mcp: tool %s returned error: %s", name, text)
	}

	result := &driven.ToolResult{Text: text}
	if structured, ok := res.StructuredContent.(map[string]any); ok {
		result.Content = structured
	}
	return result, nil
}

// Close terminates the MCP session if one was established.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return nil
	}
	err := t.session.Close()
	t.session = nil
	return err
}

// ensureSession dials the server on first use.
func (t *Transport) ensureSession(ctx context.Context) (*mcp.ClientSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session != nil {
		return t.session, nil
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "pulse", Version: Version}, nil)

	var transport mcp.Transport
	if t.command != "" {
		parts := strings.Fields(t.command)
		//nolint:gosec // command comes from the user's own config
		transport = &mcp.CommandTransport{Command: exec.Command(parts[0], parts[1:]...)}
	} else {
		transport = &mcp.StreamableClientTransport{Endpoint: t.endpoint}
	}

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, err
	}

	t.session = session
	return session, nil
}

// dropSession discards a failed session so the next call reconnects.
// Only drops the session it was handed; a concurrent redial stays intact.
func (t *Transport) dropSession(failed *mcp.ClientSession) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == failed {
		_ = t.session.Close()
		t.session = nil
	}
}

// flattenContent joins the text blocks of a tool result for prompt use.
func flattenContent(blocks []mcp.Content) string {
	var b strings.Builder
	for _, block := range blocks {
		if text, ok := block.(*mcp.TextContent); ok {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(text.Text)
		}
	}
	return b.String()
}
