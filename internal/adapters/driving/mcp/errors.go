// Package mcp provides an MCP (Model Context Protocol) server adapter for
// Pulse. It lets AI assistants query stored intelligence, request
// recommendations and feed new signals into the pipeline.
package mcp

import "errors"

// ErrMissingRecommendService is returned when the recommend service is not provided.
var ErrMissingRecommendService = errors.New("mcp: recommend service is required")
