// Package driving provides interfaces for the operations the core exposes
// to its callers (primary/inbound ports): the CLI, the MCP server and any
// external scheduler.
package driving
