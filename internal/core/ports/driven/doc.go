// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): stores, indexes, model services, tool
// transports and source connectors.
package driven
