// Package domain contains the core business entities and errors for Pulse.
// These types have no dependencies on infrastructure or external services.
package domain
