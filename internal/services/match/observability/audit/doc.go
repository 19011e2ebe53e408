// Package audit contains durable audit writes for match service operations.
//
// Every failed notification delivery lands here, together with the session
// lifecycle steps around it, so an incident can be reconstructed per match.
//
// For distributed tracing, this service still uses package `internal/platform/otel`.
package audit
