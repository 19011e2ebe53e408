// Package storage defines persistence interfaces for the match service.
//
// Live matches are never persisted; only what outlives a match is stored:
// operational audit events and the outcome of every finished match.
// Implementations (e.g., SQLite) live in subpackages.
//
// Common error types:
//   - ErrNotFound: requested record is missing
package storage
