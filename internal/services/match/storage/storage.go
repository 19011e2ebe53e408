package storage

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/seabattle/internal/platform/errors"
)

// ErrNotFound indicates a requested persistence record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// AuditEvent is one operational event: a session lifecycle step or a failed
// notification delivery.
type AuditEvent struct {
	Timestamp time.Time
	EventName string
	Severity  string
	MatchID   string
	PlayerID  string
	TraceID   string
	SpanID    string
	// Attributes are marshaled into AttributesJSON when the latter is empty.
	Attributes     map[string]any
	AttributesJSON []byte
}

// AuditEventStore persists append-only audit events.
type AuditEventStore interface {
	AppendAuditEvent(ctx context.Context, evt AuditEvent) error
}

// AuditEventReader lists recent audit events for one match.
type AuditEventReader interface {
	ListAuditEventsByMatch(ctx context.Context, matchID string, limit int) ([]AuditEvent, error)
}

// OutcomeReason is how a match was decided.
type OutcomeReason string

const (
	OutcomeWin     OutcomeReason = "win"
	OutcomeForfeit OutcomeReason = "forfeit"
)

// Outcome is the durable result of one finished match. The external score
// updater consumes it.
type Outcome struct {
	MatchID    string        `json:"matchId" msgpack:"matchId"`
	WinnerID   string        `json:"winnerId" msgpack:"winnerId"`
	LoserID    string        `json:"loserId" msgpack:"loserId"`
	Reason     OutcomeReason `json:"reason" msgpack:"reason"`
	FinishedAt time.Time     `json:"finishedAt" msgpack:"finishedAt"`
}

// OutcomeStore persists finished match outcomes.
type OutcomeStore interface {
	PutOutcome(ctx context.Context, outcome Outcome) error
	GetOutcome(ctx context.Context, matchID string) (Outcome, error)
	ListOutcomesByPlayer(ctx context.Context, playerID string, limit int) ([]Outcome, error)
}
