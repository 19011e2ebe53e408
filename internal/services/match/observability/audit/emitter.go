package audit

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/louisbranch/seabattle/internal/services/match/storage"
)

// Severity describes the audit severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Event names written by the match service.
const (
	EventSessionCreated = "match.session_created"
	EventGameStarted    = "match.game_started"
	EventSessionEnded   = "match.session_ended"
	EventForfeit        = "match.forfeit"
	EventDeliveryFailed = "match.delivery_failed"
)

// Emitter records operational audit events.
type Emitter struct {
	store  storage.AuditEventStore
	logger *zap.Logger
	clock  func() time.Time
}

// NewEmitter creates a new audit event emitter. Failed writes from Report
// and Record are logged to logger.
func NewEmitter(store storage.AuditEventStore, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{store: store, logger: logger, clock: time.Now}
}

// Emit records an audit event. It is a no-op when the store is nil.
// Trace and span ids are taken from ctx when the event has none.
func (e *Emitter) Emit(ctx context.Context, evt storage.AuditEvent) error {
	if e == nil || e.store == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		if e.clock == nil {
			evt.Timestamp = time.Now().UTC()
		} else {
			evt.Timestamp = e.clock().UTC()
		}
	}
	if evt.TraceID == "" {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			evt.TraceID = sc.TraceID().String()
			evt.SpanID = sc.SpanID().String()
		}
	}
	return e.store.AppendAuditEvent(ctx, evt)
}

// Report records a failed operation for a match player. It satisfies the
// registry's error-reporting sink.
func (e *Emitter) Report(ctx context.Context, matchID, playerID, operation string, err error) {
	if err == nil {
		return
	}
	e.emitOrWarn(ctx, storage.AuditEvent{
		EventName: EventDeliveryFailed,
		Severity:  string(SeverityError),
		MatchID:   matchID,
		PlayerID:  playerID,
		Attributes: map[string]any{
			"operation": operation,
			"error":     err.Error(),
		},
	})
}

// Record writes an informational lifecycle event for a match.
func (e *Emitter) Record(ctx context.Context, eventName, matchID string, attributes map[string]any) {
	e.emitOrWarn(ctx, storage.AuditEvent{
		EventName:  eventName,
		Severity:   string(SeverityInfo),
		MatchID:    matchID,
		Attributes: attributes,
	})
}

func (e *Emitter) emitOrWarn(ctx context.Context, evt storage.AuditEvent) {
	err := e.Emit(ctx, evt)
	if err == nil || e.logger == nil {
		return
	}
	e.logger.Warn("audit event not stored",
		zap.String("event", evt.EventName),
		zap.String("match_id", evt.MatchID),
		zap.String("player_id", evt.PlayerID),
		zap.Error(err),
	)
}
