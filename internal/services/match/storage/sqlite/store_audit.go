package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/seabattle/internal/services/match/storage"
)

// AppendAuditEvent records an operational audit event.
func (s *Store) AppendAuditEvent(ctx context.Context, evt storage.AuditEvent) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(evt.EventName) == "" {
		return fmt.Errorf("event name is required")
	}
	if strings.TrimSpace(evt.Severity) == "" {
		return fmt.Errorf("severity is required")
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if len(evt.AttributesJSON) == 0 && len(evt.Attributes) > 0 {
		payload, err := json.Marshal(evt.Attributes)
		if err != nil {
			return fmt.Errorf("marshal audit attributes: %w", err)
		}
		evt.AttributesJSON = payload
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO audit_events (
	timestamp, event_name, severity, match_id, player_id, trace_id, span_id, attributes_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		toMillis(evt.Timestamp),
		strings.TrimSpace(evt.EventName),
		strings.TrimSpace(evt.Severity),
		toNullString(evt.MatchID),
		toNullString(evt.PlayerID),
		toNullString(evt.TraceID),
		toNullString(evt.SpanID),
		evt.AttributesJSON,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListAuditEventsByMatch returns up to limit events for a match, oldest first.
func (s *Store) ListAuditEventsByMatch(ctx context.Context, matchID string, limit int) ([]storage.AuditEvent, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, fmt.Errorf("match id is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT timestamp, event_name, severity, match_id, player_id, trace_id, span_id, attributes_json
FROM audit_events
WHERE match_id = ?
ORDER BY timestamp ASC, id ASC
LIMIT ?
`, matchID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []storage.AuditEvent
	for rows.Next() {
		var (
			evt       storage.AuditEvent
			timestamp int64
			matchCol  sql.NullString
			player    sql.NullString
			traceID   sql.NullString
			spanID    sql.NullString
		)
		if err := rows.Scan(&timestamp, &evt.EventName, &evt.Severity, &matchCol, &player, &traceID, &spanID, &evt.AttributesJSON); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		evt.Timestamp = fromMillis(timestamp)
		evt.MatchID = matchCol.String
		evt.PlayerID = player.String
		evt.TraceID = traceID.String
		evt.SpanID = spanID.String
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read audit events: %w", err)
	}
	return events, nil
}
