package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/seabattle/internal/services/match/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "seabattle.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenTwiceReappliesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seabattle.db")
	first, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	second, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	var applied int
	if err := second.DB().QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != 2 {
		t.Fatalf("expected 2 applied migrations, got %d", applied)
	}
}

func TestNilStoreIsNotConfigured(t *testing.T) {
	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
	if err := store.AppendAuditEvent(context.Background(), storage.AuditEvent{EventName: "x", Severity: "INFO"}); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestAppendAndListAuditEvents(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	events := []storage.AuditEvent{
		{
			Timestamp:  base,
			EventName:  "match.session_created",
			Severity:   "INFO",
			MatchID:    "m1",
			Attributes: map[string]any{"player1": "a", "player2": "b"},
		},
		{
			Timestamp: base.Add(time.Second),
			EventName: "match.delivery_failed",
			Severity:  "ERROR",
			MatchID:   "m1",
			PlayerID:  "b",
			TraceID:   "trace",
			SpanID:    "span",
		},
		{Timestamp: base, EventName: "match.session_created", Severity: "INFO", MatchID: "m2"},
	}
	for _, evt := range events {
		if err := store.AppendAuditEvent(ctx, evt); err != nil {
			t.Fatalf("append %s: %v", evt.EventName, err)
		}
	}

	got, err := store.ListAuditEventsByMatch(ctx, "m1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].EventName != "match.session_created" || string(got[0].AttributesJSON) != `{"player1":"a","player2":"b"}` {
		t.Fatalf("unexpected first event: %+v", got[0])
	}
	if got[1].PlayerID != "b" || got[1].TraceID != "trace" || !got[1].Timestamp.Equal(base.Add(time.Second)) {
		t.Fatalf("unexpected second event: %+v", got[1])
	}
}

func TestAppendAuditEventValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if err := store.AppendAuditEvent(ctx, storage.AuditEvent{Severity: "INFO"}); err == nil {
		t.Fatal("expected error for missing event name")
	}
	if err := store.AppendAuditEvent(ctx, storage.AuditEvent{EventName: "x"}); err == nil {
		t.Fatal("expected error for missing severity")
	}
	if _, err := store.ListAuditEventsByMatch(ctx, "", 1); err == nil {
		t.Fatal("expected error for missing match id")
	}
	if _, err := store.ListAuditEventsByMatch(ctx, "m", 0); err == nil {
		t.Fatal("expected error for zero limit")
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := store.AppendAuditEvent(canceled, storage.AuditEvent{EventName: "x", Severity: "INFO"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}

func TestPutAndGetOutcome(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	finished := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	outcome := storage.Outcome{
		MatchID:    "m1",
		WinnerID:   "alice",
		LoserID:    "bob",
		Reason:     storage.OutcomeWin,
		FinishedAt: finished,
	}
	if err := store.PutOutcome(ctx, outcome); err != nil {
		t.Fatalf("put: %v", err)
	}
	replay := outcome
	replay.WinnerID, replay.LoserID = "bob", "alice"
	if err := store.PutOutcome(ctx, replay); err != nil {
		t.Fatalf("put again: %v", err)
	}

	got, err := store.GetOutcome(ctx, "m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MatchID != outcome.MatchID || got.WinnerID != outcome.WinnerID || got.LoserID != outcome.LoserID ||
		got.Reason != outcome.Reason || !got.FinishedAt.Equal(finished) {
		t.Fatalf("expected %+v, got %+v", outcome, got)
	}

	if _, err := store.GetOutcome(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutOutcomeValidation(t *testing.T) {
	store := openTestStore(t)
	valid := storage.Outcome{MatchID: "m", WinnerID: "a", LoserID: "b", Reason: storage.OutcomeForfeit, FinishedAt: time.Now()}

	tests := []struct {
		name   string
		mutate func(*storage.Outcome)
	}{
		{"match id", func(o *storage.Outcome) { o.MatchID = "" }},
		{"winner", func(o *storage.Outcome) { o.WinnerID = " " }},
		{"loser", func(o *storage.Outcome) { o.LoserID = "" }},
		{"reason", func(o *storage.Outcome) { o.Reason = "" }},
		{"finished at", func(o *storage.Outcome) { o.FinishedAt = time.Time{} }},
	}
	for _, tt := range tests {
		outcome := valid
		tt.mutate(&outcome)
		if err := store.PutOutcome(context.Background(), outcome); err == nil {
			t.Fatalf("%s: expected validation error", tt.name)
		}
	}
}

func TestListOutcomesByPlayer(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, o := range []storage.Outcome{
		{MatchID: "m1", WinnerID: "alice", LoserID: "bob"},
		{MatchID: "m2", WinnerID: "carol", LoserID: "alice"},
		{MatchID: "m3", WinnerID: "bob", LoserID: "carol"},
	} {
		o.Reason = storage.OutcomeWin
		o.FinishedAt = base.Add(time.Duration(i) * time.Hour)
		if err := store.PutOutcome(ctx, o); err != nil {
			t.Fatalf("put %s: %v", o.MatchID, err)
		}
	}

	got, err := store.ListOutcomesByPlayer(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].MatchID != "m2" || got[1].MatchID != "m1" {
		t.Fatalf("unexpected outcomes: %+v", got)
	}

	got, err = store.ListOutcomesByPlayer(ctx, "alice", 1)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(got))
	}
	if _, err := store.ListOutcomesByPlayer(ctx, "", 1); err == nil {
		t.Fatal("expected error for missing player id")
	}
}
