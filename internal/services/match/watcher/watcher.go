// Package watcher ends matches whose players dropped their connection.
//
// On every tick it walks the registered matches. A match with a missing
// player is forfeited by that player (player1 is checked first when both are
// gone), both players get their end notification, the match leaves the
// registry and its outcome is recorded. Finished matches still registered
// are swept as well.
package watcher

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/louisbranch/seabattle/internal/platform/errors"
	"github.com/louisbranch/seabattle/internal/services/match/domain/match"
	"github.com/louisbranch/seabattle/internal/services/match/observability/audit"
	"github.com/louisbranch/seabattle/internal/services/match/registry"
)

// DefaultInterval is used when no positive interval is configured.
const DefaultInterval = 2 * time.Second

// Sessions is the registry surface the watcher drives.
type Sessions interface {
	Sessions() []*match.Match
	SessionAlive(m *match.Match) bool
	EndSession(ctx context.Context, m *match.Match) error
	RemoveSession(m *match.Match)
}

// Connections reports and closes player connections.
type Connections interface {
	IsConnected(playerID string) bool
	CloseSession(playerID string, status registry.CloseStatus)
}

// OutcomeRecorder records the result of a finished match.
type OutcomeRecorder interface {
	Record(ctx context.Context, m *match.Match) error
}

// Watcher periodically sweeps dead and finished matches.
type Watcher struct {
	sessions    Sessions
	connections Connections
	outcomes    OutcomeRecorder
	recorder    registry.Recorder
	logger      *zap.Logger
	interval    time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithOutcomes sets where forfeited match outcomes are recorded.
func WithOutcomes(outcomes OutcomeRecorder) Option {
	return func(w *Watcher) { w.outcomes = outcomes }
}

// WithRecorder sets the audit sink for forfeits.
func WithRecorder(recorder registry.Recorder) Option {
	return func(w *Watcher) { w.recorder = recorder }
}

// WithInterval sets the sweep period.
func WithInterval(interval time.Duration) Option {
	return func(w *Watcher) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

// New creates a watcher over the registry sessions and gateway connections.
func New(sessions Sessions, connections Connections, opts ...Option) *Watcher {
	w := &Watcher{
		sessions:    sessions,
		connections: connections,
		logger:      zap.NewNop(),
		interval:    DefaultInterval,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Run sweeps every interval until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one pass and returns how many matches it removed.
func (w *Watcher) Sweep(ctx context.Context) int {
	removed := 0
	for _, m := range w.sessions.Sessions() {
		if m.Finished() {
			w.sessions.RemoveSession(m)
			removed++
			continue
		}
		if w.sessions.SessionAlive(m) {
			continue
		}
		if w.forfeit(ctx, m) {
			removed++
		}
	}
	return removed
}

func (w *Watcher) forfeit(ctx context.Context, m *match.Match) bool {
	loser, ok := w.disconnected(m)
	if !ok {
		return false
	}
	if err := m.Forfeit(loser.ID); err != nil {
		if !apperrors.IsCode(err, apperrors.CodeMatchInvalidPhase) {
			w.logger.Error("forfeit disconnected player",
				zap.String("match_id", m.ID()),
				zap.String("player_id", loser.ID),
				zap.Error(err),
			)
			return false
		}
		// Finished concurrently by the last shot; the game loop ends it.
		w.sessions.RemoveSession(m)
		return true
	}
	w.logger.Info("player disconnected, match forfeited",
		zap.String("match_id", m.ID()),
		zap.String("player_id", loser.ID),
	)
	if w.recorder != nil {
		w.recorder.Record(ctx, audit.EventForfeit, m.ID(), map[string]any{"loser": loser.ID})
	}

	if err := w.sessions.EndSession(ctx, m); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Debug("end notification after disconnect", zap.String("match_id", m.ID()), zap.Error(err))
	}
	w.sessions.RemoveSession(m)
	for _, p := range m.Players() {
		if w.connections.IsConnected(p.ID) {
			w.connections.CloseSession(p.ID, registry.CloseNormal)
		}
	}
	if w.outcomes != nil {
		if err := w.outcomes.Record(ctx, m); err != nil {
			w.logger.Error("record forfeit outcome", zap.String("match_id", m.ID()), zap.Error(err))
		}
	}
	return true
}

func (w *Watcher) disconnected(m *match.Match) (match.Player, bool) {
	for _, p := range m.Players() {
		if !w.connections.IsConnected(p.ID) {
			return p, true
		}
	}
	return match.Player{}, false
}
