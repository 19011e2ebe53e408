// Package outcome turns finished matches into durable results and fans them
// out to every configured sink (the SQLite store, a Redis channel read by the
// score updater).
package outcome

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/louisbranch/seabattle/internal/services/match/domain/match"
	"github.com/louisbranch/seabattle/internal/services/match/storage"
)

// Sink receives one outcome per finished match.
type Sink interface {
	Publish(ctx context.Context, outcome storage.Outcome) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, outcome storage.Outcome) error

// Publish calls f.
func (f SinkFunc) Publish(ctx context.Context, outcome storage.Outcome) error {
	return f(ctx, outcome)
}

// FromMatch builds the outcome of m. It reports false while m has no winner.
func FromMatch(m *match.Match) (storage.Outcome, bool) {
	if m == nil {
		return storage.Outcome{}, false
	}
	snap := m.Snapshot()
	if snap.Phase != match.PhaseFinished || snap.WinnerID == "" {
		return storage.Outcome{}, false
	}
	reason := storage.OutcomeWin
	if snap.Reason == match.ReasonForfeit {
		reason = storage.OutcomeForfeit
	}
	return storage.Outcome{
		MatchID:    snap.ID,
		WinnerID:   snap.WinnerID,
		LoserID:    snap.LoserID(),
		Reason:     reason,
		FinishedAt: snap.FinishedAt,
	}, true
}

// Recorder publishes finished match outcomes to every sink.
type Recorder struct {
	sinks  []Sink
	logger *zap.Logger
}

// NewRecorder creates a recorder over the non-nil sinks.
func NewRecorder(logger *zap.Logger, sinks ...Sink) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Recorder{logger: logger}
	for _, s := range sinks {
		if s != nil {
			r.sinks = append(r.sinks, s)
		}
	}
	return r
}

// Record publishes the outcome of m. Every sink is attempted; their failures
// are joined. Unfinished matches are skipped.
func (r *Recorder) Record(ctx context.Context, m *match.Match) error {
	if r == nil {
		return nil
	}
	out, ok := FromMatch(m)
	if !ok {
		return nil
	}
	var errs []error
	for _, s := range r.sinks {
		if err := s.Publish(ctx, out); err != nil {
			r.logger.Error("publish outcome",
				zap.String("match_id", out.MatchID),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("record outcome %s: %w", out.MatchID, errors.Join(errs...))
	}
	r.logger.Info("outcome recorded",
		zap.String("match_id", out.MatchID),
		zap.String("winner_id", out.WinnerID),
		zap.String("reason", string(out.Reason)),
	)
	return nil
}

// StoreSink persists outcomes to an OutcomeStore.
func StoreSink(store storage.OutcomeStore) Sink {
	if store == nil {
		return nil
	}
	return SinkFunc(store.PutOutcome)
}
