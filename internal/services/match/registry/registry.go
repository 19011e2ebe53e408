// Package registry tracks which match every connected player is in and sends
// the lifecycle notifications around each transition.
//
// The table lock only guards map reads and writes. It is never held while a
// match or the gateway is called, so unrelated matches never wait on each
// other; the per-match lock inside match.Match serializes the rest.
//
// Notifications are sent after the state transition they describe and are
// best effort: a failed send is logged, reported and traced, but the
// transition stands.
package registry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "github.com/louisbranch/seabattle/internal/platform/errors"
	"github.com/louisbranch/seabattle/internal/platform/id"
	"github.com/louisbranch/seabattle/internal/platform/random"
	"github.com/louisbranch/seabattle/internal/services/match/domain/match"
	"github.com/louisbranch/seabattle/internal/services/match/notify"
	"github.com/louisbranch/seabattle/internal/services/match/observability/audit"
)

const tracerName = "github.com/louisbranch/seabattle/internal/services/match/registry"

// Registry maps player ids to the match they are playing.
type Registry struct {
	gateway  Gateway
	logger   *zap.Logger
	rng      *rand.Rand
	reporter Reporter
	recorder Recorder
	now      func() time.Time
	tracer   trace.Tracer
	newID    func() (string, error)

	mu       sync.RWMutex
	sessions map[string]*match.Match
}

// New creates an empty registry that notifies players through gateway.
func New(gateway Gateway, opts ...Option) (*Registry, error) {
	if gateway == nil {
		return nil, errors.New("gateway is required")
	}
	r := &Registry{
		gateway:  gateway,
		logger:   zap.NewNop(),
		reporter: nopReporter{},
		recorder: nopRecorder{},
		now:      time.Now,
		tracer:   otel.Tracer(tracerName),
		newID:    id.NewID,
		sessions: make(map[string]*match.Match),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.rng == nil {
		rng, err := random.NewRand()
		if err != nil {
			return nil, fmt.Errorf("seed damaged-side generator: %w", err)
		}
		r.rng = rng
	}
	// Start draws from the generator under each match's own lock, so draws
	// from different matches must be serialized here.
	r.rng = rand.New(&lockedSource{src: r.rng})
	return r, nil
}

// IsPlaying reports whether the player is registered in a match.
func (r *Registry) IsPlaying(playerID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[playerID]
	return ok
}

// GameSession returns the match the player is registered in.
func (r *Registry) GameSession(playerID string) (*match.Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.sessions[playerID]
	return m, ok
}

// Sessions returns every registered match once.
func (r *Registry) Sessions() []*match.Match {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[*match.Match]struct{}, len(r.sessions)/2)
	out := make([]*match.Match, 0, len(r.sessions)/2)
	for _, m := range r.sessions {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// CreateSession registers a new match for the two players and tells each of
// them the other's name. When either notification fails, both connections
// are closed with CloseServerError; the match stays registered and is
// returned without error so the watcher can sweep it.
func (r *Registry) CreateSession(ctx context.Context, player1, player2 match.Player) (*match.Match, error) {
	ctx, span := r.tracer.Start(ctx, "registry.CreateSession")
	defer span.End()

	matchID, err := r.newID()
	if err != nil {
		return nil, fmt.Errorf("generate match id: %w", err)
	}
	m, err := match.New(matchID, player1, player2, r.now)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("match.id", m.ID()))

	if err := r.register(m); err != nil {
		span.RecordError(err)
		return nil, err
	}
	r.logger.Info("session created",
		zap.String("match_id", m.ID()),
		zap.String("player1_id", player1.ID),
		zap.String("player2_id", player2.ID),
	)
	r.recorder.Record(ctx, audit.EventSessionCreated, m.ID(), map[string]any{
		"player1": player1.ID,
		"player2": player2.ID,
	})

	failed := false
	for _, p := range m.Players() {
		opponent, _ := m.Opponent(p.ID)
		if err := r.send(ctx, span, m, p.ID, notify.LobbyCreated{OpponentUsername: opponent.Username}); err != nil {
			failed = true
		}
	}
	if failed {
		for _, p := range m.Players() {
			r.gateway.CloseSession(p.ID, CloseServerError)
		}
		r.logger.Warn("lobby notification failed, connections closed",
			zap.String("match_id", m.ID()),
		)
	}
	return m, nil
}

// TryStartGame starts m once both placements are in: it assigns the damaged
// side at random and tells each player whether they attack. It is a no-op
// that returns false while a placement is missing or when the match was
// already started. A non-nil error alongside true means some notification
// failed; the match is started regardless.
func (r *Registry) TryStartGame(ctx context.Context, m *match.Match) (bool, error) {
	if m == nil || !m.BothFieldsAccepted() {
		return false, nil
	}
	ctx, span := r.tracer.Start(ctx, "registry.TryStartGame",
		trace.WithAttributes(attribute.String("match.id", m.ID())))
	defer span.End()

	damaged, started, err := m.Start(r.rng)
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	if !started {
		return false, nil
	}
	r.logger.Info("game started",
		zap.String("match_id", m.ID()),
		zap.String("damaged_id", damaged.ID),
		zap.Stringer("phase", m.Phase()),
	)
	r.recorder.Record(ctx, audit.EventGameStarted, m.ID(), map[string]any{"damaged": damaged.ID})

	var errs []error
	for _, p := range m.Players() {
		n := notify.GameStarted{IsAttacker: m.IsAttacker(p.ID)}
		if err := r.send(ctx, span, m, p.ID, n); err != nil {
			errs = append(errs, err)
		}
	}
	return true, errors.Join(errs...)
}

// EndSession tells each player whether they won. A failed send to one player
// does not stop the other. The match stays registered; callers remove it
// with RemoveSession.
func (r *Registry) EndSession(ctx context.Context, m *match.Match) error {
	if m == nil {
		return nil
	}
	ctx, span := r.tracer.Start(ctx, "registry.EndSession",
		trace.WithAttributes(attribute.String("match.id", m.ID())))
	defer span.End()

	winner, _ := m.Winner()
	r.logger.Info("session ended",
		zap.String("match_id", m.ID()),
		zap.String("winner_id", winner.ID),
		zap.Stringer("phase", m.Phase()),
	)
	r.recorder.Record(ctx, audit.EventSessionEnded, m.ID(), map[string]any{"winner": winner.ID})

	var errs []error
	for _, p := range m.Players() {
		if err := r.send(ctx, span, m, p.ID, notify.EndGame{Won: m.Won(p.ID)}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RemoveSession drops both players of m from the table. Entries that now
// point at a different match are left alone.
func (r *Registry) RemoveSession(m *match.Match) {
	if m == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range m.Players() {
		if r.sessions[p.ID] == m {
			delete(r.sessions, p.ID)
		}
	}
}

// SessionAlive reports whether both players of m are still connected.
func (r *Registry) SessionAlive(m *match.Match) bool {
	if m == nil {
		return false
	}
	for _, p := range m.Players() {
		if !r.gateway.IsConnected(p.ID) {
			return false
		}
	}
	return true
}

// Notify sends n to one player of m with the same failure handling as the
// lifecycle notifications.
func (r *Registry) Notify(ctx context.Context, m *match.Match, playerID string, n notify.Notification) error {
	return r.send(ctx, trace.SpanFromContext(ctx), m, playerID, n)
}

func (r *Registry) register(m *match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range m.Players() {
		if _, busy := r.sessions[p.ID]; busy {
			return apperrors.WithMetadata(
				apperrors.CodePlayerAlreadyPlaying,
				fmt.Sprintf("player %s is already in a match", p.ID),
				map[string]string{"PlayerID": p.ID},
			)
		}
	}
	for _, p := range m.Players() {
		r.sessions[p.ID] = m
	}
	return nil
}

func (r *Registry) send(ctx context.Context, span trace.Span, m *match.Match, playerID string, n notify.Notification) error {
	err := r.gateway.SendMessage(ctx, playerID, n)
	if err == nil {
		return nil
	}
	err = apperrors.Wrap(
		apperrors.CodeDeliveryFailed,
		fmt.Sprintf("deliver %s to %s", n.Type(), playerID),
		err,
	)
	span.RecordError(err, trace.WithAttributes(attribute.String("player.id", playerID)))
	span.SetStatus(otelcodes.Error, "notification delivery failed")
	r.logger.Warn("notification delivery failed",
		zap.String("match_id", m.ID()),
		zap.String("player_id", playerID),
		zap.String("notification", string(n.Type())),
		zap.Error(err),
	)
	r.reporter.Report(ctx, m.ID(), playerID, string(n.Type()), err)
	return err
}

type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}
