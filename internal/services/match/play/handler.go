// Package play applies player commands to the match they are registered in:
// ship placement before the start and fire once the match is active.
package play

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/louisbranch/seabattle/internal/platform/errors"
	"github.com/louisbranch/seabattle/internal/services/match/domain/match"
	"github.com/louisbranch/seabattle/internal/services/match/notify"
	"github.com/louisbranch/seabattle/internal/services/match/registry"
)

// Sessions is the registry surface the handler drives.
type Sessions interface {
	GameSession(playerID string) (*match.Match, bool)
	TryStartGame(ctx context.Context, m *match.Match) (bool, error)
	EndSession(ctx context.Context, m *match.Match) error
	RemoveSession(m *match.Match)
	Notify(ctx context.Context, m *match.Match, playerID string, n notify.Notification) error
}

// Closer ends player connections once their match is over.
type Closer interface {
	CloseSession(playerID string, status registry.CloseStatus)
}

// OutcomeRecorder records the result of a finished match.
type OutcomeRecorder interface {
	Record(ctx context.Context, m *match.Match) error
}

// Handler dispatches decoded commands.
type Handler struct {
	sessions Sessions
	closer   Closer
	outcomes OutcomeRecorder
	logger   *zap.Logger
}

// NewHandler creates a handler. closer and outcomes may be nil.
func NewHandler(sessions Sessions, closer Closer, outcomes OutcomeRecorder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{sessions: sessions, closer: closer, outcomes: outcomes, logger: logger}
}

// Handle applies cmd on behalf of playerID. Rejections come back as coded
// errors for the caller to relay to the player.
func (h *Handler) Handle(ctx context.Context, playerID string, cmd notify.Command) error {
	m, ok := h.sessions.GameSession(playerID)
	if !ok {
		return apperrors.WithMetadata(
			apperrors.CodePlayerNotInMatch,
			fmt.Sprintf("player %s is not in a match", playerID),
			map[string]string{"PlayerID": playerID},
		)
	}
	switch cmd.Type {
	case notify.TypePlaceShips:
		return h.placeShips(ctx, m, playerID, cmd)
	case notify.TypeFire:
		return h.fire(ctx, m, playerID, cmd)
	default:
		return apperrors.WithMetadata(
			apperrors.CodeCommandInvalid,
			fmt.Sprintf("unsupported command %q", cmd.Type),
			map[string]string{"Type": string(cmd.Type)},
		)
	}
}

func (h *Handler) placeShips(ctx context.Context, m *match.Match, playerID string, cmd notify.Command) error {
	b, err := cmd.Board()
	if err != nil {
		return err
	}
	if err := m.AcceptPlacement(playerID, b); err != nil {
		return err
	}
	h.logger.Debug("placement accepted",
		zap.String("match_id", m.ID()),
		zap.String("player_id", playerID),
		zap.Int("ships", len(cmd.Ships)),
	)
	// Delivery failures were already logged and reported by the registry.
	_, _ = h.sessions.TryStartGame(ctx, m)
	return nil
}

func (h *Handler) fire(ctx context.Context, m *match.Match, playerID string, cmd notify.Command) error {
	res, err := m.Fire(playerID, cmd.Cell())
	if err != nil {
		return err
	}
	for _, p := range m.Players() {
		_ = h.sessions.Notify(ctx, m, p.ID, notify.ShotResolved{
			Cell:          res.Cell,
			Status:        res.Status,
			ShipDestroyed: res.ShipDestroyed,
			ByMe:          p.Is(playerID),
		})
	}
	if res.MatchOver {
		h.finish(ctx, m)
	}
	return nil
}

func (h *Handler) finish(ctx context.Context, m *match.Match) {
	_ = h.sessions.EndSession(ctx, m)
	h.sessions.RemoveSession(m)
	if h.outcomes != nil {
		if err := h.outcomes.Record(ctx, m); err != nil {
			h.logger.Error("record outcome", zap.String("match_id", m.ID()), zap.Error(err))
		}
	}
	if h.closer != nil {
		for _, p := range m.Players() {
			h.closer.CloseSession(p.ID, registry.CloseNormal)
		}
	}
}
