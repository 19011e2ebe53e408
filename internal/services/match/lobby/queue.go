// Package lobby pairs connected players first come, first served and hands
// each pair to the registry.
package lobby

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	apperrors "github.com/louisbranch/seabattle/internal/platform/errors"
	"github.com/louisbranch/seabattle/internal/services/match/domain/match"
)

// Pairer creates a match for two players.
type Pairer interface {
	IsPlaying(playerID string) bool
	CreateSession(ctx context.Context, player1, player2 match.Player) (*match.Match, error)
}

// Queue is a FIFO of players waiting for an opponent.
type Queue struct {
	pairer Pairer
	logger *zap.Logger

	mu      sync.Mutex
	waiting []match.Player
}

// NewQueue creates an empty queue feeding pairer.
func NewQueue(pairer Pairer, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{pairer: pairer, logger: logger}
}

// Join queues the player, or pairs them with the longest-waiting player and
// returns the new match. A nil match means the player is waiting.
func (q *Queue) Join(ctx context.Context, p match.Player) (*match.Match, error) {
	if p.ID == "" {
		return nil, apperrors.New(apperrors.CodePlayerIDEmpty, "player id is required")
	}
	if q.pairer.IsPlaying(p.ID) {
		return nil, apperrors.WithMetadata(
			apperrors.CodePlayerAlreadyPlaying,
			fmt.Sprintf("player %s is already in a match", p.ID),
			map[string]string{"PlayerID": p.ID},
		)
	}

	opponent, ok := q.popOrEnqueue(p)
	if !ok {
		q.logger.Debug("player waiting", zap.String("player_id", p.ID))
		return nil, nil
	}
	m, err := q.pairer.CreateSession(ctx, opponent, p)
	if err != nil {
		q.requeueFront(opponent)
		return nil, err
	}
	return m, nil
}

// Leave removes the player from the queue.
func (q *Queue) Leave(playerID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, w := range q.waiting {
		if w.ID == playerID {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			return
		}
	}
}

// Len returns the number of waiting players.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

func (q *Queue) popOrEnqueue(p match.Player) (match.Player, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, w := range q.waiting {
		if w.ID == p.ID {
			return match.Player{}, false
		}
	}
	if len(q.waiting) == 0 {
		q.waiting = append(q.waiting, p)
		return match.Player{}, false
	}
	head := q.waiting[0]
	q.waiting = q.waiting[1:]
	return head, true
}

func (q *Queue) requeueFront(p match.Player) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pairer.IsPlaying(p.ID) {
		return
	}
	q.waiting = append([]match.Player{p}, q.waiting...)
}
