package match

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	apperrors "github.com/louisbranch/seabattle/internal/platform/errors"
	"github.com/louisbranch/seabattle/internal/services/match/domain/board"
)

const noSide = -1

// Match is one game between two players.
type Match struct {
	id      string
	players [2]Player
	now     func() time.Time

	mu         sync.Mutex
	phase      Phase
	boards     [2]*board.Board
	accepted   [2]bool
	damaged    int
	winner     int
	reason     Reason
	createdAt  time.Time
	startedAt  time.Time
	finishedAt time.Time
}

// New creates a match in PhaseLobby. The players must have distinct,
// non-empty ids. A nil now defaults to time.Now.
func New(id string, player1, player2 Player, now func() time.Time) (*Match, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.New(apperrors.CodeUnknown, "match id is required")
	}
	if strings.TrimSpace(player1.ID) == "" || strings.TrimSpace(player2.ID) == "" {
		return nil, apperrors.New(apperrors.CodePlayerIDEmpty, "player id is required")
	}
	if player1.ID == player2.ID {
		return nil, apperrors.WithMetadata(
			apperrors.CodeMatchSamePlayerTwice,
			fmt.Sprintf("player %s cannot play against themselves", player1.ID),
			map[string]string{"PlayerID": player1.ID},
		)
	}
	if now == nil {
		now = time.Now
	}
	return &Match{
		id:        id,
		players:   [2]Player{player1, player2},
		now:       now,
		phase:     PhaseLobby,
		damaged:   noSide,
		winner:    noSide,
		createdAt: now().UTC(),
	}, nil
}

// ID returns the match id.
func (m *Match) ID() string { return m.id }

// Player1 returns the first player.
func (m *Match) Player1() Player { return m.players[0] }

// Player2 returns the second player.
func (m *Match) Player2() Player { return m.players[1] }

// Players returns both players in pairing order.
func (m *Match) Players() [2]Player { return m.players }

// Has reports whether playerID takes part in the match.
func (m *Match) Has(playerID string) bool {
	return m.side(playerID) != noSide
}

// Opponent returns the other player of the match.
func (m *Match) Opponent(playerID string) (Player, bool) {
	side := m.side(playerID)
	if side == noSide {
		return Player{}, false
	}
	return m.players[1-side], true
}

// Phase returns the current lifecycle stage.
func (m *Match) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// AcceptPlacement stores the board a player submitted. A later submission
// replaces the earlier one until the match starts.
func (m *Match) AcceptPlacement(playerID string, b *board.Board) error {
	if b == nil {
		return apperrors.New(apperrors.CodeShipInvalid, "placement board is required")
	}
	side := m.side(playerID)
	if side == noSide {
		return notInMatch(playerID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseLobby && m.phase != PhaseAwaitingStart {
		return apperrors.New(
			apperrors.CodeMatchPlacementClosed,
			fmt.Sprintf("match %s no longer accepts placements (%s)", m.id, m.phase),
		)
	}
	// A fleet-less board could never be sunk, so the match would never finish.
	if len(b.Ships()) == 0 {
		return apperrors.New(apperrors.CodeShipInvalid, "placement has no ships")
	}
	m.phase = PhaseAwaitingStart
	m.boards[side] = b
	m.accepted[side] = true
	return nil
}

// BothFieldsAccepted reports whether both players have a board on record.
func (m *Match) BothFieldsAccepted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bothAccepted()
}

// ChooseDamagedPlayer picks one of the two players uniformly at random.
func (m *Match) ChooseDamagedPlayer(rng *rand.Rand) Player {
	return m.players[rng.IntN(2)]
}

// SetDamagedSide records playerID as the side being fired upon and moves the
// match from AwaitingStart to Active.
func (m *Match) SetDamagedSide(playerID string) error {
	side := m.side(playerID)
	if side == noSide {
		return notInMatch(playerID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseAwaitingStart || !m.bothAccepted() {
		return m.invalidPhase("set damaged side")
	}
	m.activate(side)
	return nil
}

// Start assigns a random damaged side and activates the match in one step.
// It reports started=false, without error, when the match is not ready or
// was already started, so concurrent callers start it at most once.
func (m *Match) Start(rng *rand.Rand) (Player, bool, error) {
	if rng == nil {
		return Player{}, false, apperrors.New(apperrors.CodeUnknown, "random source is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseAwaitingStart || !m.bothAccepted() {
		return Player{}, false, nil
	}
	damaged := m.ChooseDamagedPlayer(rng)
	m.activate(m.side(damaged.ID))
	return damaged, true, nil
}

// Damaged returns the player whose board is the target of fire.
func (m *Match) Damaged() (Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.damaged == noSide {
		return Player{}, false
	}
	return m.players[m.damaged], true
}

// IsAttacker reports whether playerID is the side that fires, i.e. the
// player that is not damaged. It is false before the match starts.
func (m *Match) IsAttacker(playerID string) bool {
	side := m.side(playerID)
	if side == noSide {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.damaged != noSide && m.damaged != side
}

// Forfeit ends the match with loserID's opponent as the winner.
func (m *Match) Forfeit(loserID string) error {
	side := m.side(loserID)
	if side == noSide {
		return notInMatch(loserID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseFinished {
		return m.invalidPhase("forfeit")
	}
	m.finish(1-side, ReasonForfeit)
	return nil
}

// Winner returns the recorded winner.
func (m *Match) Winner() (Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.winner == noSide {
		return Player{}, false
	}
	return m.players[m.winner], true
}

// Won reports whether playerID is the recorded winner.
func (m *Match) Won(playerID string) bool {
	side := m.side(playerID)
	if side == noSide {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.winner == side
}

// Finished reports whether a winner was recorded.
func (m *Match) Finished() bool {
	return m.Phase() == PhaseFinished
}

// Grid returns a copy of the cell states of playerID's board.
func (m *Match) Grid(playerID string) ([board.FieldSize][board.FieldSize]board.CellStatus, bool) {
	side := m.side(playerID)
	if side == noSide {
		return [board.FieldSize][board.FieldSize]board.CellStatus{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.boards[side] == nil {
		return [board.FieldSize][board.FieldSize]board.CellStatus{}, false
	}
	return m.boards[side].Grid(), true
}

func (m *Match) side(playerID string) int {
	for i, p := range m.players {
		if p.Is(playerID) {
			return i
		}
	}
	return noSide
}

func (m *Match) bothAccepted() bool {
	return m.accepted[0] && m.accepted[1]
}

func (m *Match) activate(damaged int) {
	m.damaged = damaged
	m.phase = PhaseActive
	m.startedAt = m.now().UTC()
}

func (m *Match) finish(winner int, reason Reason) {
	m.winner = winner
	m.reason = reason
	m.phase = PhaseFinished
	m.finishedAt = m.now().UTC()
}

func (m *Match) invalidPhase(action string) error {
	return apperrors.WithMetadata(
		apperrors.CodeMatchInvalidPhase,
		fmt.Sprintf("match %s cannot %s in phase %s", m.id, action, m.phase),
		map[string]string{"Phase": m.phase.String()},
	)
}

func notInMatch(playerID string) error {
	return apperrors.WithMetadata(
		apperrors.CodePlayerNotInMatch,
		fmt.Sprintf("player %q is not in this match", playerID),
		map[string]string{"PlayerID": playerID},
	)
}
