package match

import (
	apperrors "github.com/louisbranch/seabattle/internal/platform/errors"
	"github.com/louisbranch/seabattle/internal/services/match/domain/board"
)

// ShotResult describes one resolved shot against the damaged board.
type ShotResult struct {
	Cell board.Cell
	// Status is what Board.Fire returned: Blocked for a miss, OnFire for a hit.
	Status board.CellStatus
	// ShipDestroyed is set when the hit sank a ship; Sunk holds its cells,
	// which are now Destructed with their perimeter Blocked.
	ShipDestroyed bool
	Sunk          board.Ship
	// MatchOver is set when the last ship sank and the shooter won.
	MatchOver bool
}

// Fire resolves a shot by the attacker at cell on the damaged board. A sunk
// ship is killed immediately; sinking the last ship finishes the match with
// the shooter as winner.
func (m *Match) Fire(shooterID string, cell board.Cell) (ShotResult, error) {
	shooter := m.side(shooterID)
	if shooter == noSide {
		return ShotResult{}, notInMatch(shooterID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseActive {
		return ShotResult{}, m.invalidPhase("fire")
	}
	if shooter == m.damaged {
		return ShotResult{}, apperrors.WithMetadata(
			apperrors.CodeNotAttacker,
			"player "+shooterID+" is the damaged side and cannot fire",
			map[string]string{"PlayerID": shooterID},
		)
	}

	target := m.boards[m.damaged]
	status, err := target.Fire(cell)
	if err != nil {
		return ShotResult{}, err
	}
	result := ShotResult{Cell: cell, Status: status}
	if status != board.OnFire {
		return result, nil
	}

	ship, ok := target.ShipAt(cell)
	if !ok {
		return result, nil
	}
	destroyed, err := target.ShipDestroyed(ship)
	if err != nil {
		return result, err
	}
	if destroyed {
		if err := target.KillShip(ship); err != nil {
			return result, err
		}
		result.ShipDestroyed = true
		result.Sunk = ship
	}
	if target.AllShipsDestroyed() {
		m.finish(shooter, ReasonWin)
		result.MatchOver = true
	}
	return result, nil
}
