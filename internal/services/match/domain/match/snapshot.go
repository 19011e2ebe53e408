package match

import "time"

// Snapshot is a point-in-time, read-only copy of a match.
type Snapshot struct {
	ID         string
	Phase      Phase
	Players    [2]Player
	Accepted   [2]bool
	DamagedID  string
	WinnerID   string
	Reason     Reason
	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
}

// Snapshot copies the current state of the match.
func (m *Match) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot{
		ID:         m.id,
		Phase:      m.phase,
		Players:    m.players,
		Accepted:   m.accepted,
		Reason:     m.reason,
		CreatedAt:  m.createdAt,
		StartedAt:  m.startedAt,
		FinishedAt: m.finishedAt,
	}
	if m.damaged != noSide {
		s.DamagedID = m.players[m.damaged].ID
	}
	if m.winner != noSide {
		s.WinnerID = m.players[m.winner].ID
	}
	return s
}

// LoserID returns the id of the player that did not win, or "" while the
// match is undecided.
func (s Snapshot) LoserID() string {
	if s.WinnerID == "" {
		return ""
	}
	if s.Players[0].ID == s.WinnerID {
		return s.Players[1].ID
	}
	return s.Players[0].ID
}
