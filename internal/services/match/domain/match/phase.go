// Package match models one two-player game: its lifecycle phase, the boards
// each player placed, which side is being fired upon, and the winner.
//
// The lifecycle only moves forward:
//
//	Lobby -> AwaitingStart -> Active -> Finished
//
// Placements move a match out of Lobby, Start assigns the damaged side and
// activates it, and the last destroyed ship (or a forfeit) finishes it. Every
// method serializes on a per-match mutex, so unrelated matches never contend.
package match

import "strconv"

// Phase is the lifecycle stage of a match.
type Phase uint8

const (
	// PhaseLobby means both players were paired and notified; no board yet.
	PhaseLobby Phase = iota
	// PhaseAwaitingStart means at least one player has submitted a placement.
	PhaseAwaitingStart
	// PhaseActive means the damaged side is assigned and fire is permitted.
	PhaseActive
	// PhaseFinished means a winner was recorded.
	PhaseFinished
)

var phaseNames = [...]string{
	PhaseLobby:         "LOBBY",
	PhaseAwaitingStart: "AWAITING_START",
	PhaseActive:        "ACTIVE",
	PhaseFinished:      "FINISHED",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "Phase(" + strconv.Itoa(int(p)) + ")"
}

// Reason explains how a finished match was decided.
type Reason string

const (
	// ReasonWin means every ship on the damaged board was destroyed.
	ReasonWin Reason = "win"
	// ReasonForfeit means the loser left or was disconnected.
	ReasonForfeit Reason = "forfeit"
)
