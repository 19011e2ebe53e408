// Package boardtest provides board fixtures shared by match-engine tests.
package boardtest

import (
	"testing"

	"github.com/louisbranch/seabattle/internal/services/match/domain/board"
)

// FleetLengths is the classic ten-ship fleet: one 4, two 3s, three 2s, four 1s.
var FleetLengths = []int{4, 3, 3, 2, 2, 2, 1, 1, 1, 1}

type placement struct {
	row, col, length int
	vertical         bool
}

// classic keeps one empty cell between every pair of ships and starts with
// a single-cell ship at (0,0).
var classic = []placement{
	{0, 0, 1, false},
	{0, 2, 4, false},
	{0, 7, 3, false},
	{2, 0, 3, true},
	{2, 2, 2, false},
	{2, 5, 2, true},
	{2, 8, 2, false},
	{5, 2, 1, false},
	{6, 5, 1, false},
	{8, 8, 1, false},
}

// ClassicFleet returns a legal ten-ship layout.
func ClassicFleet(t testing.TB) []board.Ship {
	t.Helper()
	ships := make([]board.Ship, 0, len(classic))
	for _, p := range classic {
		ship, err := board.NewShip(board.At(p.row, p.col), p.length, p.vertical)
		if err != nil {
			t.Fatalf("classic fleet ship at (%d,%d): %v", p.row, p.col, err)
		}
		ships = append(ships, ship)
	}
	return ships
}

// ClassicBoard returns a board populated with ClassicFleet.
func ClassicBoard(t testing.TB) *board.Board {
	t.Helper()
	b, err := board.NewWithShips(ClassicFleet(t))
	if err != nil {
		t.Fatalf("classic board: %v", err)
	}
	return b
}

// SingleShipBoard returns a board holding only one ship of the given length.
func SingleShipBoard(t testing.TB, anchor board.Cell, length int, vertical bool) (*board.Board, board.Ship) {
	t.Helper()
	ship, err := board.NewShip(anchor, length, vertical)
	if err != nil {
		t.Fatalf("new ship: %v", err)
	}
	b, err := board.NewWithShips([]board.Ship{ship})
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	return b, ship
}
