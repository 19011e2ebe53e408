// Package board models one player's 10x10 grid: where their ships are and
// what has been fired at them.
//
// A Board is not safe for concurrent use; the match that owns it serializes
// every access under its own lock.
package board

import (
	"bytes"
	"fmt"
	"strconv"
	"text/tabwriter"

	apperrors "github.com/louisbranch/seabattle/internal/platform/errors"
)

// Board is a FieldSize x FieldSize grid of cell states plus the ships that
// were placed on it.
type Board struct {
	cells [FieldSize][FieldSize]CellStatus
	ships []Ship
}

// New returns an empty board; every cell is Free.
func New() *Board {
	return &Board{}
}

// NewWithShips returns a board with every cell of every ship marked Occupied.
func NewWithShips(ships []Ship) (*Board, error) {
	b := New()
	for _, ship := range ships {
		if err := ship.Validate(); err != nil {
			return nil, err
		}
		for _, cell := range ship.Cells {
			if err := b.SetStatus(cell, Occupied); err != nil {
				return nil, err
			}
		}
		b.ships = append(b.ships, Ship{Cells: append([]Cell(nil), ship.Cells...)})
	}
	return b, nil
}

// Status returns the state of cell.
func (b *Board) Status(cell Cell) (CellStatus, error) {
	if !cell.InBounds() {
		return Free, outOfBounds(cell)
	}
	return b.cells[cell.Row][cell.Col], nil
}

// SetStatus overwrites the state of cell without any transition checks.
func (b *Board) SetStatus(cell Cell, status CellStatus) error {
	if !cell.InBounds() {
		return outOfBounds(cell)
	}
	b.cells[cell.Row][cell.Col] = status
	return nil
}

// Fire resolves a shot at cell and returns the resulting state: Blocked for a
// miss, OnFire for a hit. A cell can be fired upon exactly once.
func (b *Board) Fire(cell Cell) (CellStatus, error) {
	status, err := b.Status(cell)
	if err != nil {
		return status, err
	}
	switch status {
	case Free:
		b.cells[cell.Row][cell.Col] = Blocked
		return Blocked, nil
	case Occupied:
		b.cells[cell.Row][cell.Col] = OnFire
		return OnFire, nil
	case OnFire, Destructed, Blocked:
		return status, apperrors.WithMetadata(
			apperrors.CodeCellAlreadyTargeted,
			fmt.Sprintf("cell %s already targeted (%s)", cell, status),
			cellMetadata(cell),
		)
	default:
		return status, fmt.Errorf("cell %s has unknown status %d", cell, status)
	}
}

// ShipDestroyed reports whether every cell of ship is OnFire. It is only
// meaningful until KillShip has been applied to the ship.
func (b *Board) ShipDestroyed(ship Ship) (bool, error) {
	if len(ship.Cells) == 0 {
		return false, nil
	}
	for _, cell := range ship.Cells {
		status, err := b.Status(cell)
		if err != nil {
			return false, err
		}
		if status != OnFire {
			return false, nil
		}
	}
	return true, nil
}

// KillShip blocks every Free cell in the ship's bounding box grown by one
// cell on each side (clipped to the grid), then marks the ship's own cells
// Destructed. Cells of other ships are never touched. Callers apply it once
// per ship, right after ShipDestroyed turns true.
func (b *Board) KillShip(ship Ship) error {
	if len(ship.Cells) == 0 {
		return apperrors.New(apperrors.CodeShipInvalid, "ship has no cells")
	}
	for _, cell := range ship.Cells {
		if !cell.InBounds() {
			return outOfBounds(cell)
		}
	}

	minRow, minCol, maxRow, maxCol := bounds(ship)
	for row := max(minRow-1, 0); row <= min(maxRow+1, FieldSize-1); row++ {
		for col := max(minCol-1, 0); col <= min(maxCol+1, FieldSize-1); col++ {
			if b.cells[row][col] == Free {
				b.cells[row][col] = Blocked
			}
		}
	}
	for _, cell := range ship.Cells {
		b.cells[cell.Row][cell.Col] = Destructed
	}
	return nil
}

// ShipAt returns the placed ship occupying cell, if any.
func (b *Board) ShipAt(cell Cell) (Ship, bool) {
	for _, ship := range b.ships {
		if ship.Contains(cell) {
			return ship, true
		}
	}
	return Ship{}, false
}

// Ships returns a copy of the placed ships.
func (b *Board) Ships() []Ship {
	out := make([]Ship, len(b.ships))
	for i, ship := range b.ships {
		out[i] = Ship{Cells: append([]Cell(nil), ship.Cells...)}
	}
	return out
}

// AllShipsDestroyed reports whether no ship cell is left unsunk, i.e. no
// cell is Occupied or OnFire.
func (b *Board) AllShipsDestroyed() bool {
	for row := range b.cells {
		for _, status := range b.cells[row] {
			if status == Occupied || status == OnFire {
				return false
			}
		}
	}
	return true
}

// Grid returns a copy of every cell state, indexed [row][col].
func (b *Board) Grid() [FieldSize][FieldSize]CellStatus {
	return b.cells
}

// String renders the board for logs and debugging:
// ~ free, S occupied, ! on fire, X destructed, O blocked.
func (b *Board) String() string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 2, 0, 1, ' ', 0)

	fmt.Fprint(w, "\t")
	for col := 0; col < FieldSize; col++ {
		fmt.Fprint(w, strconv.Itoa(col)+"\t")
	}
	fmt.Fprintln(w)
	for row := 0; row < FieldSize; row++ {
		fmt.Fprint(w, strconv.Itoa(row)+"\t")
		for col := 0; col < FieldSize; col++ {
			fmt.Fprint(w, glyph(b.cells[row][col])+"\t")
		}
		fmt.Fprintln(w)
	}
	_ = w.Flush()
	return buf.String()
}

func glyph(status CellStatus) string {
	switch status {
	case Occupied:
		return "S"
	case OnFire:
		return "!"
	case Destructed:
		return "X"
	case Blocked:
		return "O"
	default:
		return "~"
	}
}

func bounds(ship Ship) (minRow, minCol, maxRow, maxCol int) {
	minRow, minCol = ship.Cells[0].Row, ship.Cells[0].Col
	maxRow, maxCol = minRow, minCol
	for _, c := range ship.Cells[1:] {
		minRow, maxRow = min(minRow, c.Row), max(maxRow, c.Row)
		minCol, maxCol = min(minCol, c.Col), max(maxCol, c.Col)
	}
	return minRow, minCol, maxRow, maxCol
}

func outOfBounds(cell Cell) error {
	return apperrors.WithMetadata(
		apperrors.CodeCellOutOfBounds,
		fmt.Sprintf("cell %s is out of bounds", cell),
		cellMetadata(cell),
	)
}

func cellMetadata(cell Cell) map[string]string {
	return map[string]string{
		"Row": strconv.Itoa(cell.Row),
		"Col": strconv.Itoa(cell.Col),
	}
}
