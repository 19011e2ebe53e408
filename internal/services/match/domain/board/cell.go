package board

import (
	"fmt"
	"strconv"
)

// FieldSize is the edge length of every board.
const FieldSize = 10

// Cell is a zero-based (row, col) coordinate on a board.
type Cell struct {
	Row int `json:"row" msgpack:"row"`
	Col int `json:"col" msgpack:"col"`
}

// At is shorthand for Cell{Row: row, Col: col}.
func At(row, col int) Cell {
	return Cell{Row: row, Col: col}
}

// InBounds reports whether the cell lies inside a FieldSize x FieldSize grid.
func (c Cell) InBounds() bool {
	return c.Row >= 0 && c.Row < FieldSize && c.Col >= 0 && c.Col < FieldSize
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// CellStatus is the occupancy and fire state of one cell.
//
// Transitions only move forward:
//
//	Free     -> Blocked              (miss, or perimeter of a destroyed ship)
//	Occupied -> OnFire -> Destructed (hit, then whole ship confirmed destroyed)
type CellStatus uint8

const (
	Free CellStatus = iota
	Blocked
	Occupied
	OnFire
	Destructed
)

var statusNames = [...]string{
	Free:       "FREE",
	Blocked:    "BLOCKED",
	Occupied:   "OCCUPIED",
	OnFire:     "ON_FIRE",
	Destructed: "DESTRUCTED",
}

func (s CellStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "CellStatus(" + strconv.Itoa(int(s)) + ")"
}

// Fireable reports whether a shot may still land on a cell in this state.
func (s CellStatus) Fireable() bool {
	return s == Free || s == Occupied
}

// MarshalText encodes the status by name, which both the JSON and msgpack
// notification codecs use.
func (s CellStatus) MarshalText() ([]byte, error) {
	if int(s) >= len(statusNames) {
		return nil, fmt.Errorf("unknown cell status %d", s)
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText decodes a status name.
func (s *CellStatus) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = CellStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown cell status %q", text)
}
