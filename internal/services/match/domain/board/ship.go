package board

import (
	"fmt"

	apperrors "github.com/louisbranch/seabattle/internal/platform/errors"
)

// Ship is a contiguous run of cells along one row or one column.
// Cells are ordered from the anchor to the last cell.
type Ship struct {
	Cells []Cell `json:"cells" msgpack:"cells"`
}

// NewShip lays out a ship of length cells starting at anchor, extending
// right (horizontal) or down (vertical).
func NewShip(anchor Cell, length int, vertical bool) (Ship, error) {
	if length <= 0 {
		return Ship{}, apperrors.New(apperrors.CodeShipInvalid, fmt.Sprintf("ship length %d must be positive", length))
	}
	if !anchor.InBounds() {
		return Ship{}, outOfBounds(anchor)
	}
	// Clamp before offsetting so a huge length can neither overflow nor
	// size the allocation below.
	if last := offset(anchor, min(length, FieldSize+1)-1, vertical); !last.InBounds() {
		return Ship{}, outOfBounds(last)
	}
	cells := make([]Cell, length)
	for i := range cells {
		cells[i] = offset(anchor, i, vertical)
	}
	ship := Ship{Cells: cells}
	if err := ship.Validate(); err != nil {
		return Ship{}, err
	}
	return ship, nil
}

func offset(anchor Cell, i int, vertical bool) Cell {
	if vertical {
		return Cell{Row: anchor.Row + i, Col: anchor.Col}
	}
	return Cell{Row: anchor.Row, Col: anchor.Col + i}
}

// Anchor is the first cell of the ship.
func (s Ship) Anchor() Cell {
	return s.Cells[0]
}

// Last is the terminal cell of the ship.
func (s Ship) Last() Cell {
	return s.Cells[len(s.Cells)-1]
}

// Len is the number of cells the ship occupies.
func (s Ship) Len() int {
	return len(s.Cells)
}

// Contains reports whether the ship occupies cell.
func (s Ship) Contains(cell Cell) bool {
	for _, c := range s.Cells {
		if c == cell {
			return true
		}
	}
	return false
}

// Validate checks the ship is non-empty, inside the grid and contiguous along
// a single row or column in anchor-to-last order. It does not check spacing
// against other ships.
func (s Ship) Validate() error {
	if len(s.Cells) == 0 {
		return apperrors.New(apperrors.CodeShipInvalid, "ship has no cells")
	}
	for _, c := range s.Cells {
		if !c.InBounds() {
			return outOfBounds(c)
		}
	}
	if len(s.Cells) == 1 {
		return nil
	}
	dr := s.Cells[1].Row - s.Cells[0].Row
	dc := s.Cells[1].Col - s.Cells[0].Col
	if !((dr == 1 && dc == 0) || (dr == 0 && dc == 1)) {
		return apperrors.New(apperrors.CodeShipInvalid, fmt.Sprintf("ship starting at %s is not contiguous", s.Anchor()))
	}
	for i := 2; i < len(s.Cells); i++ {
		prev, cur := s.Cells[i-1], s.Cells[i]
		if cur.Row-prev.Row != dr || cur.Col-prev.Col != dc {
			return apperrors.New(apperrors.CodeShipInvalid, fmt.Sprintf("ship starting at %s is not contiguous", s.Anchor()))
		}
	}
	return nil
}
