package board

import (
	"encoding/json"
	"math"
	"testing"

	apperrors "github.com/louisbranch/seabattle/internal/platform/errors"
)

func TestNewShipLayout(t *testing.T) {
	horizontal, err := NewShip(At(2, 3), 3, false)
	if err != nil {
		t.Fatalf("horizontal: %v", err)
	}
	if horizontal.Anchor() != At(2, 3) || horizontal.Last() != At(2, 5) {
		t.Fatalf("horizontal = %v", horizontal.Cells)
	}

	vertical, err := NewShip(At(2, 3), 4, true)
	if err != nil {
		t.Fatalf("vertical: %v", err)
	}
	if vertical.Anchor() != At(2, 3) || vertical.Last() != At(5, 3) || vertical.Len() != 4 {
		t.Fatalf("vertical = %v", vertical.Cells)
	}
}

func TestShipValidate(t *testing.T) {
	tests := []struct {
		name string
		ship Ship
		code apperrors.Code
	}{
		{"empty", Ship{}, apperrors.CodeShipInvalid},
		{"out of bounds", Ship{Cells: []Cell{At(0, 9), At(0, 10)}}, apperrors.CodeCellOutOfBounds},
		{"gap", Ship{Cells: []Cell{At(0, 0), At(0, 2)}}, apperrors.CodeShipInvalid},
		{"diagonal", Ship{Cells: []Cell{At(0, 0), At(1, 1)}}, apperrors.CodeShipInvalid},
		{"bent", Ship{Cells: []Cell{At(0, 0), At(0, 1), At(1, 1)}}, apperrors.CodeShipInvalid},
		{"reversed", Ship{Cells: []Cell{At(0, 1), At(0, 0)}}, apperrors.CodeShipInvalid},
	}
	for _, tt := range tests {
		if err := tt.ship.Validate(); !apperrors.IsCode(err, tt.code) {
			t.Fatalf("%s: err = %v, want %s", tt.name, err, tt.code)
		}
	}
	if _, err := NewShip(At(9, 9), 2, true); !apperrors.IsCode(err, apperrors.CodeCellOutOfBounds) {
		t.Fatalf("NewShip off the edge err = %v", err)
	}
	if _, err := NewShip(At(0, 0), 0, true); !apperrors.IsCode(err, apperrors.CodeShipInvalid) {
		t.Fatalf("NewShip zero length err = %v", err)
	}
}

func TestNewShipRejectsOversizedLength(t *testing.T) {
	tests := []struct {
		name     string
		anchor   Cell
		length   int
		vertical bool
	}{
		{"one past the grid", At(0, 0), FieldSize + 1, false},
		{"one past the grid vertical", At(0, 0), FieldSize + 1, true},
		{"max int", At(0, 0), math.MaxInt, false},
		{"max int vertical", At(3, 4), math.MaxInt, true},
		{"anchor outside", At(-1, 0), 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewShip(tt.anchor, tt.length, tt.vertical); !apperrors.IsCode(err, apperrors.CodeCellOutOfBounds) {
				t.Fatalf("err = %v, want %s", err, apperrors.CodeCellOutOfBounds)
			}
		})
	}
	ship, err := NewShip(At(0, 0), FieldSize, true)
	if err != nil {
		t.Fatalf("full-height ship: %v", err)
	}
	if ship.Last() != At(FieldSize-1, 0) {
		t.Fatalf("last = %s", ship.Last())
	}
}

func TestCellStatusText(t *testing.T) {
	for _, status := range []CellStatus{Free, Blocked, Occupied, OnFire, Destructed} {
		raw, err := json.Marshal(status)
		if err != nil {
			t.Fatalf("marshal %s: %v", status, err)
		}
		if string(raw) != `"`+status.String()+`"` {
			t.Fatalf("marshal %s = %s", status, raw)
		}
		var back CellStatus
		if err := json.Unmarshal(raw, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if back != status {
			t.Fatalf("round trip %s = %s", status, back)
		}
	}
	if Free.Fireable() != true || Occupied.Fireable() != true || Blocked.Fireable() || OnFire.Fireable() {
		t.Fatal("unexpected Fireable results")
	}
}
