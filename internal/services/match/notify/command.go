package notify

import "github.com/louisbranch/seabattle/internal/services/match/domain/board"

const (
	TypePlaceShips Type = "place_ships"
	TypeFire       Type = "fire"
)

// ShipPlacement is one ship of a place_ships command.
type ShipPlacement struct {
	Row      int  `json:"row" msgpack:"row"`
	Col      int  `json:"col" msgpack:"col"`
	Length   int  `json:"length" msgpack:"length"`
	Vertical bool `json:"vertical" msgpack:"vertical"`
}

// Command is a player-to-server message. Ships is set for place_ships;
// Row and Col for fire.
type Command struct {
	Type  Type            `json:"type" msgpack:"type"`
	Ships []ShipPlacement `json:"ships,omitempty" msgpack:"ships,omitempty"`
	Row   int             `json:"row" msgpack:"row"`
	Col   int             `json:"col" msgpack:"col"`
}

// Cell returns the fire target.
func (c Command) Cell() board.Cell {
	return board.At(c.Row, c.Col)
}

// Board lays out the placed ships on a fresh board.
func (c Command) Board() (*board.Board, error) {
	ships := make([]board.Ship, 0, len(c.Ships))
	for _, p := range c.Ships {
		ship, err := board.NewShip(board.At(p.Row, p.Col), p.Length, p.Vertical)
		if err != nil {
			return nil, err
		}
		ships = append(ships, ship)
	}
	return board.NewWithShips(ships)
}

// PlaceShipsCommand builds a place_ships command from ships.
func PlaceShipsCommand(ships []board.Ship) Command {
	cmd := Command{Type: TypePlaceShips, Ships: make([]ShipPlacement, 0, len(ships))}
	for _, ship := range ships {
		anchor := ship.Anchor()
		vertical := ship.Len() > 1 && ship.Cells[1].Row != anchor.Row
		cmd.Ships = append(cmd.Ships, ShipPlacement{
			Row:      anchor.Row,
			Col:      anchor.Col,
			Length:   ship.Len(),
			Vertical: vertical,
		})
	}
	return cmd
}

// FireCommand builds a fire command at cell.
func FireCommand(cell board.Cell) Command {
	return Command{Type: TypeFire, Row: cell.Row, Col: cell.Col}
}
