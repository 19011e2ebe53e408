// Package notify defines the messages exchanged with players over the
// messaging gateway and the codecs that put them on the wire.
//
// Every message is a flat object with a "type" discriminator, e.g.
//
//	{"type":"game_started","isAttacker":true}
package notify

import "github.com/louisbranch/seabattle/internal/services/match/domain/board"

// Type discriminates notifications and commands on the wire.
type Type string

const (
	TypeLobbyCreated Type = "lobby_created"
	TypeGameStarted  Type = "game_started"
	TypeEndGame      Type = "end_game"
	TypeShotResolved Type = "shot_resolved"
	TypeError        Type = "error"
)

// Notification is a server-to-player message.
type Notification interface {
	Type() Type
}

// LobbyCreated tells a player they were paired, naming the other player.
type LobbyCreated struct {
	OpponentUsername string
}

// GameStarted tells a player the match is active and which side they are on.
type GameStarted struct {
	IsAttacker bool
}

// EndGame tells a player whether they won.
type EndGame struct {
	Won bool
}

// ShotResolved reports one resolved shot to both players. ByMe is true for
// the shooter.
type ShotResolved struct {
	Cell          board.Cell
	Status        board.CellStatus
	ShipDestroyed bool
	ByMe          bool
}

// Error reports a rejected command back to its sender.
type Error struct {
	Code    string
	Message string
}

func (LobbyCreated) Type() Type { return TypeLobbyCreated }
func (GameStarted) Type() Type  { return TypeGameStarted }
func (EndGame) Type() Type      { return TypeEndGame }
func (ShotResolved) Type() Type { return TypeShotResolved }
func (Error) Type() Type        { return TypeError }
