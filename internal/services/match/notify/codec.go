package notify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/louisbranch/seabattle/internal/services/match/domain/board"
)

const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// Codec encodes notifications and decodes commands for one wire format.
type Codec interface {
	Name() string
	// Binary reports whether frames should be sent as binary messages.
	Binary() bool
	Encode(Notification) ([]byte, error)
	Decode([]byte) (Notification, error)
	EncodeCommand(Command) ([]byte, error)
	DecodeCommand([]byte) (Command, error)
}

// ParseCodec returns the codec registered under name.
func ParseCodec(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", CodecJSON:
		return JSON{}, nil
	case CodecMsgpack:
		return Msgpack{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// wire is the flat representation shared by every codec.
type wire struct {
	Type             Type    `json:"type" msgpack:"type"`
	OpponentUsername *string `json:"opponentUsername,omitempty" msgpack:"opponentUsername,omitempty"`
	IsAttacker       *bool   `json:"isAttacker,omitempty" msgpack:"isAttacker,omitempty"`
	Won              *bool   `json:"won,omitempty" msgpack:"won,omitempty"`
	Row              *int    `json:"row,omitempty" msgpack:"row,omitempty"`
	Col              *int    `json:"col,omitempty" msgpack:"col,omitempty"`
	Status           string  `json:"status,omitempty" msgpack:"status,omitempty"`
	ShipDestroyed    *bool   `json:"shipDestroyed,omitempty" msgpack:"shipDestroyed,omitempty"`
	ByMe             *bool   `json:"byMe,omitempty" msgpack:"byMe,omitempty"`
	Code             string  `json:"code,omitempty" msgpack:"code,omitempty"`
	Message          string  `json:"message,omitempty" msgpack:"message,omitempty"`
}

func toWire(n Notification) (wire, error) {
	switch v := n.(type) {
	case LobbyCreated:
		return wire{Type: TypeLobbyCreated, OpponentUsername: &v.OpponentUsername}, nil
	case GameStarted:
		return wire{Type: TypeGameStarted, IsAttacker: &v.IsAttacker}, nil
	case EndGame:
		return wire{Type: TypeEndGame, Won: &v.Won}, nil
	case ShotResolved:
		return wire{
			Type:          TypeShotResolved,
			Row:           &v.Cell.Row,
			Col:           &v.Cell.Col,
			Status:        v.Status.String(),
			ShipDestroyed: &v.ShipDestroyed,
			ByMe:          &v.ByMe,
		}, nil
	case Error:
		return wire{Type: TypeError, Code: v.Code, Message: v.Message}, nil
	case nil:
		return wire{}, fmt.Errorf("nil notification")
	default:
		return wire{}, fmt.Errorf("unsupported notification %T", n)
	}
}

func fromWire(w wire) (Notification, error) {
	switch w.Type {
	case TypeLobbyCreated:
		return LobbyCreated{OpponentUsername: deref(w.OpponentUsername)}, nil
	case TypeGameStarted:
		return GameStarted{IsAttacker: deref(w.IsAttacker)}, nil
	case TypeEndGame:
		return EndGame{Won: deref(w.Won)}, nil
	case TypeShotResolved:
		var status board.CellStatus
		if err := status.UnmarshalText([]byte(w.Status)); err != nil {
			return nil, err
		}
		return ShotResolved{
			Cell:          board.At(deref(w.Row), deref(w.Col)),
			Status:        status,
			ShipDestroyed: deref(w.ShipDestroyed),
			ByMe:          deref(w.ByMe),
		}, nil
	case TypeError:
		return Error{Code: w.Code, Message: w.Message}, nil
	default:
		return nil, fmt.Errorf("unknown notification type %q", w.Type)
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func checkCommand(cmd Command) (Command, error) {
	switch cmd.Type {
	case TypePlaceShips, TypeFire:
		return cmd, nil
	default:
		return Command{}, fmt.Errorf("unknown command type %q", cmd.Type)
	}
}

// JSON is the default text codec.
type JSON struct{}

func (JSON) Name() string { return CodecJSON }
func (JSON) Binary() bool { return false }

func (JSON) Encode(n Notification) ([]byte, error) {
	w, err := toWire(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

func (JSON) Decode(data []byte) (Notification, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode notification: %w", err)
	}
	return fromWire(w)
}

func (JSON) EncodeCommand(cmd Command) ([]byte, error) {
	return json.Marshal(cmd)
}

func (JSON) DecodeCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	return checkCommand(cmd)
}

// Msgpack is the compact binary codec.
type Msgpack struct{}

func (Msgpack) Name() string { return CodecMsgpack }
func (Msgpack) Binary() bool { return true }

func (Msgpack) Encode(n Notification) ([]byte, error) {
	w, err := toWire(n)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(&w)
}

func (Msgpack) Decode(data []byte) (Notification, error) {
	var w wire
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode notification: %w", err)
	}
	return fromWire(w)
}

func (Msgpack) EncodeCommand(cmd Command) ([]byte, error) {
	return msgpack.Marshal(&cmd)
}

func (Msgpack) DecodeCommand(data []byte) (Command, error) {
	var cmd Command
	if err := msgpack.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	return checkCommand(cmd)
}
