package registry

import (
	"context"

	"github.com/louisbranch/seabattle/internal/services/match/notify"
)

// CloseStatus tells the gateway why a player connection is being closed.
type CloseStatus int

const (
	// CloseNormal ends a connection after the match is over.
	CloseNormal CloseStatus = iota
	// CloseServerError ends a connection the server can no longer serve.
	CloseServerError
)

func (s CloseStatus) String() string {
	switch s {
	case CloseNormal:
		return "normal"
	case CloseServerError:
		return "server_error"
	default:
		return "unknown"
	}
}

// Gateway delivers notifications to connected players.
type Gateway interface {
	// SendMessage delivers n to the player's connection and fails when it
	// could not be written.
	SendMessage(ctx context.Context, playerID string, n notify.Notification) error
	IsConnected(playerID string) bool
	CloseSession(playerID string, status CloseStatus)
}

// Reporter receives notification failures that were swallowed after a state
// transition had already happened.
type Reporter interface {
	Report(ctx context.Context, matchID, playerID, operation string, err error)
}

// Recorder receives session lifecycle events.
type Recorder interface {
	Record(ctx context.Context, eventName, matchID string, attributes map[string]any)
}

type nopReporter struct{}

func (nopReporter) Report(context.Context, string, string, string, error) {}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, string, string, map[string]any) {}
