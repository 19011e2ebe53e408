package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/louisbranch/seabattle/internal/platform/timeouts"
	"github.com/louisbranch/seabattle/internal/services/match/domain/match"
)

// maxMessageSize bounds a single inbound command frame.
const maxMessageSize = 16 << 10

// conn is one authenticated player connection. Writes are serialized;
// gorilla allows a single concurrent writer per connection.
type conn struct {
	player match.Player
	locale string
	ws     *websocket.Conn

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

func newConn(player match.Player, locale string, ws *websocket.Conn) *conn {
	return &conn{player: player, locale: locale, ws: ws, closed: make(chan struct{})}
}

func (c *conn) write(ctx context.Context, messageType int, data []byte) error {
	deadline := time.Now().Add(timeouts.WebsocketWrite)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, data)
}

// close sends a close frame with code and drops the socket. Only the first
// call has any effect.
func (c *conn) close(code int, text string) {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, text),
			time.Now().Add(timeouts.WebsocketWrite))
		c.writeMu.Unlock()
		_ = c.ws.Close()
		close(c.closed)
	})
}

func (c *conn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// keepalive pings the peer until the connection closes. A peer that stops
// answering lets the read deadline expire, which ends the read loop.
func (c *conn) keepalive(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-c.closed:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(timeouts.WebsocketWrite))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (c *conn) extendReadDeadline(wait time.Duration) error {
	return c.ws.SetReadDeadline(time.Now().Add(wait))
}
