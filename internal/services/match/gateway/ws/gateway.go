// Package ws carries match notifications to players over websockets and
// feeds their commands back into the game loop.
//
// A player connects with a signed token, joins the pairing queue and stays
// attached until the socket drops or the match closes it. Only one socket
// per player is accepted.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	apperrors "github.com/louisbranch/seabattle/internal/platform/errors"
	"github.com/louisbranch/seabattle/internal/platform/errors/i18n"
	"github.com/louisbranch/seabattle/internal/platform/timeouts"
	"github.com/louisbranch/seabattle/internal/services/match/domain/match"
	"github.com/louisbranch/seabattle/internal/services/match/notify"
	"github.com/louisbranch/seabattle/internal/services/match/registry"
)

// Lobby is the pairing queue connected players wait in.
type Lobby interface {
	Join(ctx context.Context, p match.Player) (*match.Match, error)
	Leave(playerID string)
}

// Dispatcher applies a decoded command for a player.
type Dispatcher interface {
	Handle(ctx context.Context, playerID string, cmd notify.Command) error
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the gateway logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithCodec selects the frame codec. JSON is used by default.
func WithCodec(codec notify.Codec) Option {
	return func(g *Gateway) {
		if codec != nil {
			g.codec = codec
		}
	}
}

// WithCheckOrigin replaces the upgrader origin check.
func WithCheckOrigin(check func(*http.Request) bool) Option {
	return func(g *Gateway) {
		g.upgrader.CheckOrigin = check
	}
}

// WithPingPeriod overrides the keepalive period.
func WithPingPeriod(period time.Duration) Option {
	return func(g *Gateway) {
		if period > 0 {
			g.pingPeriod = period
		}
	}
}

// Gateway is the websocket implementation of registry.Gateway.
type Gateway struct {
	verifier   *TokenVerifier
	codec      notify.Codec
	logger     *zap.Logger
	upgrader   websocket.Upgrader
	pingPeriod time.Duration

	lobby      Lobby
	dispatcher Dispatcher

	mu    sync.RWMutex
	conns map[string]*conn
}

var _ registry.Gateway = (*Gateway)(nil)

// New creates a gateway that authenticates players with verifier. Bind must
// be called before it serves connections.
func New(verifier *TokenVerifier, opts ...Option) (*Gateway, error) {
	if verifier == nil {
		return nil, errors.New("token verifier is required")
	}
	g := &Gateway{
		verifier:   verifier,
		codec:      notify.JSON{},
		logger:     zap.NewNop(),
		pingPeriod: timeouts.WebsocketPing,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		conns: make(map[string]*conn),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

// Bind attaches the pairing queue and the command dispatcher. The registry
// needs the gateway before either exists, so they are wired afterwards.
func (g *Gateway) Bind(lobby Lobby, dispatcher Dispatcher) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lobby = lobby
	g.dispatcher = dispatcher
}

// ServeHTTP authenticates the request, upgrades it and runs the connection
// until it closes.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	lobby, dispatcher := g.bound()
	if lobby == nil || dispatcher == nil {
		http.Error(w, "gateway not ready", http.StatusServiceUnavailable)
		return
	}
	locale := i18n.ResolveLocale(r.Header.Get("Accept-Language"))

	player, err := g.verifier.Verify(tokenFromRequest(r))
	if err != nil {
		g.logger.Debug("handshake rejected", zap.Error(err))
		http.Error(w, apperrors.Localize(err, locale), http.StatusUnauthorized)
		return
	}
	if g.IsConnected(player.ID) {
		http.Error(w, "player already connected", http.StatusConflict)
		return
	}

	socket, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		g.logger.Debug("upgrade failed", zap.String("player_id", player.ID), zap.Error(err))
		return
	}
	c := newConn(player, locale, socket)
	if !g.attach(c) {
		c.close(websocket.ClosePolicyViolation, "player already connected")
		return
	}
	defer g.detach(c)

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	g.logger.Info("player connected",
		zap.String("player_id", player.ID),
		zap.String("locale", locale),
	)
	go c.keepalive(g.pingPeriod)

	if _, err := lobby.Join(ctx, player); err != nil {
		g.reject(ctx, c, err)
		c.close(websocket.ClosePolicyViolation, string(apperrors.CodeOf(err)))
		return
	}
	g.readLoop(ctx, c, dispatcher)
}

func (g *Gateway) readLoop(ctx context.Context, c *conn, dispatcher Dispatcher) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.extendReadDeadline(timeouts.WebsocketPong)
	c.ws.SetPongHandler(func(string) error {
		return c.extendReadDeadline(timeouts.WebsocketPong)
	})
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !c.isClosed() {
				g.logger.Debug("connection lost", zap.String("player_id", c.player.ID), zap.Error(err))
			}
			return
		}
		_ = c.extendReadDeadline(timeouts.WebsocketPong)

		cmd, err := g.codec.DecodeCommand(data)
		if err != nil {
			g.reject(ctx, c, apperrors.Wrap(apperrors.CodeCommandInvalid, "decode command", err))
			continue
		}
		if err := dispatcher.Handle(ctx, c.player.ID, cmd); err != nil {
			g.reject(ctx, c, err)
		}
	}
}

// reject relays err to the player as a localized error notification.
func (g *Gateway) reject(ctx context.Context, c *conn, err error) {
	code := apperrors.CodeOf(err)
	g.logger.Debug("command rejected",
		zap.String("player_id", c.player.ID),
		zap.String("code", string(code)),
		zap.Error(err),
	)
	n := notify.Error{Code: string(code), Message: apperrors.Localize(err, c.locale)}
	if sendErr := g.writeTo(ctx, c, n); sendErr != nil {
		g.logger.Warn("error notification failed",
			zap.String("player_id", c.player.ID),
			zap.Error(sendErr),
		)
	}
}

// SendMessage encodes n and writes it to the player's socket.
func (g *Gateway) SendMessage(ctx context.Context, playerID string, n notify.Notification) error {
	c, ok := g.lookup(playerID)
	if !ok {
		return fmt.Errorf("player %s is not connected", playerID)
	}
	return g.writeTo(ctx, c, n)
}

// IsConnected reports whether the player has an open socket.
func (g *Gateway) IsConnected(playerID string) bool {
	c, ok := g.lookup(playerID)
	return ok && !c.isClosed()
}

// CloseSession closes the player's socket with the code matching status.
func (g *Gateway) CloseSession(playerID string, status registry.CloseStatus) {
	c, ok := g.lookup(playerID)
	if !ok {
		return
	}
	code, text := closeCode(status)
	g.logger.Debug("closing connection",
		zap.String("player_id", playerID),
		zap.Stringer("status", status),
	)
	c.close(code, text)
}

// CloseAll closes every attached socket. Used on shutdown, since the HTTP
// server does not track hijacked connections.
func (g *Gateway) CloseAll() {
	g.mu.RLock()
	conns := make([]*conn, 0, len(g.conns))
	for _, c := range g.conns {
		conns = append(conns, c)
	}
	g.mu.RUnlock()
	for _, c := range conns {
		c.close(websocket.CloseGoingAway, "server shutting down")
	}
}

// Connected returns the number of attached players.
func (g *Gateway) Connected() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.conns)
}

func (g *Gateway) writeTo(ctx context.Context, c *conn, n notify.Notification) error {
	if c.isClosed() {
		return fmt.Errorf("connection for %s is closed", c.player.ID)
	}
	data, err := g.codec.Encode(n)
	if err != nil {
		return fmt.Errorf("encode %s: %w", n.Type(), err)
	}
	messageType := websocket.TextMessage
	if g.codec.Binary() {
		messageType = websocket.BinaryMessage
	}
	return c.write(ctx, messageType, data)
}

func (g *Gateway) bound() (Lobby, Dispatcher) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lobby, g.dispatcher
}

func (g *Gateway) lookup(playerID string) (*conn, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.conns[playerID]
	return c, ok
}

func (g *Gateway) attach(c *conn) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if existing, ok := g.conns[c.player.ID]; ok && !existing.isClosed() {
		return false
	}
	g.conns[c.player.ID] = c
	return true
}

// detach forgets c and takes the player out of the pairing queue. A match
// the player was in is left to the connection watcher.
func (g *Gateway) detach(c *conn) {
	c.close(websocket.CloseNormalClosure, "")
	g.mu.Lock()
	if g.conns[c.player.ID] == c {
		delete(g.conns, c.player.ID)
	}
	lobby := g.lobby
	g.mu.Unlock()
	if lobby != nil {
		lobby.Leave(c.player.ID)
	}
	g.logger.Info("player disconnected", zap.String("player_id", c.player.ID))
}

func closeCode(status registry.CloseStatus) (int, string) {
	switch status {
	case registry.CloseServerError:
		return websocket.CloseInternalServerErr, "server error"
	default:
		return websocket.CloseNormalClosure, "match over"
	}
}
