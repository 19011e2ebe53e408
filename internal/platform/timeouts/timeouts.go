// Package timeouts defines shared timeout constants used across the match
// service so the HTTP, websocket and gRPC surfaces agree on their budgets.
package timeouts

import "time"

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long servers wait for in-flight work during graceful
// shutdown.
const Shutdown = 5 * time.Second

// WebsocketWrite caps a single notification write to a player connection.
const WebsocketWrite = 5 * time.Second

// WebsocketPong is how long a connection may stay silent before it is
// considered gone.
const WebsocketPong = 60 * time.Second

// WebsocketPing is the keepalive period; it must be shorter than WebsocketPong.
const WebsocketPing = (WebsocketPong * 9) / 10

// GRPCDial caps the wait time when dialing a gRPC peer.
const GRPCDial = 2 * time.Second
