// Package server wires the match registry, its websocket gateway, the
// inspection gRPC API and their storage into one process.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/louisbranch/seabattle/internal/platform/timeouts"
	"github.com/louisbranch/seabattle/internal/services/match/api/grpc/inspect"
	"github.com/louisbranch/seabattle/internal/services/match/gateway/ws"
	"github.com/louisbranch/seabattle/internal/services/match/lobby"
	"github.com/louisbranch/seabattle/internal/services/match/notify"
	"github.com/louisbranch/seabattle/internal/services/match/observability/audit"
	"github.com/louisbranch/seabattle/internal/services/match/outcome"
	"github.com/louisbranch/seabattle/internal/services/match/play"
	"github.com/louisbranch/seabattle/internal/services/match/registry"
	"github.com/louisbranch/seabattle/internal/services/match/storage/sqlite"
	"github.com/louisbranch/seabattle/internal/services/match/watcher"
)

// WebsocketPath is where players connect.
const WebsocketPath = "/ws"

// Config defines the inputs for the match process.
type Config struct {
	HTTPAddr       string
	GRPCAddr       string
	DBPath         string
	Codec          string
	JWTSecret      string
	WatchInterval  time.Duration
	MaxConnections int
	RedisURL       string
	LogLevel       string

	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	// Logger replaces the logger built from LogLevel.
	Logger *zap.Logger
}

// Server hosts the match HTTP/websocket surface and the inspection gRPC API.
type Server struct {
	logger          *zap.Logger
	shutdownTimeout time.Duration

	httpListener net.Listener
	grpcListener net.Listener
	httpServer   *http.Server
	grpcServer   *grpc.Server
	health       *health.Server

	store     *sqlite.Store
	publisher *outcome.RedisPublisher
	registry  *registry.Registry
	gateway   *ws.Gateway
	watcher   *watcher.Watcher
}

// NewServer opens storage, binds both listeners and composes the match
// services. Close releases everything NewServer acquired.
func NewServer(ctx context.Context, cfg Config) (_ *Server, err error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, errors.New("http address is required")
	}
	if strings.TrimSpace(cfg.GRPCAddr) == "" {
		return nil, errors.New("grpc address is required")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = timeouts.Shutdown
	}
	if cfg.WatchInterval <= 0 {
		cfg.WatchInterval = watcher.DefaultInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger, err = NewLogger(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
	}
	codec, err := notify.ParseCodec(cfg.Codec)
	if err != nil {
		return nil, err
	}
	verifier, err := ws.NewTokenVerifier(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("player tokens: %w", err)
	}

	s := &Server{logger: logger, shutdownTimeout: cfg.ShutdownTimeout}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	s.store, err = openStore(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	sinks := []outcome.Sink{outcome.StoreSink(s.store)}
	if strings.TrimSpace(cfg.RedisURL) != "" {
		s.publisher, err = outcome.NewRedisPublisher(ctx, cfg.RedisURL, codec.Name())
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s.publisher)
	}
	outcomes := outcome.NewRecorder(logger.Named("outcome"), sinks...)
	emitter := audit.NewEmitter(s.store, logger.Named("audit"))

	s.gateway, err = ws.New(verifier,
		ws.WithCodec(codec),
		ws.WithLogger(logger.Named("gateway")),
	)
	if err != nil {
		return nil, err
	}
	s.registry, err = registry.New(s.gateway,
		registry.WithLogger(logger.Named("registry")),
		registry.WithReporter(emitter),
		registry.WithRecorder(emitter),
	)
	if err != nil {
		return nil, err
	}
	s.gateway.Bind(
		lobby.NewQueue(s.registry, logger.Named("lobby")),
		play.NewHandler(s.registry, s.gateway, outcomes, logger.Named("play")),
	)
	s.watcher = watcher.New(s.registry, s.gateway,
		watcher.WithLogger(logger.Named("watcher")),
		watcher.WithOutcomes(outcomes),
		watcher.WithRecorder(emitter),
		watcher.WithInterval(cfg.WatchInterval),
	)

	s.httpListener, err = net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
	}
	if cfg.MaxConnections > 0 {
		s.httpListener = netutil.LimitListener(s.httpListener, cfg.MaxConnections)
	}
	mux := http.NewServeMux()
	mux.Handle(WebsocketPath, s.gateway)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	s.grpcListener, err = net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
	}
	s.grpcServer = grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	s.health = health.NewServer()
	inspect.RegisterInspectorServer(s.grpcServer, inspect.NewService(s.registry, s.store))
	grpc_health_v1.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(inspect.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return s, nil
}

// Run creates and serves a match server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	server, err := NewServer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init match server: %w", err)
	}
	defer server.Close()

	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("serve match: %w", err)
	}
	return nil
}

// HTTPAddr returns the bound websocket listener address.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// GRPCAddr returns the bound inspection listener address.
func (s *Server) GRPCAddr() string {
	if s == nil || s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}

// Registry returns the match registry the server drives.
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

// Serve runs the HTTP server, the gRPC server and the connection watcher
// until ctx ends or one of them fails.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	s.logger.Info("match server listening",
		zap.String("http_addr", s.HTTPAddr()),
		zap.String("grpc_addr", s.GRPCAddr()),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.httpServer.Serve(s.httpListener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	})
	g.Go(func() error {
		err := s.grpcServer.Serve(s.grpcListener)
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	})
	g.Go(func() error {
		return s.watcher.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		s.health.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		err := s.httpServer.Shutdown(shutdownCtx)
		s.gateway.CloseAll()
		s.grpcServer.GracefulStop()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.grpcListener != nil {
		_ = s.grpcListener.Close()
	}
	if s.httpListener != nil {
		_ = s.httpListener.Close()
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.logger.Warn("close outcome publisher", zap.Error(err))
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("close match store", zap.Error(err))
		}
	}
	_ = s.logger.Sync()
}

// NewLogger builds a production JSON logger at level.
func NewLogger(level string) (*zap.Logger, error) {
	level = strings.TrimSpace(level)
	if level == "" {
		level = "info"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

func openStore(ctx context.Context, path string) (*sqlite.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = filepath.Join("data", "seabattle.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open match sqlite store: %w", err)
	}
	return store, nil
}
