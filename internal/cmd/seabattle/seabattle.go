// Package seabattle parses match server flags and composes the process.
package seabattle

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/louisbranch/seabattle/internal/platform/cmd"
	server "github.com/louisbranch/seabattle/internal/services/match/app"
)

// Config holds match server command configuration.
type Config struct {
	HTTPAddr       string        `env:"HTTP_ADDR"       envDefault:":8080"`
	GRPCAddr       string        `env:"GRPC_ADDR"       envDefault:":8082"`
	DBPath         string        `env:"DB_PATH"         envDefault:"data/seabattle.db"`
	Codec          string        `env:"CODEC"           envDefault:"json"`
	JWTSecret      string        `env:"JWT_SECRET"`
	WatchInterval  time.Duration `env:"WATCH_INTERVAL"  envDefault:"2s"`
	MaxConnections int           `env:"MAX_CONNECTIONS" envDefault:"1024"`
	RedisURL       string        `env:"REDIS_URL"`
	LogLevel       string        `env:"LOG_LEVEL"       envDefault:"info"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "websocket HTTP listen address")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "inspection gRPC listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite database path")
	fs.StringVar(&cfg.Codec, "codec", cfg.Codec, "websocket frame codec (json or msgpack)")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "HMAC secret for player tokens")
	fs.DurationVar(&cfg.WatchInterval, "watch-interval", cfg.WatchInterval, "connection watcher sweep interval")
	fs.IntVar(&cfg.MaxConnections, "max-conns", cfg.MaxConnections, "maximum concurrent HTTP connections (0 for no limit)")
	fs.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "redis URL for outcome publishing (empty disables)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the match server and serves until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMatch, func(ctx context.Context) error {
		if err := server.Run(ctx, server.Config{
			HTTPAddr:       cfg.HTTPAddr,
			GRPCAddr:       cfg.GRPCAddr,
			DBPath:         cfg.DBPath,
			Codec:          cfg.Codec,
			JWTSecret:      cfg.JWTSecret,
			WatchInterval:  cfg.WatchInterval,
			MaxConnections: cfg.MaxConnections,
			RedisURL:       cfg.RedisURL,
			LogLevel:       cfg.LogLevel,
		}); err != nil {
			return fmt.Errorf("serve match: %w", err)
		}
		return nil
	})
}
