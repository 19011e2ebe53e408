// Package playertoken issues signed player tokens for local play and tests.
package playertoken

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/louisbranch/seabattle/internal/platform/config"
	"github.com/louisbranch/seabattle/internal/services/match/domain/match"
	"github.com/louisbranch/seabattle/internal/services/match/gateway/ws"
)

// Config holds configuration for token issuance.
type Config struct {
	Secret   string `env:"JWT_SECRET"`
	PlayerID string
	Username string
	TTL      time.Duration `env:"PLAYER_TOKEN_TTL" envDefault:"24h"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Secret, "secret", cfg.Secret, "HMAC secret shared with the match server")
	fs.StringVar(&cfg.PlayerID, "player-id", cfg.PlayerID, "player id placed in the token subject")
	fs.StringVar(&cfg.Username, "username", cfg.Username, "display name (defaults to the player id)")
	fs.DurationVar(&cfg.TTL, "ttl", cfg.TTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run signs a token for the configured player and writes it to out.
func Run(cfg Config, out io.Writer) error {
	if out == nil {
		return errors.New("output is required")
	}
	verifier, err := ws.NewTokenVerifier(cfg.Secret)
	if err != nil {
		return err
	}
	token, err := verifier.Issue(match.Player{ID: cfg.PlayerID, Username: cfg.Username}, cfg.TTL)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
