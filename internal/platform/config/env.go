package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every variable read by the seabattle binaries.
const EnvPrefix = "SEABATTLE_"

// ParseEnv loads configuration from SEABATTLE_-prefixed environment variables.
//
// Struct tags name the variable without the prefix, so `env:"HTTP_ADDR"` reads
// SEABATTLE_HTTP_ADDR.
func ParseEnv(target any) error {
	return ParseEnvWithPrefix(target, EnvPrefix)
}

// ParseEnvWithPrefix loads configuration using an explicit variable prefix.
func ParseEnvWithPrefix(target any, prefix string) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
