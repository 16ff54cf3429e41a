package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from the process environment using `env` struct tags.
// Defaults come from `envDefault`; parse failures (bad ints, durations,
// missing required vars) come back as a single wrapped error.
//
//	type ServerConfig struct {
//	    Port        int           `env:"HTTP_PORT" envDefault:"8080"`
//	    IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("load config from environment: %w", err)
	}
	return nil
}
