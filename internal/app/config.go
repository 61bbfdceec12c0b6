package app

import (
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/monox/internal/config"
)

// LogFormats lists the accepted values of Config.LogFormat.
var LogFormats = []string{"text", "json"}

// Config holds the process-level options of one invocation. Everything that
// belongs to the workspace itself lives in config.Model and is resolved by
// NewApp.
type Config struct {
	// ConfigPath is an explicit config file; empty means discovery in Dir.
	ConfigPath string
	// Dir is the working directory used for config discovery and .env.
	Dir string
	// Environ is the process environment in "KEY=value" form.
	Environ   []string
	Overrides config.RuntimeOverrides

	LogFormat       string
	HealthcheckPort int
	EventsURL       string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if !slices.Contains(LogFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, errors.New("healthcheck-port must be between 0 and 65535")
	}
	return &cfg, nil
}
