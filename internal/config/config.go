// Package config loads runtime settings from XRELEASE_* environment variables.
package config

import (
	"github.com/cristalhq/aconfig"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	zerologadapter "github.com/ochairo/xrelease/internal/external-adapters/zerolog"
)

// EnvPrefix is prepended to every setting's environment variable
const EnvPrefix = "XRELEASE"

// Config describes the runtime settings. Command-line flags override them.
type Config struct {
	Manifest  string `env:"CONFIG" default:"release.yml" usage:"Path to the release manifest"`
	OutputDir string `env:"OUTPUT_DIR" default:"releases" usage:"Directory for staging directories and archives"`
	Jobs      int    `env:"JOBS" default:"1" usage:"Number of targets built concurrently"`
	LogLevel  string `env:"LOG_LEVEL" default:"info" usage:"Log level (debug, info, warn or error)"`
	LogJSON   bool   `env:"LOG_JSON" default:"false" usage:"Output JSONND instead of pretty console messages"`
}

// Loader initializes an empty config object and returns a new Loader for this object
func Loader() (*Config, *aconfig.Loader) {
	cfg := Config{}
	return &cfg, aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: EnvPrefix,
		SkipFlags: true,
		SkipFiles: true,
	})
}

// Load reads defaults and the environment, then validates the result
func Load() (*Config, error) {
	cfg, loader := Loader()
	if err := loader.Load(); err != nil {
		return nil, eris.Wrap(err, "failed to load settings")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate verifies that all config fields have valid values
func (cfg *Config) Validate() error {
	if cfg.Manifest == "" {
		return eris.New("Invalid value for XRELEASE_CONFIG: must not be empty")
	}
	if cfg.OutputDir == "" {
		return eris.New("Invalid value for XRELEASE_OUTPUT_DIR: must not be empty")
	}
	if cfg.Jobs < 1 {
		return eris.Errorf("Invalid value for XRELEASE_JOBS: %d (must be at least 1)", cfg.Jobs)
	}
	if _, err := zerologadapter.ParseLevel(cfg.LogLevel); err != nil {
		return eris.Wrap(err, "Invalid value for XRELEASE_LOG_LEVEL")
	}
	return nil
}

// Level converts the LogLevel field to a zerolog.Level
func (cfg *Config) Level() zerolog.Level {
	level, err := zerologadapter.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
