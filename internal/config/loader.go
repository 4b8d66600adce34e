// Package config loads the .courtsim/config.yaml file. A missing file means
// defaults; a malformed or invalid file is an error, never a silent fallback.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default values for Config.
const (
	DefaultRunSeconds      = 2400
	DefaultAlertCadenceMs  = 28000
	DefaultCriticalGraceMs = 60000
	DefaultStageSeconds    = 60
	DefaultNavigateDelayMs = 1000
	DefaultServerPort      = 8787
	DefaultDBPath          = ".courtsim/courtsim.db"
)

// DefaultGameConfig returns game settings with default values.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		RunSeconds:      DefaultRunSeconds,
		AlertCadenceMs:  DefaultAlertCadenceMs,
		CriticalGraceMs: DefaultCriticalGraceMs,
		StageSeconds:    DefaultStageSeconds,
		NavigateDelayMs: DefaultNavigateDelayMs,
	}
}

// DefaultServerConfig returns server settings with default values.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:   DefaultServerPort,
		DBPath: DefaultDBPath,
	}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Game:   DefaultGameConfig(),
		Server: DefaultServerConfig(),
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// LoadConfig reads and parses .courtsim/config.yaml from the given base path.
// If the file doesn't exist, returns default config. Applies defaults for any
// missing fields.
func LoadConfig(basePath string) (*Config, error) {
	configPath := filepath.Join(basePath, ".courtsim", "config.yaml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ValidateConfig checks that all config values are valid.
func ValidateConfig(cfg *Config) error {
	if cfg.Game.RunSeconds <= 0 {
		return ValidationError{Field: "game.run_seconds", Message: "must be positive"}
	}
	if cfg.Game.AlertCadenceMs <= 0 {
		return ValidationError{Field: "game.alert_cadence_ms", Message: "must be positive"}
	}
	if cfg.Game.CriticalGraceMs <= 0 {
		return ValidationError{Field: "game.critical_grace_ms", Message: "must be positive"}
	}
	if cfg.Game.StageSeconds <= 0 {
		return ValidationError{Field: "game.stage_seconds", Message: "must be positive"}
	}
	if cfg.Game.NavigateDelayMs < 0 {
		return ValidationError{Field: "game.navigate_delay_ms", Message: "must not be negative"}
	}
	return ValidateServerConfig(&cfg.Server)
}

// ValidateServerConfig checks that server config values are valid.
func ValidateServerConfig(cfg *ServerConfig) error {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return ValidationError{Field: "server.port", Message: "must be between 0 and 65535"}
	}
	if cfg.DBPath == "" {
		return ValidationError{Field: "server.db_path", Message: "required field is empty"}
	}
	return nil
}
