package config

import "time"

// GameConfig tunes a simulation run. All values have defaults; a scenario
// bias selected at runtime may still override cadence and grace.
type GameConfig struct {
	RunSeconds      int `yaml:"run_seconds"`
	AlertCadenceMs  int `yaml:"alert_cadence_ms"`
	CriticalGraceMs int `yaml:"critical_grace_ms"`
	StageSeconds    int `yaml:"stage_seconds"`

	// NavigateDelayMs is the pause between a verdict firing and the switch to
	// the verdict screen. 0 navigates immediately.
	NavigateDelayMs int `yaml:"navigate_delay_ms"`

	Scenario string `yaml:"scenario,omitempty"`

	// ServerURL is the base URL of a courtsim server used for remote
	// scenario options and progress records. Empty means fully offline.
	ServerURL string `yaml:"server_url,omitempty"`
}

func (g GameConfig) RunDuration() time.Duration {
	return time.Duration(g.RunSeconds) * time.Second
}

func (g GameConfig) AlertCadence() time.Duration {
	return time.Duration(g.AlertCadenceMs) * time.Millisecond
}

func (g GameConfig) CriticalGrace() time.Duration {
	return time.Duration(g.CriticalGraceMs) * time.Millisecond
}

func (g GameConfig) StageDuration() time.Duration {
	return time.Duration(g.StageSeconds) * time.Second
}

// NavigateDelay converts the configured delay for the engine, where a
// negative value means navigate immediately and zero means the default.
func (g GameConfig) NavigateDelay() time.Duration {
	if g.NavigateDelayMs <= 0 {
		return -1
	}
	return time.Duration(g.NavigateDelayMs) * time.Millisecond
}

// ServerConfig configures the courtsim API server.
type ServerConfig struct {
	Port   int    `yaml:"port"`
	DBPath string `yaml:"db_path"`

	// OptionsURL, when set, makes the server proxy scenario options from a
	// remote catalog, falling back to the built-in set on failure.
	OptionsURL string `yaml:"options_url,omitempty"`

	// OptionsFile, when set, loads scenario options from a local YAML file
	// and hot-reloads it on change.
	OptionsFile string `yaml:"options_file,omitempty"`
}

// Config represents the .courtsim/config.yaml file.
type Config struct {
	Game   GameConfig   `yaml:"game"`
	Server ServerConfig `yaml:"server"`
}
