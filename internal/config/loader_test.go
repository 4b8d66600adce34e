package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	cfgDir := filepath.Join(dir, ".courtsim")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(content), 0o644))
}

func TestLoadConfig_Default(t *testing.T) {
	t.Parallel()

	// Temp directory without a config file: defaults apply.
	tmpDir := t.TempDir()

	cfg, err := LoadConfig(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, DefaultRunSeconds, cfg.Game.RunSeconds)
	assert.Equal(t, DefaultAlertCadenceMs, cfg.Game.AlertCadenceMs)
	assert.Equal(t, DefaultCriticalGraceMs, cfg.Game.CriticalGraceMs)
	assert.Equal(t, DefaultStageSeconds, cfg.Game.StageSeconds)
	assert.Equal(t, DefaultNavigateDelayMs, cfg.Game.NavigateDelayMs)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultDBPath, cfg.Server.DBPath)
}

func TestLoadConfig_ValidFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `game:
  run_seconds: 600
  alert_cadence_ms: 10000
  critical_grace_ms: 30000
  stage_seconds: 45
  navigate_delay_ms: 500
  scenario: opt-sec
server:
  port: 9000
  db_path: /tmp/court.db
  options_url: http://localhost:3000
`)

	cfg, err := LoadConfig(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 600, cfg.Game.RunSeconds)
	assert.Equal(t, 10000, cfg.Game.AlertCadenceMs)
	assert.Equal(t, 30000, cfg.Game.CriticalGraceMs)
	assert.Equal(t, 45, cfg.Game.StageSeconds)
	assert.Equal(t, 500, cfg.Game.NavigateDelayMs)
	assert.Equal(t, "opt-sec", cfg.Game.Scenario)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/tmp/court.db", cfg.Server.DBPath)
	assert.Equal(t, "http://localhost:3000", cfg.Server.OptionsURL)
}

func TestLoadConfig_PartialFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	// Only override the run length; the rest keeps defaults.
	writeConfig(t, tmpDir, `game:
  run_seconds: 1200
`)

	cfg, err := LoadConfig(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 1200, cfg.Game.RunSeconds)
	assert.Equal(t, DefaultAlertCadenceMs, cfg.Game.AlertCadenceMs)
	assert.Equal(t, DefaultCriticalGraceMs, cfg.Game.CriticalGraceMs)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "game: [not a mapping")

	_, err := LoadConfig(tmpDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{
			name:    "zero run seconds",
			content: "game:\n  run_seconds: 0\n",
			field:   "game.run_seconds",
		},
		{
			name:    "negative cadence",
			content: "game:\n  alert_cadence_ms: -5\n",
			field:   "game.alert_cadence_ms",
		},
		{
			name:    "negative navigate delay",
			content: "game:\n  navigate_delay_ms: -1\n",
			field:   "game.navigate_delay_ms",
		},
		{
			name:    "port out of range",
			content: "server:\n  port: 70000\n",
			field:   "server.port",
		},
		{
			name:    "empty db path",
			content: "server:\n  db_path: \"\"\n",
			field:   "server.db_path",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tmpDir := t.TempDir()
			writeConfig(t, tmpDir, tt.content)

			_, err := LoadConfig(tmpDir)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestGameConfig_Durations(t *testing.T) {
	t.Parallel()

	g := DefaultGameConfig()
	assert.Equal(t, 40*time.Minute, g.RunDuration())
	assert.Equal(t, 28*time.Second, g.AlertCadence())
	assert.Equal(t, 60*time.Second, g.CriticalGrace())
	assert.Equal(t, 60*time.Second, g.StageDuration())
	assert.Equal(t, time.Second, g.NavigateDelay())

	// An explicit zero maps to the engine's immediate-navigation value.
	g.NavigateDelayMs = 0
	assert.Negative(t, g.NavigateDelay())
}
