package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aledsdavies/cadence/runtime/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, session.DefaultRestartThreshold, cfg.RestartThreshold())
	assert.Equal(t, session.DefaultCheckpointInterval, cfg.CheckpointInterval())
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
speech:
  command: [espeak, "{text}"]
audio:
  command: [aplay, -q]
  resources:
    whistle: /usr/share/sounds/whistle.wav
history:
  enabled: false
session:
  restart_threshold: 5s
  checkpoint_interval: 1m 30s
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"espeak", "{text}"}, cfg.Speech.Command)
	assert.Equal(t, []string{"aplay", "-q"}, cfg.Audio.Command)
	assert.Equal(t, "/usr/share/sounds/whistle.wav", cfg.Audio.Resources["whistle"])
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, 5*time.Second, cfg.RestartThreshold())
	assert.Equal(t, 90*time.Second, cfg.CheckpointInterval())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, "log:\n  level: error\n")
	t.Setenv("CADENCE_LOG_LEVEL", "info")
	t.Setenv("CADENCE_HISTORY_PATH", "/tmp/elsewhere.db")
	t.Setenv("CADENCE_HISTORY_ENABLED", "false")
	t.Setenv("CADENCE_SPEECH_COMMAND", "say -v Alex")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "/tmp/elsewhere.db", cfg.History.Path)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, []string{"say", "-v", "Alex"}, cfg.Speech.Command)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "unknown level",
			content: "log:\n  level: verbose\n",
			errMsg:  "/log/level",
		},
		{
			name:    "bad duration",
			content: "session:\n  restart_threshold: soon\n",
			errMsg:  "/session/restart_threshold",
		},
		{
			name:    "unknown key",
			content: "colour: always\n",
			errMsg:  "colour",
		},
		{
			name:    "empty resource",
			content: "audio:\n  resources:\n    whistle: \"\"\n",
			errMsg:  "/audio/resources/whistle",
		},
		{
			name:    "bad version",
			content: "min_version: latest\n",
			errMsg:  "/min_version",
		},
		{
			name:    "malformed yaml",
			content: "log: [\n",
			errMsg:  "parsing config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadConfigMinVersion(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "min_version: 0.1.0\n"))
	require.NoError(t, err)

	_, err = LoadConfig(writeConfig(t, "min_version: v0.1.0\n"))
	require.NoError(t, err)

	_, err = LoadConfig(writeConfig(t, "min_version: 99.0.0\n"))
	var cliErr *CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Contains(t, cliErr.Message, "requires cadence 99.0.0")
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger(os.Stderr, "debug", "json")
	require.NoError(t, err)

	_, err = newLogger(os.Stderr, "loud", "text")
	assert.Error(t, err)
}
