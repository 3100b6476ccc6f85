package main

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aledsdavies/cadence/core/types"
	"github.com/aledsdavies/cadence/runtime/history"
	"github.com/aledsdavies/cadence/runtime/parser"
	"github.com/aledsdavies/cadence/runtime/session"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var configSchema string

// Config is the cadence configuration file.
type Config struct {
	MinVersion string        `yaml:"min_version" json:"min_version,omitempty"`
	Log        LogConfig     `yaml:"log" json:"log"`
	Speech     SpeechConfig  `yaml:"speech" json:"speech"`
	Audio      AudioConfig   `yaml:"audio" json:"audio"`
	History    HistoryConfig `yaml:"history" json:"history"`
	Session    SessionConfig `yaml:"session" json:"session"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level,omitempty"`
	Format string `yaml:"format" json:"format,omitempty"`
}

type SpeechConfig struct {
	Command []string `yaml:"command" json:"command,omitempty"`
}

type AudioConfig struct {
	Command   []string          `yaml:"command" json:"command,omitempty"`
	Resources map[string]string `yaml:"resources" json:"resources,omitempty"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path,omitempty"`
}

type SessionConfig struct {
	RestartThreshold   string `yaml:"restart_threshold" json:"restart_threshold,omitempty"`
	CheckpointInterval string `yaml:"checkpoint_interval" json:"checkpoint_interval,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Log:     LogConfig{Level: "warn", Format: "text"},
		History: HistoryConfig{Enabled: true, Path: history.DefaultPath()},
		Session: SessionConfig{
			RestartThreshold:   types.Format(session.DefaultRestartThreshold),
			CheckpointInterval: types.Format(session.DefaultCheckpointInterval),
		},
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/cadence/config.yaml, falling
// back to ~/.config.
func DefaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "cadence", "config.yaml")
}

// LoadConfig reads the config file at path, then applies environment
// variable overrides and validates the result. A missing file yields the
// defaults. Env vars use the prefix CADENCE_:
//
//	CADENCE_LOG_LEVEL, CADENCE_LOG_FORMAT, CADENCE_HISTORY_PATH,
//	CADENCE_HISTORY_ENABLED, CADENCE_SPEECH_COMMAND, CADENCE_AUDIO_COMMAND
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CADENCE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CADENCE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("CADENCE_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
	if v := os.Getenv("CADENCE_HISTORY_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.History.Enabled = enabled
		}
	}
	if v := os.Getenv("CADENCE_SPEECH_COMMAND"); v != "" {
		cfg.Speech.Command = strings.Fields(v)
	}
	if v := os.Getenv("CADENCE_AUDIO_COMMAND"); v != "" {
		cfg.Audio.Command = strings.Fields(v)
	}
}

func (c *Config) validate() error {
	schema, err := compileConfigSchema()
	if err != nil {
		return err
	}

	// round-trip through JSON so the validator sees JSON types
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return convertValidationError(err)
	}

	if c.MinVersion != "" && semver.Compare(canonicalVersion(version), canonicalVersion(c.MinVersion)) < 0 {
		return &CLIError{
			Type:    "config",
			Message: fmt.Sprintf("configuration requires cadence %s or newer, this is %s", c.MinVersion, version),
			Hint:    "Upgrade cadence or lower min_version",
		}
	}
	return nil
}

// RestartThreshold returns session.restart_threshold as a duration.
func (c *Config) RestartThreshold() time.Duration {
	return parseConfigDuration(c.Session.RestartThreshold)
}

// CheckpointInterval returns session.checkpoint_interval as a duration.
func (c *Config) CheckpointInterval() time.Duration {
	return parseConfigDuration(c.Session.CheckpointInterval)
}

// parseConfigDuration returns 0, meaning "use the default", for an empty
// value. Values were checked by the schema's duration format.
func parseConfigDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, _ := parser.ParseDuration(s)
	return d
}

func compileConfigSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	// extend, not replace, the standard formats
	if compiler.Formats == nil {
		compiler.Formats = make(map[string]func(any) bool)
	}
	for name, validator := range formatValidators() {
		compiler.Formats[name] = validator
	}
	compiler.LoadURL = func(url string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("$ref not allowed: %s", url)
	}

	const url = "schema://config.json"
	if err := compiler.AddResource(url, strings.NewReader(configSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

func formatValidators() map[string]func(any) bool {
	return map[string]func(any) bool{
		"duration": func(v any) bool {
			s, ok := v.(string)
			if !ok {
				return true // type validation happens separately
			}
			_, err := parser.ParseDuration(s)
			return err == nil
		},
		"semver": func(v any) bool {
			s, ok := v.(string)
			if !ok {
				return true
			}
			return semver.IsValid(canonicalVersion(s))
		},
	}
}

// canonicalVersion accepts versions with or without the "v" prefix that
// semver requires.
func canonicalVersion(s string) string {
	if !strings.HasPrefix(s, "v") {
		return "v" + s
	}
	return s
}

// convertValidationError flattens a schema failure into one line per
// violated keyword, e.g. "/log/level: value must be one of ...".
func convertValidationError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}

	var lines []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			lines = append(lines, loc+": "+e.Message)
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(ve)
	return errors.New(strings.Join(lines, "\n"))
}
