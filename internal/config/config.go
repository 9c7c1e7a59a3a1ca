// Package config loads llmsh's own ambient configuration — IPC socket
// path, per-call timeouts, logging, and marker overrides. It deliberately
// does not configure LLM model selection; that belongs to the assistant
// daemon, out of this process's scope (spec.md's Non-goals).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML shape at ~/.llmsh/config.yaml.
type File struct {
	Socket   string         `yaml:"socket,omitempty"`
	LogLevel string         `yaml:"log_level,omitempty"`
	LogFile  string         `yaml:"log_file,omitempty"`
	AutoYolo *bool          `yaml:"auto_yolo,omitempty"`
	Timeouts *TimeoutConfig `yaml:"timeouts,omitempty"`
	Shell    *ShellConfig   `yaml:"shell,omitempty"`
}

// TimeoutConfig overrides spec.md §4.6's default per-call timeouts, in
// milliseconds.
type TimeoutConfig struct {
	LivenessMS        *int `yaml:"liveness_ms,omitempty"`
	SaveContextMS     *int `yaml:"save_context_ms,omitempty"`
	GenerateCommandMS *int `yaml:"generate_command_ms,omitempty"`
	ExitMS            *int `yaml:"exit_ms,omitempty"`
}

// ShellConfig holds per-shell-adapter overrides (marker glyph text).
type ShellConfig struct {
	Glyph string `yaml:"glyph,omitempty"`
}

// duration returns ms as a time.Duration, or def if ms is nil.
func (t *TimeoutConfig) duration(ms *int, def time.Duration) time.Duration {
	if ms == nil {
		return def
	}
	return time.Duration(*ms) * time.Millisecond
}

func (t *TimeoutConfig) Liveness(def time.Duration) time.Duration {
	if t == nil {
		return def
	}
	return t.duration(t.LivenessMS, def)
}

func (t *TimeoutConfig) SaveContext(def time.Duration) time.Duration {
	if t == nil {
		return def
	}
	return t.duration(t.SaveContextMS, def)
}

func (t *TimeoutConfig) GenerateCommand(def time.Duration) time.Duration {
	if t == nil {
		return def
	}
	return t.duration(t.GenerateCommandMS, def)
}

func (t *TimeoutConfig) Exit(def time.Duration) time.Duration {
	if t == nil {
		return def
	}
	return t.duration(t.ExitMS, def)
}

const (
	legacyConfigPath = ".llmsh.yaml"
	configDirName    = ".llmsh"
	configFileName   = "config.yaml"
)

// Load reads ~/.llmsh/config.yaml, falling back to the legacy
// ~/.llmsh.yaml path, tolerant of a missing file — matching the
// teacher's loadConfig (new-path-first, old-path-fallback, never fail
// the program over a missing or unreadable config).
func Load() (*File, error) {
	return LoadFrom("")
}

// LoadFrom reads the config from an explicit path (e.g. from a --config
// flag) when given, otherwise falls back to Load's default dual-path
// lookup. An explicit path that doesn't exist is an error, unlike the
// tolerant default lookup, since the caller named it on purpose.
func LoadFrom(explicitPath string) (*File, error) {
	if explicitPath != "" {
		data, err := os.ReadFile(explicitPath)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", explicitPath, err)
		}
		var cfg File
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", explicitPath, err)
		}
		return &cfg, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return &File{}, nil
	}

	configDir := filepath.Join(home, configDirName)
	configPath := filepath.Join(configDir, configFileName)
	oldConfigPath := filepath.Join(home, legacyConfigPath)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return &File{}, nil
		}
		data, err = os.ReadFile(oldConfigPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				if mkErr := os.MkdirAll(configDir, 0o755); mkErr != nil {
					return &File{}, nil
				}
				return &File{}, nil
			}
			return &File{}, nil
		}
		fmt.Fprintf(os.Stderr, "Note: using config from %s. Consider moving it to %s\n", oldConfigPath, configPath)
	}

	var cfg File
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
	}
	return &cfg, nil
}
