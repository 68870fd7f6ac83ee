// Package config handles configuration loading and validation for duet.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/duet/internal/core/scrollsync"
	"github.com/colonyops/duet/internal/core/styles"
)

// Config holds the application configuration.
type Config struct {
	Sync    SyncConfig    `yaml:"sync"`
	Preview PreviewConfig `yaml:"preview"`
	Editor  EditorConfig  `yaml:"editor"`
}

// SyncConfig tunes the scroll synchronization timing discipline. The
// hold and hint windows are safety nets against a wedged lock, not
// performance knobs.
type SyncConfig struct {
	DebounceMS     int `yaml:"debounce_ms"`
	HoldTimeoutMS  int `yaml:"hold_timeout_ms"`
	HintTimeoutMS  int `yaml:"hint_timeout_ms"`
	ReleaseGraceMS int `yaml:"release_grace_ms"`
}

// Options converts the configured milliseconds into coordinator options.
func (s SyncConfig) Options() scrollsync.Options {
	return scrollsync.Options{
		DebounceQuiet: time.Duration(s.DebounceMS) * time.Millisecond,
		HoldTimeout:   time.Duration(s.HoldTimeoutMS) * time.Millisecond,
		HintTimeout:   time.Duration(s.HintTimeoutMS) * time.Millisecond,
		ReleaseGrace:  time.Duration(s.ReleaseGraceMS) * time.Millisecond,
	}
}

// PreviewConfig controls preview rendering.
type PreviewConfig struct {
	// CodeStyle names the chroma style used for fenced code blocks.
	CodeStyle string `yaml:"code_style"`
	// Theme names the UI color palette.
	Theme string `yaml:"theme"`
	// Width caps the preview content width; zero tracks the pane.
	Width int `yaml:"width"`
}

// EditorConfig controls the editing pane.
type EditorConfig struct {
	TabWidth int `yaml:"tab_width"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			DebounceMS:     50,
			HoldTimeoutMS:  1000,
			HintTimeoutMS:  100,
			ReleaseGraceMS: 200,
		},
		Preview: PreviewConfig{
			CodeStyle: "monokai",
			Theme:     styles.DefaultTheme,
		},
		Editor: EditorConfig{
			TabWidth: 4,
		},
	}
}

// Load reads the config file at path, applying defaults for anything
// unset. A missing file is not an error; defaults apply wholesale.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
