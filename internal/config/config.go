// Package config loads the project configuration of the streamdl CLI.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/streamdl/streamdl/internal/diag"
	"github.com/streamdl/streamdl/internal/include"
)

const (
	// FileName is the default name of the configuration file
	FileName = ".streamdl.toml"

	EnvMinSeverity = "STREAMDL_MIN_SEVERITY"
	EnvFailOn      = "STREAMDL_FAIL_ON"
	EnvNoColor     = "NO_COLOR"
)

// Config is the resolved configuration.
type Config struct {
	// MinSeverity is the lowest severity check prints.
	MinSeverity diag.Severity
	// FailOn makes check exit non-zero once any diagnostic reaches it.
	FailOn diag.Severity
	Color  bool
	Limits Limits
}

// Limits bounds the work one compile may do.
type Limits struct {
	MaxIncludeDepth int
}

// TomlConfig represents the TOML structure of the .streamdl.toml file
type TomlConfig struct {
	MinSeverity string     `toml:"min_severity,omitempty"`
	FailOn      string     `toml:"fail_on,omitempty"`
	Color       *bool      `toml:"color,omitempty"`
	Limits      TomlLimits `toml:"limits,omitempty"`
}

// TomlLimits represents the [limits] table
type TomlLimits struct {
	MaxIncludeDepth int `toml:"max_include_depth,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		MinSeverity: diag.Warning,
		FailOn:      diag.Error,
		Color:       true,
		Limits:      Limits{MaxIncludeDepth: include.DefaultMaxDepth},
	}
}

// Load reads the configuration file at path, or FileName in the current
// directory when path is empty. A missing default file yields the defaults;
// a missing explicit file is an error. Environment variables override the
// file, and a .env file in the current directory is loaded first without
// replacing variables that are already set.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		path = FileName
	}

	var raw TomlConfig
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, fmt.Errorf("config file %s does not exist", path)
		}
	} else if err != nil {
		return nil, err
	} else if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if v := os.Getenv(EnvMinSeverity); v != "" {
		raw.MinSeverity = v
	}
	if v := os.Getenv(EnvFailOn); v != "" {
		raw.FailOn = v
	}
	if os.Getenv(EnvNoColor) != "" {
		off := false
		raw.Color = &off
	}

	return raw.resolve()
}

func (raw TomlConfig) resolve() (*Config, error) {
	cfg := Default()
	if raw.MinSeverity != "" {
		sev, err := diag.ParseSeverity(raw.MinSeverity)
		if err != nil {
			return nil, fmt.Errorf("min_severity: %w", err)
		}
		cfg.MinSeverity = sev
	}
	if raw.FailOn != "" {
		sev, err := diag.ParseSeverity(raw.FailOn)
		if err != nil {
			return nil, fmt.Errorf("fail_on: %w", err)
		}
		cfg.FailOn = sev
	}
	if raw.Color != nil {
		cfg.Color = *raw.Color
	}
	switch d := raw.Limits.MaxIncludeDepth; {
	case d < 0:
		return nil, fmt.Errorf("limits.max_include_depth must not be negative, got %d", d)
	case d > 0:
		cfg.Limits.MaxIncludeDepth = d
	}
	return cfg, nil
}
