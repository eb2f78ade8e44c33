package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds tool settings shared by git-worklog and git-timetrack, stored
// in $XDG_CONFIG_HOME/git-worklog/config.yaml. Where logs are committed is
// configured per repository with git config, not here.
type Config struct {
	// LogLevel is a zerolog level name: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Color is auto, always or never.
	Color string `yaml:"color"`
	// ReportFormat is the default output of the report command.
	ReportFormat string `yaml:"report_format"`
}

const (
	DefaultLogLevel     = "warn"
	DefaultColor        = ColorAuto
	DefaultReportFormat = "plain"

	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ReportFormats lists the accepted report_format values.
var ReportFormats = []string{"plain", "raw", "csv", "json", "yaml"}

// ErrInvalidValue is wrapped by Validate errors.
var ErrInvalidValue = errors.New("invalid value")

// Default returns a Config pre-filled with the built-in defaults.
func Default() Config {
	return Config{
		LogLevel:     DefaultLogLevel,
		Color:        DefaultColor,
		ReportFormat: DefaultReportFormat,
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# git-worklog configuration
#
# All settings are optional. The log branch and target repository are
# configured per repository with git config:
#
#   git config worklog.branch <branch>
#   git config worklog.repository <dir>   # together with worklog.project
#
# (git-timetrack reads the timetracking.* keys instead.)

# Diagnostic output on stderr: debug, info, warn, error.
log_level: warn

# Styled terminal output: auto, always, never.
color: auto

# Default format of "git worklog report": plain, raw, csv, json, yaml.
report_format: plain
`

// FilePath returns the config file location.
func FilePath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "git-worklog", "config.yaml"), nil
}

// Load reads the config file, creating it with annotated defaults on first
// run.
func Load() (Config, error) {
	path, err := FilePath()
	if err != nil {
		return Default(), err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: could not create config file %s: %v\n", path, writeErr)
		}
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a config file. Fields left empty get their defaults.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	def := Default()
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.Color == "" {
		cfg.Color = def.Color
	}
	if cfg.ReportFormat == "" {
		cfg.ReportFormat = def.ReportFormat
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w for color: %q (want auto, always or never)", ErrInvalidValue, c.Color)
	}
	if !slices.Contains(ReportFormats, c.ReportFormat) {
		return fmt.Errorf("%w for report_format: %q (want one of %s)", ErrInvalidValue, c.ReportFormat, strings.Join(ReportFormats, ", "))
	}
	return nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
