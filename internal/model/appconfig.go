package model

import (
	"errors"
	"fmt"
)

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Layout settings applied to new projects
	Defaults LayoutSettings `toml:"defaults" json:"defaults"`

	// Application preferences
	RecentProjects    []string `toml:"recent_projects" json:"recent_projects"`
	RulesOverridePath string   `toml:"rules_override_path" json:"rules_override_path"` // YAML merged over the embedded rules
	HistoryPath       string   `toml:"history_path" json:"history_path"`               // SQLite run ledger, empty = disabled
	OutputDir         string   `toml:"output_dir" json:"output_dir"`
	TemplatesPath     string   `toml:"templates_path" json:"templates_path"` // Empty = templates.json in the config directory

	Log LogConfig `toml:"log" json:"log"`
}

// LogConfig controls the slog handler set up by the CLI.
type LogConfig struct {
	Level string `toml:"level" json:"level"` // "debug", "info", "warn", "error"
	File  string `toml:"file" json:"file"`   // JSON log file, empty = text on stderr
}

// maxRecentProjects bounds the recent projects list.
const maxRecentProjects = 10

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultLayoutSettings().
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Defaults:       DefaultLayoutSettings(),
		RecentProjects: []string{},
		OutputDir:      ".",
		Log:            LogConfig{Level: "info"},
	}
}

// ApplyToSettings copies the default values from AppConfig into a
// LayoutSettings struct. This is used when creating a new project so it
// inherits the user's saved defaults.
func (c AppConfig) ApplyToSettings(s *LayoutSettings) {
	*s = c.Defaults
}

// AddRecentProject moves path to the front of the recent list.
func (c *AppConfig) AddRecentProject(path string) {
	out := []string{path}
	for _, p := range c.RecentProjects {
		if p != path && len(out) < maxRecentProjects {
			out = append(out, p)
		}
	}
	c.RecentProjects = out
}

// Validate reports every invalid field, including those of the default
// layout settings.
func (c AppConfig) Validate() error {
	var errs []error
	if err := c.Defaults.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("defaults: %w", err))
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	return errors.Join(errs...)
}
