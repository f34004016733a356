// Package config defines the fbmetrics configuration and how it is layered
// from defaults, an optional YAML file and FBMETRICS_* environment variables.
package config

import (
	"path/filepath"
)

// Config contains process configuration.
type Config struct {
	// DataDir is the root of the StatsBomb tournament export.
	DataDir string `koanf:"data_dir"`

	// MatchesFile and EventsDir default to paths under DataDir when empty.
	MatchesFile string `koanf:"matches_file"`
	EventsDir   string `koanf:"events_dir"`

	// FocusPlayerID is highlighted in comparisons and preselected in the shell.
	FocusPlayerID int64 `koanf:"focus_player_id"`

	// FocusTeam restricts the match list offered for pass maps.
	FocusTeam string `koanf:"focus_team"`

	// FinalThirdX is the x coordinate (0–120) where the final third begins.
	FinalThirdX float64 `koanf:"final_third_x"`

	// MinMinutes is the minimum playing time for the per-90 table.
	MinMinutes float64 `koanf:"min_minutes"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// Addr is the listen address for `serve`.
	Addr string `koanf:"addr"`

	// AnthropicModel is the model id used by `analyze`.
	AnthropicModel string `koanf:"anthropic_model"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		DataDir:        filepath.Join("data", "statsbomb_wc2022"),
		FocusPlayerID:  5503,
		FocusTeam:      "Argentina",
		FinalThirdX:    80,
		MinMinutes:     300,
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":8090",
		AnthropicModel: "claude-haiku-4-5-20251001",
	}
}

// MatchesPath returns the catalog path, derived from DataDir when unset.
func (c *Config) MatchesPath() string {
	if c.MatchesFile != "" {
		return c.MatchesFile
	}
	return filepath.Join(c.DataDir, "matches", "wc2022_matches.json")
}

// EventsPath returns the events directory, derived from DataDir when unset.
func (c *Config) EventsPath() string {
	if c.EventsDir != "" {
		return c.EventsDir
	}
	return filepath.Join(c.DataDir, "events")
}
