// Package config provides configuration loading and defaults for repolens.
package config

import "time"

// DefaultConfigDir is the default location for repolens configuration.
const DefaultConfigDir = "~/.config/repolens"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "repolens.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// EnvPrefix prefixes every environment override, e.g. REPOLENS_OUTPUT_FORMAT.
const EnvPrefix = "REPOLENS"

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// DefaultGitHub holds the default hosting settings.
var DefaultGitHub = GitHub{
	APIURL:       "https://api.github.com/",
	CloneTimeout: 60 * time.Second,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color:  true,
	Width:  80,
	Format: FormatTable,
}

// DefaultWatch holds the default watch-mode settings.
var DefaultWatch = Watch{
	Debounce:  2 * time.Second,
	ScoreDrop: 0.5,
}
