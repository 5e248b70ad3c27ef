package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level repolens configuration.
type Config struct {
	Workers Workers  `mapstructure:"workers"`
	Exclude []string `mapstructure:"exclude"`
	GitHub  GitHub   `mapstructure:"github"`
	Output  Output   `mapstructure:"output"`
	Watch   Watch    `mapstructure:"watch"`
	DBPath  string   `mapstructure:"db_path"`
}

// Workers sizes the two analysis pools. Zero means automatic.
type Workers struct {
	Analysis int `mapstructure:"analysis"`
	Security int `mapstructure:"security"`
}

// GitHub configures metadata lookups and cloning.
type GitHub struct {
	Token        string        `mapstructure:"token"`
	APIURL       string        `mapstructure:"api_url"`
	CloneTimeout time.Duration `mapstructure:"clone_timeout"`
}

// Output defines output preferences.
type Output struct {
	Color  bool   `mapstructure:"color"`
	Width  int    `mapstructure:"width"`
	Format string `mapstructure:"format"`
}

// Watch configures the file-watching re-analysis loop.
type Watch struct {
	Debounce  time.Duration `mapstructure:"debounce"`
	ScoreDrop float64       `mapstructure:"score_drop"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location),
// applies REPOLENS_* environment overrides and returns a Config with all
// defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("workers.analysis", 0)
	v.SetDefault("workers.security", 0)
	v.SetDefault("exclude", []string{})
	v.SetDefault("github.token", "")
	v.SetDefault("github.api_url", DefaultGitHub.APIURL)
	v.SetDefault("github.clone_timeout", DefaultGitHub.CloneTimeout)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)
	v.SetDefault("output.format", DefaultOutput.Format)
	v.SetDefault("watch.debounce", DefaultWatch.Debounce)
	v.SetDefault("watch.score_drop", DefaultWatch.ScoreDrop)
	v.SetDefault("db_path", filepath.Join(DefaultConfigDir, DefaultDBName))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The conventional token variable works without the prefix too.
	if err := v.BindEnv("github.token", EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, fmt.Errorf("binding token env: %w", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.DBPath = expandPath(cfg.DBPath)
	return &cfg, nil
}

// Validate rejects values the commands cannot act on.
func (c *Config) Validate() error {
	if !slices.Contains([]string{FormatTable, FormatJSON, FormatYAML}, c.Output.Format) {
		return fmt.Errorf("output.format %q: want table, json or yaml", c.Output.Format)
	}
	if c.Workers.Analysis < 0 || c.Workers.Security < 0 {
		return fmt.Errorf("worker counts must not be negative")
	}
	if c.GitHub.CloneTimeout <= 0 {
		return fmt.Errorf("github.clone_timeout must be positive")
	}
	return nil
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
