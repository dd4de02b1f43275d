package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Processing defaults
	v.SetDefault("processing.workers", 0)   // 0 = one worker per CPU
	v.SetDefault("processing.max_depth", 0) // 0 = unlimited descent
	v.SetDefault("processing.extensions", []string{"xml", "tei"})
	v.SetDefault("processing.keep_namespace_prefix", false)
	v.SetDefault("processing.max_element_depth", 512) // parser nesting cap

	// Output defaults
	v.SetDefault("output.path", "xskel-report.json")
	v.SetDefault("output.pretty", true)
	v.SetDefault("output.include_paths", true)
	v.SetDefault("output.include_merged", false)
	v.SetDefault("output.format", "json")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")

	// History defaults
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "") // empty = ~/.xskel/history.db

	// Watch defaults
	v.SetDefault("watch.debounce_ms", 500)
	v.SetDefault("watch.max_rescans_per_minute", 6) // 0 = unlimited
}

// Default returns the built-in configuration with no files or
// environment applied. Used by `config init` to write a starter file.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)

	// Unmarshal of pure defaults cannot fail
	cfg, _ := LoadWithViper(v)
	return cfg
}

// HistoryPath returns the run-history store path.
// An empty configured path resolves to ~/.xskel/history.db.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "history.db" // Fallback: store next to the working directory
	}
	return filepath.Join(home, ".xskel", "history.db")
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Processing: {Workers: %d, Extensions: %v}, Output: %s, History: %t}",
		c.Processing.Workers, c.Processing.Extensions, c.Output.Path, c.History.Enabled)
}
