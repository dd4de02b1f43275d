package config

// Config represents the xskel tool configuration
type Config struct {
	Processing ProcessingConfig `mapstructure:"processing" toml:"processing"`
	Output     OutputConfig     `mapstructure:"output" toml:"output"`
	Logging    LoggingConfig    `mapstructure:"logging" toml:"logging"`
	History    HistoryConfig    `mapstructure:"history" toml:"history"`
	Watch      WatchConfig      `mapstructure:"watch" toml:"watch"`
}

// ProcessingConfig configures the scan pipeline
type ProcessingConfig struct {
	Workers             int      `mapstructure:"workers" toml:"workers"`                             // Parse workers: 0 = one per CPU
	MaxDepth            int      `mapstructure:"max_depth" toml:"max_depth"`                         // Directory descent limit: 0 = unlimited
	Extensions          []string `mapstructure:"extensions" toml:"extensions"`                       // File extensions to scan, matched case-insensitively
	KeepNamespacePrefix bool     `mapstructure:"keep_namespace_prefix" toml:"keep_namespace_prefix"` // Qualify element and attribute names by namespace
	MaxElementDepth     int      `mapstructure:"max_element_depth" toml:"max_element_depth"`         // Element nesting cap for the parser (default: 512)
}

// OutputConfig configures the report destination and shape
type OutputConfig struct {
	Path          string `mapstructure:"path" toml:"path"`                     // Report file path
	Pretty        bool   `mapstructure:"pretty" toml:"pretty"`                 // Indented output
	IncludePaths  bool   `mapstructure:"include_paths" toml:"include_paths"`   // List member files per group
	IncludeMerged bool   `mapstructure:"include_merged" toml:"include_merged"` // Attach merged skeleton per group
	Format        string `mapstructure:"format" toml:"format"`                 // Report encoding: json, yaml
}

// LoggingConfig configures diagnostic output
type LoggingConfig struct {
	Level string `mapstructure:"level" toml:"level"` // Base level when no -v flags: error, warn, info, debug, trace
	File  string `mapstructure:"file" toml:"file"`   // Log file path: empty = stderr only
}

// HistoryConfig configures the run-history store
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled"` // Record scan runs in SQLite
	Path    string `mapstructure:"path" toml:"path"`       // Store path: empty = ~/.xskel/history.db
}

// WatchConfig configures watch mode
type WatchConfig struct {
	DebounceMs          int `mapstructure:"debounce_ms" toml:"debounce_ms"`                       // Quiet period before a rescan fires (default: 500)
	MaxRescansPerMinute int `mapstructure:"max_rescans_per_minute" toml:"max_rescans_per_minute"` // Rescan rate cap: 0 = unlimited
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
