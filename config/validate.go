package config

import (
	"github.com/quenby/xskel/errors"
	"github.com/quenby/xskel/logger"
)

// Validate checks that the configuration is valid.
// Errors wrap errors.ErrConfig and abort the run before any work starts.
func (c *Config) Validate() error {
	// Workers: 0 = one per CPU, negative = invalid
	if c.Processing.Workers < 0 {
		return errors.NewConfigError("processing.workers must be >= 0, got %d", c.Processing.Workers)
	}

	// Directory depth: 0 = unlimited, negative = invalid
	if c.Processing.MaxDepth < 0 {
		return errors.NewConfigError("processing.max_depth must be >= 0, got %d", c.Processing.MaxDepth)
	}

	// Element depth: 0 = parser default, negative = invalid
	if c.Processing.MaxElementDepth < 0 {
		return errors.NewConfigError("processing.max_element_depth must be >= 0, got %d", c.Processing.MaxElementDepth)
	}

	// An empty extension list would match nothing and scan nothing
	if len(c.Processing.Extensions) == 0 {
		return errors.NewConfigError("processing.extensions cannot be empty (omit for default [xml, tei])")
	}
	for _, ext := range c.Processing.Extensions {
		if ext == "" {
			return errors.NewConfigError("processing.extensions cannot contain empty entries")
		}
	}

	switch c.Output.Format {
	case "", "json", "yaml":
	default:
		return errors.NewConfigError("output.format must be json or yaml, got %q", c.Output.Format)
	}

	if _, ok := logger.LevelVerbosity(c.Logging.Level); !ok {
		return errors.NewConfigError("logging.level %q is not a valid level (error, warn, info, debug, trace)", c.Logging.Level)
	}

	// Debounce: 0 = rescan immediately, negative = invalid
	if c.Watch.DebounceMs < 0 {
		return errors.NewConfigError("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMs)
	}

	// Rate cap: 0 = unlimited, negative = invalid
	if c.Watch.MaxRescansPerMinute < 0 {
		return errors.NewConfigError("watch.max_rescans_per_minute must be >= 0, got %d", c.Watch.MaxRescansPerMinute)
	}

	return nil
}
