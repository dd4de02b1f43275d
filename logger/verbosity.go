package logger

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// Verbosity level constants for CLI flag counts.
//
// These levels control WHAT categories of output are shown, not just log severity.
// See output.go for the full category system.
//
// Example usage:
//
//	if logger.ShouldOutput(verbosity, logger.OutputPerFile) {
//	    logger.Debugw("grouped", "file", path, "hash", sig.Hash)
//	}
const (
	VerbosityUser  = 0 // No flags: report and errors only
	VerbosityInfo  = 1 // -v: + progress, discovery, run summary
	VerbosityDebug = 2 // -vv: + timing, config, walk detail
	VerbosityTrace = 3 // -vvv: + per-file parse/group events, SQL
	VerbosityAll   = 4 // -vvvv: + canonical signature dumps
)

// VerbosityToLevel maps verbosity flags (-v, -vv, etc.) to zap log levels
//
// Mapping:
//
//	0 (none)  -> WarnLevel  (errors and warnings only)
//	1 (-v)    -> InfoLevel  (+ informational messages)
//	2 (-vv)   -> DebugLevel (+ debug messages)
//	3+ (-vvv) -> DebugLevel (zap doesn't have finer levels, but we track for custom behavior)
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch verbosity {
	case VerbosityUser:
		return zapcore.WarnLevel
	case VerbosityInfo:
		return zapcore.InfoLevel
	case VerbosityDebug:
		return zapcore.DebugLevel
	case VerbosityTrace:
		return zapcore.DebugLevel
	case VerbosityAll:
		return zapcore.DebugLevel
	default:
		// For any verbosity > VerbosityAll, use DebugLevel
		return zapcore.DebugLevel
	}
}

// LevelVerbosity maps a configured level name to the equivalent verbosity
// count. The bool reports whether the name was recognized. "error" shares
// the warn floor since the console core has no error-only mode.
func LevelVerbosity(level string) (int, bool) {
	switch strings.ToLower(level) {
	case "", "error", "warn", "warning":
		return VerbosityUser, true
	case "info":
		return VerbosityInfo, true
	case "debug":
		return VerbosityDebug, true
	case "trace":
		return VerbosityTrace, true
	default:
		return VerbosityUser, false
	}
}

// ShouldLogTrace returns true for verbosity >= 3 (-vvv)
// Use this for per-file trace logging
func ShouldLogTrace(verbosity int) bool {
	return verbosity >= VerbosityTrace
}

// ShouldLogAll returns true for verbosity >= 4 (-vvvv)
// Use this for dumping canonical strings and full structures
func ShouldLogAll(verbosity int) bool {
	return verbosity >= VerbosityAll
}

// LevelName returns a human-readable name for verbosity level
func LevelName(verbosity int) string {
	switch verbosity {
	case VerbosityUser:
		return "User"
	case VerbosityInfo:
		return "Info (-v)"
	case VerbosityDebug:
		return "Debug (-vv)"
	case VerbosityTrace:
		return "Trace (-vvv)"
	case VerbosityAll:
		return "All (-vvvv)"
	default:
		if verbosity > VerbosityAll {
			return "All (-vvvv+)"
		}
		return "Unknown"
	}
}
