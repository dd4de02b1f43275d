package logger

// Output controls what categories of information are shown at each verbosity level.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information are displayed regardless of severity.
//
// Verbosity Levels:
//
//	0 (default) - User-facing output only: report, errors with hints, final status
//	1 (-v)      - + Progress, discovery counts, run summaries
//	2 (-vv)     - + Timing, config loaded, walk detail, history stats
//	3 (-vvv)    - + Per-file parse/group events, SQL statements
//	4 (-vvvv)   - + Canonical signature dumps, full structure contents

// OutputCategory defines a category of output that can be enabled/disabled
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults    OutputCategory = iota // Report output, command results
	OutputErrors                           // Errors with hints and resolution steps
	OutputUserStatus                       // Final success/failure status

	// Level 1 (-v) - Informational
	OutputProgress      // Progress indicators (e.g., "Processing 50/100 files")
	OutputStartup       // Startup banners, config summary
	OutputOperationInfo // High-level operation summaries

	// Level 2 (-vv) - Detailed
	OutputTiming     // Operation timing (e.g., "scan took 420ms")
	OutputConfig     // Config values loaded/applied
	OutputWalkDetail // Directory walk decisions (skips, depth cutoffs)
	OutputDBStats    // History database statistics

	// Level 3 (-vvv) - Debug
	OutputPerFile    // Per-file parse and group events
	OutputSQLQueries // Individual SQL statements executed
	OutputInternalOp // Internal operation flow

	// Level 4 (-vvvv) - Full dump
	OutputSignatureDump // Canonical signature strings per file
	OutputDataDump      // Full structure contents
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	// Level 0 - Always shown
	OutputResults:    VerbosityUser,
	OutputErrors:     VerbosityUser,
	OutputUserStatus: VerbosityUser,

	// Level 1 - Informational
	OutputProgress:      VerbosityInfo,
	OutputStartup:       VerbosityInfo,
	OutputOperationInfo: VerbosityInfo,

	// Level 2 - Detailed
	OutputTiming:     VerbosityDebug,
	OutputConfig:     VerbosityDebug,
	OutputWalkDetail: VerbosityDebug,
	OutputDBStats:    VerbosityDebug,

	// Level 3 - Debug
	OutputPerFile:    VerbosityTrace,
	OutputSQLQueries: VerbosityTrace,
	OutputInternalOp: VerbosityTrace,

	// Level 4 - Full dump
	OutputSignatureDump: VerbosityAll,
	OutputDataDump:      VerbosityAll,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}

// categoryNames provides human-readable names for output categories
var categoryNames = map[OutputCategory]string{
	OutputResults:       "results",
	OutputErrors:        "errors",
	OutputUserStatus:    "status",
	OutputProgress:      "progress",
	OutputStartup:       "startup",
	OutputOperationInfo: "operation-info",
	OutputTiming:        "timing",
	OutputConfig:        "config",
	OutputWalkDetail:    "walk-detail",
	OutputDBStats:       "db-stats",
	OutputPerFile:       "per-file",
	OutputSQLQueries:    "sql",
	OutputInternalOp:    "internal",
	OutputSignatureDump: "signature-dump",
	OutputDataDump:      "data-dump",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}

// EnabledCategories returns all output categories enabled at the given verbosity
func EnabledCategories(verbosity int) []OutputCategory {
	var enabled []OutputCategory
	for cat, minLevel := range categoryLevels {
		if verbosity >= minLevel {
			enabled = append(enabled, cat)
		}
	}
	return enabled
}

// VerbosityDescription returns a description of what's shown at each level
func VerbosityDescription(verbosity int) string {
	switch verbosity {
	case VerbosityUser:
		return "report and errors only"
	case VerbosityInfo:
		return "report, errors, progress, and status"
	case VerbosityDebug:
		return "above + timing, config, walk detail"
	case VerbosityTrace:
		return "above + per-file events and SQL"
	case VerbosityAll:
		return "full output including signature dumps"
	default:
		if verbosity > VerbosityAll {
			return "maximum verbosity"
		}
		return "unknown verbosity level"
	}
}
