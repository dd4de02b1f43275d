package display

import (
	"encoding/json"
	"flag"
)

// MarshalJSON marshals JSON with pretty formatting for terminals and
// compact formatting for piped output
func MarshalJSON(v interface{}) ([]byte, error) {
	// Check if we're running in test mode - if so, always use pretty formatting
	// This keeps golden file tests independent of the test runner's stdout
	if flag.Lookup("test.v") != nil {
		return json.MarshalIndent(v, "", "  ")
	}

	if !InteractiveTerminal() {
		return json.Marshal(v)
	}

	// Pretty formatting for human consumption
	return json.MarshalIndent(v, "", "  ")
}
