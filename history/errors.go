package history

import (
	"strings"

	"github.com/quenby/xskel/errors"
)

// ErrStoreClosed is returned when operations are attempted on a closed
// store. This typically occurs in watch mode, where a rescan can race
// the store shutting down on Ctrl-C.
var ErrStoreClosed = errors.New("history store is closed")

// IsStoreClosed checks if an error indicates the store's database
// connection is closed. This handles both:
// - Wrapped ErrStoreClosed errors from this package
// - Raw SQLite/sql driver errors that contain "database is closed" in their message
//
// The string matching fallback is necessary because the underlying sql driver
// returns its own error types that we cannot wrap at the source.
func IsStoreClosed(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrStoreClosed) {
		return true
	}

	errMsg := err.Error()
	return strings.Contains(errMsg, "database is closed") ||
		strings.Contains(errMsg, "sql: database is closed")
}
