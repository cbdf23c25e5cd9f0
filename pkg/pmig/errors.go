package pmig

import (
	"context"
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	report, err := svc.Migrate(ctx, config)
//	if errors.Is(err, pmig.ErrNoTablesLocated) {
//	    // the dump does not look like a legacy export at all
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSourceUnreadable indicates the dump file could not be read. Fatal.
	ErrSourceUnreadable = errors.New("dump file unreadable")

	// ErrNoTablesLocated indicates none of the selected tables has an
	// INSERT statement in the dump. Fatal.
	ErrNoTablesLocated = errors.New("no tables located in dump")

	// ErrTablePatternNotFound indicates a single table has no INSERT statement.
	// Not fatal: the table yields zero records.
	ErrTablePatternNotFound = errors.New("table pattern not found")

	// ErrCancelled indicates the run was cancelled between or during tables.
	// Records persisted before cancellation stay in place.
	ErrCancelled = errors.New("migration cancelled")

	// ErrConnectionFailed indicates the target store could not be reached.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrUnknownTable indicates a table name outside the legacy schema.
	ErrUnknownTable = errors.New("unknown table")

	// ErrDuplicateKey is returned by a Store when an insert collides with an
	// existing natural key. The orchestrator counts it as a duplicate.
	ErrDuplicateKey = errors.New("duplicate natural key")

	// ErrUnsupportedKey is returned by a Store for a natural key field the
	// table does not carry.
	ErrUnsupportedKey = errors.New("unsupported natural key")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrSourceUnreadable):
		return ExitSourceUnreadable
	case errors.Is(err, ErrNoTablesLocated):
		return ExitNoTablesLocated
	case errors.Is(err, ErrCancelled),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return ExitCancelled
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnknownTable):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	}

	// cobra reports usage problems as plain errors
	errStr := err.Error()
	if strings.HasPrefix(errStr, "unknown flag") ||
		strings.HasPrefix(errStr, "unknown shorthand flag") ||
		strings.HasPrefix(errStr, "unknown command") ||
		strings.HasPrefix(errStr, "accepts ") ||
		strings.HasPrefix(errStr, "requires at least") ||
		strings.HasPrefix(errStr, "required flag") ||
		strings.HasPrefix(errStr, "invalid argument") ||
		strings.HasPrefix(errStr, "flag needs an argument") {
		return ExitUsageError
	}

	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
