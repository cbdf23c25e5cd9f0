package pmig

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess          = 0  // Migration completed (per-record skips included)
	ExitGeneralError     = 1  // Unknown or unclassified error
	ExitUsageError       = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic            = 3  // Internal panic (unexpected crash)
	ExitConfigError      = 10 // Invalid configuration
	ExitConnectionError  = 11 // Failed to connect to the target store
	ExitSourceUnreadable = 20 // Dump file could not be read
	ExitNoTablesLocated  = 21 // No INSERT statement found for any selected table
	ExitCancelled        = 22 // Run cancelled (signal or timeout)
)

const (
	// DefaultWorkers is the default size of the persistence worker pool.
	DefaultWorkers = 4

	// MaxWorkers caps the persistence worker pool.
	MaxWorkers = 64

	// DefaultMaxSamples is how many malformed tuples are kept verbatim per table.
	DefaultMaxSamples = 10

	// MaxSamplePreviewLength truncates malformed tuple samples in reports
	// so a runaway tuple does not flood the console.
	MaxSamplePreviewLength = 200

	// DefaultTimeZone is used to turn legacy epoch seconds into calendar dates.
	// The legacy system ran in the Dominican Republic (UTC-4, no DST).
	DefaultTimeZone = "America/Santo_Domingo"

	// DefaultTimeout is the catastrophic-failure timeout for a whole run.
	DefaultTimeout = 30 * time.Minute

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 10 * time.Second

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3
)
