package pmig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// EscapeMode selects how an escaped quote is recognized inside a quoted
// literal. Legacy dumps mix both conventions, so EscapeBoth is the default.
type EscapeMode int

const (
	EscapeBoth      EscapeMode = iota // \' and '' both keep the quote open
	EscapeBackslash                   // only \' (MySQL style)
	EscapeDoubled                     // only '' (ANSI style)
)

func (m EscapeMode) String() string {
	switch m {
	case EscapeBoth:
		return "both"
	case EscapeBackslash:
		return "backslash"
	case EscapeDoubled:
		return "doubled"
	default:
		return fmt.Sprintf("EscapeMode(%d)", int(m))
	}
}

// Backslash reports whether backslash escapes are honored.
func (m EscapeMode) Backslash() bool { return m == EscapeBoth || m == EscapeBackslash }

// Doubled reports whether doubled-quote escapes are honored.
func (m EscapeMode) Doubled() bool { return m == EscapeBoth || m == EscapeDoubled }

// ParseEscapeMode parses "both", "backslash" or "doubled".
func ParseEscapeMode(s string) (EscapeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return EscapeBoth, nil
	case "backslash":
		return EscapeBackslash, nil
	case "doubled", "double":
		return EscapeDoubled, nil
	default:
		return EscapeBoth, fmt.Errorf("escape mode %q must be both, backslash or doubled: %w", s, ErrInvalidConfig)
	}
}

// Encoding names the character encoding of the dump file.
type Encoding string

const (
	EncodingAuto        Encoding = "auto"
	EncodingUTF8        Encoding = "utf8"
	EncodingWindows1252 Encoding = "windows1252"
)

// ParseEncoding parses an encoding name. latin1 and iso-8859-1 are read as
// Windows-1252, which is a superset for printable characters.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return EncodingAuto, nil
	case "utf8", "utf-8":
		return EncodingUTF8, nil
	case "windows1252", "windows-1252", "cp1252", "latin1", "iso-8859-1":
		return EncodingWindows1252, nil
	default:
		return EncodingAuto, fmt.Errorf("encoding %q must be auto, utf8 or windows1252: %w", s, ErrInvalidConfig)
	}
}

// MigrationConfig contains all parameters needed for one migration run.
type MigrationConfig struct {
	// DumpPath is the legacy SQL dump to read.
	DumpPath string

	// Tables is the allowlist of tables to migrate, in MigrationOrder.
	// Empty means every table.
	Tables []Table

	// DryRun parses and reports without any store calls.
	DryRun bool

	// Workers bounds concurrent store calls within a table.
	Workers int

	// Escape selects the quote escape convention.
	Escape EscapeMode

	// Encoding of the dump file.
	Encoding Encoding

	// Location converts legacy epoch seconds into calendar dates.
	Location *time.Location

	// MaxSamples caps verbatim audit samples per table. Zero means
	// DefaultMaxSamples.
	MaxSamples int

	// Timeout is the global timeout for the run.
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the MigrationConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *MigrationConfig) Validate() error {
	var errs []error

	if c.DumpPath == "" {
		errs = append(errs, fmt.Errorf("DumpPath is required: %w", ErrInvalidConfig))
	}

	for _, t := range c.Tables {
		if !t.IsValid() {
			errs = append(errs, fmt.Errorf("table %q: %w", t, ErrUnknownTable))
		}
	}

	if c.Workers < 0 || c.Workers > MaxWorkers {
		errs = append(errs, fmt.Errorf("workers must be between 1 and %d: %w", MaxWorkers, ErrInvalidConfig))
	}

	if c.MaxSamples < 0 {
		errs = append(errs, fmt.Errorf("max samples cannot be negative: %w", ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// WithDefaults fills zero values with package defaults.
func (c MigrationConfig) WithDefaults() MigrationConfig {
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.Encoding == "" {
		c.Encoding = EncodingAuto
	}
	if c.MaxSamples == 0 {
		c.MaxSamples = DefaultMaxSamples
	}
	if len(c.Tables) == 0 {
		c.Tables = append([]Table(nil), MigrationOrder...)
	}
	return c
}
