package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequireDumpPath validates that exactly one dump file argument is provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequireDumpPath(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`requires at least 1 arg(s): <dump-file>

Usage: %s

Example:
  %s ./legacy/backup.sql --store postgres --dsn postgres://app@localhost/backoffice`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}
