package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const rootLong = `pmig reads a SQL dump exported by the legacy loan-collection system and
migrates its collectors, clients, loans and payments into the new back office.

Every tuple in the dump is accounted for: it is migrated, skipped as a
duplicate, skipped as malformed, or skipped because a reference could not be
resolved. Skips never abort a run; the report lists them per table.

Exit Codes:
  0  - Run completed (skipped records included)
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Target store connection failed
  20 - Dump file unreadable
  21 - No selected table found in the dump
  22 - Run cancelled (interrupt or timeout)`

var rootCmd = newRootCmd()

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "pmig",
		Short:        "Legacy microfinance dump migrator",
		Long:         rootLong,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")

	cmd.AddCommand(newMigrateCmd(), newVersionCmd())
	return cmd
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return rootCmd.Execute()
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
