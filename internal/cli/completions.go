package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pmig/pkg/pmig"
)

var (
	storeKinds  = []string{storeMemory, storePostgres, storeSQLite}
	escapeModes = []string{"both", "backslash", "doubled"}
	encodings   = []string{string(pmig.EncodingAuto), string(pmig.EncodingUTF8), string(pmig.EncodingWindows1252)}
	logFormats  = []string{logFormatText, logFormatJSON}
)

// completeFrom returns a completion function offering fixed values.
func completeFrom(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var matches []string
		for _, v := range values {
			if strings.HasPrefix(v, toComplete) {
				matches = append(matches, v)
			}
		}
		return matches, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeTables completes the comma-separated --tables list, offering only
// tables not already named.
func completeTables(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	done := strings.Split(toComplete, ",")
	prefix := strings.Join(done[:len(done)-1], ",")
	if prefix != "" {
		prefix += ","
	}
	current := done[len(done)-1]

	named := make(map[string]bool, len(done))
	for _, d := range done[:len(done)-1] {
		named[strings.TrimSpace(d)] = true
	}

	var matches []string
	for _, t := range pmig.MigrationOrder {
		name := string(t)
		if named[name] || !strings.HasPrefix(name, current) {
			continue
		}
		matches = append(matches, prefix+name)
	}
	return matches, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// completeDumpFiles lets the shell complete .sql files for the dump argument.
func completeDumpFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"sql", "dump"}, cobra.ShellCompDirectiveFilterFileExt
}
