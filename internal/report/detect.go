package report

import (
	"io"
	"os"

	"golang.org/x/term"
)

// Styled reports whether output written to w should carry terminal styling.
//
// Returns false if:
//   - w is not a terminal (redirected to a file, piped, CI/CD logs)
//   - NO_COLOR is set (accessibility/automation indicator)
//   - CI is set (common CI/CD convention)
func Styled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("CI") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
