package tokenizer

import (
	"strings"

	"github.com/vvka-141/pmig/pkg/pmig"
)

// SplitFields splits one tuple interior at commas outside quoted spans and
// trims whitespace around each raw field. Quotes and escapes are kept; the
// coercer removes them. An empty interior yields no fields.
func SplitFields(tuple string, mode pmig.EscapeMode) []string {
	if strings.TrimSpace(tuple) == "" {
		return nil
	}

	sc := newScanner(mode)
	fields := make([]string, 0, strings.Count(tuple, ",")+1)
	start := 0
	for i := 0; i < len(tuple); {
		width, tok := sc.next(tuple, i)
		if tok == TokComma {
			fields = append(fields, strings.TrimSpace(tuple[start:i]))
			start = i + 1
		}
		i += width
	}
	return append(fields, strings.TrimSpace(tuple[start:]))
}

// FindTerminator returns the index of the first ';' at or after from that is
// outside any quoted span, or -1 when the statement runs to end of input.
func FindTerminator(s string, from int, mode pmig.EscapeMode) int {
	sc := newScanner(mode)
	for i := from; i < len(s); {
		width, tok := sc.next(s, i)
		if tok == TokTerminator {
			return i
		}
		i += width
	}
	return -1
}
