package tokenizer

import (
	"strconv"
	"strings"

	"github.com/vvka-141/pmig/pkg/pmig"
)

// Tuple is the interior of one top-level parenthesized group, without the
// enclosing parentheses. Text is an exact substring of the scanned blob.
type Tuple struct {
	Offset int
	Text   string
}

// Malformed is a span of a blob that could not be split into a tuple.
// It is collected for the report and never returned as an error.
type Malformed struct {
	Offset int
	Text   string
	Reason string
}

func (m *Malformed) Error() string {
	return "malformed tuple at offset " + strconv.Itoa(m.Offset) + ": " + m.Reason
}

// Malformed reasons.
const (
	ReasonUnbalancedClose  = "unbalanced closing parenthesis"
	ReasonStrayText        = "unexpected text between tuples"
	ReasonUnterminated     = "unterminated tuple"
	ReasonUnterminatedText = "unterminated quoted string"
)

// Result is the outcome of splitting one blob.
type Result struct {
	Tuples    []Tuple
	Malformed []Malformed
}

// Texts returns the tuple interiors in order.
func (r Result) Texts() []string {
	out := make([]string, len(r.Tuples))
	for i, t := range r.Tuples {
		out[i] = t.Text
	}
	return out
}

// SplitTuples splits a VALUES blob into top-level tuple interiors in a single
// left-to-right scan. Parentheses inside quoted spans do not change depth.
// Whitespace and commas between tuples are separators; any other text at
// depth zero is stray and is reported malformed when a tuple boundary follows
// it, or emitted as a final tuple when the input ends.
//
// A tuple whose quotes or parentheses never balance is reported malformed up
// to the next textual "),(" boundary, and scanning restarts Outside at that
// '(' so the tuples after it survive.
func SplitTuples(blob string, mode pmig.EscapeMode) Result {
	var res Result
	for from := 0; from >= 0 && from < len(blob); {
		from = splitFrom(blob, from, mode, &res)
	}
	return res
}

// splitFrom scans blob from offset from and returns the offset to resume at
// after an unbalanced tuple, or -1 when the input is used up.
func splitFrom(blob string, from int, mode pmig.EscapeMode, res *Result) int {
	sc := newScanner(mode)

	depth := 0
	start := -1       // first byte of the current tuple interior
	stray := -1       // first byte of stray text at depth zero
	skipping := false // after an unbalanced ')' until the next '('

	for i := from; i < len(blob); {
		quoted := sc.inQuote()
		width, tok := sc.next(blob, i)

		if depth > 0 {
			switch tok {
			case TokOpen:
				depth++
			case TokClose:
				depth--
				if depth == 0 {
					res.Tuples = append(res.Tuples, Tuple{Offset: start, Text: blob[start:i]})
					start = -1
				}
			}
			i += width
			continue
		}

		switch tok {
		case TokOpen:
			if stray >= 0 {
				res.Malformed = append(res.Malformed, Malformed{
					Offset: stray,
					Text:   trimSeparators(blob[stray:i]),
					Reason: ReasonStrayText,
				})
				stray = -1
			}
			skipping = false
			depth = 1
			start = i + 1

		case TokClose:
			if !skipping {
				from := stray
				if from < 0 {
					from = i
				}
				res.Malformed = append(res.Malformed, Malformed{
					Offset: from,
					Text:   blob[from : i+1],
					Reason: ReasonUnbalancedClose,
				})
			}
			stray = -1
			skipping = true

		default:
			if skipping || stray >= 0 {
				break
			}
			if !quoted && (tok == TokComma || isSpace(blob[i])) {
				break
			}
			stray = i
		}
		i += width
	}

	switch {
	case depth > 0:
		reason := ReasonUnterminated
		if sc.inQuote() {
			reason = ReasonUnterminatedText
		}
		open := start - 1
		closeAt, resume := nextBoundary(blob, start)
		text := blob[open:]
		if closeAt >= 0 {
			text = blob[open : closeAt+1]
		}
		res.Malformed = append(res.Malformed, Malformed{
			Offset: open,
			Text:   text,
			Reason: reason,
		})
		return resume
	case stray >= 0:
		text := trimSeparators(blob[stray:])
		if sc.inQuote() {
			res.Malformed = append(res.Malformed, Malformed{Offset: stray, Text: text, Reason: ReasonUnterminatedText})
		} else if text != "" {
			res.Tuples = append(res.Tuples, Tuple{Offset: stray, Text: text})
		}
	}
	return -1
}

// nextBoundary finds the first ')' at or after from that is followed by a
// comma and a '(' with only whitespace between them. Quotes are ignored. It
// returns the offsets of the ')' and the '(', or -1, -1.
func nextBoundary(blob string, from int) (int, int) {
	for i := from; i < len(blob); i++ {
		if blob[i] != ')' {
			continue
		}
		j := skipSpace(blob, i+1)
		if j >= len(blob) || blob[j] != ',' {
			continue
		}
		j = skipSpace(blob, j+1)
		if j < len(blob) && blob[j] == '(' {
			return i, j
		}
	}
	return -1, -1
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func trimSeparators(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ", \t\r\n")
}
