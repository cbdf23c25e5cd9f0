package tokenizer

import "github.com/vvka-141/pmig/pkg/pmig"

// quoteState is the lexical state of the scanner.
type quoteState int

const (
	stateOutside quoteState = iota
	stateSingleQuote
	stateDoubleQuote
)

func (s quoteState) String() string {
	switch s {
	case stateOutside:
		return "Outside"
	case stateSingleQuote:
		return "InSingleQuote"
	case stateDoubleQuote:
		return "InDoubleQuote"
	default:
		return "?"
	}
}

// class is the input alphabet of the state table.
type class int

const (
	classOther class = iota
	classSingleQuote
	classDoubleQuote
	classEscape
	classComma
	classOpenParen
	classCloseParen
	classSemicolon
	numClasses
)

func classify(c byte) class {
	switch c {
	case '\'':
		return classSingleQuote
	case '"':
		return classDoubleQuote
	case '\\':
		return classEscape
	case ',':
		return classComma
	case '(':
		return classOpenParen
	case ')':
		return classCloseParen
	case ';':
		return classSemicolon
	default:
		return classOther
	}
}

// action is what the scanner does for a (state, class) pair.
type action int

const (
	actLiteral    action = iota // byte is data, state unchanged
	actEnterQuote               // open a quoted span
	actCloseQuote               // close the span unless the quote is doubled
	actEscape                   // backslash: the next byte is data
	actComma                    // top-level comma
	actOpen                     // top-level (
	actClose                    // top-level )
	actTerminator               // top-level ;
)

// transitions is the scanner's state table. Quotes only open from Outside;
// inside a quoted span every structural byte is data.
var transitions = [3][numClasses]action{
	stateOutside: {
		classOther:       actLiteral,
		classSingleQuote: actEnterQuote,
		classDoubleQuote: actEnterQuote,
		classEscape:      actLiteral,
		classComma:       actComma,
		classOpenParen:   actOpen,
		classCloseParen:  actClose,
		classSemicolon:   actTerminator,
	},
	stateSingleQuote: {
		classOther:       actLiteral,
		classSingleQuote: actCloseQuote,
		classDoubleQuote: actLiteral,
		classEscape:      actEscape,
		classComma:       actLiteral,
		classOpenParen:   actLiteral,
		classCloseParen:  actLiteral,
		classSemicolon:   actLiteral,
	},
	stateDoubleQuote: {
		classOther:       actLiteral,
		classSingleQuote: actLiteral,
		classDoubleQuote: actCloseQuote,
		classEscape:      actEscape,
		classComma:       actLiteral,
		classOpenParen:   actLiteral,
		classCloseParen:  actLiteral,
		classSemicolon:   actLiteral,
	},
}

// Token is the structural meaning of the bytes consumed by one scanner step.
type Token int

const (
	TokData Token = iota
	TokComma
	TokOpen
	TokClose
	TokTerminator
)

// scanner walks a string byte by byte. Every structural character is ASCII,
// so scanning bytes is safe for UTF-8 input.
type scanner struct {
	mode  pmig.EscapeMode
	state quoteState
}

func newScanner(mode pmig.EscapeMode) *scanner {
	return &scanner{mode: mode}
}

// inQuote reports whether the scanner is inside a quoted span.
func (sc *scanner) inQuote() bool { return sc.state != stateOutside }

// next consumes the byte at s[i] (two bytes for an escape pair or a doubled
// quote) and returns the number of bytes consumed and their token.
func (sc *scanner) next(s string, i int) (int, Token) {
	c := s[i]
	switch transitions[sc.state][classify(c)] {
	case actEnterQuote:
		if c == '\'' {
			sc.state = stateSingleQuote
		} else {
			sc.state = stateDoubleQuote
		}
		return 1, TokData

	case actCloseQuote:
		if sc.mode.Doubled() && i+1 < len(s) && s[i+1] == c {
			return 2, TokData
		}
		sc.state = stateOutside
		return 1, TokData

	case actEscape:
		if sc.mode.Backslash() && i+1 < len(s) {
			return 2, TokData
		}
		return 1, TokData

	case actComma:
		return 1, TokComma
	case actOpen:
		return 1, TokOpen
	case actClose:
		return 1, TokClose
	case actTerminator:
		return 1, TokTerminator
	default:
		return 1, TokData
	}
}
