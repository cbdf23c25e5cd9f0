package coerce

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vvka-141/pmig/pkg/pmig"
)

// CoercionError reports a non-numeric or out-of-range literal in a numeric
// column. The
// coerced value defaults to zero and the record keeps a warning.
type CoercionError struct {
	Raw  string
	Kind pmig.Kind
	Err  error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %q to %s", e.Raw, e.Kind)
}

func (e *CoercionError) Unwrap() error { return e.Err }

// Coercer turns raw field text into typed values.
type Coercer struct {
	mode pmig.EscapeMode
}

// New creates a Coercer for the given quote escape convention.
func New(mode pmig.EscapeMode) *Coercer {
	return &Coercer{mode: mode}
}

// Coerce strips one pair of enclosing quotes, un-escapes quoted fields,
// decodes legacy entities and converts the result to kind.
//
// Unquoted NULL is null in any column. In a nullable column an empty value
// or a quoted 'null' is null too. Empty numeric values are null.
func (c *Coercer) Coerce(raw string, kind pmig.Kind, nullable bool) (pmig.Value, error) {
	raw = strings.TrimSpace(raw)

	s, quoted := c.unquote(raw)
	if !quoted && strings.EqualFold(s, "null") {
		return pmig.Null(), nil
	}
	s = strings.TrimSpace(DecodeEntities(s))

	if nullable && (s == "" || (quoted && strings.EqualFold(s, "null"))) {
		return pmig.Null(), nil
	}

	switch kind {
	case pmig.KindInt:
		if s == "" {
			return pmig.Null(), nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return pmig.IntValue(n), nil
		}
		if errors.Is(err, strconv.ErrRange) {
			return pmig.IntValue(0), &CoercionError{Raw: raw, Kind: kind, Err: err}
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return pmig.IntValue(0), &CoercionError{Raw: raw, Kind: kind, Err: err}
		}
		n, ok := pmig.TruncateFloat(f)
		if !ok {
			return pmig.IntValue(0), &CoercionError{Raw: raw, Kind: kind, Err: strconv.ErrRange}
		}
		return pmig.IntValue(n), nil

	case pmig.KindFloat:
		if s == "" {
			return pmig.Null(), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return pmig.FloatValue(0), &CoercionError{Raw: raw, Kind: kind, Err: err}
		}
		return pmig.FloatValue(f), nil

	default:
		return pmig.StringValue(s), nil
	}
}

// unquote removes one matching pair of enclosing quotes and un-escapes the
// interior. Unquoted text is returned as is.
func (c *Coercer) unquote(raw string) (string, bool) {
	if len(raw) < 2 {
		return raw, false
	}
	q := raw[0]
	if (q != '\'' && q != '"') || raw[len(raw)-1] != q {
		return raw, false
	}
	return c.unescape(raw[1:len(raw)-1], q), true
}

func (c *Coercer) unescape(s string, quote byte) string {
	if !strings.ContainsAny(s, `\'"`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '\\' && c.mode.Backslash() && i+1 < len(s):
			i++
			b.WriteString(backslashSequence(s[i]))
		case ch == quote && c.mode.Doubled() && i+1 < len(s) && s[i+1] == quote:
			i++
			b.WriteByte(quote)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// backslashSequence follows MySQL: \0 and \Z are dropped, \% and \_ keep
// their backslash, any other escaped byte stands for itself.
func backslashSequence(c byte) string {
	switch c {
	case 'n':
		return "\n"
	case 'r':
		return "\r"
	case 't':
		return "\t"
	case '0', 'Z':
		return ""
	case '%', '_':
		return `\` + string(c)
	default:
		return string(c)
	}
}
