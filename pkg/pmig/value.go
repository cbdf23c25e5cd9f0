package pmig

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the coerced type of a field value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is one coerced field. Only the member matching Kind is meaningful.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Str   string
}

func Null() Value                { return Value{Kind: KindNull} }
func IntValue(i int64) Value     { return Value{Kind: KindInt, Int: i} }
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }
func (v Value) IsNull() bool     { return v.Kind == KindNull }

// AsInt returns the value as an integer; floats are truncated, null,
// strings and floats outside the int64 range are 0.
func (v Value) AsInt() int64 {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindFloat:
		n, _ := TruncateFloat(v.Float)
		return n
	default:
		return 0
	}
}

// TruncateFloat truncates f toward zero. It reports false, with 0, when f is
// NaN, infinite or outside the int64 range.
func TruncateFloat(f float64) (int64, bool) {
	t := math.Trunc(f)
	if math.IsNaN(t) || t < -(1<<63) || t >= 1<<63 {
		return 0, false
	}
	return int64(t), true
}

// AsFloat returns the value as a float; null and strings are 0.
func (v Value) AsFloat() float64 {
	switch v.Kind {
	case KindInt:
		return float64(v.Int)
	case KindFloat:
		return v.Float
	default:
		return 0
	}
}

// AsString returns the string form; null is "".
func (v Value) AsString() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	default:
		return ""
	}
}

// Literal renders the value back as a dump literal that coerces to the same
// Value under mode. Strings are single-quoted.
func (v Value) Literal(mode EscapeMode) string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindString:
		var b strings.Builder
		b.Grow(len(v.Str) + 2)
		b.WriteByte('\'')
		for i := 0; i < len(v.Str); i++ {
			c := v.Str[i]
			switch {
			case c == '\'' && mode == EscapeDoubled:
				b.WriteString("''")
			case c == '\'' || (c == '\\' && mode != EscapeDoubled):
				b.WriteByte('\\')
				b.WriteByte(c)
			default:
				b.WriteByte(c)
			}
		}
		b.WriteByte('\'')
		return b.String()
	default:
		return v.AsString()
	}
}

func (v Value) String() string {
	if v.Kind == KindNull {
		return "NULL"
	}
	return v.AsString()
}
