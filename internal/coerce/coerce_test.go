package coerce

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pmig/pkg/pmig"
)

func TestCoercer_Coerce(t *testing.T) {
	c := New(pmig.EscapeBoth)

	tests := []struct {
		name     string
		raw      string
		kind     pmig.Kind
		nullable bool
		expected pmig.Value
	}{
		{name: "Integer", raw: "1201", kind: pmig.KindInt, expected: pmig.IntValue(1201)},
		{name: "Negative integer", raw: "-5", kind: pmig.KindInt, expected: pmig.IntValue(-5)},
		{name: "Quoted integer", raw: "'42'", kind: pmig.KindInt, expected: pmig.IntValue(42)},
		{name: "Integral float in int column", raw: "1201.00", kind: pmig.KindInt, expected: pmig.IntValue(1201)},
		{name: "Float", raw: "1500.50", kind: pmig.KindFloat, expected: pmig.FloatValue(1500.5)},
		{name: "Integer in float column", raw: "3", kind: pmig.KindFloat, expected: pmig.FloatValue(3)},
		{name: "Quoted string", raw: "'Fermin Cruz'", kind: pmig.KindString, expected: pmig.StringValue("Fermin Cruz")},
		{name: "Double quoted string", raw: `"Ebanista"`, kind: pmig.KindString, expected: pmig.StringValue("Ebanista")},
		{name: "Unquoted string", raw: "abc", kind: pmig.KindString, expected: pmig.StringValue("abc")},
		{name: "Named entity", raw: "'Pe&ntilde;a'", kind: pmig.KindString, expected: pmig.StringValue("Peña")},
		{name: "Upper case named entity", raw: "'PE&Ntilde;A'", kind: pmig.KindString, expected: pmig.StringValue("PEÑA")},
		{name: "Decimal entity", raw: "'Jos&#233;'", kind: pmig.KindString, expected: pmig.StringValue("José")},
		{name: "Hex entity", raw: "'Mar&#xED;a'", kind: pmig.KindString, expected: pmig.StringValue("María")},
		{name: "Mojibake", raw: "'Ram\u00c3\u00b3n Pe\u00c3\u00b1a'", kind: pmig.KindString, expected: pmig.StringValue("Ramón Peña")},
		{name: "Backslash escaped quote", raw: `'O\'Neil'`, kind: pmig.KindString, expected: pmig.StringValue("O'Neil")},
		{name: "Doubled quote", raw: "'O''Neil'", kind: pmig.KindString, expected: pmig.StringValue("O'Neil")},
		{name: "Escaped backslash", raw: `'C:\\tmp'`, kind: pmig.KindString, expected: pmig.StringValue(`C:\tmp`)},
		{name: "Escaped newline", raw: `'a\nb'`, kind: pmig.KindString, expected: pmig.StringValue("a\nb")},
		{name: "Escaped NUL dropped", raw: `'a\0b'`, kind: pmig.KindString, expected: pmig.StringValue("ab")},
		{name: "Unquoted NULL", raw: "NULL", kind: pmig.KindString, expected: pmig.Null()},
		{name: "Unquoted lower case null", raw: "null", kind: pmig.KindInt, expected: pmig.Null()},
		{name: "Quoted null in nullable column", raw: "'null'", kind: pmig.KindString, nullable: true, expected: pmig.Null()},
		{name: "Quoted null in required column", raw: "'null'", kind: pmig.KindString, expected: pmig.StringValue("null")},
		{name: "Blank in nullable column", raw: "' '", kind: pmig.KindString, nullable: true, expected: pmig.Null()},
		{name: "Blank in required column", raw: "' '", kind: pmig.KindString, expected: pmig.StringValue("")},
		{name: "Empty numeric", raw: "''", kind: pmig.KindInt, expected: pmig.Null()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Coerce(tt.raw, tt.kind, tt.nullable)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCoercer_Coerce_NonNumeric(t *testing.T) {
	c := New(pmig.EscapeBoth)

	got, err := c.Coerce("'abc'", pmig.KindInt, false)
	var cerr *CoercionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "'abc'", cerr.Raw)
	assert.Equal(t, pmig.KindInt, cerr.Kind)
	assert.Equal(t, pmig.IntValue(0), got)
	assert.Equal(t, `cannot coerce "'abc'" to int`, err.Error())

	got, err = c.Coerce("'12,5'", pmig.KindFloat, false)
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, pmig.FloatValue(0), got)

	for _, raw := range []string{"1e30", "-1e30", "99999999999999999999", "'18446744073709551616'", "9.3e18", "NaN"} {
		got, err = c.Coerce(raw, pmig.KindInt, false)
		require.ErrorAs(t, err, &cerr, raw)
		assert.Equal(t, raw, cerr.Raw)
		assert.Equal(t, pmig.IntValue(0), got, raw)
	}
	var numErr *strconv.NumError
	_, err = c.Coerce("99999999999999999999", pmig.KindInt, false)
	require.ErrorAs(t, err, &numErr)
	assert.ErrorIs(t, err, strconv.ErrRange)

	got, err = c.Coerce("-9223372036854775808", pmig.KindInt, false)
	require.NoError(t, err)
	assert.Equal(t, pmig.IntValue(math.MinInt64), got)

	got, err = c.Coerce("9.2e18", pmig.KindInt, false)
	require.NoError(t, err)
	assert.Equal(t, pmig.IntValue(9200000000000000000), got)
}

func TestCoercer_EscapeModes(t *testing.T) {
	doubled := New(pmig.EscapeDoubled)
	got, err := doubled.Coerce(`'a\nb'`, pmig.KindString, false)
	require.NoError(t, err)
	assert.Equal(t, pmig.StringValue(`a\nb`), got)

	backslash := New(pmig.EscapeBackslash)
	got, err = backslash.Coerce("'it''s'", pmig.KindString, false)
	require.NoError(t, err)
	assert.Equal(t, pmig.StringValue("it''s"), got)
}

func TestCoercer_Idempotent(t *testing.T) {
	raws := []struct {
		raw      string
		kind     pmig.Kind
		nullable bool
	}{
		{"'Pe&ntilde;a'", pmig.KindString, false},
		{`'O\'Neil'`, pmig.KindString, false},
		{"'it''s'", pmig.KindString, false},
		{`'C:\\tmp\\'`, pmig.KindString, false},
		{`'50\% off'`, pmig.KindString, false},
		{`'say "hi"'`, pmig.KindString, false},
		{"'null'", pmig.KindString, true},
		{"'null'", pmig.KindString, false},
		{"NULL", pmig.KindInt, false},
		{"1590437214", pmig.KindInt, false},
		{"1201.75", pmig.KindInt, false},
		{"0.125", pmig.KindFloat, false},
		{"'  padded  '", pmig.KindString, false},
	}

	for _, mode := range []pmig.EscapeMode{pmig.EscapeBoth, pmig.EscapeBackslash, pmig.EscapeDoubled} {
		c := New(mode)
		for _, r := range raws {
			once, err := c.Coerce(r.raw, r.kind, r.nullable)
			require.NoError(t, err)
			twice, err := c.Coerce(once.Literal(mode), r.kind, r.nullable)
			require.NoError(t, err)
			assert.Equal(t, once, twice, "mode %s raw %s", mode, r.raw)
		}
	}
}

func TestDecodeEntities(t *testing.T) {
	assert.Equal(t, "Peña", DecodeEntities("Pe&ntilde;a"))
	assert.Equal(t, "Güiro", DecodeEntities("G&uuml;iro"))
	assert.Equal(t, "ÑOÑO", DecodeEntities("\u00c3\u2018O&#209;O"))
	assert.Equal(t, "a & b", DecodeEntities("a & b"))
	assert.Equal(t, "plain", DecodeEntities("plain"))
}
