package dump

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"github.com/vvka-141/pmig/pkg/pmig"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode turns raw dump bytes into NFC-normalized text and reports the
// encoding it used. With EncodingAuto, valid UTF-8 is kept and anything else
// is read as Windows-1252, the usual encoding of Spanish-locale exports.
func Decode(raw []byte, enc pmig.Encoding) (string, pmig.Encoding, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)

	if enc == pmig.EncodingAuto || enc == "" {
		if utf8.Valid(raw) {
			enc = pmig.EncodingUTF8
		} else {
			enc = pmig.EncodingWindows1252
		}
	}

	var text string
	switch enc {
	case pmig.EncodingUTF8:
		text = strings.ToValidUTF8(string(raw), "\uFFFD")
	case pmig.EncodingWindows1252:
		out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return "", enc, fmt.Errorf("decode %s: %w", enc, err)
		}
		text = string(out)
	default:
		return "", enc, fmt.Errorf("encoding %q: %w", enc, pmig.ErrInvalidConfig)
	}

	return norm.NFC.String(text), enc, nil
}
