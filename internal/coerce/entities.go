package coerce

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// legacyLetters is the fixed set of characters the old back office stored
// as HTML entities or as double-encoded UTF-8.
var legacyLetters = []struct {
	char rune
	name string
}{
	{'á', "aacute"}, {'é', "eacute"}, {'í', "iacute"}, {'ó', "oacute"}, {'ú', "uacute"},
	{'ñ', "ntilde"}, {'ü', "uuml"},
	{'Á', "Aacute"}, {'É', "Eacute"}, {'Í', "Iacute"}, {'Ó', "Oacute"}, {'Ú', "Uacute"},
	{'Ñ', "Ntilde"}, {'Ü', "Uuml"},
}

var entityReplacer = newEntityReplacer()

func newEntityReplacer() *strings.Replacer {
	var pairs []string
	for _, l := range legacyLetters {
		c := string(l.char)
		pairs = append(pairs,
			"&"+l.name+";", c,
			fmt.Sprintf("&#%d;", l.char), c,
			fmt.Sprintf("&#x%X;", l.char), c,
			fmt.Sprintf("&#x%x;", l.char), c,
		)
		if m, ok := mojibake(c); ok {
			pairs = append(pairs, m, c)
		}
	}
	return strings.NewReplacer(pairs...)
}

// mojibake returns how s reads when its UTF-8 bytes are decoded as
// Windows-1252. Letters whose second byte is unassigned in Windows-1252
// have no stable mojibake form and are skipped.
func mojibake(s string) (string, bool) {
	out, err := charmap.Windows1252.NewDecoder().String(s)
	if err != nil || strings.ContainsRune(out, utf8.RuneError) || out == s {
		return "", false
	}
	return out, true
}

// DecodeEntities replaces the legacy entity and mojibake forms of accented
// letters with the letters themselves.
func DecodeEntities(s string) string {
	if !strings.ContainsAny(s, "&Ã") {
		return s
	}
	return entityReplacer.Replace(s)
}
