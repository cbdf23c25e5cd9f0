package dump

import (
	"regexp"
	"strings"

	"github.com/vvka-141/pmig/internal/tokenizer"
	"github.com/vvka-141/pmig/pkg/pmig"
)

// Blob is the VALUES text of one INSERT statement: everything between the
// VALUES keyword and the statement's terminating ';'.
type Blob struct {
	// Offset of Text within the dump.
	Offset int

	Text string

	// Columns holds the optional column list of the INSERT header.
	Columns []string
}

// Locator finds the INSERT statements of each table in a dump.
type Locator struct {
	mode    pmig.EscapeMode
	headers map[pmig.Table]*regexp.Regexp
}

// NewLocator creates a Locator that ends statements using the given escape
// convention.
func NewLocator(mode pmig.EscapeMode) *Locator {
	l := &Locator{
		mode:    mode,
		headers: make(map[pmig.Table]*regexp.Regexp, len(pmig.MigrationOrder)),
	}
	for _, t := range pmig.MigrationOrder {
		l.headers[t] = headerPattern(string(t))
	}
	return l
}

// headerPattern matches `INSERT [IGNORE] INTO [db.]table [(cols)] VALUES`
// and REPLACE INTO, with optional backticks and any case.
func headerPattern(table string) *regexp.Regexp {
	name := regexp.QuoteMeta(table)
	return regexp.MustCompile(
		"(?is)\\b(?:INSERT(?:\\s+IGNORE)?|REPLACE)\\s+INTO\\s+" +
			"(?:`?\\w+`?\\.)?`?" + name + "`?" +
			"\\s*(\\([^)]*\\))?\\s*VALUES\\s*",
	)
}

// Locate returns every VALUES blob for table, in dump order. A statement
// without a terminating ';' runs to the end of the text. The result is empty
// when the table has no INSERT statement.
func (l *Locator) Locate(text string, table pmig.Table) []Blob {
	re, ok := l.headers[table]
	if !ok {
		re = headerPattern(string(table))
	}

	var blobs []Blob
	pos := 0
	for pos < len(text) {
		loc := re.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}

		start := pos + loc[1]
		blob := Blob{Offset: start}
		if loc[2] >= 0 {
			blob.Columns = parseColumns(text[pos+loc[2] : pos+loc[3]])
		}

		end := tokenizer.FindTerminator(text, start, l.mode)
		if end < 0 {
			blob.Text = text[start:]
			pos = len(text)
		} else {
			blob.Text = text[start:end]
			pos = end + 1
		}
		blobs = append(blobs, blob)
	}
	return blobs
}

// parseColumns splits "(`id`, nombre)" into bare column names.
func parseColumns(list string) []string {
	list = strings.TrimSuffix(strings.TrimPrefix(list, "("), ")")
	var cols []string
	for _, c := range strings.Split(list, ",") {
		c = strings.Trim(strings.TrimSpace(c), "`\"")
		if c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}
