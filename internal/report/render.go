// Package report renders a MigrationReport for people and machines: a
// per-table counter table with the audit samples below it, and a JSON file.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/vvka-141/pmig/pkg/pmig"
)

// Renderer writes the human-readable report.
type Renderer struct {
	out io.Writer
	pal palette
}

// NewRenderer creates a Renderer for out, styled when out is a terminal.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out, pal: palette{styled: Styled(out)}}
}

// Render writes the title, the counter table and the samples.
func (r *Renderer) Render(report *pmig.MigrationReport) {
	title := "Migration report"
	if report.DryRun {
		title += " (dry run: nothing written)"
	}
	fmt.Fprintln(r.out, r.pal.title(title))
	fmt.Fprintln(r.out, r.pal.muted(fmt.Sprintf("run %s · %s · %s · xxh3 %s",
		report.RunID, report.DumpPath, report.Encoding, report.Fingerprint)))

	r.renderTable(report)
	r.renderSamples(report)
}

func (r *Renderer) renderTable(report *pmig.MigrationReport) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Stmts", "Extracted", "Migrated", "Duplicate", "Malformed", "Unresolved", "Failed", "Warnings"})

	for _, tr := range report.Tables {
		name := string(tr.Table)
		switch {
		case !tr.Located:
			name += " (not found)"
		case tr.LookupOnly:
			name += " (lookup)"
		}
		t.AppendRow(table.Row{
			name, tr.Statements, tr.Extracted,
			r.count(tr.Migrated, r.pal.success),
			tr.SkippedDuplicate,
			r.count(tr.SkippedMalformed, r.pal.warning),
			r.count(tr.SkippedUnresolvedReference, r.pal.warning),
			r.count(tr.Failed, r.pal.failure),
			tr.Warnings,
		})
	}

	totals := report.Totals()
	t.AppendFooter(table.Row{
		"Total", totals.Statements, totals.Extracted, totals.Migrated, totals.SkippedDuplicate,
		totals.SkippedMalformed, totals.SkippedUnresolvedReference, totals.Failed, totals.Warnings,
	})

	alignRight := make([]table.ColumnConfig, 0, 8)
	for col := 2; col <= 9; col++ {
		alignRight = append(alignRight, table.ColumnConfig{Number: col, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}
	t.SetColumnConfigs(alignRight)
	t.Render()
}

// count styles non-zero counters.
func (r *Renderer) count(n int, style func(string) string) string {
	s := strconv.Itoa(n)
	if n == 0 {
		return s
	}
	return style(s)
}

func (r *Renderer) renderSamples(report *pmig.MigrationReport) {
	for _, tr := range report.Tables {
		if len(tr.Samples) == 0 {
			continue
		}
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, r.pal.title(fmt.Sprintf("%s: first %d skipped record(s)", tr.Table, len(tr.Samples))))
		for _, s := range tr.Samples {
			where := ""
			if s.Kind == pmig.SampleMalformed || s.Kind == pmig.SampleArity {
				where = fmt.Sprintf(" @%d", s.Offset)
			}
			fmt.Fprintf(r.out, "  [%s%s] %s\n", s.Kind, where, s.Reason)
			fmt.Fprintf(r.out, "    %s\n", r.pal.muted(s.Text))
		}
	}
}

// WriteJSON encodes report as indented JSON.
func WriteJSON(w io.Writer, report *pmig.MigrationReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// WriteJSONFile writes report to path, replacing any existing file.
func WriteJSONFile(path string, report *pmig.MigrationReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := WriteJSON(f, report); err != nil {
		f.Close()
		return fmt.Errorf("write report file: %w", err)
	}
	return f.Close()
}
