package services

import (
	"context"
	"fmt"

	"github.com/vvka-141/pmig/internal/dump"
	"github.com/vvka-141/pmig/internal/linker"
	"github.com/vvka-141/pmig/internal/records"
	"github.com/vvka-141/pmig/pkg/pmig"
)

// extraction holds the typed records of every located table. Loans and
// payments are the linked copies.
type extraction struct {
	records map[pmig.Table][]pmig.Record
}

// extract locates, splits and builds every table, then links references.
// Single-threaded: the tokenizer state machine is not shared.
func (s *MigrationService) extract(
	ctx context.Context,
	text string,
	tables []pmig.Table,
	selected map[pmig.Table]bool,
	config pmig.MigrationConfig,
	report *pmig.MigrationReport,
) (*extraction, error) {
	locator := dump.NewLocator(config.Escape)
	builder := records.NewBuilder(config.Escape, config.Location)
	ext := &extraction{records: make(map[pmig.Table][]pmig.Record, len(tables))}

	located := 0
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return nil, cancelled(err)
		}

		blobs := locator.Locate(text, t)
		if len(blobs) == 0 {
			s.logger.Info("⚠ %s: %v", t, pmig.ErrTablePatternNotFound)
			continue
		}
		if selected[t] {
			located++
		}

		res := builder.BuildTable(t, blobs)
		report.Update(t, func(tr *pmig.TableReport) {
			tr.Located = true
			tr.Statements = res.Statements
			tr.Extracted = res.Extracted
			tr.SkippedMalformed = res.Malformed
			tr.Warnings = res.Warnings
		})
		for _, sample := range res.Samples {
			report.AddSample(t, sample)
		}
		ext.records[t] = res.Records

		s.logger.Verbose("%s: %d statement(s), %d tuple(s), %d malformed, %d with warnings",
			t, res.Statements, res.Extracted, res.Malformed, res.Warnings)
	}

	if located == 0 {
		return nil, fmt.Errorf("%w: looked for %v", pmig.ErrNoTablesLocated, config.Tables)
	}

	ext.link(s.logger)
	return ext, nil
}

// link indexes clients, collectors and loans by legacy id and replaces the
// loan and payment records with their linked copies.
func (e *extraction) link(logger pmig.Logger) {
	ix := linker.NewIndex()
	for _, t := range []pmig.Table{pmig.TableCobradores, pmig.TableClientes, pmig.TablePrestamos} {
		if shadowed := ix.AddAll(e.records[t]); shadowed > 0 {
			logger.Verbose("%s: %d record(s) reuse an earlier legacy id; the first one is indexed", t, shadowed)
		}
	}

	var loans []*pmig.LoanRecord
	for _, rec := range e.records[pmig.TablePrestamos] {
		if l, ok := rec.(*pmig.LoanRecord); ok {
			loans = append(loans, l)
		}
	}
	var payments []*pmig.PaymentRecord
	for _, rec := range e.records[pmig.TablePagos] {
		if p, ok := rec.(*pmig.PaymentRecord); ok {
			payments = append(payments, p)
		}
	}

	linked := linker.Link(ix, loans, payments)
	if len(linked.Unresolved) > 0 {
		logger.Verbose("%d reference(s) could not be resolved", len(linked.Unresolved))
	}

	if _, ok := e.records[pmig.TablePrestamos]; ok {
		e.records[pmig.TablePrestamos] = make([]pmig.Record, 0, len(linked.Loans))
		for _, l := range linked.Loans {
			e.records[pmig.TablePrestamos] = append(e.records[pmig.TablePrestamos], l)
		}
	}
	if _, ok := e.records[pmig.TablePagos]; ok {
		e.records[pmig.TablePagos] = make([]pmig.Record, 0, len(linked.Payments))
		for _, p := range linked.Payments {
			e.records[pmig.TablePagos] = append(e.records[pmig.TablePagos], p)
		}
	}
}

// unresolvedRef reports the first reference of rec the linker could not
// resolve.
func unresolvedRef(rec pmig.Record) (linker.Unresolved, bool) {
	switch r := rec.(type) {
	case *pmig.LoanRecord:
		if !r.ClientRef.Resolved {
			return linker.Unresolved{Table: pmig.TablePrestamos, LegacyID: r.ID, Field: "cliente_id", RefID: r.ClientRef.LegacyID}, true
		}
	case *pmig.PaymentRecord:
		if !r.LoanRef.Resolved {
			return linker.Unresolved{Table: pmig.TablePagos, LegacyID: r.ID, Field: "prestamo_id", RefID: r.LoanRef.LegacyID}, true
		}
	}
	return linker.Unresolved{}, false
}
