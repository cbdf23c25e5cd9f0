package records

import (
	"errors"
	"fmt"
	"time"

	"github.com/vvka-141/pmig/internal/coerce"
	"github.com/vvka-141/pmig/internal/dump"
	"github.com/vvka-141/pmig/internal/tokenizer"
	"github.com/vvka-141/pmig/pkg/pmig"
)

// ErrMissingLegacyID is returned for tuples whose id column is null or zero.
var ErrMissingLegacyID = errors.New("missing legacy id")

// ArityError reports a tuple with fewer fields than the table's schema.
type ArityError struct {
	Table pmig.Table
	Got   int
	Want  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: tuple has %d fields, schema needs %d", e.Table, e.Got, e.Want)
}

// Builder turns raw positional fields into typed records.
type Builder struct {
	mode    pmig.EscapeMode
	coercer *coerce.Coercer
	loc     *time.Location
}

// NewBuilder creates a Builder. Legacy epoch columns become calendar dates
// in loc.
func NewBuilder(mode pmig.EscapeMode, loc *time.Location) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	return &Builder{mode: mode, coercer: coerce.New(mode), loc: loc}
}

// Build maps fields onto the table's schema. A short field array returns an
// *ArityError and no record. Coercion failures do not fail the build; they
// become warnings on the record.
func (b *Builder) Build(table pmig.Table, fields []string) (pmig.Record, error) {
	schema, ok := SchemaFor(table)
	if !ok {
		return nil, fmt.Errorf("%s: %w", table, pmig.ErrUnknownTable)
	}
	if len(fields) < schema.MinArity() {
		return nil, &ArityError{Table: table, Got: len(fields), Want: schema.MinArity()}
	}

	r := &row{values: make([]pmig.Value, len(schema.Columns)), loc: b.loc}
	for i, c := range schema.Columns {
		v, err := b.coercer.Coerce(fields[i], c.Type.kind(), c.Nullable)
		if err != nil {
			r.warnings = append(r.warnings, fmt.Sprintf("%s: %v", c.Name, err))
		}
		r.values[i] = v
	}

	if r.intAt(0) <= 0 {
		return nil, fmt.Errorf("%s: %w", table, ErrMissingLegacyID)
	}

	switch table {
	case pmig.TableClientes:
		return buildClient(r), nil
	case pmig.TableCobradores:
		return buildCollector(r), nil
	case pmig.TablePrestamos:
		return buildLoan(r), nil
	default:
		return buildPayment(r), nil
	}
}

// row is one coerced tuple with typed positional accessors.
type row struct {
	values   []pmig.Value
	loc      *time.Location
	warnings []string
}

func (r *row) intAt(i int) int64      { return r.values[i].AsInt() }
func (r *row) floatAt(i int) float64  { return r.values[i].AsFloat() }
func (r *row) strAt(i int) string     { return r.values[i].AsString() }
func (r *row) dateAt(i int) time.Time { return epochDate(r.values[i].AsInt(), r.loc) }

// epochDate converts legacy UNIX seconds to midnight of the calendar day in
// loc. Zero means "no date".
func epochDate(sec int64, loc *time.Location) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	y, m, d := time.Unix(sec, 0).In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func buildClient(r *row) *pmig.ClientRecord {
	return &pmig.ClientRecord{
		ID:            r.intAt(0),
		Nombre:        r.strAt(1),
		Apodo:         r.strAt(2),
		Telefono:      r.strAt(3),
		Direccion:     r.strAt(4),
		Zona:          r.intAt(5),
		Ocupacion:     r.strAt(6),
		FechaRegistro: r.dateAt(7),
		ReferidoPor:   r.intAt(8),
		Activo:        r.intAt(9),
		Status:        r.intAt(10),
		Cedula:        r.strAt(11),
		Celular:       r.strAt(12),
		Email:         r.strAt(13),
		Balance:       r.floatAt(14),
		Tipo:          r.intAt(15),
		Usuario:       r.strAt(16),
		Warnings:      r.warnings,
	}
}

func buildCollector(r *row) *pmig.CollectorRecord {
	return &pmig.CollectorRecord{
		ID:           r.intAt(0),
		Nombre:       r.strAt(1),
		Telefono:     r.strAt(2),
		Direccion:    r.strAt(3),
		Cedula:       r.strAt(4),
		Zona:         r.intAt(5),
		Comision:     r.floatAt(6),
		FechaIngreso: r.dateAt(7),
		Status:       r.intAt(8),
		Usuario:      r.strAt(9),
		Celular:      r.strAt(11),
		Email:        r.strAt(12),
		Warnings:     r.warnings,
	}
}

func buildLoan(r *row) *pmig.LoanRecord {
	return &pmig.LoanRecord{
		ID:            r.intAt(0),
		Codigo:        r.strAt(1),
		ClientRef:     pmig.Ref{LegacyID: r.intAt(2)},
		CobradorID:    r.intAt(3),
		Monto:         r.floatAt(4),
		Interes:       r.floatAt(5),
		Cuotas:        r.intAt(6),
		MontoCuota:    r.floatAt(7),
		DiasPago:      r.intAt(8),
		FechaInicio:   r.dateAt(9),
		FechaFin:      r.dateAt(10),
		Balance:       r.floatAt(11),
		TotalPagado:   r.floatAt(12),
		Mora:          r.floatAt(13),
		Saldado:       r.intAt(14),
		Status:        r.intAt(15),
		Nota:          r.strAt(16),
		Garante:       r.strAt(17),
		FechaRegistro: r.dateAt(18),
		Usuario:       r.strAt(19),
		Tipo:          r.intAt(20),
		Warnings:      r.warnings,
	}
}

func buildPayment(r *row) *pmig.PaymentRecord {
	return &pmig.PaymentRecord{
		ID:         r.intAt(0),
		LoanRef:    pmig.Ref{LegacyID: r.intAt(1)},
		Monto:      r.floatAt(2),
		Fecha:      r.dateAt(3),
		CobradorID: r.intAt(4),
		Mora:       r.floatAt(5),
		Nota:       r.strAt(6),
		Status:     r.intAt(7),
		Warnings:   r.warnings,
	}
}

// TableResult is everything BuildTable extracted from one table's blobs.
type TableResult struct {
	Table      pmig.Table
	Statements int

	// Records in dump order, including records that share a legacy id.
	Records []pmig.Record

	// Extracted counts every tuple, well formed or not.
	Extracted int

	// Malformed counts tuples dropped by the splitter or the builder.
	Malformed int

	// Warnings counts records carrying coercion warnings.
	Warnings int

	Samples []pmig.Sample
}

// BuildTable splits, tokenizes and builds every tuple of table's blobs.
// It never fails: unusable tuples are counted and sampled.
func (b *Builder) BuildTable(table pmig.Table, blobs []dump.Blob) TableResult {
	res := TableResult{Table: table, Statements: len(blobs)}

	for _, blob := range blobs {
		split := tokenizer.SplitTuples(blob.Text, b.mode)

		for _, m := range split.Malformed {
			res.Extracted++
			res.Malformed++
			res.Samples = append(res.Samples, pmig.Sample{
				Kind:   pmig.SampleMalformed,
				Offset: blob.Offset + m.Offset,
				Reason: m.Reason,
				Text:   m.Text,
			})
		}

		for _, tuple := range split.Tuples {
			res.Extracted++
			rec, err := b.Build(table, tokenizer.SplitFields(tuple.Text, b.mode))
			if err != nil {
				kind := pmig.SampleMalformed
				var arity *ArityError
				if errors.As(err, &arity) {
					kind = pmig.SampleArity
				}
				res.Malformed++
				res.Samples = append(res.Samples, pmig.Sample{
					Kind:   kind,
					Offset: blob.Offset + tuple.Offset,
					Reason: err.Error(),
					Text:   tuple.Text,
				})
				continue
			}
			if len(rec.RecordWarnings()) > 0 {
				res.Warnings++
			}
			res.Records = append(res.Records, rec)
		}
	}
	return res
}
