package records

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pmig/internal/dump"
	"github.com/vvka-141/pmig/internal/tokenizer"
	"github.com/vvka-141/pmig/pkg/pmig"
)

var santoDomingo = time.FixedZone("AST", -4*60*60)

const ferminTuple = "1,'Fermin Cruz',' ','8098340218','Calle Mauricio Baez #47',1201,'Ebanista',1590437214,0,1,1,'02600856443','8098340218','null',0,1,'fermin','6443'"

func TestBuilder_Build_Client(t *testing.T) {
	b := NewBuilder(pmig.EscapeBoth, santoDomingo)
	fields := tokenizer.SplitFields(ferminTuple, pmig.EscapeBoth)
	require.Len(t, fields, 18)

	rec, err := b.Build(pmig.TableClientes, fields)
	require.NoError(t, err)

	want := &pmig.ClientRecord{
		ID:            1,
		Nombre:        "Fermin Cruz",
		Telefono:      "8098340218",
		Direccion:     "Calle Mauricio Baez #47",
		Zona:          1201,
		Ocupacion:     "Ebanista",
		FechaRegistro: time.Date(2020, time.May, 25, 0, 0, 0, 0, santoDomingo),
		Activo:        1,
		Status:        1,
		Cedula:        "02600856443",
		Celular:       "8098340218",
		Tipo:          1,
		Usuario:       "fermin",
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []pmig.NaturalKey{
		{Field: pmig.KeyCedula, Value: "02600856443"},
		{Field: pmig.KeyTelefono, Value: "8098340218"},
	}, rec.NaturalKeys())
}

func TestBuilder_Build_Loan(t *testing.T) {
	b := NewBuilder(pmig.EscapeBoth, time.UTC)
	tuple := "5,'P-0005',1,2,10000,20.5,12,1000,15,1590437214,0,8000,2000,0,1,1,NULL,'',1590437214,'admin',1"

	rec, err := b.Build(pmig.TablePrestamos, tokenizer.SplitFields(tuple, pmig.EscapeBoth))
	require.NoError(t, err)

	loan, ok := rec.(*pmig.LoanRecord)
	require.True(t, ok)
	assert.Equal(t, int64(5), loan.ID)
	assert.Equal(t, "P-0005", loan.Codigo)
	assert.Equal(t, pmig.Ref{LegacyID: 1}, loan.ClientRef)
	assert.Equal(t, int64(2), loan.CobradorID)
	assert.Equal(t, 20.5, loan.Interes)
	assert.Equal(t, int64(15), loan.DiasPago)
	assert.Equal(t, int64(1), loan.Saldado)
	assert.True(t, loan.FechaFin.IsZero())
	assert.Equal(t, time.Date(2020, time.May, 25, 0, 0, 0, 0, time.UTC), loan.FechaInicio)
	assert.Empty(t, loan.Nota)
	assert.Empty(t, loan.Garante)
	assert.Equal(t, "admin", loan.Usuario)
	assert.Empty(t, loan.Warnings)
}

func TestBuilder_Build_Collector(t *testing.T) {
	b := NewBuilder(pmig.EscapeBoth, time.UTC)
	tuple := "2,'Pedro Pe&ntilde;a','809-555-0101','Los Mina','001-0000001-1',3,0.1,0,1,'pedro','x',NULL,NULL"

	rec, err := b.Build(pmig.TableCobradores, tokenizer.SplitFields(tuple, pmig.EscapeBoth))
	require.NoError(t, err)

	c := rec.(*pmig.CollectorRecord)
	assert.Equal(t, "Pedro Peña", c.Nombre)
	assert.Equal(t, 0.1, c.Comision)
	assert.True(t, c.FechaIngreso.IsZero())
	assert.Equal(t, []pmig.NaturalKey{{Field: pmig.KeyCedula, Value: "00100000011"}}, c.NaturalKeys())
}

func TestBuilder_Build_Payment(t *testing.T) {
	b := NewBuilder(pmig.EscapeBoth, time.UTC)

	t.Run("Extra trailing fields are ignored", func(t *testing.T) {
		rec, err := b.Build(pmig.TablePagos, tokenizer.SplitFields("3,7,500,0,1,0,NULL,1,'extra'", pmig.EscapeBoth))
		require.NoError(t, err)
		p := rec.(*pmig.PaymentRecord)
		assert.Equal(t, pmig.Ref{LegacyID: 7}, p.LoanRef)
		assert.Equal(t, 500.0, p.Monto)
		assert.Equal(t, []pmig.NaturalKey{{Field: pmig.KeyLegacyID, Value: "3"}}, p.NaturalKeys())
	})

	t.Run("Non-numeric amount becomes a warning", func(t *testing.T) {
		rec, err := b.Build(pmig.TablePagos, tokenizer.SplitFields("3,7,'abc',0,1,0,NULL,1", pmig.EscapeBoth))
		require.NoError(t, err)
		p := rec.(*pmig.PaymentRecord)
		assert.Equal(t, 0.0, p.Monto)
		assert.Equal(t, []string{`monto: cannot coerce "'abc'" to float`}, p.RecordWarnings())
	})
}

func TestBuilder_Build_Errors(t *testing.T) {
	b := NewBuilder(pmig.EscapeBoth, time.UTC)

	t.Run("Short tuple", func(t *testing.T) {
		rec, err := b.Build(pmig.TableClientes, []string{"1", "'x'"})
		assert.Nil(t, rec)
		var arity *ArityError
		require.ErrorAs(t, err, &arity)
		assert.Equal(t, &ArityError{Table: pmig.TableClientes, Got: 2, Want: 18}, arity)
	})

	t.Run("Empty tuple", func(t *testing.T) {
		_, err := b.Build(pmig.TablePagos, nil)
		var arity *ArityError
		require.ErrorAs(t, err, &arity)
		assert.Equal(t, 0, arity.Got)
	})

	t.Run("Missing legacy id", func(t *testing.T) {
		_, err := b.Build(pmig.TablePagos, tokenizer.SplitFields("NULL,7,1,0,1,0,NULL,1", pmig.EscapeBoth))
		assert.ErrorIs(t, err, ErrMissingLegacyID)
	})

	t.Run("Unknown table", func(t *testing.T) {
		_, err := b.Build(pmig.Table("usuarios"), []string{"1"})
		assert.ErrorIs(t, err, pmig.ErrUnknownTable)
	})
}

func TestBuilder_BuildTable(t *testing.T) {
	b := NewBuilder(pmig.EscapeBoth, time.UTC)
	text := "(1,5,10,0,1,0,NULL,1),(2,5),(3,5,10,0,1,0,'x',1) junk (4,5,1,0,1,0,NULL,1"
	blobs := []dump.Blob{{Offset: 100, Text: text}}

	res := b.BuildTable(pmig.TablePagos, blobs)

	assert.Equal(t, 1, res.Statements)
	assert.Equal(t, 5, res.Extracted)
	assert.Equal(t, 3, res.Malformed)
	require.Len(t, res.Records, 2)
	assert.Equal(t, int64(1), res.Records[0].LegacyID())
	assert.Equal(t, int64(3), res.Records[1].LegacyID())

	require.Len(t, res.Samples, 3)
	assert.Equal(t, pmig.Sample{
		Kind:   pmig.SampleMalformed,
		Offset: 100 + strings.Index(text, "junk"),
		Reason: tokenizer.ReasonStrayText,
		Text:   "junk",
	}, res.Samples[0])
	assert.Equal(t, tokenizer.ReasonUnterminated, res.Samples[1].Reason)
	assert.Equal(t, pmig.SampleArity, res.Samples[2].Kind)
	assert.Equal(t, "2,5", res.Samples[2].Text)
	assert.Equal(t, 100+strings.Index(text, "2,5"), res.Samples[2].Offset)
}

func TestBuilder_BuildTable_NoBlobs(t *testing.T) {
	res := NewBuilder(pmig.EscapeBoth, nil).BuildTable(pmig.TableClientes, nil)
	assert.Zero(t, res.Extracted)
	assert.Empty(t, res.Records)
}

func TestSchemaFor(t *testing.T) {
	want := map[pmig.Table]int{
		pmig.TableClientes:   18,
		pmig.TableCobradores: 13,
		pmig.TablePrestamos:  21,
		pmig.TablePagos:      8,
	}
	for table, arity := range want {
		s, ok := SchemaFor(table)
		require.True(t, ok, table)
		assert.Equal(t, arity, s.MinArity(), table)
		assert.Equal(t, "id", s.Columns[0].Name, table)
	}
}
