package store

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pmig/pkg/pmig"
)

func valueOf(t *testing.T, row Row, col string) any {
	t.Helper()
	for i, c := range row.Columns {
		if c == col {
			return row.Values[i]
		}
	}
	t.Fatalf("column %s not in row", col)
	return nil
}

func TestKeyColumn(t *testing.T) {
	tests := []struct {
		table   pmig.Table
		field   string
		want    string
		wantErr bool
	}{
		{table: pmig.TableClientes, field: pmig.KeyCedula, want: "cedula_key"},
		{table: pmig.TableClientes, field: pmig.KeyTelefono, want: "telefono_key"},
		{table: pmig.TablePrestamos, field: pmig.KeyCodigo, want: "codigo"},
		{table: pmig.TablePagos, field: pmig.KeyLegacyID, want: "legacy_key"},
		{table: pmig.TablePagos, field: pmig.KeyCedula, wantErr: true},
		{table: pmig.TableCobradores, field: pmig.KeyTelefono, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.table)+"/"+tt.field, func(t *testing.T) {
			col, err := KeyColumn(tt.table, tt.field)
			if tt.wantErr {
				assert.ErrorIs(t, err, pmig.ErrUnsupportedKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, col)
		})
	}
}

func TestRowFor_Client(t *testing.T) {
	rec := &pmig.ClientRecord{
		ID:            1,
		Nombre:        "Fermin Cruz",
		Apodo:         " ",
		Telefono:      "809-834-0218",
		Cedula:        "026-0085644-3",
		FechaRegistro: time.Date(2020, 5, 25, 0, 0, 0, 0, time.UTC),
	}

	row, err := RowFor(pmig.TableClientes, pmig.Entity{Record: rec})
	require.NoError(t, err)

	assert.Equal(t, []string{"legacy_id", "cedula_key", "telefono_key", "legacy_key"}, row.Columns[:4])
	assert.Equal(t, "02600856443", valueOf(t, row, "cedula_key"))
	assert.Equal(t, "8098340218", valueOf(t, row, "telefono_key"))
	assert.Nil(t, valueOf(t, row, "legacy_key"))
	assert.Nil(t, valueOf(t, row, "apodo"))
	assert.Nil(t, valueOf(t, row, "email"))
	assert.Equal(t, rec.FechaRegistro, valueOf(t, row, "fecha_registro"))
	assert.Len(t, row.Values, len(row.Columns))
}

func TestRowFor_LoanAndPayment(t *testing.T) {
	loan := &pmig.LoanRecord{ID: 10, Codigo: "P-10", Estado: pmig.EstadoActivo, Frecuencia: pmig.FrecuenciaSemanal}
	row, err := RowFor(pmig.TablePrestamos, pmig.Entity{Record: loan, ClientID: 3})
	require.NoError(t, err)

	assert.Equal(t, int64(3), valueOf(t, row, "cliente_id"))
	assert.Nil(t, valueOf(t, row, "cobrador_id"))
	assert.Equal(t, "activo", valueOf(t, row, "estado"))
	assert.Nil(t, valueOf(t, row, "fecha_inicio"))

	payment := &pmig.PaymentRecord{ID: 100}
	row, err = RowFor(pmig.TablePagos, pmig.Entity{Record: payment, LoanID: 9, CollectorID: 2})
	require.NoError(t, err)

	assert.Equal(t, strconv.Itoa(100), valueOf(t, row, "legacy_key"))
	assert.Equal(t, int64(9), valueOf(t, row, "prestamo_id"))
	assert.Equal(t, int64(2), valueOf(t, row, "cobrador_id"))
	assert.Nil(t, valueOf(t, row, "frecuencia"))
}

func TestRowFor_WrongTable(t *testing.T) {
	_, err := RowFor(pmig.TablePagos, pmig.Entity{Record: &pmig.ClientRecord{ID: 1}})
	assert.Error(t, err)

	_, err = RowFor(pmig.TablePagos, pmig.Entity{})
	assert.Error(t, err)
}

func TestRow_InsertSQL(t *testing.T) {
	row := Row{Table: pmig.TablePagos, Columns: []string{"legacy_id", "legacy_key"}, Values: []any{int64(1), "1"}}

	assert.Equal(t, "INSERT INTO pagos (legacy_id, legacy_key) VALUES ($1, $2) RETURNING id",
		row.InsertSQL(func(n int) string { return "$" + strconv.Itoa(n) }))
	assert.Equal(t, "INSERT INTO pagos (legacy_id, legacy_key) VALUES (?, ?) RETURNING id",
		row.InsertSQL(func(int) string { return "?" }))
}
