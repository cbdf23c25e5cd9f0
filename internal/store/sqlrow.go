// Package store holds what the SQL-backed stores share: the natural key
// columns and the mapping from a migrated entity to a target row.
// Implementations live in the memory, postgres and sqlite subpackages.
package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/vvka-141/pmig/pkg/pmig"
)

type keyColumn struct {
	field  string
	column string
}

// keyColumns lists each table's natural key fields and the unique column
// that stores the normalized value.
var keyColumns = map[pmig.Table][]keyColumn{
	pmig.TableCobradores: {{pmig.KeyCedula, "cedula_key"}, {pmig.KeyLegacyID, "legacy_key"}},
	pmig.TableClientes:   {{pmig.KeyCedula, "cedula_key"}, {pmig.KeyTelefono, "telefono_key"}, {pmig.KeyLegacyID, "legacy_key"}},
	pmig.TablePrestamos:  {{pmig.KeyCodigo, "codigo"}, {pmig.KeyLegacyID, "legacy_key"}},
	pmig.TablePagos:      {{pmig.KeyLegacyID, "legacy_key"}},
}

// KeyColumn returns the column holding field for table. It fails with
// pmig.ErrUnsupportedKey for fields the table does not carry.
func KeyColumn(table pmig.Table, field string) (string, error) {
	for _, kc := range keyColumns[table] {
		if kc.field == field {
			return kc.column, nil
		}
	}
	return "", fmt.Errorf("%s has no %s key: %w", table, field, pmig.ErrUnsupportedKey)
}

// Row is the column list and values a SQL store inserts for an entity.
// Zero dates, zero reference ids and blank optional strings are nil.
type Row struct {
	Table   pmig.Table
	Columns []string
	Values  []any
}

func (r *Row) add(col string, v any) {
	r.Columns = append(r.Columns, col)
	r.Values = append(r.Values, v)
}

// RowFor maps entity to a row of table.
func RowFor(table pmig.Table, entity pmig.Entity) (Row, error) {
	if entity.Record == nil || entity.Record.Table() != table {
		return Row{}, fmt.Errorf("insert into %s: record does not belong to the table", table)
	}

	row := Row{Table: table}
	row.add("legacy_id", entity.Record.LegacyID())
	keys := entity.Record.NaturalKeys()
	for _, kc := range keyColumns[table] {
		row.add(kc.column, keyValue(keys, kc.field))
	}

	switch r := entity.Record.(type) {
	case *pmig.CollectorRecord:
		row.add("nombre", r.Nombre)
		row.add("telefono", optional(r.Telefono))
		row.add("celular", optional(r.Celular))
		row.add("direccion", optional(r.Direccion))
		row.add("cedula", optional(r.Cedula))
		row.add("email", optional(r.Email))
		row.add("zona", r.Zona)
		row.add("comision", r.Comision)
		row.add("fecha_ingreso", date(r.FechaIngreso))
		row.add("status", r.Status)
		row.add("usuario", optional(r.Usuario))
	case *pmig.ClientRecord:
		row.add("nombre", r.Nombre)
		row.add("apodo", optional(r.Apodo))
		row.add("telefono", optional(r.Telefono))
		row.add("celular", optional(r.Celular))
		row.add("direccion", optional(r.Direccion))
		row.add("cedula", optional(r.Cedula))
		row.add("email", optional(r.Email))
		row.add("zona", r.Zona)
		row.add("ocupacion", optional(r.Ocupacion))
		row.add("fecha_registro", date(r.FechaRegistro))
		row.add("referido_por", r.ReferidoPor)
		row.add("activo", r.Activo)
		row.add("status", r.Status)
		row.add("balance", r.Balance)
		row.add("tipo", r.Tipo)
		row.add("usuario", optional(r.Usuario))
	case *pmig.LoanRecord:
		row.add("cliente_id", entity.ClientID)
		row.add("cobrador_id", ref(entity.CollectorID))
		row.add("monto", r.Monto)
		row.add("interes", r.Interes)
		row.add("cuotas", r.Cuotas)
		row.add("monto_cuota", r.MontoCuota)
		row.add("frecuencia", string(r.Frecuencia))
		row.add("estado", string(r.Estado))
		row.add("fecha_inicio", date(r.FechaInicio))
		row.add("fecha_fin", date(r.FechaFin))
		row.add("balance", r.Balance)
		row.add("total_pagado", r.TotalPagado)
		row.add("mora", r.Mora)
		row.add("nota", optional(r.Nota))
		row.add("garante", optional(r.Garante))
		row.add("fecha_registro", date(r.FechaRegistro))
		row.add("usuario", optional(r.Usuario))
		row.add("tipo", r.Tipo)
	case *pmig.PaymentRecord:
		row.add("prestamo_id", entity.LoanID)
		row.add("cobrador_id", ref(entity.CollectorID))
		row.add("monto", r.Monto)
		row.add("fecha", date(r.Fecha))
		row.add("mora", r.Mora)
		row.add("nota", optional(r.Nota))
		row.add("frecuencia", optional(string(r.Frecuencia)))
		row.add("status", r.Status)
	default:
		return Row{}, fmt.Errorf("insert into %s: unsupported record %T", table, entity.Record)
	}
	return row, nil
}

// InsertSQL renders an INSERT ... RETURNING id statement. placeholder
// returns the bind marker for the 1-based argument n.
func (r Row) InsertSQL(placeholder func(n int) string) string {
	marks := make([]string, len(r.Columns))
	for i := range marks {
		marks[i] = placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		r.Table, strings.Join(r.Columns, ", "), strings.Join(marks, ", "))
}

func keyValue(keys []pmig.NaturalKey, field string) any {
	for _, k := range keys {
		if k.Field == field {
			return k.Value
		}
	}
	return nil
}

func optional(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func date(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func ref(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
