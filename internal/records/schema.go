package records

import "github.com/vvka-141/pmig/pkg/pmig"

// ColumnType is the legacy type of a positional column.
type ColumnType int

const (
	ColInt ColumnType = iota
	ColFloat
	ColString
	ColEpoch // integer UNIX seconds
)

// kind is the coercion target for the column type.
func (c ColumnType) kind() pmig.Kind {
	switch c {
	case ColInt, ColEpoch:
		return pmig.KindInt
	case ColFloat:
		return pmig.KindFloat
	default:
		return pmig.KindString
	}
}

// Column is one positional column of a legacy table.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// Schema is the positional column layout of one legacy table. Tuples shorter
// than the schema are rejected; extra trailing fields from newer dump
// versions are ignored.
type Schema struct {
	Table   pmig.Table
	Columns []Column
}

// MinArity is the number of fields a tuple needs.
func (s Schema) MinArity() int { return len(s.Columns) }

func col(name string, t ColumnType) Column      { return Column{Name: name, Type: t} }
func nullable(name string, t ColumnType) Column { return Column{Name: name, Type: t, Nullable: true} }

var schemas = map[pmig.Table]Schema{
	pmig.TableClientes: {
		Table: pmig.TableClientes,
		Columns: []Column{
			col("id", ColInt),
			col("nombre", ColString),
			nullable("apodo", ColString),
			col("telefono", ColString),
			col("direccion", ColString),
			col("zona", ColInt),
			col("ocupacion", ColString),
			col("fecha_registro", ColEpoch),
			col("referido_por", ColInt),
			col("activo", ColInt),
			col("status", ColInt),
			col("cedula", ColString),
			col("celular", ColString),
			nullable("email", ColString),
			col("balance", ColFloat),
			col("tipo", ColInt),
			col("usuario", ColString),
			col("clave", ColString),
		},
	},
	pmig.TableCobradores: {
		Table: pmig.TableCobradores,
		Columns: []Column{
			col("id", ColInt),
			col("nombre", ColString),
			col("telefono", ColString),
			col("direccion", ColString),
			col("cedula", ColString),
			col("zona", ColInt),
			col("comision", ColFloat),
			col("fecha_ingreso", ColEpoch),
			col("status", ColInt),
			col("usuario", ColString),
			col("clave", ColString),
			nullable("celular", ColString),
			nullable("email", ColString),
		},
	},
	pmig.TablePrestamos: {
		Table: pmig.TablePrestamos,
		Columns: []Column{
			col("id", ColInt),
			col("codigo", ColString),
			col("cliente_id", ColInt),
			col("cobrador_id", ColInt),
			col("monto", ColFloat),
			col("interes", ColFloat),
			col("cuotas", ColInt),
			col("monto_cuota", ColFloat),
			col("dias_pago", ColInt),
			col("fecha_inicio", ColEpoch),
			col("fecha_fin", ColEpoch),
			col("balance", ColFloat),
			col("total_pagado", ColFloat),
			col("mora", ColFloat),
			col("saldado", ColInt),
			col("status", ColInt),
			nullable("nota", ColString),
			nullable("garante", ColString),
			col("fecha_registro", ColEpoch),
			nullable("usuario", ColString),
			col("tipo", ColInt),
		},
	},
	pmig.TablePagos: {
		Table: pmig.TablePagos,
		Columns: []Column{
			col("id", ColInt),
			col("prestamo_id", ColInt),
			col("monto", ColFloat),
			col("fecha", ColEpoch),
			col("cobrador_id", ColInt),
			col("mora", ColFloat),
			nullable("nota", ColString),
			col("status", ColInt),
		},
	},
}

// SchemaFor returns the column layout of table.
func SchemaFor(table pmig.Table) (Schema, bool) {
	s, ok := schemas[table]
	return s, ok
}
