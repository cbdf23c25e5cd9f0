package pmig

import (
	"fmt"
	"strings"
)

// Table names a legacy table. The string value is the table name used in
// the dump's INSERT statements.
type Table string

const (
	TableCobradores Table = "cobradores"
	TableClientes   Table = "clientes"
	TablePrestamos  Table = "prestamos"
	TablePagos      Table = "pagos"
)

// MigrationOrder lists every legacy table in dependency order:
// collectors and clients before loans, loans before payments.
var MigrationOrder = []Table{TableCobradores, TableClientes, TablePrestamos, TablePagos}

// Dependencies returns the tables whose records t references.
func (t Table) Dependencies() []Table {
	switch t {
	case TablePrestamos:
		return []Table{TableCobradores, TableClientes}
	case TablePagos:
		return []Table{TableCobradores, TableClientes, TablePrestamos}
	default:
		return nil
	}
}

// IsValid reports whether t is one of the legacy tables.
func (t Table) IsValid() bool {
	for _, known := range MigrationOrder {
		if t == known {
			return true
		}
	}
	return false
}

func (t Table) String() string { return string(t) }

// ParseTables parses an allowlist such as []string{"clientes", "pagos"}.
// An empty allowlist selects every table. The result is in MigrationOrder.
func ParseTables(names []string) ([]Table, error) {
	if len(names) == 0 {
		return append([]Table(nil), MigrationOrder...), nil
	}

	selected := make(map[Table]bool, len(names))
	for _, name := range names {
		t := Table(strings.ToLower(strings.TrimSpace(name)))
		if t == "" {
			continue
		}
		if !t.IsValid() {
			return nil, fmt.Errorf("%q: %w (known: cobradores, clientes, prestamos, pagos)", name, ErrUnknownTable)
		}
		selected[t] = true
	}

	var out []Table
	for _, t := range MigrationOrder {
		if selected[t] {
			out = append(out, t)
		}
	}
	return out, nil
}

// ExpandDependencies returns selected plus every table they depend on,
// in MigrationOrder.
func ExpandDependencies(selected []Table) []Table {
	need := make(map[Table]bool)
	for _, t := range selected {
		need[t] = true
		for _, dep := range t.Dependencies() {
			need[dep] = true
		}
	}

	var out []Table
	for _, t := range MigrationOrder {
		if need[t] {
			out = append(out, t)
		}
	}
	return out
}
