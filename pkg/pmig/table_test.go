package pmig_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pmig/pkg/pmig"
)

func TestParseTables(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []pmig.Table
	}{
		{"empty selects all", nil, pmig.MigrationOrder},
		{"reordered", []string{"pagos", "clientes"}, []pmig.Table{pmig.TableClientes, pmig.TablePagos}},
		{"case and spaces", []string{" Prestamos ", "PAGOS"}, []pmig.Table{pmig.TablePrestamos, pmig.TablePagos}},
		{"duplicates", []string{"clientes", "clientes"}, []pmig.Table{pmig.TableClientes}},
		{"blank entries skipped", []string{"", "cobradores"}, []pmig.Table{pmig.TableCobradores}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pmig.ParseTables(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTables_Unknown(t *testing.T) {
	_, err := pmig.ParseTables([]string{"clientes", "usuarios"})
	assert.ErrorIs(t, err, pmig.ErrUnknownTable)
}

func TestParseTables_DoesNotAliasMigrationOrder(t *testing.T) {
	got, err := pmig.ParseTables(nil)
	require.NoError(t, err)
	got[0] = "mutated"
	assert.Equal(t, pmig.TableCobradores, pmig.MigrationOrder[0])
}

func TestExpandDependencies(t *testing.T) {
	tests := []struct {
		name     string
		selected []pmig.Table
		want     []pmig.Table
	}{
		{"clientes alone", []pmig.Table{pmig.TableClientes}, []pmig.Table{pmig.TableClientes}},
		{"prestamos pulls lookups", []pmig.Table{pmig.TablePrestamos},
			[]pmig.Table{pmig.TableCobradores, pmig.TableClientes, pmig.TablePrestamos}},
		{"pagos pulls everything", []pmig.Table{pmig.TablePagos}, pmig.MigrationOrder},
		{"nothing", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pmig.ExpandDependencies(tt.selected))
		})
	}
}

func TestTable_IsValid(t *testing.T) {
	for _, tbl := range pmig.MigrationOrder {
		assert.True(t, tbl.IsValid(), tbl.String())
	}
	assert.False(t, pmig.Table("Clientes").IsValid())
	assert.False(t, pmig.Table("").IsValid())
}
