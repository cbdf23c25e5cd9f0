package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pmig/internal/db"
	"github.com/vvka-141/pmig/pkg/pmig"
)

type fakeRow struct {
	id  int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.id
	return nil
}

// fakeConn records statements and answers every QueryRow with row.
type fakeConn struct {
	row     fakeRow
	queries []string
	args    [][]any
	closed  bool
}

func (c *fakeConn) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.queries = append(c.queries, sql)
	return pgconn.CommandTag{}, nil
}

func (c *fakeConn) QueryRow(_ context.Context, sql string, args ...any) db.Row {
	c.queries = append(c.queries, sql)
	c.args = append(c.args, args)
	return c.row
}

func (c *fakeConn) Close() { c.closed = true }

func TestStore_FindByNaturalKey(t *testing.T) {
	tests := []struct {
		name      string
		table     pmig.Table
		key       pmig.NaturalKey
		row       fakeRow
		wantQuery string
		wantID    int64
		wantFound bool
		wantErr   error
	}{
		{
			name:      "Found by cedula",
			table:     pmig.TableClientes,
			key:       pmig.NaturalKey{Field: pmig.KeyCedula, Value: "02600856443"},
			row:       fakeRow{id: 7},
			wantQuery: "SELECT id FROM clientes WHERE cedula_key = $1",
			wantID:    7,
			wantFound: true,
		},
		{
			name:      "Not found",
			table:     pmig.TablePrestamos,
			key:       pmig.NaturalKey{Field: pmig.KeyCodigo, Value: "P-1"},
			row:       fakeRow{err: pgx.ErrNoRows},
			wantQuery: "SELECT id FROM prestamos WHERE codigo = $1",
		},
		{
			name:    "Unsupported key",
			table:   pmig.TablePagos,
			key:     pmig.NaturalKey{Field: pmig.KeyCedula, Value: "1"},
			wantErr: pmig.ErrUnsupportedKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &fakeConn{row: tt.row}
			id, found, err := New(conn).FindByNaturalKey(context.Background(), tt.table, tt.key)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, conn.queries)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantFound, found)
			require.Len(t, conn.queries, 1)
			assert.Equal(t, tt.wantQuery, conn.queries[0])
			assert.Equal(t, []any{tt.key.Value}, conn.args[0])
		})
	}
}

func TestStore_Insert(t *testing.T) {
	conn := &fakeConn{row: fakeRow{id: 42}}
	entity := pmig.Entity{Record: &pmig.PaymentRecord{ID: 100, Monto: 600}, LoanID: 9}

	id, err := New(conn).Insert(context.Background(), pmig.TablePagos, entity)

	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	require.Len(t, conn.queries, 1)
	assert.True(t, strings.HasPrefix(conn.queries[0], "INSERT INTO pagos (legacy_id, legacy_key, prestamo_id"))
	assert.True(t, strings.HasSuffix(conn.queries[0], "RETURNING id"))
	assert.Equal(t, int64(100), conn.args[0][0])
}

func TestStore_Insert_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{
			name:    "Unique violation is a duplicate",
			err:     &pgconn.PgError{Code: "23505", ConstraintName: "clientes_cedula_key_key"},
			wantErr: pmig.ErrDuplicateKey,
		},
		{
			name: "Other errors pass through",
			err:  &pgconn.PgError{Code: "23502"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &fakeConn{row: fakeRow{err: tt.err}}
			_, err := New(conn).Insert(context.Background(), pmig.TableClientes,
				pmig.Entity{Record: &pmig.ClientRecord{ID: 1, Cedula: "001"}})

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.False(t, errors.Is(err, pmig.ErrDuplicateKey))
				var pgErr *pgconn.PgError
				assert.True(t, errors.As(err, &pgErr))
			}
		})
	}
}

func TestStore_BootstrapAndClose(t *testing.T) {
	conn := &fakeConn{}
	s := New(conn)

	require.NoError(t, s.Bootstrap(context.Background()))
	require.Len(t, conn.queries, 1)
	assert.Contains(t, conn.queries[0], "CREATE TABLE IF NOT EXISTS pagos")

	require.NoError(t, s.Close())
	assert.True(t, conn.closed)
}
