// Package postgres is the pmig.Store for the back office's PostgreSQL
// database. Every insert is its own statement and commit; natural keys are
// enforced by unique indexes.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/pmig/internal/db"
	"github.com/vvka-141/pmig/internal/store"
	"github.com/vvka-141/pmig/pkg/pmig"
)

//go:embed schema.sql
var schemaSQL string

// uniqueViolation is the SQLSTATE of a unique index collision.
const uniqueViolation = "23505"

// Store writes migrated entities through a pgx pool.
// Thread-Safety: Safe for concurrent use.
type Store struct {
	conn db.Conn
}

// New wraps an open connection. Call Bootstrap before the first insert.
func New(conn db.Conn) *Store {
	return &Store{conn: conn}
}

// Open connects to dsn with a pool sized for workers and bootstraps the
// schema.
func Open(ctx context.Context, dsn string, workers int) (*Store, error) {
	pool, err := db.NewConnector(dsn, workers).Connect(ctx)
	if err != nil {
		return nil, err
	}

	s := New(db.NewPoolAdapter(pool))
	if err := s.Bootstrap(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Bootstrap creates the target tables when missing.
func (s *Store) Bootstrap(ctx context.Context) error {
	if _, err := s.conn.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}
	return nil
}

func (s *Store) FindByNaturalKey(ctx context.Context, table pmig.Table, key pmig.NaturalKey) (int64, bool, error) {
	col, err := store.KeyColumn(table, key.Field)
	if err != nil {
		return 0, false, err
	}

	var id int64
	query := fmt.Sprintf("SELECT id FROM %s WHERE %s = $1", table, col)
	err = s.conn.QueryRow(ctx, query, key.Value).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find %s by %s: %w", table, key.Field, err)
	}
	return id, true, nil
}

// Insert fails with pmig.ErrDuplicateKey when a unique natural key column
// already holds one of the entity's keys.
func (s *Store) Insert(ctx context.Context, table pmig.Table, entity pmig.Entity) (int64, error) {
	row, err := store.RowFor(table, entity)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.conn.QueryRow(ctx, row.InsertSQL(placeholder), row.Values...).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, fmt.Errorf("insert into %s (%s): %w", table, pgErr.ConstraintName, pmig.ErrDuplicateKey)
		}
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}
	return id, nil
}

func (s *Store) Close() error {
	s.conn.Close()
	return nil
}

func placeholder(n int) string { return "$" + strconv.Itoa(n) }

var _ pmig.Store = (*Store)(nil)
