// Package sqlite is a file-backed pmig.Store for rehearsal migrations and
// small installations. The schema is managed by embedded goose migrations.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/vvka-141/pmig/internal/store"
	"github.com/vvka-141/pmig/pkg/pmig"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store writes migrated entities into a SQLite database.
// Thread-Safety: Safe for concurrent use; writes are serialized on a single
// connection.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies pending
// migrations. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// one writer at a time; an in-memory database exists per connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open sqlite database %s: %w: %w", path, pmig.ErrConnectionFailed, err)
	}

	s := &Store{db: db}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate runs all pending schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SchemaVersion returns the applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int64, error) {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite"); err != nil {
		return 0, fmt.Errorf("failed to set dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, s.db)
}

func (s *Store) FindByNaturalKey(ctx context.Context, table pmig.Table, key pmig.NaturalKey) (int64, bool, error) {
	col, err := store.KeyColumn(table, key.Field)
	if err != nil {
		return 0, false, err
	}

	var id int64
	query := fmt.Sprintf("SELECT id FROM %s WHERE %s = ?", table, col)
	err = s.db.QueryRowContext(ctx, query, key.Value).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
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

	values := make([]any, len(row.Values))
	for i, v := range row.Values {
		if t, ok := v.(time.Time); ok {
			v = t.Format(time.DateOnly)
		}
		values[i] = v
	}

	var id int64
	err = s.db.QueryRowContext(ctx, row.InsertSQL(placeholder), values...).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert into %s: %w", table, pmig.ErrDuplicateKey)
		}
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}
	return id, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func placeholder(int) string { return "?" }

func isUniqueViolation(err error) bool {
	var sqlErr *sqlite.Error
	if !errors.As(err, &sqlErr) {
		return false
	}
	code := sqlErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

var _ pmig.Store = (*Store)(nil)
