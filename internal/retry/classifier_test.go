package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPostgreSQLErrorClassifier_IsTransient(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()

	tests := []struct {
		name        string
		err         error
		isTransient bool
	}{
		{name: "nil", err: nil, isTransient: false},
		{name: "connection_failure (08006)", err: &pgconn.PgError{Code: "08006"}, isTransient: true},
		{name: "too_many_connections (53300)", err: &pgconn.PgError{Code: "53300"}, isTransient: true},
		{name: "admin_shutdown (57P01)", err: &pgconn.PgError{Code: "57P01"}, isTransient: true},
		{name: "serialization_failure (40001)", err: &pgconn.PgError{Code: "40001"}, isTransient: true},
		{name: "deadlock_detected (40P01)", err: &pgconn.PgError{Code: "40P01"}, isTransient: true},
		{name: "lock_not_available (55P03)", err: &pgconn.PgError{Code: "55P03"}, isTransient: true},
		{name: "unique_violation (23505)", err: &pgconn.PgError{Code: "23505"}, isTransient: false},
		{name: "not_null_violation (23502)", err: &pgconn.PgError{Code: "23502"}, isTransient: false},
		{name: "wrapped pg error", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "08000"}), isTransient: true},
		{
			name:        "connection refused",
			err:         &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED},
			isTransient: true,
		},
		{name: "message pattern", err: errors.New("read: connection reset by peer"), isTransient: true},
		{name: "context canceled", err: context.Canceled, isTransient: false},
		{name: "deadline exceeded", err: fmt.Errorf("query: %w", context.DeadlineExceeded), isTransient: false},
		{name: "plain error", err: errors.New("syntax error"), isTransient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isTransient, classifier.IsTransient(tt.err))
		})
	}
}

func TestSQLiteErrorClassifier_IsTransient(t *testing.T) {
	classifier := NewSQLiteErrorClassifier()

	assert.False(t, classifier.IsTransient(nil))
	assert.True(t, classifier.IsTransient(errors.New("database is locked (5) (SQLITE_BUSY)")))
	assert.False(t, classifier.IsTransient(errors.New("UNIQUE constraint failed: clientes.cedula")))
	assert.False(t, classifier.IsTransient(context.Canceled))
}

func TestNeverRetry(t *testing.T) {
	assert.False(t, NeverRetry{}.IsTransient(errors.New("boom")))
}
