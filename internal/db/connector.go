package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pmig/internal/retry"
	"github.com/vvka-141/pmig/pkg/pmig"
)

// Connection pool configuration constants
const (
	// DefaultMinConns maintains at least one connection in the pool.
	DefaultMinConns = 1

	// DefaultMaxConnIdleTime keeps connections alive between tables of a
	// long migration.
	DefaultMaxConnIdleTime = 30 * time.Minute

	// DefaultApplicationName is reported in pg_stat_activity.
	DefaultApplicationName = "pmig"
)

// configurePool sizes the pool for the persistence worker pool: one
// connection per worker.
func configurePool(poolConfig *pgxpool.Config, workers int) {
	if workers < DefaultMinConns {
		workers = pmig.DefaultWorkers
	}
	poolConfig.MaxConns = int32(workers)
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	if poolConfig.ConnConfig.RuntimeParams["application_name"] == "" {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = DefaultApplicationName
	}
}

// Connector opens a pgx pool for a DSN with automatic retry on transient
// failures.
type Connector struct {
	dsn           string
	workers       int
	retryExecutor *retry.Executor
}

// NewConnector creates a Connector for dsn sized for workers concurrent
// store calls.
// Retry behavior uses pmig defaults: DefaultRetryMaxAttempts attempts,
// exponential backoff starting at DefaultRetryInitialDelay, max DefaultRetryMaxDelay.
func NewConnector(dsn string, workers int) *Connector {
	classifier := retry.NewPostgreSQLErrorClassifier()
	strategy := retry.NewExponentialBackoff(pmig.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(pmig.DefaultRetryInitialDelay),
		retry.WithMaxDelay(pmig.DefaultRetryMaxDelay),
	)

	return &Connector{
		dsn:           dsn,
		workers:       workers,
		retryExecutor: retry.NewExecutor(classifier, strategy),
	}
}

// Connect establishes a connection pool with automatic retry.
func (c *Connector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(c.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w: %w", pmig.ErrInvalidConfig, err)
	}
	configurePool(poolConfig, c.workers)

	host := poolConfig.ConnConfig.Host
	port := int(poolConfig.ConnConfig.Port)
	database := poolConfig.ConnConfig.Database

	var pool *pgxpool.Pool
	err = c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, wrapConnectionError(err, host, port, database)
	}
	return pool, nil
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
// The result always chains pmig.ErrConnectionFailed.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port in --dsn

%w: %w`, addr, host, port, pmig.ErrConnectionFailed, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable

%w: %w`, host, pmig.ErrConnectionFailed, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password in the DSN or $PGPASSWORD
  - User does not have access to the database

%w: %w`, database, pmig.ErrConnectionFailed, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

The target database must exist before migrating. To create it:
  createdb %s

%w: %w`, database, database, pmig.ErrConnectionFailed, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets

%w: %w`, addr, pmig.ErrConnectionFailed, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error

Check the sslmode parameter of the DSN.

%w: %w`, pmig.ErrConnectionFailed, err)

	case strings.Contains(errStr, "too many connections"):
		return fmt.Errorf(`too many connections to database "%s"

Lower --workers or raise max_connections on the server.

%w: %w`, database, pmig.ErrConnectionFailed, err)

	default:
		return fmt.Errorf("failed to connect to database: %w: %w", pmig.ErrConnectionFailed, err)
	}
}
