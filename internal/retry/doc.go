// Package retry retries transient store failures with exponential backoff.
//
// Each target store has its own ErrorClassifier: PostgreSQL connection
// and lock errors, SQLite busy/locked errors, or none for the in-memory
// store. Constraint violations are never retried.
//
// # Example Usage
//
//	executor := retry.NewExecutor(
//	    retry.NewPostgreSQLErrorClassifier(),
//	    retry.NewExponentialBackoff(pmig.DefaultRetryMaxAttempts),
//	)
//	id, err := retry.Do(ctx, executor, func(ctx context.Context) (int64, error) {
//	    return store.Insert(ctx, table, entity)
//	})
//
// # Thread Safety
//
// Executor instances are safe for concurrent use. Use WithOnRetry() to create
// independent configurations per goroutine.
package retry
