// Package db opens the PostgreSQL pool the postgres store writes through.
//
// Connector retries transient connection failures and wraps the final error
// with guidance and pmig.ErrConnectionFailed; PoolAdapter narrows the pool
// to the Conn interface.
package db
