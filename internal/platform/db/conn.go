package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queryable is the subset of pgx operations repositories need. It is
// satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx, so the same
// repository code runs against the pool or inside an open transaction.
type Queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type contextKey string

const txKey contextKey = "db_tx"

// ConnFromContext returns the transaction bound to ctx by InTx, or nil when
// the caller is not inside a transaction.
func ConnFromContext(ctx context.Context) Queryable {
	q, _ := ctx.Value(txKey).(pgx.Tx)
	if q == nil {
		return nil
	}
	return q
}

// InTx runs fn inside a single transaction. The transaction is bound to the
// context passed to fn, so any repository call made with that context joins
// it. The transaction commits when fn returns nil and rolls back otherwise,
// leaving no partially constructed state visible to concurrent readers.
// A nil pool runs fn directly; in-memory repositories have no transactions.
func InTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	if pool == nil {
		return fn(ctx)
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
