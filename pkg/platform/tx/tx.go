package tx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

type ctxKey struct{}

var txKey = ctxKey{}

// Executor is the subset of *sql.DB and *sql.Tx that stores write through.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Exec returns the transaction carried by ctx, falling back to db. Stores that
// share a database (ledger and audit log) use it so one submission commits or
// rolls back as a unit.
func Exec(ctx context.Context, db *sql.DB) Executor {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}

// Savepoint runs fn under a named savepoint of the transaction carried by ctx.
// When fn fails the transaction is rolled back to the savepoint and stays
// usable for the rest of the unit of work. Without a transaction fn runs
// directly against db.
func Savepoint(ctx context.Context, db *sql.DB, name string, fn func(Executor) error) error {
	tx, ok := From(ctx)
	if !ok {
		return fn(db)
	}
	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("savepoint %s: %w", name, err)
	}
	if err := fn(tx); err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback to savepoint %s: %w", name, rbErr))
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("release savepoint %s: %w", name, err)
	}
	return nil
}

type shardKey struct{}

// WithShardKey names the aggregate a transaction touches so in-memory
// runners can serialise per aggregate instead of globally.
func WithShardKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, shardKey{}, key)
}

// ShardKey returns the key set by WithShardKey, or "".
func ShardKey(ctx context.Context) string {
	k, _ := ctx.Value(shardKey{}).(string)
	return k
}

// Journal collects undo actions for stores without native transactions.
type Journal struct {
	mu   sync.Mutex
	undo []func()
}

type journalKey struct{}

// WithJournal starts a journal that OnRollback calls made under ctx record into.
func WithJournal(ctx context.Context) (context.Context, *Journal) {
	j := &Journal{}
	return context.WithValue(ctx, journalKey{}, j), j
}

// OnRollback registers undo for the journal carried by ctx. Without a journal
// the write is already final and undo is dropped.
func OnRollback(ctx context.Context, undo func()) {
	j, ok := ctx.Value(journalKey{}).(*Journal)
	if !ok {
		return
	}
	j.mu.Lock()
	j.undo = append(j.undo, undo)
	j.mu.Unlock()
}

// Rollback runs the recorded undo actions newest first.
func (j *Journal) Rollback() {
	j.mu.Lock()
	undo := j.undo
	j.undo = nil
	j.mu.Unlock()
	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
}
