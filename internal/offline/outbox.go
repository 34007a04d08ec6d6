package offline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"handover/internal/transfer/models"
	id "handover/pkg/domain"
)

type state string

const (
	statePending   state = "PENDING"
	stateDelivered state = "DELIVERED"
	stateDead      state = "DEAD"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS outbox (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		step_id     TEXT NOT NULL UNIQUE,
		transfer_id TEXT NOT NULL,
		actor_id    TEXT NOT NULL,
		kind        TEXT NOT NULL,
		payload     TEXT NOT NULL,
		queued_at   TEXT NOT NULL,
		state       TEXT NOT NULL DEFAULT 'PENDING',
		attempts    INTEGER NOT NULL DEFAULT 0,
		last_error  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_state_seq ON outbox(state, seq)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_transfer ON outbox(transfer_id, state)`,
}

// Outbox is the device-local queue of step submissions, backed by SQLite.
type Outbox struct {
	db *sql.DB
}

// Open opens (or creates) the outbox at dsn. Pass ":memory:" for tests.
func Open(ctx context.Context, dsn string) (*Outbox, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open outbox: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create outbox schema: %w", err)
		}
	}
	return &Outbox{db: db}, nil
}

func (o *Outbox) Close() error {
	return o.db.Close()
}

// Enqueue stores req unless a request with the same StepID is already queued.
// It reports whether a new row was written.
func (o *Outbox) Enqueue(ctx context.Context, req Request) (bool, error) {
	res, err := o.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO outbox (step_id, transfer_id, actor_id, kind, payload, queued_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		req.StepID.String(), req.TransferID.String(), req.ActorID.String(),
		string(req.Kind), string(req.Payload), req.QueuedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("enqueue %s: %w", req.StepID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("enqueue %s: %w", req.StepID, err)
	}
	return n == 1, nil
}

// Pending returns up to limit undelivered requests in queue order.
func (o *Outbox) Pending(ctx context.Context, limit int) ([]Request, error) {
	return o.list(ctx, statePending, limit)
}

// DeadLetters returns requests the server refused permanently.
func (o *Outbox) DeadLetters(ctx context.Context) ([]Request, error) {
	return o.list(ctx, stateDead, -1)
}

func (o *Outbox) list(ctx context.Context, st state, limit int) ([]Request, error) {
	rows, err := o.db.QueryContext(ctx, `
		SELECT step_id, transfer_id, actor_id, kind, payload, queued_at, attempts, last_error
		FROM outbox WHERE state = ? ORDER BY seq LIMIT ?`, string(st), limit)
	if err != nil {
		return nil, fmt.Errorf("list outbox: %w", err)
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		var (
			req                         Request
			stepID, transferID, actorID string
			kind, payload, queuedAt     string
		)
		if err := rows.Scan(&stepID, &transferID, &actorID, &kind, &payload, &queuedAt, &req.Attempts, &req.LastError); err != nil {
			return nil, fmt.Errorf("scan outbox: %w", err)
		}
		if req.StepID, err = id.ParseStepID(stepID); err != nil {
			return nil, err
		}
		if req.TransferID, err = id.ParseTransferID(transferID); err != nil {
			return nil, err
		}
		if req.ActorID, err = id.ParseUserID(actorID); err != nil {
			return nil, err
		}
		if req.QueuedAt, err = time.Parse(time.RFC3339Nano, queuedAt); err != nil {
			return nil, fmt.Errorf("parse queued_at: %w", err)
		}
		req.Kind = models.StepKind(kind)
		req.Payload = []byte(payload)
		out = append(out, req)
	}
	return out, rows.Err()
}

// MarkDelivered removes stepID from the pending set.
func (o *Outbox) MarkDelivered(ctx context.Context, stepID id.StepID) error {
	return o.setState(ctx, stepID, stateDelivered, "")
}

// MarkDead parks stepID with the server's refusal so the user can act on it.
func (o *Outbox) MarkDead(ctx context.Context, stepID id.StepID, reason string) error {
	return o.setState(ctx, stepID, stateDead, reason)
}

// RecordFailure keeps stepID pending and notes the attempt.
func (o *Outbox) RecordFailure(ctx context.Context, stepID id.StepID, reason string) error {
	return o.setState(ctx, stepID, statePending, reason)
}

func (o *Outbox) setState(ctx context.Context, stepID id.StepID, st state, reason string) error {
	res, err := o.db.ExecContext(ctx, `
		UPDATE outbox SET state = ?, attempts = attempts + 1, last_error = ?
		WHERE step_id = ?`, string(st), reason, stepID.String())
	if err != nil {
		return fmt.Errorf("update outbox %s: %w", stepID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update outbox %s: %w", stepID, err)
	}
	if n == 0 {
		return ErrUnknownRequest
	}
	return nil
}

// IsDirty reports whether transferID has writes not yet acknowledged by the server.
func (o *Outbox) IsDirty(ctx context.Context, transferID id.TransferID) (bool, error) {
	var n int
	err := o.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM outbox WHERE transfer_id = ? AND state = ?`,
		transferID.String(), string(statePending),
	).Scan(&n)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("check dirty: %w", err)
	}
	return n > 0, nil
}

// ErrUnknownRequest is returned when a state change targets a step id that was never queued.
var ErrUnknownRequest = errors.New("offline: unknown request")
