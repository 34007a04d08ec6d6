package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "handover/pkg/domain"
	audit "handover/pkg/platform/audit"
	txcontext "handover/pkg/platform/tx"
)

// Store implements audit.Store on the audit_log table. Rows are insert-only;
// seq (BIGSERIAL) gives the append order used by every listing.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Schema creates the audit_log table. Safe to run repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_log (
	seq           BIGSERIAL PRIMARY KEY,
	log_id        UUID NOT NULL UNIQUE,
	type          TEXT NOT NULL,
	transfer_id   UUID NOT NULL,
	ref_id        TEXT NOT NULL,
	action        TEXT NOT NULL,
	actor_user_id UUID,
	details_json  JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_log_transfer_idx ON audit_log (transfer_id, seq);
CREATE INDEX IF NOT EXISTS audit_log_ref_idx ON audit_log (ref_id, seq);
`

// Migrate applies Schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate audit_log: %w", err)
	}
	return nil
}

// Append inserts entry, joining the transaction carried by ctx if any. The
// insert runs under its own savepoint so a failed write leaves the caller's
// transaction committable. Replaying an already stored log id is a no-op.
func (s *Store) Append(ctx context.Context, entry audit.Entry) error {
	var actor *uuid.UUID
	if entry.ActorID != nil {
		a := uuid.UUID(*entry.ActorID)
		actor = &a
	}
	details := []byte(entry.DetailsJSON)
	if len(details) == 0 {
		details = []byte(`{}`)
	}
	err := txcontext.Savepoint(ctx, s.db, "audit_entry", func(exec txcontext.Executor) error {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO audit_log (log_id, type, transfer_id, ref_id, action, actor_user_id, details_json, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (log_id) DO NOTHING
		`,
			uuid.UUID(entry.LogID),
			string(entry.Type),
			uuid.UUID(entry.TransferID),
			entry.RefID,
			string(entry.Action),
			actor,
			details,
			entry.CreatedAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

const selectColumns = `SELECT log_id, type, transfer_id, ref_id, action, actor_user_id, details_json, created_at FROM audit_log`

func (s *Store) ListByRef(ctx context.Context, refID string) ([]audit.Entry, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, selectColumns+` WHERE ref_id = $1 ORDER BY seq`, refID)
	if err != nil {
		return nil, fmt.Errorf("query audit entries by ref: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *Store) ListByTransfer(ctx context.Context, transferID id.TransferID) ([]audit.Entry, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, selectColumns+` WHERE transfer_id = $1 ORDER BY seq`, uuid.UUID(transferID))
	if err != nil {
		return nil, fmt.Errorf("query audit entries by transfer: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]audit.Entry, error) {
	var entries []audit.Entry
	for rows.Next() {
		var (
			e          audit.Entry
			logID      uuid.UUID
			transferID uuid.UUID
			typ        string
			action     string
			actor      uuid.NullUUID
			details    []byte
		)
		if err := rows.Scan(&logID, &typ, &transferID, &e.RefID, &action, &actor, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.LogID = id.LogID(logID)
		e.TransferID = id.TransferID(transferID)
		e.Type = audit.EntryType(typ)
		e.Action = audit.Action(action)
		e.DetailsJSON = details
		if actor.Valid {
			a := id.UserID(actor.UUID)
			e.ActorID = &a
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
