package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"handover/internal/transfer/models"
	id "handover/pkg/domain"
	"handover/pkg/platform/sentinel"
	txcontext "handover/pkg/platform/tx"
)

// DisputeStore relies on a partial unique index for the one-open-dispute rule.
type DisputeStore struct {
	db *sql.DB
}

func NewDisputeStore(db *sql.DB) *DisputeStore {
	return &DisputeStore{db: db}
}

const disputeColumns = `id, transfer_id, raised_by, reason, status, prior_status,
	resolution_notes, resolved_by, created_at, resolved_at`

func (s *DisputeStore) Create(ctx context.Context, d *models.Dispute) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO disputes (`+disputeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(d.ID), uuid.UUID(d.TransferID), uuid.UUID(d.RaisedBy), d.Reason,
		string(d.Status), string(d.PriorStatus), d.ResolutionNotes, nullUUID(d.ResolvedBy),
		d.CreatedAt, nullTime(d.ResolvedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert dispute: %w", err)
	}
	return nil
}

func (s *DisputeStore) FindByID(ctx context.Context, disputeID id.DisputeID) (*models.Dispute, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+disputeColumns+` FROM disputes WHERE id = $1`, uuid.UUID(disputeID))
	d, err := scanDispute(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find dispute: %w", err)
	}
	return d, nil
}

func (s *DisputeStore) ListByTransfer(ctx context.Context, transferID id.TransferID) ([]*models.Dispute, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+disputeColumns+` FROM disputes WHERE transfer_id = $1 ORDER BY seq`, uuid.UUID(transferID))
	if err != nil {
		return nil, fmt.Errorf("list disputes: %w", err)
	}
	defer rows.Close()
	out := []*models.Dispute{}
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dispute: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Close records the resolution of an open dispute. A dispute that is no
// longer open yields sentinel.ErrConflict.
func (s *DisputeStore) Close(ctx context.Context, d *models.Dispute) error {
	exec := txcontext.Exec(ctx, s.db)
	res, err := exec.ExecContext(ctx, `
		UPDATE disputes SET status = $1, resolution_notes = $2, resolved_by = $3, resolved_at = $4
		WHERE id = $5 AND status = 'OPEN'`,
		string(d.Status), d.ResolutionNotes, nullUUID(d.ResolvedBy), nullTime(d.ResolvedAt), uuid.UUID(d.ID),
	)
	if err != nil {
		return fmt.Errorf("close dispute: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("close dispute: %w", err)
	}
	if n > 0 {
		return nil
	}
	var exists bool
	if err := exec.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM disputes WHERE id = $1)`,
		uuid.UUID(d.ID)).Scan(&exists); err != nil {
		return fmt.Errorf("check dispute: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrConflict
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func scanDispute(row scanner) (*models.Dispute, error) {
	var (
		d                       models.Dispute
		disputeID, transfer, by uuid.UUID
		status, prior           string
		resolvedBy              uuid.NullUUID
		resolvedAt              sql.NullTime
	)
	err := row.Scan(&disputeID, &transfer, &by, &d.Reason, &status, &prior,
		&d.ResolutionNotes, &resolvedBy, &d.CreatedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	d.ID = id.DisputeID(disputeID)
	d.TransferID = id.TransferID(transfer)
	d.RaisedBy = id.UserID(by)
	d.Status = models.DisputeStatus(status)
	d.PriorStatus = models.Status(prior)
	if resolvedBy.Valid {
		u := id.UserID(resolvedBy.UUID)
		d.ResolvedBy = &u
	}
	if resolvedAt.Valid {
		at := resolvedAt.Time
		d.ResolvedAt = &at
	}
	return &d, nil
}
