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

// StepStore is insert-only. Rows are never updated or deleted.
type StepStore struct {
	db *sql.DB
}

func NewStepStore(db *sql.DB) *StepStore {
	return &StepStore{db: db}
}

const stepColumns = `verification_id, transfer_id, step, status, actor_id,
	photo_before_url, photo_after_url, photo_before_meta_json, photo_after_meta_json,
	gps_lat, gps_lng, explanation, identity_doc_type, identity_doc_ref, identity_doc_number,
	signature_ref, notes, offline, created_at`

// Append inserts step. A replayed verification id yields sentinel.ErrAlreadyExists.
func (s *StepStore) Append(ctx context.Context, step *models.VerificationStep) error {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO verification_steps (`+stepColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (verification_id) DO NOTHING`,
		uuid.UUID(step.ID), uuid.UUID(step.TransferID), string(step.Kind), string(step.Status), uuid.UUID(step.ActorID),
		step.PhotoBeforeURL, step.PhotoAfterURL, step.PhotoBeforeMetaJSON, step.PhotoAfterMetaJSON,
		nullFloat(step.GPSLat), nullFloat(step.GPSLng), step.Explanation,
		string(step.IdentityDocType), step.IdentityDocRef, step.IdentityDocNumber,
		step.SignatureRef, step.Notes, step.Offline, step.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert verification step: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert verification step: %w", err)
	}
	if n == 0 {
		return sentinel.ErrAlreadyExists
	}
	return nil
}

func (s *StepStore) FindByID(ctx context.Context, stepID id.StepID) (*models.VerificationStep, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+stepColumns+` FROM verification_steps WHERE verification_id = $1`, uuid.UUID(stepID))
	step, err := scanStep(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verification step: %w", err)
	}
	return step, nil
}

// ListByTransfer returns steps in append order.
func (s *StepStore) ListByTransfer(ctx context.Context, transferID id.TransferID) ([]*models.VerificationStep, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+stepColumns+` FROM verification_steps WHERE transfer_id = $1 ORDER BY seq`, uuid.UUID(transferID))
	if err != nil {
		return nil, fmt.Errorf("list verification steps: %w", err)
	}
	defer rows.Close()
	out := []*models.VerificationStep{}
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verification step: %w", err)
		}
		out = append(out, step)
	}
	return out, rows.Err()
}

func scanStep(row scanner) (*models.VerificationStep, error) {
	var (
		step                    models.VerificationStep
		stepID, transfer, actor uuid.UUID
		kind, status, docType   string
		lat, lng                sql.NullFloat64
		createdAt               time.Time
	)
	err := row.Scan(&stepID, &transfer, &kind, &status, &actor,
		&step.PhotoBeforeURL, &step.PhotoAfterURL, &step.PhotoBeforeMetaJSON, &step.PhotoAfterMetaJSON,
		&lat, &lng, &step.Explanation, &docType, &step.IdentityDocRef, &step.IdentityDocNumber,
		&step.SignatureRef, &step.Notes, &step.Offline, &createdAt)
	if err != nil {
		return nil, err
	}
	step.ID = id.StepID(stepID)
	step.TransferID = id.TransferID(transfer)
	step.ActorID = id.UserID(actor)
	step.Kind = models.StepKind(kind)
	step.Status = models.StepStatus(status)
	step.IdentityDocType = models.DocumentType(docType)
	step.GPSLat = floatPtr(lat)
	step.GPSLng = floatPtr(lng)
	step.CreatedAt = createdAt
	return &step, nil
}
