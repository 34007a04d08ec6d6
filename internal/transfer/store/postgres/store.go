// Package postgres persists transfers, steps and disputes in PostgreSQL.
// Every store writes through txcontext.Exec so a submission's step, status
// and audit entry commit together when run under Tx.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"handover/internal/geo"
	"handover/internal/transfer/models"
	id "handover/pkg/domain"
	dErrors "handover/pkg/domain-errors"
	"handover/pkg/platform/sentinel"
	txcontext "handover/pkg/platform/tx"
)

//go:embed schema.sql
var Schema string

const (
	uniqueViolation  = "23505"
	defaultTxTimeout = 5 * time.Second
)

// Migrate applies the schema. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply transfer schema: %w", err)
	}
	return nil
}

// Tx runs a function inside one database transaction carried in ctx.
type Tx struct {
	db      *sql.DB
	timeout time.Duration
}

func NewTx(db *sql.DB) *Tx {
	return &Tx{db: db, timeout: defaultTxTimeout}
}

func (t *Tx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func nullUUID(u *id.UserID) uuid.NullUUID {
	if u == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*u), Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

type TransferStore struct {
	db *sql.DB
}

func NewTransferStore(db *sql.DB) *TransferStore {
	return &TransferStore{db: db}
}

const transferColumns = `id, from_party_id, to_party_id, product_id, order_id, amount, currency, type, status,
	baseline_lat, baseline_lng, notes, dirty, version, created_at, updated_at`

func (s *TransferStore) Create(ctx context.Context, t *models.Transfer) error {
	var lat, lng sql.NullFloat64
	if t.Baseline != nil {
		lat = sql.NullFloat64{Float64: t.Baseline.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: t.Baseline.Lng, Valid: true}
	}
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO transfers (`+transferColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		uuid.UUID(t.ID), uuid.UUID(t.FromParty), nullUUID(t.ToParty), t.ProductID, t.OrderID,
		t.Amount.String(), t.Currency, string(t.Type), string(t.Status),
		lat, lng, t.Notes, t.Dirty, t.Version, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

func (s *TransferStore) FindByID(ctx context.Context, transferID id.TransferID) (*models.Transfer, error) {
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+transferColumns+` FROM transfers WHERE id = $1`, uuid.UUID(transferID))
	t, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find transfer: %w", err)
	}
	return t, nil
}

// UpdateStatus is a compare-and-swap on version. A missing row yields
// sentinel.ErrNotFound and a stale version sentinel.ErrConflict.
func (s *TransferStore) UpdateStatus(ctx context.Context, transferID id.TransferID, expectedVersion int64, next models.Status, now time.Time) (*models.Transfer, error) {
	exec := txcontext.Exec(ctx, s.db)
	row := exec.QueryRowContext(ctx, `
		UPDATE transfers SET status = $1, updated_at = $2, version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING `+transferColumns,
		string(next), now, uuid.UUID(transferID), expectedVersion,
	)
	t, err := scanTransfer(row)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update transfer status: %w", err)
	}
	var exists bool
	if err := exec.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM transfers WHERE id = $1)`,
		uuid.UUID(transferID)).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check transfer: %w", err)
	}
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	return nil, sentinel.ErrConflict
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row scanner) (*models.Transfer, error) {
	var (
		t                  models.Transfer
		transferID, from   uuid.UUID
		to                 uuid.NullUUID
		amount             string
		typ, status        string
		baseLat, baseLng   sql.NullFloat64
		createdAt, updated time.Time
	)
	err := row.Scan(&transferID, &from, &to, &t.ProductID, &t.OrderID, &amount, &t.Currency, &typ, &status,
		&baseLat, &baseLng, &t.Notes, &t.Dirty, &t.Version, &createdAt, &updated)
	if err != nil {
		return nil, err
	}
	t.ID = id.TransferID(transferID)
	t.FromParty = id.UserID(from)
	if to.Valid {
		party := id.UserID(to.UUID)
		t.ToParty = &party
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	t.Type = models.TransferType(typ)
	if t.Status, err = models.ParseStatus(status); err != nil {
		return nil, err
	}
	if baseLat.Valid && baseLng.Valid {
		t.Baseline = &geo.Point{Lat: baseLat.Float64, Lng: baseLng.Float64}
	}
	t.CreatedAt = createdAt
	t.UpdatedAt = updated
	return &t, nil
}

// ListByIDs loads several transfers in one round trip. Unknown ids are skipped.
func (s *TransferStore) ListByIDs(ctx context.Context, transferIDs []id.TransferID) ([]*models.Transfer, error) {
	if len(transferIDs) == 0 {
		return nil, nil
	}
	raw := make([]string, len(transferIDs))
	for i, tid := range transferIDs {
		raw[i] = tid.String()
	}
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+transferColumns+` FROM transfers WHERE id = ANY($1::uuid[]) ORDER BY created_at`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	var out []*models.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
