package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"handover/internal/geo"
	id "handover/pkg/domain"
	dErrors "handover/pkg/domain-errors"
)

// Transfer is the aggregate root for one change of ownership.
//
// Invariants:
//   - Amount is non-negative; Currency is a three-letter code
//   - FromParty is set; ToParty, when set, differs from FromParty
//   - Status only moves along the edges of the lifecycle graph
//   - Version increases by one on every status change
type Transfer struct {
	ID        id.TransferID
	FromParty id.UserID
	// ToParty is nil for open transfers whose receiving party is not yet known.
	ToParty   *id.UserID
	ProductID string
	OrderID   string
	Amount    decimal.Decimal
	Currency  string
	Type      TransferType
	Status    Status
	// Baseline is the seller-reported location GPS_CONFIRM is checked against.
	Baseline  *geo.Point
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Dirty     bool
	Version   int64
}

// NewTransfer validates invariants and returns a PENDING transfer.
func NewTransfer(
	transferID id.TransferID,
	from id.UserID,
	to *id.UserID,
	amount decimal.Decimal,
	currency string,
	typ TransferType,
	baseline *geo.Point,
	now time.Time,
) (*Transfer, error) {
	if transferID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "transfer id required")
	}
	if from.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "from party required")
	}
	if to != nil && *to == from {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "from and to party must differ")
	}
	if amount.IsNegative() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "amount must not be negative")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if !validCurrency(currency) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "currency must be a three-letter code")
	}
	if !typ.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid transfer type")
	}
	if baseline != nil && !baseline.Valid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "baseline coordinates out of range")
	}
	return &Transfer{
		ID:        transferID,
		FromParty: from,
		ToParty:   to,
		Amount:    amount,
		Currency:  currency,
		Type:      typ,
		Status:    StatusPending,
		Baseline:  baseline,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}, nil
}

func validCurrency(c string) bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// IsOpen reports a transfer without a known receiving party.
func (t *Transfer) IsOpen() bool {
	return t.ToParty == nil
}

// IsParty reports whether actor may act as buyer or seller on this transfer.
// Open transfers accept any actor as the receiving party.
func (t *Transfer) IsParty(actor id.UserID) bool {
	if actor == t.FromParty {
		return true
	}
	return t.ToParty == nil || *t.ToParty == actor
}

// ApplyStatus moves the transfer to next, refusing edges outside the graph.
func (t *Transfer) ApplyStatus(next Status, now time.Time) error {
	if t.Status == next {
		return nil
	}
	if !t.Status.CanTransitionTo(next) {
		return dErrors.New(dErrors.CodeInvariantViolation,
			"transition "+string(t.Status)+" -> "+string(next)+" not allowed")
	}
	t.Status = next
	t.UpdatedAt = now
	t.Version++
	return nil
}
