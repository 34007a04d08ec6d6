package models

import (
	"time"

	id "handover/pkg/domain"
)

// VerificationStep is one append-only ledger record. Corrections append a
// new record of the same kind; the latest record per kind is authoritative.
type VerificationStep struct {
	ID         id.StepID
	TransferID id.TransferID
	Kind       StepKind
	Status     StepStatus
	ActorID    id.UserID

	PhotoBeforeURL      string
	PhotoAfterURL       string
	PhotoBeforeMetaJSON string
	PhotoAfterMetaJSON  string

	GPSLat *float64
	GPSLng *float64
	// Explanation justifies a GPS fix outside the confirmation radius.
	Explanation string

	IdentityDocType   DocumentType
	IdentityDocRef    string
	IdentityDocNumber string

	SignatureRef string

	Notes string
	// Offline marks records composed while disconnected and replayed later.
	Offline   bool
	CreatedAt time.Time
}

// Approved reports whether the record counts toward completion and scoring.
func (s *VerificationStep) Approved() bool {
	return s != nil && s.Status == StepStatusApproved
}

// Dispute is a challenge raised against a transfer.
type Dispute struct {
	ID         id.DisputeID
	TransferID id.TransferID
	RaisedBy   id.UserID
	Reason     string
	Status     DisputeStatus
	// PriorStatus is the transfer status when the dispute was raised.
	PriorStatus     Status
	ResolutionNotes string
	ResolvedBy      *id.UserID
	CreatedAt       time.Time
	ResolvedAt      *time.Time
}

func (d *Dispute) IsOpen() bool {
	return d.Status == DisputeOpen
}
