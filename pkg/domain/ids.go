// Package domain holds the typed identifiers shared by every module.
//
// Identifiers are distinct named UUID types so a TransferID can never be passed
// where a DisputeID is expected. Construct them with the Parse functions at trust
// boundaries (HTTP, sync replay); direct conversion from uuid.UUID is for code
// that generated the value itself.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "handover/pkg/domain-errors"
)

type (
	// UserID identifies an actor: buyer, seller, moderator or admin.
	UserID uuid.UUID
	// TransferID identifies a Transfer aggregate.
	TransferID uuid.UUID
	// StepID identifies one VerificationStep record. Clients may mint it
	// offline so that replays of the same submission are idempotent.
	StepID uuid.UUID
	// DisputeID identifies a Dispute.
	DisputeID uuid.UUID
	// LogID identifies one AuditLogEntry.
	LogID uuid.UUID
)

const maxIDLength = 64

func parseUUID(kind, raw string) (uuid.UUID, error) {
	if len(raw) > maxIDLength {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is too long")
	}
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be nil")
	}
	return u, nil
}

func ParseUserID(raw string) (UserID, error) {
	u, err := parseUUID("user id", raw)
	return UserID(u), err
}

func ParseTransferID(raw string) (TransferID, error) {
	u, err := parseUUID("transfer id", raw)
	return TransferID(u), err
}

func ParseStepID(raw string) (StepID, error) {
	u, err := parseUUID("step id", raw)
	return StepID(u), err
}

func ParseDisputeID(raw string) (DisputeID, error) {
	u, err := parseUUID("dispute id", raw)
	return DisputeID(u), err
}

func ParseLogID(raw string) (LogID, error) {
	u, err := parseUUID("log id", raw)
	return LogID(u), err
}

func NewTransferID() TransferID { return TransferID(uuid.New()) }
func NewStepID() StepID         { return StepID(uuid.New()) }
func NewDisputeID() DisputeID   { return DisputeID(uuid.New()) }
func NewLogID() LogID           { return LogID(uuid.New()) }

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id TransferID) String() string { return uuid.UUID(id).String() }
func (id StepID) String() string     { return uuid.UUID(id).String() }
func (id DisputeID) String() string  { return uuid.UUID(id).String() }
func (id LogID) String() string      { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id TransferID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id StepID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id DisputeID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id LogID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

// Text marshalling keeps ids as canonical strings in JSON and audit details.

func (id UserID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id TransferID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id StepID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id DisputeID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id LogID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *TransferID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *StepID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *DisputeID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *LogID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(id).UnmarshalText(b) }
