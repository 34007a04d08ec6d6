package audit

import (
	"context"
	"encoding/json"
	"time"

	id "handover/pkg/domain"
)

// EntryType is the kind of record an entry refers to.
type EntryType string

const (
	TypeTransfer     EntryType = "TRANSFER"
	TypeVerification EntryType = "VERIFICATION"
	TypeDispute      EntryType = "DISPUTE"
	TypeAccess       EntryType = "ACCESS"
)

// Action names the state-changing operation an entry records.
type Action string

const (
	ActionTransferCreate   Action = "TRANSFER_CREATE"
	ActionTransferCancel   Action = "TRANSFER_CANCEL"
	ActionSellerInitSubmit Action = "SELLER_INIT_SUBMIT"
	ActionGPSConfirmSubmit Action = "GPS_CONFIRM_SUBMIT"
	ActionIdentitySubmit   Action = "IDENTITY_SUBMIT"
	ActionSignatureSubmit  Action = "SIGNATURE_SUBMIT"
	ActionPlatformApprove  Action = "PLATFORM_APPROVE"
	ActionPlatformReject   Action = "PLATFORM_REJECT"
	ActionReviewRequired   Action = "ADMIN_REVIEW_REQUIRED"
	ActionDisputeRaise     Action = "DISPUTE_RAISE"
	ActionDisputeResolve   Action = "DISPUTE_RESOLVE"
	ActionDisputeReject    Action = "DISPUTE_REJECT"
	ActionAccessDenied     Action = "ACCESS_DENIED"
)

// Category routes entries to retention classes and stream topics.
type Category string

const (
	// CategoryCompliance covers verification, dispute and lifecycle actions.
	CategoryCompliance Category = "compliance"
	// CategorySecurity covers refused actions.
	CategorySecurity Category = "security"
)

// Category returns the routing class for the action.
func (a Action) Category() Category {
	if a == ActionAccessDenied {
		return CategorySecurity
	}
	return CategoryCompliance
}

// Entry is one immutable audit record. Stores never update or delete entries.
type Entry struct {
	LogID      id.LogID
	Type       EntryType
	TransferID id.TransferID
	RefID      string
	Action     Action
	ActorID    *id.UserID
	// DetailsJSON is free-form structured context, stored verbatim.
	DetailsJSON json.RawMessage
	CreatedAt   time.Time
}

// NewEntry builds an entry with a fresh log id. details is marshalled to JSON;
// a nil details produces an empty object.
func NewEntry(typ EntryType, transferID id.TransferID, refID string, action Action, actor *id.UserID, details any, now time.Time) (Entry, error) {
	raw := json.RawMessage(`{}`)
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return Entry{}, err
		}
		raw = b
	}
	return Entry{
		LogID:       id.NewLogID(),
		Type:        typ,
		TransferID:  transferID,
		RefID:       refID,
		Action:      action,
		ActorID:     actor,
		DetailsJSON: raw,
		CreatedAt:   now,
	}, nil
}

// Store persists entries. Implementations must preserve append order per transfer.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListByRef(ctx context.Context, refID string) ([]Entry, error)
	ListByTransfer(ctx context.Context, transferID id.TransferID) ([]Entry, error)
}
