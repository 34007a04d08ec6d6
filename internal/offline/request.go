// Package offline queues step submissions made without connectivity and
// replays them through the orchestrator once the device is back online.
package offline

import (
	"encoding/json"
	"fmt"
	"time"

	"handover/internal/transfer/ledger"
	"handover/internal/transfer/models"
	id "handover/pkg/domain"
	dErrors "handover/pkg/domain-errors"
)

// Request is a durable, idempotent step write keyed by StepID. Replaying the
// same request any number of times yields one ledger record.
type Request struct {
	StepID     id.StepID
	TransferID id.TransferID
	ActorID    id.UserID
	Kind       models.StepKind
	Payload    json.RawMessage
	QueuedAt   time.Time
	Attempts   int
	LastError  string
}

// NewRequest freezes a submission for the outbox. A zero StepID is replaced
// with a fresh one so retries stay idempotent.
func NewRequest(sub ledger.Submission, now time.Time) (Request, error) {
	if sub.Payload == nil {
		return Request{}, dErrors.New(dErrors.CodeValidation, "payload required").WithDetail("field", "payload")
	}
	if sub.Payload.Kind() != sub.Kind {
		return Request{}, dErrors.New(dErrors.CodeValidation, "payload does not match step kind").WithDetail("field", "payload")
	}
	raw, err := json.Marshal(sub.Payload)
	if err != nil {
		return Request{}, fmt.Errorf("encode payload: %w", err)
	}
	stepID := sub.StepID
	if stepID.IsNil() {
		stepID = id.NewStepID()
	}
	return Request{
		StepID:     stepID,
		TransferID: sub.TransferID,
		ActorID:    sub.ActorID,
		Kind:       sub.Kind,
		Payload:    raw,
		QueuedAt:   now,
	}, nil
}

// Submission rebuilds the orchestrator input, marked as offline.
func (r Request) Submission() (ledger.Submission, error) {
	payload, err := decodePayload(r.Kind, r.Payload)
	if err != nil {
		return ledger.Submission{}, err
	}
	return ledger.Submission{
		TransferID: r.TransferID,
		StepID:     r.StepID,
		ActorID:    r.ActorID,
		Kind:       r.Kind,
		Payload:    payload,
		Offline:    true,
	}, nil
}

func decodePayload(kind models.StepKind, raw json.RawMessage) (ledger.Payload, error) {
	switch kind {
	case models.StepSellerInit:
		return decodeAs[ledger.SellerInit](raw)
	case models.StepGPSConfirm:
		return decodeAs[ledger.GPSConfirm](raw)
	case models.StepIdentity:
		return decodeAs[ledger.Identity](raw)
	case models.StepSignature:
		return decodeAs[ledger.Signature](raw)
	case models.StepPlatformReview:
		return decodeAs[ledger.PlatformReview](raw)
	}
	return nil, dErrors.New(dErrors.CodeValidation, "unknown step kind").WithDetail("field", "step")
}

func decodeAs[T ledger.Payload](raw json.RawMessage) (ledger.Payload, error) {
	var p T
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "malformed queued payload")
	}
	return p, nil
}
