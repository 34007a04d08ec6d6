package handler

import (
	"strings"

	"github.com/shopspring/decimal"

	"handover/internal/evidence"
	"handover/internal/geo"
	"handover/internal/transfer/ledger"
	"handover/internal/transfer/models"
	"handover/internal/transfer/service"
	id "handover/pkg/domain"
	dErrors "handover/pkg/domain-errors"
)

const maxTextLength = 2000

type LocationRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type CreateTransferRequest struct {
	ToPartyID string           `json:"to_party_id" validate:"omitempty,uuid"`
	ProductID string           `json:"product_id" validate:"max=128"`
	OrderID   string           `json:"order_id" validate:"max=128"`
	Amount    decimal.Decimal  `json:"amount"`
	Currency  string           `json:"currency" validate:"required,len=3"`
	Type      string           `json:"type" validate:"required,oneof=PAYMENT PAYOUT GIFT SALE"`
	Baseline  *LocationRequest `json:"baseline,omitempty"`
	Notes     string           `json:"notes" validate:"max=2000"`
	Dirty     bool             `json:"dirty"`
}

func (r *CreateTransferRequest) Validate() error {
	if r.Amount.IsNegative() {
		return dErrors.New(dErrors.CodeValidation, "amount must not be negative").WithDetail("field", "amount")
	}
	return nil
}

func (r *CreateTransferRequest) ToCreate(actorID id.UserID) (service.CreateRequest, error) {
	req := service.CreateRequest{
		ActorID:   actorID,
		ProductID: r.ProductID,
		OrderID:   r.OrderID,
		Amount:    r.Amount,
		Currency:  strings.ToUpper(r.Currency),
		Type:      models.TransferType(r.Type),
		Notes:     r.Notes,
		Dirty:     r.Dirty,
	}
	if r.ToPartyID != "" {
		to, err := id.ParseUserID(r.ToPartyID)
		if err != nil {
			return service.CreateRequest{}, err
		}
		req.ToParty = &to
	}
	if r.Baseline != nil {
		req.Baseline = &geo.Point{Lat: r.Baseline.Lat, Lng: r.Baseline.Lng}
	}
	return req, nil
}

// SubmitStepRequest carries one step. Only the fields of the named kind are read.
type SubmitStepRequest struct {
	StepID  string `json:"step_id" validate:"omitempty,uuid"`
	Step    string `json:"step" validate:"required,oneof=SELLER_INIT GPS_CONFIRM IDENTITY SIGNATURE PLATFORM_REVIEW"`
	Offline bool   `json:"offline"`

	Before *evidence.Ref `json:"before,omitempty"`
	After  *evidence.Ref `json:"after,omitempty"`

	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	Explanation string   `json:"explanation" validate:"max=2000"`

	DocType   string `json:"doc_type"`
	DocRef    string `json:"doc_ref" validate:"max=512"`
	DocNumber string `json:"doc_number" validate:"max=64"`

	SignatureRef string `json:"signature_ref" validate:"max=512"`

	Approved *bool  `json:"approved,omitempty"`
	Notes    string `json:"notes" validate:"max=2000"`
}

func (r *SubmitStepRequest) Validate() error {
	if models.StepKind(r.Step) == models.StepPlatformReview && r.Approved == nil {
		return dErrors.New(dErrors.CodeValidation, "approved is required for platform review").WithDetail("field", "approved")
	}
	return nil
}

func (r *SubmitStepRequest) ToSubmission(transferID id.TransferID, actorID id.UserID) (ledger.Submission, error) {
	sub := ledger.Submission{
		TransferID: transferID,
		ActorID:    actorID,
		Kind:       models.StepKind(r.Step),
		Offline:    r.Offline,
	}
	if r.StepID != "" {
		stepID, err := id.ParseStepID(r.StepID)
		if err != nil {
			return ledger.Submission{}, err
		}
		sub.StepID = stepID
	}
	switch sub.Kind {
	case models.StepSellerInit:
		p := ledger.SellerInit{}
		if r.Before != nil {
			p.Before = *r.Before
		}
		if r.After != nil {
			p.After = *r.After
		}
		sub.Payload = p
	case models.StepGPSConfirm:
		sub.Payload = ledger.GPSConfirm{Lat: r.Lat, Lng: r.Lng, Explanation: r.Explanation}
	case models.StepIdentity:
		sub.Payload = ledger.Identity{DocType: r.DocType, DocRef: r.DocRef, DocNumber: r.DocNumber}
	case models.StepSignature:
		sub.Payload = ledger.Signature{Ref: r.SignatureRef}
	case models.StepPlatformReview:
		sub.Payload = ledger.PlatformReview{Approved: r.Approved != nil && *r.Approved, Notes: r.Notes}
	}
	return sub, nil
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"max=2000"`
}

type RaiseDisputeRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

func (r *RaiseDisputeRequest) Validate() error {
	if strings.TrimSpace(r.Reason) == "" {
		return dErrors.New(dErrors.CodeValidation, "reason required").WithDetail("field", "reason")
	}
	return nil
}

type ResolveDisputeRequest struct {
	Upheld *bool  `json:"upheld" validate:"required"`
	Notes  string `json:"notes" validate:"max=2000"`
}

// BatchGetRequest lists transfers a device wants refreshed after reconnecting.
type BatchGetRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=100,dive,uuid"`
}

func (r *BatchGetRequest) TransferIDs() ([]id.TransferID, error) {
	out := make([]id.TransferID, 0, len(r.IDs))
	for _, raw := range r.IDs {
		transferID, err := id.ParseTransferID(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, transferID)
	}
	return out, nil
}
