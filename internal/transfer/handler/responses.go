package handler

import (
	"encoding/json"
	"time"

	"handover/internal/transfer/models"
	"handover/internal/transfer/trust"
	audit "handover/pkg/platform/audit"
)

type LocationResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type TransferResponse struct {
	ID          string            `json:"id"`
	FromPartyID string            `json:"from_party_id"`
	ToPartyID   *string           `json:"to_party_id"`
	ProductID   string            `json:"product_id,omitempty"`
	OrderID     string            `json:"order_id,omitempty"`
	Amount      string            `json:"amount"`
	Currency    string            `json:"currency"`
	Type        string            `json:"type"`
	Status      string            `json:"status"`
	Baseline    *LocationResponse `json:"baseline,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	Dirty       bool              `json:"dirty"`
	Version     int64             `json:"version"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func toTransferResponse(t *models.Transfer) TransferResponse {
	resp := TransferResponse{
		ID:          t.ID.String(),
		FromPartyID: t.FromParty.String(),
		ProductID:   t.ProductID,
		OrderID:     t.OrderID,
		Amount:      t.Amount.StringFixed(2),
		Currency:    t.Currency,
		Type:        string(t.Type),
		Status:      string(t.Status),
		Notes:       t.Notes,
		Dirty:       t.Dirty,
		Version:     t.Version,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.ToParty != nil {
		to := t.ToParty.String()
		resp.ToPartyID = &to
	}
	if t.Baseline != nil {
		resp.Baseline = &LocationResponse{Lat: t.Baseline.Lat, Lng: t.Baseline.Lng}
	}
	return resp
}

// StepResponse mirrors the persisted verification record.
type StepResponse struct {
	VerificationID      string    `json:"verification_id"`
	TransferID          string    `json:"transfer_id"`
	Step                string    `json:"step"`
	Status              string    `json:"status"`
	ActorID             string    `json:"actor_id"`
	PhotoBeforeURL      string    `json:"photo_before_url,omitempty"`
	PhotoAfterURL       string    `json:"photo_after_url,omitempty"`
	PhotoBeforeMetaJSON string    `json:"photo_before_meta_json,omitempty"`
	PhotoAfterMetaJSON  string    `json:"photo_after_meta_json,omitempty"`
	GPSLat              *float64  `json:"gps_lat,omitempty"`
	GPSLng              *float64  `json:"gps_lng,omitempty"`
	Explanation         string    `json:"explanation,omitempty"`
	IdentityDocType     string    `json:"identity_doc_type,omitempty"`
	IdentityDocRef      string    `json:"identity_doc_ref,omitempty"`
	SignatureRef        string    `json:"signature_ref,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	Offline             bool      `json:"offline"`
	CreatedAt           time.Time `json:"created_at"`
}

// toStepResponse omits the identity document number.
func toStepResponse(s *models.VerificationStep) StepResponse {
	return StepResponse{
		VerificationID:      s.ID.String(),
		TransferID:          s.TransferID.String(),
		Step:                string(s.Kind),
		Status:              string(s.Status),
		ActorID:             s.ActorID.String(),
		PhotoBeforeURL:      s.PhotoBeforeURL,
		PhotoAfterURL:       s.PhotoAfterURL,
		PhotoBeforeMetaJSON: s.PhotoBeforeMetaJSON,
		PhotoAfterMetaJSON:  s.PhotoAfterMetaJSON,
		GPSLat:              s.GPSLat,
		GPSLng:              s.GPSLng,
		Explanation:         s.Explanation,
		IdentityDocType:     string(s.IdentityDocType),
		IdentityDocRef:      s.IdentityDocRef,
		SignatureRef:        s.SignatureRef,
		Notes:               s.Notes,
		Offline:             s.Offline,
		CreatedAt:           s.CreatedAt,
	}
}

type DisputeResponse struct {
	ID              string     `json:"id"`
	TransferID      string     `json:"transfer_id"`
	RaisedBy        string     `json:"raised_by"`
	Reason          string     `json:"reason"`
	Status          string     `json:"status"`
	PriorStatus     string     `json:"prior_status"`
	ResolutionNotes string     `json:"resolution_notes,omitempty"`
	ResolvedBy      *string    `json:"resolved_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
}

func toDisputeResponse(d *models.Dispute) DisputeResponse {
	resp := DisputeResponse{
		ID:              d.ID.String(),
		TransferID:      d.TransferID.String(),
		RaisedBy:        d.RaisedBy.String(),
		Reason:          d.Reason,
		Status:          string(d.Status),
		PriorStatus:     string(d.PriorStatus),
		ResolutionNotes: d.ResolutionNotes,
		CreatedAt:       d.CreatedAt,
		ResolvedAt:      d.ResolvedAt,
	}
	if d.ResolvedBy != nil {
		by := d.ResolvedBy.String()
		resp.ResolvedBy = &by
	}
	return resp
}

type AuditEntryResponse struct {
	LogID     string          `json:"log_id"`
	Type      string          `json:"type"`
	RefID     string          `json:"ref_id"`
	Action    string          `json:"action"`
	ActorID   *string         `json:"actor_id"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"created_at"`
}

func toAuditResponse(e audit.Entry) AuditEntryResponse {
	resp := AuditEntryResponse{
		LogID:     e.LogID.String(),
		Type:      string(e.Type),
		RefID:     e.RefID,
		Action:    string(e.Action),
		Details:   e.DetailsJSON,
		CreatedAt: e.CreatedAt,
	}
	if e.ActorID != nil {
		a := e.ActorID.String()
		resp.ActorID = &a
	}
	if len(resp.Details) == 0 {
		resp.Details = json.RawMessage(`{}`)
	}
	return resp
}

type TrustResponse struct {
	TransferID string         `json:"transfer_id"`
	Score      int            `json:"score"`
	Band       string         `json:"band"`
	Breakdown  []trust.Factor `json:"breakdown"`
}

func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
