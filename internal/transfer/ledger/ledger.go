// Package ledger validates step submissions and builds the append-only
// records the orchestrator persists.
package ledger

import (
	"math"
	"strconv"
	"strings"
	"time"

	"handover/internal/evidence"
	"handover/internal/geo"
	"handover/internal/transfer/models"
	id "handover/pkg/domain"
	dErrors "handover/pkg/domain-errors"
	audit "handover/pkg/platform/audit"
)

// Payload is the kind-specific body of a submission.
type Payload interface {
	Kind() models.StepKind
}

type SellerInit struct {
	Before evidence.Ref
	After  evidence.Ref
}

type GPSConfirm struct {
	Lat         *float64
	Lng         *float64
	Explanation string
}

type Identity struct {
	DocType   string
	DocRef    string
	DocNumber string
}

type Signature struct {
	Ref string
}

type PlatformReview struct {
	Approved bool
	Notes    string
}

func (SellerInit) Kind() models.StepKind     { return models.StepSellerInit }
func (GPSConfirm) Kind() models.StepKind     { return models.StepGPSConfirm }
func (Identity) Kind() models.StepKind       { return models.StepIdentity }
func (Signature) Kind() models.StepKind      { return models.StepSignature }
func (PlatformReview) Kind() models.StepKind { return models.StepPlatformReview }

// Submission is one attempt to append a step.
type Submission struct {
	TransferID id.TransferID
	// StepID is the client-chosen idempotency key. Zero means the server assigns one.
	StepID  id.StepID
	ActorID id.UserID
	Kind    models.StepKind
	Payload Payload
	Offline bool
}

func invalid(field, msg string) *dErrors.Error {
	return dErrors.New(dErrors.CodeValidation, msg).WithDetail("field", field)
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// Validate applies the per-kind rules and returns the record to persist.
// radius is the GPS confirmation radius in meters.
func Validate(t *models.Transfer, sub Submission, radius float64, now time.Time) (*models.VerificationStep, error) {
	if !sub.Kind.IsValid() {
		return nil, invalid("step", "unknown step kind")
	}
	if sub.Payload == nil {
		return nil, invalid("payload", "payload required")
	}
	if sub.Payload.Kind() != sub.Kind {
		return nil, invalid("payload", "payload does not match step kind")
	}

	stepID := sub.StepID
	if stepID.IsNil() {
		stepID = id.NewStepID()
	}
	step := &models.VerificationStep{
		ID:         stepID,
		TransferID: t.ID,
		Kind:       sub.Kind,
		Status:     models.StepStatusApproved,
		ActorID:    sub.ActorID,
		Offline:    sub.Offline,
		CreatedAt:  now,
	}

	switch p := sub.Payload.(type) {
	case SellerInit:
		if err := fillSellerInit(step, p); err != nil {
			return nil, err
		}
	case GPSConfirm:
		if err := fillGPSConfirm(step, t, p, radius); err != nil {
			return nil, err
		}
	case Identity:
		if err := fillIdentity(step, p); err != nil {
			return nil, err
		}
	case Signature:
		if blank(p.Ref) {
			return nil, invalid("signature_ref", "signature reference required")
		}
		step.SignatureRef = strings.TrimSpace(p.Ref)
	case PlatformReview:
		step.Notes = strings.TrimSpace(p.Notes)
		if !p.Approved {
			step.Status = models.StepStatusRejected
		}
	}
	return step, nil
}

func fillSellerInit(step *models.VerificationStep, p SellerInit) error {
	if p.Before.Blank() {
		return invalid("before", "before evidence reference required")
	}
	if p.After.Blank() {
		return invalid("after", "after evidence reference required")
	}
	beforeMeta, err := evidence.MarshalMetadata(p.Before.Metadata)
	if err != nil {
		return invalid("before", "before capture metadata not serializable")
	}
	afterMeta, err := evidence.MarshalMetadata(p.After.Metadata)
	if err != nil {
		return invalid("after", "after capture metadata not serializable")
	}
	step.PhotoBeforeURL = strings.TrimSpace(p.Before.Reference)
	step.PhotoAfterURL = strings.TrimSpace(p.After.Reference)
	step.PhotoBeforeMetaJSON = beforeMeta
	step.PhotoAfterMetaJSON = afterMeta
	return nil
}

func fillGPSConfirm(step *models.VerificationStep, t *models.Transfer, p GPSConfirm, radius float64) error {
	if p.Lat == nil || p.Lng == nil {
		return invalid("gps", "latitude and longitude required")
	}
	pt := geo.Point{Lat: *p.Lat, Lng: *p.Lng}
	if math.IsInf(pt.Lat, 0) || math.IsInf(pt.Lng, 0) || !pt.Valid() {
		return invalid("gps", "coordinates out of range")
	}
	explanation := strings.TrimSpace(p.Explanation)
	if t.Baseline != nil && !geo.WithinRadius(t.Baseline.Lat, t.Baseline.Lng, pt.Lat, pt.Lng, radius) {
		if explanation == "" {
			return invalid("explanation", "location is outside the confirmation radius; explanation required").
				WithDetail("radius_m", strconv.FormatFloat(radius, 'f', -1, 64))
		}
	}
	lat, lng := pt.Lat, pt.Lng
	step.GPSLat = &lat
	step.GPSLng = &lng
	step.Explanation = explanation
	return nil
}

func fillIdentity(step *models.VerificationStep, p Identity) error {
	docType, err := models.ParseDocumentType(strings.ToUpper(strings.TrimSpace(p.DocType)))
	if err != nil {
		return invalid("doc_type", "document type must be one of AADHAAR, PAN, DL")
	}
	if blank(p.DocRef) {
		return invalid("doc_ref", "document reference required")
	}
	if blank(p.DocNumber) {
		return invalid("doc_number", "document number required")
	}
	step.IdentityDocType = docType
	step.IdentityDocRef = strings.TrimSpace(p.DocRef)
	step.IdentityDocNumber = strings.TrimSpace(p.DocNumber)
	return nil
}

// ActionFor names the audit action recorded for a persisted step.
func ActionFor(step *models.VerificationStep) audit.Action {
	switch step.Kind {
	case models.StepSellerInit:
		return audit.ActionSellerInitSubmit
	case models.StepGPSConfirm:
		return audit.ActionGPSConfirmSubmit
	case models.StepIdentity:
		return audit.ActionIdentitySubmit
	case models.StepSignature:
		return audit.ActionSignatureSubmit
	case models.StepPlatformReview:
		if step.Status == models.StepStatusApproved {
			return audit.ActionPlatformApprove
		}
		return audit.ActionPlatformReject
	}
	return audit.Action(string(step.Kind) + "_SUBMIT")
}
