package models

import "fmt"

// Status is the transfer lifecycle position.
type Status string

const (
	StatusPending             Status = "PENDING"
	StatusInVerification      Status = "IN_VERIFICATION"
	StatusAwaitingAdminReview Status = "AWAITING_ADMIN_REVIEW"
	StatusApproved            Status = "APPROVED"
	StatusCompleted           Status = "COMPLETED"
	StatusDisputed            Status = "DISPUTED"
	StatusCancelled           Status = "CANCELLED"
	StatusRejected            Status = "REJECTED"
)

// transitions lists every allowed edge. Terminal statuses have none.
var transitions = map[Status][]Status{
	StatusPending: {
		StatusInVerification, StatusAwaitingAdminReview, StatusApproved,
		StatusRejected, StatusDisputed, StatusCancelled,
	},
	StatusInVerification: {
		StatusAwaitingAdminReview, StatusApproved, StatusCompleted,
		StatusRejected, StatusDisputed, StatusCancelled,
	},
	StatusAwaitingAdminReview: {
		StatusApproved, StatusRejected, StatusDisputed, StatusCancelled,
	},
	StatusApproved: {
		StatusCompleted, StatusRejected, StatusDisputed, StatusCancelled,
	},
	// A dispute resolves back to whatever status the transfer held when raised.
	StatusDisputed: {
		StatusPending, StatusInVerification, StatusAwaitingAdminReview,
		StatusApproved, StatusCancelled,
	},
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid transfer status %q", s)
	}
	return st, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInVerification, StatusAwaitingAdminReview, StatusApproved,
		StatusCompleted, StatusDisputed, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports COMPLETED, CANCELLED and REJECTED.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusRejected
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) String() string { return string(s) }

// StepKind names a verification step.
type StepKind string

const (
	StepSellerInit     StepKind = "SELLER_INIT"
	StepGPSConfirm     StepKind = "GPS_CONFIRM"
	StepIdentity       StepKind = "IDENTITY"
	StepSignature      StepKind = "SIGNATURE"
	StepPlatformReview StepKind = "PLATFORM_REVIEW"
)

// RequiredKinds must all hold an approved latest record before completion.
var RequiredKinds = []StepKind{StepSellerInit, StepGPSConfirm, StepIdentity, StepSignature}

func ParseStepKind(s string) (StepKind, error) {
	k := StepKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("invalid step kind %q", s)
	}
	return k, nil
}

func (k StepKind) IsValid() bool {
	switch k {
	case StepSellerInit, StepGPSConfirm, StepIdentity, StepSignature, StepPlatformReview:
		return true
	}
	return false
}

// Gated reports whether the admin review gate applies to this kind.
func (k StepKind) Gated() bool {
	return k != StepPlatformReview
}

// StepStatus is the outcome recorded on a step.
type StepStatus string

const (
	StepStatusPending  StepStatus = "PENDING"
	StepStatusApproved StepStatus = "APPROVED"
	StepStatusRejected StepStatus = "REJECTED"
)

func ParseStepStatus(s string) (StepStatus, error) {
	st := StepStatus(s)
	switch st {
	case StepStatusPending, StepStatusApproved, StepStatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("invalid step status %q", s)
}

// DisputeStatus is the dispute lifecycle position.
type DisputeStatus string

const (
	DisputeOpen     DisputeStatus = "OPEN"
	DisputeResolved DisputeStatus = "RESOLVED"
	DisputeRejected DisputeStatus = "REJECTED"
)

func ParseDisputeStatus(s string) (DisputeStatus, error) {
	st := DisputeStatus(s)
	switch st {
	case DisputeOpen, DisputeResolved, DisputeRejected:
		return st, nil
	}
	return "", fmt.Errorf("invalid dispute status %q", s)
}

// TransferType classifies the commercial nature of a transfer.
type TransferType string

const (
	TransferPayment TransferType = "PAYMENT"
	TransferPayout  TransferType = "PAYOUT"
	TransferGift    TransferType = "GIFT"
	TransferSale    TransferType = "SALE"
)

func ParseTransferType(s string) (TransferType, error) {
	t := TransferType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid transfer type %q", s)
	}
	return t, nil
}

func (t TransferType) IsValid() bool {
	switch t {
	case TransferPayment, TransferPayout, TransferGift, TransferSale:
		return true
	}
	return false
}

// DocumentType is an accepted identity document.
type DocumentType string

const (
	DocAadhaar DocumentType = "AADHAAR"
	DocPAN     DocumentType = "PAN"
	DocDL      DocumentType = "DL"
)

func ParseDocumentType(s string) (DocumentType, error) {
	d := DocumentType(s)
	switch d {
	case DocAadhaar, DocPAN, DocDL:
		return d, nil
	}
	return "", fmt.Errorf("invalid document type %q", s)
}
