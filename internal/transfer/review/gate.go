// Package review holds the admin review gate for high-value transfers.
package review

import (
	"github.com/shopspring/decimal"

	"handover/internal/identity"
	"handover/internal/transfer/models"
	dErrors "handover/pkg/domain-errors"
)

// DefaultThreshold is the amount above which transfers need platform review.
var DefaultThreshold = decimal.NewFromInt(10000)

// Gate blocks party-submitted evidence on high-value transfers until a
// reviewer approves.
type Gate struct {
	Threshold decimal.Decimal
}

func NewGate(threshold decimal.Decimal) Gate {
	return Gate{Threshold: threshold}
}

// RequiresAdminReview reports amount strictly above the threshold.
func (g Gate) RequiresAdminReview(t *models.Transfer) bool {
	return t.Amount.GreaterThan(g.Threshold)
}

// Satisfied reports whether the gate no longer blocks the transfer.
func (g Gate) Satisfied(t *models.Transfer, latest map[models.StepKind]*models.VerificationStep) bool {
	return !g.RequiresAdminReview(t) || models.HasApprovedReview(latest)
}

// Check returns a PendingAdminReview error when a non-reviewer submits a
// gated kind before approval. PLATFORM_REVIEW itself is never blocked.
func (g Gate) Check(t *models.Transfer, role identity.Role, kind models.StepKind,
	latest map[models.StepKind]*models.VerificationStep) error {
	if !kind.Gated() || role.IsReviewer() {
		return nil
	}
	if g.Satisfied(t, latest) {
		return nil
	}
	return PendingAdminReview(t.Status)
}

// PendingAdminReview carries the transfer status so clients can explain the block.
func PendingAdminReview(status models.Status) *dErrors.Error {
	return dErrors.New(dErrors.CodePendingAdminReview, "transfer awaits platform review").
		WithDetail("status", string(status))
}
