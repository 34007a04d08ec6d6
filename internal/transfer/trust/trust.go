// Package trust derives the per-transfer trust score from the ledger. The
// score is never persisted; callers recompute it on every read.
package trust

import (
	"math"

	"handover/internal/geo"
	"handover/internal/transfer/models"
)

const (
	Baseline = 50
	MinScore = 0
	MaxScore = 100

	HighThreshold = 80
	LowThreshold  = 20
)

// Factor names, in evaluation order.
const (
	FactorSellerInit     = "seller_init"
	FactorGPS            = "gps"
	FactorIdentity       = "identity"
	FactorSignature      = "signature"
	FactorPlatformReview = "platform_review"
	FactorDisputes       = "disputes"
)

const (
	sellerInitPoints       = 10
	gpsInRadiusPoints      = 15
	gpsNoBaselinePoints    = 5
	gpsExplainedPenalty    = -5
	gpsBasePenalty         = -10
	gpsPenaltyPerKm        = 2
	gpsPenaltyFloor        = -25
	identityPoints         = 10
	signaturePoints        = 10
	reviewApprovedPoints   = 5
	reviewRejectedPenalty  = -30
	disputePenaltyPerCount = -15
)

// Band is a coarse confidence class.
type Band string

const (
	BandHigh   Band = "HIGH"
	BandMedium Band = "MEDIUM"
	BandLow    Band = "LOW"
)

// Factor is one additive contribution. Reason explains non-obvious deltas.
type Factor struct {
	Name   string `json:"name"`
	Delta  int    `json:"delta"`
	Reason string `json:"reason,omitempty"`
}

// Result is a score in [0,100] with its ordered breakdown.
type Result struct {
	Score     int      `json:"score"`
	Band      Band     `json:"band"`
	Breakdown []Factor `json:"breakdown"`
}

// Score evaluates every factor in a fixed order. Only the latest record per
// kind counts, and only when approved.
func Score(t *models.Transfer, steps []*models.VerificationStep, disputes []*models.Dispute, radius float64) Result {
	latest := models.LatestByKind(steps)
	breakdown := make([]Factor, 0, 6)

	breakdown = append(breakdown, presence(FactorSellerInit, latest[models.StepSellerInit], sellerInitPoints))
	breakdown = append(breakdown, gpsFactor(t, latest[models.StepGPSConfirm], radius))
	breakdown = append(breakdown, presence(FactorIdentity, latest[models.StepIdentity], identityPoints))
	breakdown = append(breakdown, presence(FactorSignature, latest[models.StepSignature], signaturePoints))
	breakdown = append(breakdown, reviewFactor(latest[models.StepPlatformReview]))
	breakdown = append(breakdown, disputeFactor(disputes))

	score := Baseline
	for _, f := range breakdown {
		score += f.Delta
	}
	score = clamp(score)
	return Result{Score: score, Band: BandFor(score), Breakdown: breakdown}
}

// BandFor classifies a score.
func BandFor(score int) Band {
	switch {
	case score >= HighThreshold:
		return BandHigh
	case score <= LowThreshold:
		return BandLow
	default:
		return BandMedium
	}
}

func clamp(score int) int {
	return max(MinScore, min(MaxScore, score))
}

func presence(name string, step *models.VerificationStep, points int) Factor {
	if !step.Approved() {
		return Factor{Name: name, Reason: "missing"}
	}
	return Factor{Name: name, Delta: points}
}

func gpsFactor(t *models.Transfer, step *models.VerificationStep, radius float64) Factor {
	f := Factor{Name: FactorGPS}
	if !step.Approved() || step.GPSLat == nil || step.GPSLng == nil {
		f.Reason = "missing"
		return f
	}
	if t.Baseline == nil {
		f.Delta = gpsNoBaselinePoints
		f.Reason = "no baseline"
		return f
	}
	d := geo.DistanceMeters(t.Baseline.Lat, t.Baseline.Lng, *step.GPSLat, *step.GPSLng)
	if d <= radius {
		f.Delta = gpsInRadiusPoints
		return f
	}
	if step.Explanation != "" {
		f.Delta = gpsExplainedPenalty
		f.Reason = "outside radius, explained"
		return f
	}
	km := d / 1000
	f.Delta = max(gpsPenaltyFloor, gpsBasePenalty-int(math.Round(gpsPenaltyPerKm*km)))
	f.Reason = "outside radius"
	return f
}

func reviewFactor(step *models.VerificationStep) Factor {
	f := Factor{Name: FactorPlatformReview}
	switch {
	case step == nil:
		f.Reason = "not reviewed"
	case step.Status == models.StepStatusApproved:
		f.Delta = reviewApprovedPoints
	case step.Status == models.StepStatusRejected:
		f.Delta = reviewRejectedPenalty
		f.Reason = "rejected"
	}
	return f
}

func disputeFactor(disputes []*models.Dispute) Factor {
	n := 0
	for _, d := range disputes {
		if d.Status != models.DisputeResolved {
			n++
		}
	}
	f := Factor{Name: FactorDisputes, Delta: n * disputePenaltyPerCount}
	if n > 0 {
		f.Reason = "unresolved disputes"
	}
	return f
}
