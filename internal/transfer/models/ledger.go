package models

// LatestByKind returns the authoritative record per kind. steps must be in
// append order; a later record replaces an earlier one.
func LatestByKind(steps []*VerificationStep) map[StepKind]*VerificationStep {
	latest := make(map[StepKind]*VerificationStep, len(steps))
	for _, s := range steps {
		latest[s.Kind] = s
	}
	return latest
}

// RequiredSatisfied reports whether every required kind has an approved latest record.
func RequiredSatisfied(latest map[StepKind]*VerificationStep) bool {
	for _, k := range RequiredKinds {
		if !latest[k].Approved() {
			return false
		}
	}
	return true
}

// HasApprovedReview reports an approved latest PLATFORM_REVIEW.
func HasApprovedReview(latest map[StepKind]*VerificationStep) bool {
	return latest[StepPlatformReview].Approved()
}

// MissingKinds lists required kinds lacking an approved latest record, in
// RequiredKinds order.
func MissingKinds(latest map[StepKind]*VerificationStep) []StepKind {
	var missing []StepKind
	for _, k := range RequiredKinds {
		if !latest[k].Approved() {
			missing = append(missing, k)
		}
	}
	return missing
}
