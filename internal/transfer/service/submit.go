package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"handover/internal/identity"
	"handover/internal/transfer/ledger"
	"handover/internal/transfer/models"
	"handover/internal/transfer/review"
	dErrors "handover/pkg/domain-errors"
	audit "handover/pkg/platform/audit"
	"handover/pkg/platform/sentinel"
	txcontext "handover/pkg/platform/tx"
	"handover/pkg/requestcontext"
)

// Submit validates a step and, in one transaction, appends it, records its
// audit entry and advances the transfer status. Checks run in this order:
// existence, terminal status, open dispute, authorization, review gate,
// payload validation, idempotent replay.
func (s *Service) Submit(ctx context.Context, sub ledger.Submission) (*models.VerificationStep, error) {
	ctx, span := s.startSpan(ctx, "transfer.Submit",
		attribute.String("transfer_id", sub.TransferID.String()),
		attribute.String("step", string(sub.Kind)),
		attribute.Bool("offline", sub.Offline),
	)
	defer span.End()
	start := time.Now()

	var step *models.VerificationStep
	err := s.withRetry(ctx, func() error {
		var err error
		step, err = s.submitOnce(ctx, sub)
		return err
	})
	s.metrics.ObserveSubmission(string(sub.Kind), outcomeLabel(err), start)
	if err != nil {
		return nil, endSpan(span, err)
	}
	return step, nil
}

func (s *Service) submitOnce(ctx context.Context, sub ledger.Submission) (*models.VerificationStep, error) {
	if sub.ActorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "actor required")
	}
	t, err := s.load(ctx, sub.TransferID)
	if err != nil {
		return nil, err
	}
	// A replayed step id is answered before any state check: the step it names
	// may be what moved the transfer out of a submittable status.
	if existing, err := s.replayed(ctx, t, sub); existing != nil || err != nil {
		return existing, err
	}
	if t.Status.IsTerminal() {
		return nil, terminalError(t.Status)
	}
	if t.Status == models.StatusDisputed {
		return nil, disputedError()
	}

	role, err := s.roleOf(ctx, sub.ActorID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeSubmit(ctx, t, sub, role); err != nil {
		return nil, err
	}

	steps, err := s.steps.ListByTransfer(ctx, t.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list steps")
	}
	latest := models.LatestByKind(steps)
	if err := s.gate.Check(t, role, sub.Kind, latest); err != nil {
		return nil, s.holdForReview(ctx, t)
	}

	now := requestcontext.Now(ctx)
	step, err := ledger.Validate(t, sub, s.radius, now)
	if err != nil {
		return nil, err
	}

	return s.commitStep(ctx, t, step, append(steps, step), now)
}

// replayed returns the stored step for a client step id already in the ledger.
func (s *Service) replayed(ctx context.Context, t *models.Transfer, sub ledger.Submission) (*models.VerificationStep, error) {
	if sub.StepID.IsNil() {
		return nil, nil
	}
	existing, err := s.steps.FindByID(ctx, sub.StepID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up step")
	}
	if existing.TransferID != t.ID {
		return nil, dErrors.New(dErrors.CodeConflict, "step id belongs to another transfer")
	}
	if existing.ActorID != sub.ActorID || existing.Kind != sub.Kind {
		return nil, dErrors.New(dErrors.CodeConflict, "step id already used for a different submission")
	}
	return existing, nil
}

func (s *Service) authorizeSubmit(ctx context.Context, t *models.Transfer, sub ledger.Submission, role identity.Role) error {
	op := "submit_" + string(sub.Kind)
	if sub.Kind == models.StepPlatformReview {
		if !role.IsReviewer() {
			return s.deny(ctx, t.ID, t.ID.String(), sub.ActorID, role, op, "platform review requires a reviewer")
		}
		return nil
	}
	if role.IsReviewer() || t.IsParty(sub.ActorID) {
		return nil
	}
	return s.deny(ctx, t.ID, t.ID.String(), sub.ActorID, role, op, "not a party to the transfer")
}

func (s *Service) commitStep(ctx context.Context, t *models.Transfer, step *models.VerificationStep,
	stepsAfter []*models.VerificationStep, now time.Time) (*models.VerificationStep, error) {
	path, err := s.statusPath(t, step, models.LatestByKind(stepsAfter))
	if err != nil {
		return nil, err
	}
	next := path[len(path)-1]

	details := map[string]any{
		"step_id":  step.ID.String(),
		"kind":     step.Kind,
		"status":   step.Status,
		"offline":  step.Offline,
		"from":     t.Status,
		"to":       next,
		"path":     path,
		"evidence": evidenceDetails(step),
	}
	actor := step.ActorID
	entry, err := audit.NewEntry(audit.TypeVerification, t.ID, step.ID.String(), ledger.ActionFor(step), &actor, details, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build audit entry")
	}

	var replayed *models.VerificationStep
	var stored bool
	err = s.tx.RunInTx(txcontext.WithShardKey(ctx, t.ID.String()), func(txCtx context.Context) error {
		if err := s.steps.Append(txCtx, step); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyExists) {
				existing, findErr := s.steps.FindByID(txCtx, step.ID)
				if findErr != nil {
					return dErrors.Wrap(findErr, dErrors.CodeInternal, "failed to load replayed step")
				}
				replayed = existing
				return nil
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append step")
		}
		if _, err := s.swapStatus(txCtx, t, next, now); err != nil {
			return err
		}
		stored = s.emit(txCtx, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		return replayed, nil
	}

	s.recordPath(path)
	if stored {
		s.publish(ctx, entry)
	}
	s.logger.InfoContext(ctx, "step accepted",
		"transfer_id", t.ID.String(),
		"step_id", step.ID.String(),
		"step", string(step.Kind),
		"actor_id", step.ActorID.String(),
		"status", string(next),
		"request_id", requestcontext.RequestID(ctx),
	)
	return step, nil
}

// statusPath returns the statuses the transfer walks through after step, starting
// with its current status. Every hop must be an edge of the lifecycle graph.
func (s *Service) statusPath(t *models.Transfer, step *models.VerificationStep,
	latest map[models.StepKind]*models.VerificationStep) ([]models.Status, error) {
	path := []models.Status{t.Status}
	hop := func(next models.Status) {
		if path[len(path)-1] != next {
			path = append(path, next)
		}
	}

	switch {
	case step.Kind == models.StepPlatformReview && step.Status == models.StepStatusRejected:
		hop(models.StatusRejected)
	case step.Kind == models.StepPlatformReview:
		cur := t.Status
		if cur == models.StatusAwaitingAdminReview ||
			(s.gate.RequiresAdminReview(t) && (cur == models.StatusPending || cur == models.StatusInVerification)) {
			hop(models.StatusApproved)
		}
	default:
		if t.Status == models.StatusPending {
			hop(models.StatusInVerification)
		}
	}

	cur := path[len(path)-1]
	if (cur == models.StatusInVerification || cur == models.StatusApproved) &&
		models.RequiredSatisfied(latest) && s.gate.Satisfied(t, latest) {
		hop(models.StatusCompleted)
	}

	for i := 1; i < len(path); i++ {
		if !path[i-1].CanTransitionTo(path[i]) {
			return nil, dErrors.New(dErrors.CodeInvariantViolation,
				"transition "+string(path[i-1])+" -> "+string(path[i])+" not allowed")
		}
	}
	return path, nil
}

func (s *Service) recordPath(path []models.Status) {
	for i := 1; i < len(path); i++ {
		s.metrics.IncTransition(string(path[i-1]), string(path[i]))
	}
}

// holdForReview moves a gated transfer into AWAITING_ADMIN_REVIEW and returns
// the PendingAdminReview error. The move is best-effort: a lost race leaves
// the status to whoever won it.
func (s *Service) holdForReview(ctx context.Context, t *models.Transfer) error {
	if t.Status != models.StatusPending && t.Status != models.StatusInVerification {
		return review.PendingAdminReview(t.Status)
	}
	now := requestcontext.Now(ctx)
	entry, err := audit.NewEntry(audit.TypeTransfer, t.ID, t.ID.String(), audit.ActionReviewRequired, nil,
		map[string]any{
			"from":      t.Status,
			"to":        models.StatusAwaitingAdminReview,
			"amount":    t.Amount.String(),
			"threshold": s.gate.Threshold.String(),
		}, now)
	if err != nil {
		return review.PendingAdminReview(t.Status)
	}
	var stored bool
	err = s.tx.RunInTx(txcontext.WithShardKey(ctx, t.ID.String()), func(txCtx context.Context) error {
		if _, err := s.casStatus(txCtx, t, models.StatusAwaitingAdminReview, now); err != nil {
			return err
		}
		stored = s.emit(txCtx, entry)
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "could not move transfer to admin review",
			"transfer_id", t.ID.String(),
			"error", err,
		)
		if fresh, loadErr := s.load(ctx, t.ID); loadErr == nil {
			return review.PendingAdminReview(fresh.Status)
		}
		return review.PendingAdminReview(t.Status)
	}
	s.metrics.IncTransition(string(t.Status), string(models.StatusAwaitingAdminReview))
	if stored {
		s.publish(ctx, entry)
	}
	return review.PendingAdminReview(models.StatusAwaitingAdminReview)
}

func evidenceDetails(step *models.VerificationStep) map[string]any {
	switch step.Kind {
	case models.StepSellerInit:
		d := map[string]any{"before": step.PhotoBeforeURL, "after": step.PhotoAfterURL}
		if step.PhotoBeforeMetaJSON != "" {
			d["before_meta"] = step.PhotoBeforeMetaJSON
		}
		if step.PhotoAfterMetaJSON != "" {
			d["after_meta"] = step.PhotoAfterMetaJSON
		}
		return d
	case models.StepGPSConfirm:
		d := map[string]any{"lat": step.GPSLat, "lng": step.GPSLng}
		if step.Explanation != "" {
			d["explanation"] = step.Explanation
		}
		return d
	case models.StepIdentity:
		return map[string]any{"doc_type": step.IdentityDocType, "doc_ref": step.IdentityDocRef}
	case models.StepSignature:
		return map[string]any{"signature_ref": step.SignatureRef}
	case models.StepPlatformReview:
		return map[string]any{"notes": step.Notes}
	}
	return nil
}

func outcomeLabel(err error) string {
	if err == nil {
		return "accepted"
	}
	if code := dErrors.CodeOf(err); code != "" {
		return string(code)
	}
	return "error"
}
