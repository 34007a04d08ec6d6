package service

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"handover/internal/transfer/models"
	id "handover/pkg/domain"
	dErrors "handover/pkg/domain-errors"
	audit "handover/pkg/platform/audit"
	"handover/pkg/platform/sentinel"
	txcontext "handover/pkg/platform/tx"
	"handover/pkg/requestcontext"
)

const maxReasonLength = 2000

// RaiseDispute opens a dispute and moves the transfer to DISPUTED. Any party
// or reviewer may raise one; the review gate does not apply.
func (s *Service) RaiseDispute(ctx context.Context, transferID id.TransferID, actorID id.UserID, reason string) (*models.Dispute, error) {
	ctx, span := s.startSpan(ctx, "transfer.RaiseDispute", attribute.String("transfer_id", transferID.String()))
	defer span.End()

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, endSpan(span, dErrors.New(dErrors.CodeValidation, "reason required").WithDetail("field", "reason"))
	}
	if len(reason) > maxReasonLength {
		return nil, endSpan(span, dErrors.New(dErrors.CodeValidation, "reason too long").WithDetail("field", "reason"))
	}
	if actorID.IsNil() {
		return nil, endSpan(span, dErrors.New(dErrors.CodeUnauthorized, "actor required"))
	}

	var d *models.Dispute
	var stored []audit.Entry
	err := s.withRetry(ctx, func() error {
		var err error
		d, stored, err = s.raiseOnce(ctx, transferID, actorID, reason)
		return err
	})
	if err != nil {
		return nil, endSpan(span, err)
	}

	s.metrics.IncTransition(string(d.PriorStatus), string(models.StatusDisputed))
	s.metrics.IncDisputeRaised()
	s.publish(ctx, stored...)
	s.logger.InfoContext(ctx, "dispute raised",
		"transfer_id", transferID.String(),
		"dispute_id", d.ID.String(),
		"actor_id", actorID.String(),
		"prior_status", string(d.PriorStatus),
		"request_id", requestcontext.RequestID(ctx),
	)
	return d, nil
}

func (s *Service) raiseOnce(ctx context.Context, transferID id.TransferID, actorID id.UserID, reason string) (*models.Dispute, []audit.Entry, error) {
	t, err := s.load(ctx, transferID)
	if err != nil {
		return nil, nil, err
	}
	if t.Status.IsTerminal() {
		return nil, nil, terminalError(t.Status)
	}
	if t.Status == models.StatusDisputed {
		return nil, nil, disputeOpenError()
	}
	role, err := s.roleOf(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	if !role.IsReviewer() && !t.IsParty(actorID) {
		return nil, nil, s.deny(ctx, t.ID, t.ID.String(), actorID, role, "raise_dispute", "not a party to the transfer")
	}

	now := requestcontext.Now(ctx)
	d := &models.Dispute{
		ID:          id.NewDisputeID(),
		TransferID:  t.ID,
		RaisedBy:    actorID,
		Reason:      reason,
		Status:      models.DisputeOpen,
		PriorStatus: t.Status,
		CreatedAt:   now,
	}
	entry, err := audit.NewEntry(audit.TypeDispute, t.ID, d.ID.String(), audit.ActionDisputeRaise, &actorID,
		map[string]any{
			"reason": reason,
			"from":   t.Status,
			"to":     models.StatusDisputed,
		}, now)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build audit entry")
	}

	var stored bool
	err = s.tx.RunInTx(txcontext.WithShardKey(ctx, t.ID.String()), func(txCtx context.Context) error {
		if err := s.disputes.Create(txCtx, d); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return disputeOpenError()
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create dispute")
		}
		if _, err := s.casStatus(txCtx, t, models.StatusDisputed, now); err != nil {
			return err
		}
		stored = s.emit(txCtx, entry)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if !stored {
		return d, nil, nil
	}
	return d, []audit.Entry{entry}, nil
}

// ResolveDispute closes an open dispute. Upheld disputes cancel the transfer;
// rejected ones return it to the status it held when the dispute was raised.
func (s *Service) ResolveDispute(ctx context.Context, disputeID id.DisputeID, actorID id.UserID, notes string, upheld bool) (*models.Dispute, error) {
	ctx, span := s.startSpan(ctx, "transfer.ResolveDispute",
		attribute.String("dispute_id", disputeID.String()),
		attribute.Bool("upheld", upheld),
	)
	defer span.End()

	if actorID.IsNil() {
		return nil, endSpan(span, dErrors.New(dErrors.CodeUnauthorized, "actor required"))
	}

	var d *models.Dispute
	var stored []audit.Entry
	var from, to models.Status
	err := s.withRetry(ctx, func() error {
		var err error
		d, stored, from, to, err = s.resolveOnce(ctx, disputeID, actorID, strings.TrimSpace(notes), upheld)
		return err
	})
	if err != nil {
		return nil, endSpan(span, err)
	}

	s.metrics.IncTransition(string(from), string(to))
	s.publish(ctx, stored...)
	s.logger.InfoContext(ctx, "dispute closed",
		"transfer_id", d.TransferID.String(),
		"dispute_id", d.ID.String(),
		"actor_id", actorID.String(),
		"dispute_status", string(d.Status),
		"status", string(to),
		"request_id", requestcontext.RequestID(ctx),
	)
	return d, nil
}

func (s *Service) resolveOnce(ctx context.Context, disputeID id.DisputeID, actorID id.UserID, notes string, upheld bool) (
	*models.Dispute, []audit.Entry, models.Status, models.Status, error) {
	d, err := s.disputes.FindByID(ctx, disputeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, "", "", dErrors.New(dErrors.CodeNotFound, "dispute not found")
		}
		return nil, nil, "", "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load dispute")
	}
	t, err := s.load(ctx, d.TransferID)
	if err != nil {
		return nil, nil, "", "", err
	}
	role, err := s.roleOf(ctx, actorID)
	if err != nil {
		return nil, nil, "", "", err
	}
	if !role.IsReviewer() {
		return nil, nil, "", "", s.deny(ctx, t.ID, d.ID.String(), actorID, role, "resolve_dispute", "dispute resolution requires a reviewer")
	}
	if !d.IsOpen() {
		return nil, nil, "", "", dErrors.New(dErrors.CodeConflict, "dispute already closed").
			WithDetail("dispute_status", string(d.Status))
	}
	if t.Status != models.StatusDisputed {
		return nil, nil, "", "", dErrors.New(dErrors.CodeInvariantViolation, "open dispute on a transfer that is not disputed").
			WithDetail("status", string(t.Status))
	}

	now := requestcontext.Now(ctx)
	closed := *d
	closed.ResolutionNotes = notes
	closed.ResolvedBy = &actorID
	closed.ResolvedAt = &now
	next := closed.PriorStatus
	action := audit.ActionDisputeReject
	closed.Status = models.DisputeRejected
	if upheld {
		next = models.StatusCancelled
		action = audit.ActionDisputeResolve
		closed.Status = models.DisputeResolved
	}

	entry, err := audit.NewEntry(audit.TypeDispute, t.ID, d.ID.String(), action, &actorID,
		map[string]any{
			"upheld": upheld,
			"notes":  notes,
			"from":   t.Status,
			"to":     next,
		}, now)
	if err != nil {
		return nil, nil, "", "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to build audit entry")
	}

	var stored bool
	err = s.tx.RunInTx(txcontext.WithShardKey(ctx, t.ID.String()), func(txCtx context.Context) error {
		if err := s.disputes.Close(txCtx, &closed); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "dispute already closed")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to close dispute")
		}
		if _, err := s.casStatus(txCtx, t, next, now); err != nil {
			return err
		}
		stored = s.emit(txCtx, entry)
		return nil
	})
	if err != nil {
		return nil, nil, "", "", err
	}
	if !stored {
		return &closed, nil, t.Status, next, nil
	}
	return &closed, []audit.Entry{entry}, t.Status, next, nil
}

// ListDisputes returns the transfer's disputes in creation order.
func (s *Service) ListDisputes(ctx context.Context, transferID id.TransferID, actorID id.UserID) ([]*models.Dispute, error) {
	ctx, span := s.startSpan(ctx, "transfer.ListDisputes", attribute.String("transfer_id", transferID.String()))
	defer span.End()

	if _, _, err := s.loadForRead(ctx, transferID, actorID, "read_disputes"); err != nil {
		return nil, endSpan(span, err)
	}
	disputes, err := s.disputes.ListByTransfer(ctx, transferID)
	if err != nil {
		return nil, endSpan(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list disputes"))
	}
	return disputes, nil
}

func disputeOpenError() error {
	return dErrors.New(dErrors.CodeDisputeOpen, "transfer already has an open dispute").
		WithDetail("status", string(models.StatusDisputed))
}
