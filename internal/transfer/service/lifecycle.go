package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"handover/internal/transfer/models"
	"handover/internal/transfer/trust"
	id "handover/pkg/domain"
	dErrors "handover/pkg/domain-errors"
	audit "handover/pkg/platform/audit"
	txcontext "handover/pkg/platform/tx"
	"handover/pkg/requestcontext"
)

// Cancel ends a transfer. Reviewers may cancel any non-terminal transfer
// without an open dispute; parties only before review starts. A disputed
// transfer is cancelled by upholding its dispute.
func (s *Service) Cancel(ctx context.Context, transferID id.TransferID, actorID id.UserID, reason string) (*models.Transfer, error) {
	ctx, span := s.startSpan(ctx, "transfer.Cancel", attribute.String("transfer_id", transferID.String()))
	defer span.End()

	if actorID.IsNil() {
		return nil, endSpan(span, dErrors.New(dErrors.CodeUnauthorized, "actor required"))
	}
	reason = strings.TrimSpace(reason)
	if len(reason) > maxReasonLength {
		return nil, endSpan(span, dErrors.New(dErrors.CodeValidation, "reason too long").WithDetail("field", "reason"))
	}

	var updated *models.Transfer
	var from models.Status
	var entry audit.Entry
	var stored bool
	err := s.withRetry(ctx, func() error {
		t, err := s.load(ctx, transferID)
		if err != nil {
			return err
		}
		if t.Status.IsTerminal() {
			return terminalError(t.Status)
		}
		if t.Status == models.StatusDisputed {
			return disputedError()
		}
		role, err := s.roleOf(ctx, actorID)
		if err != nil {
			return err
		}
		if !role.IsReviewer() {
			if !t.IsParty(actorID) {
				return s.deny(ctx, t.ID, t.ID.String(), actorID, role, "cancel", "not a party to the transfer")
			}
			if t.Status != models.StatusPending && t.Status != models.StatusInVerification {
				return s.deny(ctx, t.ID, t.ID.String(), actorID, role, "cancel", "transfer is under review")
			}
		}

		now := requestcontext.Now(ctx)
		entry, err = audit.NewEntry(audit.TypeTransfer, t.ID, t.ID.String(), audit.ActionTransferCancel, &actorID,
			map[string]any{"reason": reason, "from": t.Status, "to": models.StatusCancelled}, now)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build audit entry")
		}
		from = t.Status
		return s.tx.RunInTx(txcontext.WithShardKey(ctx, t.ID.String()), func(txCtx context.Context) error {
			var err error
			if updated, err = s.casStatus(txCtx, t, models.StatusCancelled, now); err != nil {
				return err
			}
			stored = s.emit(txCtx, entry)
			return nil
		})
	})
	if err != nil {
		return nil, endSpan(span, err)
	}

	s.metrics.IncTransition(string(from), string(models.StatusCancelled))
	if stored {
		s.publish(ctx, entry)
	}
	s.logger.InfoContext(ctx, "transfer cancelled",
		"transfer_id", transferID.String(),
		"actor_id", actorID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return updated, nil
}

// TrustScore recomputes the score from the current ledger and disputes.
func (s *Service) TrustScore(ctx context.Context, transferID id.TransferID, actorID id.UserID) (trust.Result, error) {
	ctx, span := s.startSpan(ctx, "transfer.TrustScore", attribute.String("transfer_id", transferID.String()))
	defer span.End()

	t, _, err := s.loadForRead(ctx, transferID, actorID, "read_trust")
	if err != nil {
		return trust.Result{}, endSpan(span, err)
	}

	var steps []*models.VerificationStep
	var disputes []*models.Dispute
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		steps, err = s.steps.ListByTransfer(gctx, transferID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list steps")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		disputes, err = s.disputes.ListByTransfer(gctx, transferID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list disputes")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return trust.Result{}, endSpan(span, err)
	}

	res := trust.Score(t, steps, disputes, s.radius)
	s.metrics.ObserveTrustScore(res.Score)
	span.SetAttributes(attribute.Int("trust_score", res.Score))
	return res, nil
}
