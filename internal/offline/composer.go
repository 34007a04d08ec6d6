package offline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"handover/internal/evidence"
	"handover/internal/transfer/ledger"
	"handover/internal/transfer/models"
	id "handover/pkg/domain"
	dErrors "handover/pkg/domain-errors"
)

// Composer builds submissions on the device and parks them in the outbox.
type Composer struct {
	capturer evidence.Capturer
	outbox   *Outbox
	now      func() time.Time
}

func NewComposer(capturer evidence.Capturer, outbox *Outbox) *Composer {
	return &Composer{capturer: capturer, outbox: outbox, now: time.Now}
}

// SellerInit captures the before and after photos concurrently and queues the
// step once both references exist. If either capture fails or ctx is
// cancelled first, nothing is queued.
func (c *Composer) SellerInit(ctx context.Context, transferID id.TransferID, actorID id.UserID, beforeHandle, afterHandle string) (Request, error) {
	var before, after evidence.Ref
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ref, err := c.capturer.Capture(gctx, beforeHandle)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeValidation, "before photo capture failed").WithDetail("field", "photo_before")
		}
		before = ref
		return nil
	})
	g.Go(func() error {
		ref, err := c.capturer.Capture(gctx, afterHandle)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeValidation, "after photo capture failed").WithDetail("field", "photo_after")
		}
		after = ref
		return nil
	})
	if err := g.Wait(); err != nil {
		return Request{}, err
	}
	if err := ctx.Err(); err != nil {
		return Request{}, err
	}

	return c.Queue(ctx, ledger.Submission{
		TransferID: transferID,
		ActorID:    actorID,
		Kind:       models.StepSellerInit,
		Payload:    ledger.SellerInit{Before: before, After: after},
	})
}

// Queue parks any submission in the outbox.
func (c *Composer) Queue(ctx context.Context, sub ledger.Submission) (Request, error) {
	req, err := NewRequest(sub, c.now().UTC())
	if err != nil {
		return Request{}, err
	}
	if _, err := c.outbox.Enqueue(ctx, req); err != nil {
		return Request{}, err
	}
	return req, nil
}
