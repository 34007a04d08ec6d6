package offline

import (
	"context"
	"log/slog"
	"time"

	"handover/internal/transfer/ledger"
	"handover/internal/transfer/models"
	id "handover/pkg/domain"
	dErrors "handover/pkg/domain-errors"
)

const defaultBatchSize = 50

//go:generate mockgen -source=drainer.go -destination=mocks/mocks.go -package=mocks

// Sender delivers one submission to the orchestrator.
type Sender interface {
	Submit(ctx context.Context, sub ledger.Submission) (*models.VerificationStep, error)
}

// Report summarizes one drain pass.
type Report struct {
	Delivered    int
	DeadLettered int
	Deferred     int
}

// Drainer replays the outbox in queue order.
type Drainer struct {
	outbox    *Outbox
	sender    Sender
	logger    *slog.Logger
	metrics   *Metrics
	batchSize int
}

type DrainerOption func(*Drainer)

func WithLogger(logger *slog.Logger) DrainerOption {
	return func(d *Drainer) { d.logger = logger }
}

func WithMetrics(m *Metrics) DrainerOption {
	return func(d *Drainer) { d.metrics = m }
}

func WithBatchSize(n int) DrainerOption {
	return func(d *Drainer) {
		if n > 0 {
			d.batchSize = n
		}
	}
}

func NewDrainer(outbox *Outbox, sender Sender, opts ...DrainerOption) *Drainer {
	d := &Drainer{
		outbox:    outbox,
		sender:    sender,
		logger:    slog.Default(),
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Drain makes one pass over the pending requests. A transfer whose request is
// deferred keeps its later requests queued too, so per-transfer order holds
// across passes.
func (d *Drainer) Drain(ctx context.Context) (Report, error) {
	var report Report
	pending, err := d.outbox.Pending(ctx, d.batchSize)
	if err != nil {
		return report, err
	}

	blocked := make(map[id.TransferID]bool)
	for _, req := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if blocked[req.TransferID] {
			report.Deferred++
			continue
		}

		outcome, err := d.deliver(ctx, req)
		if err != nil {
			return report, err
		}
		switch outcome {
		case outcomeDelivered:
			report.Delivered++
		case outcomeDead:
			report.DeadLettered++
		case outcomeDeferred:
			report.Deferred++
			blocked[req.TransferID] = true
		}
		d.metrics.observe(outcome)
	}
	return report, nil
}

type outcome string

const (
	outcomeDelivered outcome = "delivered"
	outcomeDead      outcome = "dead_lettered"
	outcomeDeferred  outcome = "deferred"
)

func (d *Drainer) deliver(ctx context.Context, req Request) (outcome, error) {
	logger := d.logger.With(
		"transfer_id", req.TransferID.String(),
		"step_id", req.StepID.String(),
		"kind", string(req.Kind),
	)

	sub, err := req.Submission()
	if err != nil {
		logger.WarnContext(ctx, "dead-lettering undecodable offline request", "error", err)
		return outcomeDead, d.outbox.MarkDead(ctx, req.StepID, err.Error())
	}

	_, err = d.sender.Submit(ctx, sub)
	if err == nil {
		logger.InfoContext(ctx, "offline request delivered")
		return outcomeDelivered, d.outbox.MarkDelivered(ctx, req.StepID)
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	if permanent(err) {
		logger.WarnContext(ctx, "offline request refused",
			"code", string(dErrors.CodeOf(err)),
			"error", err,
		)
		return outcomeDead, d.outbox.MarkDead(ctx, req.StepID, err.Error())
	}
	logger.InfoContext(ctx, "offline request deferred",
		"code", string(dErrors.CodeOf(err)),
		"attempts", req.Attempts+1,
	)
	return outcomeDeferred, d.outbox.RecordFailure(ctx, req.StepID, err.Error())
}

// permanent reports whether replaying the request can never succeed. Conflicts,
// holds and infrastructure failures may clear, so they stay queued.
func permanent(err error) bool {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation,
		dErrors.CodeBadRequest,
		dErrors.CodeInvalidInput,
		dErrors.CodeUnauthorized,
		dErrors.CodeForbidden,
		dErrors.CodeNotFound,
		dErrors.CodeTerminalState,
		dErrors.CodeInvariantViolation:
		return true
	}
	return false
}

// Run drains every interval until ctx is cancelled.
func (d *Drainer) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		report, err := d.Drain(ctx)
		if err != nil && ctx.Err() == nil {
			d.logger.ErrorContext(ctx, "offline drain failed", "error", err)
		}
		if report.Delivered+report.DeadLettered > 0 {
			d.logger.InfoContext(ctx, "offline drain pass",
				"delivered", report.Delivered,
				"dead_lettered", report.DeadLettered,
				"deferred", report.Deferred,
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
