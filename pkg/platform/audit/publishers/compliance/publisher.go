// Package compliance provides the synchronous audit publisher used inside the
// orchestrator transaction.
//
// Emit blocks until the store accepts the entry. A failed write is logged,
// counted and returned; the caller decides whether the operation stands. The
// orchestrator keeps its ledger mutation and only skips streaming the entry.
package compliance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	audit "handover/pkg/platform/audit"
)

var (
	errMissingAction = errors.New("audit entry requires Action")
	errMissingRef    = errors.New("audit entry requires RefID")
)

// Publisher writes entries synchronously.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit validates and persists entry. When ctx carries a transaction the write
// joins it.
func (p *Publisher) Emit(ctx context.Context, entry audit.Entry) error {
	start := time.Now()

	if entry.Action == "" {
		return errMissingAction
	}
	if entry.RefID == "" {
		return errMissingRef
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if len(entry.DetailsJSON) == 0 {
		entry.DetailsJSON = []byte(`{}`)
	}

	if err := p.store.Append(ctx, entry); err != nil {
		p.metrics.IncPersistFailures(string(entry.Action))
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit append failed",
				"log_type", "ops",
				"action", entry.Action,
				"ref_id", entry.RefID,
				"transfer_id", entry.TransferID.String(),
				"error", err,
			)
		}
		return fmt.Errorf("audit persistence failed: %w", err)
	}

	p.metrics.ObservePersistDuration(time.Since(start).Seconds())
	p.metrics.IncEmitted(string(entry.Action))
	return nil
}
