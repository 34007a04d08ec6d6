// Package security records refused actions (a non-party submitting a step, a
// non-reviewer resolving a dispute) without ever failing the request that
// triggered them. Entries are buffered and persisted by the audit worker.
package security

import (
	"context"
	"log/slog"
	"time"

	audit "handover/pkg/platform/audit"
)

// Publisher buffers denied-action entries for asynchronous persistence.
type Publisher struct {
	buffer  *Ring[audit.Entry]
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

// WithCapacity bounds how many entries wait for the worker.
func WithCapacity(n int) Option {
	return func(p *Publisher) {
		p.buffer = NewRing[audit.Entry](n)
	}
}

func New(opts ...Option) *Publisher {
	p := &Publisher{}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer == nil {
		p.buffer = NewRing[audit.Entry](0)
	}
	return p
}

// Emit enqueues entry. It never blocks on I/O and never returns an error.
func (p *Publisher) Emit(ctx context.Context, entry audit.Entry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if len(entry.DetailsJSON) == 0 {
		entry.DetailsJSON = []byte(`{}`)
	}
	if p.buffer.Push(entry) {
		p.metrics.IncDropped()
		if p.logger != nil {
			p.logger.WarnContext(ctx, "security audit buffer full, oldest entry dropped",
				"log_type", "ops",
				"dropped_total", p.buffer.Evicted(),
			)
		}
	}
	p.metrics.IncEnqueued()
}

// DequeueBatch hands buffered entries to the worker.
func (p *Publisher) DequeueBatch(n int) []audit.Entry {
	return p.buffer.PopN(n)
}

// Pending reports how many entries await persistence.
func (p *Publisher) Pending() int {
	return p.buffer.Len()
}
