// Package worker persists buffered audit entries in the background.
package worker

import (
	"context"
	"log/slog"
	"time"

	audit "handover/pkg/platform/audit"
)

// Source yields buffered entries in FIFO order.
type Source interface {
	DequeueBatch(n int) []audit.Entry
}

type failureRecorder interface {
	IncPersistFailures()
}

// Worker drains a Source into a Store on a fixed interval. Entries the store
// rejects are logged and counted, then discarded.
type Worker struct {
	source    Source
	store     audit.Store
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	failures  failureRecorder
}

type Option func(*Worker)

func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithFailureRecorder wires a metrics sink for rejected entries.
func WithFailureRecorder(r failureRecorder) Option {
	return func(w *Worker) {
		w.failures = r
	}
}

func NewWorker(source Source, store audit.Store, opts ...Option) *Worker {
	w := &Worker{
		source:    source,
		store:     store,
		interval:  time.Second,
		batchSize: 100,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run flushes until ctx is cancelled, then performs a final flush.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.Flush(context.WithoutCancel(ctx))
			return ctx.Err()
		case <-ticker.C:
			w.Flush(ctx)
		}
	}
}

// Flush persists everything currently buffered and returns how many entries
// were written.
func (w *Worker) Flush(ctx context.Context) int {
	written := 0
	for {
		batch := w.source.DequeueBatch(w.batchSize)
		if len(batch) == 0 {
			return written
		}
		for _, entry := range batch {
			if err := w.store.Append(ctx, entry); err != nil {
				if w.failures != nil {
					w.failures.IncPersistFailures()
				}
				if w.logger != nil {
					w.logger.ErrorContext(ctx, "denied-action audit append failed",
						"log_type", "ops",
						"action", entry.Action,
						"ref_id", entry.RefID,
						"error", err,
					)
				}
				continue
			}
			written++
		}
	}
}
