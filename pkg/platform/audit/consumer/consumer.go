// Package consumer reads the audit stream back out of Kafka and hands each
// decoded entry to a handler, committing offsets only after the handler
// succeeds.
package consumer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "handover/pkg/platform/audit"
	"handover/pkg/platform/audit/publishers/stream"
)

//go:generate mockgen -source=consumer.go -destination=mocks/mocks.go -package=mocks

// Handler processes one decoded audit entry. A returned error stops the
// consumer before the record's offset is committed, so it is redelivered
// after restart.
type Handler interface {
	Handle(ctx context.Context, entry audit.Entry) error
}

// Client is the subset of *kgo.Client the consumer needs.
type Client interface {
	PollFetches(ctx context.Context) kgo.Fetches
	CommitRecords(ctx context.Context, rs ...*kgo.Record) error
}

type Consumer struct {
	client  Client
	handler Handler
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Consumer)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Consumer) {
		c.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Consumer) {
		c.metrics = m
	}
}

func New(client Client, handler Handler, opts ...Option) *Consumer {
	c := &Consumer{
		client:  client,
		handler: handler,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run polls until ctx is cancelled or a handler fails.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if err := c.PollOnce(ctx); err != nil {
			return err
		}
	}
}

// PollOnce processes a single fetch. Records handled before a failing one are
// still committed.
func (c *Consumer) PollOnce(ctx context.Context) error {
	fetches := c.client.PollFetches(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	if fetches.IsClientClosed() {
		return kgo.ErrClientClosed
	}
	fetches.EachError(func(topic string, partition int32, err error) {
		c.logger.ErrorContext(ctx, "audit fetch failed",
			"log_type", "ops",
			"topic", topic,
			"partition", partition,
			"error", err,
		)
	})

	var (
		done      []*kgo.Record
		handleErr error
	)
	fetches.EachRecord(func(rec *kgo.Record) {
		if handleErr != nil {
			return
		}
		if err := c.process(ctx, rec); err != nil {
			handleErr = err
			return
		}
		done = append(done, rec)
	})

	if len(done) > 0 {
		if err := c.client.CommitRecords(ctx, done...); err != nil {
			return fmt.Errorf("commit audit offsets: %w", err)
		}
	}
	return handleErr
}

func (c *Consumer) process(ctx context.Context, rec *kgo.Record) error {
	entry, err := stream.Decode(rec.Value)
	if err != nil {
		// Redelivering a malformed record cannot help.
		c.metrics.IncMalformed()
		c.logger.ErrorContext(ctx, "skipping malformed audit record",
			"log_type", "ops",
			"topic", rec.Topic,
			"partition", rec.Partition,
			"offset", rec.Offset,
			"error", err,
		)
		return nil
	}
	if err := c.handler.Handle(ctx, entry); err != nil {
		c.metrics.IncFailures()
		return fmt.Errorf("handle audit entry %s: %w", entry.LogID, err)
	}
	c.metrics.IncConsumed(entry.Action.Category())
	return nil
}
