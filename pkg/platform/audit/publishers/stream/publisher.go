// Package stream fans committed audit entries out to Kafka.
//
// Publishing happens after the owning transaction commits and is best-effort:
// failures are logged and counted, and a circuit breaker stops paying broker
// timeouts while Kafka is unreachable. The database remains the record of truth.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "handover/pkg/platform/audit"
	"handover/pkg/platform/circuit"
)

// Producer is the subset of *kgo.Client the publisher needs.
type Producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
}

// Publisher writes entries to a topic keyed by transfer id so a transfer's
// entries stay ordered within one partition.
type Publisher struct {
	producer Producer
	topic    string
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *Metrics
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

func WithBreaker(b *circuit.Breaker) Option {
	return func(p *Publisher) {
		if b != nil {
			p.breaker = b
		}
	}
}

func New(producer Producer, topic string, opts ...Option) *Publisher {
	p := &Publisher{
		producer: producer,
		topic:    topic,
		breaker: circuit.New("audit-stream",
			circuit.WithFailureThreshold(3),
			circuit.WithCooldown(30*time.Second),
		),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type message struct {
	LogID      string          `json:"log_id"`
	Type       string          `json:"type"`
	TransferID string          `json:"transfer_id"`
	RefID      string          `json:"ref_id"`
	Action     string          `json:"action"`
	Category   string          `json:"category"`
	ActorID    *string         `json:"actor_id,omitempty"`
	Details    json.RawMessage `json:"details"`
	CreatedAt  time.Time       `json:"created_at"`
}

func encode(e audit.Entry) ([]byte, error) {
	m := message{
		LogID:      e.LogID.String(),
		Type:       string(e.Type),
		TransferID: e.TransferID.String(),
		RefID:      e.RefID,
		Action:     string(e.Action),
		Category:   string(e.Action.Category()),
		Details:    e.DetailsJSON,
		CreatedAt:  e.CreatedAt,
	}
	if len(m.Details) == 0 {
		m.Details = json.RawMessage(`{}`)
	}
	if e.ActorID != nil {
		s := e.ActorID.String()
		m.ActorID = &s
	}
	return json.Marshal(m)
}

// Publish hands entries to the producer without waiting for acknowledgement.
// It never returns an error; the request context's cancellation is detached
// so a finished HTTP request does not abort delivery.
func (p *Publisher) Publish(ctx context.Context, entries ...audit.Entry) {
	if len(entries) == 0 {
		return
	}
	if !p.breaker.Allow() {
		p.metrics.AddDropped(len(entries))
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, e := range entries {
		value, err := encode(e)
		if err != nil {
			p.metrics.IncFailures()
			p.logError(ctx, "audit stream encode failed", e, err)
			continue
		}
		rec := &kgo.Record{
			Topic: p.topic,
			Key:   []byte(e.TransferID.String()),
			Value: value,
			Headers: []kgo.RecordHeader{
				{Key: "action", Value: []byte(e.Action)},
				{Key: "category", Value: []byte(e.Action.Category())},
			},
			Timestamp: e.CreatedAt,
		}
		entry := e
		p.producer.Produce(ctx, rec, func(_ *kgo.Record, err error) {
			p.complete(ctx, entry, err)
		})
	}
}

func (p *Publisher) complete(ctx context.Context, e audit.Entry, err error) {
	if err == nil {
		_, change := p.breaker.RecordSuccess()
		if change.Closed {
			p.metrics.SetBreakerOpen(false)
			if p.logger != nil {
				p.logger.InfoContext(ctx, "audit stream recovered", "log_type", "ops")
			}
		}
		p.metrics.IncPublished()
		return
	}
	p.metrics.IncFailures()
	_, change := p.breaker.RecordFailure()
	if change.Opened {
		p.metrics.SetBreakerOpen(true)
	}
	p.logError(ctx, "audit stream publish failed", e, err)
}

func (p *Publisher) logError(ctx context.Context, msg string, e audit.Entry, err error) {
	if p.logger == nil {
		return
	}
	p.logger.ErrorContext(ctx, msg,
		"log_type", "ops",
		"action", e.Action,
		"transfer_id", e.TransferID.String(),
		"breaker", p.breaker.State().String(),
		"error", err,
	)
}
