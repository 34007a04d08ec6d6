package stream

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	id "handover/pkg/domain"
	audit "handover/pkg/platform/audit"
	"handover/pkg/platform/circuit"
)

type fakeProducer struct {
	mu      sync.Mutex
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) Produce(_ context.Context, r *kgo.Record, promise func(*kgo.Record, error)) {
	f.mu.Lock()
	f.records = append(f.records, r)
	err := f.err
	f.mu.Unlock()
	promise(r, err)
}

func (f *fakeProducer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func entryFor(transferID id.TransferID, action audit.Action) audit.Entry {
	return audit.Entry{
		LogID:       id.NewLogID(),
		Type:        audit.TypeVerification,
		TransferID:  transferID,
		RefID:       "step",
		Action:      action,
		DetailsJSON: json.RawMessage(`{"kind":"GPS_CONFIRM"}`),
		CreatedAt:   time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestPublisher_KeysRecordsByTransfer(t *testing.T) {
	producer := &fakeProducer{}
	pub := New(producer, "handover.audit")
	transferID := id.NewTransferID()

	pub.Publish(context.Background(), entryFor(transferID, audit.ActionGPSConfirmSubmit))

	require.Equal(t, 1, producer.count())
	rec := producer.records[0]
	assert.Equal(t, "handover.audit", rec.Topic)
	assert.Equal(t, transferID.String(), string(rec.Key))

	var msg map[string]any
	require.NoError(t, json.Unmarshal(rec.Value, &msg))
	assert.Equal(t, "GPS_CONFIRM_SUBMIT", msg["action"])
	assert.Equal(t, "compliance", msg["category"])
	assert.Equal(t, map[string]any{"kind": "GPS_CONFIRM"}, msg["details"])
}

func TestPublisher_OpenBreakerSkipsProduce(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker down")}
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	breaker := circuit.New("test",
		circuit.WithFailureThreshold(2),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }),
	)
	pub := New(producer, "handover.audit", WithBreaker(breaker))
	transferID := id.NewTransferID()

	pub.Publish(context.Background(), entryFor(transferID, audit.ActionIdentitySubmit))
	pub.Publish(context.Background(), entryFor(transferID, audit.ActionIdentitySubmit))
	require.True(t, breaker.IsOpen())

	pub.Publish(context.Background(), entryFor(transferID, audit.ActionIdentitySubmit))
	assert.Equal(t, 2, producer.count(), "publish skipped while breaker is open")

	producer.err = nil
	now = now.Add(time.Minute)
	pub.Publish(context.Background(), entryFor(transferID, audit.ActionIdentitySubmit))
	assert.Equal(t, 3, producer.count())
	assert.False(t, breaker.IsOpen(), "successful probe closes the breaker")
}

func TestDecode_ReadsPublishedValue(t *testing.T) {
	producer := &fakeProducer{}
	transferID := id.NewTransferID()
	actor := id.UserID(uuid.New())
	entry := entryFor(transferID, audit.ActionDisputeRaise)
	entry.ActorID = &actor

	New(producer, "handover.audit").Publish(context.Background(), entry)
	require.Equal(t, 1, producer.count())

	got, err := Decode(producer.records[0].Value)
	require.NoError(t, err)
	assert.Equal(t, entry.LogID, got.LogID)
	assert.Equal(t, entry.Action, got.Action)
	require.NotNil(t, got.ActorID)
	assert.Equal(t, actor, *got.ActorID)
	assert.JSONEq(t, string(entry.DetailsJSON), string(got.DetailsJSON))
	assert.True(t, entry.CreatedAt.Equal(got.CreatedAt))

	_, err = Decode([]byte(`{"log_id":"nope"}`))
	assert.Error(t, err)
}
