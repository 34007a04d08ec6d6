package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "handover/pkg/domain"
	audit "handover/pkg/platform/audit"
	"handover/pkg/platform/audit/publishers/security"
	"handover/pkg/platform/audit/store/memory"
)

type countingRecorder struct{ n int }

func (c *countingRecorder) IncPersistFailures() { c.n++ }

type rejectingStore struct {
	*memory.InMemoryStore
	reject audit.Action
}

func (s rejectingStore) Append(ctx context.Context, e audit.Entry) error {
	if e.Action == s.reject {
		return errors.New("rejected")
	}
	return s.InMemoryStore.Append(ctx, e)
}

func TestWorker_FlushPersistsBufferedEntries(t *testing.T) {
	pub := security.New()
	store := memory.NewInMemoryStore()
	transferID := id.NewTransferID()
	for range 5 {
		pub.Emit(context.Background(), audit.Entry{
			LogID:      id.NewLogID(),
			TransferID: transferID,
			RefID:      transferID.String(),
			Action:     audit.ActionAccessDenied,
		})
	}

	w := NewWorker(pub, store, WithBatchSize(2))
	assert.Equal(t, 5, w.Flush(context.Background()))

	entries, err := store.ListByTransfer(context.Background(), transferID)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
	assert.Zero(t, pub.Pending())
}

func TestWorker_FlushCountsRejectedEntries(t *testing.T) {
	pub := security.New()
	rec := &countingRecorder{}
	store := rejectingStore{InMemoryStore: memory.NewInMemoryStore(), reject: audit.ActionAccessDenied}
	pub.Emit(context.Background(), audit.Entry{LogID: id.NewLogID(), RefID: "r", Action: audit.ActionAccessDenied})

	w := NewWorker(pub, store, WithFailureRecorder(rec))
	assert.Zero(t, w.Flush(context.Background()))
	assert.Equal(t, 1, rec.n)
}

func TestWorker_RunFlushesOnShutdown(t *testing.T) {
	pub := security.New()
	store := memory.NewInMemoryStore()
	w := NewWorker(pub, store, WithInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	pub.Emit(context.Background(), audit.Entry{LogID: id.NewLogID(), RefID: "r", Action: audit.ActionAccessDenied})
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	assert.Equal(t, 1, store.Len())
}
