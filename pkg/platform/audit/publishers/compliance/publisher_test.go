package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "handover/pkg/domain"
	audit "handover/pkg/platform/audit"
	"handover/pkg/platform/audit/store/memory"
)

type failingStore struct {
	audit.Store
	err error
}

func (f failingStore) Append(context.Context, audit.Entry) error { return f.err }

func TestPublisher_EmitPersistsEntry(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New(store)

	transferID := id.NewTransferID()
	actor := id.UserID(id.NewTransferID())
	entry, err := audit.NewEntry(audit.TypeTransfer, transferID, transferID.String(),
		audit.ActionTransferCreate, &actor, map[string]string{"amount": "50"}, time.Now())
	require.NoError(t, err)

	require.NoError(t, pub.Emit(context.Background(), entry))

	entries, err := store.ListByTransfer(context.Background(), transferID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionTransferCreate, entries[0].Action)
	assert.JSONEq(t, `{"amount":"50"}`, string(entries[0].DetailsJSON))
	require.NotNil(t, entries[0].ActorID)
	assert.Equal(t, actor, *entries[0].ActorID)
}

func TestPublisher_EmitRejectsIncompleteEntries(t *testing.T) {
	pub := New(memory.NewInMemoryStore())

	err := pub.Emit(context.Background(), audit.Entry{RefID: "x"})
	assert.ErrorIs(t, err, errMissingAction)

	err = pub.Emit(context.Background(), audit.Entry{Action: audit.ActionTransferCancel})
	assert.ErrorIs(t, err, errMissingRef)
}

func TestPublisher_EmitReturnsStoreFailure(t *testing.T) {
	boom := errors.New("disk full")
	pub := New(failingStore{err: boom})

	err := pub.Emit(context.Background(), audit.Entry{
		LogID:  id.NewLogID(),
		RefID:  "ref",
		Action: audit.ActionDisputeRaise,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestPublisher_EmitDefaultsTimestampAndDetails(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New(store)

	require.NoError(t, pub.Emit(context.Background(), audit.Entry{
		LogID:  id.NewLogID(),
		RefID:  "step-1",
		Action: audit.ActionSignatureSubmit,
	}))

	entries, err := store.ListByRef(context.Background(), "step-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].CreatedAt.IsZero())
	assert.JSONEq(t, `{}`, string(entries[0].DetailsJSON))
}
