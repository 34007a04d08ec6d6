package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"handover/internal/identity"
	"handover/internal/transfer/models"
	"handover/internal/transfer/service/mocks"
	"handover/internal/transfer/store/memory"
	id "handover/pkg/domain"
	dErrors "handover/pkg/domain-errors"
	audit "handover/pkg/platform/audit"
	"handover/pkg/platform/sentinel"
	"handover/pkg/testutil"
)

func newTransfer(t *testing.T, seller, buyer id.UserID) *models.Transfer {
	t.Helper()
	tr, err := models.NewTransfer(id.NewTransferID(), seller, &buyer, decimal.NewFromInt(5000), "INR",
		models.TransferSale, baseline, time.Now())
	require.NoError(t, err)
	return tr
}

func TestSubmit_AuditFailureKeepsStep(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	seller, buyer := id.UserID(uuid.New()), id.UserID(uuid.New())

	transfers := memory.NewTransferStore()
	steps := memory.NewStepStore()
	tr := newTransfer(t, seller, buyer)
	require.NoError(t, transfers.Create(ctx, tr))

	publisher := mocks.NewMockAuditPublisher(ctrl)
	stream := mocks.NewMockStreamPublisher(ctrl)
	publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	stream.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	svc := New(transfers, steps, memory.NewDisputeStore(), identity.NewStaticProvider(nil),
		WithTx(memory.NewShardedTx()),
		WithAudit(publisher, nil),
		WithStreamPublisher(stream),
	)

	testutil.Given(t, "an audit store that rejects writes", func(t *testing.T) {
		testutil.When(t, "the seller submits SELLER_INIT", func(t *testing.T) {
			_, err := svc.Submit(ctx, sellerInit(tr, seller))

			testutil.Then(t, "the step is committed and the unrecorded entry is not streamed", func(t *testing.T) {
				require.NoError(t, err)

				list, err := steps.ListByTransfer(ctx, tr.ID)
				require.NoError(t, err)
				assert.Len(t, list, 1)

				found, err := transfers.FindByID(ctx, tr.ID)
				require.NoError(t, err)
				assert.Equal(t, models.StatusInVerification, found.Status)
			})
		})
	})
}

func TestSubmit_ConflictRetriesThenFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	seller, buyer := id.UserID(uuid.New()), id.UserID(uuid.New())
	tr := newTransfer(t, seller, buyer)

	transfers := mocks.NewMockTransferStore(ctrl)
	steps := mocks.NewMockStepStore(ctrl)
	transfers.EXPECT().FindByID(gomock.Any(), tr.ID).Return(tr, nil).Times(maxCommitAttempts)
	steps.EXPECT().ListByTransfer(gomock.Any(), tr.ID).Return(nil, nil).Times(maxCommitAttempts)
	steps.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).Times(maxCommitAttempts)
	transfers.EXPECT().UpdateStatus(gomock.Any(), tr.ID, tr.Version, models.StatusInVerification, gomock.Any()).
		Return(nil, sentinel.ErrConflict).Times(maxCommitAttempts)

	svc := New(transfers, steps, mocks.NewMockDisputeStore(ctrl), identity.NewStaticProvider(nil))

	_, err := svc.Submit(ctx, sellerInit(tr, seller))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, "concurrency_conflict", dErrors.DetailOf(err, "reason"))
}

func TestSubmit_RecoversFromOneConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	seller, buyer := id.UserID(uuid.New()), id.UserID(uuid.New())
	tr := newTransfer(t, seller, buyer)
	moved := *tr
	moved.Status = models.StatusInVerification
	moved.Version = tr.Version + 1

	transfers := mocks.NewMockTransferStore(ctrl)
	steps := mocks.NewMockStepStore(ctrl)
	publisher := mocks.NewMockAuditPublisher(ctrl)
	stream := mocks.NewMockStreamPublisher(ctrl)
	gomock.InOrder(
		transfers.EXPECT().FindByID(gomock.Any(), tr.ID).Return(tr, nil),
		transfers.EXPECT().FindByID(gomock.Any(), tr.ID).Return(&moved, nil),
	)
	steps.EXPECT().ListByTransfer(gomock.Any(), tr.ID).Return(nil, nil).Times(2)
	steps.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	gomock.InOrder(
		transfers.EXPECT().UpdateStatus(gomock.Any(), tr.ID, tr.Version, models.StatusInVerification, gomock.Any()).
			Return(nil, sentinel.ErrConflict),
		transfers.EXPECT().UpdateStatus(gomock.Any(), tr.ID, moved.Version, models.StatusInVerification, gomock.Any()).
			Return(&moved, nil),
	)
	publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Entry) error {
		assert.Equal(t, audit.ActionSellerInitSubmit, e.Action)
		return nil
	})
	stream.EXPECT().Publish(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entries ...audit.Entry) {
		require.Len(t, entries, 1)
		assert.Equal(t, audit.ActionSellerInitSubmit, entries[0].Action)
	})

	svc := New(transfers, steps, mocks.NewMockDisputeStore(ctrl), identity.NewStaticProvider(nil),
		WithAudit(publisher, nil),
		WithStreamPublisher(stream),
	)

	step, err := svc.Submit(ctx, sellerInit(tr, seller))
	require.NoError(t, err)
	assert.Equal(t, models.StepSellerInit, step.Kind)
}

func TestDeny_RecordsSecurityEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	seller, buyer, stranger := id.UserID(uuid.New()), id.UserID(uuid.New()), id.UserID(uuid.New())
	tr := newTransfer(t, seller, buyer)

	transfers := mocks.NewMockTransferStore(ctrl)
	denied := mocks.NewMockDeniedPublisher(ctrl)
	transfers.EXPECT().FindByID(gomock.Any(), tr.ID).Return(tr, nil)
	denied.EXPECT().Emit(gomock.Any(), gomock.Any()).Do(func(_ context.Context, e audit.Entry) {
		assert.Equal(t, audit.ActionAccessDenied, e.Action)
		assert.Equal(t, tr.ID, e.TransferID)
		require.NotNil(t, e.ActorID)
		assert.Equal(t, stranger, *e.ActorID)
		assert.Contains(t, string(e.DetailsJSON), "read_transfer")
	})

	svc := New(transfers, mocks.NewMockStepStore(ctrl), mocks.NewMockDisputeStore(ctrl),
		identity.NewStaticProvider(nil), WithDeniedPublisher(denied))

	_, err := svc.GetTransfer(ctx, tr.ID, stranger)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	assert.Equal(t, "read_transfer", dErrors.DetailOf(err, "operation"))
}
