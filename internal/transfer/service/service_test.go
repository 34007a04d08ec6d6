package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"handover/internal/evidence"
	"handover/internal/geo"
	"handover/internal/identity"
	"handover/internal/transfer/ledger"
	"handover/internal/transfer/models"
	"handover/internal/transfer/store/memory"
	"handover/internal/transfer/trust"
	id "handover/pkg/domain"
	dErrors "handover/pkg/domain-errors"
	audit "handover/pkg/platform/audit"
	"handover/pkg/platform/audit/publishers/compliance"
	"handover/pkg/platform/audit/publishers/security"
	auditmemory "handover/pkg/platform/audit/store/memory"
	"handover/pkg/requestcontext"
)

var baseline = &geo.Point{Lat: 12.9716, Lng: 77.5946}

type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	svc       *Service
	transfers *memory.TransferStore
	steps     *memory.StepStore
	disputes  *memory.DisputeStore
	auditLog  *auditmemory.InMemoryStore
	denied    *security.Publisher
	roles     *identity.StaticProvider

	seller    id.UserID
	buyer     id.UserID
	moderator id.UserID
	stranger  id.UserID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.seller = id.UserID(uuid.New())
	s.buyer = id.UserID(uuid.New())
	s.moderator = id.UserID(uuid.New())
	s.stranger = id.UserID(uuid.New())
	s.roles = identity.NewStaticProvider(map[id.UserID]identity.Role{
		s.seller:    identity.RoleSeller,
		s.buyer:     identity.RoleBuyer,
		s.moderator: identity.RoleModerator,
	})

	s.transfers = memory.NewTransferStore()
	s.steps = memory.NewStepStore()
	s.disputes = memory.NewDisputeStore()
	s.auditLog = auditmemory.NewInMemoryStore()
	s.denied = security.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.svc = New(s.transfers, s.steps, s.disputes, s.roles,
		WithLogger(logger),
		WithTx(memory.NewShardedTx()),
		WithAudit(compliance.New(s.auditLog), s.auditLog),
		WithDeniedPublisher(s.denied),
		WithReviewThreshold(decimal.NewFromInt(10000)),
		WithGPSRadius(100),
	)
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC))
}

func (s *ServiceSuite) createTransfer(amount int64) *models.Transfer {
	t, err := s.svc.CreateTransfer(s.ctx, CreateRequest{
		ActorID:  s.seller,
		ToParty:  &s.buyer,
		Amount:   decimal.NewFromInt(amount),
		Currency: "INR",
		Type:     models.TransferSale,
		Baseline: baseline,
	})
	s.Require().NoError(err)
	return t
}

func ptr(f float64) *float64 { return &f }

func sellerInit(t *models.Transfer, actor id.UserID) ledger.Submission {
	return ledger.Submission{TransferID: t.ID, ActorID: actor, Kind: models.StepSellerInit,
		Payload: ledger.SellerInit{
			Before: evidence.Ref{Reference: "evidence://before"},
			After:  evidence.Ref{Reference: "evidence://after"},
		}}
}

func gpsConfirm(t *models.Transfer, actor id.UserID, lat, lng float64, explanation string) ledger.Submission {
	return ledger.Submission{TransferID: t.ID, ActorID: actor, Kind: models.StepGPSConfirm,
		Payload: ledger.GPSConfirm{Lat: ptr(lat), Lng: ptr(lng), Explanation: explanation}}
}

func identityStep(t *models.Transfer, actor id.UserID) ledger.Submission {
	return ledger.Submission{TransferID: t.ID, ActorID: actor, Kind: models.StepIdentity,
		Payload: ledger.Identity{DocType: "AADHAAR", DocRef: "evidence://aadhaar", DocNumber: "1234-5678-9012"}}
}

func signature(t *models.Transfer, actor id.UserID) ledger.Submission {
	return ledger.Submission{TransferID: t.ID, ActorID: actor, Kind: models.StepSignature,
		Payload: ledger.Signature{Ref: "evidence://signature"}}
}

func platformReview(t *models.Transfer, actor id.UserID, approved bool) ledger.Submission {
	return ledger.Submission{TransferID: t.ID, ActorID: actor, Kind: models.StepPlatformReview,
		Payload: ledger.PlatformReview{Approved: approved, Notes: "checked"}}
}

func (s *ServiceSuite) status(t *models.Transfer) models.Status {
	found, err := s.transfers.FindByID(s.ctx, t.ID)
	s.Require().NoError(err)
	return found.Status
}

func (s *ServiceSuite) ledgerLen(t *models.Transfer) int {
	steps, err := s.steps.ListByTransfer(s.ctx, t.ID)
	s.Require().NoError(err)
	return len(steps)
}

func (s *ServiceSuite) auditEntries(t *models.Transfer) []audit.Entry {
	entries, err := s.auditLog.ListByTransfer(s.ctx, t.ID)
	s.Require().NoError(err)
	return entries
}

func (s *ServiceSuite) requireCode(err error, code dErrors.Code) {
	s.T().Helper()
	s.Require().Error(err)
	s.Require().True(dErrors.HasCode(err, code), "want %s, got %v", code, err)
}

func (s *ServiceSuite) completeTransfer(t *models.Transfer) {
	_, err := s.svc.Submit(s.ctx, sellerInit(t, s.seller))
	s.Require().NoError(err)
	_, err = s.svc.Submit(s.ctx, gpsConfirm(t, s.buyer, 12.9718, 77.5948, ""))
	s.Require().NoError(err)
	_, err = s.svc.Submit(s.ctx, identityStep(t, s.buyer))
	s.Require().NoError(err)
	_, err = s.svc.Submit(s.ctx, signature(t, s.seller))
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestCreateTransfer() {
	s.Run("records creation in the audit log", func() {
		t := s.createTransfer(5000)
		s.Equal(models.StatusPending, t.Status)

		entries := s.auditEntries(t)
		s.Require().Len(entries, 1)
		s.Equal(audit.ActionTransferCreate, entries[0].Action)
		s.Require().NotNil(entries[0].ActorID)
		s.Equal(s.seller, *entries[0].ActorID)
	})

	s.Run("rejects invalid invariants as validation errors", func() {
		_, err := s.svc.CreateTransfer(s.ctx, CreateRequest{
			ActorID: s.seller, ToParty: &s.seller,
			Amount: decimal.NewFromInt(10), Currency: "INR", Type: models.TransferSale,
		})
		s.requireCode(err, dErrors.CodeValidation)

		_, err = s.svc.CreateTransfer(s.ctx, CreateRequest{
			ActorID: s.seller, Amount: decimal.NewFromInt(-1), Currency: "INR", Type: models.TransferSale,
		})
		s.requireCode(err, dErrors.CodeValidation)
	})

	s.Run("requires an actor", func() {
		_, err := s.svc.CreateTransfer(s.ctx, CreateRequest{Amount: decimal.NewFromInt(1), Currency: "INR", Type: models.TransferGift})
		s.requireCode(err, dErrors.CodeUnauthorized)
	})
}

// TestEndToEnd walks a below-threshold transfer from creation to completion.
func (s *ServiceSuite) TestEndToEnd() {
	t := s.createTransfer(5000)

	step, err := s.svc.Submit(s.ctx, sellerInit(t, s.seller))
	s.Require().NoError(err)
	s.Equal(models.StepStatusApproved, step.Status)
	s.Equal(1, s.ledgerLen(t))
	s.Equal(models.StatusInVerification, s.status(t))
	verification, err := s.auditLog.ListByRef(s.ctx, step.ID.String())
	s.Require().NoError(err)
	s.Len(verification, 1)

	_, err = s.svc.Submit(s.ctx, gpsConfirm(t, s.buyer, 12.9718, 77.5948, ""))
	s.Require().NoError(err)
	_, err = s.svc.Submit(s.ctx, identityStep(t, s.buyer))
	s.Require().NoError(err)
	s.Equal(models.StatusInVerification, s.status(t))

	_, err = s.svc.Submit(s.ctx, signature(t, s.seller))
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, s.status(t))
	s.Equal(4, s.ledgerLen(t))

	entries := s.auditEntries(t)
	s.Require().Len(entries, 5)
	actions := make([]audit.Action, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	s.Equal([]audit.Action{
		audit.ActionTransferCreate,
		audit.ActionSellerInitSubmit,
		audit.ActionGPSConfirmSubmit,
		audit.ActionIdentitySubmit,
		audit.ActionSignatureSubmit,
	}, actions)

	score, err := s.svc.TrustScore(s.ctx, t.ID, s.buyer)
	s.Require().NoError(err)
	s.Equal(95, score.Score)
	s.Equal(trust.BandHigh, score.Band)
}

// TestIdempotentReplay covers duplicate retries with and without a client step id.
func (s *ServiceSuite) TestIdempotentReplay() {
	s.Run("same payload without step id appends twice and latest wins", func() {
		t := s.createTransfer(5000)
		first, err := s.svc.Submit(s.ctx, sellerInit(t, s.seller))
		s.Require().NoError(err)
		second, err := s.svc.Submit(s.ctx, sellerInit(t, s.seller))
		s.Require().NoError(err)
		s.NotEqual(first.ID, second.ID)
		s.Equal(2, s.ledgerLen(t))

		latest, err := s.svc.LatestSteps(s.ctx, t.ID, s.seller)
		s.Require().NoError(err)
		s.Require().Len(latest, 1)
		s.Equal(second.ID, latest[0].ID)

		entries := s.auditEntries(t)
		s.Require().Len(entries, 3)
		s.Equal(first.ID.String(), entries[1].RefID)
		s.Equal(second.ID.String(), entries[2].RefID)
	})

	s.Run("same step id returns the stored record without writing", func() {
		t := s.createTransfer(5000)
		sub := sellerInit(t, s.seller)
		sub.StepID = id.NewStepID()
		sub.Offline = true

		first, err := s.svc.Submit(s.ctx, sub)
		s.Require().NoError(err)
		auditLen := len(s.auditEntries(t))

		replayed, err := s.svc.Submit(s.ctx, sub)
		s.Require().NoError(err)
		s.Equal(first.ID, replayed.ID)
		s.True(replayed.Offline)
		s.Equal(1, s.ledgerLen(t))
		s.Len(s.auditEntries(t), auditLen)
	})

	s.Run("step id replay after the step completed the transfer", func() {
		t := s.createTransfer(5000)
		for _, sub := range []ledger.Submission{
			sellerInit(t, s.seller),
			gpsConfirm(t, s.buyer, 12.9718, 77.5948, ""),
			identityStep(t, s.buyer),
		} {
			_, err := s.svc.Submit(s.ctx, sub)
			s.Require().NoError(err)
		}
		final := signature(t, s.seller)
		final.StepID = id.NewStepID()
		final.Offline = true
		first, err := s.svc.Submit(s.ctx, final)
		s.Require().NoError(err)
		s.Require().Equal(models.StatusCompleted, s.status(t))
		auditLen := len(s.auditEntries(t))

		replayed, err := s.svc.Submit(s.ctx, final)
		s.Require().NoError(err)
		s.Equal(first.ID, replayed.ID)
		s.Equal(4, s.ledgerLen(t))
		s.Len(s.auditEntries(t), auditLen)
	})

	s.Run("step id reused for another kind conflicts", func() {
		t := s.createTransfer(5000)
		sub := sellerInit(t, s.seller)
		sub.StepID = id.NewStepID()
		_, err := s.svc.Submit(s.ctx, sub)
		s.Require().NoError(err)

		reused := signature(t, s.seller)
		reused.StepID = sub.StepID
		_, err = s.svc.Submit(s.ctx, reused)
		s.requireCode(err, dErrors.CodeConflict)
		s.Equal(1, s.ledgerLen(t))
	})

	s.Run("step id from another transfer conflicts", func() {
		a := s.createTransfer(5000)
		b := s.createTransfer(5000)
		sub := sellerInit(a, s.seller)
		sub.StepID = id.NewStepID()
		_, err := s.svc.Submit(s.ctx, sub)
		s.Require().NoError(err)

		other := sellerInit(b, s.seller)
		other.StepID = sub.StepID
		_, err = s.svc.Submit(s.ctx, other)
		s.requireCode(err, dErrors.CodeConflict)
		s.Equal(0, s.ledgerLen(b))
	})
}

func (s *ServiceSuite) TestRadiusGate() {
	t := s.createTransfer(5000)

	_, err := s.svc.Submit(s.ctx, gpsConfirm(t, s.buyer, 13.0000, 77.6000, ""))
	s.requireCode(err, dErrors.CodeValidation)
	s.Equal("explanation", dErrors.DetailOf(err, "field"))
	s.Equal(0, s.ledgerLen(t))

	step, err := s.svc.Submit(s.ctx, gpsConfirm(t, s.buyer, 13.0000, 77.6000, "met at the market"))
	s.Require().NoError(err)
	s.Equal("met at the market", step.Explanation)

	_, err = s.svc.Submit(s.ctx, gpsConfirm(t, s.buyer, 12.9720, 77.5950, ""))
	s.Require().NoError(err)
}

// TestAdminGate covers the high-value path through platform review.
func (s *ServiceSuite) TestAdminGate() {
	t := s.createTransfer(15000)

	_, err := s.svc.Submit(s.ctx, sellerInit(t, s.seller))
	s.requireCode(err, dErrors.CodePendingAdminReview)
	s.Equal(string(models.StatusAwaitingAdminReview), dErrors.DetailOf(err, "status"))
	s.Equal(models.StatusAwaitingAdminReview, s.status(t))
	s.Equal(0, s.ledgerLen(t))

	entries := s.auditEntries(t)
	s.Require().Len(entries, 2)
	s.Equal(audit.ActionReviewRequired, entries[1].Action)
	s.Nil(entries[1].ActorID)

	_, err = s.svc.Submit(s.ctx, sellerInit(t, s.seller))
	s.requireCode(err, dErrors.CodePendingAdminReview)
	s.Len(s.auditEntries(t), 2)

	_, err = s.svc.Submit(s.ctx, platformReview(t, s.seller, true))
	s.requireCode(err, dErrors.CodeForbidden)

	_, err = s.svc.Submit(s.ctx, platformReview(t, s.moderator, true))
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, s.status(t))

	s.completeTransfer(t)
	s.Equal(models.StatusCompleted, s.status(t))
}

func (s *ServiceSuite) TestReviewerMayBypassGate() {
	t := s.createTransfer(15000)
	_, err := s.svc.Submit(s.ctx, sellerInit(t, s.moderator))
	s.Require().NoError(err)
	s.Equal(models.StatusInVerification, s.status(t))
}

func (s *ServiceSuite) TestRejectedReviewRejectsTransfer() {
	t := s.createTransfer(5000)
	step, err := s.svc.Submit(s.ctx, platformReview(t, s.moderator, false))
	s.Require().NoError(err)
	s.Equal(models.StepStatusRejected, step.Status)
	s.Equal(models.StatusRejected, s.status(t))

	entries := s.auditEntries(t)
	s.Equal(audit.ActionPlatformReject, entries[len(entries)-1].Action)
}

// TestTerminalImmutability verifies nothing is written once a transfer is terminal.
func (s *ServiceSuite) TestTerminalImmutability() {
	s.Run("completed", func() {
		t := s.createTransfer(5000)
		s.completeTransfer(t)
		ledgerLen, auditLen := s.ledgerLen(t), len(s.auditEntries(t))

		_, err := s.svc.Submit(s.ctx, gpsConfirm(t, s.buyer, 12.9716, 77.5946, ""))
		s.requireCode(err, dErrors.CodeTerminalState)
		s.Equal(string(models.StatusCompleted), dErrors.DetailOf(err, "status"))
		s.Equal(ledgerLen, s.ledgerLen(t))
		s.Len(s.auditEntries(t), auditLen)
	})

	s.Run("cancelled", func() {
		t := s.createTransfer(5000)
		_, err := s.svc.Cancel(s.ctx, t.ID, s.seller, "changed my mind")
		s.Require().NoError(err)

		_, err = s.svc.Submit(s.ctx, sellerInit(t, s.seller))
		s.requireCode(err, dErrors.CodeTerminalState)
		_, err = s.svc.RaiseDispute(s.ctx, t.ID, s.buyer, "late")
		s.requireCode(err, dErrors.CodeTerminalState)
		_, err = s.svc.Cancel(s.ctx, t.ID, s.moderator, "again")
		s.requireCode(err, dErrors.CodeTerminalState)
		s.Equal(0, s.ledgerLen(t))
	})
}

func (s *ServiceSuite) TestAuthorization() {
	s.Run("stranger is denied and the denial is recorded", func() {
		t := s.createTransfer(5000)
		_, err := s.svc.Submit(s.ctx, sellerInit(t, s.stranger))
		s.requireCode(err, dErrors.CodeForbidden)
		s.Equal(0, s.ledgerLen(t))

		denied := s.denied.DequeueBatch(10)
		s.Require().Len(denied, 1)
		s.Equal(audit.ActionAccessDenied, denied[0].Action)
		s.Equal(audit.CategorySecurity, denied[0].Action.Category())
		s.Len(s.auditEntries(t), 1)
	})

	s.Run("open transfer accepts any actor as receiving party", func() {
		t, err := s.svc.CreateTransfer(s.ctx, CreateRequest{
			ActorID: s.seller, Amount: decimal.NewFromInt(100), Currency: "INR",
			Type: models.TransferGift, Baseline: baseline,
		})
		s.Require().NoError(err)
		_, err = s.svc.Submit(s.ctx, gpsConfirm(t, s.stranger, 12.9716, 77.5946, ""))
		s.Require().NoError(err)
	})

	s.Run("reads require a party or reviewer", func() {
		t := s.createTransfer(5000)
		_, err := s.svc.GetTransfer(s.ctx, t.ID, s.stranger)
		s.requireCode(err, dErrors.CodeForbidden)
		_, err = s.svc.ListAudit(s.ctx, t.ID, s.stranger)
		s.requireCode(err, dErrors.CodeForbidden)

		got, err := s.svc.GetTransfer(s.ctx, t.ID, s.moderator)
		s.Require().NoError(err)
		s.Equal(t.ID, got.ID)
	})

	s.Run("unknown transfer is not found", func() {
		_, err := s.svc.Submit(s.ctx, sellerInit(&models.Transfer{ID: id.NewTransferID()}, s.seller))
		s.requireCode(err, dErrors.CodeNotFound)
	})
}

func (s *ServiceSuite) TestGetTransfersFiltersByAccess() {
	mine := s.createTransfer(100)
	other, err := s.svc.CreateTransfer(s.ctx, CreateRequest{
		ActorID: s.moderator, ToParty: &s.seller, Amount: decimal.NewFromInt(100), Currency: "INR", Type: models.TransferSale,
	})
	s.Require().NoError(err)

	got, err := s.svc.GetTransfers(s.ctx, []id.TransferID{mine.ID, other.ID, id.NewTransferID()}, s.buyer)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(mine.ID, got[0].ID)

	got, err = s.svc.GetTransfers(s.ctx, []id.TransferID{mine.ID, other.ID}, s.moderator)
	s.Require().NoError(err)
	s.Len(got, 2)
}

// TestSingleOpenDispute covers raise, refusal while open, and both resolutions.
func (s *ServiceSuite) TestSingleOpenDispute() {
	t := s.createTransfer(5000)
	_, err := s.svc.Submit(s.ctx, sellerInit(t, s.seller))
	s.Require().NoError(err)

	_, err = s.svc.RaiseDispute(s.ctx, t.ID, s.buyer, "  ")
	s.requireCode(err, dErrors.CodeValidation)

	first, err := s.svc.RaiseDispute(s.ctx, t.ID, s.buyer, "bird does not match photos")
	s.Require().NoError(err)
	s.Equal(models.StatusInVerification, first.PriorStatus)
	s.Equal(models.StatusDisputed, s.status(t))

	_, err = s.svc.RaiseDispute(s.ctx, t.ID, s.seller, "counter claim")
	s.requireCode(err, dErrors.CodeDisputeOpen)

	_, err = s.svc.Submit(s.ctx, signature(t, s.seller))
	s.requireCode(err, dErrors.CodeTransferDisputed)
	_, err = s.svc.Cancel(s.ctx, t.ID, s.moderator, "stop")
	s.requireCode(err, dErrors.CodeTransferDisputed)

	_, err = s.svc.ResolveDispute(s.ctx, first.ID, s.buyer, "self resolve", false)
	s.requireCode(err, dErrors.CodeForbidden)

	closed, err := s.svc.ResolveDispute(s.ctx, first.ID, s.moderator, "photos match", false)
	s.Require().NoError(err)
	s.Equal(models.DisputeRejected, closed.Status)
	s.Equal(models.StatusInVerification, s.status(t))

	_, err = s.svc.ResolveDispute(s.ctx, first.ID, s.moderator, "again", true)
	s.requireCode(err, dErrors.CodeConflict)

	second, err := s.svc.RaiseDispute(s.ctx, t.ID, s.seller, "buyer never showed")
	s.Require().NoError(err)
	upheld, err := s.svc.ResolveDispute(s.ctx, second.ID, s.moderator, "confirmed", true)
	s.Require().NoError(err)
	s.Equal(models.DisputeResolved, upheld.Status)
	s.Equal(models.StatusCancelled, s.status(t))

	disputes, err := s.svc.ListDisputes(s.ctx, t.ID, s.buyer)
	s.Require().NoError(err)
	s.Len(disputes, 2)

	var actions []audit.Action
	for _, e := range s.auditEntries(t) {
		if e.Type == audit.TypeDispute {
			actions = append(actions, e.Action)
		}
	}
	s.Equal([]audit.Action{
		audit.ActionDisputeRaise, audit.ActionDisputeReject,
		audit.ActionDisputeRaise, audit.ActionDisputeResolve,
	}, actions)
}

func (s *ServiceSuite) TestDisputeResumesAwaitingReview() {
	t := s.createTransfer(15000)
	_, err := s.svc.Submit(s.ctx, sellerInit(t, s.seller))
	s.requireCode(err, dErrors.CodePendingAdminReview)

	d, err := s.svc.RaiseDispute(s.ctx, t.ID, s.seller, "review taking too long")
	s.Require().NoError(err)
	_, err = s.svc.ResolveDispute(s.ctx, d.ID, s.moderator, "", false)
	s.Require().NoError(err)
	s.Equal(models.StatusAwaitingAdminReview, s.status(t))
}

func (s *ServiceSuite) TestCancel() {
	s.Run("parties may not cancel under review", func() {
		t := s.createTransfer(15000)
		_, err := s.svc.Submit(s.ctx, sellerInit(t, s.seller))
		s.requireCode(err, dErrors.CodePendingAdminReview)

		_, err = s.svc.Cancel(s.ctx, t.ID, s.buyer, "too slow")
		s.requireCode(err, dErrors.CodeForbidden)

		cancelled, err := s.svc.Cancel(s.ctx, t.ID, s.moderator, "fraud suspected")
		s.Require().NoError(err)
		s.Equal(models.StatusCancelled, cancelled.Status)
	})

	s.Run("disputed transfer is cancelled through its dispute", func() {
		t := s.createTransfer(100)
		d, err := s.svc.RaiseDispute(s.ctx, t.ID, s.buyer, "bird does not match photos")
		s.Require().NoError(err)

		_, err = s.svc.Cancel(s.ctx, t.ID, s.moderator, "fraud suspected")
		s.requireCode(err, dErrors.CodeTransferDisputed)
		s.Equal(models.StatusDisputed, s.status(t))

		_, err = s.svc.ResolveDispute(s.ctx, d.ID, s.moderator, "fraud suspected", true)
		s.Require().NoError(err)
		s.Equal(models.StatusCancelled, s.status(t))
	})

	s.Run("stranger may not cancel", func() {
		t := s.createTransfer(100)
		_, err := s.svc.Cancel(s.ctx, t.ID, s.stranger, "")
		s.requireCode(err, dErrors.CodeForbidden)
		s.Equal(models.StatusPending, s.status(t))
	})
}

func (s *ServiceSuite) TestTrustScoreCountsOpenDisputes() {
	t := s.createTransfer(5000)
	_, err := s.svc.RaiseDispute(s.ctx, t.ID, s.buyer, "no show")
	s.Require().NoError(err)

	score, err := s.svc.TrustScore(s.ctx, t.ID, s.moderator)
	s.Require().NoError(err)
	s.Equal(35, score.Score)
	s.Equal(trust.FactorDisputes, score.Breakdown[len(score.Breakdown)-1].Name)
}

// TestConcurrentFinalSteps races the last two required steps; the transfer
// must complete whichever order they land in.
func (s *ServiceSuite) TestConcurrentFinalSteps() {
	for i := 0; i < 20; i++ {
		t := s.createTransfer(5000)
		_, err := s.svc.Submit(s.ctx, sellerInit(t, s.seller))
		s.Require().NoError(err)
		_, err = s.svc.Submit(s.ctx, gpsConfirm(t, s.buyer, 12.9716, 77.5946, ""))
		s.Require().NoError(err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = s.svc.Submit(s.ctx, identityStep(t, s.buyer))
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = s.svc.Submit(s.ctx, signature(t, s.seller))
		}()
		wg.Wait()

		s.Require().NoError(errs[0])
		s.Require().NoError(errs[1])
		s.Equal(models.StatusCompleted, s.status(t))
		s.Equal(4, s.ledgerLen(t))
		s.Len(s.auditEntries(t), 5)
	}
}
