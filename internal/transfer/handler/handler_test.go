package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"handover/internal/transfer/handler/mocks"
	"handover/internal/transfer/ledger"
	"handover/internal/transfer/models"
	"handover/internal/transfer/service"
	"handover/internal/transfer/trust"
	id "handover/pkg/domain"
	dErrors "handover/pkg/domain-errors"
	"handover/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	svc    *mocks.MockService
	router chi.Router
	actor  id.UserID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.svc = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.svc, logger).Register(s.router)
	s.actor = id.UserID(uuid.New())
}

func (s *HandlerSuite) do(req *http.Request) int {
	return testutil.DoRequest(s.router, testutil.WithActorID(req, s.actor.String())).Code
}

func (s *HandlerSuite) transfer(status models.Status) *models.Transfer {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &models.Transfer{
		ID:        id.NewTransferID(),
		FromParty: s.actor,
		Amount:    decimal.RequireFromString("120.5"),
		Currency:  "USD",
		Type:      models.TransferSale,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

func (s *HandlerSuite) TestCreateTransfer() {
	s.Run("returns created transfer", func() {
		s.svc.EXPECT().CreateTransfer(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req service.CreateRequest) (*models.Transfer, error) {
				s.Equal(s.actor, req.ActorID)
				s.Equal("USD", req.Currency)
				s.Require().NotNil(req.Baseline)
				s.InDelta(14.6, req.Baseline.Lat, 1e-9)
				return s.transfer(models.StatusPending), nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/transfers", map[string]any{
			"amount":   "120.5",
			"currency": "usd",
			"type":     "SALE",
			"baseline": map[string]any{"lat": 14.6, "lng": 121.0},
		})
		rr := testutil.DoRequest(s.router, testutil.WithActorID(req, s.actor.String()))

		s.Equal(http.StatusCreated, rr.Code)
		resp := testutil.UnmarshalResponse[TransferResponse](s.T(), rr)
		s.Equal("PENDING", resp.Status)
		s.Equal("120.50", resp.Amount)
		s.Nil(resp.ToPartyID)
	})

	s.Run("requires authentication", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/transfers", map[string]any{
			"amount": "1", "currency": "USD", "type": "SALE",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertError(s.T(), rr, http.StatusUnauthorized, dErrors.CodeUnauthorized)
	})

	s.Run("rejects negative amount before the service", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/transfers", map[string]any{
			"amount": "-1", "currency": "USD", "type": "SALE",
		})
		s.Equal(http.StatusBadRequest, s.do(req))
	})

	s.Run("rejects unknown type", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/transfers", map[string]any{
			"amount": "1", "currency": "USD", "type": "BARTER",
		})
		s.Equal(http.StatusBadRequest, s.do(req))
	})
}

func (s *HandlerSuite) TestGetTransfer() {
	s.Run("invalid id", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/transfers/not-a-uuid")
		s.Equal(http.StatusBadRequest, s.do(req))
	})

	s.Run("not found", func() {
		s.svc.EXPECT().GetTransfer(gomock.Any(), gomock.Any(), s.actor).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "transfer not found"))
		req := testutil.NewRequest(s.T(), http.MethodGet, "/transfers/"+id.NewTransferID().String())
		s.Equal(http.StatusNotFound, s.do(req))
	})

	s.Run("internal errors are not leaked", func() {
		s.svc.EXPECT().GetTransfer(gomock.Any(), gomock.Any(), s.actor).
			Return(nil, errors.New("connection reset by peer"))
		req := testutil.NewRequest(s.T(), http.MethodGet, "/transfers/"+id.NewTransferID().String())
		rr := testutil.DoRequest(s.router, testutil.WithActorID(req, s.actor.String()))
		body := testutil.AssertError(s.T(), rr, http.StatusInternalServerError, dErrors.CodeInternal)
		s.Empty(body["error_description"])
		s.NotContains(rr.Body.String(), "connection reset")
	})
}

func (s *HandlerSuite) TestBatchGet() {
	t1, t2 := s.transfer(models.StatusPending), s.transfer(models.StatusCompleted)
	s.svc.EXPECT().GetTransfers(gomock.Any(), []id.TransferID{t1.ID, t2.ID}, s.actor).
		Return([]*models.Transfer{t1, t2}, nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/transfers/batch", map[string]any{
		"ids": []string{t1.ID.String(), t2.ID.String()},
	})
	rr := testutil.DoRequest(s.router, testutil.WithActorID(req, s.actor.String()))

	s.Equal(http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[struct {
		Transfers []TransferResponse `json:"transfers"`
	}](s.T(), rr)
	s.Require().Len(resp.Transfers, 2)
	s.Equal("COMPLETED", resp.Transfers[1].Status)
}

func (s *HandlerSuite) TestSubmitStep() {
	transferID := id.NewTransferID()
	path := "/transfers/" + transferID.String() + "/steps"

	s.Run("maps gps payload", func() {
		s.svc.EXPECT().Submit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, sub ledger.Submission) (*models.VerificationStep, error) {
				s.Equal(transferID, sub.TransferID)
				s.Equal(models.StepGPSConfirm, sub.Kind)
				gps, ok := sub.Payload.(ledger.GPSConfirm)
				s.Require().True(ok)
				s.Require().NotNil(gps.Lat)
				s.InDelta(14.6, *gps.Lat, 1e-9)
				return &models.VerificationStep{
					ID:         id.NewStepID(),
					TransferID: transferID,
					Kind:       models.StepGPSConfirm,
					Status:     models.StepStatusApproved,
				}, nil
			})
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, path, map[string]any{
			"step": "GPS_CONFIRM", "lat": 14.6, "lng": 121.0,
		})
		s.Equal(http.StatusCreated, s.do(req))
	})

	s.Run("pending admin review reports current status", func() {
		s.svc.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(nil,
			dErrors.New(dErrors.CodePendingAdminReview, "transfer requires admin review").
				WithDetail("status", string(models.StatusAwaitingAdminReview)))
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, path, map[string]any{"step": "SIGNATURE", "signature_ref": "sig://1"})
		rr := testutil.DoRequest(s.router, testutil.WithActorID(req, s.actor.String()))

		body := testutil.AssertError(s.T(), rr, http.StatusLocked, dErrors.CodePendingAdminReview)
		s.Equal("AWAITING_ADMIN_REVIEW", body["status"])
	})

	s.Run("platform review needs a decision", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, path, map[string]any{"step": "PLATFORM_REVIEW"})
		s.Equal(http.StatusBadRequest, s.do(req))
	})

	s.Run("unknown fields are rejected", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, path, map[string]any{"step": "SIGNATURE", "bogus": true})
		s.Equal(http.StatusBadRequest, s.do(req))
	})

	s.Run("terminal transfer conflicts", func() {
		s.svc.EXPECT().Submit(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeTerminalState, "transfer is completed"))
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, path, map[string]any{"step": "SIGNATURE", "signature_ref": "sig://1"})
		s.Equal(http.StatusConflict, s.do(req))
	})
}

func (s *HandlerSuite) TestListSteps() {
	transferID := id.NewTransferID()

	s.Run("full ledger", func() {
		s.svc.EXPECT().ListSteps(gomock.Any(), transferID, s.actor).Return(nil, nil)
		req := testutil.NewRequest(s.T(), http.MethodGet, "/transfers/"+transferID.String()+"/steps")
		s.Equal(http.StatusOK, s.do(req))
	})

	s.Run("latest view", func() {
		s.svc.EXPECT().LatestSteps(gomock.Any(), transferID, s.actor).Return(nil, nil)
		req := testutil.NewRequest(s.T(), http.MethodGet, "/transfers/"+transferID.String()+"/steps?view=latest")
		s.Equal(http.StatusOK, s.do(req))
	})
}

func (s *HandlerSuite) TestCancel() {
	t := s.transfer(models.StatusCancelled)

	s.Run("without body", func() {
		s.svc.EXPECT().Cancel(gomock.Any(), t.ID, s.actor, "").Return(t, nil)
		req := testutil.NewRequest(s.T(), http.MethodPost, "/transfers/"+t.ID.String()+"/cancel")
		s.Equal(http.StatusOK, s.do(req))
	})

	s.Run("with reason", func() {
		s.svc.EXPECT().Cancel(gomock.Any(), t.ID, s.actor, "buyer backed out").Return(t, nil)
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/transfers/"+t.ID.String()+"/cancel",
			map[string]any{"reason": "buyer backed out"})
		s.Equal(http.StatusOK, s.do(req))
	})
}

func (s *HandlerSuite) TestDisputes() {
	transferID := id.NewTransferID()
	dispute := &models.Dispute{
		ID:          id.NewDisputeID(),
		TransferID:  transferID,
		RaisedBy:    s.actor,
		Reason:      "bird arrived injured",
		Status:      models.DisputeOpen,
		PriorStatus: models.StatusInVerification,
		CreatedAt:   time.Now(),
	}

	s.Run("raise", func() {
		s.svc.EXPECT().RaiseDispute(gomock.Any(), transferID, s.actor, "bird arrived injured").Return(dispute, nil)
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/transfers/"+transferID.String()+"/disputes",
			map[string]any{"reason": "bird arrived injured"})
		rr := testutil.DoRequest(s.router, testutil.WithActorID(req, s.actor.String()))
		s.Equal(http.StatusCreated, rr.Code)
		resp := testutil.UnmarshalResponse[DisputeResponse](s.T(), rr)
		s.Equal("OPEN", resp.Status)
	})

	s.Run("blank reason", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/transfers/"+transferID.String()+"/disputes",
			map[string]any{"reason": "   "})
		s.Equal(http.StatusBadRequest, s.do(req))
	})

	s.Run("second open dispute", func() {
		s.svc.EXPECT().RaiseDispute(gomock.Any(), transferID, s.actor, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeDisputeOpen, "transfer already has an open dispute"))
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/transfers/"+transferID.String()+"/disputes",
			map[string]any{"reason": "again"})
		s.Equal(http.StatusConflict, s.do(req))
	})

	s.Run("resolve requires decision", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/disputes/"+dispute.ID.String()+"/resolve",
			map[string]any{"notes": "checked"})
		s.Equal(http.StatusBadRequest, s.do(req))
	})

	s.Run("resolve", func() {
		s.svc.EXPECT().ResolveDispute(gomock.Any(), dispute.ID, s.actor, "vet report attached", false).
			Return(dispute, nil)
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/disputes/"+dispute.ID.String()+"/resolve",
			map[string]any{"upheld": false, "notes": "vet report attached"})
		s.Equal(http.StatusOK, s.do(req))
	})

	s.Run("non reviewer cannot resolve", func() {
		s.svc.EXPECT().ResolveDispute(gomock.Any(), dispute.ID, s.actor, gomock.Any(), true).
			Return(nil, dErrors.New(dErrors.CodeForbidden, "reviewer role required"))
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/disputes/"+dispute.ID.String()+"/resolve",
			map[string]any{"upheld": true})
		s.Equal(http.StatusForbidden, s.do(req))
	})
}

func (s *HandlerSuite) TestTrust() {
	transferID := id.NewTransferID()
	s.svc.EXPECT().TrustScore(gomock.Any(), transferID, s.actor).Return(trust.Result{
		Score: 95,
		Band:  trust.BandHigh,
		Breakdown: []trust.Factor{
			{Name: "gps", Delta: 20},
		},
	}, nil)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/transfers/"+transferID.String()+"/trust")
	rr := testutil.DoRequest(s.router, testutil.WithActorID(req, s.actor.String()))

	require.Equal(s.T(), http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[TrustResponse](s.T(), rr)
	assert.Equal(s.T(), 95, resp.Score)
	assert.Equal(s.T(), "HIGH", resp.Band)
	assert.Equal(s.T(), transferID.String(), resp.TransferID)
}
