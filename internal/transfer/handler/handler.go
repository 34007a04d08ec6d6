// Package handler exposes the transfer lifecycle over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"handover/internal/transfer/ledger"
	"handover/internal/transfer/models"
	"handover/internal/transfer/service"
	"handover/internal/transfer/trust"
	id "handover/pkg/domain"
	dErrors "handover/pkg/domain-errors"
	audit "handover/pkg/platform/audit"
	"handover/pkg/platform/httputil"
	request "handover/pkg/platform/middleware/request"
	"handover/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service is the orchestrator surface the handler needs.
type Service interface {
	CreateTransfer(ctx context.Context, req service.CreateRequest) (*models.Transfer, error)
	GetTransfer(ctx context.Context, transferID id.TransferID, actorID id.UserID) (*models.Transfer, error)
	GetTransfers(ctx context.Context, transferIDs []id.TransferID, actorID id.UserID) ([]*models.Transfer, error)
	Submit(ctx context.Context, sub ledger.Submission) (*models.VerificationStep, error)
	ListSteps(ctx context.Context, transferID id.TransferID, actorID id.UserID) ([]*models.VerificationStep, error)
	LatestSteps(ctx context.Context, transferID id.TransferID, actorID id.UserID) ([]*models.VerificationStep, error)
	Cancel(ctx context.Context, transferID id.TransferID, actorID id.UserID, reason string) (*models.Transfer, error)
	RaiseDispute(ctx context.Context, transferID id.TransferID, actorID id.UserID, reason string) (*models.Dispute, error)
	ResolveDispute(ctx context.Context, disputeID id.DisputeID, actorID id.UserID, notes string, upheld bool) (*models.Dispute, error)
	ListDisputes(ctx context.Context, transferID id.TransferID, actorID id.UserID) ([]*models.Dispute, error)
	ListAudit(ctx context.Context, transferID id.TransferID, actorID id.UserID) ([]audit.Entry, error)
	TrustScore(ctx context.Context, transferID id.TransferID, actorID id.UserID) (trust.Result, error)
}

type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the transfer routes. Authentication middleware is applied
// by the caller.
func (h *Handler) Register(r chi.Router) {
	r.Route("/transfers", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Post("/batch", h.handleBatchGet)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Post("/steps", h.handleSubmit)
			r.Get("/steps", h.handleListSteps)
			r.Post("/cancel", h.handleCancel)
			r.Post("/disputes", h.handleRaiseDispute)
			r.Get("/disputes", h.handleListDisputes)
			r.Get("/audit", h.handleListAudit)
			r.Get("/trust", h.handleTrust)
		})
	})
	r.Post("/disputes/{id}/resolve", h.handleResolveDispute)
}

// actor returns the authenticated actor, writing 401 when absent.
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	actorID := requestcontext.ActorID(r.Context())
	if actorID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return actorID, true
}

func (h *Handler) transferID(w http.ResponseWriter, r *http.Request) (id.TransferID, bool) {
	transferID, err := id.ParseTransferID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.TransferID{}, false
	}
	return transferID, true
}

// fail writes err, logging anything the client cannot fix at ERROR.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	code := dErrors.CodeOf(err)
	if code == "" || code == dErrors.CodeInternal || code == dErrors.CodeInvariantViolation {
		h.logger.ErrorContext(ctx, msg,
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
	} else {
		h.logger.InfoContext(ctx, msg,
			"request_id", request.GetRequestID(ctx),
			"code", string(code),
		)
	}
	httputil.WriteError(w, err)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateTransferRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	create, err := req.ToCreate(actorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	t, err := h.svc.CreateTransfer(ctx, create)
	if err != nil {
		h.fail(ctx, w, "create transfer failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toTransferResponse(t))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	transferID, ok := h.transferID(w, r)
	if !ok {
		return
	}
	t, err := h.svc.GetTransfer(ctx, transferID, actorID)
	if err != nil {
		h.fail(ctx, w, "get transfer failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTransferResponse(t))
}

func (h *Handler) handleBatchGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[BatchGetRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	transferIDs, err := req.TransferIDs()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	transfers, err := h.svc.GetTransfers(ctx, transferIDs, actorID)
	if err != nil {
		h.fail(ctx, w, "batch get transfers failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"transfers": mapSlice(transfers, toTransferResponse),
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	transferID, ok := h.transferID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SubmitStepRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	sub, err := req.ToSubmission(transferID, actorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	step, err := h.svc.Submit(ctx, sub)
	if err != nil {
		h.fail(ctx, w, "submit step failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toStepResponse(step))
}

// handleListSteps returns the full ledger, or the latest record per kind
// with ?view=latest.
func (h *Handler) handleListSteps(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	transferID, ok := h.transferID(w, r)
	if !ok {
		return
	}
	list := h.svc.ListSteps
	if r.URL.Query().Get("view") == "latest" {
		list = h.svc.LatestSteps
	}
	steps, err := list(ctx, transferID, actorID)
	if err != nil {
		h.fail(ctx, w, "list steps failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"steps": mapSlice(steps, toStepResponse),
	})
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	transferID, ok := h.transferID(w, r)
	if !ok {
		return
	}
	// The reason is optional; an empty body cancels without one.
	var reason string
	if r.ContentLength != 0 {
		req, ok := httputil.DecodeAndPrepare[CancelRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
		if !ok {
			return
		}
		reason = req.Reason
	}
	t, err := h.svc.Cancel(ctx, transferID, actorID, reason)
	if err != nil {
		h.fail(ctx, w, "cancel transfer failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTransferResponse(t))
}

func (h *Handler) handleRaiseDispute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	transferID, ok := h.transferID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RaiseDisputeRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	d, err := h.svc.RaiseDispute(ctx, transferID, actorID, req.Reason)
	if err != nil {
		h.fail(ctx, w, "raise dispute failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toDisputeResponse(d))
}

func (h *Handler) handleListDisputes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	transferID, ok := h.transferID(w, r)
	if !ok {
		return
	}
	disputes, err := h.svc.ListDisputes(ctx, transferID, actorID)
	if err != nil {
		h.fail(ctx, w, "list disputes failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"disputes": mapSlice(disputes, toDisputeResponse),
	})
}

func (h *Handler) handleResolveDispute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	disputeID, err := id.ParseDisputeID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ResolveDisputeRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	d, err := h.svc.ResolveDispute(ctx, disputeID, actorID, req.Notes, *req.Upheld)
	if err != nil {
		h.fail(ctx, w, "resolve dispute failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDisputeResponse(d))
}

func (h *Handler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	transferID, ok := h.transferID(w, r)
	if !ok {
		return
	}
	entries, err := h.svc.ListAudit(ctx, transferID, actorID)
	if err != nil {
		h.fail(ctx, w, "list audit failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"entries": mapSlice(entries, toAuditResponse),
	})
}

func (h *Handler) handleTrust(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID, ok := h.actor(w, r)
	if !ok {
		return
	}
	transferID, ok := h.transferID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.TrustScore(ctx, transferID, actorID)
	if err != nil {
		h.fail(ctx, w, "trust score failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TrustResponse{
		TransferID: transferID.String(),
		Score:      res.Score,
		Band:       string(res.Band),
		Breakdown:  res.Breakdown,
	})
}
