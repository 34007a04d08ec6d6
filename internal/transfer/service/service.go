package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"handover/internal/geo"
	"handover/internal/identity"
	transfermetrics "handover/internal/transfer/metrics"
	"handover/internal/transfer/models"
	"handover/internal/transfer/review"
	id "handover/pkg/domain"
	dErrors "handover/pkg/domain-errors"
	audit "handover/pkg/platform/audit"
	"handover/pkg/platform/sentinel"
	txcontext "handover/pkg/platform/tx"
	"handover/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

type TransferStore interface {
	Create(ctx context.Context, t *models.Transfer) error
	FindByID(ctx context.Context, transferID id.TransferID) (*models.Transfer, error)
	// UpdateStatus is a compare-and-swap on Version; a stale version yields sentinel.ErrConflict.
	UpdateStatus(ctx context.Context, transferID id.TransferID, expectedVersion int64, next models.Status, now time.Time) (*models.Transfer, error)
	// ListByIDs skips unknown ids.
	ListByIDs(ctx context.Context, transferIDs []id.TransferID) ([]*models.Transfer, error)
}

type StepStore interface {
	// Append inserts a step; an existing step id yields sentinel.ErrAlreadyExists.
	Append(ctx context.Context, step *models.VerificationStep) error
	FindByID(ctx context.Context, stepID id.StepID) (*models.VerificationStep, error)
	ListByTransfer(ctx context.Context, transferID id.TransferID) ([]*models.VerificationStep, error)
}

type DisputeStore interface {
	// Create yields sentinel.ErrConflict when the transfer already has an open dispute.
	Create(ctx context.Context, d *models.Dispute) error
	FindByID(ctx context.Context, disputeID id.DisputeID) (*models.Dispute, error)
	ListByTransfer(ctx context.Context, transferID id.TransferID) ([]*models.Dispute, error)
	// Close records a resolution; a dispute that is no longer open yields sentinel.ErrConflict.
	Close(ctx context.Context, d *models.Dispute) error
}

// AuditPublisher persists entries inside the caller's transaction.
type AuditPublisher interface {
	Emit(ctx context.Context, entry audit.Entry) error
}

type AuditReader interface {
	ListByTransfer(ctx context.Context, transferID id.TransferID) ([]audit.Entry, error)
}

// DeniedPublisher records refused actions without failing the caller.
type DeniedPublisher interface {
	Emit(ctx context.Context, entry audit.Entry)
}

// StreamPublisher fans committed entries out after commit.
type StreamPublisher interface {
	Publish(ctx context.Context, entries ...audit.Entry)
}

// TxRunner runs fn in one transaction. Stores find the transaction in txCtx.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

const (
	DefaultGPSRadiusMeters = 100.0
	maxCommitAttempts      = 3
)

var tracer = otel.Tracer("handover/transfer")

// errRetry signals a lost compare-and-swap inside a commit attempt.
var errRetry = errors.New("status changed concurrently")

// Service is the transfer lifecycle orchestrator and the only writer of
// Transfer.Status.
type Service struct {
	transfers TransferStore
	steps     StepStore
	disputes  DisputeStore
	roles     identity.Provider

	tx      TxRunner
	audit   AuditPublisher
	reader  AuditReader
	denied  DeniedPublisher
	stream  StreamPublisher
	gate    review.Gate
	radius  float64
	logger  *slog.Logger
	metrics *transfermetrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *transfermetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTx(tx TxRunner) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// WithAudit wires the in-transaction writer and the reader used by ListAudit.
func WithAudit(publisher AuditPublisher, reader AuditReader) Option {
	return func(s *Service) {
		s.audit = publisher
		s.reader = reader
	}
}

func WithDeniedPublisher(p DeniedPublisher) Option {
	return func(s *Service) {
		s.denied = p
	}
}

func WithStreamPublisher(p StreamPublisher) Option {
	return func(s *Service) {
		s.stream = p
	}
}

func WithReviewThreshold(threshold decimal.Decimal) Option {
	return func(s *Service) {
		s.gate = review.NewGate(threshold)
	}
}

func WithGPSRadius(meters float64) Option {
	return func(s *Service) {
		if meters > 0 {
			s.radius = meters
		}
	}
}

func New(transfers TransferStore, steps StepStore, disputes DisputeStore, roles identity.Provider, opts ...Option) *Service {
	s := &Service{
		transfers: transfers,
		steps:     steps,
		disputes:  disputes,
		roles:     roles,
		tx:        passthroughTx{},
		gate:      review.NewGate(review.DefaultThreshold),
		radius:    DefaultGPSRadiusMeters,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// CreateRequest describes a new transfer. ActorID becomes the sending party.
type CreateRequest struct {
	ActorID   id.UserID
	ToParty   *id.UserID
	ProductID string
	OrderID   string
	Amount    decimal.Decimal
	Currency  string
	Type      models.TransferType
	Baseline  *geo.Point
	Notes     string
	Dirty     bool
}

func (s *Service) CreateTransfer(ctx context.Context, req CreateRequest) (*models.Transfer, error) {
	ctx, span := s.startSpan(ctx, "transfer.Create", attribute.String("actor_id", req.ActorID.String()))
	defer span.End()

	if req.ActorID.IsNil() {
		return nil, endSpan(span, dErrors.New(dErrors.CodeUnauthorized, "actor required"))
	}
	now := requestcontext.Now(ctx)
	t, err := models.NewTransfer(id.NewTransferID(), req.ActorID, req.ToParty, req.Amount, req.Currency, req.Type, req.Baseline, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, endSpan(span, dErrors.Wrap(err, dErrors.CodeValidation, "invalid transfer"))
		}
		return nil, endSpan(span, err)
	}
	t.ProductID = strings.TrimSpace(req.ProductID)
	t.OrderID = strings.TrimSpace(req.OrderID)
	t.Notes = strings.TrimSpace(req.Notes)
	t.Dirty = req.Dirty

	entry, err := audit.NewEntry(audit.TypeTransfer, t.ID, t.ID.String(), audit.ActionTransferCreate, &req.ActorID,
		map[string]any{
			"amount":   t.Amount.String(),
			"currency": t.Currency,
			"type":     t.Type,
			"open":     t.IsOpen(),
			"gated":    s.gate.RequiresAdminReview(t),
		}, now)
	if err != nil {
		return nil, endSpan(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build audit entry"))
	}

	var stored bool
	err = s.tx.RunInTx(txcontext.WithShardKey(ctx, t.ID.String()), func(txCtx context.Context) error {
		if err := s.transfers.Create(txCtx, t); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create transfer")
		}
		stored = s.emit(txCtx, entry)
		return nil
	})
	if err != nil {
		return nil, endSpan(span, err)
	}
	if stored {
		s.publish(ctx, entry)
	}
	s.logger.InfoContext(ctx, "transfer created",
		"transfer_id", t.ID.String(),
		"actor_id", req.ActorID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return t, nil
}

// GetTransfer returns the transfer when actor is a party or a reviewer.
func (s *Service) GetTransfer(ctx context.Context, transferID id.TransferID, actorID id.UserID) (*models.Transfer, error) {
	ctx, span := s.startSpan(ctx, "transfer.Get", attribute.String("transfer_id", transferID.String()))
	defer span.End()

	t, _, err := s.loadForRead(ctx, transferID, actorID, "read_transfer")
	return t, endSpan(span, err)
}

// maxBatch caps GetTransfers so one sync call cannot scan the table.
const maxBatch = 100

// GetTransfers returns the transfers among transferIDs that actor may read.
// Devices use it after reconnecting to refresh every transfer they hold.
func (s *Service) GetTransfers(ctx context.Context, transferIDs []id.TransferID, actorID id.UserID) ([]*models.Transfer, error) {
	ctx, span := s.startSpan(ctx, "transfer.GetTransfers", attribute.Int("count", len(transferIDs)))
	defer span.End()

	if actorID.IsNil() {
		return nil, endSpan(span, dErrors.New(dErrors.CodeUnauthorized, "actor required"))
	}
	if len(transferIDs) > maxBatch {
		return nil, endSpan(span, dErrors.New(dErrors.CodeValidation, "too many transfer ids").WithDetail("field", "ids"))
	}
	role, err := s.roleOf(ctx, actorID)
	if err != nil {
		return nil, endSpan(span, err)
	}
	transfers, err := s.transfers.ListByIDs(ctx, transferIDs)
	if err != nil {
		return nil, endSpan(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list transfers"))
	}
	out := make([]*models.Transfer, 0, len(transfers))
	for _, t := range transfers {
		if role.IsReviewer() || t.IsParty(actorID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Service) ListSteps(ctx context.Context, transferID id.TransferID, actorID id.UserID) ([]*models.VerificationStep, error) {
	ctx, span := s.startSpan(ctx, "transfer.ListSteps", attribute.String("transfer_id", transferID.String()))
	defer span.End()

	if _, _, err := s.loadForRead(ctx, transferID, actorID, "read_steps"); err != nil {
		return nil, endSpan(span, err)
	}
	steps, err := s.steps.ListByTransfer(ctx, transferID)
	if err != nil {
		return nil, endSpan(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list steps"))
	}
	return steps, nil
}

// LatestSteps returns the authoritative record per kind, required kinds first.
func (s *Service) LatestSteps(ctx context.Context, transferID id.TransferID, actorID id.UserID) ([]*models.VerificationStep, error) {
	steps, err := s.ListSteps(ctx, transferID, actorID)
	if err != nil {
		return nil, err
	}
	latest := models.LatestByKind(steps)
	out := make([]*models.VerificationStep, 0, len(latest))
	for _, k := range append(append([]models.StepKind{}, models.RequiredKinds...), models.StepPlatformReview) {
		if st, ok := latest[k]; ok {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *Service) ListAudit(ctx context.Context, transferID id.TransferID, actorID id.UserID) ([]audit.Entry, error) {
	ctx, span := s.startSpan(ctx, "transfer.ListAudit", attribute.String("transfer_id", transferID.String()))
	defer span.End()

	if _, _, err := s.loadForRead(ctx, transferID, actorID, "read_audit"); err != nil {
		return nil, endSpan(span, err)
	}
	if s.reader == nil {
		return []audit.Entry{}, nil
	}
	entries, err := s.reader.ListByTransfer(ctx, transferID)
	if err != nil {
		return nil, endSpan(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit log"))
	}
	return entries, nil
}

// loadForRead enforces read access: parties and reviewers only.
func (s *Service) loadForRead(ctx context.Context, transferID id.TransferID, actorID id.UserID, op string) (*models.Transfer, identity.Role, error) {
	if actorID.IsNil() {
		return nil, identity.RoleNone, dErrors.New(dErrors.CodeUnauthorized, "actor required")
	}
	t, err := s.load(ctx, transferID)
	if err != nil {
		return nil, identity.RoleNone, err
	}
	role, err := s.roleOf(ctx, actorID)
	if err != nil {
		return nil, identity.RoleNone, err
	}
	if !role.IsReviewer() && !t.IsParty(actorID) {
		return nil, role, s.deny(ctx, t.ID, t.ID.String(), actorID, role, op, "not a party to the transfer")
	}
	return t, role, nil
}

func (s *Service) load(ctx context.Context, transferID id.TransferID) (*models.Transfer, error) {
	t, err := s.transfers.FindByID(ctx, transferID)
	if err != nil {
		return nil, translateTransferErr(err)
	}
	return t, nil
}

func (s *Service) roleOf(ctx context.Context, actorID id.UserID) (identity.Role, error) {
	role, err := s.roles.RoleOf(ctx, actorID)
	if err != nil {
		return identity.RoleNone, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve actor role")
	}
	return role, nil
}

func translateTransferErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "transfer not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load transfer")
}

func terminalError(status models.Status) error {
	return dErrors.New(dErrors.CodeTerminalState, "transfer is "+strings.ToLower(string(status))).
		WithDetail("status", string(status))
}

func disputedError() error {
	return dErrors.New(dErrors.CodeTransferDisputed, "transfer has an open dispute").
		WithDetail("status", string(models.StatusDisputed))
}

func conflictError() error {
	return dErrors.New(dErrors.CodeConflict, "transfer changed concurrently; re-read and retry").
		WithDetail("reason", "concurrency_conflict")
}

// emit writes entry through the in-transaction publisher and reports whether
// it was stored. A failed write never aborts the surrounding transaction.
func (s *Service) emit(ctx context.Context, entry audit.Entry) bool {
	if s.audit == nil {
		return true
	}
	if err := s.audit.Emit(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to record audit entry",
			"error", err,
			"transfer_id", entry.TransferID.String(),
			"action", string(entry.Action),
			"request_id", requestcontext.RequestID(ctx),
		)
		return false
	}
	return true
}

func (s *Service) publish(ctx context.Context, entries ...audit.Entry) {
	if s.stream == nil {
		return
	}
	s.stream.Publish(ctx, entries...)
}

// deny records a refused action and returns the authorization error.
func (s *Service) deny(ctx context.Context, transferID id.TransferID, refID string, actorID id.UserID, role identity.Role, op, reason string) error {
	s.logger.WarnContext(ctx, "action denied",
		"transfer_id", transferID.String(),
		"actor_id", actorID.String(),
		"operation", op,
		"reason", reason,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.denied != nil {
		actor := actorID
		entry, err := audit.NewEntry(audit.TypeAccess, transferID, refID, audit.ActionAccessDenied, &actor,
			map[string]string{"operation": op, "reason": reason, "role": role.String()},
			requestcontext.Now(ctx))
		if err == nil {
			s.denied.Emit(ctx, entry)
		}
	}
	return dErrors.New(dErrors.CodeForbidden, reason).WithDetail("operation", op)
}

// casStatus moves t along one lifecycle edge to next.
func (s *Service) casStatus(ctx context.Context, t *models.Transfer, next models.Status, now time.Time) (*models.Transfer, error) {
	if !t.Status.CanTransitionTo(next) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation,
			"transition "+string(t.Status)+" -> "+string(next)+" not allowed")
	}
	return s.swapStatus(ctx, t, next, now)
}

// swapStatus writes next against the version t was read at. Writing the same
// status still bumps the version, so concurrent submissions serialize.
func (s *Service) swapStatus(ctx context.Context, t *models.Transfer, next models.Status, now time.Time) (*models.Transfer, error) {
	updated, err := s.transfers.UpdateStatus(ctx, t.ID, t.Version, next, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, errRetry
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update transfer status")
	}
	return updated, nil
}

// withRetry reruns attempt while it loses the status compare-and-swap.
func (s *Service) withRetry(ctx context.Context, attempt func() error) error {
	var err error
	for i := 0; i < maxCommitAttempts; i++ {
		err = attempt()
		if !errors.Is(err, errRetry) {
			return err
		}
		s.metrics.IncConflictRetry()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return dErrors.Wrap(ctxErr, dErrors.CodeTimeout, "request cancelled")
		}
	}
	return conflictError()
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	return err
}
