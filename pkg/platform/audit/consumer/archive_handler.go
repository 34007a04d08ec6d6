package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	audit "handover/pkg/platform/audit"
)

// ArchiveHandler copies entries into an audit store. Stores ignore duplicate
// log ids, so redelivered records are harmless.
type ArchiveHandler struct {
	store  audit.Store
	logger *slog.Logger
}

func NewArchiveHandler(store audit.Store, logger *slog.Logger) *ArchiveHandler {
	return &ArchiveHandler{store: store, logger: logger}
}

func (h *ArchiveHandler) Handle(ctx context.Context, entry audit.Entry) error {
	if err := h.store.Append(ctx, entry); err != nil {
		h.logger.ErrorContext(ctx, "failed to archive audit entry",
			"log_id", entry.LogID.String(),
			"action", entry.Action,
			"error", err,
		)
		return fmt.Errorf("archive audit entry: %w", err)
	}
	h.logger.DebugContext(ctx, "archived audit entry",
		"log_id", entry.LogID.String(),
		"action", entry.Action,
	)
	return nil
}

// SecurityHandler archives refused actions and reports them for alerting.
type SecurityHandler struct {
	archive *ArchiveHandler
	logger  *slog.Logger
	metrics *Metrics
}

func NewSecurityHandler(archive *ArchiveHandler, logger *slog.Logger, metrics *Metrics) *SecurityHandler {
	return &SecurityHandler{archive: archive, logger: logger, metrics: metrics}
}

type denialDetails struct {
	Operation string `json:"operation"`
	Reason    string `json:"reason"`
	Role      string `json:"role"`
}

func (h *SecurityHandler) Handle(ctx context.Context, entry audit.Entry) error {
	var d denialDetails
	if len(entry.DetailsJSON) > 0 {
		if err := json.Unmarshal(entry.DetailsJSON, &d); err != nil {
			h.logger.WarnContext(ctx, "unreadable denial details",
				"log_id", entry.LogID.String(),
				"error", err,
			)
		}
	}
	if d.Operation == "" {
		d.Operation = "unknown"
	}
	if err := h.archive.Handle(ctx, entry); err != nil {
		return err
	}
	actor := ""
	if entry.ActorID != nil {
		actor = entry.ActorID.String()
	}
	h.metrics.IncDenied(d.Operation)
	h.logger.WarnContext(ctx, "denied action recorded",
		"log_type", "security",
		"transfer_id", entry.TransferID.String(),
		"actor_id", actor,
		"operation", d.Operation,
		"reason", d.Reason,
		"role", d.Role,
	)
	return nil
}
