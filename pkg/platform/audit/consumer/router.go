package consumer

import (
	"context"
	"log/slog"

	audit "handover/pkg/platform/audit"
)

// Router dispatches entries to category-specific handlers.
type Router struct {
	handlers map[audit.Category]Handler
	fallback Handler
	logger   *slog.Logger
}

// NewRouter creates a category router with an optional fallback handler.
func NewRouter(logger *slog.Logger, fallback Handler) *Router {
	return &Router{
		handlers: make(map[audit.Category]Handler),
		fallback: fallback,
		logger:   logger,
	}
}

func (r *Router) Register(category audit.Category, handler Handler) {
	r.handlers[category] = handler
}

func (r *Router) Handle(ctx context.Context, entry audit.Entry) error {
	category := entry.Action.Category()
	handler, ok := r.handlers[category]
	if !ok {
		if r.fallback != nil {
			return r.fallback.Handle(ctx, entry)
		}
		r.logger.WarnContext(ctx, "no handler for audit category, skipping entry",
			"category", category,
			"log_id", entry.LogID.String(),
		)
		return nil
	}
	return handler.Handle(ctx, entry)
}
