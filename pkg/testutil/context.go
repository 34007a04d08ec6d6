package testutil

import (
	"context"
	"net/http"

	id "handover/pkg/domain"
	"handover/pkg/requestcontext"
)

// WithActorID adds an actor ID to the request context, as the auth
// middleware does for authenticated requests. Invalid UUIDs are ignored.
func WithActorID(req *http.Request, actorID string) *http.Request {
	if parsed, err := id.ParseUserID(actorID); err == nil {
		return req.WithContext(requestcontext.WithActorID(req.Context(), parsed))
	}
	return req
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
