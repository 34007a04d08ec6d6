// Package requestcontext carries request-scoped values without tying services
// to net/http. Middleware writes them; the transfer service reads only the
// request id, client IP and request time. The acting user is passed to the
// service explicitly, never read from context there.
package requestcontext

import (
	"context"
	"time"

	id "handover/pkg/domain"
)

type key int

const (
	actorKey key = iota
	clientIPKey
	requestIDKey
	requestTimeKey
)

// ActorID is the actor stored by the auth middleware, or the nil id.
func ActorID(ctx context.Context) id.UserID {
	v, _ := ctx.Value(actorKey).(id.UserID)
	return v
}

func WithActorID(ctx context.Context, actorID id.UserID) context.Context {
	return context.WithValue(ctx, actorKey, actorID)
}

// ClientIP is the caller address resolved by the request middleware.
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey).(string)
	return v
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Now is the request time pinned by the requesttime middleware. Outside a
// request (offline drainer, tests without a pinned time) it is the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey, t)
}
