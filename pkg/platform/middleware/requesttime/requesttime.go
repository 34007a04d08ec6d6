// Package requesttime pins one "now" per HTTP request so a step record, its
// audit entry and the transfer's status stamp agree exactly.
package requesttime

import (
	"net/http"
	"time"

	"handover/pkg/requestcontext"
)

// Middleware stamps each request with the wall clock in UTC.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock stamps requests using now, truncated to microseconds so the value
// survives a round trip through Postgres timestamps unchanged.
func WithClock(now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), now().UTC().Truncate(time.Microsecond))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
