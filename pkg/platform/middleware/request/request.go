// Package request tags each HTTP request with a correlation id and client metadata.
package request

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"handover/pkg/requestcontext"
)

// HeaderRequestID is honoured when a caller (e.g. the offline drainer) supplies its own id.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLength = 128

// Middleware ensures every request carries a request id and client metadata.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(HeaderRequestID))
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, requestID)

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithClientIP(ctx, clientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request id from context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
