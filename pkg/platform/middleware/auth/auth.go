// Package auth turns a bearer token into the acting user id for handlers.
// Sessions, roles and token issuance stay with the identity provider.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	id "handover/pkg/domain"
	dErrors "handover/pkg/domain-errors"
	"handover/pkg/platform/httputil"
	request "handover/pkg/platform/middleware/request"
	"handover/pkg/requestcontext"
)

// JWTValidator validates a bearer token issued by the identity provider.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims are the claims this service consumes. Only the actor id crosses
// the boundary; JTI is kept for log correlation.
type JWTClaims struct {
	ActorID string
	JTI     string
}

var (
	errMissingToken = dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header")
	errBadToken     = dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token")
)

func bearer(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth rejects requests without a valid bearer token and stores the
// actor id in the request context; handlers then pass it on explicitly.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			reject := func(reason string, err error, jti string) {
				logger.WarnContext(ctx, "unauthenticated request rejected",
					"reason", reason,
					"path", r.URL.Path,
					"jti", jti,
					"request_id", request.GetRequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, err)
			}

			token, ok := bearer(r)
			if !ok {
				reject("missing_token", errMissingToken, "")
				return
			}
			claims, err := validator.ValidateToken(token)
			if err != nil {
				reject("invalid_token", errBadToken, "")
				return
			}
			actorID, err := id.ParseUserID(claims.ActorID)
			if err != nil {
				reject("malformed_actor", errBadToken, claims.JTI)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithActorID(ctx, actorID)))
		})
	}
}
