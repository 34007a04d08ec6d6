package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"handover/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*JWTClaims, error) { return s.claims, s.err }

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	actor := uuid.New()

	run := func(v JWTValidator, header string) (*httptest.ResponseRecorder, string) {
		var seen string
		h := RequireAuth(v, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestcontext.ActorID(r.Context()).String()
			w.WriteHeader(http.StatusNoContent)
		}))
		req := httptest.NewRequest(http.MethodGet, "/transfers", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec, seen
	}

	t.Run("missing header", func(t *testing.T) {
		rec, _ := run(stubValidator{}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"unauthorized","error_description":"missing or invalid Authorization header"}`, rec.Body.String())
	})

	t.Run("non-bearer scheme", func(t *testing.T) {
		rec, _ := run(stubValidator{claims: &JWTClaims{ActorID: actor.String()}}, "Basic dXNlcjpwYXNz")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		rec, seen := run(stubValidator{claims: &JWTClaims{ActorID: actor.String()}}, "bearer abc")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, actor.String(), seen)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec, _ := run(stubValidator{err: errors.New("expired")}, "Bearer abc")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed actor claim", func(t *testing.T) {
		rec, _ := run(stubValidator{claims: &JWTClaims{ActorID: "not-a-uuid"}}, "Bearer abc")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token sets actor", func(t *testing.T) {
		rec, seen := run(stubValidator{claims: &JWTClaims{ActorID: actor.String()}}, "Bearer abc")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, actor.String(), seen)
	})
}
