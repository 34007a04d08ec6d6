package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TestContext carries one scenario's actors, saved values and last response
// against a running handover server.
type TestContext struct {
	BaseURL    string
	SigningKey []byte
	HTTPClient *http.Client

	actors  map[string]string
	current string
	saved   map[string]string

	LastStatus int
	LastBody   []byte
}

// NewTestContext reads HANDOVER_E2E_URL and HANDOVER_E2E_JWT_KEY. The admin
// actor id comes from HANDOVER_E2E_ADMIN_ID and must be seeded as ADMIN in the
// server's HANDOVER_ROLES.
func NewTestContext() *TestContext {
	base := os.Getenv("HANDOVER_E2E_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	tc := &TestContext{
		BaseURL:    strings.TrimRight(base, "/"),
		SigningKey: []byte(os.Getenv("HANDOVER_E2E_JWT_KEY")),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
	tc.Reset()
	return tc
}

func (tc *TestContext) Reset() {
	tc.actors = make(map[string]string)
	if admin := os.Getenv("HANDOVER_E2E_ADMIN_ID"); admin != "" {
		tc.actors["admin"] = admin
	}
	tc.current = ""
	tc.saved = make(map[string]string)
	tc.LastStatus = 0
	tc.LastBody = nil
}

// ActorID returns the id for name, minting a fresh one on first use.
func (tc *TestContext) ActorID(name string) string {
	if v, ok := tc.actors[name]; ok {
		return v
	}
	v := uuid.NewString()
	tc.actors[name] = v
	return v
}

func (tc *TestContext) ActAs(name string) {
	tc.current = name
}

func (tc *TestContext) Save(key, value string) { tc.saved[key] = value }

func (tc *TestContext) Saved(key string) (string, error) {
	v, ok := tc.saved[key]
	if !ok {
		return "", fmt.Errorf("nothing saved as %q", key)
	}
	return v, nil
}

func (tc *TestContext) token() (string, error) {
	if tc.current == "" {
		return "", nil
	}
	claims := jwt.MapClaims{
		"actor_id": tc.ActorID(tc.current),
		"sub":      tc.ActorID(tc.current),
		"jti":      uuid.NewString(),
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(5 * time.Minute).Unix(),
	}
	if iss := os.Getenv("HANDOVER_E2E_JWT_ISSUER"); iss != "" {
		claims["iss"] = iss
	}
	if aud := os.Getenv("HANDOVER_E2E_JWT_AUDIENCE"); aud != "" {
		claims["aud"] = aud
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.SigningKey)
}

func (tc *TestContext) do(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, tc.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	tok, err := tc.token()
	if err != nil {
		return err
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	tc.LastStatus = resp.StatusCode
	tc.LastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) POST(path string, body any) error { return tc.do(http.MethodPost, path, body) }

func (tc *TestContext) GET(path string) error { return tc.do(http.MethodGet, path, nil) }

// Field reads a dotted path such as "error" or "details.status" from the last
// JSON response.
func (tc *TestContext) Field(path string) (any, error) {
	var doc any
	if err := json.Unmarshal(tc.LastBody, &doc); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	cur := doc
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: not an object", path)
		}
		if cur, ok = obj[part]; !ok {
			return nil, fmt.Errorf("%s: missing in %s", path, tc.LastBody)
		}
	}
	return cur, nil
}

func (tc *TestContext) Status() int { return tc.LastStatus }
