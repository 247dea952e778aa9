package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/storefront-api/internal/api/handler"
	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// tokenAuth accepts "admin" and "user" as tokens for a user with that role.
type tokenAuth struct {
	ports.AuthService
}

func (tokenAuth) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	switch token {
	case domain.RoleAdmin, domain.RoleUser:
		return &domain.User{ID: token + "-id", Role: token}, nil
	}
	return nil, domain.ErrInvalidToken
}

type listUsers struct {
	ports.UserService
}

func (listUsers) List(ctx context.Context) ([]*domain.User, error) {
	return []*domain.User{{ID: "u1"}}, nil
}

func newTestRouter() http.Handler {
	return NewRouter(Dependencies{
		Auth:        tokenAuth{},
		Users:       listUsers{},
		Checks:      map[string]handler.DependencyCheck{},
		FrontendURL: "http://localhost:3000",
		Registerer:  prometheus.NewRegistry(),
		Log:         zerolog.Nop(),
	})
}

func serve(t *testing.T, h http.Handler, method, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_BodyLimit(t *testing.T) {
	router := newTestRouter()

	body := bytes.Repeat([]byte("a"), 10*1024*1024+1)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestRouter_AdminRoutes(t *testing.T) {
	router := newTestRouter()

	rec := serve(t, router, http.MethodGet, "/api/v1/admin/users", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusUnauthorized, body.StatusCode)
	assert.NotEmpty(t, body.Message)

	rec = serve(t, router, http.MethodGet, "/api/v1/admin/users", "bogus")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, router, http.MethodGet, "/api/v1/admin/users", domain.RoleUser)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(t, router, http.MethodGet, "/api/v1/admin/users", domain.RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"users"`)
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter()

	assert.Equal(t, http.StatusOK, serve(t, router, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(t, router, http.MethodGet, "/health/ready", "").Code)
}

func TestRouter_UnknownRouteUsesEnvelope(t *testing.T) {
	rec := serve(t, newTestRouter(), http.MethodGet, "/api/v1/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, body.StatusCode)
}
