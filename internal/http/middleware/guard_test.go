package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chargeflow/internal/authsession"
)

func TestDecideUnauthenticatedAlwaysRedirectsToLogin(t *testing.T) {
	for _, allowed := range [][]string{nil, {}, {authsession.RoleCustomer}, {authsession.RoleAdmin, authsession.RoleStaff}} {
		out := Decide(false, "", allowed, "/stations/4")
		assert.Equal(t, RedirectLogin, out.Decision)
		assert.Equal(t, "/login?next=%2Fstations%2F4", out.Location)
	}
}

func TestDecideWrongRoleRedirectsToLanding(t *testing.T) {
	tests := []struct {
		role    string
		allowed []string
		want    string
	}{
		{authsession.RoleCustomer, []string{authsession.RoleAdmin}, "/stations"},
		{authsession.RoleStaff, []string{authsession.RoleAdmin}, "/staff/sessions"},
		{authsession.RoleAdmin, []string{authsession.RoleCustomer}, "/admin/stations"},
		{"Unknown", []string{authsession.RoleCustomer}, "/"},
	}

	for _, tt := range tests {
		out := Decide(true, tt.role, tt.allowed, "/whatever")
		assert.Equal(t, RedirectLanding, out.Decision, "role %s", tt.role)
		assert.Equal(t, tt.want, out.Location)
	}
}

func TestDecideAllowedRolePassesThrough(t *testing.T) {
	out := Decide(true, authsession.RoleCustomer, []string{authsession.RoleCustomer}, "/stations")
	assert.Equal(t, Allow, out.Decision)

	// Empty allowed set admits any authenticated caller.
	out = Decide(true, "anything", nil, "/profile")
	assert.Equal(t, Allow, out.Decision)

	// Role comparison is case-insensitive.
	out = Decide(true, "customer", []string{authsession.RoleCustomer}, "/stations")
	assert.Equal(t, Allow, out.Decision)
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestGuardMiddleware(t *testing.T) {
	const secret = "test-secret"

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, int64(5), identity.AccountID)
		w.WriteHeader(http.StatusOK)
	})
	handler := Guard(secret, authsession.RoleCustomer)(next)

	t.Run("valid token and role", func(t *testing.T) {
		token := signToken(t, secret, jwt.MapClaims{
			"accountId": 5,
			"role":      authsession.RoleCustomer,
			"exp":       time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/stations", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token redirects to login", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/stations", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Contains(t, rec.Header().Get("Location"), "/login?next=")
	})

	t.Run("bad signature redirects to login", func(t *testing.T) {
		token := signToken(t, "other-secret", jwt.MapClaims{"accountId": 5, "role": authsession.RoleCustomer})
		req := httptest.NewRequest(http.MethodGet, "/stations", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusFound, rec.Code)
	})

	t.Run("wrong role redirects to landing", func(t *testing.T) {
		token := signToken(t, secret, jwt.MapClaims{
			"accountId": 5,
			"role":      authsession.RoleStaff,
			"exp":       time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/stations", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/staff/sessions", rec.Header().Get("Location"))
	})
}
