package httpserver

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

const testSecret = "router-test-secret"

func routerToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"accountId": float64(3),
		"role":      role,
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func testRouter() http.Handler {
	return NewRouter(Routes{
		Health:     okHandler,
		Stations:   okHandler,
		Reserve:    okHandler,
		GuestStart: okHandler,
		HoldEnter:  okHandler,
	}, testSecret)
}

func TestRouterPublicRoutes(t *testing.T) {
	router := testRouter()

	for _, path := range []string{"/health", "/api/stations"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouterUnauthenticatedRedirectsToLogin(t *testing.T) {
	router := testRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bookings", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?next=%2Fapi%2Fbookings", rec.Header().Get("Location"))
}

func TestRouterCustomerCannotReachStaffRoute(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/guest/start", nil)
	req.Header.Set("Authorization", "Bearer "+routerToken(t, authsession.RoleCustomer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/stations", rec.Header().Get("Location"))
}

func TestRouterGuardedRoutePassesWithToken(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+routerToken(t, authsession.RoleCustomer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/holds/ord-1", nil)
	req.Header.Set("Authorization", "Bearer "+routerToken(t, authsession.RoleStaff))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Customer-only route: staff bounce to their own landing.
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/staff/sessions", rec.Header().Get("Location"))
}

func TestRouterRejectsWrongMethod(t *testing.T) {
	router := testRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/stations", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
