package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"chargeflow/internal/authsession"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller attached to the request context. The
// raw token rides along so backend calls made on the caller's behalf carry
// their own credentials.
type Identity struct {
	AccountID int64
	Role      string
	Token     string
}

// Decision is the route-guard outcome.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectLanding
)

// Outcome pairs the decision with the redirect target, when any.
type Outcome struct {
	Decision Decision
	Location string
}

const loginPath = "/login"

// Decide is the pure route-guard rule: unauthenticated always goes to login
// carrying the originally requested path; a role outside a non-empty allowed
// set goes to its default landing, never the requested view.
func Decide(isAuthenticated bool, role string, allowedRoles []string, requestedPath string) Outcome {
	if !isAuthenticated {
		loc := loginPath
		if requestedPath != "" && requestedPath != loginPath {
			loc += "?next=" + url.QueryEscape(requestedPath)
		}
		return Outcome{Decision: RedirectLogin, Location: loc}
	}
	if len(allowedRoles) > 0 && !roleAllowed(role, allowedRoles) {
		return Outcome{Decision: RedirectLanding, Location: DefaultLanding(role)}
	}
	return Outcome{Decision: Allow}
}

func roleAllowed(role string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(role, a) {
			return true
		}
	}
	return false
}

// DefaultLanding maps a role to its home page.
func DefaultLanding(role string) string {
	switch {
	case strings.EqualFold(role, authsession.RoleAdmin):
		return "/admin/stations"
	case strings.EqualFold(role, authsession.RoleStaff):
		return "/staff/sessions"
	case strings.EqualFold(role, authsession.RoleCustomer):
		return "/stations"
	default:
		return "/"
	}
}

// Guard validates the bearer token and applies the role rule before letting
// a request through. The allowed set may be empty: any authenticated caller.
func Guard(secret string, allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := authenticate(r, secret)

			outcome := Decide(ok, identity.Role, allowedRoles, r.URL.Path)
			switch outcome.Decision {
			case Allow:
				ctx := context.WithValue(r.Context(), identityKey, identity)
				next.ServeHTTP(w, r.WithContext(ctx))
			default:
				http.Redirect(w, r, outcome.Location, http.StatusFound)
			}
		})
	}
}

func authenticate(r *http.Request, secret string) (Identity, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return Identity{}, false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return Identity{}, false
	}

	raw := strings.TrimSpace(parts[1])
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenInvalidClaims
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Identity{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, false
	}

	identity := Identity{Token: raw}
	if role, ok := claims["role"].(string); ok {
		identity.Role = role
	}
	switch v := claims["accountId"].(type) {
	case float64:
		identity.AccountID = int64(v)
	case string:
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			identity.AccountID = id
		}
	}
	if identity.AccountID == 0 {
		if v, ok := claims["user_id"].(float64); ok {
			identity.AccountID = int64(v)
		}
	}
	return identity, true
}

// TokenFromContext returns the caller's raw bearer token, empty for
// anonymous requests.
func TokenFromContext(ctx context.Context) string {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return ""
	}
	return identity.Token
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	val := ctx.Value(identityKey)
	if val == nil {
		return Identity{}, false
	}
	identity, ok := val.(Identity)
	return identity, ok
}
