package authsession

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the signed-in identity plus the small set of last-known ids the
// flows reuse to avoid redundant lookups. The backend remains the source of
// truth; this is a disposable copy.
type Session struct {
	Token       string `json:"token"`
	Role        string `json:"role"`
	AccountID   int64  `json:"accountId,omitempty"`
	CustomerID  int64  `json:"customerId,omitempty"`
	CompanyID   int64  `json:"companyId,omitempty"`
	VehicleID   int64  `json:"vehicleId,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// LoggedIn reports whether the session carries a token.
func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// Known roles.
const (
	RoleCustomer = "Customer"
	RoleStaff    = "Staff"
	RoleAdmin    = "Admin"
)

// ErrNoToken is returned when claim decoding is attempted on an empty
// session.
var ErrNoToken = errors.New("authsession: no token")

// Claims is the subset of JWT claims the gateway reads.
type Claims struct {
	AccountID int64
	Role      string
	ExpiresAt time.Time
}

// DecodeClaims reads role and identity out of the bearer token without
// verifying the signature. The gateway never trusts these values for
// authorization decisions crossing a security boundary; the backend
// re-validates every call. They only pre-fill the session when the login
// response omits them.
func DecodeClaims(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, err
	}
	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("authsession: unexpected claims shape")
	}

	out := &Claims{}
	out.AccountID = claimID(mapClaims, "accountId", "user_id", "sub", "nameid")
	if role, ok := mapClaims["role"].(string); ok {
		out.Role = role
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

func claimID(claims jwt.MapClaims, keys ...string) int64 {
	for _, k := range keys {
		switch v := claims[k].(type) {
		case float64:
			return int64(v)
		case string:
			if id, err := strconv.ParseInt(v, 10, 64); err == nil {
				return id
			}
		}
	}
	return 0
}
