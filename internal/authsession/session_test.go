package authsession

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestDecodeClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := mintToken(t, jwt.MapClaims{
		"accountId": float64(12),
		"role":      RoleCustomer,
		"exp":       exp.Unix(),
	})

	claims, err := DecodeClaims(token)
	require.NoError(t, err)
	assert.Equal(t, int64(12), claims.AccountID)
	assert.Equal(t, RoleCustomer, claims.Role)
	assert.True(t, claims.ExpiresAt.Equal(exp))
}

func TestDecodeClaimsIDAliases(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   int64
	}{
		{"user_id numeric", jwt.MapClaims{"user_id": float64(7)}, 7},
		{"sub string", jwt.MapClaims{"sub": "31"}, 31},
		{"nameid string", jwt.MapClaims{"nameid": "5"}, 5},
		{"accountId wins over sub", jwt.MapClaims{"accountId": float64(2), "sub": "9"}, 2},
		{"non-numeric sub ignored", jwt.MapClaims{"sub": "user@example.com"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := DecodeClaims(mintToken(t, tt.claims))
			require.NoError(t, err)
			assert.Equal(t, tt.want, claims.AccountID)
		})
	}
}

func TestDecodeClaimsRejectsEmptyAndGarbage(t *testing.T) {
	_, err := DecodeClaims("")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = DecodeClaims("not-a-jwt")
	assert.Error(t, err)
}

func TestLoggedIn(t *testing.T) {
	assert.False(t, Session{}.LoggedIn())
	assert.True(t, Session{Token: "abc"}.LoggedIn())
}
