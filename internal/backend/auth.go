// Package backend holds typed wrappers over the generic API client, one per
// backend concern. Loosely-typed payloads are normalized into the strict
// models at this boundary and nowhere else.
package backend

import (
	"context"
	"fmt"
	"strings"

	"chargeflow/internal/api"
)

// Auth wraps the /Auth endpoints.
type Auth struct {
	api *api.Client
}

// NewAuth builds the auth client.
func NewAuth(client *api.Client) *Auth {
	return &Auth{api: client}
}

// LoginResult is the normalized login response.
type LoginResult struct {
	Token     string
	Role      string
	AccountID int64
}

// Login exchanges credentials for a bearer token and role.
func (a *Auth) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var raw map[string]any
	err := a.api.Post(ctx, "/Auth/login", map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	}, &raw)
	if err != nil {
		return nil, err
	}
	return normalizeLogin(raw), nil
}

func normalizeLogin(raw map[string]any) *LoginResult {
	out := &LoginResult{}
	if token, ok := raw["token"].(string); ok {
		out.Token = token
	} else if token, ok := raw["accessToken"].(string); ok {
		out.Token = token
	}
	if role, ok := raw["role"].(string); ok {
		out.Role = role
	}
	switch id := raw["accountId"].(type) {
	case float64:
		out.AccountID = int64(id)
	}
	return out
}

// Account is the normalized /Auth/{id} record.
type Account struct {
	ID          int64
	Email       string
	Role        string
	DisplayName string
	CustomerID  int64
	CompanyID   int64
}

// AccountByID fetches one account.
func (a *Auth) AccountByID(ctx context.Context, id int64) (*Account, error) {
	var raw map[string]any
	if err := a.api.Get(ctx, fmt.Sprintf("/Auth/%d", id), &raw); err != nil {
		return nil, err
	}
	acc := normalizeAccount(raw)
	return &acc, nil
}

// AccountByEmail resolves an account through the list endpoint; the backend
// offers no direct lookup by email.
func (a *Auth) AccountByEmail(ctx context.Context, email string) (*Account, error) {
	var raw []map[string]any
	if err := a.api.Get(ctx, "/Auth", &raw); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, entry := range raw {
		acc := normalizeAccount(entry)
		if strings.ToLower(acc.Email) == email {
			return &acc, nil
		}
	}
	return nil, &api.Error{Status: 404, Message: fmt.Sprintf("no account for %s", email)}
}

func normalizeAccount(raw map[string]any) Account {
	acc := Account{}
	for key, target := range map[string]*string{
		"email":       &acc.Email,
		"role":        &acc.Role,
		"displayName": &acc.DisplayName,
	} {
		if v, ok := raw[key].(string); ok {
			*target = v
		}
	}
	if acc.DisplayName == "" {
		if v, ok := raw["fullName"].(string); ok {
			acc.DisplayName = v
		}
	}
	for key, target := range map[string]*int64{
		"id":         &acc.ID,
		"customerId": &acc.CustomerID,
		"companyId":  &acc.CompanyID,
	} {
		if v, ok := raw[key].(float64); ok {
			*target = int64(v)
		}
	}
	if acc.ID == 0 {
		if v, ok := raw["accountId"].(float64); ok {
			acc.ID = int64(v)
		}
	}
	return acc
}

// ChangePassword updates the caller's password.
func (a *Auth) ChangePassword(ctx context.Context, current, updated string) error {
	return a.api.Put(ctx, "/Auth/change-password", map[string]string{
		"currentPassword": current,
		"newPassword":     updated,
	}, nil)
}

// ForgotPassword starts the reset flow for an email.
func (a *Auth) ForgotPassword(ctx context.Context, email string) error {
	return a.api.Post(ctx, "/Auth/forgot-password", map[string]string{"email": strings.TrimSpace(email)}, nil)
}

// ResetPassword completes the reset flow with the emailed token.
func (a *Auth) ResetPassword(ctx context.Context, token, newPassword string) error {
	return a.api.Post(ctx, "/Auth/reset-password", map[string]string{
		"token":       token,
		"newPassword": newPassword,
	}, nil)
}
