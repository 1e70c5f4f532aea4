package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chargeflow/internal/authsession"
	"chargeflow/internal/backend"
	"chargeflow/internal/http/middleware"
)

// SessionWriter is the slice of the auth session store the handlers use.
type SessionWriter interface {
	Read(ctx context.Context, sessionID string) (authsession.Session, error)
	Write(ctx context.Context, sessionID string, session authsession.Session) error
	Clear(ctx context.Context, sessionID string) error
}

// AuthHandler proxies credential flows to the backend and maintains the
// session store. Passwords pass through untouched; nothing credential-shaped
// is persisted here.
type AuthHandler struct {
	auth     *backend.Auth
	sessions SessionWriter
	logger   *zap.Logger
}

// NewAuthHandler builds handler.
func NewAuthHandler(auth *backend.Auth, sessions SessionWriter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	SessionID   string `json:"sessionId"`
	Token       string `json:"token"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	Landing     string `json:"landing"`
}

// Login authenticates against the backend, enriches the session with
// account identity, and hands the client its session id.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	session := authsession.Session{
		Token:     result.Token,
		Role:      result.Role,
		AccountID: result.AccountID,
	}
	if claims, err := authsession.DecodeClaims(result.Token); err == nil {
		if session.Role == "" {
			session.Role = claims.Role
		}
		if session.AccountID == 0 {
			session.AccountID = claims.AccountID
		}
	}

	// Secondary identity lookup is best-effort: a failure degrades to a
	// guest display name instead of failing the login.
	if account, err := h.auth.AccountByEmail(r.Context(), req.Email); err == nil {
		session.DisplayName = account.DisplayName
		session.CustomerID = account.CustomerID
		session.CompanyID = account.CompanyID
		if session.AccountID == 0 {
			session.AccountID = account.ID
		}
	} else {
		h.logger.Warn("account lookup failed, using guest display name", zap.Error(err))
		session.DisplayName = "Guest"
	}

	sessionID := uuid.NewString()
	if err := h.sessions.Write(r.Context(), sessionID, session); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		SessionID:   sessionID,
		Token:       session.Token,
		Role:        session.Role,
		DisplayName: session.DisplayName,
		Landing:     middleware.DefaultLanding(session.Role),
	})
}

// Logout clears the stored session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("X-Session-Id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing session id")
		return
	}
	if err := h.sessions.Clear(r.Context(), sessionID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

const minPasswordLength = 8

// ChangePassword validates locally, then proxies.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "new password must be at least 8 characters")
		return
	}
	if req.NewPassword == req.CurrentPassword {
		writeError(w, http.StatusBadRequest, "new password must differ from the current one")
		return
	}

	if err := h.auth.ChangePassword(r.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// ForgotPassword proxies the reset-start request.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if err := h.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// ResetPassword proxies the reset-complete request.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeBody(r, &req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "new password must be at least 8 characters")
		return
	}
	if err := h.auth.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
