package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"chargeflow/internal/backend"
)

// NotificationHandler exposes the admin push endpoints.
type NotificationHandler struct {
	notifications *backend.Notifications
	logger        *zap.Logger
}

// NewNotificationHandler builds the handler.
func NewNotificationHandler(notifications *backend.Notifications, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

type notifyRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (req notifyRequest) message() (backend.Message, bool) {
	if req.Title == "" && req.Body == "" {
		return backend.Message{}, false
	}
	return backend.Message{Title: req.Title, Body: req.Body}, true
}

// SendToCustomer pushes a notification to one customer.
func (h *NotificationHandler) SendToCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	var req notifyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	msg, ok := req.message()
	if !ok {
		writeError(w, http.StatusBadRequest, "title or body is required")
		return
	}
	if err := h.notifications.SendToCustomer(r.Context(), customerID, msg); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, nil)
}

// SendToCompany pushes a notification to every account of a company.
func (h *NotificationHandler) SendToCompany(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid company id")
		return
	}
	var req notifyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	msg, ok := req.message()
	if !ok {
		writeError(w, http.StatusBadRequest, "title or body is required")
		return
	}
	if err := h.notifications.SendToCompany(r.Context(), companyID, msg); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, nil)
}

// Broadcast pushes a notification to everyone.
func (h *NotificationHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	msg, ok := req.message()
	if !ok {
		writeError(w, http.StatusBadRequest, "title or body is required")
		return
	}
	if err := h.notifications.Broadcast(r.Context(), msg); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, nil)
}
