package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"chargeflow/internal/backend"
	"chargeflow/internal/models"
)

// SubscriptionHandler proxies subscription reads and updates to the backend.
type SubscriptionHandler struct {
	subscriptions *backend.Subscriptions
	logger        *zap.Logger
}

// NewSubscriptionHandler builds the handler.
func NewSubscriptionHandler(subscriptions *backend.Subscriptions, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions, logger: logger}
}

// List returns all subscriptions visible to the caller.
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscriptions.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// Get returns one subscription.
func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subscription id")
		return
	}
	sub, err := h.subscriptions.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// Update replaces a subscription's mutable fields.
func (h *SubscriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subscription id")
		return
	}
	var sub models.Subscription
	if err := decodeBody(r, &sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub.ID = id

	updated, err := h.subscriptions.Update(r.Context(), sub)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
