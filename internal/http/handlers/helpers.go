package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"chargeflow/internal/api"
	"chargeflow/internal/booking"
	"chargeflow/internal/charging"
	"chargeflow/internal/hold"
	"chargeflow/internal/payment"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps domain and backend errors onto HTTP statuses. The
// backend's own status and message pass through for *api.Error; known
// terminal states map to 409/410; everything else is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		writeError(w, apiErr.Status, apiErr.Message)
		return
	}

	switch {
	case errors.Is(err, hold.ErrExpired),
		errors.Is(err, payment.ErrUnknownOrder),
		errors.Is(err, hold.ErrMissingContext):
		writeError(w, http.StatusGone, err.Error())
	case errors.Is(err, hold.ErrIdentifierMismatch),
		errors.Is(err, booking.ErrPortUnavailable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, booking.ErrPortRequired),
		errors.Is(err, booking.ErrCustomerRequired),
		errors.Is(err, booking.ErrBadWindow),
		errors.Is(err, payment.ErrPaymentFailed):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, charging.ErrNoActiveSession):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
