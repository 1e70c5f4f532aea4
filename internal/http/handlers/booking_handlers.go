package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"chargeflow/internal/booking"
	"chargeflow/internal/http/middleware"
)

// BookingHandler exposes the station → charger → port browse chain and
// booking creation.
type BookingHandler struct {
	flow   *booking.Service
	logger *zap.Logger
}

// NewBookingHandler builds handler.
func NewBookingHandler(flow *booking.Service, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{flow: flow, logger: logger}
}

// Stations lists stations.
func (h *BookingHandler) Stations(w http.ResponseWriter, r *http.Request) {
	stations, err := h.flow.Stations(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stations)
}

// Chargers lists the chargers of a station.
func (h *BookingHandler) Chargers(w http.ResponseWriter, r *http.Request) {
	stationID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid station id")
		return
	}
	chargers, err := h.flow.Chargers(r.Context(), stationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chargers)
}

// Ports lists the ports of a charger.
func (h *BookingHandler) Ports(w http.ResponseWriter, r *http.Request) {
	chargerID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid charger id")
		return
	}
	ports, err := h.flow.Ports(r.Context(), chargerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ports)
}

type reserveRequest struct {
	PortID         int64      `json:"portId"`
	StartTime      *time.Time `json:"startTime,omitempty"`
	EndTime        *time.Time `json:"endTime,omitempty"`
	ImmediateStart bool       `json:"immediateStart"`
	CustomerID     int64      `json:"customerId,omitempty"`
}

// Reserve creates a booking for the authenticated customer.
func (h *BookingHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	customerID := req.CustomerID
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok && customerID == 0 {
		customerID = identity.AccountID
	}

	input := booking.ReserveInput{
		CustomerID:     customerID,
		PortID:         req.PortID,
		ImmediateStart: req.ImmediateStart,
	}
	if req.StartTime != nil {
		input.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		input.EndTime = *req.EndTime
	}

	selection, err := h.flow.Reserve(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, selection)
}
