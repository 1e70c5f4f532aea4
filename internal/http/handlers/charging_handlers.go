package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"chargeflow/internal/backend"
	"chargeflow/internal/charging"
	"chargeflow/internal/hold"
	"chargeflow/internal/invoice"
	"chargeflow/internal/models"
)

// ChargingHandler serves the live monitor and the stop flow: freezing the
// session, assembling the invoice and moving the booking lock to done.
type ChargingHandler struct {
	charging  *charging.Service
	assembler *invoice.Assembler
	manager   *hold.Manager
	logger    *zap.Logger
}

// NewChargingHandler builds the handler.
func NewChargingHandler(charging *charging.Service, assembler *invoice.Assembler, manager *hold.Manager, logger *zap.Logger) *ChargingHandler {
	return &ChargingHandler{charging: charging, assembler: assembler, manager: manager, logger: logger}
}

// Snapshot returns the current derived view of a running session.
func (h *ChargingHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	snap, err := h.charging.Snapshot(sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type stopRequest struct {
	OrderID                string  `json:"orderId,omitempty"`
	SubscriptionAdjustment float64 `json:"subscriptionAdjustment,omitempty"`
}

type stopResponse struct {
	Snapshot charging.Snapshot `json:"snapshot"`
	Invoice  models.Invoice    `json:"invoice"`
}

// Stop ends the session, assembles the invoice from the frozen snapshot and
// marks the booking flow done. An invoice POST failure is surfaced so the
// UI can offer a retry; the session itself stays stopped.
func (h *ChargingHandler) Stop(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	var req stopRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	final, err := h.charging.Stop(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	inv, err := h.assembler.CreateFromSession(r.Context(), invoice.Input{
		SessionID:              sessionID,
		EnergyCost:             final.EnergyCost,
		IdlePenalty:            final.IdlePenalty,
		SubscriptionAdjustment: req.SubscriptionAdjustment,
		EndedAt:                final.EndedAt,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if req.OrderID != "" {
		if err := h.manager.Complete(r.Context(), req.OrderID); err != nil {
			h.logger.Warn("failed to mark booking done", zap.String("order_id", req.OrderID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, stopResponse{Snapshot: final, Invoice: inv})
}

// RetryInvoice re-posts the invoice for a session whose stop succeeded but
// whose invoice POST did not.
func (h *ChargingHandler) RetryInvoice(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	var in invoice.Input
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in.SessionID = sessionID

	inv, err := h.assembler.CreateFromSession(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

type guestStartRequest struct {
	LicensePlate       string  `json:"licensePlate"`
	PortID             int64   `json:"portId"`
	VehicleType        string  `json:"vehicleType,omitempty"`
	PricePerKWh        float64 `json:"pricePerKWh"`
	ChargePowerKW      float64 `json:"chargePowerKw"`
	InitialBatteryPct  float64 `json:"initialBatteryPct"`
	TargetBatteryPct   float64 `json:"targetBatteryPct"`
	BatteryCapacityKWh float64 `json:"batteryCapacityKwh"`
}

// GuestStart starts charging for a walk-in vehicle without a booking. Staff
// only, guarded at the router.
func (h *ChargingHandler) GuestStart(w http.ResponseWriter, r *http.Request) {
	var req guestStartRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.LicensePlate == "" || req.PortID == 0 {
		writeError(w, http.StatusBadRequest, "license plate and port are required")
		return
	}

	active, err := h.charging.StartGuest(r.Context(), backend.GuestStartInput{
		LicensePlate: req.LicensePlate,
		PortID:       req.PortID,
		VehicleType:  req.VehicleType,
	}, req.PricePerKWh, req.ChargePowerKW, charging.StartOptions{
		InitialBatteryPct:  req.InitialBatteryPct,
		TargetBatteryPct:   req.TargetBatteryPct,
		BatteryCapacityKWh: req.BatteryCapacityKWh,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, active.Session)
}
