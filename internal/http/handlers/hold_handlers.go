package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"chargeflow/internal/charging"
	"chargeflow/internal/hold"
	"chargeflow/internal/models"
)

// HoldHandler serves the post-payment reservation hold: the countdown view
// and the identifier redeem that starts charging.
type HoldHandler struct {
	manager  *hold.Manager
	charging *charging.Service
	now      func() time.Time
	logger   *zap.Logger
}

// NewHoldHandler builds the handler. now may be nil for the real clock.
func NewHoldHandler(manager *hold.Manager, charging *charging.Service, now func() time.Time, logger *zap.Logger) *HoldHandler {
	if now == nil {
		now = time.Now
	}
	return &HoldHandler{manager: manager, charging: charging, now: now, logger: logger}
}

type holdView struct {
	Destination     hold.Destination `json:"destination"`
	Phase           hold.Phase       `json:"phase"`
	TimeLeftSeconds int              `json:"timeLeftSeconds"`
	SessionID       int64            `json:"sessionId,omitempty"`
	Station         models.Station   `json:"station"`
	Charger         models.Charger   `json:"charger"`
	Port            models.Port      `json:"port"`
	HoldMinutes     int              `json:"holdMinutes"`
}

func (h *HoldHandler) view(result hold.EnterResult) holdView {
	v := holdView{
		Destination:     result.Destination,
		Phase:           result.Hold.Phase,
		TimeLeftSeconds: int(result.Hold.TimeLeft(h.now()).Seconds()),
		Station:         result.Hold.Context.Station,
		Charger:         result.Hold.Context.Charger,
		Port:            result.Hold.Context.Port,
		HoldMinutes:     result.Hold.Context.HoldMinutes,
	}
	if id, ok := h.charging.SessionIDForOrder(result.Hold.Context.OrderID); ok {
		v.SessionID = id
	}
	return v
}

// Enter resolves what the post-payment page shows for an order: the live
// countdown, or a short-circuit to the monitor / charge payment page when
// the hold was already redeemed.
func (h *HoldHandler) Enter(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("order")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "order id is required")
		return
	}
	result, err := h.manager.Enter(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(result))
}

type redeemRequest struct {
	Identifier         string  `json:"identifier"`
	InitialBatteryPct  float64 `json:"initialBatteryPct"`
	TargetBatteryPct   float64 `json:"targetBatteryPct"`
	BatteryCapacityKWh float64 `json:"batteryCapacityKwh"`
}

// Redeem checks the customer's identifier against the reserved equipment and
// starts the charging session. A repeat redeem for the same order returns
// the running session instead of starting another one.
func (h *HoldHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("order")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "order id is required")
		return
	}
	var req redeemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.manager.Redeem(r.Context(), orderID, req.Identifier)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// RedeemedAt is only set on a fresh transition; a short-circuited repeat
	// must not start a second backend session.
	if result.Hold.RedeemedAt.IsZero() {
		writeJSON(w, http.StatusOK, h.view(result))
		return
	}

	active, err := h.charging.StartFromHold(r.Context(), result.Hold.Context, charging.StartOptions{
		InitialBatteryPct:  req.InitialBatteryPct,
		TargetBatteryPct:   req.TargetBatteryPct,
		BatteryCapacityKWh: req.BatteryCapacityKWh,
	})
	if err != nil {
		// Release the lock so the customer can redeem again once the port
		// frees up; otherwise re-entry would short-circuit to a dead monitor.
		if abortErr := h.manager.Abort(r.Context(), orderID); abortErr != nil {
			h.logger.Warn("failed to release booking lock", zap.String("order_id", orderID), zap.Error(abortErr))
		}
		writeServiceError(w, err)
		return
	}

	v := h.view(result)
	v.SessionID = active.Session.ID
	writeJSON(w, http.StatusOK, v)
}
