package models

import "time"

// DefaultHoldMinutes applies when the backend does not supply a hold window
// with the payment confirmation.
const DefaultHoldMinutes = 15

// ReservationContext is the snapshot bound to a paid order: everything the
// hold redeem step and the charging monitor need, captured at payment time
// so the flow survives a page reload or a second client instance. It lives
// in the handoff store under chargepay:<orderID>.
type ReservationContext struct {
	OrderID     string    `json:"orderId"`
	BookingID   int64     `json:"bookingId,omitempty"`
	CustomerID  int64     `json:"customerId"`
	CompanyID   int64     `json:"companyId,omitempty"`
	VehicleID   int64     `json:"vehicleId"`
	PaidAt      time.Time `json:"paidAt"`
	HoldMinutes int       `json:"holdMinutes"`
	Station     Station   `json:"station"`
	Charger     Charger   `json:"charger"`
	Port        Port      `json:"port"`
	PricePerKWh float64   `json:"pricePerKWh"`
	BookingFee  float64   `json:"bookingFee"`
}

// HoldDuration returns the hold window, defaulting when unset.
func (c ReservationContext) HoldDuration() time.Duration {
	minutes := c.HoldMinutes
	if minutes <= 0 {
		minutes = DefaultHoldMinutes
	}
	return time.Duration(minutes) * time.Minute
}
