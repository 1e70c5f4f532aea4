package models

import "time"

// Booking reserves a port for a customer, either for a time window or for
// immediate start. At most one active booking per port is a backend
// contract; the gateway surfaces conflicts, it does not enforce the rule.
type Booking struct {
	ID             int64     `json:"id"`
	CustomerID     int64     `json:"customerId"`
	PortID         int64     `json:"portId"`
	StartTime      time.Time `json:"startTime,omitempty"`
	EndTime        time.Time `json:"endTime,omitempty"`
	ImmediateStart bool      `json:"immediateStart"`
	Status         string    `json:"status"`
}

// NormalizeBooking maps a loosely-typed backend payload to a Booking.
func NormalizeBooking(m map[string]any) Booking {
	return Booking{
		ID:             intField(m, "id", "bookingId"),
		CustomerID:     intField(m, "customerId"),
		PortID:         intField(m, "portId"),
		StartTime:      timeField(m, "startTime", "start"),
		EndTime:        timeField(m, "endTime", "end"),
		ImmediateStart: boolField(m, "immediateStart", "startNow"),
		Status:         stringField(m, "status", "bookingStatus"),
	}
}
