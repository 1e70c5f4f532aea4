package models

import "time"

// Charging session status values.
const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

// ChargingSession tracks one port occupancy from start to stop. CompanyID is
// set only for fleet-owned vehicles; BookingID only when the session redeems
// a reservation.
type ChargingSession struct {
	ID            int64      `json:"id"`
	PortID        int64      `json:"portId"`
	VehicleID     int64      `json:"vehicleId"`
	CustomerID    int64      `json:"customerId"`
	CompanyID     int64      `json:"companyId,omitempty"`
	BookingID     int64      `json:"bookingId,omitempty"`
	StartedAt     time.Time  `json:"startedAt"`
	EndedAt       *time.Time `json:"endedAt,omitempty"`
	EnergyUsedKWh float64    `json:"energyUsedKWh"`
	EnergyCost    float64    `json:"energyCost"`
	IdlePenalty   float64    `json:"idlePenalty"`
	Status        string     `json:"status"`
}

// NormalizeChargingSession maps a loosely-typed backend payload to a
// ChargingSession.
func NormalizeChargingSession(m map[string]any) ChargingSession {
	s := ChargingSession{
		ID:            intField(m, "id", "sessionId", "chargingSessionId"),
		PortID:        intField(m, "portId"),
		VehicleID:     intField(m, "vehicleId"),
		CustomerID:    intField(m, "customerId"),
		CompanyID:     intField(m, "companyId"),
		BookingID:     intField(m, "bookingId"),
		StartedAt:     timeField(m, "startedAt", "startTime"),
		EnergyUsedKWh: floatField(m, "energyUsedKWh", "energyKwh", "energy"),
		EnergyCost:    floatField(m, "energyCost", "cost"),
		IdlePenalty:   floatField(m, "idlePenalty", "penalty"),
		Status:        stringField(m, "status", "sessionStatus"),
	}
	if ended := timeField(m, "endedAt", "endTime"); !ended.IsZero() {
		s.EndedAt = &ended
	}
	return s
}
