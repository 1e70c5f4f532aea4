package backend

import (
	"context"
	"fmt"

	"chargeflow/internal/api"
	"chargeflow/internal/models"
)

// Sessions wraps the /ChargingSessions endpoints.
type Sessions struct {
	api *api.Client
}

// NewSessions builds the sessions client.
func NewSessions(client *api.Client) *Sessions {
	return &Sessions{api: client}
}

// StartSessionInput starts a session for a registered (possibly fleet-owned)
// vehicle. BookingID is zero for walk-in starts.
type StartSessionInput struct {
	CustomerID int64 `json:"customerId"`
	CompanyID  int64 `json:"companyId,omitempty"`
	VehicleID  int64 `json:"vehicleId"`
	BookingID  int64 `json:"bookingId,omitempty"`
	PortID     int64 `json:"portId"`
}

// StartSession begins charging on a port. Conflicts (port busy, session
// already active, port locked) come back as *api.Error with the backend's
// message; callers surface it verbatim after api.CleanMessage.
func (s *Sessions) StartSession(ctx context.Context, input StartSessionInput) (*models.ChargingSession, error) {
	var raw map[string]any
	if err := s.api.Post(ctx, "/ChargingSessions/start", input, &raw); err != nil {
		return nil, err
	}
	session := models.NormalizeChargingSession(raw)
	return &session, nil
}

// GuestStartInput starts a session for an unregistered vehicle, identified
// by plate.
type GuestStartInput struct {
	LicensePlate string `json:"licensePlate"`
	PortID       int64  `json:"portId"`
	VehicleType  string `json:"vehicleType"`
}

// StartGuestSession begins charging for a guest vehicle.
func (s *Sessions) StartGuestSession(ctx context.Context, input GuestStartInput) (*models.ChargingSession, error) {
	var raw map[string]any
	if err := s.api.Post(ctx, "/ChargingSessions/guest/start", input, &raw); err != nil {
		return nil, err
	}
	session := models.NormalizeChargingSession(raw)
	return &session, nil
}

// Session fetches the current state of a session.
func (s *Sessions) Session(ctx context.Context, id int64) (*models.ChargingSession, error) {
	var raw map[string]any
	if err := s.api.Get(ctx, fmt.Sprintf("/ChargingSessions/%d", id), &raw); err != nil {
		return nil, err
	}
	session := models.NormalizeChargingSession(raw)
	return &session, nil
}

// StopSession ends an active session.
func (s *Sessions) StopSession(ctx context.Context, id int64) (*models.ChargingSession, error) {
	var raw map[string]any
	if err := s.api.Post(ctx, fmt.Sprintf("/ChargingSessions/%d/stop", id), nil, &raw); err != nil {
		return nil, err
	}
	session := models.NormalizeChargingSession(raw)
	return &session, nil
}
