package backend

import (
	"context"
	"time"

	"chargeflow/internal/api"
	"chargeflow/internal/models"
)

// Bookings wraps booking creation. The at-most-one-active-booking-per-port
// rule is enforced server-side; a violation surfaces as a conflict error.
type Bookings struct {
	api *api.Client
}

// NewBookings builds the bookings client.
func NewBookings(client *api.Client) *Bookings {
	return &Bookings{api: client}
}

// CreateBookingInput reserves a port, either immediately or for a window.
type CreateBookingInput struct {
	CustomerID     int64      `json:"customerId"`
	PortID         int64      `json:"portId"`
	StartTime      *time.Time `json:"startTime,omitempty"`
	EndTime        *time.Time `json:"endTime,omitempty"`
	ImmediateStart bool       `json:"immediateStart"`
}

// Create posts a new booking.
func (b *Bookings) Create(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	var raw map[string]any
	if err := b.api.Post(ctx, "/Bookings", input, &raw); err != nil {
		return nil, err
	}
	booking := models.NormalizeBooking(raw)
	return &booking, nil
}
