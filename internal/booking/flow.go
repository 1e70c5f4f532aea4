// Package booking implements station → charger → port selection and booking
// creation. Pre-submit validation happens here, locally, before any network
// round-trip; conflict enforcement stays with the backend.
package booking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"chargeflow/internal/backend"
	"chargeflow/internal/models"
)

// Validation errors, reported without a network round-trip.
var (
	ErrPortRequired     = errors.New("booking: port id is required")
	ErrCustomerRequired = errors.New("booking: customer id is required")
	ErrBadWindow        = errors.New("booking: end time must be after start time")
	ErrPortUnavailable  = errors.New("booking: selected port is not available")
)

// CatalogBackend is the slice of the catalog client used here.
type CatalogBackend interface {
	Stations(ctx context.Context) ([]models.Station, error)
	Station(ctx context.Context, id int64) (*models.Station, error)
	ChargersByStation(ctx context.Context, stationID int64) ([]models.Charger, error)
	Charger(ctx context.Context, id int64) (*models.Charger, error)
	PortsByCharger(ctx context.Context, chargerID int64) ([]models.Port, error)
	Port(ctx context.Context, id int64) (*models.Port, error)
}

// BookingsBackend creates bookings.
type BookingsBackend interface {
	Create(ctx context.Context, input backend.CreateBookingInput) (*models.Booking, error)
}

// Service drives the booking flow.
type Service struct {
	catalog  CatalogBackend
	bookings BookingsBackend
	logger   *zap.Logger
}

// NewService builds the booking service.
func NewService(catalog CatalogBackend, bookings BookingsBackend, logger *zap.Logger) *Service {
	return &Service{catalog: catalog, bookings: bookings, logger: logger}
}

// Stations lists stations for browsing.
func (s *Service) Stations(ctx context.Context) ([]models.Station, error) {
	return s.catalog.Stations(ctx)
}

// Chargers lists the chargers of one station.
func (s *Service) Chargers(ctx context.Context, stationID int64) ([]models.Charger, error) {
	return s.catalog.ChargersByStation(ctx, stationID)
}

// Ports lists the ports of one charger.
func (s *Service) Ports(ctx context.Context, chargerID int64) ([]models.Port, error) {
	return s.catalog.PortsByCharger(ctx, chargerID)
}

// ReserveInput selects a port for a customer.
type ReserveInput struct {
	CustomerID     int64
	PortID         int64
	StartTime      time.Time
	EndTime        time.Time
	ImmediateStart bool
}

// Selection is the created booking together with the full catalog snapshot
// the downstream payment and hold steps bind to.
type Selection struct {
	Booking models.Booking
	Station models.Station
	Charger models.Charger
	Port    models.Port
}

// Reserve validates the input, checks the port looks bookable, snapshots the
// owning charger and station, and creates the booking. A conflicting
// concurrent booking still surfaces as a backend error; only the backend
// can enforce one-active-booking-per-port.
func (s *Service) Reserve(ctx context.Context, input ReserveInput) (*Selection, error) {
	if input.PortID <= 0 {
		return nil, ErrPortRequired
	}
	if input.CustomerID <= 0 {
		return nil, ErrCustomerRequired
	}
	if !input.ImmediateStart && !input.EndTime.IsZero() && !input.EndTime.After(input.StartTime) {
		return nil, ErrBadWindow
	}

	port, err := s.catalog.Port(ctx, input.PortID)
	if err != nil {
		return nil, err
	}
	if port.Status != "" && port.Status != "available" {
		return nil, ErrPortUnavailable
	}

	charger, err := s.catalog.Charger(ctx, port.ChargerID)
	if err != nil {
		return nil, err
	}
	station, err := s.catalog.Station(ctx, charger.StationID)
	if err != nil {
		return nil, err
	}

	create := backend.CreateBookingInput{
		CustomerID:     input.CustomerID,
		PortID:         input.PortID,
		ImmediateStart: input.ImmediateStart,
	}
	if !input.ImmediateStart {
		if !input.StartTime.IsZero() {
			start := input.StartTime
			create.StartTime = &start
		}
		if !input.EndTime.IsZero() {
			end := input.EndTime
			create.EndTime = &end
		}
	}

	booked, err := s.bookings.Create(ctx, create)
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.Int64("booking_id", booked.ID),
		zap.Int64("port_id", input.PortID),
		zap.Int64("customer_id", input.CustomerID),
	)
	return &Selection{
		Booking: *booked,
		Station: *station,
		Charger: *charger,
		Port:    *port,
	}, nil
}
