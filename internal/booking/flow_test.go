package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chargeflow/internal/backend"
	"chargeflow/internal/models"
)

type fakeCatalog struct {
	stations map[int64]models.Station
	chargers map[int64]models.Charger
	ports    map[int64]models.Port
}

func newFakeCatalog() *fakeCatalog {
	f := &fakeCatalog{
		stations: map[int64]models.Station{1: {ID: 1, Name: "Central", Status: models.StationStatusActive}},
		chargers: map[int64]models.Charger{7: {ID: 7, StationID: 1, Code: "CH-A2"}},
		ports:    map[int64]models.Port{42: {ID: 42, ChargerID: 7, Code: "P1", Status: "available"}},
	}
	return f
}

func (f *fakeCatalog) Stations(context.Context) ([]models.Station, error) {
	out := make([]models.Station, 0, len(f.stations))
	for _, s := range f.stations {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeCatalog) Station(_ context.Context, id int64) (*models.Station, error) {
	s := f.stations[id]
	return &s, nil
}

func (f *fakeCatalog) ChargersByStation(context.Context, int64) ([]models.Charger, error) {
	return nil, nil
}

func (f *fakeCatalog) Charger(_ context.Context, id int64) (*models.Charger, error) {
	c := f.chargers[id]
	return &c, nil
}

func (f *fakeCatalog) PortsByCharger(context.Context, int64) ([]models.Port, error) {
	return nil, nil
}

func (f *fakeCatalog) Port(_ context.Context, id int64) (*models.Port, error) {
	p := f.ports[id]
	return &p, nil
}

type fakeBookings struct {
	created *backend.CreateBookingInput
	err     error
}

func (f *fakeBookings) Create(_ context.Context, input backend.CreateBookingInput) (*models.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = &input
	return &models.Booking{ID: 3, CustomerID: input.CustomerID, PortID: input.PortID}, nil
}

func TestReserveValidatesBeforeSubmitting(t *testing.T) {
	bookings := &fakeBookings{}
	s := NewService(newFakeCatalog(), bookings, zap.NewNop())

	tests := []struct {
		name  string
		input ReserveInput
		want  error
	}{
		{"missing port", ReserveInput{CustomerID: 11}, ErrPortRequired},
		{"missing customer", ReserveInput{PortID: 42}, ErrCustomerRequired},
		{
			"inverted window",
			ReserveInput{
				CustomerID: 11,
				PortID:     42,
				StartTime:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
				EndTime:    time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC),
			},
			ErrBadWindow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Reserve(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, bookings.created, "no request may reach the backend")
		})
	}
}

func TestReserveRejectsBusyPort(t *testing.T) {
	catalog := newFakeCatalog()
	port := catalog.ports[42]
	port.Status = "busy"
	catalog.ports[42] = port

	s := NewService(catalog, &fakeBookings{}, zap.NewNop())
	_, err := s.Reserve(context.Background(), ReserveInput{CustomerID: 11, PortID: 42, ImmediateStart: true})
	assert.ErrorIs(t, err, ErrPortUnavailable)
}

func TestReserveSnapshotsCatalogChain(t *testing.T) {
	bookings := &fakeBookings{}
	s := NewService(newFakeCatalog(), bookings, zap.NewNop())

	sel, err := s.Reserve(context.Background(), ReserveInput{CustomerID: 11, PortID: 42, ImmediateStart: true})
	require.NoError(t, err)

	assert.Equal(t, int64(3), sel.Booking.ID)
	assert.Equal(t, "P1", sel.Port.Code)
	assert.Equal(t, "CH-A2", sel.Charger.Code)
	assert.Equal(t, "Central", sel.Station.Name)
	require.NotNil(t, bookings.created)
	assert.True(t, bookings.created.ImmediateStart)
	assert.Nil(t, bookings.created.StartTime)
}
