package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chargeflow/internal/backend"
	"chargeflow/internal/handoff"
	"chargeflow/internal/models"
)

type fakePayments struct {
	url string
	err error
}

func (f *fakePayments) CreatePayment(context.Context, backend.CreatePaymentInput) (string, error) {
	return f.url, f.err
}

func (f *fakePayments) CreateComboPayment(context.Context, map[string]any) (string, error) {
	return f.url, f.err
}

func (f *fakePayments) CreateSubscriptionPayment(context.Context, int64) (string, error) {
	return f.url, f.err
}

type fakeHandoff struct {
	orders   map[string]models.PaymentOrder
	contexts map[string]models.ReservationContext
}

func newFakeHandoff() *fakeHandoff {
	return &fakeHandoff{
		orders:   make(map[string]models.PaymentOrder),
		contexts: make(map[string]models.ReservationContext),
	}
}

func (f *fakeHandoff) SavePaymentOrder(_ context.Context, order models.PaymentOrder) error {
	f.orders[order.OrderID] = order
	return nil
}

func (f *fakeHandoff) PaymentOrder(_ context.Context, orderID string) (*models.PaymentOrder, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, handoff.ErrNotFound
	}
	return &order, nil
}

func (f *fakeHandoff) DeletePaymentOrder(_ context.Context, orderID string) error {
	delete(f.orders, orderID)
	return nil
}

func (f *fakeHandoff) SaveReservationContext(_ context.Context, rc models.ReservationContext) error {
	f.contexts[rc.OrderID] = rc
	return nil
}

func (f *fakeHandoff) ReservationContext(_ context.Context, orderID string) (*models.ReservationContext, error) {
	rc, ok := f.contexts[orderID]
	if !ok {
		return nil, handoff.ErrNotFound
	}
	return &rc, nil
}

func testCheckout() BookingCheckout {
	return BookingCheckout{
		Booking:     models.Booking{ID: 3, CustomerID: 11, PortID: 42},
		Station:     models.Station{ID: 1, Name: "Central"},
		Charger:     models.Charger{ID: 7, Code: "CH-A2"},
		Port:        models.Port{ID: 42, Code: "P1"},
		Amount:      20000,
		PricePerKWh: 5000,
		BookingFee:  20000,
		VehicleID:   9,
	}
}

func TestBeginBookingPaymentStashesOrderAndContext(t *testing.T) {
	store := newFakeHandoff()
	s := NewService(&fakePayments{url: "https://gw/pay?x=1"}, store, nil, zap.NewNop())

	order, err := s.BeginBookingPayment(context.Background(), testCheckout())
	require.NoError(t, err)
	assert.Equal(t, "https://gw/pay?x=1", order.PaymentURL)
	assert.NotEmpty(t, order.OrderID)

	stashed, ok := store.orders[order.OrderID]
	require.True(t, ok)
	assert.Equal(t, int64(3), stashed.BookingID)

	rc, ok := store.contexts[order.OrderID]
	require.True(t, ok)
	assert.Equal(t, int64(42), rc.Port.ID)
	assert.Equal(t, models.DefaultHoldMinutes, rc.HoldMinutes)
	assert.True(t, rc.PaidAt.IsZero())
}

func TestResumeAnchorsPaidAtFromGateway(t *testing.T) {
	store := newFakeHandoff()
	now := time.Date(2025, 6, 1, 14, 10, 0, 0, time.UTC)
	s := NewService(&fakePayments{url: "https://gw/pay"}, store, func() time.Time { return now }, zap.NewNop())

	order, err := s.BeginBookingPayment(context.Background(), testCheckout())
	require.NoError(t, err)

	payDate := time.Date(2025, 6, 1, 14, 5, 30, 0, time.Local)
	resumed, err := s.Resume(context.Background(), ReturnParams{
		OrderID: order.OrderID,
		Success: true,
		PaidAt:  payDate,
	})
	require.NoError(t, err)
	assert.Equal(t, order.OrderID, resumed.OrderID)

	// Ephemeral order discarded, context anchored.
	_, ok := store.orders[order.OrderID]
	assert.False(t, ok)
	assert.Equal(t, payDate, store.contexts[order.OrderID].PaidAt)
}

func TestResumeFallsBackToWallClockWithoutPayDate(t *testing.T) {
	store := newFakeHandoff()
	now := time.Date(2025, 6, 1, 14, 10, 0, 0, time.UTC)
	s := NewService(&fakePayments{url: "https://gw/pay"}, store, func() time.Time { return now }, zap.NewNop())

	order, err := s.BeginBookingPayment(context.Background(), testCheckout())
	require.NoError(t, err)

	_, err = s.Resume(context.Background(), ReturnParams{OrderID: order.OrderID, Success: true})
	require.NoError(t, err)
	assert.Equal(t, now, store.contexts[order.OrderID].PaidAt)
}

func TestResumeFailureDiscardsOrder(t *testing.T) {
	store := newFakeHandoff()
	s := NewService(&fakePayments{url: "https://gw/pay"}, store, nil, zap.NewNop())

	order, err := s.BeginBookingPayment(context.Background(), testCheckout())
	require.NoError(t, err)

	_, err = s.Resume(context.Background(), ReturnParams{OrderID: order.OrderID, Success: false, ResponseCode: "24"})
	assert.ErrorIs(t, err, ErrPaymentFailed)
	_, ok := store.orders[order.OrderID]
	assert.False(t, ok)
}

func TestResumeUnknownOrder(t *testing.T) {
	s := NewService(&fakePayments{url: "https://gw/pay"}, newFakeHandoff(), nil, zap.NewNop())

	_, err := s.Resume(context.Background(), ReturnParams{OrderID: "nope", Success: true})
	assert.ErrorIs(t, err, ErrUnknownOrder)

	_, err = s.Resume(context.Background(), ReturnParams{})
	assert.ErrorIs(t, err, ErrUnknownOrder)
}
