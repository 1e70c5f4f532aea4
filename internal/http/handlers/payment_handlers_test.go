package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chargeflow/internal/backend"
	"chargeflow/internal/handoff"
	"chargeflow/internal/models"
	"chargeflow/internal/payment"
)

type fakePaymentsBackend struct{}

func (fakePaymentsBackend) CreatePayment(_ context.Context, input backend.CreatePaymentInput) (string, error) {
	return "https://gateway.example/pay?order=" + input.OrderID, nil
}

func (fakePaymentsBackend) CreateComboPayment(context.Context, map[string]any) (string, error) {
	return "https://gateway.example/combo", nil
}

func (fakePaymentsBackend) CreateSubscriptionPayment(context.Context, int64) (string, error) {
	return "https://gateway.example/sub", nil
}

type fakeHandoff struct {
	mu       sync.Mutex
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
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[order.OrderID] = order
	return nil
}

func (f *fakeHandoff) PaymentOrder(_ context.Context, orderID string) (*models.PaymentOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return nil, handoff.ErrNotFound
	}
	return &order, nil
}

func (f *fakeHandoff) DeletePaymentOrder(_ context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.orders, orderID)
	return nil
}

func (f *fakeHandoff) SaveReservationContext(_ context.Context, rc models.ReservationContext) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contexts[rc.OrderID] = rc
	return nil
}

func (f *fakeHandoff) ReservationContext(_ context.Context, orderID string) (*models.ReservationContext, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rc, ok := f.contexts[orderID]
	if !ok {
		return nil, handoff.ErrNotFound
	}
	return &rc, nil
}

func newPaymentFixture(t *testing.T, now time.Time) (*PaymentHandler, *fakeHandoff) {
	t.Helper()
	store := newFakeHandoff()
	flow := payment.NewService(fakePaymentsBackend{}, store, func() time.Time { return now }, zap.NewNop())
	return NewPaymentHandler(flow, zap.NewNop()), store
}

func beginBooking(t *testing.T, handler *PaymentHandler, store *fakeHandoff) string {
	t.Helper()
	store.mu.Lock()
	before := len(store.orders)
	store.mu.Unlock()

	req := httptest.NewRequest(http.MethodPost, "/api/payments/booking",
		jsonBody(t, bookingPaymentRequest{
			Booking: models.Booking{ID: 7, CustomerID: 3},
			Port:    models.Port{ID: 42, Code: "P1"},
			Amount:  10000,
		}))
	rec := httptest.NewRecorder()
	handler.BeginBooking(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.orders, before+1)
	for id := range store.orders {
		return id
	}
	return ""
}

func TestPaymentReturnSuccessRedirects(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	handler, store := newPaymentFixture(t, now)
	orderID := beginBooking(t, handler, store)

	req := httptest.NewRequest(http.MethodGet,
		"/api/payments/return?order="+orderID+"&success=true&vnp_ResponseCode=00&vnp_Amount=1000000", nil)
	rec := httptest.NewRecorder()
	handler.Return(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/pay/success?order="+orderID, rec.Header().Get("Location"))

	rc, ok := store.contexts[orderID]
	require.True(t, ok)
	assert.Equal(t, now, rc.PaidAt)
	assert.Empty(t, store.orders)
}

func TestPaymentReturnFailureRedirects(t *testing.T) {
	now := time.Now()
	handler, store := newPaymentFixture(t, now)
	orderID := beginBooking(t, handler, store)

	req := httptest.NewRequest(http.MethodGet,
		"/api/payments/return?order="+orderID+"&success=false&vnp_ResponseCode=24", nil)
	rec := httptest.NewRecorder()
	handler.Return(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/pay/failure?order="+orderID, rec.Header().Get("Location"))
	assert.Empty(t, store.orders)
}

func TestPaymentReturnUnknownOrderGone(t *testing.T) {
	handler, _ := newPaymentFixture(t, time.Now())

	req := httptest.NewRequest(http.MethodGet, "/api/payments/return?order=nope&success=true", nil)
	rec := httptest.NewRecorder()
	handler.Return(rec, req)

	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestBeginBookingValidation(t *testing.T) {
	handler, _ := newPaymentFixture(t, time.Now())

	req := httptest.NewRequest(http.MethodPost, "/api/payments/booking",
		jsonBody(t, bookingPaymentRequest{Amount: 10000}))
	rec := httptest.NewRecorder()
	handler.BeginBooking(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
