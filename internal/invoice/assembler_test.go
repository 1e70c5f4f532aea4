package invoice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chargeflow/internal/models"
)

func TestAssembleComputation(t *testing.T) {
	tests := []struct {
		name         string
		in           Input
		wantSubtotal float64
		wantTax      float64
		wantTotal    float64
	}{
		{
			name:         "energy only",
			in:           Input{EnergyCost: 50000},
			wantSubtotal: 50000,
			wantTax:      5000,
			wantTotal:    55000,
		},
		{
			name:         "with idle penalty",
			in:           Input{EnergyCost: 40000, IdlePenalty: 6000},
			wantSubtotal: 46000,
			wantTax:      4600,
			wantTotal:    50600,
		},
		{
			name:         "subscription adjustment reduces taxable base",
			in:           Input{EnergyCost: 50000, SubscriptionAdjustment: 10000},
			wantSubtotal: 50000,
			wantTax:      4000,
			wantTotal:    44000,
		},
		{
			name:         "tax rounds to nearest unit",
			in:           Input{EnergyCost: 333},
			wantSubtotal: 333,
			wantTax:      33,
			wantTotal:    366,
		},
		{
			name:         "zero session",
			in:           Input{},
			wantSubtotal: 0,
			wantTax:      0,
			wantTotal:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Assemble(tt.in)
			assert.Equal(t, tt.wantSubtotal, inv.Subtotal)
			assert.Equal(t, tt.wantTax, inv.Tax)
			assert.Equal(t, tt.wantTotal, inv.Total)
			assert.Equal(t, inv.Subtotal-inv.SubscriptionAdjustment+inv.Tax, inv.Total)
			assert.Equal(t, models.InvoiceStatusUnpaid, inv.Status)
		})
	}
}

func TestAssembleBillingPeriodFromEndedAt(t *testing.T) {
	endedAt := time.Date(2025, time.November, 30, 23, 55, 0, 0, time.UTC)
	inv := Assemble(Input{SessionID: 4, EnergyCost: 100, EndedAt: endedAt})
	assert.Equal(t, 11, inv.BillingMonth)
	assert.Equal(t, 2025, inv.BillingYear)
	assert.Equal(t, int64(4), inv.ChargingSessionID)
}

type fakeInvoices struct {
	created *models.Invoice
	err     error
	gotten  models.Invoice
}

func (f *fakeInvoices) Create(_ context.Context, payload models.Invoice) (*models.Invoice, error) {
	f.gotten = payload
	return f.created, f.err
}

type fakeMirror struct {
	saved []models.Invoice
}

func (f *fakeMirror) SaveInvoice(_ context.Context, inv models.Invoice) error {
	f.saved = append(f.saved, inv)
	return nil
}

func TestCreateFromSessionBackendAuthoritative(t *testing.T) {
	backendInv := &models.Invoice{ID: 91, Total: 99999, Status: models.InvoiceStatusUnpaid}
	fake := &fakeInvoices{created: backendInv}
	mirror := &fakeMirror{}
	a := NewAssembler(fake, mirror, zap.NewNop())

	got, err := a.CreateFromSession(context.Background(), Input{SessionID: 7, EnergyCost: 50000})
	require.NoError(t, err)

	// Backend values override the locally computed ones.
	assert.Equal(t, int64(91), got.ID)
	assert.Equal(t, float64(99999), got.Total)
	require.Len(t, mirror.saved, 1)
	assert.Equal(t, int64(91), mirror.saved[0].ID)
}

func TestCreateFromSessionFallsBackToLocalPayload(t *testing.T) {
	fake := &fakeInvoices{created: nil}
	a := NewAssembler(fake, nil, zap.NewNop())

	got, err := a.CreateFromSession(context.Background(), Input{SessionID: 7, EnergyCost: 50000})
	require.NoError(t, err)
	assert.Equal(t, float64(55000), got.Total)
	assert.Equal(t, int64(7), got.ChargingSessionID)
}

func TestCreateFromSessionPropagatesPostFailure(t *testing.T) {
	fake := &fakeInvoices{err: errors.New("backend down")}
	a := NewAssembler(fake, nil, zap.NewNop())

	_, err := a.CreateFromSession(context.Background(), Input{EnergyCost: 50000})
	assert.Error(t, err)
}
