// Package payment owns the gateway redirect flow: creating a payment URL,
// stashing the pending order, and resuming when the browser comes back with
// the gateway's query parameters.
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chargeflow/internal/backend"
	"chargeflow/internal/handoff"
	"chargeflow/internal/models"
)

// ErrUnknownOrder means neither the return parameters nor the handoff store
// identify the order: stale state, the customer restarts the flow.
var ErrUnknownOrder = errors.New("payment: unknown order, please rebook")

// ErrPaymentFailed reports a declined or aborted gateway payment.
var ErrPaymentFailed = errors.New("payment: gateway reported failure")

// PaymentsBackend creates gateway URLs.
type PaymentsBackend interface {
	CreatePayment(ctx context.Context, input backend.CreatePaymentInput) (string, error)
	CreateComboPayment(ctx context.Context, input map[string]any) (string, error)
	CreateSubscriptionPayment(ctx context.Context, subscriptionID int64) (string, error)
}

// HandoffStore is the slice of the handoff store the flow uses.
type HandoffStore interface {
	SavePaymentOrder(ctx context.Context, order models.PaymentOrder) error
	PaymentOrder(ctx context.Context, orderID string) (*models.PaymentOrder, error)
	DeletePaymentOrder(ctx context.Context, orderID string) error
	SaveReservationContext(ctx context.Context, rc models.ReservationContext) error
	ReservationContext(ctx context.Context, orderID string) (*models.ReservationContext, error)
}

// Service drives the redirect flow.
type Service struct {
	payments PaymentsBackend
	store    HandoffStore
	now      func() time.Time
	logger   *zap.Logger
}

// NewService builds the payment flow service. now may be nil.
func NewService(payments PaymentsBackend, store HandoffStore, now func() time.Time, logger *zap.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{payments: payments, store: store, now: now, logger: logger}
}

// BookingCheckout is everything needed to pay for a booking and later
// redeem the hold: the charger/port snapshot rides along so the post-payment
// page works even if the catalog is briefly unreachable.
type BookingCheckout struct {
	Booking     models.Booking
	Station     models.Station
	Charger     models.Charger
	Port        models.Port
	Amount      float64
	PricePerKWh float64
	BookingFee  float64
	CompanyID   int64
	VehicleID   int64
	ReturnURL   string
}

// BeginBookingPayment creates the gateway URL for a booking and stashes the
// pending order under pay:<orderID>.
func (s *Service) BeginBookingPayment(ctx context.Context, checkout BookingCheckout) (*models.PaymentOrder, error) {
	orderID := uuid.NewString()

	url, err := s.payments.CreatePayment(ctx, backend.CreatePaymentInput{
		OrderID:   orderID,
		Amount:    checkout.Amount,
		BookingID: checkout.Booking.ID,
		ReturnURL: checkout.ReturnURL,
	})
	if err != nil {
		return nil, err
	}

	order := models.PaymentOrder{
		OrderID:    orderID,
		Amount:     checkout.Amount,
		BookingID:  checkout.Booking.ID,
		PaymentURL: url,
		CreatedAt:  s.now(),
	}
	if err := s.store.SavePaymentOrder(ctx, order); err != nil {
		return nil, err
	}

	// The snapshot is bound now, before the browser leaves; paidAt is
	// corrected from the gateway return.
	rc := models.ReservationContext{
		OrderID:     orderID,
		BookingID:   checkout.Booking.ID,
		CustomerID:  checkout.Booking.CustomerID,
		CompanyID:   checkout.CompanyID,
		VehicleID:   checkout.VehicleID,
		HoldMinutes: models.DefaultHoldMinutes,
		Station:     checkout.Station,
		Charger:     checkout.Charger,
		Port:        checkout.Port,
		PricePerKWh: checkout.PricePerKWh,
		BookingFee:  checkout.BookingFee,
	}
	if err := s.store.SaveReservationContext(ctx, rc); err != nil {
		return nil, err
	}

	s.logger.Info("payment started",
		zap.String("order_id", orderID),
		zap.Int64("booking_id", checkout.Booking.ID),
		zap.Float64("amount", checkout.Amount),
	)
	return &order, nil
}

// BeginInvoicePayment creates a gateway URL to settle a charging invoice.
func (s *Service) BeginInvoicePayment(ctx context.Context, invoiceID int64, amount float64, returnURL string) (*models.PaymentOrder, error) {
	orderID := uuid.NewString()
	url, err := s.payments.CreatePayment(ctx, backend.CreatePaymentInput{
		OrderID:   orderID,
		Amount:    amount,
		InvoiceID: invoiceID,
		ReturnURL: returnURL,
	})
	if err != nil {
		return nil, err
	}
	order := models.PaymentOrder{
		OrderID:    orderID,
		Amount:     amount,
		InvoiceID:  invoiceID,
		PaymentURL: url,
		CreatedAt:  s.now(),
	}
	if err := s.store.SavePaymentOrder(ctx, order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ComboCheckout settles several invoices (optionally plus a subscription
// charge) through one gateway URL.
type ComboCheckout struct {
	InvoiceIDs     []int64
	SubscriptionID int64
	Amount         float64
	ReturnURL      string
}

// BeginComboPayment creates one gateway URL covering every item in the
// checkout.
func (s *Service) BeginComboPayment(ctx context.Context, checkout ComboCheckout) (*models.PaymentOrder, error) {
	orderID := uuid.NewString()
	payload := map[string]any{
		"orderId":    orderID,
		"invoiceIds": checkout.InvoiceIDs,
		"amount":     checkout.Amount,
	}
	if checkout.SubscriptionID != 0 {
		payload["subscriptionId"] = checkout.SubscriptionID
	}
	if checkout.ReturnURL != "" {
		payload["returnUrl"] = checkout.ReturnURL
	}

	url, err := s.payments.CreateComboPayment(ctx, payload)
	if err != nil {
		return nil, err
	}
	order := models.PaymentOrder{
		OrderID:        orderID,
		Amount:         checkout.Amount,
		SubscriptionID: checkout.SubscriptionID,
		PaymentURL:     url,
		CreatedAt:      s.now(),
	}
	if err := s.store.SavePaymentOrder(ctx, order); err != nil {
		return nil, err
	}
	return &order, nil
}

// BeginSubscriptionRenewal creates a gateway URL to renew a subscription.
func (s *Service) BeginSubscriptionRenewal(ctx context.Context, subscriptionID int64) (*models.PaymentOrder, error) {
	orderID := uuid.NewString()
	url, err := s.payments.CreateSubscriptionPayment(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	order := models.PaymentOrder{
		OrderID:        orderID,
		SubscriptionID: subscriptionID,
		PaymentURL:     url,
		CreatedAt:      s.now(),
	}
	if err := s.store.SavePaymentOrder(ctx, order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Resume handles the browser's return from the gateway. It resolves the
// order (query parameters first, cached state as fallback), anchors paidAt,
// and discards the ephemeral payment order. The reservation hold countdown
// starts from the returned context.
func (s *Service) Resume(ctx context.Context, params ReturnParams) (*models.PaymentOrder, error) {
	if params.OrderID == "" {
		return nil, ErrUnknownOrder
	}

	order, err := s.store.PaymentOrder(ctx, params.OrderID)
	if err != nil {
		if errors.Is(err, handoff.ErrNotFound) {
			return nil, ErrUnknownOrder
		}
		return nil, err
	}

	// The order is ephemeral: discard it whatever the gateway outcome.
	if err := s.store.DeletePaymentOrder(ctx, params.OrderID); err != nil {
		s.logger.Warn("failed to discard payment order", zap.String("order_id", params.OrderID), zap.Error(err))
	}

	if !params.Success {
		s.logger.Info("payment failed at gateway",
			zap.String("order_id", params.OrderID),
			zap.String("response_code", params.ResponseCode),
		)
		return order, ErrPaymentFailed
	}

	if order.BookingID != 0 {
		if err := s.anchorPaidAt(ctx, params); err != nil {
			return nil, err
		}
	}

	s.logger.Info("payment completed",
		zap.String("order_id", params.OrderID),
		zap.Float64("amount", params.Amount),
	)
	return order, nil
}

// anchorPaidAt fixes the hold countdown start in the bound reservation
// context. The gateway timestamp wins when present, else the resume wall
// clock.
func (s *Service) anchorPaidAt(ctx context.Context, params ReturnParams) error {
	rc, err := s.store.ReservationContext(ctx, params.OrderID)
	if err != nil {
		if errors.Is(err, handoff.ErrNotFound) {
			return ErrUnknownOrder
		}
		return err
	}
	paidAt := params.PaidAt
	if paidAt.IsZero() {
		paidAt = s.now()
	}
	rc.PaidAt = paidAt
	return s.store.SaveReservationContext(ctx, *rc)
}
