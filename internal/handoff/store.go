package handoff

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chargeflow/internal/models"
)

// Booking lock states persisted under bookingLocked:<orderID>. The lock is
// what makes redeem idempotent: once "started" the countdown page
// short-circuits to the monitor, once "done" to the charge payment page.
const (
	LockNone    = ""
	LockStarted = "started"
	LockDone    = "done"
)

// ErrNotFound indicates no handoff state exists for the order id.
var ErrNotFound = fmt.Errorf("handoff: not found")

// Store keeps the order-scoped ephemeral state that carries the flow across
// the payment-gateway redirect. Entries expire on their own; nothing here is
// a source of truth.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns a redis-backed handoff store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

func payKey(orderID string) string       { return fmt.Sprintf("pay:%s", orderID) }
func chargePayKey(orderID string) string { return fmt.Sprintf("chargepay:%s", orderID) }
func bookingLock(orderID string) string  { return fmt.Sprintf("bookingLocked:%s", orderID) }

// SavePaymentOrder stores the pending payment under pay:<orderID>.
func (s *Store) SavePaymentOrder(ctx context.Context, order models.PaymentOrder) error {
	return s.setJSON(ctx, payKey(order.OrderID), order)
}

// PaymentOrder loads the pending payment, ErrNotFound when absent.
func (s *Store) PaymentOrder(ctx context.Context, orderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if err := s.getJSON(ctx, payKey(orderID), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// DeletePaymentOrder discards the pending payment after the gateway redirect
// completes, success or failure.
func (s *Store) DeletePaymentOrder(ctx context.Context, orderID string) error {
	err := s.client.Del(ctx, payKey(orderID)).Err()
	if err == redis.Nil {
		return nil
	}
	return err
}

// SaveReservationContext stores the bound snapshot under chargepay:<orderID>.
func (s *Store) SaveReservationContext(ctx context.Context, rc models.ReservationContext) error {
	return s.setJSON(ctx, chargePayKey(rc.OrderID), rc)
}

// ReservationContext loads the bound snapshot, ErrNotFound when absent.
func (s *Store) ReservationContext(ctx context.Context, orderID string) (*models.ReservationContext, error) {
	var rc models.ReservationContext
	if err := s.getJSON(ctx, chargePayKey(orderID), &rc); err != nil {
		return nil, err
	}
	return &rc, nil
}

// SetLock records the booking lock state for the order.
func (s *Store) SetLock(ctx context.Context, orderID, state string) error {
	return s.client.Set(ctx, bookingLock(orderID), state, s.ttl).Err()
}

// Lock returns the booking lock state, LockNone when absent.
func (s *Store) Lock(ctx context.Context, orderID string) (string, error) {
	result, err := s.client.Get(ctx, bookingLock(orderID)).Result()
	if err == redis.Nil {
		return LockNone, nil
	}
	if err != nil {
		return LockNone, err
	}
	return result, nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

func (s *Store) getJSON(ctx context.Context, key string, out any) error {
	result, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(result), out)
}
