package hold

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"chargeflow/internal/handoff"
	"chargeflow/internal/models"
)

// Destination tells the UI where the flow continues after entering or
// redeeming a hold.
type Destination string

const (
	DestCountdown     Destination = "countdown"
	DestMonitor       Destination = "monitor"
	DestChargePayment Destination = "charge-payment"
)

// ErrMissingContext means no reservation context exists for the order id:
// stale client state, the customer must restart the booking flow.
var ErrMissingContext = errors.New("hold: no reservation context for order, please rebook")

// ContextStore is the slice of the handoff store the manager needs.
type ContextStore interface {
	ReservationContext(ctx context.Context, orderID string) (*models.ReservationContext, error)
	Lock(ctx context.Context, orderID string) (string, error)
	SetLock(ctx context.Context, orderID, state string) error
}

// Transition is one recorded state-machine edge, persisted at transition
// boundaries only.
type Transition struct {
	OrderID    string
	FromPhase  Phase
	ToPhase    Phase
	Identifier string
	OccurredAt time.Time
}

// TransitionLog durably records transitions.
type TransitionLog interface {
	RecordTransition(ctx context.Context, t Transition) error
}

// Manager drives the hold state machine against the handoff store and the
// durable transition log.
type Manager struct {
	store  ContextStore
	log    TransitionLog
	now    func() time.Time
	logger *zap.Logger
}

// NewManager builds a manager. now may be nil for the real clock.
func NewManager(store ContextStore, log TransitionLog, now func() time.Time, logger *zap.Logger) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{store: store, log: log, now: now, logger: logger}
}

// EnterResult is the outcome of arriving at the post-payment page.
type EnterResult struct {
	Destination Destination
	Hold        Hold
}

// Enter resolves what the post-payment page should show for an order. A lock
// already in started/done short-circuits straight downstream so the hold can
// never be redeemed twice.
func (m *Manager) Enter(ctx context.Context, orderID string) (EnterResult, error) {
	lock, err := m.store.Lock(ctx, orderID)
	if err != nil {
		return EnterResult{}, err
	}
	switch lock {
	case handoff.LockStarted:
		return m.shortCircuit(ctx, orderID, DestMonitor)
	case handoff.LockDone:
		return m.shortCircuit(ctx, orderID, DestChargePayment)
	}

	rc, err := m.store.ReservationContext(ctx, orderID)
	if err != nil {
		if errors.Is(err, handoff.ErrNotFound) {
			return EnterResult{}, ErrMissingContext
		}
		return EnterResult{}, err
	}

	h := Begin(*rc)
	if expired := h.Expire(m.now()); expired.Phase == PhaseExpired {
		m.record(ctx, Transition{
			OrderID:    orderID,
			FromPhase:  PhaseAwaitingRedeem,
			ToPhase:    PhaseExpired,
			OccurredAt: m.now(),
		})
		return EnterResult{Destination: DestCountdown, Hold: expired}, nil
	}
	return EnterResult{Destination: DestCountdown, Hold: h}, nil
}

func (m *Manager) shortCircuit(ctx context.Context, orderID string, dest Destination) (EnterResult, error) {
	h := Hold{Phase: PhaseRedeemed}
	if rc, err := m.store.ReservationContext(ctx, orderID); err == nil {
		h.Context = *rc
	}
	return EnterResult{Destination: dest, Hold: h}, nil
}

// Redeem applies the customer's identifier to the hold. On success the
// booking lock moves to started and the caller navigates to the charging
// monitor carrying the bound context. A repeat call for an already redeemed
// order returns the same destination without re-prompting.
func (m *Manager) Redeem(ctx context.Context, orderID, identifier string) (EnterResult, error) {
	lock, err := m.store.Lock(ctx, orderID)
	if err != nil {
		return EnterResult{}, err
	}
	switch lock {
	case handoff.LockStarted:
		return m.shortCircuit(ctx, orderID, DestMonitor)
	case handoff.LockDone:
		return m.shortCircuit(ctx, orderID, DestChargePayment)
	}

	rc, err := m.store.ReservationContext(ctx, orderID)
	if err != nil {
		if errors.Is(err, handoff.ErrNotFound) {
			return EnterResult{}, ErrMissingContext
		}
		return EnterResult{}, err
	}

	now := m.now()
	next, err := Begin(*rc).Redeem(identifier, now)
	if err != nil {
		if errors.Is(err, ErrExpired) {
			m.record(ctx, Transition{
				OrderID:    orderID,
				FromPhase:  PhaseAwaitingRedeem,
				ToPhase:    PhaseExpired,
				Identifier: identifier,
				OccurredAt: now,
			})
		}
		return EnterResult{}, err
	}

	if err := m.store.SetLock(ctx, orderID, handoff.LockStarted); err != nil {
		return EnterResult{}, err
	}
	m.record(ctx, Transition{
		OrderID:    orderID,
		FromPhase:  PhaseAwaitingRedeem,
		ToPhase:    PhaseRedeemed,
		Identifier: identifier,
		OccurredAt: now,
	})

	m.logger.Info("reservation hold redeemed",
		zap.String("order_id", orderID),
		zap.Int64("port_id", rc.Port.ID),
	)
	return EnterResult{Destination: DestMonitor, Hold: next}, nil
}

// Abort releases a started lock when charging could not actually begin, so
// the customer can redeem again instead of being short-circuited to a
// monitor that has no session.
func (m *Manager) Abort(ctx context.Context, orderID string) error {
	return m.store.SetLock(ctx, orderID, handoff.LockNone)
}

// Complete moves the lock to done once charging finished and the flow moved
// on to charge payment. Re-entry after this lands on the payment page.
func (m *Manager) Complete(ctx context.Context, orderID string) error {
	return m.store.SetLock(ctx, orderID, handoff.LockDone)
}

// record is best-effort: losing an audit row must not fail the flow.
func (m *Manager) record(ctx context.Context, t Transition) {
	if m.log == nil {
		return
	}
	if err := m.log.RecordTransition(ctx, t); err != nil {
		m.logger.Warn("failed to record hold transition", zap.Error(err), zap.String("order_id", t.OrderID))
	}
}
