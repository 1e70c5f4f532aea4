package charging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"chargeflow/internal/api"
	"chargeflow/internal/backend"
	"chargeflow/internal/models"
)

// ErrNoActiveSession is returned for snapshot/stop requests on unknown
// session ids.
var ErrNoActiveSession = errors.New("charging: no active session")

// SessionsBackend is the slice of the backend sessions client the service
// uses.
type SessionsBackend interface {
	StartSession(ctx context.Context, input backend.StartSessionInput) (*models.ChargingSession, error)
	StartGuestSession(ctx context.Context, input backend.GuestStartInput) (*models.ChargingSession, error)
	Session(ctx context.Context, id int64) (*models.ChargingSession, error)
	StopSession(ctx context.Context, id int64) (*models.ChargingSession, error)
}

// Defaults carry the deployment-wide monitor parameters.
type Defaults struct {
	PenaltyPerMin   float64
	GraceSeconds    int
	SpeedMultiplier float64
	PollInterval    time.Duration
}

// StartOptions carry the per-session parameters supplied by the UI.
type StartOptions struct {
	InitialBatteryPct  float64
	TargetBatteryPct   float64
	BatteryCapacityKWh float64
}

// Active pairs a backend session with its local monitor.
type Active struct {
	Session models.ChargingSession
	OrderID string
	monitor *Monitor
}

// Service owns the monitors for all sessions this gateway instance tracks
// and keeps their reported energy fresh from the backend.
type Service struct {
	sessions SessionsBackend
	defaults Defaults
	now      func() time.Time
	logger   *zap.Logger

	mu     sync.Mutex
	active map[int64]*Active
	orders map[string]int64
}

// NewService builds the charging service. now may be nil for the real clock.
func NewService(sessions SessionsBackend, defaults Defaults, now func() time.Time, logger *zap.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	if defaults.PollInterval <= 0 {
		defaults.PollInterval = 5 * time.Second
	}
	return &Service{
		sessions: sessions,
		defaults: defaults,
		now:      now,
		logger:   logger,
		active:   make(map[int64]*Active),
		orders:   make(map[string]int64),
	}
}

// StartFromHold starts charging for a redeemed reservation. Backend
// conflicts (port busy, session already active, port locked) are surfaced
// with the backend's own message, cleaned of stack noise; there is no
// automatic retry.
func (s *Service) StartFromHold(ctx context.Context, rc models.ReservationContext, opts StartOptions) (*Active, error) {
	session, err := s.sessions.StartSession(ctx, backend.StartSessionInput{
		CustomerID: rc.CustomerID,
		CompanyID:  rc.CompanyID,
		VehicleID:  rc.VehicleID,
		BookingID:  rc.BookingID,
		PortID:     rc.Port.ID,
	})
	if err != nil {
		return nil, startError(err)
	}

	active := s.register(session, rc.OrderID, Config{
		StartedAt:          s.startTime(session),
		InitialBatteryPct:  opts.InitialBatteryPct,
		TargetBatteryPct:   opts.TargetBatteryPct,
		BatteryCapacityKWh: opts.BatteryCapacityKWh,
		ChargePowerKW:      rc.Port.MaxPowerKW,
		PricePerKWh:        rc.PricePerKWh,
		PenaltyPerMin:      s.defaults.PenaltyPerMin,
		GraceSeconds:       s.defaults.GraceSeconds,
		SpeedMultiplier:    s.defaults.SpeedMultiplier,
		BookingFee:         rc.BookingFee,
	})

	s.logger.Info("charging session started",
		zap.Int64("session_id", session.ID),
		zap.Int64("port_id", rc.Port.ID),
		zap.String("order_id", rc.OrderID),
	)
	return active, nil
}

// StartGuest starts charging for an unregistered vehicle.
func (s *Service) StartGuest(ctx context.Context, input backend.GuestStartInput, pricePerKWh, chargePowerKW float64, opts StartOptions) (*Active, error) {
	session, err := s.sessions.StartGuestSession(ctx, input)
	if err != nil {
		return nil, startError(err)
	}

	active := s.register(session, "", Config{
		StartedAt:          s.startTime(session),
		InitialBatteryPct:  opts.InitialBatteryPct,
		TargetBatteryPct:   opts.TargetBatteryPct,
		BatteryCapacityKWh: opts.BatteryCapacityKWh,
		ChargePowerKW:      chargePowerKW,
		PricePerKWh:        pricePerKWh,
		PenaltyPerMin:      s.defaults.PenaltyPerMin,
		GraceSeconds:       s.defaults.GraceSeconds,
		SpeedMultiplier:    s.defaults.SpeedMultiplier,
	})

	s.logger.Info("guest charging session started",
		zap.Int64("session_id", session.ID),
		zap.Int64("port_id", input.PortID),
		zap.String("plate", input.LicensePlate),
	)
	return active, nil
}

func (s *Service) startTime(session *models.ChargingSession) time.Time {
	if !session.StartedAt.IsZero() {
		return session.StartedAt
	}
	return s.now()
}

func (s *Service) register(session *models.ChargingSession, orderID string, cfg Config) *Active {
	active := &Active{
		Session: *session,
		OrderID: orderID,
		monitor: NewMonitor(cfg),
	}
	s.mu.Lock()
	s.active[session.ID] = active
	if orderID != "" {
		s.orders[orderID] = session.ID
	}
	s.mu.Unlock()
	return active
}

func (s *Service) lookup(sessionID int64) (*Active, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active, ok := s.active[sessionID]
	return active, ok
}

// SessionIDForOrder maps an order id to its running session.
func (s *Service) SessionIDForOrder(orderID string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.orders[orderID]
	return id, ok
}

// Snapshot returns the current derived view of a session.
func (s *Service) Snapshot(sessionID int64) (Snapshot, error) {
	active, ok := s.lookup(sessionID)
	if !ok {
		return Snapshot{}, ErrNoActiveSession
	}
	return active.monitor.Snapshot(s.now()), nil
}

// Stop ends the session with the backend, freezes the monitor and returns
// the final snapshot for invoice assembly. The local record is not mutated
// after this point.
func (s *Service) Stop(ctx context.Context, sessionID int64) (Snapshot, error) {
	active, ok := s.lookup(sessionID)
	if !ok {
		return Snapshot{}, ErrNoActiveSession
	}

	ended, err := s.sessions.StopSession(ctx, sessionID)
	if err != nil {
		return Snapshot{}, startError(err)
	}
	if ended.EnergyUsedKWh > 0 {
		active.monitor.SetReportedEnergy(ended.EnergyUsedKWh)
	}

	final := active.monitor.Stop(s.now())

	s.mu.Lock()
	delete(s.active, sessionID)
	if active.OrderID != "" {
		delete(s.orders, active.OrderID)
	}
	s.mu.Unlock()

	s.logger.Info("charging session stopped",
		zap.Int64("session_id", sessionID),
		zap.Float64("energy_kwh", final.EnergyUsedKWh),
		zap.Float64("total", final.TotalPayable),
	)
	return final, nil
}

// Run polls the backend for measured energy on all active sessions until ctx
// is done. A backend-side completion also terminates the local monitor.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.defaults.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Service) refresh(ctx context.Context) {
	s.mu.Lock()
	ids := make([]int64, 0, len(s.active))
	for id := range s.active {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		session, err := s.sessions.Session(ctx, id)
		if err != nil {
			s.logger.Warn("session refresh failed", zap.Int64("session_id", id), zap.Error(err))
			continue
		}
		active, ok := s.lookup(id)
		if !ok {
			continue
		}
		if session.EnergyUsedKWh > 0 {
			active.monitor.SetReportedEnergy(session.EnergyUsedKWh)
		}
		if session.Status == models.SessionStatusCompleted || session.EndedAt != nil {
			active.monitor.Stop(s.now())
		}
	}
}

// startError keeps *api.Error intact for status-aware callers but cleans the
// message the user will see.
func startError(err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return &api.Error{Status: apiErr.Status, Message: api.CleanMessage(apiErr.Message)}
	}
	return fmt.Errorf("charging: %w", err)
}
