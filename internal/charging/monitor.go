// Package charging tracks one active charging session: elapsed time, energy,
// live cost and the over-stay idle penalty. All derived values are computed
// from absolute timestamps on every evaluation; the refresh interval is a
// rendering cadence, never the unit of billing.
package charging

import (
	"math"
	"sync"
	"time"
)

// Config fixes the parameters of one monitored session.
type Config struct {
	StartedAt          time.Time
	InitialBatteryPct  float64
	TargetBatteryPct   float64
	BatteryCapacityKWh float64
	ChargePowerKW      float64
	PricePerKWh        float64
	PenaltyPerMin      float64
	GraceSeconds       int
	// SpeedMultiplier scales the visible session clock for demo runs.
	// Production value is 1. Billing-relevant values never use it.
	SpeedMultiplier float64
	BookingFee      float64
}

func (c Config) multiplier() float64 {
	if c.SpeedMultiplier <= 0 {
		return 1
	}
	return c.SpeedMultiplier
}

// Snapshot is one derived view of the session.
type Snapshot struct {
	Elapsed       time.Duration `json:"elapsed"`
	RealElapsed   time.Duration `json:"realElapsed"`
	BatteryPct    float64       `json:"batteryPct"`
	EnergyUsedKWh float64       `json:"energyUsedKWh"`
	EnergyCost    float64       `json:"energyCost"`
	IdlePenalty   float64       `json:"idlePenalty"`
	BookingFee    float64       `json:"bookingFee"`
	TotalPayable  float64       `json:"totalPayable"`
	TargetReached bool          `json:"targetReached"`
	Stopped       bool          `json:"stopped"`
	StartedAt     time.Time     `json:"startedAt"`
	EndedAt       time.Time     `json:"endedAt,omitempty"`
}

// Monitor derives snapshots for one session. Energy is estimated from the
// charge power curve until the backend reports a measured value, which then
// takes precedence.
type Monitor struct {
	cfg Config

	mu             sync.Mutex
	reportedEnergy float64
	hasReported    bool
	stopped        bool
	stoppedAt      time.Time
}

// NewMonitor builds a monitor for a session started at cfg.StartedAt.
func NewMonitor(cfg Config) *Monitor {
	return &Monitor{cfg: cfg}
}

// SetReportedEnergy records a backend-measured energy value. Later
// snapshots use it instead of the power-curve estimate.
func (m *Monitor) SetReportedEnergy(kwh float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped || kwh < 0 {
		return
	}
	m.reportedEnergy = kwh
	m.hasReported = true
}

// Stop freezes the session at the given instant. Further snapshots return
// the frozen values; the final one is the invoice input and must not mutate.
func (m *Monitor) Stop(now time.Time) Snapshot {
	m.mu.Lock()
	if !m.stopped {
		m.stopped = true
		m.stoppedAt = now
	}
	stoppedAt := m.stoppedAt
	m.mu.Unlock()
	return m.Snapshot(stoppedAt)
}

// Snapshot derives the session view at the given wall-clock instant.
func (m *Monitor) Snapshot(now time.Time) Snapshot {
	m.mu.Lock()
	if m.stopped && now.After(m.stoppedAt) {
		now = m.stoppedAt
	}
	reported, hasReported := m.reportedEnergy, m.hasReported
	stopped, stoppedAt := m.stopped, m.stoppedAt
	m.mu.Unlock()

	real := now.Sub(m.cfg.StartedAt)
	if real < 0 {
		real = 0
	}
	scaled := time.Duration(float64(real) * m.cfg.multiplier())

	energy := m.estimateEnergy(scaled)
	if hasReported {
		energy = reported
	}

	batteryPct := m.cfg.InitialBatteryPct
	if m.cfg.BatteryCapacityKWh > 0 {
		batteryPct += energy / m.cfg.BatteryCapacityKWh * 100
	}
	if batteryPct > m.cfg.TargetBatteryPct && m.cfg.TargetBatteryPct > 0 {
		batteryPct = m.cfg.TargetBatteryPct
	}

	energyCost := energy * m.cfg.PricePerKWh
	penalty := m.idlePenalty(real)
	snap := Snapshot{
		Elapsed:       scaled,
		RealElapsed:   real,
		BatteryPct:    batteryPct,
		EnergyUsedKWh: energy,
		EnergyCost:    energyCost,
		IdlePenalty:   penalty,
		BookingFee:    m.cfg.BookingFee,
		TotalPayable:  energyCost + penalty + m.cfg.BookingFee,
		TargetReached: m.cfg.TargetBatteryPct > 0 && batteryPct >= m.cfg.TargetBatteryPct,
		Stopped:       stopped,
		StartedAt:     m.cfg.StartedAt,
	}
	if stopped {
		snap.EndedAt = stoppedAt
	}
	return snap
}

// estimateEnergy integrates the charge power over the scaled session clock,
// capped at the energy needed to reach the target battery level.
func (m *Monitor) estimateEnergy(scaled time.Duration) float64 {
	energy := m.cfg.ChargePowerKW * scaled.Hours()
	if m.cfg.BatteryCapacityKWh > 0 && m.cfg.TargetBatteryPct > m.cfg.InitialBatteryPct {
		limit := (m.cfg.TargetBatteryPct - m.cfg.InitialBatteryPct) / 100 * m.cfg.BatteryCapacityKWh
		if energy > limit {
			energy = limit
		}
	}
	if energy < 0 {
		energy = 0
	}
	return energy
}

// idlePenalty accrues one PenaltyPerMin unit per full minute of real elapsed
// time beyond the grace period. Real time, not the demo-scaled clock, so
// demo runs never distort fees. Exactly zero through graceSeconds; the first
// unit applies at graceSeconds+60s, not before.
func (m *Monitor) idlePenalty(real time.Duration) float64 {
	if m.cfg.PenaltyPerMin <= 0 {
		return 0
	}
	grace := time.Duration(m.cfg.GraceSeconds) * time.Second
	beyond := real - grace
	if beyond < time.Minute {
		return 0
	}
	units := math.Floor(beyond.Minutes())
	return units * m.cfg.PenaltyPerMin
}
