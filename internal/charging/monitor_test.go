package charging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testConfig(startedAt time.Time) Config {
	return Config{
		StartedAt:          startedAt,
		InitialBatteryPct:  20,
		TargetBatteryPct:   80,
		BatteryCapacityKWh: 60,
		ChargePowerKW:      30,
		PricePerKWh:        5000,
		PenaltyPerMin:      1000,
		GraceSeconds:       300,
		SpeedMultiplier:    1,
	}
}

func TestIdlePenaltyGraceBoundary(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	m := NewMonitor(testConfig(start))

	tests := []struct {
		name    string
		elapsed time.Duration
		want    float64
	}{
		{"well inside grace", 2 * time.Minute, 0},
		{"at grace exactly", 300 * time.Second, 0},
		{"one second past grace", 301 * time.Second, 0},
		{"59s past grace", 359 * time.Second, 0},
		{"exactly one minute past grace", 360 * time.Second, 1000},
		{"just under two minutes past", 419 * time.Second, 1000},
		{"two minutes past grace", 420 * time.Second, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := m.Snapshot(start.Add(tt.elapsed))
			assert.Equal(t, tt.want, snap.IdlePenalty)
		})
	}
}

func TestIdlePenaltyUsesRealTimeNotDemoClock(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	cfg := testConfig(start)
	cfg.SpeedMultiplier = 60 // one real second renders as one session minute
	m := NewMonitor(cfg)

	// Ten real seconds: the visible clock shows ten minutes but the penalty
	// clock is still far inside the 300s grace window.
	snap := m.Snapshot(start.Add(10 * time.Second))
	assert.Equal(t, 10*time.Minute, snap.Elapsed)
	assert.Equal(t, float64(0), snap.IdlePenalty)
}

func TestEnergyAndCostDerivation(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	m := NewMonitor(testConfig(start))

	// 30 kW for one hour = 30 kWh at 5000 per kWh.
	snap := m.Snapshot(start.Add(time.Hour))
	assert.InDelta(t, 30, snap.EnergyUsedKWh, 1e-9)
	assert.InDelta(t, 150000, snap.EnergyCost, 1e-6)
}

func TestEnergyCappedAtTargetBattery(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	m := NewMonitor(testConfig(start))

	// 20% → 80% of 60 kWh needs 36 kWh; ten hours of charging cannot exceed it.
	snap := m.Snapshot(start.Add(10 * time.Hour))
	assert.InDelta(t, 36, snap.EnergyUsedKWh, 1e-9)
	assert.True(t, snap.TargetReached)
	assert.InDelta(t, 80, snap.BatteryPct, 1e-9)
}

func TestReportedEnergyOverridesEstimate(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	m := NewMonitor(testConfig(start))

	m.SetReportedEnergy(12.5)
	snap := m.Snapshot(start.Add(time.Hour))
	assert.InDelta(t, 12.5, snap.EnergyUsedKWh, 1e-9)
	assert.InDelta(t, 62500, snap.EnergyCost, 1e-6)
}

func TestStopFreezesSnapshot(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	m := NewMonitor(testConfig(start))

	stopAt := start.Add(30 * time.Minute)
	final := m.Stop(stopAt)
	assert.True(t, final.Stopped)
	assert.Equal(t, stopAt, final.EndedAt)

	// Later evaluations return the frozen values.
	later := m.Snapshot(start.Add(2 * time.Hour))
	assert.Equal(t, final.Elapsed, later.Elapsed)
	assert.Equal(t, final.EnergyUsedKWh, later.EnergyUsedKWh)
	assert.Equal(t, final.TotalPayable, later.TotalPayable)

	// Reported energy after stop is ignored.
	m.SetReportedEnergy(999)
	assert.Equal(t, final.EnergyUsedKWh, m.Snapshot(stopAt).EnergyUsedKWh)
}

func TestSnapshotRecomputesFromWallClock(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	m := NewMonitor(testConfig(start))

	// A large gap between evaluations (suspended tab) does not lose time:
	// elapsed is derived from the absolute timestamp, not accumulated ticks.
	assert.Equal(t, time.Minute, m.Snapshot(start.Add(time.Minute)).Elapsed)
	assert.Equal(t, 3*time.Hour, m.Snapshot(start.Add(3*time.Hour)).Elapsed)
}
