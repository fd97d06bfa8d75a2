// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

package sensor

import (
	"math"
	"sync"

	"github.com/openshunt/openshunt/pkg/vedirect"
)

// Averaging profiles, mirroring the conversion-averaging steps of INA-class
// parts.
var averagingProfiles = []string{"1", "4", "16", "64", "128", "256"}

// Sim is a deterministic simulated shunt backend. It models a 12 V battery
// under a slowly oscillating load: roughly a minute of discharge followed
// by a minute of charge, with voltage sagging and recovering accordingly.
// Energy accumulates from the simulated power between reads.
//
// Sim lets the bridge run end-to-end with no I2C hardware attached.
type Sim struct {
	mu sync.Mutex

	clock       vedirect.Clock
	nominal     float64 // resting voltage, V
	loadAmps    float64 // load oscillation amplitude, A
	maxCurrent  float64
	shuntOhms   float64
	energyWh    float64
	lastMillis  int64
	avgIndex    int
	began       bool
}

// NewSim creates a simulator driven by the given clock (nil for the default
// monotonic clock).
func NewSim(clock vedirect.Clock) *Sim {
	if clock == nil {
		clock = vedirect.DefaultClock()
	}
	return &Sim{
		clock:      clock,
		nominal:    12.8,
		loadAmps:   8,
		maxCurrent: 50,
		shuntOhms:  0.0015,
		lastMillis: -1,
	}
}

// Begin implements Backend. The simulator is always present.
func (s *Sim) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.began = true
	return nil
}

func (s *Sim) phase() float64 {
	// One full charge/discharge swing every two minutes.
	return 2 * math.Pi * float64(s.clock()) / 120000
}

// Current implements Backend.
func (s *Sim) Current() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return -s.loadAmps * math.Sin(s.phase())
}

// BusVoltage implements Backend. Voltage sags under discharge and rises
// under charge.
func (s *Sim) BusVoltage() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nominal - 0.4*math.Sin(s.phase())
}

// Power implements Backend.
func (s *Sim) Power() float64 {
	return s.BusVoltage() * s.Current()
}

// WattHour implements Backend. Accumulation integrates |P| over the time
// elapsed since the previous read.
func (s *Sim) WattHour() float64 {
	p := math.Abs(s.Power())

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	if s.lastMillis >= 0 && now > s.lastMillis {
		s.energyWh += p * float64(now-s.lastMillis) / 3600000
	}
	s.lastMillis = now
	return s.energyWh
}

// Temperature implements Backend.
func (s *Sim) Temperature() float64 {
	return 25 + 0.5*math.Sin(s.phase()/3)
}

// Connected implements Backend.
func (s *Sim) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.began
}

// SetShunt implements Backend.
func (s *Sim) SetShunt(maxCurrent, shuntResistance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxCurrent = maxCurrent
	s.shuntOhms = shuntResistance
	return nil
}

// ResetEnergy implements Backend.
func (s *Sim) ResetEnergy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.energyWh = 0
}

// CycleAveraging implements Backend.
func (s *Sim) CycleAveraging() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.avgIndex = (s.avgIndex + 1) % len(averagingProfiles)
}

// AveragingString implements Backend.
func (s *Sim) AveragingString() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return averagingProfiles[s.avgIndex] + " samples"
}

// DriverName implements Backend.
func (s *Sim) DriverName() string {
	return "SIM"
}
