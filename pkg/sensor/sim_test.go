// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

package sensor

import (
	"math"
	"testing"
)

func TestSim_ConnectedAfterBegin(t *testing.T) {
	clk := &fakeClock{}
	s := NewSim(clk.Clock())

	if s.Connected() {
		t.Error("sim must report disconnected before Begin")
	}
	if err := s.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if !s.Connected() {
		t.Error("sim must report connected after Begin")
	}
}

func TestSim_RestingStateAtPhaseZero(t *testing.T) {
	clk := &fakeClock{}
	s := NewSim(clk.Clock())

	if got := s.Current(); got != 0 {
		t.Errorf("current at phase zero: expected 0, got %v", got)
	}
	if got := s.BusVoltage(); got != 12.8 {
		t.Errorf("voltage at phase zero: expected 12.8, got %v", got)
	}
}

func TestSim_DischargeSagsVoltage(t *testing.T) {
	clk := &fakeClock{}
	s := NewSim(clk.Clock())

	// A quarter period in: peak discharge.
	clk.Advance(30000)
	if got := s.Current(); math.Abs(got+8) > 1e-9 {
		t.Errorf("peak discharge: expected -8 A, got %v", got)
	}
	if got := s.BusVoltage(); math.Abs(got-12.4) > 1e-9 {
		t.Errorf("sagged voltage: expected 12.4 V, got %v", got)
	}
	if got := s.Power(); got >= 0 {
		t.Errorf("discharge power must be negative, got %v", got)
	}

	// Three quarters in: peak charge.
	clk.Advance(60000)
	if got := s.Current(); math.Abs(got-8) > 1e-9 {
		t.Errorf("peak charge: expected 8 A, got %v", got)
	}
	if got := s.BusVoltage(); math.Abs(got-13.2) > 1e-9 {
		t.Errorf("charging voltage: expected 13.2 V, got %v", got)
	}
}

func TestSim_EnergyAccumulatesAndResets(t *testing.T) {
	clk := &fakeClock{}
	s := NewSim(clk.Clock())

	// Anchor the integrator at peak discharge, then hold one hour.
	clk.Advance(30000)
	s.WattHour()

	clk.Advance(3600000)
	got := s.WattHour()
	if got <= 0 {
		t.Fatalf("expected accumulated energy, got %v", got)
	}

	s.ResetEnergy()
	clk.Advance(1)
	if got := s.WattHour(); got > 1e-3 {
		t.Errorf("reset left %v Wh", got)
	}
}

func TestSim_AveragingCycles(t *testing.T) {
	s := NewSim((&fakeClock{}).Clock())

	first := s.AveragingString()
	seen := map[string]bool{first: true}
	for i := 0; i < len(averagingProfiles)-1; i++ {
		s.CycleAveraging()
		seen[s.AveragingString()] = true
	}
	if len(seen) != len(averagingProfiles) {
		t.Errorf("expected %d distinct profiles, got %d", len(averagingProfiles), len(seen))
	}

	// One more cycle wraps back to the start.
	s.CycleAveraging()
	if s.AveragingString() != first {
		t.Errorf("expected wrap to %q, got %q", first, s.AveragingString())
	}
}

func TestSim_SetShunt(t *testing.T) {
	s := NewSim((&fakeClock{}).Clock())
	if err := s.SetShunt(100, 0.0005); err != nil {
		t.Fatalf("SetShunt: %v", err)
	}
}

func TestSnapshot(t *testing.T) {
	clk := &fakeClock{now: 30000}
	s := NewSim(clk.Clock())
	if err := s.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	st := Snapshot(s)
	if !st.Connected {
		t.Error("snapshot must carry connectivity")
	}
	if math.Abs(st.Voltage-12.4) > 1e-9 {
		t.Errorf("voltage: expected 12.4, got %v", st.Voltage)
	}
	if math.Abs(st.Current+8) > 1e-9 {
		t.Errorf("current: expected -8, got %v", st.Current)
	}
	if !math.IsNaN(st.SOC) {
		t.Errorf("sim has no SOC; expected NaN, got %v", st.SOC)
	}
}
