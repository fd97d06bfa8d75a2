// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

// Package sensor defines the boundary to the current/voltage/power sensing
// layer and provides a simulated backend plus the history accumulator that
// derives the optional VE.Direct telemetry fields.
package sensor

import "github.com/openshunt/openshunt/pkg/vedirect"

// Backend abstracts one shunt sensor. Hardware backends (INA228/226/219
// class parts) live behind this interface; the bridge only ever sees
// snapshots taken from it.
type Backend interface {
	// Begin probes the sensor. It returns an error when no device answers.
	Begin() error

	// Latest readings.
	Current() float64     // A, negative while discharging
	BusVoltage() float64  // V
	Power() float64       // W
	WattHour() float64    // accumulated Wh
	Temperature() float64 // °C
	Connected() bool

	// SetShunt configures the shunt: full-scale current in amperes and
	// resistance in ohms.
	SetShunt(maxCurrent, shuntResistance float64) error

	// ResetEnergy clears the energy/charge accumulation.
	ResetEnergy()

	// CycleAveraging advances to the next averaging profile;
	// AveragingString names the active one for display.
	CycleAveraging()
	AveragingString() string

	// DriverName is a short name for status lines, e.g. "INA228".
	DriverName() string
}

// Snapshot reads the backend into a telemetry state with all optional
// fields unset; callers layer history data on top via History.Observe.
func Snapshot(b Backend) vedirect.TelemetryState {
	st := vedirect.NewTelemetryState()
	st.Voltage = b.BusVoltage()
	st.Current = b.Current()
	st.Power = b.Power()
	st.Energy = b.WattHour()
	st.Temperature = b.Temperature()
	st.Connected = b.Connected()
	return st
}
