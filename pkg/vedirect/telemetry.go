// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

package vedirect

import "math"

// TelemetryState is the per-cycle sensor snapshot the bridge republishes.
// It is supplied by the sensor layer each Update call and is read-only to
// this package.
//
// Optional float fields use NaN when unknown; SecondsSinceFull uses -1.
// Use NewTelemetryState to get a state with all optionals unset.
type TelemetryState struct {
	Voltage     float64 // battery voltage, V
	Current     float64 // shunt current, A (negative = discharge)
	Power       float64 // W
	Energy      float64 // accumulated energy, Wh; non-decreasing until reset
	Temperature float64 // °C
	Connected   bool    // sensor present and responding

	SOC      float64 // state of charge, percent; NaN if unknown
	Capacity float64 // rated capacity, Ah; NaN if not configured

	MinVoltage   float64 // minimum observed voltage, V; NaN if never seen
	MaxVoltage   float64 // maximum observed voltage, V; NaN if never seen
	AhCharged    float64 // cumulative ampere-hours charged
	AhDischarged float64 // cumulative ampere-hours discharged

	SecondsSinceFull int32 // seconds since last full charge; -1 = unknown
}

// NewTelemetryState returns a zeroed snapshot with every optional field
// marked unknown.
func NewTelemetryState() TelemetryState {
	nan := math.NaN()
	return TelemetryState{
		SOC:              nan,
		Capacity:         nan,
		MinVoltage:       nan,
		MaxVoltage:       nan,
		SecondsSinceFull: -1,
	}
}
