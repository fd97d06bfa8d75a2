// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

package sensor

import (
	"math"

	"github.com/openshunt/openshunt/pkg/vedirect"
)

// fullThresholdSOC is the state of charge, in percent, at or above which
// the battery counts as fully charged for the H12 timer.
const fullThresholdSOC = 99.5

// History accumulates the optional VE.Direct telemetry fields the sensor
// itself does not track: min/max observed voltage, cumulative ampere-hours
// charged and discharged, and seconds since the last full charge.
//
// Feed it successive snapshots via Observe; it updates its internal totals
// from the elapsed time between observations and writes the derived fields
// back into the snapshot.
type History struct {
	clock vedirect.Clock

	minVoltage   float64
	maxVoltage   float64
	ahCharged    float64
	ahDischarged float64

	lastMillis  int64
	fullAtMilli int64 // clock value of the last full charge; -1 = never
}

// NewHistory creates an empty accumulator (nil clock for the default).
func NewHistory(clock vedirect.Clock) *History {
	if clock == nil {
		clock = vedirect.DefaultClock()
	}
	return &History{
		clock:       clock,
		minVoltage:  math.NaN(),
		maxVoltage:  math.NaN(),
		lastMillis:  -1,
		fullAtMilli: -1,
	}
}

// Observe folds one snapshot into the running history and fills the
// snapshot's optional fields in place. Disconnected snapshots advance time
// but contribute no readings.
func (h *History) Observe(st *vedirect.TelemetryState) {
	now := h.clock()

	if st.Connected {
		if math.IsNaN(h.minVoltage) || st.Voltage < h.minVoltage {
			h.minVoltage = st.Voltage
		}
		if math.IsNaN(h.maxVoltage) || st.Voltage > h.maxVoltage {
			h.maxVoltage = st.Voltage
		}

		if h.lastMillis >= 0 && now > h.lastMillis {
			ah := math.Abs(st.Current) * float64(now-h.lastMillis) / 3600000
			if st.Current >= 0 {
				h.ahCharged += ah
			} else {
				h.ahDischarged += ah
			}
		}

		if !math.IsNaN(st.SOC) && st.SOC >= fullThresholdSOC {
			h.fullAtMilli = now
		}
	}
	h.lastMillis = now

	st.MinVoltage = h.minVoltage
	st.MaxVoltage = h.maxVoltage
	st.AhCharged = h.ahCharged
	st.AhDischarged = h.ahDischarged
	if h.fullAtMilli >= 0 {
		st.SecondsSinceFull = int32((now - h.fullAtMilli) / 1000)
	} else {
		st.SecondsSinceFull = -1
	}
}

// Reset clears all accumulated history, e.g. alongside an energy reset.
func (h *History) Reset() {
	h.minVoltage = math.NaN()
	h.maxVoltage = math.NaN()
	h.ahCharged = 0
	h.ahDischarged = 0
	h.fullAtMilli = -1
}
