// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

package vedirect

import (
	"fmt"
	"math"
)

// Text-mode emitters. Each block is a sequence of "\r\n<label>\t<value>"
// fields ending with a Checksum field whose value is one raw byte chosen so
// every byte of the frame sums to 0 mod 256.

// SmallBlock formats the per-second Text telemetry frame.
func SmallBlock(st TelemetryState) []byte {
	buf := fmt.Appendf(nil, "\r\nPID\t0x%x", ProductID)
	buf = fmt.Appendf(buf, "\r\nV\t%d", roundTo(st.Voltage*1000))
	buf = fmt.Appendf(buf, "\r\nI\t%d", roundTo(st.Current*1000))
	buf = fmt.Appendf(buf, "\r\nP\t%d", roundTo(st.Power))

	// CE is approximated from accumulated energy and the present voltage;
	// it is not a true Coulomb count. Below 0.1 V the division is
	// meaningless and 0 is reported.
	ce := int64(0)
	if st.Voltage > 0.1 {
		ce = roundTo(st.Energy / st.Voltage * 1000)
	}
	buf = fmt.Appendf(buf, "\r\nCE\t%d", ce)

	// Non-authoritative SOC: with no real state of charge the device
	// reports full while the sensor is connected, empty otherwise.
	soc := st.SOC
	if math.IsNaN(soc) {
		if st.Connected {
			soc = 100
		} else {
			soc = 0
		}
	}
	buf = fmt.Appendf(buf, "\r\nSOC\t%d", roundTo(soc*10))

	buf = append(buf, "\r\nTTG\t-1"...)
	buf = append(buf, "\r\nAlarm\tOFF"...)
	buf = append(buf, "\r\nRelay\tOFF"...)
	// AR appears twice on the wire; hosts expect both occurrences.
	buf = append(buf, "\r\nAR\t0"...)
	buf = append(buf, "\r\nAR\t0"...)
	buf = fmt.Appendf(buf, "\r\nBMV\t%s", TextDeviceName)
	buf = fmt.Appendf(buf, "\r\nFW\t%x", AppID)
	buf = fmt.Appendf(buf, "\r\nMON\t%s", MonitorMode)

	return appendTextChecksum(buf)
}

// HistoryBlock formats the H1–H18 history frame. H1–H6 and H13–H18 are not
// tracked by this device and report 0.
func HistoryBlock(st TelemetryState) []byte {
	var h [18]int64

	h[6] = roundTo(st.AhCharged * 10)    // H7, 0.1 Ah units
	h[7] = roundTo(st.AhDischarged * 10) // H8, 0.1 Ah units
	// H9 stays in whole Wh; scaling it like H7/H8 would overflow 32-bit
	// hosts on large banks.
	h[8] = roundTo(st.Energy)
	if !math.IsNaN(st.MinVoltage) {
		h[9] = roundTo(st.MinVoltage * 1000) // H10, mV
	}
	if !math.IsNaN(st.MaxVoltage) {
		h[10] = roundTo(st.MaxVoltage * 1000) // H11, mV
	}
	h[11] = int64(st.SecondsSinceFull) // H12
	if h[11] < 0 {
		h[11] = -1 // any negative value means unknown
	}

	var buf []byte
	for i, v := range h {
		buf = fmt.Appendf(buf, "\r\nH%d\t%d", i+1, v)
	}
	return appendTextChecksum(buf)
}

// appendTextChecksum closes a Text frame: the Checksum label plus the one
// raw byte that brings the whole frame to 0 mod 256.
func appendTextChecksum(buf []byte) []byte {
	buf = append(buf, "\r\nChecksum\t"...)
	var sum byte
	for _, c := range buf {
		sum += c
	}
	return append(buf, -sum)
}

func roundTo(v float64) int64 {
	return int64(math.Round(v))
}
