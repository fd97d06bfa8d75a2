// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

package vedirect

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"
)

// textFields splits a raw Text frame into label -> value pairs, keeping the
// checksum byte out. Repeated labels keep their last value; repetition is
// checked separately.
func textFields(t *testing.T, frame []byte) map[string]string {
	t.Helper()
	fields := map[string]string{}
	for _, part := range bytes.Split(frame, []byte("\r\n")) {
		if len(part) == 0 {
			continue
		}
		label, value, ok := bytes.Cut(part, []byte("\t"))
		if !ok {
			t.Fatalf("field without tab separator: %q", part)
		}
		if string(label) == "Checksum" {
			continue
		}
		fields[string(label)] = string(value)
	}
	return fields
}

func frameSum(frame []byte) byte {
	var sum byte
	for _, b := range frame {
		sum += b
	}
	return sum
}

func TestSmallBlock_KnownState(t *testing.T) {
	st := NewTelemetryState()
	st.Voltage = 12
	st.Current = -5
	st.Power = 60
	st.Energy = 120
	st.Connected = true

	frame := SmallBlock(st)
	fields := textFields(t, frame)

	expected := map[string]string{
		"PID":   "0xa389",
		"V":     "12000",
		"I":     "-5000",
		"P":     "60",
		"CE":    "10000",
		"SOC":   "1000",
		"TTG":   "-1",
		"Alarm": "OFF",
		"Relay": "OFF",
		"AR":    "0",
		"BMV":   "OPNSHNT",
		"FW":    "419",
		"MON":   "3",
	}
	for label, want := range expected {
		if got, ok := fields[label]; !ok {
			t.Errorf("missing field %s", label)
		} else if got != want {
			t.Errorf("%s: expected %q, got %q", label, want, got)
		}
	}
}

func TestSmallBlock_ChecksumZeroesFrame(t *testing.T) {
	states := []TelemetryState{
		NewTelemetryState(),
		{Voltage: 12.81, Current: 3.333, Power: 42.7, Energy: 99.9, Connected: true,
			SOC: math.NaN(), Capacity: math.NaN(), MinVoltage: math.NaN(), MaxVoltage: math.NaN(), SecondsSinceFull: -1},
	}
	for i, st := range states {
		if sum := frameSum(SmallBlock(st)); sum != 0 {
			t.Errorf("state %d: frame sum expected 0, got %d", i, sum)
		}
		if sum := frameSum(HistoryBlock(st)); sum != 0 {
			t.Errorf("state %d: history frame sum expected 0, got %d", i, sum)
		}
	}
}

func TestSmallBlock_FieldOrderAndARTwice(t *testing.T) {
	frame := SmallBlock(NewTelemetryState())
	text := string(frame)

	if !strings.HasPrefix(text, "\r\nPID\t") {
		t.Errorf("frame must start with the PID field, got %q", text[:12])
	}
	if n := strings.Count(text, "\r\nAR\t0"); n != 2 {
		t.Errorf("AR must appear twice, got %d", n)
	}
	order := []string{"PID", "V", "I", "P", "CE", "SOC", "TTG", "Alarm", "Relay", "AR", "AR", "BMV", "FW", "MON", "Checksum"}
	pos := 0
	for _, label := range order {
		marker := "\r\n" + label + "\t"
		i := strings.Index(text[pos:], marker)
		if i < 0 {
			t.Fatalf("field %s missing or out of order after offset %d", label, pos)
		}
		pos += i + len(marker)
	}
}

func TestSmallBlock_EnergyApproximation(t *testing.T) {
	tests := []struct {
		name    string
		voltage float64
		energy  float64
		want    string
	}{
		{"normal", 12, 120, "10000"},
		{"fractional", 13.2, 66, "5000"},
		{"voltage too low", 0.05, 120, "0"},
		{"zero voltage", 0, 120, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewTelemetryState()
			st.Voltage = tt.voltage
			st.Energy = tt.energy
			fields := textFields(t, SmallBlock(st))
			if fields["CE"] != tt.want {
				t.Errorf("CE: expected %s, got %s", tt.want, fields["CE"])
			}
		})
	}
}

func TestSmallBlock_SOCFallback(t *testing.T) {
	tests := []struct {
		name      string
		soc       float64
		connected bool
		want      string
	}{
		{"measured", 73.5, true, "735"},
		{"unknown connected", math.NaN(), true, "1000"},
		{"unknown disconnected", math.NaN(), false, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewTelemetryState()
			st.SOC = tt.soc
			st.Connected = tt.connected
			fields := textFields(t, SmallBlock(st))
			if fields["SOC"] != tt.want {
				t.Errorf("SOC: expected %s, got %s", tt.want, fields["SOC"])
			}
		})
	}
}

func TestHistoryBlock_KnownState(t *testing.T) {
	st := NewTelemetryState()
	st.AhCharged = 12.34
	st.AhDischarged = 11.5
	st.Energy = 153.6
	st.MinVoltage = 11.902
	st.MaxVoltage = 14.401
	st.SecondsSinceFull = 3600

	fields := textFields(t, HistoryBlock(st))

	expected := map[string]string{
		"H7":  "123",   // 0.1 Ah units
		"H8":  "115",   // 0.1 Ah units
		"H9":  "154",   // whole Wh
		"H10": "11902", // mV
		"H11": "14401", // mV
		"H12": "3600",
	}
	for label, want := range expected {
		if fields[label] != want {
			t.Errorf("%s: expected %s, got %s", label, want, fields[label])
		}
	}

	// Untracked slots report zero.
	for _, label := range []string{"H1", "H2", "H3", "H4", "H5", "H6", "H13", "H14", "H15", "H16", "H17", "H18"} {
		if fields[label] != "0" {
			t.Errorf("%s: expected 0, got %s", label, fields[label])
		}
	}
}

func TestHistoryBlock_UnknownOptionals(t *testing.T) {
	fields := textFields(t, HistoryBlock(NewTelemetryState()))

	if fields["H10"] != "0" || fields["H11"] != "0" {
		t.Errorf("unmeasured voltages must report 0, got H10=%s H11=%s", fields["H10"], fields["H11"])
	}
	if fields["H12"] != "-1" {
		t.Errorf("unknown time since full must report -1, got %s", fields["H12"])
	}
}

func TestHistoryBlock_AllSlotsPresent(t *testing.T) {
	fields := textFields(t, HistoryBlock(NewTelemetryState()))
	for i := 1; i <= 18; i++ {
		if _, ok := fields[fmt.Sprintf("H%d", i)]; !ok {
			t.Errorf("missing H%d", i)
		}
	}
}
