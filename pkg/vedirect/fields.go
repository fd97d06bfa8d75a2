// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

package vedirect

import "fmt"

// FieldInfo describes a Text-mode label for display purposes.
type FieldInfo struct {
	Name  string
	Units string
}

// Fields maps the Text-mode labels this device emits (plus the common BMV
// labels a host may see from other Victron monitors) to display metadata.
var Fields = map[string]FieldInfo{
	"PID":      {Name: "Product ID", Units: ""},
	"V":        {Name: "Battery voltage", Units: "mV"},
	"VS":       {Name: "Auxiliary voltage", Units: "mV"},
	"I":        {Name: "Battery current", Units: "mA"},
	"P":        {Name: "Instantaneous power", Units: "W"},
	"CE":       {Name: "Consumed charge", Units: "mAh"},
	"SOC":      {Name: "State of charge", Units: "‰"},
	"TTG":      {Name: "Time to go", Units: "min"},
	"Alarm":    {Name: "Alarm condition", Units: ""},
	"AR":       {Name: "Alarm reason", Units: ""},
	"Relay":    {Name: "Relay state", Units: ""},
	"BMV":      {Name: "Model description", Units: ""},
	"FW":       {Name: "Firmware version", Units: ""},
	"MON":      {Name: "DC monitor mode", Units: ""},
	"T":        {Name: "Battery temperature", Units: "°C"},
	"H1":       {Name: "Deepest discharge", Units: "mAh"},
	"H2":       {Name: "Last discharge", Units: "mAh"},
	"H3":       {Name: "Average discharge", Units: "mAh"},
	"H4":       {Name: "Charge cycles", Units: ""},
	"H5":       {Name: "Full discharges", Units: ""},
	"H6":       {Name: "Cumulative drawn", Units: "mAh"},
	"H7":       {Name: "Total Ah charged", Units: "0.1 Ah"},
	"H8":       {Name: "Total Ah discharged", Units: "0.1 Ah"},
	"H9":       {Name: "Total energy", Units: "Wh"},
	"H10":      {Name: "Minimum voltage", Units: "mV"},
	"H11":      {Name: "Maximum voltage", Units: "mV"},
	"H12":      {Name: "Time since full charge", Units: "s"},
	"H13":      {Name: "Automatic synchronizations", Units: ""},
	"H14":      {Name: "Low voltage alarms", Units: ""},
	"H15":      {Name: "High voltage alarms", Units: ""},
	"H16":      {Name: "Minimum auxiliary voltage", Units: "mV"},
	"H17":      {Name: "Maximum auxiliary voltage", Units: "mV"},
	"H18":      {Name: "Discharged energy", Units: "0.01 kWh"},
	"Checksum": {Name: "Frame checksum", Units: ""},
}

// DescribeField formats a label for display: its long name plus units when
// known, or the raw label for unknown fields.
func DescribeField(label string) string {
	info, ok := Fields[label]
	if !ok {
		return label
	}
	if info.Units == "" {
		return info.Name
	}
	return fmt.Sprintf("%s (%s)", info.Name, info.Units)
}
