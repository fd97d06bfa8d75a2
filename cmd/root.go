// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

// Package cmd implements the openshunt command line interface.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/openshunt/openshunt/pkg/logging"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags (remote UART tunnel)
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "openshunt",
	Short: "Battery-shunt monitor with a Victron VE.Direct telemetry bridge",
	Long: `OpenShunt - battery-shunt monitor speaking the Victron VE.Direct protocol.

The bridge command runs the device side: it broadcasts VE.Direct Text
telemetry at 1 Hz and answers the Hex register protocol on the same UART.
The watch, tui, and hex commands are host-side tools for consuming and
interrogating any VE.Direct device.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 19200]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the
OPENSHUNT_PASSWORD environment variable, or prompted interactively if not
set. There is deliberately no --password flag, to keep credentials out of
shell history.`,
	Version:      "1.2.0",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 19200, "Baud rate (host side only; the bridge always runs 19200 8N1)")

	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log verbosity: debug, info, warn, error (default silent)")
}

// Execute runs the root command.
func Execute() error {
	defer logging.Sync()
	return rootCmd.Execute()
}
