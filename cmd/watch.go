// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openshunt/openshunt/pkg/vedirect"
)

var watchDescribe bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Decode and print VE.Direct Text frames from a device",
	Long: `Continuously decode the VE.Direct Text stream and print each
checksum-valid frame as it arrives. Corrupted frames are counted and
skipped.

Works against an OpenShunt bridge or any stock Victron device.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDescribe, "describe", false,
		"Annotate each field with its long name and units")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := openConnection(0)
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("OpenShunt - VE.Direct Text watch\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	reader := vedirect.NewTextReader()
	buf := make([]byte, 256)
	frames := 0

	for {
		n, err := conn.Read(buf)
		if err != nil {
			if err == ErrConnectionClosed {
				fmt.Println("connection closed")
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		for i := 0; i < n; i++ {
			frame := reader.Feed(buf[i])
			if frame == nil {
				continue
			}
			frames++
			printTextFrame(frame, frames)
		}
	}
}

func printTextFrame(frame *vedirect.TextFrame, seq int) {
	kind := "telemetry"
	if frame.IsHistory() {
		kind = "history"
	}
	fmt.Printf("--- frame %d (%s) %s ---\n", seq, kind, time.Now().Format("15:04:05.000"))
	for _, f := range frame.Fields {
		if watchDescribe {
			fmt.Printf("%-6s %-10s %s\n", f.Label, f.Value, vedirect.DescribeField(f.Label))
		} else {
			fmt.Printf("%-6s %s\n", f.Label, f.Value)
		}
	}
	fmt.Println()
}
