// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

package cmd

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/openshunt/openshunt/pkg/vedirect"
)

var hexTimeout time.Duration

var hexCmd = &cobra.Command{
	Use:   "hex",
	Short: "Send VE.Direct Hex protocol commands to a device",
	Long: `Host-side Hex protocol client. Sends a single command frame,
waits for the answer, and prints it decoded.

Text telemetry frames interleaved in the stream are skipped while waiting.`,
}

var hexPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Ping the device (answers with its application id)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return hexExchange(vedirect.NewPingCommand(), printIDAnswer("ping"))
	},
}

var hexVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Query the application/firmware version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return hexExchange(vedirect.NewAppVersionCommand(), printIDAnswer("app version"))
	},
}

var hexProductCmd = &cobra.Command{
	Use:   "product-id",
	Short: "Query the Victron product id",
	RunE: func(cmd *cobra.Command, args []string) error {
		return hexExchange(vedirect.NewProductIDCommand(), printIDAnswer("product id"))
	},
}

var hexGetCmd = &cobra.Command{
	Use:   "get <address>",
	Short: "Read a device register (address in hex, e.g. 0x010C)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		return hexExchange(vedirect.NewGetCommand(addr), printRegisterAnswer)
	},
}

var hexSetNameCmd = &cobra.Command{
	Use:   "set-name <name>",
	Short: "Write the device's custom name register",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return hexExchange(
			vedirect.NewSetCommand(vedirect.RegCustomName, []byte(args[0])),
			printRegisterAnswer)
	},
}

var hexRestartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Request a device restart (sends no acknowledgment)",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, _, err := openConnection(0)
		if err != nil {
			return err
		}
		defer conn.Close()
		if _, err := conn.Write(vedirect.NewRestartCommand()); err != nil {
			return fmt.Errorf("write: %w", err)
		}
		fmt.Println("restart requested (no answer expected)")
		return nil
	},
}

func init() {
	hexCmd.PersistentFlags().DurationVar(&hexTimeout, "timeout", 3*time.Second,
		"How long to wait for the answer frame")
	hexCmd.AddCommand(hexPingCmd, hexVersionCmd, hexProductCmd, hexGetCmd,
		hexSetNameCmd, hexRestartCmd)
	rootCmd.AddCommand(hexCmd)
}

func parseAddress(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid register address %q: %w", s, err)
	}
	return uint16(v), nil
}

// hexExchange writes one command frame and hands the decoded answer payload
// to show.
func hexExchange(frame []byte, show func(payload []byte)) error {
	conn, _, err := openConnection(0)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Write(frame); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	raw, err := readHexFrame(conn, hexTimeout)
	if err != nil {
		return err
	}
	payload, err := vedirect.DecodeAnswer(raw)
	if err != nil {
		return fmt.Errorf("decode answer: %w", err)
	}
	show(payload)
	return nil
}

// readHexFrame scans the incoming stream for the next ':' ... '\n' frame,
// discarding interleaved Text telemetry, within the given timeout.
func readHexFrame(conn Connection, timeout time.Duration) ([]byte, error) {
	type chunk struct {
		data []byte
		err  error
	}
	chunks := make(chan chunk, 1)
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := conn.Read(buf)
			data := make([]byte, n)
			copy(data, buf[:n])
			chunks <- chunk{data: data, err: err}
			if err != nil {
				return
			}
		}
	}()

	deadline := time.After(timeout)
	var frame []byte
	inFrame := false

	for {
		select {
		case <-deadline:
			return nil, fmt.Errorf("no answer within %s", timeout)
		case c := <-chunks:
			for _, b := range c.data {
				switch {
				case b == ':':
					inFrame = true
					frame = frame[:0]
					frame = append(frame, b)
				case !inFrame:
					// Text-mode noise between frames.
				case b == '\n':
					return append(frame, b), nil
				default:
					frame = append(frame, b)
				}
			}
			if c.err != nil {
				return nil, fmt.Errorf("read: %w", c.err)
			}
		}
	}
}

// printIDAnswer renders answers whose payload is a status byte plus a
// little-endian 16-bit identifier.
func printIDAnswer(what string) func(payload []byte) {
	return func(payload []byte) {
		if len(payload) < 3 {
			fmt.Printf("%s answer: % X (short)\n", what, payload)
			return
		}
		id := binary.LittleEndian.Uint16(payload[1:3])
		fmt.Printf("%s: status=0x%X id=0x%04X\n", what, payload[0], id)
	}
}

// printRegisterAnswer renders GET/SET answers: status, echoed address,
// flags, and the register bytes.
func printRegisterAnswer(payload []byte) {
	if len(payload) < 4 {
		fmt.Printf("answer: % X (short)\n", payload)
		return
	}
	addr := binary.LittleEndian.Uint16(payload[1:3])
	flags := payload[3]
	value := payload[4:]

	status := "OK"
	switch flags {
	case vedirect.FlagUnknownID:
		status = "UNKNOWN_ID"
	case vedirect.FlagNotSupported:
		status = "NOT_SUPPORTED"
	case vedirect.FlagParameterErr:
		status = "PARAMETER_ERROR"
	}

	fmt.Printf("register 0x%04X: %s\n", addr, status)
	if len(value) > 0 {
		fmt.Printf("  bytes: % X\n", value)
		fmt.Printf("  text:  %q\n", string(value))
	}
}
