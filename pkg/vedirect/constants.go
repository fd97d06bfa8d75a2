// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

// Package vedirect implements the Victron VE.Direct serial protocol for a
// battery-shunt monitor.
//
// VE.Direct has two modes sharing one UART: a human/host-readable Text mode
// that broadcasts telemetry frames at a fixed cadence, and an ASCII-hex
// binary "Hex" mode that hosts use to query and set device registers. This
// package provides the resumable Hex frame parser, the Hex command
// dispatcher and register store, the frame encoder, the Text block emitters,
// and the bridge controller that arbitrates both modes over a single
// non-blocking transport.
package vedirect

// Device identity reported over both protocol modes.
const (
	// ProductID identifies the device as a SmartShunt 500A class monitor
	// so stock Victron hosts accept its frames.
	ProductID uint16 = 0xA389

	// AppID is the firmware/application id reported to PING and
	// APP_VERSION queries and in the Text FW field.
	AppID uint16 = 0x0419
)

// Text-mode identity fields.
const (
	// TextDeviceName is the fixed BMV model string in the small block.
	TextDeviceName = "OPNSHNT"

	// MonitorMode is the MON field value (3 = generic DC system).
	MonitorMode = "3"
)

// Serial line parameters required for VE.Direct interoperability.
// Hosts expect exactly 19200 8N1; this is part of the protocol, not a
// tunable.
const (
	BaudRate = 19200
	DataBits = 8
	StopBits = 1
)

// Protocol timing, in milliseconds of the monotonic clock.
const (
	// TextIntervalMillis is the small-block cadence and also the window
	// during which Hex activity suppresses Text emission.
	TextIntervalMillis = 1000

	// HistoryEveryNthBlock spaces history blocks: one per this many
	// small-block intervals.
	HistoryEveryNthBlock = 10

	// ParserTimeoutMillis bounds how long a stalled partial Hex frame may
	// occupy the parser before it is forced back to idle.
	ParserTimeoutMillis = 900
)

// Command is a Hex-mode command code, one nibble on the wire.
type Command byte

// Hex command codes.
const (
	CmdPing       Command = 0x1
	CmdAppVersion Command = 0x3
	CmdProductID  Command = 0x4
	CmdRestart    Command = 0x6
	CmdGet        Command = 0x7
	CmdSet        Command = 0x8
	CmdAsync      Command = 0xA
)

// Hex answer codes (first byte of a response frame).
const (
	AnswerDone    = 0x1
	AnswerUnknown = 0x3
	AnswerPing    = 0x5
	AnswerGet     = 0x7
	AnswerSet     = 0x8
)

// Register status flags carried in GET/SET answers.
const (
	FlagOK           = 0x0
	FlagUnknownID    = 0x1
	FlagNotSupported = 0x2
	FlagParameterErr = 0x4
)

// Register addresses exposed via GET/SET.
const (
	RegGroupID      uint16 = 0x0104
	RegSerialNumber uint16 = 0x010A
	RegCustomName   uint16 = 0x010C
)

// Buffer limits.
const (
	// MaxValueSize caps the parser's SET value buffer. A frame whose data
	// section exceeds it is discarded.
	MaxValueSize = 64

	// MaxNameLen is the custom-name register capacity, excluding the NUL
	// terminator.
	MaxNameLen = 63
)

// hexChecksumTarget is the value all bytes of a valid Hex frame sum to,
// modulo 256.
const hexChecksumTarget = 0x55

// Parser states (internal).
const (
	stateIdle = iota
	stateReadCommand
	stateReadRegister
	stateReadFlags
	stateReadData
	stateReadChecksum
	stateComplete
)
