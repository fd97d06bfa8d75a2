// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

package vedirect

// Host-side command builders. Each returns a complete wire frame a host can
// write to the UART to interrogate the device; answers decode with
// DecodeAnswer.

// NewPingCommand builds a PING frame. The device answers AnswerPing plus
// its little-endian application id.
func NewPingCommand() []byte {
	return EncodeFrame([]byte{byte(CmdPing)})
}

// NewAppVersionCommand builds an APP_VERSION query frame.
func NewAppVersionCommand() []byte {
	return EncodeFrame([]byte{byte(CmdAppVersion)})
}

// NewProductIDCommand builds a PRODUCT_ID query frame.
func NewProductIDCommand() []byte {
	return EncodeFrame([]byte{byte(CmdProductID)})
}

// NewRestartCommand builds a RESTART frame. The device intentionally sends
// no acknowledgment.
func NewRestartCommand() []byte {
	return EncodeFrame([]byte{byte(CmdRestart)})
}

// NewGetCommand builds a GET frame for the register at addr. The address
// travels low byte first.
func NewGetCommand(addr uint16) []byte {
	return EncodeFrame([]byte{byte(CmdGet), byte(addr), byte(addr >> 8), 0})
}

// NewSetCommand builds a SET frame writing value to the register at addr.
func NewSetCommand(addr uint16, value []byte) []byte {
	payload := make([]byte, 0, 4+len(value))
	payload = append(payload, byte(CmdSet), byte(addr), byte(addr>>8), 0)
	payload = append(payload, value...)
	return EncodeFrame(payload)
}
