// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

package vedirect

import "fmt"

const upperHex = "0123456789ABCDEF"

// EncodeFrame serializes a Hex frame: ':' + the first payload byte as a
// single hex nibble + every following byte as two hex characters + a
// checksum byte chosen so all payload bytes plus the checksum sum to 0x55
// mod 256, + '\n'.
//
// This is the exact inverse of the parser's validation rule; an encoded
// frame fed back through a Parser decodes to the same payload. An empty
// payload encodes to nil.
func EncodeFrame(payload []byte) []byte {
	if len(payload) == 0 {
		return nil
	}

	buf := make([]byte, 0, 2*len(payload)+4)
	buf = append(buf, ':', upperHex[payload[0]&0x0F])
	checksum := payload[0]
	for _, b := range payload[1:] {
		checksum += b
		buf = appendHexByte(buf, b)
	}
	buf = appendHexByte(buf, hexChecksumTarget-checksum)
	return append(buf, '\n')
}

// DecodeAnswer parses one complete frame as produced by EncodeFrame and
// returns its payload with the checksum byte verified and stripped. The
// input may carry the trailing '\r' and/or '\n'. Hosts use this to decode
// device answers, whose payload shape differs per command and is not
// understood by the command Parser.
func DecodeAnswer(frame []byte) ([]byte, error) {
	for len(frame) > 0 && (frame[len(frame)-1] == '\n' || frame[len(frame)-1] == '\r') {
		frame = frame[:len(frame)-1]
	}
	if len(frame) < 4 || frame[0] != ':' {
		return nil, fmt.Errorf("not a hex frame: %q", frame)
	}

	first, ok := hexNibble(frame[1])
	if !ok {
		return nil, fmt.Errorf("invalid command nibble %q", frame[1])
	}
	body := frame[2:]
	if len(body)%2 != 0 {
		return nil, fmt.Errorf("odd hex payload length %d", len(body))
	}

	payload := make([]byte, 0, 1+len(body)/2)
	payload = append(payload, first)
	checksum := first
	for i := 0; i < len(body); i += 2 {
		hi, ok1 := hexNibble(body[i])
		lo, ok2 := hexNibble(body[i+1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("invalid hex pair %q", body[i:i+2])
		}
		b := hi<<4 | lo
		checksum += b
		payload = append(payload, b)
	}

	if checksum != hexChecksumTarget {
		return nil, fmt.Errorf("checksum mismatch: frame sums to 0x%02X, want 0x%02X",
			checksum, hexChecksumTarget)
	}
	// Strip the checksum byte; the command/answer code stays at payload[0].
	return payload[:len(payload)-1], nil
}

func appendHexByte(buf []byte, b byte) []byte {
	return append(buf, upperHex[b>>4], upperHex[b&0x0F])
}
