// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

package vedirect

import "time"

// Clock returns monotonically increasing milliseconds. The bridge and parser
// never read the wall clock directly so tests can inject time.
type Clock func() int64

// DefaultClock returns a Clock measuring milliseconds since it was created.
func DefaultClock() Clock {
	start := time.Now()
	return func() int64 {
		return time.Since(start).Milliseconds()
	}
}

// Frame is one decoded, checksum-valid Hex command ready for dispatch.
type Frame struct {
	Command Command
	Address uint16 // GET/SET register address
	Flags   byte
	Value   []byte // SET payload; nil for other commands
}

// Parser is the incremental Hex-mode frame decoder.
//
// Input arrives in arbitrary chunks across many invocations; Feed processes
// one byte per call and returns a completed frame only when the trailing
// checksum validates. Malformed input, checksum failures, and oversized
// frames silently discard the frame in progress and return the parser to
// idle. A partial frame that stalls for more than ParserTimeoutMillis is
// also discarded, so a byte stream can never wedge the parser.
type Parser struct {
	clock Clock

	state    int
	checksum byte
	command  Command
	address  uint16
	flags    byte
	value    [MaxValueSize]byte
	valueLen int

	// hex-pair assembly for two-character bytes
	haveNibble bool
	nibble     byte

	// low address byte arrives first on the wire
	addrLow     byte
	haveAddrLow bool

	frameStart int64
}

// NewParser creates an idle parser using the given clock. A nil clock falls
// back to DefaultClock.
func NewParser(clock Clock) *Parser {
	if clock == nil {
		clock = DefaultClock()
	}
	return &Parser{clock: clock, state: stateIdle}
}

// Reset discards any frame in progress and returns the parser to idle.
func (p *Parser) Reset() {
	p.state = stateIdle
	p.checksum = 0
	p.command = 0
	p.address = 0
	p.flags = 0
	p.valueLen = 0
	p.haveNibble = false
	p.haveAddrLow = false
	p.frameStart = 0
}

// Idle reports whether no frame is in progress.
func (p *Parser) Idle() bool {
	return p.state == stateIdle
}

// Feed processes one input byte and returns a completed frame, or nil when
// more input is needed or the byte was discarded. It never blocks and never
// returns an error: all decode failures route back to idle.
func (p *Parser) Feed(b byte) *Frame {
	now := p.clock()

	// The only timer-driven transition: a stalled partial frame expires.
	if p.state != stateIdle && now-p.frameStart > ParserTimeoutMillis {
		p.Reset()
	}

	switch p.state {
	case stateIdle:
		if b == ':' {
			p.Reset()
			p.frameStart = now
			p.state = stateReadCommand
		}
		return nil

	case stateReadCommand:
		v, ok := hexNibble(b)
		if !ok {
			p.Reset()
			return nil
		}
		p.command = Command(v)
		p.checksum += v
		switch p.command {
		case CmdPing, CmdAppVersion, CmdProductID, CmdRestart:
			p.state = stateReadChecksum
		case CmdGet, CmdSet:
			p.state = stateReadRegister
		default:
			// Unrecognized codes still get an answer on the wire.
			return p.complete()
		}
		return nil

	case stateReadRegister:
		v, done, ok := p.feedHexByte(b)
		if !ok {
			p.Reset()
			return nil
		}
		if !done {
			return nil
		}
		p.checksum += v
		if !p.haveAddrLow {
			p.addrLow = v
			p.haveAddrLow = true
			return nil
		}
		p.address = uint16(v)<<8 | uint16(p.addrLow)
		p.state = stateReadFlags
		return nil

	case stateReadFlags:
		v, done, ok := p.feedHexByte(b)
		if !ok {
			p.Reset()
			return nil
		}
		if !done {
			return nil
		}
		p.checksum += v
		p.flags = v
		if p.command == CmdGet {
			p.state = stateReadChecksum
		} else {
			p.state = stateReadData
		}
		return nil

	case stateReadData:
		// Only a raw terminator ends the data section; 0x0D/0x0A decoded
		// from hex pairs are ordinary payload bytes.
		if !p.haveNibble {
			switch b {
			case '\r':
				return nil
			case '\n':
				// The byte before the terminator is the frame checksum;
				// it has already been summed, so the total must land on
				// the target. Drop it from the value.
				if p.valueLen == 0 || p.checksum != hexChecksumTarget {
					p.Reset()
					return nil
				}
				p.valueLen--
				return p.complete()
			}
		}
		v, done, ok := p.feedHexByte(b)
		if !ok {
			p.Reset()
			return nil
		}
		if !done {
			return nil
		}
		p.checksum += v
		if p.valueLen >= MaxValueSize {
			p.Reset()
			return nil
		}
		p.value[p.valueLen] = v
		p.valueLen++
		return nil

	case stateReadChecksum:
		v, done, ok := p.feedHexByte(b)
		if !ok {
			p.Reset()
			return nil
		}
		if !done {
			return nil
		}
		if p.checksum+v != hexChecksumTarget {
			p.Reset()
			return nil
		}
		p.state = stateComplete
		return nil

	case stateComplete:
		switch b {
		case '\r':
			return nil
		case '\n':
			return p.complete()
		default:
			p.Reset()
			return nil
		}
	}

	p.Reset()
	return nil
}

// complete hands the decoded frame off and unconditionally returns the
// parser to idle.
func (p *Parser) complete() *Frame {
	f := &Frame{
		Command: p.command,
		Address: p.address,
		Flags:   p.flags,
	}
	if p.command == CmdSet {
		f.Value = make([]byte, p.valueLen)
		copy(f.Value, p.value[:p.valueLen])
	}
	p.Reset()
	return f
}

// feedHexByte assembles one payload byte from the stream. Payload bytes are
// normally two ASCII-hex characters, but any raw byte below '0' (control
// characters, notably \r and \n) is delivered as a literal value so a SET
// frame's data section can be terminated without hex-escaping. Returns the
// byte and done=true when a full byte is available; ok=false signals a
// framing error.
func (p *Parser) feedHexByte(b byte) (value byte, done, ok bool) {
	if !p.haveNibble && b < '0' {
		return b, true, true
	}

	v, valid := hexNibble(b)
	if !valid {
		return 0, false, false
	}
	if !p.haveNibble {
		p.nibble = v
		p.haveNibble = true
		return 0, false, true
	}
	p.haveNibble = false
	return p.nibble<<4 | v, true, true
}

// hexNibble decodes a single ASCII hex digit.
func hexNibble(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	}
	return 0, false
}
