// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

package vedirect

import "io"

// StreamTransport adapts a blocking io.ReadWriter (a serial port, a
// WebSocket tunnel) to the bridge's non-blocking Transport contract. A pump
// goroutine performs the blocking reads and buffers bytes in a channel;
// ReadByte drains that channel without waiting.
//
// When the buffer is full, newly arriving bytes are dropped. The Hex
// protocol recovers from the resulting truncated frame via its checksum and
// stall timeout, so a slow consumer costs at most dropped frames.
type StreamTransport struct {
	rw   io.ReadWriter
	init func() error
	rx   chan byte

	started bool
}

// NewStreamTransport wraps rw. init may be nil; otherwise it runs on every
// bridge enable (e.g. to reopen or reconfigure a port).
func NewStreamTransport(rw io.ReadWriter, init func() error) *StreamTransport {
	return &StreamTransport{
		rw:   rw,
		init: init,
		rx:   make(chan byte, 512),
	}
}

// Init implements Transport. The read pump starts on first call.
func (t *StreamTransport) Init() error {
	if t.init != nil {
		if err := t.init(); err != nil {
			return err
		}
	}
	if !t.started {
		t.started = true
		go t.pump()
	}
	return nil
}

// ReadByte implements Transport; it never blocks.
func (t *StreamTransport) ReadByte() (byte, bool) {
	select {
	case b := <-t.rx:
		return b, true
	default:
		return 0, false
	}
}

// Write implements Transport by writing straight through to the stream.
func (t *StreamTransport) Write(p []byte) (int, error) {
	return t.rw.Write(p)
}

func (t *StreamTransport) pump() {
	buf := make([]byte, 256)
	for {
		n, err := t.rw.Read(buf)
		for i := 0; i < n; i++ {
			select {
			case t.rx <- buf[i]:
			default:
				// Buffer full; shed the rest of this chunk.
				i = n
			}
		}
		if err != nil {
			return
		}
	}
}
