// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

package vedirect

import "go.uber.org/zap"

// Transport is the byte pipe the bridge talks VE.Direct over.
//
// ReadByte must return immediately: the next available input byte and true,
// or false when nothing is buffered. Init (re)configures the underlying
// link; the bridge calls it on every disabled-to-enabled transition before
// any frame is written.
type Transport interface {
	Init() error
	ReadByte() (byte, bool)
	Write(p []byte) (int, error)
}

// Bridge is the dual-mode VE.Direct protocol engine. It owns the Hex
// parser, the command dispatcher, the register store, and the Text emission
// timing, and arbitrates both modes over one transport.
//
// The bridge is single-threaded and cooperative: the caller invokes Update
// from its polling loop at least every 500 ms and must not re-enter it
// concurrently. No Update call ever blocks on I/O.
type Bridge struct {
	transport Transport
	clock     Clock
	log       *zap.Logger

	parser     *Parser
	dispatcher *Dispatcher
	store      *RegisterStore

	enabled         bool
	lastSmall       int64
	lastHistory     int64
	lastHexActivity int64
}

// NewBridge assembles a disabled bridge over the given transport and
// register store. A nil clock falls back to DefaultClock; a nil logger is
// replaced with a nop logger. Call SetEnabled(true) to initialize the
// transport and start emitting.
func NewBridge(transport Transport, store *RegisterStore, clock Clock, log *zap.Logger) *Bridge {
	if clock == nil {
		clock = DefaultClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{
		transport:  transport,
		clock:      clock,
		log:        log,
		parser:     NewParser(clock),
		dispatcher: NewDispatcher(store),
		store:      store,
	}
}

// Store exposes the register store, e.g. to hook custom-name persistence.
func (b *Bridge) Store() *RegisterStore {
	return b.store
}

// Enabled reports whether the bridge is emitting and answering.
func (b *Bridge) Enabled() bool {
	return b.enabled
}

// SetEnabled turns the bridge on or off. While disabled, Update neither
// reads nor writes the transport. Enabling a disabled bridge initializes
// the transport and restarts the Text cadence so the first small block goes
// out on the next Update and the first history block one full history
// interval later.
func (b *Bridge) SetEnabled(on bool) error {
	if on && !b.enabled {
		if err := b.transport.Init(); err != nil {
			return err
		}
		now := b.clock()
		b.lastSmall = now - TextIntervalMillis
		b.lastHistory = now
		b.lastHexActivity = 0
		b.parser.Reset()
		b.log.Info("vedirect bridge enabled")
	}
	b.enabled = on
	return nil
}

// Update is the bridge's single periodic entry point. It drains the
// available input through the Hex parser, answers completed commands, and
// emits Text frames per the arbitration rules: the small block at the
// 1-second cadence unless a Hex exchange happened within the last second,
// and the history block every tenth small-block interval.
func (b *Bridge) Update(st TelemetryState) {
	if !b.enabled {
		return
	}
	now := b.clock()

	for {
		c, ok := b.transport.ReadByte()
		if !ok {
			break
		}
		frame := b.parser.Feed(c)
		if frame == nil {
			continue
		}
		b.lastHexActivity = now
		b.log.Debug("hex command",
			zap.Uint8("command", uint8(frame.Command)),
			zap.Uint16("address", frame.Address))
		if answer := b.dispatcher.Execute(frame); answer != nil {
			b.write(answer)
		}
	}

	// A host mid-conversation owns the wire; hold Text frames until it
	// has been quiet for a full interval.
	hexBusy := b.lastHexActivity > 0 && now-b.lastHexActivity < TextIntervalMillis
	if hexBusy || now-b.lastSmall < TextIntervalMillis {
		return
	}

	b.write(SmallBlock(st))
	b.lastSmall = now
	b.lastHexActivity = 0

	if now-b.lastHistory >= HistoryEveryNthBlock*TextIntervalMillis {
		b.write(HistoryBlock(st))
		b.lastHistory = now
	}
}

func (b *Bridge) write(p []byte) {
	if _, err := b.transport.Write(p); err != nil {
		b.log.Warn("vedirect write failed", zap.Error(err))
	}
}
