// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

package vedirect

// Dispatcher executes completed Hex frames against the register store and
// produces the encoded answer frames.
type Dispatcher struct {
	store *RegisterStore
}

// NewDispatcher creates a dispatcher bound to store.
func NewDispatcher(store *RegisterStore) *Dispatcher {
	return &Dispatcher{store: store}
}

// Execute runs one decoded frame and returns the wire-ready answer, or nil
// when the command sends no answer. Only SET on a writable register mutates
// state; every other command is a pure read.
func (d *Dispatcher) Execute(f *Frame) []byte {
	switch f.Command {
	case CmdPing:
		return EncodeFrame([]byte{AnswerPing, byte(AppID & 0xFF), byte(AppID >> 8)})
	case CmdAppVersion:
		return EncodeFrame([]byte{AnswerDone, byte(AppID & 0xFF), byte(AppID >> 8)})
	case CmdProductID:
		return EncodeFrame([]byte{AnswerDone, byte(ProductID & 0xFF), byte(ProductID >> 8)})
	case CmdRestart:
		// Deliberately unacknowledged; hosts tolerate the silence.
		return nil
	case CmdGet:
		return d.get(f)
	case CmdSet:
		return d.set(f)
	default:
		return EncodeFrame([]byte{AnswerUnknown, byte(f.Command)})
	}
}

func (d *Dispatcher) get(f *Frame) []byte {
	answer := []byte{AnswerGet, byte(f.Address), byte(f.Address >> 8), FlagOK}
	value, ok := d.store.Get(f.Address)
	if !ok {
		answer[3] = FlagUnknownID
	} else {
		answer = append(answer, value...)
	}
	return EncodeFrame(answer)
}

func (d *Dispatcher) set(f *Frame) []byte {
	// The submitted bytes are echoed back untruncated even when the store
	// rejects or shortens them.
	answer := make([]byte, 0, 4+len(f.Value))
	answer = append(answer, AnswerSet, byte(f.Address), byte(f.Address>>8), FlagOK)
	answer = append(answer, f.Value...)
	if !d.store.Set(f.Address, f.Value) {
		answer[3] = FlagUnknownID
	}
	return EncodeFrame(answer)
}
