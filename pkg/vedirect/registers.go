// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

package vedirect

import "fmt"

// AccessMode describes whether a register accepts SET.
type AccessMode int

// Register access modes.
const (
	ReadOnly AccessMode = iota
	ReadWrite
)

// Register is one addressable device property exposed over Hex GET/SET.
type Register struct {
	Address uint16
	Name    string
	Access  AccessMode
	value   []byte
}

// Value returns the register's current bytes as sent on the wire.
func (r *Register) Value() []byte {
	return r.value
}

// RegisterStore holds the device registers the Hex protocol can address.
// Exactly three exist: serial number (read-only, derived from the hardware
// id), custom name (read-write), and group id (read-only, 0).
//
// The store is not safe for concurrent use; the bridge controller is its
// only caller.
type RegisterStore struct {
	regs         map[uint16]*Register
	onNameChange func(string)
}

// NewRegisterStore builds the register set. hardwareID is a unique 32-bit
// identifier (the Go stand-in for the MCU efuse MAC) formatted as 8
// uppercase hex characters for the serial-number register. customName seeds
// the custom-name register and is truncated to its 63-byte capacity.
func NewRegisterStore(hardwareID uint32, customName string) *RegisterStore {
	s := &RegisterStore{regs: make(map[uint16]*Register)}

	s.regs[RegSerialNumber] = &Register{
		Address: RegSerialNumber,
		Name:    "serial number",
		Access:  ReadOnly,
		value:   []byte(fmt.Sprintf("%08X", hardwareID)),
	}
	s.regs[RegCustomName] = &Register{
		Address: RegCustomName,
		Name:    "custom name",
		Access:  ReadWrite,
		value:   truncateName([]byte(customName)),
	}
	s.regs[RegGroupID] = &Register{
		Address: RegGroupID,
		Name:    "group id",
		Access:  ReadOnly,
		value:   []byte{0},
	}

	return s
}

// Get returns the current bytes of the register at addr. The second return
// is false for addresses outside the register set.
func (s *RegisterStore) Get(addr uint16) ([]byte, bool) {
	reg, ok := s.regs[addr]
	if !ok {
		return nil, false
	}
	return reg.value, true
}

// Set writes value to the register at addr, truncating to the register's
// capacity. It returns false when the address is unknown or the register is
// read-only; the store is unchanged in that case.
func (s *RegisterStore) Set(addr uint16, value []byte) bool {
	reg, ok := s.regs[addr]
	if !ok || reg.Access != ReadWrite {
		return false
	}

	reg.value = truncateName(value)
	if addr == RegCustomName && s.onNameChange != nil {
		s.onNameChange(string(reg.value))
	}
	return true
}

// CustomName returns the current custom device name.
func (s *RegisterStore) CustomName() string {
	return string(s.regs[RegCustomName].value)
}

// OnNameChange registers a hook invoked after every successful custom-name
// SET, with the stored (possibly truncated) name. Callers use it to persist
// the name outside this process.
func (s *RegisterStore) OnNameChange(fn func(name string)) {
	s.onNameChange = fn
}

// truncateName bounds a name register value to MaxNameLen bytes. The NUL
// terminator lives outside the wire value.
func truncateName(value []byte) []byte {
	if len(value) > MaxNameLen {
		value = value[:MaxNameLen]
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out
}
