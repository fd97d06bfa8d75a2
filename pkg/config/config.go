// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

// Package config persists device settings: what the firmware keeps in NVS,
// the Go port keeps in a YAML file under the user config directory.
package config

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	appDir   = "openshunt"
	fileName = "config.yaml"
)

// Default shunt specification: a 50 A / 75 mV shunt.
const (
	DefaultMaxCurrent      = 50.0
	DefaultShuntResistance = 0.0015
)

// Settings is the persisted device configuration.
type Settings struct {
	Version  int       `yaml:"version"`
	VEDirect VEDirect  `yaml:"vedirect"`
	Shunt    ShuntSpec `yaml:"shunt"`
}

// VEDirect holds the telemetry-bridge settings.
type VEDirect struct {
	// Enabled gates all VE.Direct I/O; toggling it off silences the UART
	// entirely.
	Enabled bool `yaml:"enabled"`

	// DeviceName is the custom-name register value, writable by hosts
	// over the Hex protocol.
	DeviceName string `yaml:"device_name,omitempty"`

	// HardwareID seeds the serial-number register. Generated once and
	// kept stable thereafter.
	HardwareID uint32 `yaml:"hardware_id,omitempty"`
}

// ShuntSpec is the shunt calibration.
type ShuntSpec struct {
	MaxCurrent      float64 `yaml:"max_current"`      // A
	ShuntResistance float64 `yaml:"shunt_resistance"` // Ω
}

// Default returns factory settings.
func Default() *Settings {
	return &Settings{
		Version: 1,
		VEDirect: VEDirect{
			Enabled:    true,
			DeviceName: "OpenShunt",
		},
		Shunt: ShuntSpec{
			MaxCurrent:      DefaultMaxCurrent,
			ShuntResistance: DefaultShuntResistance,
		},
	}
}

// Path returns the settings file location under the user config directory.
func Path() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads the settings file, or returns defaults when none exists yet.
func Load() (*Settings, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads settings from an explicit path.
func LoadFrom(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes the settings atomically (temp file + rename).
func (s *Settings) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return s.SaveTo(path)
}

// SaveTo writes the settings atomically to an explicit path.
func (s *Settings) SaveTo(path string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// Validate bounds-checks the calibration the same way the firmware does
// before trusting stored values.
func (s *Settings) Validate() error {
	if s.Shunt.MaxCurrent <= 0 || s.Shunt.MaxCurrent > 200 {
		return fmt.Errorf("max_current %.3f out of range (0, 200]", s.Shunt.MaxCurrent)
	}
	if s.Shunt.ShuntResistance <= 0 || s.Shunt.ShuntResistance > 0.1 {
		return fmt.Errorf("shunt_resistance %.6f out of range (0, 0.1]", s.Shunt.ShuntResistance)
	}
	return nil
}

// EnsureHardwareID returns the stable hardware id, generating and storing
// one on first use. The caller is responsible for saving afterwards when
// the second return is true.
func (s *Settings) EnsureHardwareID() (uint32, bool, error) {
	if s.VEDirect.HardwareID != 0 {
		return s.VEDirect.HardwareID, false, nil
	}
	var raw [4]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return 0, false, fmt.Errorf("generate hardware id: %w", err)
	}
	id := binary.BigEndian.Uint32(raw[:])
	if id == 0 {
		id = 1
	}
	s.VEDirect.HardwareID = id
	return id, true, nil
}
