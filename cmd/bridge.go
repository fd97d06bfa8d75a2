// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openshunt/openshunt/pkg/config"
	"github.com/openshunt/openshunt/pkg/logging"
	"github.com/openshunt/openshunt/pkg/sensor"
	"github.com/openshunt/openshunt/pkg/vedirect"
)

var (
	bridgePollInterval time.Duration
	bridgeDisabled     bool
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Run the device-side VE.Direct telemetry bridge",
	Long: `Run the VE.Direct bridge: broadcast Text telemetry frames at 1 Hz and
answer Hex protocol commands on the same link.

Readings come from the simulated shunt backend (no I2C hardware is assumed
on a host). The serial line is pinned to 19200 8N1 as VE.Direct requires;
the --baud flag is ignored here.

The custom device name set by hosts via the Hex SET command is persisted to
the settings file.`,
	RunE: runBridge,
}

func init() {
	bridgeCmd.Flags().DurationVar(&bridgePollInterval, "interval", 500*time.Millisecond,
		"Polling interval for the bridge loop (keep well under 1s)")
	bridgeCmd.Flags().BoolVar(&bridgeDisabled, "disabled", false,
		"Start with VE.Direct output disabled regardless of settings")
	rootCmd.AddCommand(bridgeCmd)
}

func runBridge(cmd *cobra.Command, args []string) error {
	log := logging.L()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	hardwareID, generated, err := cfg.EnsureHardwareID()
	if err != nil {
		return err
	}
	if generated {
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("persist hardware id: %w", err)
		}
		log.Info("generated hardware id", zap.Uint32("id", hardwareID))
	}

	conn, connInfo, err := openConnection(vedirect.BaudRate)
	if err != nil {
		return err
	}
	defer conn.Close()

	store := vedirect.NewRegisterStore(hardwareID, cfg.VEDirect.DeviceName)
	store.OnNameChange(func(name string) {
		cfg.VEDirect.DeviceName = name
		if err := cfg.Save(); err != nil {
			log.Warn("persist custom name failed", zap.Error(err))
		} else {
			log.Info("custom name changed", zap.String("name", name))
		}
	})

	transport := vedirect.NewStreamTransport(conn, nil)
	bridge := vedirect.NewBridge(transport, store, nil, log)

	enabled := cfg.VEDirect.Enabled && !bridgeDisabled
	if err := bridge.SetEnabled(enabled); err != nil {
		return fmt.Errorf("enable bridge: %w", err)
	}

	sim := sensor.NewSim(nil)
	if err := sim.Begin(); err != nil {
		return err
	}
	if err := sim.SetShunt(cfg.Shunt.MaxCurrent, cfg.Shunt.ShuntResistance); err != nil {
		return err
	}
	history := sensor.NewHistory(nil)

	fmt.Printf("OpenShunt VE.Direct bridge\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Sensor: %s  Serial: %08X  Name: %q  Enabled: %v\n",
		sim.DriverName(), hardwareID, store.CustomName(), bridge.Enabled())
	fmt.Printf("Press Ctrl+C to exit\n\n")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(bridgePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sig:
			log.Info("shutting down")
			return nil
		case <-ticker.C:
			st := sensor.Snapshot(sim)
			history.Observe(&st)
			bridge.Update(st)
		}
	}
}
