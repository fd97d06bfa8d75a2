// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors
//
// OpenShunt - battery-shunt monitor with a Victron VE.Direct telemetry
// bridge.

package main

import (
	"os"

	"github.com/openshunt/openshunt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
