// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"log"

	"github.com/relabs-tech/gps_navigator/internal/actuator"
	"github.com/relabs-tech/gps_navigator/internal/config"
	"github.com/relabs-tech/gps_navigator/internal/geo"
	"github.com/relabs-tech/gps_navigator/internal/gps"
	"github.com/relabs-tech/gps_navigator/internal/status"
)

const (
	mockWaitingCycles = 3
	mockWalkSteps     = 20
)

// simulatedWalk returns steps fixes on a straight line from start to dest,
// the last one exactly on dest.
func simulatedWalk(start, dest geo.Point, steps int) []gps.Fix {
	if steps < 1 {
		steps = 1
	}
	fixes := make([]gps.Fix, 0, steps)
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		p := geo.Point{
			Lat: start.Lat + (dest.Lat-start.Lat)*f,
			Lon: start.Lon + (dest.Lon-start.Lon)*f,
		}
		if i == steps {
			p = dest
		}
		fixes = append(fixes, gps.Fix{
			Valid:      true,
			Validity:   "A",
			Latitude:   p.Lat,
			Longitude:  p.Lon,
			Satellites: 8,
		})
	}
	return fixes
}

// mockScript is a few cycles without signal, then a walk towards dest from a
// point roughly 1 km south-east of it.
func mockScript(dest geo.Point) []gps.Fix {
	start := geo.Point{Lat: dest.Lat - 0.0095, Lon: dest.Lon + 0.0030}
	script := make([]gps.Fix, mockWaitingCycles, mockWaitingCycles+mockWalkSteps)
	return append(script, simulatedWalk(start, dest, mockWalkSteps)...)
}

// RunMockConsole runs the navigator against a simulated walk with logged
// outputs, so the control loop can be tried without a GPS or GPIO.
func RunMockConsole(ctx context.Context, cfg config.Config) error {
	src := gps.NewScriptedSource(mockScript(cfg.Destination)...)
	pins := actuator.NewLogPins()
	defer pins.Close()

	n := NewNavigator(cfg, src, pins, status.LogReporter{}, nil)
	err := n.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Println("mock console: shutting down")
		return nil
	}
	return err
}
