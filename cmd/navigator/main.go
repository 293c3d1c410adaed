// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/gps_navigator/internal/app"
	"github.com/relabs-tech/gps_navigator/internal/config"
)

func main() {
	configPath := flag.String("config", "navigator_config.txt", "path to config file (KEY=VALUE or .yaml)")
	replay := flag.String("replay", "", "read NMEA from this log file instead of the serial port")
	flag.Parse()

	log.Println("starting gps-navigator (NMEA → GPIO)")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunNavigator(ctx, cfg, *replay); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
