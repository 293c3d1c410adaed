// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/relabs-tech/gps_navigator/internal/actuator"
	"github.com/relabs-tech/gps_navigator/internal/config"
	"github.com/relabs-tech/gps_navigator/internal/gps"
	"github.com/relabs-tech/gps_navigator/internal/metrics"
	"github.com/relabs-tech/gps_navigator/internal/nav"
	"github.com/relabs-tech/gps_navigator/internal/status"
)

// Navigator runs the control cycle: poll position, compute distance and
// bearing to the destination, drive the outputs, report.
type Navigator struct {
	cfg      config.Config
	src      gps.Source
	sink     *actuator.Sink
	reporter status.Reporter
	metrics  *metrics.Collector // optional
}

func NewNavigator(cfg config.Config, src gps.Source, pins actuator.Pins, reporter status.Reporter, m *metrics.Collector) *Navigator {
	return &Navigator{
		cfg:      cfg,
		src:      src,
		sink:     actuator.NewSink(pins),
		reporter: reporter,
		metrics:  m,
	}
}

// Cycle performs one control step. Without a valid fix nothing is computed
// and the outputs keep their previous levels; the next cycle simply tries
// again.
func (n *Navigator) Cycle(now time.Time) status.Report {
	fix := n.src.Poll()

	if !fix.Valid {
		rep := status.BuildReport(now, fix, n.cfg.Destination, nil)
		if n.metrics != nil {
			n.metrics.ObserveWaiting()
		}
		n.reporter.Report(rep)
		return rep
	}

	res := nav.Evaluate(fix.Point(), n.cfg.Destination, n.cfg.ArrivalThresholdM)
	n.sink.Apply(res.State)

	if n.metrics != nil {
		n.metrics.ObserveResult(res)
	}
	rep := status.BuildReport(now, fix, n.cfg.Destination, &res)
	n.reporter.Report(rep)
	return rep
}

// Run executes one cycle immediately and then one per CycleInterval until
// ctx is done, then drives every output low. The tick is the only place the
// loop waits.
func (n *Navigator) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.cfg.CycleInterval())
	defer ticker.Stop()

	n.Cycle(time.Now())
	for {
		select {
		case <-ctx.Done():
			n.sink.Off()
			return ctx.Err()
		case t := <-ticker.C:
			n.Cycle(t)
		}
	}
}

// RunNavigator wires the hardware described by cfg and runs the control loop
// until ctx is cancelled. When replayPath is set, NMEA is read from that file
// instead of the serial port.
func RunNavigator(ctx context.Context, cfg config.Config, replayPath string) error {
	log.Printf("navigator: destination %.6f, %.6f (arrival radius %.1f m, cycle %s)",
		cfg.Destination.Lat, cfg.Destination.Lon, cfg.ArrivalThresholdM, cfg.CycleInterval())

	// ---- 1) Position source ----
	var (
		src   gps.Source
		stats func() gps.Stats
	)
	if replayPath != "" {
		f, err := os.Open(replayPath)
		if err != nil {
			return fmt.Errorf("open replay log: %w", err)
		}
		defer f.Close()
		rs := gps.NewReplaySource(f)
		src, stats = rs, rs.Stats
		log.Printf("navigator: replaying NMEA from %s", replayPath)
	} else {
		ss, err := gps.OpenSerial(cfg.GPSSerialPort, cfg.GPSBaudRate)
		if err != nil {
			return err
		}
		defer ss.Close()
		src, stats = ss, ss.Stats
	}

	// ---- 2) Outputs ----
	pins, err := actuator.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := pins.Close(); err != nil {
			log.Printf("navigator: output reset error: %v", err)
		}
	}()

	// ---- 3) Status reporters ----
	reporters := status.Multi{status.LogReporter{}}
	if cfg.MQTTBroker != "" {
		client, err := status.ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDNavigator)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		reporters = append(reporters, status.MQTTReporter{
			Client:      client,
			StatusTopic: cfg.TopicNavStatus,
			GPSTopic:    cfg.TopicGPS,
		})
	}
	if cfg.DisplayEnabled {
		display, err := status.OpenDisplay(cfg.DisplayI2CBus)
		if err != nil {
			return err
		}
		defer display.Close()
		reporters = append(reporters, display)
	}

	// ---- 4) Metrics ----
	var collector *metrics.Collector
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		if collector, err = metrics.NewCollector(reg); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		if err := metrics.RegisterNMEAStats(reg, stats); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		srv := serveMetrics(cfg.MetricsAddr, collector.Handler())
		defer srv.Close()
	}

	navigator := NewNavigator(cfg, src, pins, reporters, collector)
	log.Println("navigator: starting control loop")

	err = navigator.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Println("navigator: shutting down")
		return nil
	}
	return err
}

func serveMetrics(addr string, handler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Printf("navigator: metrics listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("navigator: metrics server error: %v", err)
		}
	}()
	return srv
}
