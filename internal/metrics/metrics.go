// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relabs-tech/gps_navigator/internal/gps"
	"github.com/relabs-tech/gps_navigator/internal/nav"
)

// Cycle label used while no valid fix is available.
const waitingLabel = "waiting"

// Collector bundles the navigator's Prometheus metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	Cycles   *prometheus.CounterVec
	FixValid prometheus.Gauge
	Distance prometheus.Gauge
	Bearing  prometheus.Gauge
}

// NewCollector registers the navigator metrics against reg, defaulting to the
// global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	cycles, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "navigator_cycles_total",
		Help: "Control cycles run, labeled by resulting state (or waiting when no fix).",
	}, []string{"state"}))
	if err != nil {
		return nil, err
	}
	fixValid, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "navigator_fix_valid",
		Help: "1 when the last cycle had a valid GPS fix, else 0.",
	}))
	if err != nil {
		return nil, err
	}
	distance, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "navigator_distance_meters",
		Help: "Great-circle distance to the destination at the last valid fix.",
	}))
	if err != nil {
		return nil, err
	}
	bearing, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "navigator_bearing_degrees",
		Help: "Initial bearing to the destination at the last valid fix.",
	}))
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer: gatherer,
		Cycles:   cycles,
		FixValid: fixValid,
		Distance: distance,
		Bearing:  bearing,
	}, nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge) (prometheus.Gauge, error) {
	if err := reg.Register(g); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return g, nil
}

// ObserveWaiting records a cycle without a valid fix.
func (c *Collector) ObserveWaiting() {
	c.Cycles.WithLabelValues(waitingLabel).Inc()
	c.FixValid.Set(0)
}

// ObserveResult records a cycle with a valid fix.
func (c *Collector) ObserveResult(res nav.Result) {
	c.Cycles.WithLabelValues(res.State.String()).Inc()
	c.FixValid.Set(1)
	c.Distance.Set(res.Distance)
	c.Bearing.Set(res.Bearing)
}

// RegisterNMEAStats exposes decoder line counters read lazily from stats.
func RegisterNMEAStats(reg prometheus.Registerer, stats func() gps.Stats) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	results := map[string]func(gps.Stats) uint64{
		"parsed":   func(s gps.Stats) uint64 { return s.Parsed },
		"ignored":  func(s gps.Stats) uint64 { return s.Ignored },
		"failed":   func(s gps.Stats) uint64 { return s.Failed },
		"overflow": func(s gps.Stats) uint64 { return s.Overflow },
	}
	for result, get := range results {
		get := get
		cf := prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        "navigator_nmea_lines_total",
			Help:        "NMEA lines seen by the decoder, labeled by outcome.",
			ConstLabels: prometheus.Labels{"result": result},
		}, func() float64 { return float64(get(stats())) })
		if err := reg.Register(cf); err != nil {
			return err
		}
	}

	readErrors := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "navigator_gps_read_errors_total",
		Help: "Failed reads from the GPS receiver transport.",
	}, func() float64 { return float64(stats().ReadErrors) })
	return reg.Register(readErrors)
}

// Handler returns an HTTP handler exposing the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
