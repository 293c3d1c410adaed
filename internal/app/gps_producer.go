// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/gps_navigator/internal/config"
	"github.com/relabs-tech/gps_navigator/internal/gps"
	"github.com/relabs-tech/gps_navigator/internal/status"
)

// fixPublisher publishes a fix whenever it differs from the last one sent.
type fixPublisher struct {
	client status.Publisher
	topic  string
	last   gps.Fix
	sent   bool
}

func (p *fixPublisher) publish(f gps.Fix) (bool, error) {
	if !f.Valid || (p.sent && f == p.last) {
		return false, nil
	}
	payload, err := json.Marshal(f)
	if err != nil {
		return false, fmt.Errorf("GPS JSON marshal error: %w", err)
	}
	token := p.client.Publish(p.topic, 0, true, payload)
	if !token.WaitTimeout(time.Second) {
		return false, fmt.Errorf("GPS publish to %s timed out", p.topic)
	}
	if err := token.Error(); err != nil {
		return false, fmt.Errorf("GPS publish error: %w", err)
	}
	p.last = f
	p.sent = true
	return true, nil
}

// RunGPSProducer reads NMEA from the GPS serial port and publishes every new
// valid fix as JSON on TopicGPS, so the web and console tools can show the
// position without the navigator running.
func RunGPSProducer(ctx context.Context, cfg config.Config) error {
	if cfg.MQTTBroker == "" {
		return errors.New("gps producer: MQTT_BROKER is not configured")
	}

	client, err := status.ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDGPS)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	src, err := gps.OpenSerial(cfg.GPSSerialPort, cfg.GPSBaudRate)
	if err != nil {
		return err
	}
	defer src.Close()

	pub := &fixPublisher{client: client, topic: cfg.TopicGPS}
	ticker := time.NewTicker(cfg.CycleInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s := src.Stats()
			log.Printf("gps producer: shutting down (parsed=%d ignored=%d failed=%d)", s.Parsed, s.Ignored, s.Failed)
			return nil
		case <-ticker.C:
			f := src.Poll()
			ok, err := pub.publish(f)
			if err != nil {
				log.Printf("gps producer: %v", err)
				continue
			}
			if ok {
				log.Printf("published GPS fix: lat=%.6f lon=%.6f sats=%d", f.Latitude, f.Longitude, f.Satellites)
			}
		}
	}
}
