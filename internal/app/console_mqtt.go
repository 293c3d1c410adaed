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

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gps_navigator/internal/config"
	"github.com/relabs-tech/gps_navigator/internal/gps"
	"github.com/relabs-tech/gps_navigator/internal/status"
)

func formatStatusLine(r status.Report) string {
	return fmt.Sprintf("[NAV ]  %s  %s", r.Time.Format("15:04:05"), r.Line())
}

func formatFixLine(f gps.Fix) string {
	return fmt.Sprintf(
		"[GPS ]  time=%s date=%s lat=%.6f lon=%.6f speed=%.1fkn course=%.1f° sats=%d validity=%s",
		f.Time, f.Date, f.Latitude, f.Longitude, f.SpeedKnots, f.CourseDeg, f.Satellites, f.Validity,
	)
}

// RunConsoleMQTT prints navigator status and GPS fixes from MQTT until ctx
// is cancelled.
func RunConsoleMQTT(ctx context.Context, cfg config.Config) error {
	if cfg.MQTTBroker == "" {
		return errors.New("console: MQTT_BROKER is not configured")
	}

	client, err := status.ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	navToken := client.Subscribe(cfg.TopicNavStatus, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r status.Report
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("console: status unmarshal error: %v", err)
			return
		}
		fmt.Println(formatStatusLine(r))
	})
	navToken.Wait()
	if navToken.Error() != nil {
		return navToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicNavStatus)

	gpsToken := client.Subscribe(cfg.TopicGPS, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var f gps.Fix
		if err := json.Unmarshal(msg.Payload(), &f); err != nil {
			log.Printf("console: gps unmarshal error: %v", err)
			return
		}
		fmt.Println(formatFixLine(f))
	})
	gpsToken.Wait()
	if gpsToken.Error() != nil {
		return gpsToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicGPS)

	<-ctx.Done()
	log.Println("console: shutting down")
	return nil
}
