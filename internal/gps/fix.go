// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import "github.com/relabs-tech/gps_navigator/internal/geo"

// Fix represents the latest decoded GPS position suitable for JSON and MQTT.
// Latitude and Longitude are meaningless while Valid is false.
type Fix struct {
	Valid      bool    `json:"valid"`
	Latitude   float64 `json:"lat"`         // decimal degrees
	Longitude  float64 `json:"lon"`         // decimal degrees
	Time       string  `json:"time"`        // e.g. "12:34:56.0000"
	Date       string  `json:"date"`        // e.g. "23/03/94"
	SpeedKnots float64 `json:"speed_knots"` // speed over ground
	CourseDeg  float64 `json:"course_deg"`  // course over ground
	Validity   string  `json:"validity"`    // "A" (valid) / "V" (void), follows Valid
	Satellites int     `json:"satellites"`  // from GGA
}

// Point returns the fix position.
func (f Fix) Point() geo.Point {
	return geo.Point{Lat: f.Latitude, Lon: f.Longitude}
}

// Source provides the latest fix each time it is polled.
type Source interface {
	Poll() Fix
}
