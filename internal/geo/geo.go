// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package geo

import (
	"math"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle math.
const EarthRadiusMeters = 6371000.0

// Point is a position on the Earth's surface in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// Normalize360 maps any angle in degrees into [0, 360).
func Normalize360(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	// -1e-15 + 360 rounds to 360; fold it back.
	if d >= 360 || d == 0 {
		return 0
	}
	return d
}

// DistanceMeters returns the haversine great-circle distance between a and b.
//
// Inputs are not range checked. The atan2 form keeps precision for both very
// short and near-antipodal separations.
func DistanceMeters(a, b Point) float64 {
	lat1 := Radians(a.Lat)
	lat2 := Radians(b.Lat)
	dLat := lat2 - lat1
	dLon := Radians(b.Lon) - Radians(a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// BearingDegrees returns the initial great-circle bearing from a to b in
// degrees, clockwise from true north, in [0, 360).
//
// The bearing is undefined when a == b; the function returns 0 there.
func BearingDegrees(a, b Point) float64 {
	lat1 := Radians(a.Lat)
	lat2 := Radians(b.Lat)
	dLon := Radians(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return Normalize360(Degrees(math.Atan2(y, x)))
}
