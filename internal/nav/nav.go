// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package nav

import (
	"fmt"

	"github.com/relabs-tech/gps_navigator/internal/geo"
)

// MinDistanceMeters is the default arrival radius around the destination.
const MinDistanceMeters = 10.0

// WaitingMessage is the status line reported while no valid fix exists.
const WaitingMessage = "waiting for GPS signal..."

// State is the discrete navigation instruction for one cycle.
type State int

const (
	Arrived State = iota
	TurnRight
	TurnLeft
	Forward
)

var stateNames = map[State]string{
	Arrived:   "arrived",
	TurnRight: "turn_right",
	TurnLeft:  "turn_left",
	Forward:   "forward",
}

var stateMessages = map[State]string{
	Arrived:   "arrived at destination",
	TurnRight: "turn right",
	TurnLeft:  "turn left",
	Forward:   "go forward",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Message returns the operator-facing status line for s.
func (s State) Message() string {
	if msg, ok := stateMessages[s]; ok {
		return msg
	}
	return s.String()
}

// MarshalText encodes the state as its lowercase name for JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	name, ok := stateNames[s]
	if !ok {
		return nil, fmt.Errorf("nav: unknown state %d", int(s))
	}
	return []byte(name), nil
}

// UnmarshalText parses a state name produced by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for st, name := range stateNames {
		if name == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("nav: unknown state %q", string(text))
}

// Decide maps a distance (meters) and bearing (degrees, [0,360)) to a State.
//
//	distance <= arrivalThreshold -> Arrived
//	45  <= bearing < 135         -> TurnRight
//	225 <= bearing < 315         -> TurnLeft
//	otherwise                    -> Forward
//
// There is no hysteresis: the same inputs always give the same state.
func Decide(distance, bearing, arrivalThreshold float64) State {
	switch {
	case distance <= arrivalThreshold:
		return Arrived
	case bearing >= 45 && bearing < 135:
		return TurnRight
	case bearing >= 225 && bearing < 315:
		return TurnLeft
	default:
		return Forward
	}
}

// Result is the outcome of evaluating one valid fix against the destination.
type Result struct {
	Distance float64 `json:"distance_m"`
	Bearing  float64 `json:"bearing_deg"`
	State    State   `json:"state"`
}

// Evaluate computes distance, bearing and state for current -> destination.
// Bearing is only computed outside the arrival radius and is 0 otherwise.
func Evaluate(current, destination geo.Point, arrivalThreshold float64) Result {
	dist := geo.DistanceMeters(current, destination)
	if dist <= arrivalThreshold {
		return Result{Distance: dist, State: Arrived}
	}

	bearing := geo.BearingDegrees(current, destination)
	return Result{
		Distance: dist,
		Bearing:  bearing,
		State:    Decide(dist, bearing, arrivalThreshold),
	}
}
