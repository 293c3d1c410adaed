// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package nav

// Command is the on/off level of the four outputs for one state.
type Command struct {
	MotorLeft      bool `json:"motor_left"`
	MotorRight     bool `json:"motor_right"`
	IndicatorLeft  bool `json:"indicator_left"`
	IndicatorRight bool `json:"indicator_right"`
}

// CommandFor returns the fixed output mapping for s. Unknown states map to
// all outputs off.
func CommandFor(s State) Command {
	switch s {
	case Arrived:
		return Command{MotorLeft: true, MotorRight: true, IndicatorLeft: true, IndicatorRight: true}
	case TurnRight:
		return Command{MotorRight: true, IndicatorRight: true}
	case TurnLeft:
		return Command{MotorLeft: true, IndicatorLeft: true}
	default:
		return Command{}
	}
}
