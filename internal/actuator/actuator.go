// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package actuator

import (
	"fmt"

	"github.com/relabs-tech/gps_navigator/internal/config"
	"github.com/relabs-tech/gps_navigator/internal/nav"
)

// Side selects the left or right output of a pair.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Pins drives the two vibration motors and the two indicator LEDs.
// Writes are fire-and-forget: backends log failures instead of returning them.
type Pins interface {
	SetMotor(side Side, on bool)
	SetIndicator(side Side, on bool)
}

// Sink applies navigation states to a set of pins.
type Sink struct {
	pins Pins
}

func NewSink(pins Pins) *Sink {
	return &Sink{pins: pins}
}

// Apply drives all four outputs to the fixed levels for state.
func (s *Sink) Apply(state nav.State) {
	cmd := nav.CommandFor(state)
	s.pins.SetMotor(Left, cmd.MotorLeft)
	s.pins.SetMotor(Right, cmd.MotorRight)
	s.pins.SetIndicator(Left, cmd.IndicatorLeft)
	s.pins.SetIndicator(Right, cmd.IndicatorRight)
}

// Off drives every output low.
func (s *Sink) Off() {
	s.pins.SetMotor(Left, false)
	s.pins.SetMotor(Right, false)
	s.pins.SetIndicator(Left, false)
	s.pins.SetIndicator(Right, false)
}

// PinNames are the board names of the four outputs, e.g. "GPIO17".
type PinNames struct {
	MotorLeft      string
	MotorRight     string
	IndicatorLeft  string
	IndicatorRight string
}

// PinNamesFromConfig extracts the output pin names.
func PinNamesFromConfig(cfg config.Config) PinNames {
	return PinNames{
		MotorLeft:      cfg.MotorLeftPin,
		MotorRight:     cfg.MotorRightPin,
		IndicatorLeft:  cfg.IndicatorLeftPin,
		IndicatorRight: cfg.IndicatorRightPin,
	}
}

// Closer is implemented by backends holding hardware resources.
type Closer interface {
	Pins
	Close() error
}

// Open returns the pins backend selected by cfg.ActuatorBackend.
func Open(cfg config.Config) (Closer, error) {
	names := PinNamesFromConfig(cfg)
	switch cfg.ActuatorBackend {
	case config.BackendPeriph:
		p, err := OpenPeriph(names)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.BackendGPIOCDev:
		p, err := OpenGPIOCDev(cfg.GPIOChip, names)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.BackendLog:
		return NewLogPins(), nil
	default:
		return nil, fmt.Errorf("actuator: unknown backend %q", cfg.ActuatorBackend)
	}
}
