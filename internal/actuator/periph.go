// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package actuator

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphPins drives the outputs through periph.io's GPIO registry.
type PeriphPins struct {
	motors     [2]gpio.PinOut
	indicators [2]gpio.PinOut
}

// OpenPeriph initializes the periph host and claims the four pins as
// outputs, starting low.
func OpenPeriph(names PinNames) (*PeriphPins, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("actuator: periph host init: %w", err)
	}

	p := &PeriphPins{}
	outputs := []struct {
		name string
		dst  *gpio.PinOut
	}{
		{names.MotorLeft, &p.motors[Left]},
		{names.MotorRight, &p.motors[Right]},
		{names.IndicatorLeft, &p.indicators[Left]},
		{names.IndicatorRight, &p.indicators[Right]},
	}
	for _, o := range outputs {
		pin := gpioreg.ByName(o.name)
		if pin == nil {
			return nil, fmt.Errorf("actuator: pin %q not found", o.name)
		}
		if err := pin.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("actuator: pin %q as output: %w", o.name, err)
		}
		*o.dst = pin
	}
	log.Printf("actuator: periph outputs ready (motors %s/%s, indicators %s/%s)",
		names.MotorLeft, names.MotorRight, names.IndicatorLeft, names.IndicatorRight)
	return p, nil
}

func (p *PeriphPins) SetMotor(side Side, on bool) {
	write(p.motors[side], "motor", side, on)
}

func (p *PeriphPins) SetIndicator(side Side, on bool) {
	write(p.indicators[side], "indicator", side, on)
}

// Close drives all outputs low.
func (p *PeriphPins) Close() error {
	for _, pin := range append(p.motors[:], p.indicators[:]...) {
		if pin == nil {
			continue
		}
		if err := pin.Out(gpio.Low); err != nil {
			return fmt.Errorf("actuator: reset %s: %w", pin, err)
		}
	}
	return nil
}

func write(pin gpio.PinOut, kind string, side Side, on bool) {
	if pin == nil {
		return
	}
	if err := pin.Out(gpio.Level(on)); err != nil {
		log.Printf("actuator: %s %s write error: %v", side, kind, err)
	}
}
