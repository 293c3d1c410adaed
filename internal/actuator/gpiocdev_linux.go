// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

//go:build linux

package actuator

import (
	"fmt"
	"log"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "gps-navigator"

// GPIOCDevPins drives the outputs through the Linux GPIO character device.
// Used on boards where periph's register access is unavailable (Pi 5).
type GPIOCDevPins struct {
	chip       *gpiocdev.Chip
	motors     [2]*gpiocdev.Line
	indicators [2]*gpiocdev.Line
}

// OpenGPIOCDev requests the four named lines on chipName as outputs, low.
func OpenGPIOCDev(chipName string, names PinNames) (*GPIOCDevPins, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("actuator: open %s: %w", chipName, err)
	}

	p := &GPIOCDevPins{chip: chip}
	outputs := []struct {
		name string
		dst  **gpiocdev.Line
	}{
		{names.MotorLeft, &p.motors[Left]},
		{names.MotorRight, &p.motors[Right]},
		{names.IndicatorLeft, &p.indicators[Left]},
		{names.IndicatorRight, &p.indicators[Right]},
	}
	for _, o := range outputs {
		offset, err := chip.FindLine(o.name)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("actuator: line %q on %s: %w", o.name, chipName, err)
		}
		line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0), gpiocdev.WithConsumer(consumer))
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("actuator: request line %q: %w", o.name, err)
		}
		*o.dst = line
	}
	log.Printf("actuator: gpiocdev outputs ready on %s", chipName)
	return p, nil
}

func (p *GPIOCDevPins) SetMotor(side Side, on bool) {
	setLine(p.motors[side], "motor", side, on)
}

func (p *GPIOCDevPins) SetIndicator(side Side, on bool) {
	setLine(p.indicators[side], "indicator", side, on)
}

// Close turns every output off and releases the lines and the chip.
func (p *GPIOCDevPins) Close() error {
	var firstErr error
	for _, line := range append(p.motors[:], p.indicators[:]...) {
		if line == nil {
			continue
		}
		_ = line.SetValue(0)
		if err := line.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.motors = [2]*gpiocdev.Line{}
	p.indicators = [2]*gpiocdev.Line{}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.chip = nil
	}
	return firstErr
}

func setLine(line *gpiocdev.Line, kind string, side Side, on bool) {
	if line == nil {
		return
	}
	v := 0
	if on {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		log.Printf("actuator: %s %s write error: %v", side, kind, err)
	}
}
