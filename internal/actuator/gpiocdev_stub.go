// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

//go:build !linux

package actuator

import "fmt"

// GPIOCDevPins is unavailable off Linux.
type GPIOCDevPins struct{}

func OpenGPIOCDev(chipName string, names PinNames) (*GPIOCDevPins, error) {
	return nil, fmt.Errorf("actuator: gpiocdev unsupported on this platform")
}

func (p *GPIOCDevPins) SetMotor(side Side, on bool)     {}
func (p *GPIOCDevPins) SetIndicator(side Side, on bool) {}
func (p *GPIOCDevPins) Close() error                    { return nil }
