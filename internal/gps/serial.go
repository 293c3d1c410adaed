// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"fmt"
	"log"

	serial "github.com/jacobsa/go-serial/serial"
)

// OpenSerial opens the GPS UART (8N1) and returns a source decoding it.
// Typical ports: /dev/serial0, /dev/ttyAMA0, /dev/ttyUSB0.
func OpenSerial(portName string, baudRate int) (*StreamSource, error) {
	serialOpts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return nil, fmt.Errorf("gps: open %s: %w", portName, err)
	}
	log.Printf("gps: serial port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)

	return NewStreamSource(port), nil
}
