// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package actuator

import (
	"fmt"
	"log"
	"sync"

	"github.com/relabs-tech/gps_navigator/internal/nav"
)

// LogPins is a dry-run backend: it keeps the output levels in memory and
// logs every change. Handy on a laptop or with the mock console.
type LogPins struct {
	motors     [2]bool
	indicators [2]bool
}

func NewLogPins() *LogPins {
	return &LogPins{}
}

func (p *LogPins) SetMotor(side Side, on bool) {
	if p.motors[side] != on {
		log.Printf("actuator: %s motor %s", side, onOff(on))
	}
	p.motors[side] = on
}

func (p *LogPins) SetIndicator(side Side, on bool) {
	if p.indicators[side] != on {
		log.Printf("actuator: %s indicator %s", side, onOff(on))
	}
	p.indicators[side] = on
}

func (p *LogPins) Close() error {
	p.motors = [2]bool{}
	p.indicators = [2]bool{}
	return nil
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// Write is one recorded pin write.
type Write struct {
	Output string // "motor" or "indicator"
	Side   Side
	On     bool
}

func (w Write) String() string {
	return fmt.Sprintf("%s %s %s", w.Side, w.Output, onOff(w.On))
}

// Recorder is an in-memory Pins for tests. It remembers the current level of
// each output and every write in order.
type Recorder struct {
	mu     sync.Mutex
	writes []Write
	closed bool
	cmd    nav.Command
}

func (r *Recorder) SetMotor(side Side, on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, Write{Output: "motor", Side: side, On: on})
	if side == Left {
		r.cmd.MotorLeft = on
	} else {
		r.cmd.MotorRight = on
	}
}

func (r *Recorder) SetIndicator(side Side, on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, Write{Output: "indicator", Side: side, On: on})
	if side == Left {
		r.cmd.IndicatorLeft = on
	} else {
		r.cmd.IndicatorRight = on
	}
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Levels returns the current output levels.
func (r *Recorder) Levels() nav.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cmd
}

// Writes returns a copy of the write history.
func (r *Recorder) Writes() []Write {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Write(nil), r.writes...)
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
