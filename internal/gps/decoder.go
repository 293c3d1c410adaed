// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"strings"
	"sync/atomic"

	nmea "github.com/adrianmo/go-nmea"
)

// maxLineLen bounds the line buffer. NMEA 0183 caps sentences at 82 chars,
// so anything longer is line noise.
const maxLineLen = 256

// Stats counts what the decoder did with each input line.
type Stats struct {
	Parsed   uint64 // RMC, GGA or GLL applied to the fix
	Ignored  uint64 // valid NMEA we don't use, or not NMEA at all
	Failed   uint64 // parse or checksum error
	Overflow uint64 // line longer than maxLineLen

	ReadErrors uint64 // transport read failures, set by StreamSource
}

type counters struct {
	parsed, ignored, failed, overflow atomic.Uint64
}

// Decoder turns a raw NMEA byte stream into a Fix. It implements io.Writer
// so it can sit at the end of any byte pipe. Write and Fix must be called
// from one goroutine; Stats may be read from anywhere.
type Decoder struct {
	buf        []byte
	discarding bool
	fix        Fix
	stats      counters
}

func NewDecoder() *Decoder {
	return &Decoder{buf: make([]byte, 0, maxLineLen)}
}

// Write feeds bytes to the decoder. Complete lines are decoded immediately;
// a trailing partial line is kept for the next call. It never fails.
func (d *Decoder) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			if !d.discarding {
				d.processLine(string(d.buf))
			}
			d.buf = d.buf[:0]
			d.discarding = false
			continue
		}
		if d.discarding {
			continue
		}
		if len(d.buf) >= maxLineLen {
			d.stats.overflow.Add(1)
			d.buf = d.buf[:0]
			d.discarding = true
			continue
		}
		d.buf = append(d.buf, b)
	}
	return len(p), nil
}

// Fix returns the latest decoded fix.
func (d *Decoder) Fix() Fix {
	return d.fix
}

// Stats returns the running line counters.
func (d *Decoder) Stats() Stats {
	return Stats{
		Parsed:   d.stats.parsed.Load(),
		Ignored:  d.stats.ignored.Load(),
		Failed:   d.stats.failed.Load(),
		Overflow: d.stats.overflow.Load(),
	}
}

func (d *Decoder) processLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	// NMEA sentences start with '$'
	if !strings.HasPrefix(line, "$") {
		d.stats.ignored.Add(1)
		return
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		// noisy GPS or partial sentences
		d.stats.failed.Add(1)
		return
	}

	switch m := sentence.(type) {
	case nmea.RMC:
		d.applyRMC(m)
	case nmea.GGA:
		d.applyGGA(m)
	case nmea.GLL:
		d.applyGLL(m)
	default:
		// GSA, GSV, VTG, ... carry nothing we navigate on
		d.stats.ignored.Add(1)
		return
	}
	d.stats.parsed.Add(1)
}

func (d *Decoder) applyRMC(m nmea.RMC) {
	d.fix.Validity = m.Validity
	d.fix.Time = m.Time.String()
	d.fix.Date = m.Date.String()
	if m.Validity != nmea.ValidRMC {
		d.fix.Valid = false
		return
	}
	d.fix.Valid = true
	d.fix.Latitude = m.Latitude
	d.fix.Longitude = m.Longitude
	d.fix.SpeedKnots = m.Speed
	d.fix.CourseDeg = m.Course
}

func (d *Decoder) applyGGA(m nmea.GGA) {
	d.fix.Time = m.Time.String()
	d.fix.Satellites = int(m.NumSatellites)
	if m.FixQuality == nmea.Invalid {
		d.fix.Valid = false
		d.fix.Validity = nmea.InvalidRMC
		return
	}
	d.fix.Valid = true
	d.fix.Validity = nmea.ValidRMC
	d.fix.Latitude = m.Latitude
	d.fix.Longitude = m.Longitude
}

func (d *Decoder) applyGLL(m nmea.GLL) {
	d.fix.Validity = m.Validity
	d.fix.Time = m.Time.String()
	if m.Validity != nmea.ValidGLL {
		d.fix.Valid = false
		return
	}
	d.fix.Valid = true
	d.fix.Latitude = m.Latitude
	d.fix.Longitude = m.Longitude
}
