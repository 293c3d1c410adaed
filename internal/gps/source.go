// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"bufio"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"sync/atomic"
)

// chunkSize is the read size of the stream pump. At 9600 baud the receiver
// produces under 1 KiB per second.
const chunkSize = 512

// StreamSource decodes a byte stream (serial port, pipe, socket) in the
// background and hands the latest fix to Poll. A single pump goroutine owns
// the reader; the decoder itself is only touched from Poll.
type StreamSource struct {
	rc      io.ReadCloser
	chunks  chan []byte
	dec     *Decoder
	done    chan struct{}
	closeMu sync.Once

	readErrors atomic.Uint64
	streamErr  error // set by pump before chunks is closed
}

// NewStreamSource starts pumping rc. Close stops the pump and closes rc.
func NewStreamSource(rc io.ReadCloser) *StreamSource {
	s := &StreamSource{
		rc:     rc,
		chunks: make(chan []byte, 64),
		dec:    NewDecoder(),
		done:   make(chan struct{}),
	}
	go s.pump()
	return s
}

func (s *StreamSource) pump() {
	defer close(s.chunks)
	for {
		buf := make([]byte, chunkSize)
		n, err := s.rc.Read(buf)
		if n > 0 {
			select {
			case s.chunks <- buf[:n]:
			case <-s.done:
				return
			}
		}
		if err != nil {
			s.streamErr = err
			select {
			case <-s.done:
			default:
				if !errors.Is(err, io.EOF) {
					s.readErrors.Add(1)
					log.Printf("gps: read error: %v", err)
				}
			}
			return
		}
	}
}

// Poll drains every chunk that arrived since the previous call into the
// decoder and returns the latest fix. It never blocks. Once the stream has
// ended every Poll logs that the fix is no longer being refreshed.
func (s *StreamSource) Poll() Fix {
	for {
		select {
		case chunk, ok := <-s.chunks:
			if !ok {
				s.logStopped()
				return s.dec.Fix()
			}
			s.dec.Write(chunk)
		default:
			return s.dec.Fix()
		}
	}
}

// Stats returns the decoder counters plus transport read errors.
func (s *StreamSource) Stats() Stats {
	st := s.dec.Stats()
	st.ReadErrors = s.readErrors.Load()
	return st
}

func (s *StreamSource) logStopped() {
	select {
	case <-s.done:
		return
	default:
	}
	log.Printf("gps: receiver stream stopped (%v), holding last fix", s.streamErr)
}

// Close stops the pump and closes the underlying reader.
func (s *StreamSource) Close() error {
	var err error
	s.closeMu.Do(func() {
		close(s.done)
		err = s.rc.Close()
	})
	return err
}

// ReplaySource feeds a recorded NMEA log one receiver epoch per Poll: lines
// are consumed up to and including the next RMC sentence. Once the log is
// exhausted the last fix is returned forever.
type ReplaySource struct {
	scanner *bufio.Scanner
	dec     *Decoder
	eof     bool
}

func NewReplaySource(r io.Reader) *ReplaySource {
	return &ReplaySource{
		scanner: bufio.NewScanner(r),
		dec:     NewDecoder(),
	}
}

func (s *ReplaySource) Poll() Fix {
	for !s.eof {
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				log.Printf("gps: replay read error: %v", err)
			}
			s.eof = true
			break
		}
		line := s.scanner.Text()
		s.dec.Write([]byte(line + "\n"))
		if isRMC(line) {
			break
		}
	}
	return s.dec.Fix()
}

func (s *ReplaySource) Stats() Stats {
	return s.dec.Stats()
}

func isRMC(line string) bool {
	line = strings.TrimSpace(line)
	return len(line) > 6 && strings.HasPrefix(line, "$") && line[3:6] == "RMC"
}

// StaticSource always reports the same fix.
type StaticSource struct {
	Fix Fix
}

func (s StaticSource) Poll() Fix {
	return s.Fix
}

// ScriptedSource returns the given fixes in order, then repeats the last one.
// An empty script reports no fix.
type ScriptedSource struct {
	fixes []Fix
	next  int
}

func NewScriptedSource(fixes ...Fix) *ScriptedSource {
	return &ScriptedSource{fixes: fixes}
}

func (s *ScriptedSource) Poll() Fix {
	if len(s.fixes) == 0 {
		return Fix{}
	}
	f := s.fixes[s.next]
	if s.next < len(s.fixes)-1 {
		s.next++
	}
	return f
}
