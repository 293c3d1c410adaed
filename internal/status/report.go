// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package status

import (
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/gps_navigator/internal/geo"
	"github.com/relabs-tech/gps_navigator/internal/gps"
	"github.com/relabs-tech/gps_navigator/internal/nav"
)

// Report is what one control cycle did. Result is nil while waiting for a fix.
type Report struct {
	Time        time.Time   `json:"time"`
	Fix         gps.Fix     `json:"fix"`
	Destination geo.Point   `json:"destination"`
	Result      *nav.Result `json:"result,omitempty"`
	Message     string      `json:"message"`
}

// BuildReport composes the report of a cycle. Pass a nil result when the
// fix was not valid.
func BuildReport(now time.Time, fix gps.Fix, dest geo.Point, res *nav.Result) Report {
	r := Report{
		Time:        now,
		Fix:         fix,
		Destination: dest,
		Result:      res,
		Message:     nav.WaitingMessage,
	}
	if res != nil {
		r.Message = res.State.Message()
	}
	return r
}

// Line renders the report as a single human-readable status line.
func (r Report) Line() string {
	if r.Result == nil {
		return r.Message
	}
	if r.Result.State == nav.Arrived {
		return fmt.Sprintf("%s (dist=%.1f m)", r.Message, r.Result.Distance)
	}
	return fmt.Sprintf("%s (dist=%.1f m, bearing=%.1f°)", r.Message, r.Result.Distance, r.Result.Bearing)
}

// Reporter consumes one report per cycle. Implementations must not block the
// control loop for long and handle their own errors.
type Reporter interface {
	Report(r Report)
}

// Multi fans a report out to several reporters in order.
type Multi []Reporter

func (m Multi) Report(r Report) {
	for _, rep := range m {
		rep.Report(r)
	}
}

// LogReporter prints the status line through the standard logger.
type LogReporter struct {
	Logger *log.Logger // nil means log.Default()
}

func (l LogReporter) Report(r Report) {
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("navigator: %s", r.Line())
}
