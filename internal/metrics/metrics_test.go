package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/relabs-tech/gps_navigator/internal/gps"
	"github.com/relabs-tech/gps_navigator/internal/nav"
)

func TestCollector_ObservesCycles(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector() error: %v", err)
	}

	c.ObserveWaiting()
	c.ObserveResult(nav.Result{Distance: 1108.2, Bearing: 342.5, State: nav.Forward})
	c.ObserveResult(nav.Result{Distance: 4, State: nav.Arrived})

	if got := testutil.ToFloat64(c.Cycles.WithLabelValues("waiting")); got != 1 {
		t.Fatalf("waiting cycles=%v want 1", got)
	}
	if got := testutil.ToFloat64(c.Cycles.WithLabelValues("forward")); got != 1 {
		t.Fatalf("forward cycles=%v want 1", got)
	}
	if got := testutil.ToFloat64(c.FixValid); got != 1 {
		t.Fatalf("fix valid=%v want 1", got)
	}
	if got := testutil.ToFloat64(c.Distance); got != 4 {
		t.Fatalf("distance=%v want 4", got)
	}
}

func TestCollector_RegisterTwiceOnSameRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("first NewCollector() error: %v", err)
	}
	second, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("second NewCollector() error: %v", err)
	}
	second.ObserveWaiting()
	if got := testutil.ToFloat64(first.Cycles.WithLabelValues("waiting")); got != 1 {
		t.Fatalf("shared waiting cycles=%v want 1", got)
	}
}

func TestRegisterNMEAStats(t *testing.T) {
	reg := prometheus.NewRegistry()
	stats := gps.Stats{Parsed: 7, Failed: 2, ReadErrors: 1}
	if err := RegisterNMEAStats(reg, func() gps.Stats { return stats }); err != nil {
		t.Fatalf("RegisterNMEAStats() error: %v", err)
	}

	n, err := testutil.GatherAndCount(reg, "navigator_nmea_lines_total")
	if err != nil {
		t.Fatalf("GatherAndCount() error: %v", err)
	}
	if n != 4 {
		t.Fatalf("series=%d want 4", n)
	}

	want := `
# HELP navigator_nmea_lines_total NMEA lines seen by the decoder, labeled by outcome.
# TYPE navigator_nmea_lines_total counter
navigator_nmea_lines_total{result="failed"} 2
navigator_nmea_lines_total{result="ignored"} 0
navigator_nmea_lines_total{result="overflow"} 0
navigator_nmea_lines_total{result="parsed"} 7
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "navigator_nmea_lines_total"); err != nil {
		t.Fatalf("GatherAndCompare() error: %v", err)
	}

	wantReadErrors := `
# HELP navigator_gps_read_errors_total Failed reads from the GPS receiver transport.
# TYPE navigator_gps_read_errors_total counter
navigator_gps_read_errors_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(wantReadErrors), "navigator_gps_read_errors_total"); err != nil {
		t.Fatalf("GatherAndCompare() error: %v", err)
	}
}

func TestCollector_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector() error: %v", err)
	}
	c.ObserveResult(nav.Result{Distance: 50, Bearing: 90, State: nav.TurnRight})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `navigator_cycles_total{state="turn_right"} 1`) {
		t.Fatalf("metrics body missing turn_right counter:\n%s", body)
	}
}
