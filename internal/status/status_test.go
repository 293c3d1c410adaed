package status

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"log"
	"strings"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gps_navigator/internal/geo"
	"github.com/relabs-tech/gps_navigator/internal/gps"
	"github.com/relabs-tech/gps_navigator/internal/nav"
)

var (
	testDest = geo.Point{Lat: -23.5505, Lon: -46.6333}
	testTime = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	testFix  = gps.Fix{Valid: true, Latitude: -23.56, Longitude: -46.63, Satellites: 7}
)

func TestBuildReport_Waiting(t *testing.T) {
	r := BuildReport(testTime, gps.Fix{}, testDest, nil)
	if r.Message != nav.WaitingMessage || r.Result != nil {
		t.Fatalf("report=%+v", r)
	}
	if r.Line() != "waiting for GPS signal..." {
		t.Fatalf("line=%q", r.Line())
	}
}

func TestBuildReport_Lines(t *testing.T) {
	cases := []struct {
		res  nav.Result
		want string
	}{
		{nav.Result{Distance: 1108.24, Bearing: 342.51, State: nav.Forward}, "go forward (dist=1108.2 m, bearing=342.5°)"},
		{nav.Result{Distance: 50, Bearing: 90, State: nav.TurnRight}, "turn right (dist=50.0 m, bearing=90.0°)"},
		{nav.Result{Distance: 50, Bearing: 270, State: nav.TurnLeft}, "turn left (dist=50.0 m, bearing=270.0°)"},
		{nav.Result{Distance: 3.21, State: nav.Arrived}, "arrived at destination (dist=3.2 m)"},
	}
	for _, tc := range cases {
		res := tc.res
		r := BuildReport(testTime, testFix, testDest, &res)
		if got := r.Line(); got != tc.want {
			t.Errorf("Line()=%q want %q", got, tc.want)
		}
	}
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	rep := LogReporter{Logger: log.New(&buf, "", 0)}
	rep.Report(BuildReport(testTime, gps.Fix{}, testDest, nil))
	if got := buf.String(); got != "navigator: waiting for GPS signal...\n" {
		t.Fatalf("log output=%q", got)
	}
}

type countingReporter struct{ n int }

func (c *countingReporter) Report(Report) { c.n++ }

func TestMulti_FansOut(t *testing.T) {
	a, b := &countingReporter{}, &countingReporter{}
	Multi{a, b}.Report(Report{})
	if a.n != 1 || b.n != 1 {
		t.Fatalf("counts=%d,%d want 1,1", a.n, b.n)
	}
}

type fakeToken struct {
	err  error
	done chan struct{}
}

func newFakeToken(err error) *fakeToken {
	done := make(chan struct{})
	close(done)
	return &fakeToken{err: err, done: done}
}

func (f *fakeToken) Wait() bool                     { return true }
func (f *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (f *fakeToken) Done() <-chan struct{}          { return f.done }
func (f *fakeToken) Error() error                   { return f.err }

type published struct {
	topic    string
	retained bool
	payload  []byte
}

type fakePublisher struct {
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.msgs = append(f.msgs, published{topic: topic, retained: retained, payload: payload.([]byte)})
	return newFakeToken(f.err)
}

func TestMQTTReporter_PublishesStatusAndFix(t *testing.T) {
	pub := &fakePublisher{}
	rep := MQTTReporter{Client: pub, StatusTopic: "navigator/status", GPSTopic: "navigator/gps"}

	res := nav.Result{Distance: 50, Bearing: 90, State: nav.TurnRight}
	rep.Report(BuildReport(testTime, testFix, testDest, &res))

	if len(pub.msgs) != 2 {
		t.Fatalf("published %d messages want 2", len(pub.msgs))
	}
	if pub.msgs[0].topic != "navigator/status" || !pub.msgs[0].retained {
		t.Fatalf("first message=%+v", pub.msgs[0])
	}

	var got Report
	if err := json.Unmarshal(pub.msgs[0].payload, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got.Result == nil || got.Result.State != nav.TurnRight || got.Message != "turn right" {
		t.Fatalf("decoded report=%+v", got)
	}
	if !strings.Contains(string(pub.msgs[0].payload), `"state":"turn_right"`) {
		t.Fatalf("payload missing state name: %s", pub.msgs[0].payload)
	}

	var fix gps.Fix
	if err := json.Unmarshal(pub.msgs[1].payload, &fix); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if fix != testFix {
		t.Fatalf("fix=%+v want %+v", fix, testFix)
	}
}

func TestMQTTReporter_SkipsFixWhileWaiting(t *testing.T) {
	pub := &fakePublisher{}
	rep := MQTTReporter{Client: pub, StatusTopic: "s", GPSTopic: "g"}
	rep.Report(BuildReport(testTime, gps.Fix{}, testDest, nil))
	if len(pub.msgs) != 1 || pub.msgs[0].topic != "s" {
		t.Fatalf("msgs=%+v want only status", pub.msgs)
	}
}

func TestMQTTReporter_PublishErrorIsNotFatal(t *testing.T) {
	pub := &fakePublisher{err: errors.New("not connected")}
	rep := MQTTReporter{Client: pub, StatusTopic: "s", GPSTopic: "g"}
	res := nav.Result{Distance: 4, State: nav.Arrived}
	rep.Report(BuildReport(testTime, testFix, testDest, &res))
	if len(pub.msgs) != 2 {
		t.Fatalf("expected both publishes to be attempted, got %d", len(pub.msgs))
	}
}

type fakeScreen struct {
	frames []image.Image
}

func (f *fakeScreen) Bounds() image.Rectangle { return image.Rect(0, 0, 128, 64) }

func (f *fakeScreen) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	f.frames = append(f.frames, src)
	return nil
}

func litPixels(img image.Image) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r != 0 {
				n++
			}
		}
	}
	return n
}

func TestDisplayReporter_DrawsEachReport(t *testing.T) {
	screen := &fakeScreen{}
	d := NewDisplayReporter(screen)

	d.Report(BuildReport(testTime, gps.Fix{}, testDest, nil))
	res := nav.Result{Distance: 1108.2, Bearing: 342.5, State: nav.Forward}
	d.Report(BuildReport(testTime, testFix, testDest, &res))

	if len(screen.frames) != 2 {
		t.Fatalf("frames=%d want 2", len(screen.frames))
	}
	for i, f := range screen.frames {
		if litPixels(f) == 0 {
			t.Fatalf("frame %d is blank", i)
		}
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if litPixels(screen.frames[2]) != 0 {
		t.Fatalf("expected blank frame on close")
	}
}

func TestReportLines(t *testing.T) {
	res := nav.Result{Distance: 4, State: nav.Arrived}
	lines := reportLines(BuildReport(testTime, testFix, testDest, &res))
	want := []string{"ARRIVED", "D: 4.0m", "Sats: 7"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("lines=%q want %q", lines, want)
	}
}
