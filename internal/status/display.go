// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package status

import (
	"fmt"
	"image"
	"log"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/gps_navigator/internal/nav"
)

// Screen is the drawing surface of an SSD1306.
type Screen interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// DisplayReporter shows the navigation state on a 128x64 OLED.
type DisplayReporter struct {
	screen Screen
	bus    i2c.BusCloser
}

// NewDisplayReporter draws on an already opened screen.
func NewDisplayReporter(screen Screen) *DisplayReporter {
	return &DisplayReporter{screen: screen}
}

// OpenDisplay opens the I2C bus (empty name = first bus), initializes the
// SSD1306 and shows the splash screen.
func OpenDisplay(busName string) (*DisplayReporter, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("display: periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("display: open I2C bus: %w", err)
	}

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("display: init ssd1306: %w", err)
	}
	log.Printf("display: ssd1306 initialized on I2C bus %q", busName)

	d := &DisplayReporter{screen: dev, bus: bus}
	if err := d.draw(splashLines()); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}
	return d, nil
}

func (d *DisplayReporter) Report(r Report) {
	if err := d.draw(reportLines(r)); err != nil {
		log.Printf("display: error updating display: %v", err)
	}
}

// Close blanks the screen and releases the bus.
func (d *DisplayReporter) Close() error {
	if err := d.draw(nil); err != nil {
		log.Printf("display: error clearing display: %v", err)
	}
	if d.bus == nil {
		return nil
	}
	return d.bus.Close()
}

func (d *DisplayReporter) draw(lines []string) error {
	img := renderLines(lines)
	return d.screen.Draw(d.screen.Bounds(), img, image.Point{})
}

func splashLines() []string {
	return []string{"", "GPS Navigator", "Looking for", "sats"}
}

func reportLines(r Report) []string {
	if r.Result == nil {
		return []string{"", "GPS Navigator", "Waiting..."}
	}
	lines := []string{
		displayLabel(r.Result.State),
		fmt.Sprintf("D: %.1fm", r.Result.Distance),
	}
	if r.Result.State != nav.Arrived {
		lines = append(lines, fmt.Sprintf("B: %.1f", r.Result.Bearing))
	}
	if r.Fix.Satellites > 0 {
		lines = append(lines, fmt.Sprintf("Sats: %d", r.Fix.Satellites))
	}
	return lines
}

// displayLabel fits the state on one 18-column row.
func displayLabel(s nav.State) string {
	return strings.ToUpper(strings.ReplaceAll(s.String(), "_", " "))
}

// renderLines draws up to four 13px text rows on a blank 128x64 frame.
func renderLines(lines []string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	for i, line := range lines {
		if i >= 4 {
			break
		}
		drawer.Dot = fixed.P(0, 13*(i+1))
		drawer.DrawBytes([]byte(line))
	}
	return img
}
