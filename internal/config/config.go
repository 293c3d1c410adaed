// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/gps_navigator/internal/geo"
	"github.com/relabs-tech/gps_navigator/internal/nav"
)

// Actuator backends.
const (
	BackendPeriph   = "periph"
	BackendGPIOCDev = "gpiocdev"
	BackendLog      = "log"
)

// Config holds all application configuration values. It is loaded once at
// startup and passed by value; nothing mutates it afterwards.
type Config struct {
	// Navigation
	Destination       geo.Point `yaml:"destination"`
	ArrivalThresholdM float64   `yaml:"arrival_threshold_m"`
	CycleIntervalMs   int       `yaml:"cycle_interval_ms"`

	// GPS
	GPSSerialPort string `yaml:"gps_serial_port"`
	GPSBaudRate   int    `yaml:"gps_baud_rate"`

	// Actuators
	ActuatorBackend   string `yaml:"actuator_backend"`
	GPIOChip          string `yaml:"gpio_chip"` // gpiocdev backend only
	MotorLeftPin      string `yaml:"motor_left_pin"`
	MotorRightPin     string `yaml:"motor_right_pin"`
	IndicatorLeftPin  string `yaml:"indicator_left_pin"`
	IndicatorRightPin string `yaml:"indicator_right_pin"`

	// MQTT (optional; empty broker disables publishing)
	MQTTBroker            string `yaml:"mqtt_broker"`
	MQTTClientIDNavigator string `yaml:"mqtt_client_id_navigator"`
	MQTTClientIDGPS       string `yaml:"mqtt_client_id_gps"`
	MQTTClientIDConsole   string `yaml:"mqtt_client_id_console"`
	MQTTClientIDWeb       string `yaml:"mqtt_client_id_web"`

	// Topics
	TopicGPS       string `yaml:"topic_gps"`
	TopicNavStatus string `yaml:"topic_nav_status"`

	// HTTP
	WebServerPort int    `yaml:"web_server_port"`
	MetricsAddr   string `yaml:"metrics_addr"` // empty disables /metrics

	// Display
	DisplayEnabled bool   `yaml:"display_enabled"`
	DisplayI2CBus  string `yaml:"display_i2c_bus"`
}

// Default returns the built-in configuration. A config file only needs to
// list the keys it changes.
func Default() Config {
	return Config{
		Destination:       geo.Point{Lat: -23.5505, Lon: -46.6333},
		ArrivalThresholdM: nav.MinDistanceMeters,
		CycleIntervalMs:   1000,

		GPSSerialPort: "/dev/serial0",
		GPSBaudRate:   9600,

		ActuatorBackend:   BackendPeriph,
		GPIOChip:          "gpiochip0",
		MotorLeftPin:      "GPIO17",
		MotorRightPin:     "GPIO27",
		IndicatorLeftPin:  "GPIO22",
		IndicatorRightPin: "GPIO23",

		MQTTClientIDNavigator: "gps-navigator",
		MQTTClientIDGPS:       "gps-navigator-gps",
		MQTTClientIDConsole:   "gps-navigator-console",
		MQTTClientIDWeb:       "gps-navigator-web",

		TopicGPS:       "navigator/gps",
		TopicNavStatus: "navigator/status",

		WebServerPort: 8080,
	}
}

// CycleInterval is the delay between two control cycles.
func (c Config) CycleInterval() time.Duration {
	return time.Duration(c.CycleIntervalMs) * time.Millisecond
}

// Load reads the configuration file on top of Default(). Files ending in
// .yaml or .yml are decoded as YAML, anything else as KEY=VALUE lines.
// A missing file is not an error: the defaults are returned.
func Load(configPath string) (Config, error) {
	cfg := Default()

	file, err := os.Open(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, cfg.validate()
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		err = cfg.decodeYAML(file)
	default:
		err = cfg.decodeKeyValue(file)
	}
	if err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decodeYAML(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid yaml config: %w", err)
	}
	return nil
}

func (c *Config) decodeKeyValue(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := c.setValue(key, value); err != nil {
			return fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Navigation
	case "DEST_LAT":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid DEST_LAT %q: %w", value, err)
		}
		c.Destination.Lat = v
	case "DEST_LON":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid DEST_LON %q: %w", value, err)
		}
		c.Destination.Lon = v
	case "ARRIVAL_THRESHOLD_M":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid ARRIVAL_THRESHOLD_M %q: %w", value, err)
		}
		c.ArrivalThresholdM = v
	case "CYCLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CYCLE_INTERVAL %q: %w", value, err)
		}
		c.CycleIntervalMs = interval

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = rate

	// Actuators
	case "ACTUATOR_BACKEND":
		c.ActuatorBackend = strings.ToLower(value)
	case "GPIO_CHIP":
		c.GPIOChip = value
	case "MOTOR_LEFT_PIN":
		c.MotorLeftPin = value
	case "MOTOR_RIGHT_PIN":
		c.MotorRightPin = value
	case "INDICATOR_LEFT_PIN":
		c.IndicatorLeftPin = value
	case "INDICATOR_RIGHT_PIN":
		c.IndicatorRightPin = value

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_NAVIGATOR":
		c.MQTTClientIDNavigator = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value

	// Topics
	case "TOPIC_GPS":
		c.TopicGPS = value
	case "TOPIC_NAV_STATUS":
		c.TopicNavStatus = value

	// HTTP
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port
	case "METRICS_ADDR":
		c.MetricsAddr = value

	// Display
	case "DISPLAY_ENABLED":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_ENABLED %q: %w", value, err)
		}
		c.DisplayEnabled = on
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks ranges and required fields.
func (c *Config) validate() error {
	if !isFinite(c.Destination.Lat) || !isFinite(c.Destination.Lon) {
		return fmt.Errorf("destination must be finite, got %v, %v", c.Destination.Lat, c.Destination.Lon)
	}
	if !isFinite(c.ArrivalThresholdM) {
		return fmt.Errorf("ARRIVAL_THRESHOLD_M must be finite, got %v", c.ArrivalThresholdM)
	}
	if c.Destination.Lat < -90 || c.Destination.Lat > 90 {
		return fmt.Errorf("DEST_LAT must be within [-90, 90], got %v", c.Destination.Lat)
	}
	if c.Destination.Lon < -180 || c.Destination.Lon > 180 {
		return fmt.Errorf("DEST_LON must be within [-180, 180], got %v", c.Destination.Lon)
	}
	if c.ArrivalThresholdM <= 0 {
		return fmt.Errorf("ARRIVAL_THRESHOLD_M must be positive, got %v", c.ArrivalThresholdM)
	}
	if c.CycleIntervalMs <= 0 {
		return fmt.Errorf("CYCLE_INTERVAL must be positive, got %d", c.CycleIntervalMs)
	}
	if c.GPSSerialPort == "" {
		return fmt.Errorf("GPS_SERIAL_PORT is required")
	}
	if c.GPSBaudRate <= 0 {
		return fmt.Errorf("GPS_BAUD_RATE must be positive, got %d", c.GPSBaudRate)
	}
	switch c.ActuatorBackend {
	case BackendPeriph, BackendGPIOCDev, BackendLog:
	default:
		return fmt.Errorf("ACTUATOR_BACKEND must be one of %s, %s, %s, got %q",
			BackendPeriph, BackendGPIOCDev, BackendLog, c.ActuatorBackend)
	}
	if c.MotorLeftPin == "" || c.MotorRightPin == "" || c.IndicatorLeftPin == "" || c.IndicatorRightPin == "" {
		return fmt.Errorf("all four output pins are required")
	}
	if c.ActuatorBackend == BackendGPIOCDev && c.GPIOChip == "" {
		return fmt.Errorf("GPIO_CHIP is required for the gpiocdev backend")
	}
	if c.MQTTBroker != "" && c.TopicNavStatus == "" {
		return fmt.Errorf("TOPIC_NAV_STATUS is required when MQTT_BROKER is set")
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
