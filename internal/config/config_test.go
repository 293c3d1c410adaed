package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func requireErrContains(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("error=%q want substring %q", err.Error(), want)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("cfg=%+v want defaults", cfg)
	}
	if cfg.Destination.Lat != -23.5505 || cfg.Destination.Lon != -46.6333 {
		t.Fatalf("destination=%+v", cfg.Destination)
	}
	if cfg.ArrivalThresholdM != 10 || cfg.GPSBaudRate != 9600 {
		t.Fatalf("threshold=%v baud=%d", cfg.ArrivalThresholdM, cfg.GPSBaudRate)
	}
	if cfg.CycleInterval() != time.Second {
		t.Fatalf("interval=%s want 1s", cfg.CycleInterval())
	}
}

func TestLoad_KeyValueOverrides(t *testing.T) {
	path := writeTempConfig(t, "navigator_config.txt", `
# destination: Ibirapuera park
DEST_LAT = -23.5874
DEST_LON=-46.6576
ARRIVAL_THRESHOLD_M=15.5
CYCLE_INTERVAL=500
GPS_SERIAL_PORT=/dev/ttyUSB0
GPS_BAUD_RATE=38400
ACTUATOR_BACKEND=LOG
MQTT_BROKER=tcp://localhost:1883
DISPLAY_ENABLED=true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Destination.Lat != -23.5874 || cfg.Destination.Lon != -46.6576 {
		t.Fatalf("destination=%+v", cfg.Destination)
	}
	if cfg.ArrivalThresholdM != 15.5 {
		t.Fatalf("threshold=%v", cfg.ArrivalThresholdM)
	}
	if cfg.CycleInterval() != 500*time.Millisecond {
		t.Fatalf("interval=%s", cfg.CycleInterval())
	}
	if cfg.GPSSerialPort != "/dev/ttyUSB0" || cfg.GPSBaudRate != 38400 {
		t.Fatalf("gps=%s@%d", cfg.GPSSerialPort, cfg.GPSBaudRate)
	}
	if cfg.ActuatorBackend != BackendLog {
		t.Fatalf("backend=%q", cfg.ActuatorBackend)
	}
	if !cfg.DisplayEnabled || cfg.MQTTBroker != "tcp://localhost:1883" {
		t.Fatalf("display=%v broker=%q", cfg.DisplayEnabled, cfg.MQTTBroker)
	}
	// Untouched keys keep their defaults.
	if cfg.MotorLeftPin != Default().MotorLeftPin {
		t.Fatalf("motor left pin=%q", cfg.MotorLeftPin)
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeTempConfig(t, "cfg.txt", "DEST_LAT=1\nWARP_DRIVE=on\n")
	_, err := Load(path)
	requireErrContains(t, err, `config line 2: unknown config key: "WARP_DRIVE"`)
}

func TestLoad_MalformedLine(t *testing.T) {
	path := writeTempConfig(t, "cfg.txt", "DEST_LAT\n")
	_, err := Load(path)
	requireErrContains(t, err, "invalid config line 1")
}

func TestLoad_BadNumber(t *testing.T) {
	path := writeTempConfig(t, "cfg.txt", "GPS_BAUD_RATE=fast\n")
	_, err := Load(path)
	requireErrContains(t, err, `invalid GPS_BAUD_RATE "fast"`)
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{"DEST_LAT=91", "DEST_LAT must be within"},
		{"DEST_LON=-181", "DEST_LON must be within"},
		{"ARRIVAL_THRESHOLD_M=0", "ARRIVAL_THRESHOLD_M must be positive"},
		{"CYCLE_INTERVAL=-5", "CYCLE_INTERVAL must be positive"},
		{"GPS_SERIAL_PORT=", "GPS_SERIAL_PORT is required"},
		{"ACTUATOR_BACKEND=pwm", "ACTUATOR_BACKEND must be one of"},
		{"MOTOR_RIGHT_PIN=", "all four output pins are required"},
		{"ACTUATOR_BACKEND=gpiocdev\nGPIO_CHIP=", "GPIO_CHIP is required"},
		{"MQTT_BROKER=tcp://x:1883\nTOPIC_NAV_STATUS=", "TOPIC_NAV_STATUS is required"},
		{"DEST_LAT=NaN", "destination must be finite"},
		{"DEST_LON=-Inf", "destination must be finite"},
		{"ARRIVAL_THRESHOLD_M=NaN", "ARRIVAL_THRESHOLD_M must be finite"},
		{"ARRIVAL_THRESHOLD_M=+Inf", "ARRIVAL_THRESHOLD_M must be finite"},
	}
	for _, tc := range cases {
		path := writeTempConfig(t, "cfg.txt", tc.body+"\n")
		_, err := Load(path)
		requireErrContains(t, err, tc.want)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeTempConfig(t, "navigator.yaml", `
destination:
  lat: 48.1173
  lon: 11.5167
arrival_threshold_m: 5
actuator_backend: gpiocdev
gpio_chip: gpiochip4
metrics_addr: ":9100"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Destination.Lat != 48.1173 || cfg.Destination.Lon != 11.5167 {
		t.Fatalf("destination=%+v", cfg.Destination)
	}
	if cfg.ArrivalThresholdM != 5 || cfg.ActuatorBackend != BackendGPIOCDev || cfg.GPIOChip != "gpiochip4" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.MetricsAddr != ":9100" {
		t.Fatalf("metrics addr=%q", cfg.MetricsAddr)
	}
	if cfg.GPSBaudRate != 9600 {
		t.Fatalf("baud=%d want default 9600", cfg.GPSBaudRate)
	}
}

func TestLoad_YAMLUnknownField(t *testing.T) {
	path := writeTempConfig(t, "navigator.yml", "warp_drive: true\n")
	_, err := Load(path)
	requireErrContains(t, err, "invalid yaml config")
}

func TestLoad_EmptyYAML(t *testing.T) {
	path := writeTempConfig(t, "navigator.yaml", "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("cfg=%+v want defaults", cfg)
	}
}

func TestLoad_ShippedSampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "navigator_config.txt"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.MetricsAddr != ":9100" || cfg.MQTTBroker != "" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.Destination != Default().Destination {
		t.Fatalf("destination=%+v want default", cfg.Destination)
	}
}
