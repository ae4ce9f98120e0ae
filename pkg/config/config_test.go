package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte("source:\n  protocol: uart\n  device: /dev/ttyS1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Source.Protocol != "uart" || c.Source.Device != "/dev/ttyS1" {
		t.Errorf("source = %+v", c.Source)
	}
	if c.Source.Baud != 115200 || c.Capture.MaxFrames != 10 || c.Report.Format != "text" {
		t.Errorf("значения по умолчанию не применены: %+v", c)
	}
	if !c.Source.IsActiveLow() {
		t.Error("active_low по умолчанию должен быть true")
	}
	idle, err := c.Capture.Idle()
	if err != nil || idle != 150*time.Millisecond {
		t.Errorf("Idle = %v, %v", idle, err)
	}
}

func TestParseFull(t *testing.T) {
	data := `
source:
  protocol: gpio
  pin: GPIO27
  active_low: false
capture:
  buffer_size: 512
  max_frames: 3
  idle_timeout: 80ms
  realtime_priority: 50
report:
  format: json
interactive:
  ssh:
    enabled: true
    port: 2222
  http:
    enabled: true
unknown_key: 1
`
	c, err := Parse([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if c.Source.Pin != "GPIO27" || c.Source.IsActiveLow() {
		t.Errorf("source = %+v", c.Source)
	}
	if c.Capture.BufferSize != 512 || c.Capture.MaxFrames != 3 || c.Capture.RealtimePriority != 50 {
		t.Errorf("capture = %+v", c.Capture)
	}
	if idle, _ := c.Capture.Idle(); idle != 80*time.Millisecond {
		t.Errorf("Idle = %v", idle)
	}
	if !c.Interactive.SSH.Enabled || c.Interactive.SSH.Port != 2222 || c.Interactive.SSH.Username != "admin" {
		t.Errorf("ssh = %+v", c.Interactive.SSH)
	}
	if !c.Interactive.HTTP.Enabled || c.Interactive.HTTP.Port != 8088 {
		t.Errorf("http = %+v", c.Interactive.HTTP)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"protocol", "source:\n  protocol: ptp\n", "source.protocol"},
		{"mode2 without file", "source:\n  protocol: mode2\n", "source.file"},
		{"max frames", "capture:\n  max_frames: 11\n", "capture.max_frames"},
		{"buffer", "capture:\n  buffer_size: 8\n", "capture.buffer_size"},
		{"idle", "capture:\n  idle_timeout: soon\n", "capture.idle_timeout"},
		{"realtime", "capture:\n  realtime_priority: 120\n", "capture.realtime_priority"},
		{"report", "report:\n  format: xml\n", "report.format"},
		{"yaml", "source: [", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse: ожидали ошибку %q, получили %v", tt.want, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remo.yml")
	if err := os.WriteFile(path, []byte("source:\n  protocol: mode2\n  file: capture.txt\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Source.File != "capture.txt" {
		t.Errorf("file = %q", c.Source.File)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil || !strings.Contains(err.Error(), "read config") {
		t.Errorf("Load несуществующего файла: %v", err)
	}
}
