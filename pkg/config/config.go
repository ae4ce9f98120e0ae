// Package config — конфигурация remo для CLI и Beat.
// Один и тот же Config читается из YAML (Load) и распаковывается libbeat по тегам config.
// Неизвестные ключи игнорируются.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config — конфигурация приёма и декодирования.
type Config struct {
	Source      SourceConfig      `yaml:"source" config:"source"`
	Capture     CaptureConfig     `yaml:"capture" config:"capture"`
	Report      ReportConfig      `yaml:"report" config:"report"`
	Interactive InteractiveConfig `yaml:"interactive" config:"interactive"`
}

// SourceConfig — источник сэмплов (protocol: serial, uart, mode2, gpio).
type SourceConfig struct {
	Protocol string `yaml:"protocol" config:"protocol"`
	// serial / uart: МК захвата, слова по 16 бит
	Device string `yaml:"device" config:"device"`
	Baud   int    `yaml:"baud" config:"baud"`
	// gpio: имя линии в gpioreg, например "GPIO17"
	Pin       string `yaml:"pin" config:"pin"`
	ActiveLow *bool  `yaml:"active_low" config:"active_low"`
	// mode2: файл с выводом LIRC mode2; "-" — stdin
	File string `yaml:"file" config:"file"`
}

// CaptureConfig — политика окончания сессии и размер буфера.
type CaptureConfig struct {
	BufferSize  int    `yaml:"buffer_size" config:"buffer_size"`
	MaxFrames   int    `yaml:"max_frames" config:"max_frames"`
	IdleTimeout string `yaml:"idle_timeout" config:"idle_timeout"` // например "150ms"
	History     int    `yaml:"history" config:"history"`
	// приоритет SCHED_FIFO потока приёма (1..99), 0 — обычный планировщик; только Linux
	RealtimePriority int `yaml:"realtime_priority" config:"realtime_priority"`
}

// ReportConfig — вывод сессий в консоль.
type ReportConfig struct {
	Format string `yaml:"format" config:"format"` // text, json, none
}

// InteractiveConfig — SSH-консоль и HTTP API.
type InteractiveConfig struct {
	SSH  SSHConfig  `yaml:"ssh" config:"ssh"`
	HTTP HTTPConfig `yaml:"http" config:"http"`
}

// SSHConfig — консоль для просмотра последних сессий.
type SSHConfig struct {
	Enabled        bool   `yaml:"enabled" config:"enabled"`
	Host           string `yaml:"host" config:"host"`
	Port           int    `yaml:"port" config:"port"`
	Username       string `yaml:"username" config:"username"`
	Password       string `yaml:"password" config:"password"`
	HostKey        string `yaml:"host_key" config:"host_key"`
	AuthorizedKeys string `yaml:"authorized_keys" config:"authorized_keys"`
}

// HTTPConfig — JSON API.
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled" config:"enabled"`
	Host    string `yaml:"host" config:"host"`
	Port    int    `yaml:"port" config:"port"`
}

// Default возвращает конфиг по умолчанию.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Protocol: "serial",
			Device:   "/dev/ttyUSB0",
			Baud:     115200,
			Pin:      "GPIO17",
		},
		Capture: CaptureConfig{
			BufferSize:  256,
			MaxFrames:   10,
			IdleTimeout: "150ms",
			History:     32,
		},
		Report: ReportConfig{Format: "text"},
		Interactive: InteractiveConfig{
			SSH: SSHConfig{
				Host:     "127.0.0.1",
				Port:     65129,
				Username: "admin",
				HostKey:  "remo_host_key",
			},
			HTTP: HTTPConfig{
				Host: "127.0.0.1",
				Port: 8088,
			},
		},
	}
}

// Load читает конфиг из YAML и дополняет его значениями по умолчанию.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse разбирает YAML-конфиг.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	ApplyDefaults(&c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ApplyDefaults заполняет незаданные поля значениями Default().
func ApplyDefaults(c *Config) {
	d := Default()
	if c.Source.Protocol == "" {
		c.Source.Protocol = d.Source.Protocol
	}
	if c.Source.Device == "" {
		c.Source.Device = d.Source.Device
	}
	if c.Source.Baud == 0 {
		c.Source.Baud = d.Source.Baud
	}
	if c.Source.Pin == "" {
		c.Source.Pin = d.Source.Pin
	}
	if c.Capture.BufferSize == 0 {
		c.Capture.BufferSize = d.Capture.BufferSize
	}
	if c.Capture.MaxFrames == 0 {
		c.Capture.MaxFrames = d.Capture.MaxFrames
	}
	if c.Capture.IdleTimeout == "" {
		c.Capture.IdleTimeout = d.Capture.IdleTimeout
	}
	if c.Capture.History == 0 {
		c.Capture.History = d.Capture.History
	}
	if c.Report.Format == "" {
		c.Report.Format = d.Report.Format
	}
	ssh, dssh := &c.Interactive.SSH, d.Interactive.SSH
	if ssh.Host == "" {
		ssh.Host = dssh.Host
	}
	if ssh.Port == 0 {
		ssh.Port = dssh.Port
	}
	if ssh.Username == "" {
		ssh.Username = dssh.Username
	}
	if ssh.HostKey == "" {
		ssh.HostKey = dssh.HostKey
	}
	if c.Interactive.HTTP.Host == "" {
		c.Interactive.HTTP.Host = d.Interactive.HTTP.Host
	}
	if c.Interactive.HTTP.Port == 0 {
		c.Interactive.HTTP.Port = d.Interactive.HTTP.Port
	}
}

// Validate проверяет значения, которые иначе всплывут только при запуске.
func (c *Config) Validate() error {
	switch c.Source.Protocol {
	case "serial", "uart", "mode2", "gpio":
	default:
		return fmt.Errorf("source.protocol: unknown %q", c.Source.Protocol)
	}
	if c.Source.Protocol == "mode2" && c.Source.File == "" {
		return fmt.Errorf("source.file: required for mode2")
	}
	if c.Capture.MaxFrames < 1 || c.Capture.MaxFrames > 10 {
		return fmt.Errorf("capture.max_frames: %d out of 1..10", c.Capture.MaxFrames)
	}
	if c.Capture.BufferSize < 26 {
		return fmt.Errorf("capture.buffer_size: %d is smaller than the session header", c.Capture.BufferSize)
	}
	if p := c.Capture.RealtimePriority; p < 0 || p > 99 {
		return fmt.Errorf("capture.realtime_priority: %d out of 0..99", p)
	}
	if _, err := c.Capture.Idle(); err != nil {
		return err
	}
	switch c.Report.Format {
	case "text", "json", "none":
	default:
		return fmt.Errorf("report.format: unknown %q", c.Report.Format)
	}
	return nil
}

// Idle разбирает idle_timeout; пусто — 150ms.
func (c CaptureConfig) Idle() (time.Duration, error) {
	if c.IdleTimeout == "" {
		return 150 * time.Millisecond, nil
	}
	d, err := time.ParseDuration(c.IdleTimeout)
	if err != nil {
		return 0, fmt.Errorf("capture.idle_timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("capture.idle_timeout: must be positive, got %v", d)
	}
	return d, nil
}

// IsActiveLow — уровень линии приёмника; по умолчанию активный низкий (TSOP и аналоги).
func (s SourceConfig) IsActiveLow() bool {
	return s.ActiveLow == nil || *s.ActiveLow
}
