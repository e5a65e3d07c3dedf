// Package config loads the clock's YAML configuration.
//
// Load and Parse only decode. Validate checks without mutating; Normalize fills in
// defaults and must run after Validate.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type Config struct {
	Clock  ClockConfig   `yaml:"clock"`
	Alarms []AlarmConfig `yaml:"alarms"`
	Events []EventConfig `yaml:"events"`
	Host   HostConfig    `yaml:"host"`
}

// ---- CLOCK ----

type ClockConfig struct {
	Language   string `yaml:"language"`    // en, fr, de, es
	TimeFormat string `yaml:"time_format"` // 24h, 12h
	Keyclick   *bool  `yaml:"keyclick"`

	Scroll ScrollConfig `yaml:"scroll"`
	Chime  ChimeConfig  `yaml:"chime"`

	DST string `yaml:"dst"` // off, north-america, europe

	// Brightness is "auto" or a level 1..8.
	Brightness string `yaml:"brightness"`

	IdleTimeoutSec   int    `yaml:"idle_timeout_sec"`
	TemperatureUnit  string `yaml:"temperature_unit"` // C, F
	AlarmRingSeconds int    `yaml:"alarm_ring_sec"`
}

type ScrollConfig struct {
	Enabled   *bool `yaml:"enabled"`
	PeriodMin int   `yaml:"period_min"`
	DotMs     int   `yaml:"dot_ms"`
}

type ChimeConfig struct {
	Mode string `yaml:"mode"` // off, on, day
	// On and Off bound the inclusive chime window in hours.
	On  *int `yaml:"on"`
	Off *int `yaml:"off"`
}

// ---- ALARMS ----

// AlarmConfig seeds an RTC alarm register. Alarms still boot disabled.
type AlarmConfig struct {
	Time string `yaml:"time"` // HH:MM
	Days string `yaml:"days"` // all, work, weekend or a weekday name
}

// ---- EVENTS ----

type EventConfig struct {
	Date   string `yaml:"date"` // MM-DD
	Jingle uint8  `yaml:"jingle"`
	Text   string `yaml:"text"`
}

// ---- HOST ----

type HostConfig struct {
	LogLevel   string `yaml:"log_level"`
	FlashPath  string `yaml:"flash_path"`
	I2CBus     string `yaml:"i2c_bus"`
	SerialPort string `yaml:"serial_port"`
	SerialBaud int    `yaml:"serial_baud"`
	DebugAddr  string `yaml:"debug_addr"`
	Headless   bool   `yaml:"headless"`
	// Light is a fixed sensor reading, or -1 to follow the time of day.
	Light  *int   `yaml:"light"`
	Supply uint16 `yaml:"supply"`
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("config: embedded default: %v", err))
	}
	return cfg
}

// Parse decodes YAML. Unknown keys are errors.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Load reads and decodes path. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(b)
}
