package clock

import (
	"fmt"

	"dotclock/clockos/calendar"
	"dotclock/clockos/setup"
)

// TemperatureUnit selects how the temperature is scrolled.
type TemperatureUnit uint8

const (
	Celsius TemperatureUnit = iota
	Fahrenheit
)

func (u TemperatureUnit) String() string {
	if u == Fahrenheit {
		return "F"
	}
	return "C"
}

// ParseTemperatureUnit is the inverse of TemperatureUnit.String.
func ParseTemperatureUnit(s string) (TemperatureUnit, error) {
	switch s {
	case "C", "c":
		return Celsius, nil
	case "F", "f":
		return Fahrenheit, nil
	}
	return Celsius, fmt.Errorf("clock: unknown temperature unit %q", s)
}

// MaxBrightness is the brightest manual level; the panel is never blanked at it.
const MaxBrightness = 8

// Settings are the user preferences. The main loop owns them and publishes each
// change as an immutable snapshot for interrupt context.
type Settings struct {
	Language   calendar.Language
	TimeFormat setup.TimeFormat
	Keyclick   bool

	ScrollEnabled bool
	// ScrollPeriod is the date scroll interval in minutes.
	ScrollPeriod int
	// ScrollDotMs is the time per scrolled dot column.
	ScrollDotMs int

	Chime    setup.ChimeMode
	ChimeOn  int
	ChimeOff int

	DST calendar.DSTZone

	AutoBrightness bool
	// Brightness is the manual level, 1..MaxBrightness.
	Brightness int

	// IdleTimeout ends setup after this many seconds without input.
	IdleTimeout int

	TemperatureUnit TemperatureUnit

	// AlarmRingSeconds bounds how long an alarm sounds without a button press.
	AlarmRingSeconds int
}

// DefaultSettings returns the factory settings.
func DefaultSettings() Settings {
	return Settings{
		Language:         calendar.English,
		TimeFormat:       setup.H24,
		Keyclick:         true,
		ScrollEnabled:    true,
		ScrollPeriod:     5,
		ScrollDotMs:      30,
		Chime:            setup.ChimeDay,
		ChimeOn:          8,
		ChimeOff:         21,
		DST:              calendar.DSTOff,
		AutoBrightness:   true,
		Brightness:       MaxBrightness,
		IdleTimeout:      20,
		TemperatureUnit:  Celsius,
		AlarmRingSeconds: 60,
	}
}

// Normalize pulls every field into its valid range, using defaults for unset values.
func (s Settings) Normalize() Settings {
	d := DefaultSettings()
	if s.ScrollPeriod < 1 || s.ScrollPeriod > 60 {
		s.ScrollPeriod = d.ScrollPeriod
	}
	if s.ScrollDotMs < 5 || s.ScrollDotMs > 500 {
		s.ScrollDotMs = d.ScrollDotMs
	}
	if s.ChimeOn < 0 || s.ChimeOn > 23 {
		s.ChimeOn = d.ChimeOn
	}
	if s.ChimeOff < 0 || s.ChimeOff > 23 {
		s.ChimeOff = d.ChimeOff
	}
	if s.Brightness < 1 || s.Brightness > MaxBrightness {
		s.Brightness = MaxBrightness
	}
	if s.IdleTimeout < 1 {
		s.IdleTimeout = d.IdleTimeout
	}
	if s.AlarmRingSeconds < 1 {
		s.AlarmRingSeconds = d.AlarmRingSeconds
	}
	return s
}

// chimeWindow reports whether hour is inside the configured chime window.
func (s *Settings) chimeWindow(hour int) bool {
	return setup.InWindow(hour, s.ChimeOn, s.ChimeOff)
}

// Alarm is one alarm record; see setup.Alarm.
type Alarm = setup.Alarm

// Timer is the count-up/count-down timer.
type Timer struct {
	Mode    setup.TimerMode
	Minutes int
	Seconds int
	// Ready is set while the timer runs.
	Ready bool
}

func (t Timer) pack() uint32 {
	v := uint32(t.Mode)<<24 | uint32(t.Minutes)<<16 | uint32(t.Seconds)<<8
	if t.Ready {
		v |= 1
	}
	return v
}

func unpackTimer(v uint32) Timer {
	return Timer{
		Mode:    setup.TimerMode(v >> 24),
		Minutes: int(v >> 16 & 0xff),
		Seconds: int(v >> 8 & 0xff),
		Ready:   v&1 != 0,
	}
}

func (t Timer) String() string {
	return fmt.Sprintf("%s %02d:%02d", t.Mode, t.Minutes, t.Seconds)
}
