package setup

import (
	"fmt"
	"time"

	"dotclock/clockos/calendar"
)

// Year bounds follow the RTC's two digits plus century flag.
const (
	MinYear = 2000
	MaxYear = 2199
)

// TimeFormat selects the clock face.
type TimeFormat uint8

const (
	H24 TimeFormat = iota
	H12
)

func (f TimeFormat) String() string {
	if f == H12 {
		return "12h"
	}
	return "24h"
}

// Hour converts a 0..23 hour to the face's hour: 1..12 in H12.
func (f TimeFormat) Hour(h int) int {
	if f != H12 {
		return h
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return h
}

// ParseTimeFormat is the inverse of TimeFormat.String.
func ParseTimeFormat(s string) (TimeFormat, error) {
	switch s {
	case "24h":
		return H24, nil
	case "12h":
		return H12, nil
	}
	return H24, fmt.Errorf("setup: unknown time format %q", s)
}

// ChimeMode selects when the hourly chime sounds.
type ChimeMode uint8

const (
	ChimeOff ChimeMode = iota
	ChimeOn
	// ChimeDay sounds only inside the chime window.
	ChimeDay
	numChimeModes
)

func (c ChimeMode) String() string {
	switch c {
	case ChimeOff:
		return "off"
	case ChimeOn:
		return "on"
	case ChimeDay:
		return "day"
	default:
		return fmt.Sprintf("chime(%d)", uint8(c))
	}
}

// ParseChimeMode is the inverse of ChimeMode.String.
func ParseChimeMode(s string) (ChimeMode, error) {
	for c := ChimeOff; c < numChimeModes; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return ChimeOff, fmt.Errorf("setup: unknown chime mode %q", s)
}

// InWindow reports whether hour is inside the inclusive [on, off] window. When on is
// greater than off the window wraps past midnight.
func InWindow(hour, on, off int) bool {
	if on <= off {
		return hour >= on && hour <= off
	}
	return hour >= on || hour <= off
}

// TimerMode is the count-up/count-down timer state.
type TimerMode uint8

const (
	TimerOff TimerMode = iota
	TimerUp
	TimerDown
	numTimerModes
)

func (m TimerMode) String() string {
	switch m {
	case TimerOff:
		return "off"
	case TimerUp:
		return "up"
	case TimerDown:
		return "down"
	default:
		return fmt.Sprintf("timer(%d)", uint8(m))
	}
}

// Alarm is one alarm record.
type Alarm struct {
	Enabled bool
	Hour    int
	Minute  int
	Second  int
	Days    calendar.Weekdays
}

// NumAlarms is the number of alarms backed by the RTC.
const NumAlarms = 2

// Values is everything the setup screens can change. The machine edits a private
// copy and hands it to the Committer step by step.
type Values struct {
	Hour   int
	Minute int
	Day    int
	Month  time.Month
	Year   int

	DST        calendar.DSTZone
	Keyclick   bool
	Scrolling  bool
	Language   calendar.Language
	TimeFormat TimeFormat
	Chime      ChimeMode
	ChimeOn    int
	ChimeOff   int

	Alarms [NumAlarms]Alarm
	// AlarmIndex is the alarm being edited.
	AlarmIndex int

	TimerMode    TimerMode
	TimerMinutes int
	TimerSeconds int
}

// AMPM returns the AM and PM lamp state for hour under the current format.
func (v *Values) AMPM(hour int) (am, pm bool) {
	if v.TimeFormat != H12 {
		return false, false
	}
	return hour < 12, hour >= 12
}

func wrap(v, delta, lo, hi int) int {
	n := hi - lo + 1
	return ((v-lo+delta)%n+n)%n + lo
}

func (v *Values) clampDay() {
	v.Day = calendar.ClampDay(v.Year, v.Month, v.Day)
}

// sanitize pulls loaded values into their editing ranges.
func (v *Values) sanitize() {
	if v.AlarmIndex < 0 || v.AlarmIndex >= NumAlarms {
		v.AlarmIndex = 0
	}
	if v.Year < MinYear || v.Year > MaxYear {
		v.Year = MinYear
	}
	if v.Month < time.January || v.Month > time.December {
		v.Month = time.January
	}
	v.clampDay()
}
