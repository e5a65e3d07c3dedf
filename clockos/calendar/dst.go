package calendar

import (
	"fmt"
	"time"
)

// DSTZone selects a daylight-saving rule.
type DSTZone uint8

const (
	DSTOff DSTZone = iota
	DSTNorthAmerica
	DSTEurope
	numDSTZones
)

func (z DSTZone) String() string {
	switch z {
	case DSTOff:
		return "off"
	case DSTNorthAmerica:
		return "north-america"
	case DSTEurope:
		return "europe"
	default:
		return fmt.Sprintf("dst(%d)", uint8(z))
	}
}

// ParseDSTZone is the inverse of DSTZone.String.
func ParseDSTZone(s string) (DSTZone, error) {
	for z := DSTOff; z < numDSTZones; z++ {
		if z.String() == s {
			return z, nil
		}
	}
	return DSTOff, fmt.Errorf("calendar: unknown dst zone %q", s)
}

// Next cycles through the zones.
func (z DSTZone) Next(step int) DSTZone {
	n := int(numDSTZones)
	return DSTZone(((int(z)+step)%n + n) % n)
}

// DSTRule describes a transition pair in local standard time hours.
type DSTRule struct {
	StartMonth time.Month
	StartWeek  int // 1..4 or Last
	StartHour  int // local hour that jumps forward

	EndMonth time.Month
	EndWeek  int
	EndHour  int // local daylight hour that falls back
}

// Rule returns the transition rule of z; ok is false for DSTOff.
func (z DSTZone) Rule() (DSTRule, bool) {
	switch z {
	case DSTNorthAmerica:
		return DSTRule{
			StartMonth: time.March, StartWeek: 2, StartHour: 2,
			EndMonth: time.November, EndWeek: 1, EndHour: 2,
		}, true
	case DSTEurope:
		// 01:00 UTC expressed for CET; other European zones differ by the hour only.
		return DSTRule{
			StartMonth: time.March, StartWeek: Last, StartHour: 2,
			EndMonth: time.October, EndWeek: Last, EndHour: 3,
		}, true
	default:
		return DSTRule{}, false
	}
}

// DSTChange is the adjustment a rule requests at a given wall time.
type DSTChange int8

const (
	DSTNone DSTChange = iota
	DSTSpringForward
	DSTFallBack
)

func (c DSTChange) String() string {
	switch c {
	case DSTSpringForward:
		return "spring-forward"
	case DSTFallBack:
		return "fall-back"
	default:
		return "none"
	}
}

// Check returns the change due at the top of hour on the given date. active reports
// whether daylight time is already in effect; it keeps each transition from repeating.
func (r DSTRule) Check(year int, month time.Month, day, hour int, active bool) DSTChange {
	if !active && month == r.StartMonth && hour == r.StartHour &&
		day == NthWeekday(year, month, time.Sunday, r.StartWeek) {
		return DSTSpringForward
	}
	if active && month == r.EndMonth && hour == r.EndHour &&
		day == NthWeekday(year, month, time.Sunday, r.EndWeek) {
		return DSTFallBack
	}
	return DSTNone
}

// Active reports whether daylight time applies at the given local standard date and
// hour. It is used at boot to seed the active flag.
func (r DSTRule) Active(year int, month time.Month, day, hour int) bool {
	start := NthWeekday(year, r.StartMonth, time.Sunday, r.StartWeek)
	end := NthWeekday(year, r.EndMonth, time.Sunday, r.EndWeek)
	after := func(m time.Month, d, h int) bool {
		if month != m {
			return month > m
		}
		if day != d {
			return day > d
		}
		return hour >= h
	}
	return after(r.StartMonth, start, r.StartHour) && !after(r.EndMonth, end, r.EndHour)
}
