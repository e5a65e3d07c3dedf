package calendar

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MaxEvents bounds the event table; indices double as scroll tags.
	MaxEvents = 64
	// MaxDescription is the longest event text in bytes.
	MaxDescription = 50

	// DebugDescription diverts an event to the debug dump.
	DebugDescription = "Debug"
)

// Event is a yearly reminder scrolled on its day.
type Event struct {
	Day         uint8
	Month       time.Month
	Jingle      uint8
	Description string
}

// Matches reports whether the event falls on day/month.
func (e Event) Matches(month time.Month, day int) bool {
	return e.Month == month && int(e.Day) == day
}

// IsDebug reports whether the event is the debug sentinel.
func (e Event) IsDebug() bool { return e.Description == DebugDescription }

var errTooManyEvents = errors.New("calendar: too many events")

// ValidateEvents checks the table limits and each date.
func ValidateEvents(events []Event) error {
	if len(events) > MaxEvents {
		return fmt.Errorf("%w: %d > %d", errTooManyEvents, len(events), MaxEvents)
	}
	for i, e := range events {
		if e.Month < time.January || e.Month > time.December {
			return fmt.Errorf("calendar: event %d: invalid month %d", i, e.Month)
		}
		// Leap day events are valid; a leap year is used for the bound.
		if e.Day < 1 || int(e.Day) > MonthDays(2000, e.Month) {
			return fmt.Errorf("calendar: event %d: invalid day %d for %s", i, e.Day, e.Month)
		}
		if len(e.Description) > MaxDescription {
			return fmt.Errorf("calendar: event %d: description longer than %d bytes", i, MaxDescription)
		}
	}
	return nil
}
