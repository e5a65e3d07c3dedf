package clock

import (
	"fmt"
	"time"

	"dotclock/clockos/calendar"
	"dotclock/clockos/rtc"
	"dotclock/clockos/setup"
)

// EventKind is a notification from interrupt context to the main loop.
type EventKind uint8

const (
	EvButton EventKind = iota + 1
	EvBlink
	EvRefresh
	EvAlarmPoll
	EvTimeout
	EvRTCWrite
	EvTimerDone
	EvResync
)

func (k EventKind) String() string {
	switch k {
	case EvButton:
		return "button"
	case EvBlink:
		return "blink"
	case EvRefresh:
		return "refresh"
	case EvAlarmPoll:
		return "alarm-poll"
	case EvTimeout:
		return "timeout"
	case EvRTCWrite:
		return "rtc-write"
	case EvTimerDone:
		return "timer-done"
	case EvResync:
		return "resync"
	default:
		return fmt.Sprintf("event(%d)", uint8(k))
	}
}

// Event is one interrupt notification.
type Event struct {
	Kind   EventKind
	Button setup.Button
	// Long is set for long presses.
	Long bool
	// On is the blink phase.
	On bool
	// DST is the transition behind an EvRTCWrite.
	DST calendar.DSTChange
}

// CommandKind is a request from the main loop to interrupt context.
type CommandKind uint8

const (
	CmdSetTime CommandKind = iota + 1
	CmdSetTimer
	CmdRingAlarm
	CmdSetDST
	CmdResetIdle
)

// Command is one main loop request. Only the fields of its kind are used.
type Command struct {
	Kind  CommandKind
	Time  rtc.Time
	Timer Timer
	Flag  bool
}

// Ring sizes.
const (
	eventRingSize   = 64
	commandRingSize = 32
)

// The wall clock crosses contexts packed in one word.
func packTime(t rtc.Time) uint64 {
	return uint64(t.Year)<<48 | uint64(t.Month)<<40 | uint64(t.Day)<<32 |
		uint64(t.Weekday)<<24 | uint64(t.Hour)<<16 | uint64(t.Minute)<<8 | uint64(t.Second)
}

func unpackTime(v uint64) rtc.Time {
	return rtc.Time{
		Year:    int(v >> 48 & 0xffff),
		Month:   time.Month(v >> 40 & 0xff),
		Day:     int(v >> 32 & 0xff),
		Weekday: time.Weekday(v >> 24 & 0xff),
		Hour:    int(v >> 16 & 0xff),
		Minute:  int(v >> 8 & 0xff),
		Second:  int(v & 0xff),
	}
}

// minuteStamp numbers the minutes of a year; it debounces alarms.
func minuteStamp(t rtc.Time) uint32 {
	return uint32(t.Year)<<20 | uint32(t.Month)<<16 | uint32(t.Day)<<11 | uint32(t.Hour)<<6 | uint32(t.Minute)
}

// hourStamp marks the hour an event was shown in; zero means never.
func hourStamp(t rtc.Time) uint32 {
	return uint32(t.Year)<<16 | uint32(t.Month)<<12 | uint32(t.Day)<<5 | uint32(t.Hour) + 1
}

// advance moves t one second forward, cascading through the calendar.
func advance(t *rtc.Time) (minute, hour, day bool) {
	t.Second++
	if t.Second < 60 {
		return false, false, false
	}
	t.Second = 0
	t.Minute++
	if t.Minute < 60 {
		return true, false, false
	}
	t.Minute = 0
	t.Hour++
	if t.Hour < 24 {
		return true, true, false
	}
	t.Hour = 0
	t.Day++
	t.Weekday = (t.Weekday + 1) % 7
	if t.Day > calendar.MonthDays(t.Year, t.Month) {
		t.Day = 1
		t.Month++
		if t.Month > time.December {
			t.Month = time.January
			t.Year++
		}
	}
	return true, true, true
}
