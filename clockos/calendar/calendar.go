// Package calendar holds the date arithmetic used by the clock: month lengths,
// weekdays, daylight-saving rules and the calendar event table.
package calendar

import "time"

// IsLeap reports whether year is a Gregorian leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

var monthDays = [13]uint8{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// MonthDays returns the number of days in month (1..12) of year, or 0 for an invalid month.
func MonthDays(year int, month time.Month) int {
	if month < time.January || month > time.December {
		return 0
	}
	if month == time.February && IsLeap(year) {
		return 29
	}
	return int(monthDays[month])
}

// ClampDay limits day to 1..MonthDays(year, month).
func ClampDay(year int, month time.Month, day int) int {
	max := MonthDays(year, month)
	if day > max {
		return max
	}
	if day < 1 {
		return 1
	}
	return day
}

// DayOfWeek returns the weekday of a Gregorian date using Zeller's congruence.
func DayOfWeek(year int, month time.Month, day int) time.Weekday {
	m := int(month)
	y := year
	if m < 3 {
		m += 12
		y--
	}
	k := y % 100
	j := y / 100
	h := (day + 13*(m+1)/5 + k + k/4 + j/4 + 5*j) % 7
	// h: 0 = Saturday, 1 = Sunday, ...
	return time.Weekday((h + 6) % 7)
}

// NthWeekday returns the day of month of the nth (1-based) wd in month, or of the last
// one when n is Last. It returns 0 when the month has no such day.
func NthWeekday(year int, month time.Month, wd time.Weekday, n int) int {
	first := DayOfWeek(year, month, 1)
	day := 1 + (int(wd)-int(first)+7)%7
	days := MonthDays(year, month)
	if n == Last {
		for day+7 <= days {
			day += 7
		}
		return day
	}
	day += 7 * (n - 1)
	if n < 1 || day > days {
		return 0
	}
	return day
}

// Last selects the final occurrence in NthWeekday.
const Last = 5

// Weekdays is a set of weekdays, bit d for time.Weekday(d).
type Weekdays uint8

const (
	// EveryDay selects all seven days.
	EveryDay Weekdays = 0x7f
	// WorkDays selects Monday to Friday.
	WorkDays Weekdays = 1<<time.Monday | 1<<time.Tuesday | 1<<time.Wednesday | 1<<time.Thursday | 1<<time.Friday
	// Weekend selects Saturday and Sunday.
	Weekend Weekdays = 1<<time.Saturday | 1<<time.Sunday
)

// Only returns the set holding just wd.
func Only(wd time.Weekday) Weekdays { return 1 << wd }

// Has reports whether wd is in the set.
func (w Weekdays) Has(wd time.Weekday) bool { return w&(1<<wd) != 0 }

// DayPresets is the cycle of selections offered while editing an alarm.
var DayPresets = []Weekdays{
	EveryDay, WorkDays, Weekend,
	Only(time.Monday), Only(time.Tuesday), Only(time.Wednesday), Only(time.Thursday),
	Only(time.Friday), Only(time.Saturday), Only(time.Sunday),
}

// PresetIndex returns the index of w in DayPresets, or 0 when w is not a preset.
func PresetIndex(w Weekdays) int {
	for i, p := range DayPresets {
		if p == w {
			return i
		}
	}
	return 0
}
