package setup

import (
	"fmt"
	"time"

	"dotclock/clockos/calendar"
	"dotclock/clockos/display"
)

// Date layout in panel columns.
const (
	colDate = 4
	colYear = 7
)

var dayPresetNames = []string{"all", "wrk", "wkd", "Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// Render draws the current step's frame. The active field is ANDed with its
// Flashing mask. Callers must hold the framebuffer lock.
func (m *Machine) Render(fb *display.Framebuffer) {
	fb.ClearDisplay()
	step := m.Step()
	if step == StepNone {
		return
	}
	mask := m.Flashing[step]
	v := &m.v
	a := v.Alarms[v.AlarmIndex]

	switch step {
	case StepHour, StepMinute:
		drawTime(fb, v.displayHour(v.Hour), v.Minute, fieldMask(step == StepHour, mask), fieldMask(step == StepMinute, mask))
	case StepAlarmHour, StepAlarmMinute:
		drawTime(fb, v.displayHour(a.Hour), a.Minute, fieldMask(step == StepAlarmHour, mask), fieldMask(step == StepAlarmMinute, mask))
	case StepTimerMinutes, StepTimerSeconds:
		drawTime(fb, v.TimerMinutes, v.TimerSeconds, fieldMask(step == StepTimerMinutes, mask), fieldMask(step == StepTimerSeconds, mask))
	case StepMonth, StepDayOfMonth:
		drawDate(fb, v, fieldMask(step == StepDayOfMonth, mask), fieldMask(step == StepMonth, mask))
	case StepYear:
		drawDigits(fb, colYear, fmt.Sprintf("%04d", v.Year), mask)
	default:
		label, value := m.labelValue(step)
		col := fb.RenderString5x7(display.FirstTextColumn, label) + 1
		for _, r := range value {
			col = fb.RenderMasked5x7(col, r, mask)
		}
	}
}

func fieldMask(active bool, mask uint8) uint8 {
	if active {
		return mask
	}
	return maskOn
}

func (v *Values) displayHour(h int) int { return v.TimeFormat.Hour(h) }

func drawDigits(fb *display.Framebuffer, col int, s string, mask uint8) int {
	for _, r := range s {
		col = fb.RenderMasked4x7(col, r, mask)
	}
	return col
}

func drawTime(fb *display.Framebuffer, left, right int, leftMask, rightMask uint8) {
	fb.RenderTime(left, right, leftMask, rightMask)
}

// drawDate draws day and month in the language's order.
func drawDate(fb *display.Framebuffer, v *Values, dayMask, monthMask uint8) {
	day, month := fmt.Sprintf("%02d", v.Day), fmt.Sprintf("%02d", int(v.Month))
	col := colDate
	if v.Language.DayFirst() {
		col = drawDigits(fb, col, day, dayMask)
		col = fb.Render4x7(col, '-')
		drawDigits(fb, col, month, monthMask)
		return
	}
	col = drawDigits(fb, col, month, monthMask)
	col = fb.Render4x7(col, '-')
	drawDigits(fb, col, day, dayMask)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m *Machine) labelValue(step Step) (label, value string) {
	v := &m.v
	a := v.Alarms[v.AlarmIndex]
	switch step {
	case StepDST:
		return "DS", dstName(v.DST)
	case StepKeyclick:
		return "Kc", onOff(v.Keyclick)
	case StepScrolling:
		return "Sc", onOff(v.Scrolling)
	case StepLanguage:
		return "Ln", v.Language.String()
	case StepDisplayMode:
		return "Fm", v.TimeFormat.String()
	case StepHourlyChime:
		return "Ch", v.Chime.String()
	case StepChimeOn:
		return "C+", fmt.Sprintf("%02d", v.ChimeOn)
	case StepChimeOff:
		return "C-", fmt.Sprintf("%02d", v.ChimeOff)
	case StepAlarmSelect:
		return "Al", fmt.Sprintf("%d", v.AlarmIndex+1)
	case StepAlarmEnable:
		return fmt.Sprintf("A%d", v.AlarmIndex+1), onOff(a.Enabled)
	case StepAlarmDays:
		return "Dy", dayPresetNames[calendar.PresetIndex(a.Days)]
	case StepTimerMode:
		return "Tm", v.TimerMode.String()
	}
	return "?", ""
}

func dstName(z calendar.DSTZone) string {
	switch z {
	case calendar.DSTNorthAmerica:
		return "NA"
	case calendar.DSTEurope:
		return "EU"
	default:
		return "off"
	}
}

// weekdayShort is used by the alarm dump.
func weekdayShort(wd time.Weekday) string {
	return dayPresetNames[3+(int(wd)+6)%7]
}

// Describe formats an alarm for the alarm dump scroll.
func (a Alarm) Describe(i int, f TimeFormat) string {
	v := Values{TimeFormat: f}
	suffix := ""
	if f == H12 {
		suffix = "am"
		if a.Hour >= 12 {
			suffix = "pm"
		}
	}
	days := dayPresetNames[calendar.PresetIndex(a.Days)]
	if idx := calendar.PresetIndex(a.Days); calendar.DayPresets[idx] != a.Days {
		days = ""
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			if a.Days.Has(wd) {
				days += weekdayShort(wd)
			}
		}
	}
	return fmt.Sprintf("Alarm %d %s %d:%02d%s %s", i+1, onOff(a.Enabled), v.displayHour(a.Hour), a.Minute, suffix, days)
}
