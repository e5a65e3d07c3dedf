package setup

import "fmt"

// Mode is the active setup sub-machine.
type Mode uint8

const (
	ModeNone Mode = iota
	ModeClock
	ModeAlarm
	ModeTimer
	numModes
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeClock:
		return "clock"
	case ModeAlarm:
		return "alarm"
	case ModeTimer:
		return "timer"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	for m := ModeNone; m < numModes; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return ModeNone, fmt.Errorf("setup: unknown mode %q", s)
}

// Step is the shared setup cursor.
type Step uint8

const (
	StepNone Step = iota

	StepHour
	StepMinute
	StepMonth
	StepDayOfMonth
	StepYear
	StepDST
	StepKeyclick
	StepScrolling
	StepLanguage
	StepDisplayMode
	StepHourlyChime
	StepChimeOn
	StepChimeOff

	StepAlarmSelect
	StepAlarmEnable
	StepAlarmHour
	StepAlarmMinute
	StepAlarmDays

	StepTimerMode
	StepTimerMinutes
	StepTimerSeconds

	NumSteps
)

var stepNames = [NumSteps]string{
	StepNone:         "none",
	StepHour:         "hour",
	StepMinute:       "minute",
	StepMonth:        "month",
	StepDayOfMonth:   "day",
	StepYear:         "year",
	StepDST:          "dst",
	StepKeyclick:     "keyclick",
	StepScrolling:    "scrolling",
	StepLanguage:     "language",
	StepDisplayMode:  "display-mode",
	StepHourlyChime:  "hourly-chime",
	StepChimeOn:      "chime-on",
	StepChimeOff:     "chime-off",
	StepAlarmSelect:  "alarm-select",
	StepAlarmEnable:  "alarm-enable",
	StepAlarmHour:    "alarm-hour",
	StepAlarmMinute:  "alarm-minute",
	StepAlarmDays:    "alarm-days",
	StepTimerMode:    "timer-mode",
	StepTimerMinutes: "timer-minutes",
	StepTimerSeconds: "timer-seconds",
}

func (s Step) String() string {
	if s < NumSteps {
		return stepNames[s]
	}
	return fmt.Sprintf("step(%d)", uint8(s))
}

// ParseStep is the inverse of Step.String.
func ParseStep(s string) (Step, error) {
	for i, n := range stepNames {
		if n == s {
			return Step(i), nil
		}
	}
	return StepNone, fmt.Errorf("setup: unknown step %q", s)
}

// Mode returns the sub-machine that owns s.
func (s Step) Mode() Mode {
	switch {
	case s >= StepHour && s <= StepChimeOff:
		return ModeClock
	case s >= StepAlarmSelect && s <= StepAlarmDays:
		return ModeAlarm
	case s >= StepTimerMode && s <= StepTimerSeconds:
		return ModeTimer
	default:
		return ModeNone
	}
}

// IsTime reports whether committing s writes an RTC time register.
func (s Step) IsTime() bool {
	return s >= StepHour && s <= StepYear
}

var (
	clockSteps = []Step{
		StepHour, StepMinute, StepMonth, StepDayOfMonth, StepYear, StepDST, StepKeyclick,
		StepScrolling, StepLanguage, StepDisplayMode, StepHourlyChime, StepChimeOn, StepChimeOff,
	}
	clockStepsDayFirst = []Step{
		StepHour, StepMinute, StepDayOfMonth, StepMonth, StepYear, StepDST, StepKeyclick,
		StepScrolling, StepLanguage, StepDisplayMode, StepHourlyChime, StepChimeOn, StepChimeOff,
	}
	alarmSteps = []Step{StepAlarmSelect, StepAlarmEnable, StepAlarmHour, StepAlarmMinute, StepAlarmDays}
	timerSteps = []Step{StepTimerMode, StepTimerMinutes, StepTimerSeconds}
)
