// Package setup implements the button-driven setup screens.
//
// Three sub-machines (clock, alarm, timer) share one step cursor and one blink mask
// array. Only the current mode's step sequence is reachable, so a step of one
// sub-machine can never be active while another mode is selected. The machine is owned
// by the main loop; interrupt context only reads the published "setup active" flag.
package setup

import (
	"fmt"
	"time"

	"dotclock/clockos/calendar"
	"dotclock/clockos/display"
)

// Button identifies a front panel button.
type Button uint8

const (
	ButtonMode Button = iota
	ButtonUp
	ButtonDown
	NumButtons
)

func (b Button) String() string {
	switch b {
	case ButtonMode:
		return "mode"
	case ButtonUp:
		return "up"
	case ButtonDown:
		return "down"
	default:
		return fmt.Sprintf("button(%d)", uint8(b))
	}
}

// Action tells the main loop what to do after an input.
type Action uint8

const (
	ActionNone Action = iota
	// ActionRedraw means the setup frame changed.
	ActionRedraw
	// ActionExit means setup finished; the time display needs a refresh.
	ActionExit
	// ActionScrollDate asks for a date scroll (Up while idle).
	ActionScrollDate
	// ActionBrightness asks for the next brightness level (Down while idle).
	ActionBrightness
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionRedraw:
		return "redraw"
	case ActionExit:
		return "exit"
	case ActionScrollDate:
		return "scroll-date"
	case ActionBrightness:
		return "brightness"
	default:
		return fmt.Sprintf("action(%d)", uint8(a))
	}
}

// Committer supplies the values to edit and receives them after each step.
type Committer interface {
	// Load returns the live values when a sub-machine is entered.
	Load() Values
	// Commit applies the field edited at step. v holds every pending value.
	Commit(step Step, v Values)
}

const (
	maskOn  = 0xff
	maskOff = 0x00
)

// Machine is the setup state machine.
type Machine struct {
	c Committer

	mode  Mode
	steps []Step
	pos   int
	v     Values

	// Flashing is ANDed with the active field's glyph rows.
	Flashing [NumSteps]uint8
}

// New returns an idle machine.
func New(c Committer) *Machine {
	m := &Machine{c: c}
	m.resetFlashing()
	return m
}

// Mode returns the active sub-machine.
func (m *Machine) Mode() Mode { return m.mode }

// Active reports whether any setup mode is selected.
func (m *Machine) Active() bool { return m.mode != ModeNone }

// Step returns the current step, or StepNone when idle.
func (m *Machine) Step() Step {
	if m.mode == ModeNone {
		return StepNone
	}
	return m.steps[m.pos]
}

// Values returns the pending values.
func (m *Machine) Values() Values { return m.v }

// Enter selects mode from its first step, loading fresh values. A sub-machine that
// is already active commits its current step first. ModeNone exits.
func (m *Machine) Enter(mode Mode) Action {
	if mode == ModeNone {
		return m.Exit()
	}
	if m.Active() {
		m.commit()
	}
	m.v = m.c.Load()
	m.v.sanitize()
	m.mode = mode
	m.pos = 0
	switch mode {
	case ModeClock:
		m.steps = clockSteps
		if m.v.Language.DayFirst() {
			m.steps = clockStepsDayFirst
		}
	case ModeAlarm:
		m.steps = alarmSteps
	case ModeTimer:
		m.steps = timerSteps
	default:
		m.mode = ModeNone
		return ActionNone
	}
	m.resetFlashing()
	return ActionRedraw
}

// Exit commits the current step and leaves setup.
func (m *Machine) Exit() Action {
	if !m.Active() {
		return ActionNone
	}
	m.commit()
	m.mode = ModeNone
	m.steps = nil
	m.pos = 0
	m.resetFlashing()
	return ActionExit
}

// Timeout is the idle timeout: it commits like a final short press.
func (m *Machine) Timeout() Action { return m.Exit() }

// Force jumps to step, entering its sub-machine when needed. StepNone exits.
func (m *Machine) Force(step Step) (Action, error) {
	if step >= NumSteps {
		return ActionNone, fmt.Errorf("setup: invalid step %d", step)
	}
	mode := step.Mode()
	if mode == ModeNone {
		return m.Exit(), nil
	}
	if m.mode != mode {
		m.Enter(mode)
	} else {
		m.commit()
	}
	for i, s := range m.steps {
		if s == step {
			m.pos = i
			break
		}
	}
	m.resetFlashing()
	return ActionRedraw, nil
}

// Press handles a classified button press.
func (m *Machine) Press(b Button, long bool) Action {
	if !m.Active() {
		return m.pressIdle(b, long)
	}
	switch b {
	case ButtonMode:
		if long {
			switch m.mode {
			case ModeAlarm:
				return m.Enter(ModeTimer)
			default:
				return m.Exit()
			}
		}
		return m.next()
	case ButtonUp:
		m.adjust(1)
	case ButtonDown:
		m.adjust(-1)
	default:
		return ActionNone
	}
	m.Flashing[m.Step()] = maskOn
	return ActionRedraw
}

func (m *Machine) pressIdle(b Button, long bool) Action {
	switch {
	case b == ButtonMode && long:
		return m.Enter(ModeAlarm)
	case b == ButtonMode:
		return m.Enter(ModeClock)
	case b == ButtonUp && !long:
		return ActionScrollDate
	case b == ButtonDown && !long:
		return ActionBrightness
	}
	return ActionNone
}

// Blink sets the active step's mask for the given half-second phase.
// It reports whether a redraw is needed.
func (m *Machine) Blink(on bool) bool {
	if !m.Active() {
		return false
	}
	mask := uint8(maskOff)
	if on {
		mask = maskOn
	}
	s := m.Step()
	if m.Flashing[s] == mask {
		return false
	}
	m.Flashing[s] = mask
	return true
}

func (m *Machine) resetFlashing() {
	for i := range m.Flashing {
		m.Flashing[i] = maskOn
	}
}

func (m *Machine) commit() {
	m.c.Commit(m.Step(), m.v)
}

// next commits the current step and moves on, leaving setup after the last step.
func (m *Machine) next() Action {
	step := m.Step()
	m.commit()
	m.Flashing[step] = maskOn

	done := m.pos+1 >= len(m.steps)
	switch step {
	case StepAlarmEnable:
		done = done || !m.v.Alarms[m.v.AlarmIndex].Enabled
	case StepTimerMode:
		// Only the count-down timer takes a start value.
		done = done || m.v.TimerMode != TimerDown
	}
	if done {
		m.mode = ModeNone
		m.steps = nil
		m.pos = 0
		m.resetFlashing()
		return ActionExit
	}
	m.pos++
	return ActionRedraw
}

// adjust moves the current field by delta with wraparound.
func (m *Machine) adjust(delta int) {
	v := &m.v
	a := &v.Alarms[v.AlarmIndex]
	switch m.Step() {
	case StepHour:
		v.Hour = wrap(v.Hour, delta, 0, 23)
	case StepMinute:
		v.Minute = wrap(v.Minute, delta, 0, 59)
	case StepMonth:
		v.Month = time.Month(wrap(int(v.Month), delta, 1, 12))
		v.clampDay()
	case StepDayOfMonth:
		v.Day = wrap(v.Day, delta, 1, calendar.MonthDays(v.Year, v.Month))
	case StepYear:
		// Full-year arithmetic carries into and borrows from the century.
		v.Year = wrap(v.Year, delta, MinYear, MaxYear)
		v.clampDay()
	case StepDST:
		v.DST = v.DST.Next(delta)
	case StepKeyclick:
		v.Keyclick = !v.Keyclick
	case StepScrolling:
		v.Scrolling = !v.Scrolling
	case StepLanguage:
		v.Language = v.Language.Next(delta)
	case StepDisplayMode:
		if v.TimeFormat == H24 {
			v.TimeFormat = H12
		} else {
			v.TimeFormat = H24
		}
	case StepHourlyChime:
		v.Chime = ChimeMode(wrap(int(v.Chime), delta, 0, int(numChimeModes)-1))
	case StepChimeOn:
		v.ChimeOn = wrap(v.ChimeOn, delta, 0, 23)
	case StepChimeOff:
		v.ChimeOff = wrap(v.ChimeOff, delta, 0, 23)
	case StepAlarmSelect:
		v.AlarmIndex = wrap(v.AlarmIndex, delta, 0, NumAlarms-1)
	case StepAlarmEnable:
		a.Enabled = !a.Enabled
	case StepAlarmHour:
		a.Hour = wrap(a.Hour, delta, 0, 23)
	case StepAlarmMinute:
		a.Minute = wrap(a.Minute, delta, 0, 59)
	case StepAlarmDays:
		i := wrap(calendar.PresetIndex(a.Days), delta, 0, len(calendar.DayPresets)-1)
		a.Days = calendar.DayPresets[i]
	case StepTimerMode:
		v.TimerMode = TimerMode(wrap(int(v.TimerMode), delta, 0, int(numTimerModes)-1))
	case StepTimerMinutes:
		v.TimerMinutes = wrap(v.TimerMinutes, delta, 0, 99)
	case StepTimerSeconds:
		v.TimerSeconds = wrap(v.TimerSeconds, delta, 0, 59)
	}
}

// ApplyIndicators overrides the lamps that preview pending values.
func (m *Machine) ApplyIndicators(ind *display.Indicators) {
	switch m.mode {
	case ModeClock:
		ind.AM, ind.PM = m.v.AMPM(m.v.Hour)
	case ModeAlarm:
		a := m.v.Alarms[m.v.AlarmIndex]
		ind.AlarmOn = a.Enabled
		ind.AM, ind.PM = m.v.AMPM(a.Hour)
		for wd := range ind.Weekday {
			ind.Weekday[wd] = a.Days.Has(time.Weekday(wd))
		}
	case ModeTimer:
		ind.CountUp = m.v.TimerMode == TimerUp
		ind.CountDown = m.v.TimerMode == TimerDown
	}
}
