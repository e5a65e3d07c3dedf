package clock

import (
	"time"

	"dotclock/clockos/calendar"
	"dotclock/clockos/rtc"
	"dotclock/clockos/setup"
)

// Load implements setup.Committer with the live values.
func (c *Core) Load() setup.Values {
	now := c.Now()
	st := &c.settings
	return setup.Values{
		Hour:         now.Hour,
		Minute:       now.Minute,
		Day:          now.Day,
		Month:        now.Month,
		Year:         now.Year,
		DST:          st.DST,
		Keyclick:     st.Keyclick,
		Scrolling:    st.ScrollEnabled,
		Language:     st.Language,
		TimeFormat:   st.TimeFormat,
		Chime:        st.Chime,
		ChimeOn:      st.ChimeOn,
		ChimeOff:     st.ChimeOff,
		Alarms:       c.alarms,
		AlarmIndex:   c.alarmIndex,
		TimerMode:    c.timer.Mode,
		TimerMinutes: c.timer.Minutes,
		TimerSeconds: c.timer.Seconds,
	}
}

// Commit implements setup.Committer. Time fields go to the RTC; a failed write keeps
// the running clock.
func (c *Core) Commit(step setup.Step, v setup.Values) {
	switch {
	case step.IsTime():
		c.commitTime(step, v)
	case step.Mode() == setup.ModeClock:
		c.commitSettings(step, v)
	case step.Mode() == setup.ModeAlarm:
		c.commitAlarm(step, v)
	case step.Mode() == setup.ModeTimer:
		c.commitTimer(step, v)
	}
}

type fieldWrite struct {
	f rtc.Field
	v int
}

func (c *Core) commitTime(step setup.Step, v setup.Values) {
	now := c.Now()
	var writes []fieldWrite
	switch step {
	case setup.StepHour:
		if v.Hour != now.Hour {
			writes = append(writes, fieldWrite{rtc.FieldHour, v.Hour})
		}
	case setup.StepMinute:
		if v.Minute != now.Minute {
			writes = append(writes, fieldWrite{rtc.FieldMinute, v.Minute}, fieldWrite{rtc.FieldSecond, 0})
		}
	case setup.StepMonth, setup.StepDayOfMonth, setup.StepYear:
		// Month and year edits may have clamped the day, so the whole date is written.
		if v.Day != now.Day || v.Month != now.Month || v.Year != now.Year {
			writes = append(writes,
				fieldWrite{rtc.FieldYear, v.Year},
				fieldWrite{rtc.FieldMonth, int(v.Month)},
				fieldWrite{rtc.FieldDay, v.Day})
		}
	}
	if len(writes) == 0 {
		return
	}
	for _, w := range writes {
		if err := c.rtc.WriteField(w.f, w.v); err != nil {
			c.m.RTCError()
			c.logf("setup: write %s: %v", w.f, err)
			return
		}
	}
	t, err := c.rtc.Read()
	if err != nil {
		c.m.RTCError()
		c.logf("setup: read back: %v", err)
		return
	}
	c.command(Command{Kind: CmdSetTime, Time: t})
	// The machine renders from its own copy; the snapshot follows at once so that a
	// following Load sees the new time.
	c.s.now.Store(packTime(t))
	c.logf("setup: %s committed, time %s", step, t)
	c.trace.Printf("time set to %s", t)
}

func (c *Core) commitSettings(step setup.Step, v setup.Values) {
	st := &c.settings
	prev := *st
	st.DST = v.DST
	st.Keyclick = v.Keyclick
	st.ScrollEnabled = v.Scrolling
	st.Language = v.Language
	st.TimeFormat = v.TimeFormat
	st.Chime = v.Chime
	st.ChimeOn = v.ChimeOn
	st.ChimeOff = v.ChimeOff
	if *st == prev {
		return
	}
	c.publishSettings()
	if st.DST != prev.DST {
		active := false
		if rule, ok := st.DST.Rule(); ok {
			now := c.Now()
			active = rule.Active(now.Year, now.Month, now.Day, now.Hour)
		}
		c.command(Command{Kind: CmdSetDST, Flag: active})
		c.s.dstActive.Store(active)
	}
	c.logf("setup: %s committed", step)
}

func (c *Core) commitAlarm(step setup.Step, v setup.Values) {
	c.alarmIndex = v.AlarmIndex
	if step == setup.StepAlarmSelect {
		return
	}
	id := v.AlarmIndex
	a := v.Alarms[id]
	if a == c.alarms[id] {
		return
	}
	c.alarms[id] = a
	c.publishAlarms()
	if err := c.rtc.WriteAlarm(id, rtcAlarm(a)); err != nil {
		c.m.RTCError()
		c.logf("setup: alarm %d: %v", id+1, err)
		return
	}
	c.logf("setup: %s", a.Describe(id, c.settings.TimeFormat))
	c.trace.Printf("alarm %d set: %s", id+1, a.Describe(id, c.settings.TimeFormat))
}

// rtcAlarm maps an alarm onto the chip. A single weekday uses the chip's day match;
// other day sets fire daily and are filtered when polled.
func rtcAlarm(a Alarm) rtc.Alarm {
	r := rtc.Alarm{Mode: rtc.AlarmDaily, Second: a.Second, Minute: a.Minute, Hour: a.Hour}
	if !a.Enabled {
		r.Mode = rtc.AlarmOff
		return r
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if a.Days == calendar.Only(wd) {
			r.Mode = rtc.AlarmWeekly
			r.Weekday = wd
		}
	}
	return r
}

func (c *Core) commitTimer(step setup.Step, v setup.Values) {
	c.timer.Mode = v.TimerMode
	c.timer.Minutes = v.TimerMinutes
	c.timer.Seconds = v.TimerSeconds
	var t Timer
	switch {
	case step == setup.StepTimerMode && v.TimerMode == setup.TimerOff:
		t = Timer{}
	case step == setup.StepTimerMode && v.TimerMode == setup.TimerUp:
		t = Timer{Mode: setup.TimerUp, Ready: true}
	case step == setup.StepTimerSeconds && v.TimerMode == setup.TimerDown:
		t = Timer{Mode: setup.TimerDown, Minutes: v.TimerMinutes, Seconds: v.TimerSeconds}
		t.Ready = t.Minutes > 0 || t.Seconds > 0
	default:
		return
	}
	c.command(Command{Kind: CmdSetTimer, Timer: t})
	c.logf("timer: %s", t)
}
