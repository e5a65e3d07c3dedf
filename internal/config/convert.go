package config

import (
	"fmt"
	"log/slog"

	"dotclock/clockos/calendar"
	"dotclock/clockos/clock"
	"dotclock/clockos/setup"
)

// Settings converts a validated, normalized config to clock settings.
func (cfg *Config) Settings() (clock.Settings, error) {
	c := &cfg.Clock
	st := clock.DefaultSettings()
	var err error
	if st.Language, err = calendar.ParseLanguage(c.Language); err != nil {
		return st, err
	}
	if st.TimeFormat, err = setup.ParseTimeFormat(c.TimeFormat); err != nil {
		return st, err
	}
	if st.Chime, err = setup.ParseChimeMode(c.Chime.Mode); err != nil {
		return st, err
	}
	if st.DST, err = calendar.ParseDSTZone(c.DST); err != nil {
		return st, err
	}
	if st.TemperatureUnit, err = clock.ParseTemperatureUnit(c.TemperatureUnit); err != nil {
		return st, err
	}
	if st.AutoBrightness, st.Brightness, err = parseBrightness(c.Brightness); err != nil {
		return st, err
	}
	if c.Keyclick != nil {
		st.Keyclick = *c.Keyclick
	}
	if c.Scroll.Enabled != nil {
		st.ScrollEnabled = *c.Scroll.Enabled
	}
	st.ScrollPeriod = c.Scroll.PeriodMin
	st.ScrollDotMs = c.Scroll.DotMs
	if c.Chime.On != nil {
		st.ChimeOn = *c.Chime.On
	}
	if c.Chime.Off != nil {
		st.ChimeOff = *c.Chime.Off
	}
	st.IdleTimeout = c.IdleTimeoutSec
	st.AlarmRingSeconds = c.AlarmRingSeconds
	return st.Normalize(), nil
}

// CalendarEvents converts the event table.
func (cfg *Config) CalendarEvents() ([]calendar.Event, error) {
	return convertEvents(cfg.Events)
}

// AlarmTimes converts the alarm seeds. Every alarm is disabled.
func (cfg *Config) AlarmTimes() ([]clock.Alarm, error) {
	out := make([]clock.Alarm, 0, len(cfg.Alarms))
	for i, a := range cfg.Alarms {
		h, m, err := parseClockTime(a.Time)
		if err != nil {
			return nil, fmt.Errorf("alarms[%d]: %w", i, err)
		}
		days := calendar.EveryDay
		if a.Days != "" {
			if days, err = parseDays(a.Days); err != nil {
				return nil, fmt.Errorf("alarms[%d]: %w", i, err)
			}
		}
		out = append(out, clock.Alarm{Hour: h, Minute: m, Days: days})
	}
	return out, nil
}

// LogLevel returns the host log level, info when unset.
func (cfg *Config) LogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(cfg.Host.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
