package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"dotclock/clockos/calendar"
	"dotclock/clockos/clock"
	"dotclock/clockos/setup"
)

// Validate checks configuration correctness and reports every problem found.
// It MUST NOT mutate configuration. Empty values are allowed; Normalize fills them.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}
	var errs []error
	add := func(format string, a ...any) {
		errs = append(errs, fmt.Errorf(format, a...))
	}

	c := &cfg.Clock
	if c.Language != "" {
		if _, err := calendar.ParseLanguage(c.Language); err != nil {
			add("clock.language: %w", err)
		}
	}
	if c.TimeFormat != "" {
		if _, err := setup.ParseTimeFormat(c.TimeFormat); err != nil {
			add("clock.time_format: %w", err)
		}
	}
	if c.Scroll.PeriodMin != 0 && (c.Scroll.PeriodMin < 1 || c.Scroll.PeriodMin > 60) {
		add("clock.scroll.period_min: %d not in 1..60", c.Scroll.PeriodMin)
	}
	if c.Scroll.DotMs != 0 && (c.Scroll.DotMs < 5 || c.Scroll.DotMs > 500) {
		add("clock.scroll.dot_ms: %d not in 5..500", c.Scroll.DotMs)
	}
	if c.Chime.Mode != "" {
		if _, err := setup.ParseChimeMode(c.Chime.Mode); err != nil {
			add("clock.chime.mode: %w", err)
		}
	}
	for name, h := range map[string]*int{"on": c.Chime.On, "off": c.Chime.Off} {
		if h != nil && (*h < 0 || *h > 23) {
			add("clock.chime.%s: hour %d not in 0..23", name, *h)
		}
	}
	if c.DST != "" {
		if _, err := calendar.ParseDSTZone(c.DST); err != nil {
			add("clock.dst: %w", err)
		}
	}
	if c.Brightness != "" {
		if _, _, err := parseBrightness(c.Brightness); err != nil {
			add("clock.brightness: %w", err)
		}
	}
	if c.IdleTimeoutSec < 0 {
		add("clock.idle_timeout_sec: negative")
	}
	if c.AlarmRingSeconds < 0 {
		add("clock.alarm_ring_sec: negative")
	}
	if c.TemperatureUnit != "" {
		if _, err := clock.ParseTemperatureUnit(c.TemperatureUnit); err != nil {
			add("clock.temperature_unit: %w", err)
		}
	}

	if len(cfg.Alarms) > setup.NumAlarms {
		add("alarms: %d alarms, the clock has %d", len(cfg.Alarms), setup.NumAlarms)
	}
	for i, a := range cfg.Alarms {
		if _, _, err := parseClockTime(a.Time); err != nil {
			add("alarms[%d].time: %w", i, err)
		}
		if a.Days != "" {
			if _, err := parseDays(a.Days); err != nil {
				add("alarms[%d].days: %w", i, err)
			}
		}
	}

	events, err := convertEvents(cfg.Events)
	if err != nil {
		errs = append(errs, err)
	} else if err := calendar.ValidateEvents(events); err != nil {
		add("events: %w", err)
	}

	h := &cfg.Host
	if h.LogLevel != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(h.LogLevel)); err != nil {
			add("host.log_level: %w", err)
		}
	}
	if h.SerialBaud < 0 {
		add("host.serial_baud: negative")
	}
	if h.Light != nil && *h.Light > clock.ADCMax {
		add("host.light: %d above %d", *h.Light, clock.ADCMax)
	}
	if h.Supply > clock.ADCMax {
		add("host.supply: %d above %d", h.Supply, clock.ADCMax)
	}

	return errors.Join(errs...)
}

func parseBrightness(s string) (auto bool, level int, err error) {
	if s == "auto" {
		return true, clock.MaxBrightness, nil
	}
	level, err = strconv.Atoi(s)
	if err != nil || level < 1 || level > clock.MaxBrightness {
		return false, 0, fmt.Errorf("%q is neither auto nor 1..%d", s, clock.MaxBrightness)
	}
	return false, level, nil
}

func parseClockTime(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("%q is not HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

var dayNames = map[string]calendar.Weekdays{
	"all":     calendar.EveryDay,
	"work":    calendar.WorkDays,
	"weekend": calendar.Weekend,
}

func parseDays(s string) (calendar.Weekdays, error) {
	s = strings.ToLower(s)
	if d, ok := dayNames[s]; ok {
		return d, nil
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := strings.ToLower(wd.String())
		if s == name || s == name[:3] {
			return calendar.Only(wd), nil
		}
	}
	return 0, fmt.Errorf("unknown days %q", s)
}

func convertEvents(in []EventConfig) ([]calendar.Event, error) {
	out := make([]calendar.Event, 0, len(in))
	for i, e := range in {
		t, err := time.Parse("2006-01-02", "2000-"+e.Date)
		if err != nil {
			return nil, fmt.Errorf("events[%d].date: %q is not MM-DD", i, e.Date)
		}
		out = append(out, calendar.Event{
			Day:         uint8(t.Day()),
			Month:       t.Month(),
			Jingle:      e.Jingle,
			Description: e.Text,
		})
	}
	return out, nil
}
