package clock

import (
	"fmt"
	"strings"
	"time"

	"dotclock/clockos/calendar"
	"dotclock/clockos/proto"
)

// supplyMilliVolts converts a supply reading taken through a 1:2 divider against a
// 3.3 V reference.
func supplyMilliVolts(raw uint32) int {
	return int(raw) * 6600 / ADCMax
}

// compose returns the text scrolled for tag. It runs in the scroll task.
func (c *Core) compose(tag proto.Tag) string {
	switch {
	case tag.IsEvent():
		if int(tag) >= len(c.cfg.Events) {
			return ""
		}
		e := c.cfg.Events[tag]
		if e.IsDebug() {
			return c.debugLine()
		}
		return e.Description
	case tag == proto.TagDate:
		return c.dateLine()
	case tag == proto.TagTemp:
		return c.temperature()
	case tag == proto.TagDebug:
		return c.debugLine()
	case tag == proto.TagAlarms:
		return c.alarmLine()
	case tag == proto.TagDST:
		return c.dstLine()
	case tag == proto.TagQueue:
		return c.queueLine()
	}
	return ""
}

func (c *Core) dateLine() string {
	st := c.s.settings.Load()
	now := c.Now()
	parts := []string{st.Language.DateLine(now.Year, now.Month, now.Day)}
	if t := c.temperature(); t != "" {
		parts = append(parts, t)
	}
	if mv := supplyMilliVolts(c.s.supply.Load()); mv > 0 {
		parts = append(parts, fmt.Sprintf("%d.%02dV", mv/1000, mv%1000/10))
	}
	return strings.Join(parts, "  ")
}

// temperature formats the RTC sensor in the configured unit; it is empty when the
// sensor cannot be read.
func (c *Core) temperature() string {
	mc, err := c.rtc.Temperature()
	if err != nil {
		return ""
	}
	st := c.s.settings.Load()
	if st.TemperatureUnit == Fahrenheit {
		mc = mc*9/5 + 32000
	}
	return formatTenths(mc) + "°" + st.TemperatureUnit.String()
}

// formatTenths formats milli-units with one decimal, truncating toward zero.
func formatTenths(m int32) string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%d.%d", sign, m/1000, m%1000/100)
}

func (c *Core) debugLine() string {
	up := c.s.uptimeMs.Load() / 1000
	return fmt.Sprintf("%s up %dh%02dm q%d/%d ev%d drop%d",
		c.cfg.Version, up/3600, up/60%60, c.s.scrollQ.Len(), c.s.scrollQ.Cap()-1,
		len(c.cfg.Events), c.s.drops.Load())
}

func (c *Core) alarmLine() string {
	st := c.s.settings.Load()
	alarms := c.Alarms()
	parts := make([]string, len(alarms))
	for i, a := range alarms {
		parts[i] = a.Describe(i, st.TimeFormat)
	}
	return strings.Join(parts, "  ")
}

func (c *Core) dstLine() string {
	st := c.s.settings.Load()
	rule, ok := st.DST.Rule()
	if !ok {
		return "DST off"
	}
	year := c.Now().Year
	state := "standard"
	if c.s.dstActive.Load() {
		state = "summer"
	}
	start := calendar.NthWeekday(year, rule.StartMonth, time.Sunday, rule.StartWeek)
	end := calendar.NthWeekday(year, rule.EndMonth, time.Sunday, rule.EndWeek)
	return fmt.Sprintf("DST %s %s, %02d-%02d %d:00 to %02d-%02d %d:00",
		st.DST, state, int(rule.StartMonth), start, rule.StartHour, int(rule.EndMonth), end, rule.EndHour)
}

// queueLine dumps the raw scroll queue slots, vacant markers included.
func (c *Core) queueLine() string {
	var slots [proto.ScrollQueueSize]proto.Tag
	head, tail, n := c.s.scrollQ.Ring().Slots(slots[:])
	var b strings.Builder
	fmt.Fprintf(&b, "Queue %d/%d h%d t%d:", c.s.scrollQ.Len(), n-1, head, tail)
	for _, t := range slots[:n] {
		if t == proto.TagVacant {
			continue
		}
		fmt.Fprintf(&b, " %s", t)
	}
	return b.String()
}
