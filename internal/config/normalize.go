package config

// Normalize fills unset values from the embedded defaults.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	d := Default()

	c, dc := &cfg.Clock, &d.Clock
	fill(&c.Language, dc.Language)
	fill(&c.TimeFormat, dc.TimeFormat)
	if c.Keyclick == nil {
		c.Keyclick = dc.Keyclick
	}
	if c.Scroll.Enabled == nil {
		c.Scroll.Enabled = dc.Scroll.Enabled
	}
	fillInt(&c.Scroll.PeriodMin, dc.Scroll.PeriodMin)
	fillInt(&c.Scroll.DotMs, dc.Scroll.DotMs)
	fill(&c.Chime.Mode, dc.Chime.Mode)
	if c.Chime.On == nil {
		c.Chime.On = dc.Chime.On
	}
	if c.Chime.Off == nil {
		c.Chime.Off = dc.Chime.Off
	}
	fill(&c.DST, dc.DST)
	fill(&c.Brightness, dc.Brightness)
	fillInt(&c.IdleTimeoutSec, dc.IdleTimeoutSec)
	fill(&c.TemperatureUnit, dc.TemperatureUnit)
	fillInt(&c.AlarmRingSeconds, dc.AlarmRingSeconds)

	for i := range cfg.Alarms {
		fill(&cfg.Alarms[i].Days, "all")
	}

	h, dh := &cfg.Host, &d.Host
	fill(&h.LogLevel, dh.LogLevel)
	fillInt(&h.SerialBaud, dh.SerialBaud)
	if h.Light == nil {
		h.Light = dh.Light
	}
	if h.Supply == 0 {
		h.Supply = dh.Supply
	}
}

func fill(s *string, def string) {
	if *s == "" {
		*s = def
	}
}

func fillInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}
