// Package app wires the HAL, the clock core and its services into a runnable system.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dotclock/clockos/calendar"
	"dotclock/clockos/clock"
	"dotclock/clockos/kernel"
	"dotclock/clockos/nvconfig"
	"dotclock/clockos/rtc"
	"dotclock/clockos/services/logger"
	"dotclock/clockos/services/remote"
	"dotclock/clockos/setup"
	"dotclock/hal"
	"dotclock/internal/buildinfo"
)

type Config struct {
	Settings clock.Settings
	Events   []calendar.Event

	// AlarmSeeds are written to the RTC alarm registers before boot when SeedAlarms
	// is set or the chip lost its time. Alarms still boot disabled.
	AlarmSeeds []clock.Alarm
	SeedAlarms bool

	// IgnoreStored skips the settings record in flash.
	IgnoreStored bool

	Metrics clock.Metrics
	Trace   clock.EventLog
}

// System is a wired clock.
type System struct {
	K    *kernel.Kernel
	Core *clock.Core
	Log  *logger.Service
	RTC  *rtc.Device

	h hal.HAL
}

// New builds the system and boots the core. Boot errors are logged, not returned:
// the clock runs from a default time until the RTC answers.
func New(h hal.HAL, cfg Config) (*System, error) {
	log := h.Logger()
	k := kernel.New()

	logEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	logSvc := logger.New(log, logEP.Restrict(kernel.RightRecv))
	k.AddTask(logSvc)

	dev := rtc.New(h.I2C())
	if err := dev.Configure(); err != nil {
		log.WriteLineString("app: " + err.Error())
	}
	if cfg.SeedAlarms || !dev.TimeValid() {
		seedAlarms(dev, cfg.AlarmSeeds, log)
	}

	settings := cfg.Settings
	var store clock.SettingsStore
	if nv, err := nvconfig.New(h.Flash()); err == nil {
		store = nv
		if !cfg.IgnoreStored {
			switch st, err := nv.Load(); {
			case err == nil:
				settings = st
				log.WriteLineString("app: settings loaded from flash")
			case !errors.Is(err, nvconfig.ErrNoRecord):
				log.WriteLineString("app: " + err.Error())
			}
		}
	}

	core, err := clock.New(clock.Config{
		RTC:      dev,
		Lines:    lines(h.GPIO()),
		ADC:      adc{h.ADC()},
		OE:       h.OutputEnable(),
		Log:      log,
		Store:    store,
		Metrics:  cfg.Metrics,
		Trace:    cfg.Trace,
		Settings: settings,
		Events:   cfg.Events,
		Version:  buildinfo.Short(),
	})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	if err := core.Boot(); err != nil {
		log.WriteLineString("app: " + err.Error())
	}
	core.Attach(k, logEP.Restrict(kernel.RightSend))

	if serial := h.Serial(); serial != nil {
		k.AddTask(remote.New(core, serial, logEP.Restrict(kernel.RightSend)))
	}

	installPanicHandler(h, core)
	return &System{K: k, Core: core, Log: logSvc, RTC: dev, h: h}, nil
}

// Run drives the interrupt callbacks from the HAL tick and runs the kernel until
// ctx ends.
func (s *System) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if ht := s.h.Time(); ht != nil {
		if ch := ht.Ticks(); ch != nil {
			go s.Core.Interrupts().Run(ctx, ch, s.K.TickTo)
		}
	}
	return s.K.Run(ctx)
}

// Run builds and runs the system and never returns (TinyGo entrypoint).
func Run(h hal.HAL, cfg Config) {
	s, err := New(h, cfg)
	if err != nil {
		h.Logger().WriteLineString(err.Error())
		select {}
	}
	_ = s.Run(context.Background())
	select {}
}

func seedAlarms(dev *rtc.Device, seeds []clock.Alarm, log hal.Logger) {
	for id, a := range seeds {
		if id >= setup.NumAlarms {
			break
		}
		r := rtc.Alarm{Mode: rtc.AlarmDaily, Hour: a.Hour, Minute: a.Minute, Second: a.Second}
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			if a.Days == calendar.Only(wd) {
				r.Mode, r.Weekday = rtc.AlarmWeekly, wd
			}
		}
		if err := dev.WriteAlarm(id, r); err != nil {
			log.WriteLineString(fmt.Sprintf("app: seed alarm %d: %v", id+1, err))
		}
	}
}
