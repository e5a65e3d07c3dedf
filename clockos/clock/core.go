// Package clock is the clock core: the millisecond and second interrupt callbacks,
// the main-loop tasks that own the setup machine and the scroll ribbon, and the API
// exposed to the IR bridge and web layers.
//
// Interrupt context is a single goroutine calling Interrupts.Tick once per
// millisecond. The main loop is a pair of kernel tasks. They share only rings, the
// producer-guarded queues, the framebuffer lock (TryLock on the interrupt side) and
// atomics.
package clock

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"dotclock/clockos/calendar"
	"dotclock/clockos/display"
	"dotclock/clockos/kernel"
	"dotclock/clockos/proto"
	"dotclock/clockos/ring"
	"dotclock/clockos/rtc"
	"dotclock/clockos/services/logger"
	"dotclock/clockos/setup"
	"dotclock/clockos/sound"
)

// DefaultScrollTimeout bounds one backpressure wait of the scroll task.
const DefaultScrollTimeout = 5 * time.Second

// ErrNotAttached is returned by the control API before Attach.
var ErrNotAttached = errors.New("clock: core not attached to a kernel")

// Config wires the core to its collaborators. Nil collaborators are replaced by
// inert ones, except RTC.
type Config struct {
	RTC      Clock
	Lines    Lines
	ADC      ADC
	OE       OutputEnable
	Log      Logger
	Store    SettingsStore
	Metrics  Metrics
	Trace    EventLog
	Settings Settings
	Events   []calendar.Event
	// Version is shown by the debug scroll.
	Version string
	// ScrollTimeout overrides DefaultScrollTimeout.
	ScrollTimeout time.Duration
}

// Core is the clock core.
type Core struct {
	cfg   Config
	rtc   *lockedClock
	s     *shared
	irq   *Interrupts
	m     Metrics
	trace EventLog

	k      *kernel.Kernel
	ctrl   kernel.Capability
	logCap kernel.Capability
	// task is the context of the core task while it handles input.
	task *kernel.Context

	// Owned by the core task.
	machine    *setup.Machine
	settings   Settings
	alarms     [setup.NumAlarms]Alarm
	alarmIndex int
	timer      Timer
	lastFired  [setup.NumAlarms]uint32

	// alarmSnap is read by the scroll task.
	alarmSnap atomic.Pointer[[setup.NumAlarms]Alarm]

	mu           sync.Mutex
	cancelScroll func()
}

// New builds a core. Call Boot before starting interrupts and tasks.
func New(cfg Config) (*Core, error) {
	if cfg.RTC == nil {
		return nil, errors.New("clock: no RTC")
	}
	if err := calendar.ValidateEvents(cfg.Events); err != nil {
		return nil, err
	}
	fillLines(&cfg.Lines)
	if cfg.ADC == nil {
		cfg.ADC = fullScaleADC{}
	}
	if cfg.OE == nil {
		cfg.OE = nopOutputEnable{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	if cfg.Trace == nil {
		cfg.Trace = nopEventLog{}
	}
	if cfg.ScrollTimeout <= 0 {
		cfg.ScrollTimeout = DefaultScrollTimeout
	}

	c := &Core{
		cfg:      cfg,
		rtc:      &lockedClock{c: cfg.RTC},
		s:        newShared(),
		m:        cfg.Metrics,
		trace:    cfg.Trace,
		settings: cfg.Settings.Normalize(),
	}
	c.irq = newInterrupts(c.s, cfg.Lines, cfg.ADC, cfg.OE, cfg.Events, cfg.Metrics)
	c.machine = setup.New(c)
	st := c.settings
	c.s.settings.Store(&st)
	c.alarmSnap.Store(&c.alarms)
	return c, nil
}

// Boot reads the RTC into the wall clock and seeds alarms and DST state. Alarm times
// come from the RTC registers; alarms always boot disabled.
func (c *Core) Boot() error {
	var firstErr error
	now, err := c.rtc.Read()
	if err != nil {
		firstErr = fmt.Errorf("clock: boot: %w", err)
		now = rtc.Time{Year: setup.MinYear, Month: time.January, Day: 1, Weekday: time.Saturday}
	}
	for id := range c.alarms {
		a, err := c.rtc.ReadAlarm(id)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("clock: boot: %w", err)
			}
			continue
		}
		c.alarms[id] = Alarm{Hour: a.Hour, Minute: a.Minute, Second: a.Second, Days: calendar.EveryDay}
		if a.Mode == rtc.AlarmWeekly {
			c.alarms[id].Days = calendar.Only(a.Weekday)
		}
		// The hardware enable is cleared too so a stale alarm cannot set the flag.
		if a.Mode != rtc.AlarmOff {
			a.Mode = rtc.AlarmOff
			_ = c.rtc.WriteAlarm(id, a)
		}
	}
	c.publishAlarms()

	c.irq.now = now
	c.s.now.Store(packTime(now))
	if rule, ok := c.settings.DST.Rule(); ok {
		c.irq.dst = rule.Active(now.Year, now.Month, now.Day, now.Hour)
		c.s.dstActive.Store(c.irq.dst)
	}
	c.irq.publish(c.s.settings.Load())
	c.playTone(sound.ToneBoot)
	c.drawTime()
	c.logf("clock: boot %s, dst=%t", now, c.irq.dst)
	return firstErr
}

// Attach registers the core tasks with k. Log lines go to logCap.
func (c *Core) Attach(k *kernel.Kernel, logCap kernel.Capability) {
	c.k = k
	c.logCap = logCap
	c.ctrl = k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	k.AddTask(&coreTask{c: c, ctrl: c.ctrl.Restrict(kernel.RightRecv)})
	k.AddTask(&scrollTask{c: c})
}

// Interrupts returns the callbacks to drive from the millisecond tick.
func (c *Core) Interrupts() *Interrupts { return c.irq }

// Framebuffer returns the display framebuffer.
func (c *Core) Framebuffer() *display.Framebuffer { return c.s.fb }

// Indicators returns the lamps being scanned, setup previews included.
func (c *Core) Indicators() display.Indicators {
	return display.IndicatorsFrom(c.s.effectiveIndicators())
}

// Now returns the wall clock as of the last second tick.
func (c *Core) Now() rtc.Time { return unpackTime(c.s.now.Load()) }

// Settings returns the published settings.
func (c *Core) Settings() Settings { return *c.s.settings.Load() }

// SetupActive reports whether a setup mode is active.
func (c *Core) SetupActive() bool { return c.s.setupActive.Load() }

// DSTActive reports whether daylight time is in effect.
func (c *Core) DSTActive() bool { return c.s.dstActive.Load() }

// Timer returns the timer state as of the last second tick.
func (c *Core) Timer() Timer { return unpackTimer(c.s.timer.Load()) }

// Alarms returns the alarm table.
func (c *Core) Alarms() [setup.NumAlarms]Alarm { return *c.alarmSnap.Load() }

// QueueLen returns the number of pending scroll tags.
func (c *Core) QueueLen() int { return c.s.scrollQ.Len() }

// EnqueueScroll queues tag for scrolling. It returns ring.ErrFull, after sounding
// the queue-full tone, when the queue has no room.
func (c *Core) EnqueueScroll(tag proto.Tag) error {
	if err := c.s.scrollQ.Enqueue(tag); err != nil {
		c.m.QueueFull()
		c.playTone(sound.ToneQueueFull)
		return err
	}
	c.m.ScrollEnqueued()
	return nil
}

// EnterSetupMode asks the main loop to enter mode, or to leave setup for ModeNone.
func (c *Core) EnterSetupMode(mode setup.Mode) error {
	return c.post(proto.MsgEnterSetup, proto.EnterSetupPayload(mode))
}

// ForceSetupStep asks the main loop to jump to step.
func (c *Core) ForceSetupStep(step setup.Step) error {
	if step >= setup.NumSteps {
		return fmt.Errorf("clock: invalid step %d", step)
	}
	return c.post(proto.MsgForceStep, proto.ForceStepPayload(step))
}

func (c *Core) post(kind proto.Kind, payload []byte) error {
	if c.k == nil {
		return ErrNotAttached
	}
	if res := c.k.Post(c.ctrl, uint16(kind), payload); res != kernel.SendOK {
		if res == kernel.SendErrQueueFull {
			return ring.ErrFull
		}
		return fmt.Errorf("clock: %s: %s", kind, res)
	}
	return nil
}

func (c *Core) playTone(id sound.ToneID) {
	_ = c.s.soundQ.Enqueue(id)
}

func (c *Core) command(cmd Command) {
	if !c.s.commands.Push(cmd) {
		c.logf("clock: command ring full, dropped %d", cmd.Kind)
	}
}

// logf logs through the logger task once the core task runs, and directly before
// that. Only Boot and the core task may call it.
func (c *Core) logf(format string, a ...any) {
	line := fmt.Sprintf(format, a...)
	if c.task != nil && c.logCap.Valid() {
		logger.Log(c.task, c.logCap, line)
		return
	}
	if c.cfg.Log != nil {
		c.cfg.Log.WriteLineString(line)
	}
}

func (c *Core) publishSettings() {
	c.settings = c.settings.Normalize()
	st := c.settings
	c.s.settings.Store(&st)
	if c.cfg.Store != nil {
		if err := c.cfg.Store.Save(st); err != nil {
			c.logf("clock: save settings: %v", err)
		}
	}
}

func (c *Core) publishAlarms() {
	snap := c.alarms
	c.alarmSnap.Store(&snap)
	var mask uint32
	for i, a := range snap {
		if a.Enabled {
			mask |= 1 << i
		}
	}
	c.s.alarmMask.Store(mask)
}

// Halt abandons any scroll and hands the framebuffer to draw. It is meant for the
// panic screen: the main-loop tasks stop drawing once a task has panicked.
func (c *Core) Halt(draw func(fb *display.Framebuffer)) {
	c.mu.Lock()
	if c.cancelScroll != nil {
		c.cancelScroll()
	}
	c.mu.Unlock()
	c.s.scroller.Stop()
	c.s.fb.Lock()
	defer c.s.fb.Unlock()
	draw(c.s.fb)
}

// drawTime shows the clock face unless a scroll or setup owns the display.
func (c *Core) drawTime() {
	if c.s.setupActive.Load() {
		return
	}
	now := c.Now()
	f := c.settings.TimeFormat
	c.s.scroller.WithIdle(func(fb *display.Framebuffer) {
		fb.ClearDisplay()
		fb.RenderTime(f.Hour(now.Hour), now.Minute, 0xff, 0xff)
	})
}

// lockedClock serialises RTC access between the core and scroll tasks.
type lockedClock struct {
	mu sync.Mutex
	c  Clock
}

func (l *lockedClock) Read() (rtc.Time, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Read()
}

func (l *lockedClock) WriteField(f rtc.Field, v int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.WriteField(f, v)
}

func (l *lockedClock) CheckAlarm(id int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.CheckAlarm(id)
}

func (l *lockedClock) WriteAlarm(id int, a rtc.Alarm) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.WriteAlarm(id, a)
}

func (l *lockedClock) ReadAlarm(id int) (rtc.Alarm, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.ReadAlarm(id)
}

func (l *lockedClock) Temperature() (int32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Temperature()
}

type nopLine struct{}

func (nopLine) Set(bool)  {}
func (nopLine) Get() bool { return true }

func fillLines(l *Lines) {
	for i := range l.Buttons {
		if l.Buttons[i] == nil {
			l.Buttons[i] = nopLine{}
		}
	}
	for _, p := range []*Line{&l.Buzzer, &l.SDI, &l.CLK, &l.LE, &l.OE, &l.A0, &l.A1, &l.A2} {
		if *p == nil {
			*p = nopLine{}
		}
	}
}

type fullScaleADC struct{}

func (fullScaleADC) Read(ADCChannel) uint16 { return ADCMax }

type nopOutputEnable struct{}

func (nopOutputEnable) BlankAfter(int) {}
