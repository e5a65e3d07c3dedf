package clock

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dotclock/clockos/calendar"
	"dotclock/clockos/display"
	"dotclock/clockos/kernel"
	"dotclock/clockos/proto"
	"dotclock/clockos/rtc"
	"dotclock/clockos/setup"
	"dotclock/clockos/sound"
)

// button is an active-low push button.
type button struct{ pressed bool }

func (b *button) Set(bool)  {}
func (b *button) Get() bool { return !b.pressed }

func newButtonCore(t *testing.T, start time.Time) (*Core, *[setup.NumButtons]button) {
	t.Helper()
	var btns [setup.NumButtons]button
	var lines Lines
	for i := range btns {
		lines.Buttons[i] = &btns[i]
	}
	dev := rtc.New(rtc.NewSimulator(start))
	if err := dev.Configure(); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	c, err := New(Config{RTC: dev, Lines: lines, Settings: quietSettings()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := c.Boot(); err != nil {
		t.Fatalf("Boot() error: %v", err)
	}
	drainTones(c)
	return c, &btns
}

func hold(c *Core, b *button, ms int) {
	b.pressed = true
	for i := 0; i < ms; i++ {
		c.irq.MillisecondTick()
	}
	b.pressed = false
	c.irq.MillisecondTick()
}

func TestButtonClassification(t *testing.T) {
	c, btns := newButtonCore(t, time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC))

	tests := []struct {
		ms   int
		want bool
		long bool
	}{
		{20, false, false},
		{100, true, false},
		{400, true, true},
	}
	for _, tt := range tests {
		drainEvents(c)
		hold(c, &btns[setup.ButtonUp], tt.ms)
		ev, ok := findEvent(drainEvents(c), EvButton)
		if ok != tt.want {
			t.Fatalf("%d ms press: event %v, want %v", tt.ms, ok, tt.want)
		}
		if ok && (ev.Button != setup.ButtonUp || ev.Long != tt.long) {
			t.Fatalf("%d ms press = %+v, want up long=%t", tt.ms, ev, tt.long)
		}
	}
}

func TestPressWhileRingingOnlySilences(t *testing.T) {
	c, btns := newButtonCore(t, time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC))
	c.command(Command{Kind: CmdRingAlarm})
	c.irq.MillisecondTick()
	c.irq.SecondTick()
	if !hasTone(drainTones(c), sound.ToneAlarm) {
		t.Fatal("alarm not ringing")
	}
	drainEvents(c)

	hold(c, &btns[setup.ButtonMode], 100)
	if _, ok := findEvent(drainEvents(c), EvButton); ok {
		t.Fatal("press while ringing reached the setup machine")
	}
	c.irq.SecondTick()
	if hasTone(drainTones(c), sound.ToneAlarm) {
		t.Fatal("alarm still ringing after a press")
	}
}

func TestSetupCommitsHourToRTC(t *testing.T) {
	c, sim := newTestCore(t, time.Date(2024, time.March, 5, 10, 4, 30, 0, time.UTC), quietSettings(), nil)

	c.handleEvent(Event{Kind: EvButton, Button: setup.ButtonMode})
	if !c.SetupActive() || c.machine.Step() != setup.StepHour {
		t.Fatalf("after mode press: active=%t step=%s, want hour", c.SetupActive(), c.machine.Step())
	}
	c.handleEvent(Event{Kind: EvButton, Button: setup.ButtonUp})
	c.handleEvent(Event{Kind: EvButton, Button: setup.ButtonMode})
	if got := sim.Now().Hour(); got != 11 {
		t.Fatalf("RTC hour = %d, want 11", got)
	}
	if got := c.Now().Hour; got != 11 {
		t.Fatalf("Now().Hour = %d, want 11", got)
	}
	if c.machine.Step() != setup.StepMinute {
		t.Fatalf("Step() = %s, want minute", c.machine.Step())
	}

	c.handleEvent(Event{Kind: EvTimeout})
	if c.SetupActive() {
		t.Fatal("SetupActive() = true after timeout")
	}
	// The unchanged minute is not written, so the seconds keep running.
	if got := sim.Now().Second(); got != 30 {
		t.Fatalf("RTC second = %d, want 30", got)
	}
}

func TestSetupMinuteResetsSeconds(t *testing.T) {
	c, sim := newTestCore(t, time.Date(2024, time.March, 5, 10, 4, 30, 0, time.UTC), quietSettings(), nil)
	c.handleEvent(Event{Kind: EvButton, Button: setup.ButtonMode})
	c.handleEvent(Event{Kind: EvButton, Button: setup.ButtonMode})
	c.handleEvent(Event{Kind: EvButton, Button: setup.ButtonDown})
	c.handleEvent(Event{Kind: EvButton, Button: setup.ButtonMode})
	got := sim.Now()
	if got.Minute() != 3 || got.Second() != 0 {
		t.Fatalf("RTC time = %s, want 10:03:00", got.Format(time.TimeOnly))
	}
}

func TestSetupRendersAndOverlaysIndicators(t *testing.T) {
	st := quietSettings()
	st.TimeFormat = setup.H12
	c, _ := newTestCore(t, time.Date(2024, time.March, 5, 11, 0, 0, 0, time.UTC), st, nil)
	if ind := c.Indicators(); !ind.AM {
		t.Fatalf("Indicators() = %+v, want AM", ind)
	}
	c.handleEvent(Event{Kind: EvButton, Button: setup.ButtonMode})
	c.handleEvent(Event{Kind: EvButton, Button: setup.ButtonUp})
	if ind := c.Indicators(); !ind.PM || ind.AM {
		t.Fatalf("Indicators() during setup = %+v, want the pending PM", ind)
	}
	c.handleEvent(Event{Kind: EvButton, Button: setup.ButtonMode, Long: true})
	if c.SetupActive() {
		t.Fatal("long mode press did not leave clock setup")
	}
	c.irq.MillisecondTick()
	c.irq.SecondTick()
	if ind := c.Indicators(); !ind.PM {
		t.Fatalf("Indicators() after setup = %+v, want PM", ind)
	}
}

func TestIdleButtons(t *testing.T) {
	c, _ := newTestCore(t, time.Date(2024, time.March, 5, 11, 0, 0, 0, time.UTC), quietSettings(), nil)
	c.handleEvent(Event{Kind: EvButton, Button: setup.ButtonUp})
	if tags := drainTags(c); len(tags) != 1 || tags[0] != proto.TagDate {
		t.Fatalf("tags after up = %v, want [date]", tags)
	}

	want := []struct {
		auto  bool
		level int
	}{{false, 1}, {false, 2}}
	for _, w := range want {
		c.handleEvent(Event{Kind: EvButton, Button: setup.ButtonDown})
		st := c.Settings()
		if st.AutoBrightness != w.auto || st.Brightness != w.level {
			t.Fatalf("brightness = auto %t level %d, want auto %t level %d", st.AutoBrightness, st.Brightness, w.auto, w.level)
		}
	}
	for i := 2; i <= MaxBrightness; i++ {
		c.handleEvent(Event{Kind: EvButton, Button: setup.ButtonDown})
	}
	if !c.Settings().AutoBrightness {
		t.Fatal("brightness did not wrap to auto")
	}
}

func TestAlarmPollRingsOncePerMinute(t *testing.T) {
	c, sim := newTestCore(t, time.Date(2024, time.March, 5, 6, 59, 59, 0, time.UTC), quietSettings(), nil)
	a := Alarm{Enabled: true, Hour: 7, Days: calendar.WorkDays}
	c.alarms[0] = a
	c.publishAlarms()
	if err := c.rtc.WriteAlarm(0, rtcAlarm(a)); err != nil {
		t.Fatalf("WriteAlarm() error: %v", err)
	}
	if !c.Indicators().AlarmOn {
		c.irq.SecondTick()
		if !c.Indicators().AlarmOn {
			t.Fatal("AlarmOn lamp off with an enabled alarm")
		}
	}

	sim.Tick()
	setNow(c, time.Date(2024, time.March, 5, 7, 0, 0, 0, time.UTC))
	c.pollAlarms()
	c.pollAlarms()
	var cmds []Command
	for {
		cmd, ok := c.s.commands.Pop()
		if !ok {
			break
		}
		cmds = append(cmds, cmd)
	}
	rings := 0
	for _, cmd := range cmds {
		if cmd.Kind == CmdRingAlarm {
			rings++
		}
		c.s.commands.Push(cmd)
	}
	if rings != 1 {
		t.Fatalf("ring commands = %d, want 1", rings)
	}
	c.irq.MillisecondTick()
	if c.irq.ringLeft != c.settings.AlarmRingSeconds {
		t.Fatalf("ringLeft = %d, want %d", c.irq.ringLeft, c.settings.AlarmRingSeconds)
	}
	c.irq.SecondTick()
	if !hasTone(drainTones(c), sound.ToneAlarm) {
		t.Fatal("no alarm tone")
	}
}

func TestAlarmPollSkipsOtherDays(t *testing.T) {
	// 9 March 2024 is a Saturday.
	c, sim := newTestCore(t, time.Date(2024, time.March, 9, 6, 59, 59, 0, time.UTC), quietSettings(), nil)
	a := Alarm{Enabled: true, Hour: 7, Days: calendar.WorkDays}
	c.alarms[0] = a
	c.publishAlarms()
	if err := c.rtc.WriteAlarm(0, rtcAlarm(a)); err != nil {
		t.Fatalf("WriteAlarm() error: %v", err)
	}
	sim.Tick()
	setNow(c, time.Date(2024, time.March, 9, 7, 0, 0, 0, time.UTC))
	c.pollAlarms()
	c.irq.MillisecondTick()
	if c.irq.ringLeft != 0 {
		t.Fatalf("ringLeft = %d on a weekend day, want 0", c.irq.ringLeft)
	}
}

func TestRTCAlarmMapping(t *testing.T) {
	tests := []struct {
		a    Alarm
		want rtc.Alarm
	}{
		{Alarm{Hour: 6}, rtc.Alarm{Mode: rtc.AlarmOff, Hour: 6}},
		{Alarm{Enabled: true, Hour: 6, Days: calendar.EveryDay}, rtc.Alarm{Mode: rtc.AlarmDaily, Hour: 6}},
		{Alarm{Enabled: true, Hour: 6, Days: calendar.Weekend}, rtc.Alarm{Mode: rtc.AlarmDaily, Hour: 6}},
		{Alarm{Enabled: true, Hour: 6, Minute: 15, Days: calendar.Only(time.Friday)},
			rtc.Alarm{Mode: rtc.AlarmWeekly, Hour: 6, Minute: 15, Weekday: time.Friday}},
	}
	for _, tt := range tests {
		if got := rtcAlarm(tt.a); got != tt.want {
			t.Fatalf("rtcAlarm(%+v) = %+v, want %+v", tt.a, got, tt.want)
		}
	}
}

func TestBootAlarmsDisabled(t *testing.T) {
	sim := rtc.NewSimulator(time.Date(2024, time.March, 5, 6, 0, 0, 0, time.UTC))
	dev := rtc.New(sim)
	if err := dev.Configure(); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	if err := dev.WriteAlarm(1, rtc.Alarm{Mode: rtc.AlarmWeekly, Hour: 7, Minute: 30, Weekday: time.Monday}); err != nil {
		t.Fatalf("WriteAlarm() error: %v", err)
	}
	c, err := New(Config{RTC: dev, Settings: quietSettings()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := c.Boot(); err != nil {
		t.Fatalf("Boot() error: %v", err)
	}
	got := c.Alarms()[1]
	want := Alarm{Hour: 7, Minute: 30, Days: calendar.Only(time.Monday)}
	if got != want {
		t.Fatalf("Alarms()[1] = %+v, want %+v", got, want)
	}
	hw, err := dev.ReadAlarm(1)
	if err != nil {
		t.Fatalf("ReadAlarm() error: %v", err)
	}
	if hw.Mode != rtc.AlarmOff {
		t.Fatalf("hardware alarm mode = %s, want off", hw.Mode)
	}
}

func TestBootRTCFailureUsesDefaultTime(t *testing.T) {
	sim := rtc.NewSimulator(time.Date(2024, time.March, 5, 6, 0, 0, 0, time.UTC))
	dev := rtc.New(sim)
	if err := dev.Configure(); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	sim.SetError(errors.New("bus down"))
	c, err := New(Config{RTC: dev})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := c.Boot(); err == nil {
		t.Fatal("Boot() error = nil, want the bus error")
	}
	if got := c.Now(); got.Year != setup.MinYear || got.Month != time.January || got.Day != 1 {
		t.Fatalf("Now() = %s, want 2000-01-01", got)
	}
}

func TestCommitTimer(t *testing.T) {
	c, _ := newTestCore(t, time.Date(2024, time.March, 5, 6, 0, 0, 0, time.UTC), quietSettings(), nil)
	c.Commit(setup.StepTimerMinutes, setup.Values{TimerMode: setup.TimerDown, TimerMinutes: 1})
	c.irq.MillisecondTick()
	if got := c.Timer(); got.Ready {
		t.Fatalf("Timer() = %+v before the seconds step, want idle", got)
	}
	c.Commit(setup.StepTimerSeconds, setup.Values{TimerMode: setup.TimerDown, TimerMinutes: 1, TimerSeconds: 30})
	c.irq.MillisecondTick()
	want := Timer{Mode: setup.TimerDown, Minutes: 1, Seconds: 30, Ready: true}
	if got := c.Timer(); got != want {
		t.Fatalf("Timer() = %+v, want %+v", got, want)
	}
}

func TestComposeLines(t *testing.T) {
	st := quietSettings()
	c, _ := newTestCore(t, time.Date(2024, time.March, 5, 6, 0, 0, 0, time.UTC), st, nil)
	c.cfg.Version = "v1.2"

	date := c.compose(proto.TagDate)
	for _, want := range []string{"Tuesday, March 5, 2024", "21.5°C"} {
		if !strings.Contains(date, want) {
			t.Fatalf("date line %q lacks %q", date, want)
		}
	}

	c.s.supply.Store(ADCMax / 2)
	if date := c.compose(proto.TagDate); !strings.HasSuffix(date, "3.29V") {
		t.Fatalf("date line %q, want the supply voltage", date)
	}

	c.settings.TemperatureUnit = Fahrenheit
	c.publishSettings()
	if got := c.compose(proto.TagTemp); got != "70.7°F" {
		t.Fatalf("compose(temp) = %q, want 70.7°F", got)
	}

	if got := c.compose(proto.TagDebug); !strings.HasPrefix(got, "v1.2 up 0h00m q0/74 ev0 drop0") {
		t.Fatalf("compose(debug) = %q", got)
	}
	if got := c.compose(proto.TagDST); got != "DST off" {
		t.Fatalf("compose(dst) = %q", got)
	}
	if got := c.compose(proto.TagAlarms); !strings.HasPrefix(got, "Alarm 1 off") {
		t.Fatalf("compose(alarms) = %q", got)
	}
	if err := c.EnqueueScroll(proto.TagAlarms); err != nil {
		t.Fatalf("EnqueueScroll() error: %v", err)
	}
	if got := c.compose(proto.TagQueue); !strings.Contains(got, "Queue 1/74") || !strings.HasSuffix(got, " alarms") {
		t.Fatalf("compose(queue) = %q", got)
	}
	if got := c.compose(proto.Tag(3)); got != "" {
		t.Fatalf("compose(event-3) = %q with no events, want empty", got)
	}
}

func TestFormatTenths(t *testing.T) {
	tests := []struct {
		in   int32
		want string
	}{
		{21500, "21.5"},
		{-2750, "-2.7"},
		{0, "0.0"},
		{999, "0.9"},
	}
	for _, tt := range tests {
		if got := formatTenths(tt.in); got != tt.want {
			t.Fatalf("formatTenths(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// panel is a shift register column driver with a 3-bit row decoder.
type panel struct {
	sdi, clk, oe bool
	a            [3]bool
	reg, latch   uint32
	shown        [display.Rows]uint32
}

type panelLine struct {
	p  *panel
	fn func(p *panel, high bool)
}

func (l panelLine) Set(high bool) { l.fn(l.p, high) }
func (l panelLine) Get() bool     { return false }

func (p *panel) lines() Lines {
	line := func(fn func(p *panel, high bool)) Line { return panelLine{p, fn} }
	return Lines{
		SDI: line(func(p *panel, h bool) { p.sdi = h }),
		CLK: line(func(p *panel, h bool) {
			if h && !p.clk {
				p.reg <<= 1
				if p.sdi {
					p.reg |= 1
				}
			}
			p.clk = h
		}),
		LE: line(func(p *panel, h bool) {
			if h {
				p.latch = p.reg
			}
		}),
		OE: line(func(p *panel, h bool) {
			if !h && p.oe {
				p.shown[p.row()] = p.latch
			}
			p.oe = h
		}),
		A0: line(func(p *panel, h bool) { p.a[0] = h }),
		A1: line(func(p *panel, h bool) { p.a[1] = h }),
		A2: line(func(p *panel, h bool) { p.a[2] = h }),
	}
}

func (p *panel) row() int {
	r := 0
	for i, b := range p.a {
		if b {
			r |= 1 << i
		}
	}
	return r
}

func TestScanMatchesFrame(t *testing.T) {
	p := new(panel)
	dev := rtc.New(rtc.NewSimulator(time.Date(2024, time.March, 5, 12, 34, 0, 0, time.UTC)))
	if err := dev.Configure(); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	c, err := New(Config{RTC: dev, Lines: p.lines(), Settings: quietSettings()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := c.Boot(); err != nil {
		t.Fatalf("Boot() error: %v", err)
	}
	for i := 0; i < display.Rows; i++ {
		c.irq.MillisecondTick()
	}

	fb := c.Framebuffer()
	fb.Lock()
	frame := display.Frame(fb.Bytes(), c.s.effectiveIndicators())
	fb.Unlock()
	for r := 0; r < display.Rows; r++ {
		for col := 0; col < display.ScanColumns; col++ {
			got := p.shown[r]&(1<<col) != 0
			if got != frame[r][col] {
				t.Fatalf("pixel (%d,%d) = %t, want %t", col, r, got, frame[r][col])
			}
		}
	}
}

func TestControlAPIThroughKernel(t *testing.T) {
	c, _ := newTestCore(t, time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC), quietSettings(), nil)
	if err := c.ForceSetupStep(setup.NumSteps); err == nil {
		t.Fatal("ForceSetupStep(NumSteps) error = nil")
	}

	k := kernel.New()
	c.Attach(k, kernel.Capability{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		k.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	var seq uint64
	waitFor := func(what string, cond func() bool) {
		t.Helper()
		deadline := time.Now().Add(2 * time.Second)
		for !cond() {
			if time.Now().After(deadline) {
				t.Fatalf("timed out waiting for %s", what)
			}
			seq++
			k.TickTo(seq)
			time.Sleep(time.Millisecond)
		}
	}

	if err := c.EnqueueScroll(proto.TagTemp); err != nil {
		t.Fatalf("EnqueueScroll() error: %v", err)
	}
	waitFor("scroll start", c.s.scroller.Scrolling)

	if err := c.EnterSetupMode(setup.ModeClock); err != nil {
		t.Fatalf("EnterSetupMode() error: %v", err)
	}
	waitFor("setup", c.SetupActive)
	waitFor("scroll stop", func() bool { return !c.s.scroller.Scrolling() })

	if err := c.EnterSetupMode(setup.ModeNone); err != nil {
		t.Fatalf("EnterSetupMode(none) error: %v", err)
	}
	waitFor("setup exit", func() bool { return !c.SetupActive() })
}
