package clock

import (
	"context"
	"sync/atomic"

	"dotclock/clockos/calendar"
	"dotclock/clockos/display"
	"dotclock/clockos/proto"
	"dotclock/clockos/ring"
	"dotclock/clockos/rtc"
	"dotclock/clockos/setup"
	"dotclock/clockos/sound"
)

// Button timing in milliseconds.
const (
	ShortPressMs = 50
	LongPressMs  = 300
)

const (
	blinkMs      = 500
	lightEveryMs = 1000
	// MaxTimerMinutes is where the count-up timer stops.
	MaxTimerMinutes = 99
	// Event marks in minutes past the hour.
	eventMarkFirst  = 5
	eventMarkSecond = 35
	// alarmRecheckSecond repeats the alarm poll in case the RTC flag came late.
	alarmRecheckSecond = 2
	resyncMinute       = 59
	resyncSecond       = 30

	overlayValid = 1 << 32
)

// shared is the state that crosses between interrupt context and the main loop.
type shared struct {
	fb       *display.Framebuffer
	scroller *display.Scroller
	scrollQ  *ring.Queue[proto.Tag]
	soundQ   *sound.Queue

	events   *ring.Ring[Event]
	commands *ring.Ring[Command]

	settings    atomic.Pointer[Settings]
	now         atomic.Uint64
	timer       atomic.Uint32
	indicators  atomic.Uint32
	overlay     atomic.Uint64
	setupActive atomic.Bool
	dstActive   atomic.Bool
	alarmMask   atomic.Uint32
	light       atomic.Uint32
	supply      atomic.Uint32
	uptimeMs    atomic.Uint64
	drops       atomic.Uint32
}

func newShared() *shared {
	fb := new(display.Framebuffer)
	s := &shared{
		fb:       fb,
		scroller: display.NewScroller(fb),
		scrollQ:  ring.NewQueue[proto.Tag](proto.ScrollQueueSize, proto.TagVacant),
		soundQ:   sound.NewQueue(),
		events:   ring.New[Event](eventRingSize, Event{}),
		commands: ring.New[Command](commandRingSize, Command{}),
	}
	d := DefaultSettings()
	s.settings.Store(&d)
	return s
}

// effectiveIndicators merges the setup preview over the published lamps.
func (s *shared) effectiveIndicators() uint32 {
	if ov := s.overlay.Load(); ov&overlayValid != 0 {
		return uint32(ov)
	}
	return s.indicators.Load()
}

// Interrupts holds the state of the 1 kHz and 1 Hz callbacks. Both run on one
// goroutine; nothing here blocks or allocates.
type Interrupts struct {
	s      *shared
	lines  Lines
	adc    ADC
	oe     OutputEnable
	env    *sound.Envelope
	events []calendar.Event
	m      Metrics

	// millisecond state
	ms        uint64
	lightTick int
	blinkTick int
	dotTick   int
	blinkOn   bool
	dotsDirty bool
	held      [setup.NumButtons]int
	row       int
	latches   [display.Rows]display.RowLatch
	level     int

	// second state
	now       rtc.Time
	chimed    bool
	ringLeft  int
	idleSecs  int
	timer     Timer
	dst       bool
	eventMark [calendar.MaxEvents]uint32
}

func newInterrupts(s *shared, lines Lines, adc ADC, oe OutputEnable, events []calendar.Event, m Metrics) *Interrupts {
	return &Interrupts{
		s:      s,
		lines:  lines,
		adc:    adc,
		oe:     oe,
		env:    sound.NewEnvelope(lines.Buzzer, s.soundQ),
		events: events,
		m:      m,
		level:  -1,
	}
}

// Run drives both callbacks from a millisecond tick stream until ctx ends. onTick,
// when set, runs after each tick with its sequence number.
func (irq *Interrupts) Run(ctx context.Context, ticks <-chan uint64, onTick func(uint64)) {
	for {
		select {
		case <-ctx.Done():
			return
		case seq, ok := <-ticks:
			if !ok {
				return
			}
			irq.Tick()
			if onTick != nil {
				onTick(seq)
			}
		}
	}
}

// Tick runs one millisecond, and the second callback every 1000 of them.
func (irq *Interrupts) Tick() {
	irq.MillisecondTick()
	if irq.ms%1000 == 0 {
		irq.SecondTick()
	}
}

// MillisecondTick is the 1 kHz callback.
func (irq *Interrupts) MillisecondTick() {
	irq.ms++
	irq.s.uptimeMs.Store(irq.ms)
	irq.applyCommands()
	st := irq.s.settings.Load()

	// Light and supply samples.
	irq.lightTick++
	if irq.lightTick >= lightEveryMs {
		irq.lightTick = 0
		if st.AutoBrightness {
			irq.s.light.Store(uint32(irq.adc.Read(ADCLight)))
		}
		irq.s.supply.Store(uint32(irq.adc.Read(ADCSupply)))
	}

	irq.env.Tick()

	irq.blink()

	// Scroll dot. A contended lock leaves the counter due, so the dot moves next tick.
	irq.dotTick++
	if irq.dotTick >= st.ScrollDotMs {
		advanced, finished := irq.s.scroller.TryAdvance()
		if advanced {
			irq.dotTick = 0
		}
		if finished {
			irq.post(Event{Kind: EvRefresh})
			irq.dotsDirty = true
		}
	}

	irq.buttons()
	irq.scan(st)
}

func (irq *Interrupts) blink() {
	irq.blinkTick++
	if irq.blinkTick >= blinkMs {
		irq.blinkTick = 0
		irq.blinkOn = !irq.blinkOn
		irq.dotsDirty = true
		if irq.s.setupActive.Load() {
			irq.post(Event{Kind: EvBlink, On: irq.blinkOn})
		}
	}
	if !irq.dotsDirty || irq.s.setupActive.Load() {
		return
	}
	upper, lower := irq.blinkOn, irq.blinkOn
	switch irq.now.Second / 20 {
	case 0:
		lower = true
	case 2:
		upper = true
	}
	if irq.s.scroller.TryIdle(func(fb *display.Framebuffer) { fb.SetColon(upper, lower) }) {
		irq.dotsDirty = false
	}
}

func (irq *Interrupts) buttons() {
	for i, l := range irq.lines.Buttons {
		if !l.Get() {
			if irq.held[i] < LongPressMs+1 {
				irq.held[i]++
			}
			continue
		}
		d := irq.held[i]
		irq.held[i] = 0
		if d < ShortPressMs {
			continue
		}
		irq.idleSecs = 0
		if irq.ringLeft > 0 {
			// A press only silences a ringing alarm.
			irq.ringLeft = 0
			irq.env.SilenceTone(sound.ToneAlarm)
			continue
		}
		b, long := setup.Button(i), d > LongPressMs
		irq.m.ButtonPress(b, long)
		irq.post(Event{Kind: EvButton, Button: b, Long: long})
	}
}

// scan drives one row group of the matrix. When the framebuffer is busy the row from
// the previous frame is shown again.
func (irq *Interrupts) scan(st *Settings) {
	row := irq.row
	latch := &irq.latches[row]
	if irq.s.fb.TryLock() {
		display.EncodeRow(irq.s.fb.Bytes(), irq.s.effectiveIndicators(), row, latch)
		irq.s.fb.Unlock()
	}

	// Column 31 is shifted first and ends up in the last register stage.
	l := &irq.lines
	l.OE.Set(true)
	for c := display.ScanColumns - 1; c >= 0; c-- {
		l.SDI.Set(latch[c/8]&(1<<(c%8)) != 0)
		l.CLK.Set(true)
		l.CLK.Set(false)
	}
	l.LE.Set(true)
	l.LE.Set(false)
	l.A0.Set(row&1 != 0)
	l.A1.Set(row&2 != 0)
	l.A2.Set(row&4 != 0)
	l.OE.Set(false)

	level := irq.brightness(st)
	irq.oe.BlankAfter(level)
	if level != irq.level {
		irq.level = level
		irq.m.Brightness(level)
	}
	irq.row = (row + 1) % display.Rows
}

// brightness maps the last light sample onto 1..MaxBrightness, or returns the manual
// level.
func (irq *Interrupts) brightness(st *Settings) int {
	if !st.AutoBrightness {
		return st.Brightness
	}
	return 1 + int(irq.s.light.Load())*(MaxBrightness-1)/ADCMax
}

// SecondTick is the 1 Hz callback.
func (irq *Interrupts) SecondTick() {
	st := irq.s.settings.Load()
	now := &irq.now
	minute, hour, _ := advance(now)

	// Alarm ring: each second re-triggers the tone until the ring time runs out.
	irq.env.SilenceTone(sound.ToneAlarm)
	if irq.ringLeft > 0 {
		irq.ringLeft--
		irq.playTone(sound.ToneAlarm)
	}

	if minute {
		irq.chimed = false
		irq.post(Event{Kind: EvAlarmPoll})
	}
	if now.Second == alarmRecheckSecond {
		irq.post(Event{Kind: EvAlarmPoll})
	}

	if irq.s.setupActive.Load() {
		irq.idleSecs++
		if irq.idleSecs == st.IdleTimeout {
			irq.post(Event{Kind: EvTimeout})
		}
	} else {
		irq.idleSecs = 0
	}

	irq.tickTimer()

	if minute && now.Minute%st.ScrollPeriod == 0 && st.ScrollEnabled &&
		!irq.s.setupActive.Load() && !irq.s.scroller.Scrolling() {
		irq.enqueueScroll(proto.TagDate)
	}

	// DST first so the chime sounds for the hour the clock shows.
	if minute && hour {
		irq.checkDST(st)
	}

	if minute && hour && !irq.chimed {
		if st.Chime == setup.ChimeOn || st.Chime == setup.ChimeDay && st.chimeWindow(now.Hour) {
			irq.chimed = true
			irq.playTone(sound.ToneChime)
			irq.m.Chime()
		}
	}

	if minute && (now.Minute == eventMarkFirst || now.Minute == eventMarkSecond) {
		irq.scanEvents(st)
	}

	if now.Minute == resyncMinute && now.Second == resyncSecond {
		irq.post(Event{Kind: EvResync})
	}

	irq.publish(st)
	if minute {
		irq.post(Event{Kind: EvRefresh})
	}
}

func (irq *Interrupts) tickTimer() {
	t := &irq.timer
	if !t.Ready {
		return
	}
	switch t.Mode {
	case setup.TimerDown:
		if t.Seconds > 0 {
			t.Seconds--
		} else if t.Minutes > 0 {
			t.Minutes--
			t.Seconds = 59
		}
		if t.Minutes == 0 && t.Seconds == 0 {
			t.Ready = false
			t.Mode = setup.TimerOff
			irq.playTone(sound.ToneTimerDone)
			irq.post(Event{Kind: EvTimerDone})
		}
	case setup.TimerUp:
		if t.Minutes == MaxTimerMinutes && t.Seconds == 59 {
			t.Ready = false
			irq.post(Event{Kind: EvTimerDone})
			break
		}
		t.Seconds++
		if t.Seconds == 60 {
			t.Seconds = 0
			t.Minutes++
		}
	}
	irq.s.timer.Store(t.pack())
}

// scanEvents enqueues today's events, each at most once per hour. A full queue leaves
// the event due for the next mark.
func (irq *Interrupts) scanEvents(st *Settings) {
	now := &irq.now
	stamp := hourStamp(*now)
	for i, e := range irq.events {
		if i >= calendar.MaxEvents {
			break
		}
		if !e.Matches(now.Month, now.Day) || irq.eventMark[i] == stamp {
			continue
		}
		tag := proto.Tag(i)
		if e.IsDebug() {
			tag = proto.TagDebug
		}
		if !irq.enqueueScroll(tag) {
			continue
		}
		irq.eventMark[i] = stamp
		if st.chimeWindow(now.Hour) {
			irq.playTone(sound.JingleTone(e.Jingle))
		}
	}
}

func (irq *Interrupts) checkDST(st *Settings) {
	rule, ok := st.DST.Rule()
	if !ok {
		return
	}
	now := &irq.now
	change := rule.Check(now.Year, now.Month, now.Day, now.Hour, irq.dst)
	switch change {
	case calendar.DSTSpringForward:
		now.Hour++
		irq.dst = true
	case calendar.DSTFallBack:
		now.Hour--
		irq.dst = false
	default:
		return
	}
	irq.s.dstActive.Store(irq.dst)
	irq.m.DSTChange()
	irq.post(Event{Kind: EvRTCWrite, DST: change})
}

func (irq *Interrupts) publish(st *Settings) {
	now := &irq.now
	irq.s.now.Store(packTime(*now))

	ind := display.Indicators{
		MoveOn:     st.ScrollEnabled,
		AlarmOn:    irq.s.alarmMask.Load() != 0,
		CountDown:  irq.timer.Ready && irq.timer.Mode == setup.TimerDown,
		CountUp:    irq.timer.Ready && irq.timer.Mode == setup.TimerUp,
		Celsius:    st.TemperatureUnit == Celsius,
		Fahrenheit: st.TemperatureUnit == Fahrenheit,
		Hourly:     st.Chime != setup.ChimeOff,
		AutoLight:  st.AutoBrightness,
	}
	if st.TimeFormat == setup.H12 {
		ind.AM, ind.PM = now.Hour < 12, now.Hour >= 12
	}
	ind.Weekday[now.Weekday%7] = true
	irq.s.indicators.Store(ind.Bits())
}

// enqueueScroll adds tag, sounding the queue-full tone when it does not fit.
func (irq *Interrupts) enqueueScroll(tag proto.Tag) bool {
	if err := irq.s.scrollQ.TryEnqueue(tag); err != nil {
		irq.m.QueueFull()
		irq.playTone(sound.ToneQueueFull)
		return false
	}
	irq.m.ScrollEnqueued()
	return true
}

func (irq *Interrupts) playTone(id sound.ToneID) {
	_ = irq.s.soundQ.TryEnqueue(id)
}

func (irq *Interrupts) post(ev Event) {
	if !irq.s.events.Push(ev) {
		irq.s.drops.Add(1)
		irq.m.EventDropped()
	}
}

func (irq *Interrupts) applyCommands() {
	for {
		cmd, ok := irq.s.commands.Pop()
		if !ok {
			return
		}
		switch cmd.Kind {
		case CmdSetTime:
			irq.now = cmd.Time
			irq.s.now.Store(packTime(irq.now))
			irq.dotsDirty = true
		case CmdSetTimer:
			irq.timer = cmd.Timer
			irq.s.timer.Store(irq.timer.pack())
		case CmdRingAlarm:
			irq.ringLeft = irq.s.settings.Load().AlarmRingSeconds
		case CmdSetDST:
			irq.dst = cmd.Flag
			irq.s.dstActive.Store(cmd.Flag)
		case CmdResetIdle:
			irq.idleSecs = 0
		}
	}
}
