package clock

import (
	"context"
	"errors"
	"fmt"

	"dotclock/clockos/calendar"
	"dotclock/clockos/display"
	"dotclock/clockos/kernel"
	"dotclock/clockos/proto"
	"dotclock/clockos/rtc"
	"dotclock/clockos/services/logger"
	"dotclock/clockos/setup"
	"dotclock/clockos/sound"
)

// coreTask is the single writer of the setup machine, settings and alarms. It drains
// the interrupt events once per tick and then the control endpoint.
type coreTask struct {
	c    *Core
	ctrl kernel.Capability
	last uint64
}

func (t *coreTask) Step(ctx *kernel.Context) {
	t.last = ctx.WaitTick(t.last)
	if ctx.Stopped() || kernel.InPanicMode() {
		return
	}
	c := t.c
	c.task = ctx
	for {
		ev, ok := c.s.events.Pop()
		if !ok {
			break
		}
		c.handleEvent(ev)
	}
	for {
		msg, ok := ctx.TryRecv(t.ctrl)
		if !ok {
			break
		}
		c.handleControl(msg)
	}
}

func (c *Core) handleEvent(ev Event) {
	switch ev.Kind {
	case EvButton:
		if c.settings.Keyclick {
			c.playTone(sound.ToneKeyclick)
		}
		c.apply(c.machine.Press(ev.Button, ev.Long))
	case EvBlink:
		if c.machine.Blink(ev.On) {
			c.renderSetup()
		}
	case EvRefresh:
		c.drawTime()
	case EvAlarmPoll:
		c.pollAlarms()
	case EvTimeout:
		c.logf("setup: idle timeout in %s", c.machine.Mode())
		c.apply(c.machine.Timeout())
	case EvRTCWrite:
		c.persistDST(ev.DST)
	case EvTimerDone:
		c.timer = Timer{}
		c.logf("timer: done")
		c.trace.Printf("timer done")
	case EvResync:
		c.resync()
	}
}

func (c *Core) handleControl(msg kernel.Message) {
	switch proto.Kind(msg.Kind) {
	case proto.MsgEnterSetup:
		mode, ok := proto.DecodeEnterSetup(msg.Payload())
		if !ok {
			c.logf("clock: bad %s payload", proto.MsgEnterSetup)
			return
		}
		c.apply(c.machine.Enter(mode))
	case proto.MsgForceStep:
		step, ok := proto.DecodeForceStep(msg.Payload())
		if !ok {
			c.logf("clock: bad %s payload", proto.MsgForceStep)
			return
		}
		a, err := c.machine.Force(step)
		if err != nil {
			c.logf("clock: %v", err)
			return
		}
		c.apply(a)
	default:
		c.logf("clock: unexpected message %s", proto.Kind(msg.Kind))
	}
}

// apply carries out what the setup machine asked for.
func (c *Core) apply(a setup.Action) {
	switch a {
	case setup.ActionRedraw:
		c.enterSetup()
		c.renderSetup()
	case setup.ActionExit:
		c.leaveSetup()
	case setup.ActionScrollDate:
		if err := c.EnqueueScroll(proto.TagDate); err != nil {
			c.logf("scroll: date: %v", err)
		}
	case setup.ActionBrightness:
		c.cycleBrightness()
	}
}

func (c *Core) enterSetup() {
	c.command(Command{Kind: CmdResetIdle})
	if c.s.setupActive.Load() {
		return
	}
	c.s.setupActive.Store(true)
	c.mu.Lock()
	if c.cancelScroll != nil {
		c.cancelScroll()
		c.cancelScroll = nil
	}
	c.mu.Unlock()
	c.s.scroller.Stop()
	c.logf("setup: enter %s", c.machine.Mode())
}

func (c *Core) leaveSetup() {
	c.s.setupActive.Store(false)
	c.s.overlay.Store(0)
	c.logf("setup: exit")
	c.drawTime()
}

// renderSetup draws the current step and previews its lamps.
func (c *Core) renderSetup() {
	fb := c.s.fb
	fb.Lock()
	c.machine.Render(fb)
	fb.Unlock()

	ind := display.IndicatorsFrom(c.s.indicators.Load())
	c.machine.ApplyIndicators(&ind)
	c.s.overlay.Store(overlayValid | uint64(ind.Bits()))
}

// cycleBrightness steps auto, 1..MaxBrightness, auto.
func (c *Core) cycleBrightness() {
	st := &c.settings
	switch {
	case st.AutoBrightness:
		st.AutoBrightness = false
		st.Brightness = 1
	case st.Brightness < MaxBrightness:
		st.Brightness++
	default:
		st.AutoBrightness = true
	}
	c.publishSettings()
	if st.AutoBrightness {
		c.logf("display: brightness auto")
	} else {
		c.logf("display: brightness %d", st.Brightness)
	}
}

// pollAlarms checks the RTC flags of enabled alarms, ringing at most once per minute.
func (c *Core) pollAlarms() {
	now := c.Now()
	stamp := minuteStamp(now)
	for id, a := range c.alarms {
		if !a.Enabled {
			continue
		}
		fired, err := c.rtc.CheckAlarm(id)
		if err != nil {
			c.m.RTCError()
			c.logf("alarm %d: %v", id+1, err)
			continue
		}
		if !fired || c.lastFired[id] == stamp || !a.Days.Has(now.Weekday) {
			continue
		}
		c.lastFired[id] = stamp
		c.command(Command{Kind: CmdRingAlarm})
		c.m.AlarmFired(id)
		c.logf("alarm %d: ringing at %s", id+1, now)
		c.trace.Printf("alarm %d ringing", id+1)
	}
}

// persistDST writes the hour the second callback moved.
func (c *Core) persistDST(change calendar.DSTChange) {
	now := c.Now()
	if err := c.rtc.WriteField(rtc.FieldHour, now.Hour); err != nil {
		c.m.RTCError()
		c.logf("dst: %s: %v", change, err)
		c.trace.Errorf("dst %s: %v", change, err)
		return
	}
	c.logf("dst: %s, hour now %d", change, now.Hour)
	c.trace.Printf("dst %s", change)
	c.drawTime()
}

// resync reloads the wall clock from the RTC. A failed read keeps the running clock.
func (c *Core) resync() {
	t, err := c.rtc.Read()
	if err != nil {
		c.m.RTCError()
		c.logf("clock: resync: %v", err)
		return
	}
	c.command(Command{Kind: CmdSetTime, Time: t})
}

// scrollTask turns queued tags into text on the ribbon. It never runs during setup.
type scrollTask struct {
	c    *Core
	last uint64
}

func (t *scrollTask) Step(ctx *kernel.Context) {
	t.last = ctx.WaitTick(t.last)
	c := t.c
	if ctx.Stopped() || kernel.InPanicMode() || c.s.setupActive.Load() {
		return
	}
	tag, ok := c.s.scrollQ.Dequeue()
	if !ok {
		return
	}
	text := c.compose(tag)
	if text == "" {
		return
	}

	sctx, cancel := context.WithCancel(ctx.Context())
	defer cancel()
	c.mu.Lock()
	if c.s.setupActive.Load() {
		c.mu.Unlock()
		t.logf(ctx, "scroll: dropped %s for setup", tag)
		return
	}
	c.cancelScroll = cancel
	c.mu.Unlock()

	err := c.s.scroller.AppendText(sctx, display.ScrollStart, text, c.cfg.ScrollTimeout)

	c.mu.Lock()
	c.cancelScroll = nil
	c.mu.Unlock()

	switch {
	case err == nil, errors.Is(err, context.Canceled):
	default:
		t.logf(ctx, "scroll: %s: %v", tag, err)
	}
}

func (t *scrollTask) logf(ctx *kernel.Context, format string, a ...any) {
	if !t.c.logCap.Valid() {
		return
	}
	logger.Log(ctx, t.c.logCap, fmt.Sprintf(format, a...))
}
