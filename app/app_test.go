package app

import (
	"context"
	"image/color"
	"strings"
	"sync"
	"testing"
	"time"

	"dotclock/clockos/calendar"
	"dotclock/clockos/clock"
	"dotclock/clockos/display"
	"dotclock/clockos/nvconfig"
	"dotclock/clockos/rtc"
	"dotclock/hal"

	"tinygo.org/x/drivers"
)

type memLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *memLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, s)
}

func (l *memLogger) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }

func (l *memLogger) contains(s string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

type fixedADC struct{}

func (fixedADC) Read(hal.ADCChannel) uint16 { return hal.ADCMax }

type tickSource struct{ ch chan uint64 }

func (t tickSource) Ticks() <-chan uint64 { return t.ch }

type memFlash struct{ data [8192]byte }

func (f *memFlash) SizeBytes() uint32       { return uint32(len(f.data)) }
func (f *memFlash) EraseBlockBytes() uint32 { return 4096 }
func (f *memFlash) ReadAt(p []byte, off uint32) (int, error) {
	return copy(p, f.data[off:]), nil
}
func (f *memFlash) WriteAt(p []byte, off uint32) (int, error) {
	return copy(f.data[off:], p), nil
}
func (f *memFlash) Erase(off, size uint32) error {
	for i := off; i < off+size; i++ {
		f.data[i] = 0xFF
	}
	return nil
}

type testHAL struct {
	log   *memLogger
	lines hal.LineSet
	panel *hal.Panel
	sim   *rtc.Simulator
	ticks tickSource
	flash *memFlash
}

func newTestHAL(start time.Time) *testHAL {
	h := &testHAL{
		log:   &memLogger{},
		panel: hal.NewPanel(),
		sim:   rtc.NewSimulator(start),
		ticks: tickSource{ch: make(chan uint64, 64)},
		flash: &memFlash{},
	}
	for _, id := range []hal.LineID{hal.LineButtonMode, hal.LineButtonUp, hal.LineButtonDown} {
		h.lines[id] = hal.NewVirtualLine(id.String(), true)
	}
	h.lines[hal.LineBuzzer] = hal.NewVirtualLine("BUZZER", false)
	for _, id := range []hal.LineID{hal.LineSDI, hal.LineCLK, hal.LineLE, hal.LineOE, hal.LineA0, hal.LineA1, hal.LineA2} {
		h.lines[id] = h.panel.Line(id)
	}
	h.flash.Erase(0, uint32(len(h.flash.data)))
	return h
}

func (h *testHAL) Logger() hal.Logger             { return h.log }
func (h *testHAL) GPIO() hal.GPIO                 { return &h.lines }
func (h *testHAL) ADC() hal.ADC                   { return fixedADC{} }
func (h *testHAL) I2C() drivers.I2C               { return h.sim }
func (h *testHAL) Time() hal.Time                 { return h.ticks }
func (h *testHAL) OutputEnable() hal.OutputEnable { return h.panel }
func (h *testHAL) Flash() hal.Flash               { return h.flash }
func (h *testHAL) Serial() hal.Serial             { return nil }

func quiet() clock.Settings {
	st := clock.DefaultSettings()
	st.ScrollEnabled = false
	st.Chime = 0
	return st
}

func TestSystemBootsAndScans(t *testing.T) {
	start := time.Date(2024, 3, 5, 12, 34, 0, 0, time.UTC)
	h := newTestHAL(start)
	s, err := New(h, Config{Settings: quiet()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := s.Core.Now(); got != rtc.FromTime(start) {
		t.Fatalf("Now() = %v, want %v", got, rtc.FromTime(start))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Every row is scanned within 8 ticks.
	for seq := uint64(1); seq <= 16; seq++ {
		h.ticks.ch <- seq
	}
	deadline := time.Now().Add(2 * time.Second)
	for !lit(h.panel) {
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("panel stayed dark")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() = %v", err)
	}
}

func lit(p *hal.Panel) bool {
	f := p.Frame()
	for r := 1; r < display.Rows; r++ {
		for c := display.FirstTextColumn; c < display.ScanColumns; c++ {
			if f[r][c] {
				return true
			}
		}
	}
	return false
}

func TestSeededAlarmsBootDisabled(t *testing.T) {
	h := newTestHAL(time.Date(2024, 3, 5, 6, 0, 0, 0, time.UTC))
	s, err := New(h, Config{
		Settings:   quiet(),
		SeedAlarms: true,
		AlarmSeeds: []clock.Alarm{
			{Hour: 7, Minute: 15, Days: calendar.EveryDay},
			{Hour: 9, Minute: 30, Days: calendar.Only(time.Sunday)},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := s.Core.Alarms()
	want := [2]clock.Alarm{
		{Hour: 7, Minute: 15, Days: calendar.EveryDay},
		{Hour: 9, Minute: 30, Days: calendar.Only(time.Sunday)},
	}
	if got != want {
		t.Fatalf("Alarms() = %+v, want %+v", got, want)
	}
	for id := range want {
		a, err := s.RTC.ReadAlarm(id)
		if err != nil || a.Mode != rtc.AlarmOff {
			t.Fatalf("RTC alarm %d = %+v, %v, want off", id, a, err)
		}
	}
}

func TestStoredSettingsWin(t *testing.T) {
	h := newTestHAL(time.Date(2024, 3, 5, 6, 0, 0, 0, time.UTC))
	st := quiet()
	st.Brightness = 2
	st.AutoBrightness = false
	nv, err := nvconfig.New(h.flash)
	if err != nil {
		t.Fatalf("nvconfig.New: %v", err)
	}
	if err := nv.Save(st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s, err := New(h, Config{Settings: quiet()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := s.Core.Settings(); got != st {
		t.Fatalf("Settings() = %+v, want %+v", got, st)
	}
	if !h.log.contains("settings loaded from flash") {
		t.Fatalf("load not logged")
	}

	s, err = New(h, Config{Settings: quiet(), IgnoreStored: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := s.Core.Settings(); got != quiet() {
		t.Fatalf("Settings() with IgnoreStored = %+v, want %+v", got, quiet())
	}
}

func TestPanicDisplayDraws(t *testing.T) {
	var fb display.Framebuffer
	d := panicDisplay{fb: &fb}
	d.SetPixel(5, 3, color.RGBA{R: 255, A: 255})
	if !fb.Pixel(5, 3) {
		t.Fatalf("pixel not set")
	}
	d.SetPixel(5, 3, color.RGBA{A: 255})
	if fb.Pixel(5, 3) {
		t.Fatalf("black pixel left the dot lit")
	}
	if x, y := d.Size(); x != display.ScanColumns || y != display.Rows {
		t.Fatalf("Size() = %d, %d", x, y)
	}
}
