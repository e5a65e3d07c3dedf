package nvconfig

import (
	"errors"
	"testing"

	"dotclock/clockos/calendar"
	"dotclock/clockos/clock"
	"dotclock/clockos/setup"
)

// memFlash is NOR flash in memory: writes can only clear bits.
type memFlash struct {
	data    []byte
	block   uint32
	failAt  int
	writes  int
	erases  int
	lastOff uint32
}

func newMemFlash(blocks int) *memFlash {
	f := &memFlash{data: make([]byte, blocks*256), block: 256, failAt: -1}
	for i := range f.data {
		f.data[i] = 0xFF
	}
	return f
}

func (f *memFlash) SizeBytes() uint32       { return uint32(len(f.data)) }
func (f *memFlash) EraseBlockBytes() uint32 { return f.block }

func (f *memFlash) ReadAt(p []byte, off uint32) (int, error) {
	return copy(p, f.data[off:]), nil
}

func (f *memFlash) WriteAt(p []byte, off uint32) (int, error) {
	f.writes++
	f.lastOff = off
	n := len(p)
	if f.failAt >= 0 && f.writes > f.failAt {
		// Torn write: only half the record lands.
		n /= 2
	}
	for i := 0; i < n; i++ {
		f.data[int(off)+i] &= p[i]
	}
	return n, nil
}

func (f *memFlash) Erase(off, size uint32) error {
	f.erases++
	for i := off; i < off+size; i++ {
		f.data[i] = 0xFF
	}
	return nil
}

func TestLoadEmpty(t *testing.T) {
	s, err := New(newMemFlash(2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrNoRecord) {
		t.Fatalf("Load() error = %v, want ErrNoRecord", err)
	}
}

func TestSaveLoad(t *testing.T) {
	f := newMemFlash(4)
	s, err := New(f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := clock.DefaultSettings()
	want.Language = calendar.Language(1)
	want.TimeFormat = setup.H12
	want.Chime = setup.ChimeOn
	want.ChimeOn, want.ChimeOff = 21, 9
	want.DST = calendar.DSTEurope
	want.Keyclick = false
	want.AutoBrightness = false
	want.Brightness = 3
	want.ScrollDotMs = 45
	want.TemperatureUnit = clock.Fahrenheit
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := New(f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	st, err := got.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st != want {
		t.Fatalf("Load() = %+v, want %+v", st, want)
	}
}

func TestSaveAlternatesSlots(t *testing.T) {
	f := newMemFlash(2)
	s, _ := New(f)
	st := clock.DefaultSettings()
	for i, wantOff := range []uint32{0, 256, 0} {
		st.Brightness = i + 1
		if err := s.Save(st); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
		if f.lastOff != wantOff {
			t.Fatalf("Save %d wrote at %d, want %d", i, f.lastOff, wantOff)
		}
	}
	got, err := s.Load()
	if err != nil || got.Brightness != 3 {
		t.Fatalf("Load() = %d, %v, want brightness 3", got.Brightness, err)
	}
}

func TestTornWriteKeepsPrevious(t *testing.T) {
	f := newMemFlash(2)
	s, _ := New(f)
	st := clock.DefaultSettings()
	st.Brightness = 2
	if err := s.Save(st); err != nil {
		t.Fatalf("Save: %v", err)
	}
	f.failAt = f.writes
	st.Brightness = 7
	if err := s.Save(st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	r, _ := New(f)
	got, err := r.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Brightness != 2 {
		t.Fatalf("Load() brightness = %d, want 2", got.Brightness)
	}
}

func TestCorruptRecordRejected(t *testing.T) {
	buf := encode(5, clock.DefaultSettings())
	if _, _, ok := decode(buf); !ok {
		t.Fatalf("decode(encode()) failed")
	}
	buf[headerBytes+3] ^= 0x01
	if _, _, ok := decode(buf); ok {
		t.Fatalf("decode accepted a record with a bad CRC")
	}
}

func TestTooSmall(t *testing.T) {
	if _, err := New(newMemFlash(1)); !errors.Is(err, ErrTooSmall) {
		t.Fatalf("New() error = %v, want ErrTooSmall", err)
	}
}
