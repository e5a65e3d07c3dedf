package display

import (
	"context"
	"errors"
	"math/bits"
	"math/rand"
	"testing"
	"time"

	"dotclock/clockos/fonts"
)

func randomBuffer(rng *rand.Rand) [Size]byte {
	var buf [Size]byte
	rng.Read(buf[:])
	return buf
}

func rowBit(buf *[Size]byte, row, col int) bool {
	if col >= Columns {
		return false
	}
	return buf[(col/8)*SectionBytes+row]&(1<<(col%8)) != 0
}

func isIndicator(row, col int) bool {
	return row == 0 || col < FirstTextColumn
}

func TestShiftOneDotInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for iter := 0; iter < 200; iter++ {
		before := randomBuffer(rng)
		after := before
		ShiftOneDot(&after)

		for row := 0; row < Rows; row++ {
			for col := 0; col < Columns; col++ {
				got := rowBit(&after, row, col)
				want := rowBit(&before, row, col+1)
				if isIndicator(row, col) {
					want = rowBit(&before, row, col)
				}
				if got != want {
					t.Fatalf("iter %d: bit (row %d, col %d) = %v, want %v", iter, row, col, got, want)
				}
			}
		}
	}
}

func TestShiftOneDotLastSectionShiftsInZero(t *testing.T) {
	var buf [Size]byte
	for i := range buf {
		buf[i] = 0xff
	}
	ShiftOneDot(&buf)
	for row := 1; row < Rows; row++ {
		if rowBit(&buf, row, Columns-1) {
			t.Fatalf("row %d last column = 1 after shift, want 0", row)
		}
		if !rowBit(&buf, row, Columns-2) {
			t.Fatalf("row %d column %d = 0 after shift, want 1", row, Columns-2)
		}
	}
}

func TestRender5x7RoundTrip(t *testing.T) {
	var fb Framebuffer
	text := "Hello, World 0123 äéßç°"
	col := FirstTextColumn + 3
	for _, r := range text {
		start := col
		col = fb.Render5x7(col, r)

		rows, adv, _ := fonts.Glyph5x7(r)
		if col-start != int(adv) {
			t.Fatalf("Render5x7(%q) advance = %d, want %d", r, col-start, adv)
		}
		for row := 0; row < fonts.Height; row++ {
			want := bits.Reverse8(rows[row])
			var got byte
			for c := 0; c < int(adv); c++ {
				if fb.Pixel(start+c, row+1) {
					got |= 1 << c
				}
			}
			if got != want {
				t.Fatalf("glyph %q row %d = %08b, want %08b", r, row+1, got, want)
			}
		}
	}
}

func TestRender4x7RoundTrip(t *testing.T) {
	var fb Framebuffer
	col := 6 // straddles sections for most digits
	for _, r := range "0123456789" {
		start := col
		col = fb.Render4x7(col, r)
		if col-start != fonts.Stride4x7 {
			t.Fatalf("Render4x7(%q) advance = %d, want %d", r, col-start, fonts.Stride4x7)
		}
		rows, _ := fonts.Glyph4x7(r)
		for row := 0; row < fonts.Height; row++ {
			var got byte
			for c := 0; c < fonts.Width4x7; c++ {
				if fb.Pixel(start+c, row+1) {
					got |= 1 << c
				}
			}
			if got != rows[row] {
				t.Fatalf("glyph %q row %d = %04b, want %04b", r, row+1, got, rows[row])
			}
		}
	}
}

func TestRenderClampsIndicatorColumns(t *testing.T) {
	var fb Framebuffer
	fb.buf[1] = 0x03
	if got := fb.Render4x7(0, '8'); got != FirstTextColumn+fonts.Stride4x7 {
		t.Fatalf("Render4x7(0) = %d, want %d", got, FirstTextColumn+fonts.Stride4x7)
	}
	if fb.buf[1]&0x03 != 0x03 {
		t.Fatalf("indicator bits = %02b, want 11", fb.buf[1]&0x03)
	}
	if !fb.Pixel(FirstTextColumn+1, 1) {
		t.Fatalf("glyph not drawn at column %d", FirstTextColumn)
	}
}

func TestRenderKeepsRowZeroAndNeighbours(t *testing.T) {
	var fb Framebuffer
	for s := 0; s < Sections; s++ {
		fb.buf[s*SectionBytes] = 0xa5
	}
	fb.SetPixel(10, 3, true)
	fb.Render5x7(11, 'I')
	if !fb.Pixel(10, 3) {
		t.Fatalf("pixel left of glyph cleared")
	}
	for s := 0; s < Sections; s++ {
		if fb.buf[s*SectionBytes] != 0xa5 {
			t.Fatalf("row 0 of section %d = %02x, want a5", s, fb.buf[s*SectionBytes])
		}
	}
}

func TestRenderLastSectionDoesNotWrap(t *testing.T) {
	var fb Framebuffer
	fb.Render5x7(Columns-2, 'M')
	for row := 1; row < Rows; row++ {
		if fb.buf[row]&^0x03 != 0 {
			t.Fatalf("section 0 row %d = %08b, want glyph not wrapped", row, fb.buf[row])
		}
	}
}

func TestRenderUnsupportedUsesQuestionMark(t *testing.T) {
	var a, b Framebuffer
	a.Render5x7(8, '☺')
	b.Render5x7(8, '?')
	if a.buf != b.buf {
		t.Fatalf("unsupported rune did not render as '?'")
	}
}

func TestScrollBeginFromIdle(t *testing.T) {
	var fb Framebuffer
	fb.buf[3] = 0xff
	s := NewScroller(&fb)
	if n := s.Begin(ScrollStart, "AB"); n != 2 {
		t.Fatalf("Begin() = %d, want 2", n)
	}
	cursor, remaining := s.Cursor()
	want := ScrollStart + fonts.Width5x7("AB")
	if cursor != want || remaining != want {
		t.Fatalf("Cursor() = %d, %d, want %d, %d", cursor, remaining, want, want)
	}
	if got := fb.buf[3]; got != 0x03 {
		t.Fatalf("section 0 row 3 = %08b after begin, want only indicators", got)
	}
	if s.State() != Scrolling {
		t.Fatalf("State() = %v, want scrolling", s.State())
	}
}

func TestScrollConcatenation(t *testing.T) {
	var fb Framebuffer
	s := NewScroller(&fb)
	s.Begin(ScrollStart, "AB")
	for i := 0; i < 3; i++ {
		s.AdvanceOneDot()
	}
	before, remBefore := s.Cursor()

	s.Begin(ScrollStart, "C")
	after, remAfter := s.Cursor()

	grow := fonts.Width5x7("  C")
	if after != before+grow {
		t.Fatalf("cursor after append = %d, want %d", after, before+grow)
	}
	if remAfter != remBefore+grow {
		t.Fatalf("remaining after append = %d, want %d", remAfter, remBefore+grow)
	}

	var want Framebuffer
	col := want.RenderString5x7(ScrollStart, "AB")
	for i := 0; i < 3; i++ {
		ShiftOneDot(&want.buf)
	}
	want.RenderString5x7(col-3, "  C")
	if fb.buf != want.buf {
		t.Fatalf("framebuffer after concatenation differs from expected ribbon")
	}
}

func TestScrollRunsToIdle(t *testing.T) {
	var fb Framebuffer
	fb.buf[0] = 0x81
	s := NewScroller(&fb)
	s.Begin(ScrollStart, "x")
	_, remaining := s.Cursor()

	finished := 0
	for i := 0; i < remaining; i++ {
		advanced, done := s.TryAdvance()
		if !advanced {
			t.Fatalf("TryAdvance() advanced = false at dot %d", i)
		}
		if done {
			finished++
		}
	}
	if finished != 1 {
		t.Fatalf("finished %d times, want 1", finished)
	}
	if s.State() != Idle {
		t.Fatalf("State() = %v, want idle", s.State())
	}
	if advanced, _ := s.TryAdvance(); advanced {
		t.Fatalf("TryAdvance() on idle scroller advanced")
	}
	if fb.buf[0] != 0x81 {
		t.Fatalf("indicator row = %02x, want 81", fb.buf[0])
	}
}

func TestTryAdvanceDoesNotBlock(t *testing.T) {
	var fb Framebuffer
	s := NewScroller(&fb)
	s.Begin(ScrollStart, "x")
	fb.Lock()
	advanced, _ := s.TryAdvance()
	fb.Unlock()
	if advanced {
		t.Fatalf("TryAdvance() advanced while lock held")
	}
}

func TestWaitRoomTimeout(t *testing.T) {
	var fb Framebuffer
	s := NewScroller(&fb)
	fb.Lock()
	s.cursor = Columns - Margin
	s.remaining = s.cursor
	fb.Unlock()

	err := s.WaitRoom(context.Background(), 6, 20*time.Millisecond)
	if !errors.Is(err, ErrBackpressureTimeout) {
		t.Fatalf("WaitRoom() err = %v, want ErrBackpressureTimeout", err)
	}
}

func TestWaitRoomWakesOnAdvance(t *testing.T) {
	var fb Framebuffer
	s := NewScroller(&fb)
	fb.Lock()
	s.cursor = Columns - Margin - 3
	s.remaining = s.cursor
	fb.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- s.WaitRoom(context.Background(), 6, time.Second)
	}()
	for i := 0; i < 3; i++ {
		time.Sleep(time.Millisecond)
		s.AdvanceOneDot()
	}
	if err := <-done; err != nil {
		t.Fatalf("WaitRoom() err = %v, want nil", err)
	}
}

func TestAppendTextLongerThanBuffer(t *testing.T) {
	var fb Framebuffer
	s := NewScroller(&fb)
	stop := make(chan struct{})
	go func() {
		tk := time.NewTicker(100 * time.Microsecond)
		defer tk.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tk.C:
				s.TryAdvance()
			}
		}
	}()
	defer close(stop)

	text := "The quick brown fox jumps over the lazy dog, twice over for good measure."
	if err := s.AppendText(context.Background(), ScrollStart, text, 2*time.Second); err != nil {
		t.Fatalf("AppendText() err = %v, want nil", err)
	}
}

func TestEncodeRowMergesIndicators(t *testing.T) {
	var buf [Size]byte
	buf[2] = 0xff // section 0 row 2, including indicator columns
	buf[0] = 0xff // stale indicator row content

	ind := Indicators{CountDown: true}
	ind.Weekday[time.Monday] = true

	var latch RowLatch
	EncodeRow(&buf, ind.Bits(), 2, &latch)
	if latch[0] != 0xff {
		t.Fatalf("row 2 section 0 = %08b, want 11111111", latch[0])
	}
	EncodeRow(&buf, ind.Bits(), 1, &latch)
	if latch[0] != 0 {
		t.Fatalf("row 1 section 0 = %08b, want 0", latch[0])
	}
	EncodeRow(&buf, ind.Bits(), 0, &latch)
	if latch[0] != 0x18 {
		t.Fatalf("row 0 section 0 = %08b, want Monday lamp 00011000", latch[0])
	}
}

func TestIndicatorsBits(t *testing.T) {
	ind := Indicators{AM: true, Hourly: true, AutoLight: true}
	ind.Weekday[time.Sunday] = true
	if got := IndicatorsFrom(ind.Bits()); got != ind {
		t.Fatalf("IndicatorsFrom(Bits()) = %+v, want %+v", got, ind)
	}
}

func TestApplyIndicatorsAndClear(t *testing.T) {
	var fb Framebuffer
	fb.ApplyIndicators(Indicators{MoveOn: true, PM: true})
	fb.RenderString5x7(FirstTextColumn, "88")
	plane := fb.IndicatorPlane()
	fb.ClearDisplay()
	if got := fb.IndicatorPlane(); got != plane {
		t.Fatalf("ClearDisplay() changed the indicator plane")
	}
	if fb.buf[0]&0x03 != 0x03 || fb.buf[6]&0x03 != 0x03 {
		t.Fatalf("MoveOn/PM lamps not set: %08b %08b", fb.buf[0], fb.buf[6])
	}
}

func TestScrollStop(t *testing.T) {
	var fb Framebuffer
	s := NewScroller(&fb)
	s.Begin(ScrollStart, "Stop me")
	s.Stop()
	if s.State() != Idle {
		t.Fatalf("State() = %s after Stop, want idle", s.State())
	}
	buf := fb.Snapshot()
	for i, b := range buf {
		if i%SectionBytes != 0 && b != 0 {
			t.Fatalf("byte %d = %#x after Stop, want 0", i, b)
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.AppendText(ctx, ScrollStart, "late", time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("AppendText() err = %v, want context.Canceled", err)
	}
	if s.State() != Idle {
		t.Fatalf("State() = %s after cancelled AppendText, want idle", s.State())
	}
}

func TestRenderTimeAndIdleHooks(t *testing.T) {
	var fb Framebuffer
	s := NewScroller(&fb)

	if !s.WithIdle(func(fb *Framebuffer) { fb.RenderTime(12, 34, 0xff, 0x00) }) {
		t.Fatal("WithIdle() = false on an idle scroller")
	}
	if !fb.Pixel(ColonColumn, ColonUpperRow) || !fb.Pixel(ColonColumn, ColonLowerRow) {
		t.Fatal("colon dots not lit")
	}
	lit := func(from, to int) bool {
		for c := from; c < to; c++ {
			for r := 1; r < Rows; r++ {
				if fb.Pixel(c, r) {
					return true
				}
			}
		}
		return false
	}
	if !lit(HourColumn, ColonColumn) {
		t.Fatal("hour digits missing")
	}
	if lit(MinuteColumn, ScanColumns) {
		t.Fatal("masked minute digits are lit")
	}

	if !s.TryIdle(func(fb *Framebuffer) { fb.SetColon(false, true) }) {
		t.Fatal("TryIdle() = false on an idle scroller")
	}
	if fb.Pixel(ColonColumn, ColonUpperRow) || !fb.Pixel(ColonColumn, ColonLowerRow) {
		t.Fatal("SetColon(false, true) not applied")
	}

	s.Begin(ScrollStart, "x")
	if s.TryIdle(func(*Framebuffer) { t.Fatal("fn ran while scrolling") }) {
		t.Fatal("TryIdle() = true while scrolling")
	}
	fb.Lock()
	if s.TryIdle(func(*Framebuffer) { t.Fatal("fn ran under contention") }) {
		t.Fatal("TryIdle() = true under contention")
	}
	fb.Unlock()
}

func TestAppendTextKeepsSeparatorWhenNearlyFull(t *testing.T) {
	var fb Framebuffer
	s := NewScroller(&fb)
	fb.Lock()
	s.cursor = Columns - Margin - 4
	s.remaining = s.cursor
	fb.Unlock()
	_, remBefore := s.Cursor()

	stop := make(chan struct{})
	advanced := make(chan int)
	go func() {
		n := 0
		tk := time.NewTicker(200 * time.Microsecond)
		defer tk.Stop()
		for {
			select {
			case <-stop:
				advanced <- n
				return
			case <-tk.C:
				if ok, _ := s.TryAdvance(); ok {
					n++
				}
			}
		}
	}()

	err := s.AppendText(context.Background(), ScrollStart, "AB", time.Second)
	close(stop)
	dots := <-advanced
	if err != nil {
		t.Fatalf("AppendText() err = %v, want nil", err)
	}
	_, remAfter := s.Cursor()
	if got, want := remAfter-remBefore+dots, fonts.Width5x7("  AB"); got != want {
		t.Fatalf("columns appended = %d, want %d", got, want)
	}
}
