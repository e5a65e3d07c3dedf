package display

import (
	"context"
	"errors"
	"time"

	"dotclock/clockos/fonts"
)

// ScrollState is the observable scroll engine state.
type ScrollState uint8

const (
	Idle ScrollState = iota
	Scrolling
)

func (s ScrollState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scrolling:
		return "scrolling"
	default:
		return "unknown"
	}
}

const (
	// Margin is kept free at the tail of the buffer while appending.
	Margin = 8
	// ScrollStart is the default seed column: just right of the panel.
	ScrollStart = ScanColumns
	// separator is appended between concatenated scroll requests.
	separator = "  "
)

// ErrBackpressureTimeout is returned when the framebuffer did not drain in time.
var ErrBackpressureTimeout = errors.New("display: scroll backpressure timeout")

// Scroller animates text across the framebuffer one dot column at a time.
//
// Begin, Room, WaitRoom and AppendText belong to the main loop. AdvanceOneDot and
// TryAdvance are driven by the millisecond tick.
type Scroller struct {
	fb *Framebuffer

	// guarded by fb lock
	cursor    int
	remaining int

	room chan struct{}
}

// NewScroller returns an idle scroller over fb.
func NewScroller(fb *Framebuffer) *Scroller {
	return &Scroller{fb: fb, room: make(chan struct{}, 1)}
}

// Framebuffer returns the underlying framebuffer.
func (s *Scroller) Framebuffer() *Framebuffer { return s.fb }

// State reports Idle or Scrolling.
func (s *Scroller) State() ScrollState {
	s.fb.Lock()
	defer s.fb.Unlock()
	return s.stateLocked()
}

// Scrolling reports whether a scroll is in flight. Interrupt context may call it;
// on lock contention it reports true.
func (s *Scroller) Scrolling() bool {
	if !s.fb.TryLock() {
		return true
	}
	defer s.fb.Unlock()
	return s.remaining > 0
}

func (s *Scroller) stateLocked() ScrollState {
	if s.remaining > 0 {
		return Scrolling
	}
	return Idle
}

// Cursor returns the next free column and the columns left to scroll.
func (s *Scroller) Cursor() (cursor, remaining int) {
	s.fb.Lock()
	defer s.fb.Unlock()
	return s.cursor, s.remaining
}

// Begin starts scrolling text from start, or appends it behind two spaces when a scroll
// is already in flight. Glyphs that do not fit are dropped; use AppendText to wait for
// room instead. It returns the number of runes rendered.
func (s *Scroller) Begin(start int, text string) int {
	s.fb.Lock()
	defer s.fb.Unlock()

	s.beginLocked(start)
	n := 0
	for _, r := range text {
		if !s.appendLocked(r) {
			break
		}
		n++
	}
	return n
}

// beginLocked prepares either a fresh ribbon or the separator of a continued one.
func (s *Scroller) beginLocked(start int) {
	if s.remaining == 0 {
		s.seedLocked(start)
		return
	}
	for _, r := range separator {
		s.appendLocked(r)
	}
}

// seedLocked clears the display rows and puts the cursor at start.
func (s *Scroller) seedLocked(start int) {
	s.fb.ClearDisplay()
	s.cursor = clampColumn(start)
	s.remaining = s.cursor
}

func (s *Scroller) appendLocked(r rune) bool {
	_, adv, _ := fonts.Glyph5x7(r)
	if !s.roomLocked(int(adv)) {
		return false
	}
	next := s.fb.Render5x7(s.cursor, r)
	grown := next - s.cursor
	s.cursor = next
	s.remaining += grown
	return true
}

// Room reports whether width more columns fit before the tail margin.
func (s *Scroller) Room(width int) bool {
	s.fb.Lock()
	defer s.fb.Unlock()
	return s.roomLocked(width)
}

func (s *Scroller) roomLocked(width int) bool {
	return s.cursor+width+Margin <= Columns
}

// WaitRoom blocks until width columns fit, ctx ends, or timeout elapses.
// It must not be called from interrupt context.
func (s *Scroller) WaitRoom(ctx context.Context, width int, timeout time.Duration) error {
	if s.Room(width) {
		return nil
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return ErrBackpressureTimeout
		case <-s.room:
			if s.Room(width) {
				return nil
			}
		}
	}
}

// AppendText starts or continues a scroll like Begin, waiting for room before each glyph
// of the separator and the text. It returns ErrBackpressureTimeout when a single wait
// exceeds timeout; the glyphs already appended keep scrolling.
func (s *Scroller) AppendText(ctx context.Context, start int, text string, timeout time.Duration) error {
	s.fb.Lock()
	if err := ctx.Err(); err != nil {
		s.fb.Unlock()
		return err
	}
	sep := 0
	if s.remaining == 0 {
		s.seedLocked(start)
	} else {
		sep = len(separator)
		text = separator + text
	}
	s.fb.Unlock()

	for i, r := range text {
		_, adv, _ := fonts.Glyph5x7(r)
		for {
			if err := s.WaitRoom(ctx, int(adv), timeout); err != nil {
				return err
			}
			s.fb.Lock()
			// Checked under the lock so a Stop that follows a cancel always wins.
			if err := ctx.Err(); err != nil {
				s.fb.Unlock()
				return err
			}
			if s.remaining == 0 {
				// The ribbon drained while we waited; restart from the seed column.
				s.seedLocked(start)
				if i < sep {
					s.fb.Unlock()
					break
				}
			}
			ok := s.appendLocked(r)
			s.fb.Unlock()
			if ok {
				break
			}
		}
	}
	return nil
}

// Stop abandons the ribbon in flight and clears the display rows.
func (s *Scroller) Stop() {
	s.fb.Lock()
	defer s.fb.Unlock()
	s.fb.ClearDisplay()
	s.cursor = 0
	s.remaining = 0
}

// AdvanceOneDot shifts the ribbon one column left. It reports whether the scroll
// finished with this dot.
func (s *Scroller) AdvanceOneDot() bool {
	s.fb.Lock()
	defer s.fb.Unlock()
	return s.advanceLocked()
}

// TryAdvance is AdvanceOneDot for interrupt context: it never blocks. advanced is
// false when the lock was contended or nothing was scrolling.
func (s *Scroller) TryAdvance() (advanced, finished bool) {
	if !s.fb.TryLock() {
		return false, false
	}
	defer s.fb.Unlock()
	if s.remaining == 0 {
		return false, false
	}
	return true, s.advanceLocked()
}

func (s *Scroller) advanceLocked() bool {
	if s.remaining == 0 {
		return false
	}
	ShiftOneDot(&s.fb.buf)
	if s.cursor > 0 {
		s.cursor--
	}
	s.remaining--

	select {
	case s.room <- struct{}{}:
	default:
	}

	if s.remaining > 0 {
		return false
	}
	s.fb.ClearDisplay()
	s.cursor = 0
	return true
}

// ShiftOneDot treats each display row as one shift register spanning all sections:
// bit i takes bit i+1 and the last section shifts in zero. Row 0 and columns 0..1 of
// section 0 keep their previous values.
func ShiftOneDot(buf *[Size]byte) {
	var saved [Rows]byte
	for r := 1; r < Rows; r++ {
		saved[r] = buf[r] & indicatorColumnMask
	}
	for r := 1; r < Rows; r++ {
		for s := 0; s < Sections; s++ {
			i := s*SectionBytes + r
			v := buf[i] >> 1
			if s+1 < Sections {
				v |= buf[i+SectionBytes] << 7
			}
			buf[i] = v
		}
		buf[r] = buf[r]&^indicatorColumnMask | saved[r]
	}
}
