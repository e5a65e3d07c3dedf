package display

import "fmt"

// Clock face layout in panel columns.
const (
	HourColumn   = 3
	ColonColumn  = 13
	MinuteColumn = 15

	ColonUpperRow = 2
	ColonLowerRow = 5
)

// RenderTime draws "HH:MM" with the 4x7 digits: left at HourColumn, right at
// MinuteColumn and both colon dots lit. Each half is ANDed with its mask.
// Callers must hold the lock.
func (fb *Framebuffer) RenderTime(left, right int, leftMask, rightMask byte) {
	col := HourColumn
	for _, r := range fmt.Sprintf("%02d", left) {
		col = fb.RenderMasked4x7(col, r, leftMask)
	}
	fb.SetColon(true, true)
	col = MinuteColumn
	for _, r := range fmt.Sprintf("%02d", right) {
		col = fb.RenderMasked4x7(col, r, rightMask)
	}
}

// SetColon sets the two centre dots. Callers must hold the lock.
func (fb *Framebuffer) SetColon(upper, lower bool) {
	fb.SetPixel(ColonColumn, ColonUpperRow, upper)
	fb.SetPixel(ColonColumn, ColonLowerRow, lower)
}

// TryIdle runs fn with the lock held when the lock is free and nothing is scrolling.
// It never blocks and reports whether fn ran.
func (s *Scroller) TryIdle(fn func(fb *Framebuffer)) bool {
	if !s.fb.TryLock() {
		return false
	}
	defer s.fb.Unlock()
	if s.remaining > 0 {
		return false
	}
	fn(s.fb)
	return true
}

// WithIdle is TryIdle for the main loop: it waits for the lock.
func (s *Scroller) WithIdle(fn func(fb *Framebuffer)) bool {
	s.fb.Lock()
	defer s.fb.Unlock()
	if s.remaining > 0 {
		return false
	}
	fn(s.fb)
	return true
}
