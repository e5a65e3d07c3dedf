package display

import "sync"

const (
	// Size is the framebuffer length in bytes.
	Size = 248
	// SectionBytes is the number of rows (bytes) per 8-column section.
	SectionBytes = 8
	// Sections is the number of sections in the framebuffer.
	Sections = Size / SectionBytes
	// Columns is the number of dot columns, visible and virtual.
	Columns = Sections * 8

	// ScanSections are driven by the matrix; the rest is scroll staging.
	ScanSections = 4
	// ScanColumns is the physical panel width.
	ScanColumns = ScanSections * 8
	// Rows includes the indicator row 0.
	Rows = 8

	// FirstTextColumn is the leftmost column not reserved for indicators.
	FirstTextColumn = 2

	// indicatorColumnMask covers columns 0 and 1 of section 0.
	indicatorColumnMask = 0x03
)

// Framebuffer is the dot matrix bitmap. Byte s*8+r holds row r of section s;
// bit b is column s*8+b with bit 0 leftmost.
//
// Row 0 of every section and columns 0..1 of section 0 form the indicator plane.
// Display operations never modify it.
type Framebuffer struct {
	mu  sync.Mutex
	buf [Size]byte
}

// Lock acquires exclusive access for a main-loop writer.
func (fb *Framebuffer) Lock() { fb.mu.Lock() }

// Unlock releases Lock or a successful TryLock.
func (fb *Framebuffer) Unlock() { fb.mu.Unlock() }

// TryLock acquires access without blocking; interrupt context uses only this.
func (fb *Framebuffer) TryLock() bool { return fb.mu.TryLock() }

// Bytes exposes the raw buffer. Callers must hold the lock.
func (fb *Framebuffer) Bytes() *[Size]byte { return &fb.buf }

// Snapshot copies the buffer under the lock.
func (fb *Framebuffer) Snapshot() [Size]byte {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.buf
}

// ClearDisplay clears rows 1..7 of every section, keeping the indicator plane.
// Callers must hold the lock.
func (fb *Framebuffer) ClearDisplay() {
	for s := 0; s < Sections; s++ {
		base := s * SectionBytes
		for r := 1; r < Rows; r++ {
			if s == 0 {
				fb.buf[base+r] &= indicatorColumnMask
				continue
			}
			fb.buf[base+r] = 0
		}
	}
}

// ClearColumns clears rows 1..7 of columns [from, to), keeping the indicator plane.
// Callers must hold the lock.
func (fb *Framebuffer) ClearColumns(from, to int) {
	if from < FirstTextColumn {
		from = FirstTextColumn
	}
	if to > Columns {
		to = Columns
	}
	for col := from; col < to; col++ {
		base := (col / 8) * SectionBytes
		bit := byte(1) << (col % 8)
		for r := 1; r < Rows; r++ {
			fb.buf[base+r] &^= bit
		}
	}
}

// Pixel reports the dot at (col, row). Callers must hold the lock.
func (fb *Framebuffer) Pixel(col, row int) bool {
	if col < 0 || col >= Columns || row < 0 || row >= Rows {
		return false
	}
	return fb.buf[(col/8)*SectionBytes+row]&(1<<(col%8)) != 0
}

// SetPixel sets or clears the dot at (col, row). Indicator plane positions are ignored.
// Callers must hold the lock.
func (fb *Framebuffer) SetPixel(col, row int, on bool) {
	if col < FirstTextColumn || col >= Columns || row < 1 || row >= Rows {
		return
	}
	i := (col/8)*SectionBytes + row
	bit := byte(1) << (col % 8)
	if on {
		fb.buf[i] |= bit
	} else {
		fb.buf[i] &^= bit
	}
}

// IndicatorPlane returns a copy of the buffer holding only indicator plane bits.
// Callers must hold the lock.
func (fb *Framebuffer) IndicatorPlane() [Size]byte {
	var out [Size]byte
	for s := 0; s < Sections; s++ {
		out[s*SectionBytes] = fb.buf[s*SectionBytes]
	}
	for r := 1; r < Rows; r++ {
		out[r] = fb.buf[r] & indicatorColumnMask
	}
	return out
}

// ApplyIndicators writes ind into the indicator plane. Callers must hold the lock.
func (fb *Framebuffer) ApplyIndicators(ind Indicators) {
	for s := 0; s < Sections; s++ {
		fb.buf[s*SectionBytes] = 0
	}
	for r := 1; r < Rows; r++ {
		fb.buf[r] &^= indicatorColumnMask
	}
	for s := 0; s < ScanSections; s++ {
		for r := 0; r < Rows; r++ {
			fb.buf[s*SectionBytes+r] |= ind.rowBits(s, r)
		}
	}
}
