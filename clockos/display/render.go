package display

import (
	"math/bits"

	"dotclock/clockos/fonts"
)

// Render4x7 draws ch with the fixed 4x7 font at column and returns the next free column.
// Callers must hold the lock.
func (fb *Framebuffer) Render4x7(column int, ch rune) int {
	column = clampColumn(column)
	rows, _ := fonts.Glyph4x7(ch)
	fb.blit(column, rows, fonts.Width4x7)
	return column + fonts.Stride4x7
}

// Render5x7 draws ch with the variable 5x7 font at column and returns the next free column.
// Callers must hold the lock.
func (fb *Framebuffer) Render5x7(column int, ch rune) int {
	column = clampColumn(column)
	rows, adv, _ := fonts.Glyph5x7(ch)
	// Table rows keep the leftmost column in bit 7; the matrix wants it in bit 0.
	for i, b := range rows {
		rows[i] = bits.Reverse8(b)
	}
	fb.blit(column, rows, int(adv))
	return column + int(adv)
}

// RenderString5x7 draws s from column and returns the next free column.
// Callers must hold the lock.
func (fb *Framebuffer) RenderString5x7(column int, s string) int {
	for _, r := range s {
		column = fb.Render5x7(column, r)
	}
	return column
}

// RenderString4x7 draws s from column and returns the next free column.
// Callers must hold the lock.
func (fb *Framebuffer) RenderString4x7(column int, s string) int {
	for _, r := range s {
		column = fb.Render4x7(column, r)
	}
	return column
}

// RenderMasked4x7 is Render4x7 with every glyph row ANDed with mask.
// Callers must hold the lock.
func (fb *Framebuffer) RenderMasked4x7(column int, ch rune, mask byte) int {
	column = clampColumn(column)
	rows, _ := fonts.Glyph4x7(ch)
	for i := range rows {
		rows[i] &= mask
	}
	fb.blit(column, rows, fonts.Width4x7)
	return column + fonts.Stride4x7
}

// RenderMasked5x7 is Render5x7 with every glyph row ANDed with mask.
// Callers must hold the lock.
func (fb *Framebuffer) RenderMasked5x7(column int, ch rune, mask byte) int {
	column = clampColumn(column)
	rows, adv, _ := fonts.Glyph5x7(ch)
	for i, b := range rows {
		rows[i] = bits.Reverse8(b) & mask
	}
	fb.blit(column, rows, int(adv))
	return column + int(adv)
}

func clampColumn(column int) int {
	if column < FirstTextColumn {
		return FirstTextColumn
	}
	return column
}

// blit writes rows 1..7 of a glyph whose columns 0..width-1 sit in bits 0..width-1.
// The span is cleared first so only the glyph's own columns change. A glyph crossing
// a section boundary spills into the next section unless this is the last one.
func (fb *Framebuffer) blit(column int, rows [fonts.Height]byte, width int) {
	if column >= Columns {
		return
	}
	section := column / 8
	shift := column % 8
	span := uint16(1)<<width - 1

	for r := 0; r < fonts.Height; r++ {
		g := uint16(rows[r]) & span
		m := span << shift
		v := g << shift

		i := section*SectionBytes + r + 1
		fb.buf[i] = fb.buf[i]&^byte(m) | byte(v)

		if m>>8 == 0 || section+1 >= Sections {
			continue
		}
		j := i + SectionBytes
		fb.buf[j] = fb.buf[j]&^byte(m>>8) | byte(v>>8)
	}
}
