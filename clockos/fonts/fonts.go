package fonts

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

const (
	// Height is the glyph height of both matrix fonts.
	Height = 7

	// Width4x7 is the pixel width of a fixed glyph.
	Width4x7 = 4
	// Stride4x7 is the column advance of a fixed glyph, including the gap.
	Stride4x7 = 5

	// MaxWidth5x7 is the widest variable glyph.
	MaxWidth5x7 = 5
)

// Glyph5x7 returns the rows of r (leftmost column in bit 7) and its column advance.
// ok is false when r has no glyph; the rows are then those of '?'.
func Glyph5x7(r rune) (rows [Height]byte, advance uint8, ok bool) {
	idx, ok := index5x7(r)
	if !ok {
		idx = int('?' - 0x20)
	}
	advance = widths5x7[idx]
	if advance == 0 {
		advance = 1
	}
	return glyphs5x7[idx], advance, ok
}

// Glyph4x7 returns the rows of r (leftmost column in bit 0).
// ok is false when r has no glyph; the rows are then those of '?'.
func Glyph4x7(r rune) (rows [Height]byte, ok bool) {
	rows, ok = glyphs4x7[r]
	if !ok {
		rows = glyphs4x7['?']
	}
	return rows, ok
}

// Has5x7 reports whether r has a variable-width glyph.
func Has5x7(r rune) bool {
	_, ok := index5x7(r)
	return ok
}

// Width5x7 returns the column advance of the rendered form of s.
func Width5x7(s string) int {
	n := 0
	for _, r := range s {
		_, adv, _ := Glyph5x7(r)
		n += int(adv)
	}
	return n
}

func index5x7(r rune) (int, bool) {
	if r >= 0x20 && r <= 0x7e {
		return int(r - 0x20), true
	}
	for i, e := range extra5x7 {
		if e == r {
			return 0x7f - 0x20 + i, true
		}
	}
	return 0, false
}

// Font is the variable-width 5x7 matrix font as a tinyfont.Fonter.
//
// Concurrent access is not safe due to internal glyph reuse.
var Font tinyfont.Fonter = &font5x7{}

type font5x7 struct {
	g glyph
}

type glyph struct {
	r rune
}

func (g *glyph) Draw(display drivers.Displayer, x, y int16, c color.RGBA) {
	rows, adv, _ := Glyph5x7(g.r)
	for row := 0; row < Height; row++ {
		b := rows[row]
		for col := 0; col < int(adv); col++ {
			if b&(0x80>>col) == 0 {
				continue
			}
			display.SetPixel(x+int16(col), y-int16(Height-1-row), c)
		}
	}
}

func (g *glyph) Info() tinyfont.GlyphInfo {
	_, adv, _ := Glyph5x7(g.r)
	return tinyfont.GlyphInfo{
		Rune:     g.r,
		Width:    adv,
		Height:   Height,
		XAdvance: adv,
		XOffset:  0,
		YOffset:  -(Height - 1),
	}
}

func (f *font5x7) GetYAdvance() uint8 { return Height + 1 }

func (f *font5x7) GetGlyph(r rune) tinyfont.Glypher {
	f.g.r = r
	return &f.g
}
