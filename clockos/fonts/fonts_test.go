package fonts

import (
	"image/color"
	"testing"

	"tinygo.org/x/tinyfont"
)

func TestGlyph5x7Fallback(t *testing.T) {
	want, _, _ := Glyph5x7('?')
	got, adv, ok := Glyph5x7('☺')
	if ok {
		t.Fatalf("Glyph5x7(smiley) ok = true, want false")
	}
	if got != want {
		t.Fatalf("Glyph5x7(smiley) rows = %v, want '?' rows %v", got, want)
	}
	if adv == 0 {
		t.Fatalf("Glyph5x7(smiley) advance = 0, want >= 1")
	}
}

func TestGlyph5x7Coverage(t *testing.T) {
	for r := rune(0x20); r <= 0x7e; r++ {
		rows, adv, ok := Glyph5x7(r)
		if !ok {
			t.Fatalf("Glyph5x7(%q) ok = false, want true", r)
		}
		if adv < 1 || adv > MaxWidth5x7+1 {
			t.Fatalf("Glyph5x7(%q) advance = %d, want 1..%d", r, adv, MaxWidth5x7+1)
		}
		// Glyph pixels never reach into the inter-character gap.
		for _, b := range rows {
			if b&(0xff>>(adv-1)) != 0 {
				t.Fatalf("Glyph5x7(%q) row %08b overlaps gap at advance %d", r, b, adv)
			}
		}
	}
	for _, r := range extra5x7 {
		if !Has5x7(r) {
			t.Fatalf("Has5x7(%q) = false, want true", r)
		}
	}
}

func TestGlyph4x7(t *testing.T) {
	for _, r := range "0123456789 -?°ACFP" {
		rows, ok := Glyph4x7(r)
		if !ok {
			t.Fatalf("Glyph4x7(%q) ok = false, want true", r)
		}
		for _, b := range rows {
			if b&^0x0f != 0 {
				t.Fatalf("Glyph4x7(%q) row %08b wider than %d", r, b, Width4x7)
			}
		}
	}
	q, _ := Glyph4x7('?')
	if got, ok := Glyph4x7('z'); ok || got != q {
		t.Fatalf("Glyph4x7('z') = %v, %v, want '?' rows, false", got, ok)
	}
}

func TestWidth5x7(t *testing.T) {
	_, a, _ := Glyph5x7('A')
	_, sp, _ := Glyph5x7(' ')
	if got, want := Width5x7("A A"), int(2*a+sp); got != want {
		t.Fatalf("Width5x7(\"A A\") = %d, want %d", got, want)
	}
}

type pixelRecorder struct {
	set map[[2]int16]bool
}

func (p *pixelRecorder) Size() (int16, int16) { return 64, 16 }
func (p *pixelRecorder) SetPixel(x, y int16, c color.RGBA) {
	p.set[[2]int16{x, y}] = true
}
func (p *pixelRecorder) Display() error { return nil }

func TestFonterDrawsRows(t *testing.T) {
	d := &pixelRecorder{set: map[[2]int16]bool{}}
	tinyfont.DrawChar(d, Font, 0, 7, 'I', color.RGBA{A: 255})

	rows, adv, _ := Glyph5x7('I')
	for row := 0; row < Height; row++ {
		for col := 0; col < int(adv); col++ {
			want := rows[row]&(0x80>>col) != 0
			got := d.set[[2]int16{int16(col), int16(1 + row)}]
			if got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", col, 1+row, got, want)
			}
		}
	}
}
