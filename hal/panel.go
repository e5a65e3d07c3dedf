package hal

import (
	"image"
	"image/color"
	"sync"

	"dotclock/clockos/display"
)

// Panel simulates the matrix hardware: a 32-bit column shift register clocked on the
// rising edge of CLK, a latch loaded while LE is high, a 3-bit row decoder on A0..A2
// and an active-low output enable. The latched row is shown when OE falls.
type Panel struct {
	mu    sync.Mutex
	sdi   bool
	clk   bool
	oe    bool
	a     [3]bool
	reg   uint32
	latch uint32
	level int
	shown [display.Rows]uint32
	lit   [display.Rows]uint8
}

// NewPanel returns a dark panel at full brightness.
func NewPanel() *Panel {
	return &Panel{oe: true, level: MaxBrightness}
}

type panelLine struct {
	p  *Panel
	id LineID
}

// Line returns the panel input id; other IDs get an unconnected line.
func (p *Panel) Line(id LineID) Line {
	switch id {
	case LineSDI, LineCLK, LineLE, LineOE, LineA0, LineA1, LineA2:
		return panelLine{p: p, id: id}
	}
	return nullLine{}
}

func (l panelLine) Set(high bool) { l.p.set(l.id, high) }

func (l panelLine) Get() bool {
	l.p.mu.Lock()
	defer l.p.mu.Unlock()
	switch l.id {
	case LineSDI:
		return l.p.sdi
	case LineCLK:
		return l.p.clk
	case LineOE:
		return l.p.oe
	case LineA0, LineA1, LineA2:
		return l.p.a[l.id-LineA0]
	}
	return false
}

func (p *Panel) set(id LineID, high bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch id {
	case LineSDI:
		p.sdi = high
	case LineCLK:
		if high && !p.clk {
			p.reg <<= 1
			if p.sdi {
				p.reg |= 1
			}
		}
		p.clk = high
	case LineLE:
		if high {
			p.latch = p.reg
		}
	case LineOE:
		if !high && p.oe {
			row := p.row()
			p.shown[row] = p.latch
			p.lit[row] = uint8(p.level)
		}
		p.oe = high
	case LineA0, LineA1, LineA2:
		p.a[id-LineA0] = high
	}
}

func (p *Panel) row() int {
	r := 0
	for i, b := range p.a {
		if b {
			r |= 1 << i
		}
	}
	return r
}

// BlankAfter implements OutputEnable. The level applies to the row being shown.
func (p *Panel) BlankAfter(level int) {
	if level < 0 {
		level = 0
	}
	if level > MaxBrightness {
		level = MaxBrightness
	}
	p.mu.Lock()
	p.level = level
	p.lit[p.row()] = uint8(level)
	p.mu.Unlock()
}

// Level returns the last brightness passed to BlankAfter.
func (p *Panel) Level() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// Frame returns what each row showed on its last scan, column 0 first.
func (p *Panel) Frame() [display.Rows][display.ScanColumns]bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out [display.Rows][display.ScanColumns]bool
	for r, bits := range p.shown {
		for c := 0; c < display.ScanColumns; c++ {
			out[r][c] = bits&(1<<c) != 0
		}
	}
	return out
}

// LED colours of the emulated panel.
var (
	LEDOn  = color.RGBA{R: 0xff, G: 0x30, B: 0x10, A: 0xff}
	LEDOff = color.RGBA{R: 0x30, G: 0x08, B: 0x04, A: 0xff}
)

// Image draws the panel with one scale x scale square per LED and a one pixel gap.
// Lit LEDs are dimmed by their row's brightness.
func (p *Panel) Image(scale int) *image.RGBA {
	if scale < 2 {
		scale = 2
	}
	p.mu.Lock()
	shown, lit := p.shown, p.lit
	p.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, display.ScanColumns*scale, display.Rows*scale))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+3] = 0xff
	}
	for r := 0; r < display.Rows; r++ {
		on := dim(int(lit[r]))
		for c := 0; c < display.ScanColumns; c++ {
			col := LEDOff
			if shown[r]&(1<<c) != 0 {
				col = on
			}
			for y := 0; y < scale-1; y++ {
				for x := 0; x < scale-1; x++ {
					img.SetRGBA(c*scale+x, r*scale+y, col)
				}
			}
		}
	}
	return img
}

func dim(level int) color.RGBA {
	mix := func(on, off uint8) uint8 {
		return uint8(int(off) + (int(on)-int(off))*level/MaxBrightness)
	}
	return color.RGBA{R: mix(LEDOn.R, LEDOff.R), G: mix(LEDOn.G, LEDOff.G), B: mix(LEDOn.B, LEDOff.B), A: 0xff}
}
