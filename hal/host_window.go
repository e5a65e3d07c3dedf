//go:build !tinygo && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"

	"dotclock/clockos/display"
)

// windowScale is the size of one LED in window pixels.
const windowScale = 20

// RunWindow shows the emulated panel, forwards the keyboard to the buttons and plays
// the buzzer. It blocks until the window closes or step fails.
func RunWindow(h *Host, title string, step func() error) error {
	if err := h.startBuzzerAudio(); err != nil {
		h.logger.log.Warn("buzzer audio unavailable", "err", err)
	}
	g := &hostGame{h: h, step: step}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(display.ScanColumns*windowScale, display.Rows*windowScale)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h     *Host
	frame *ebiten.Image
	step  func() error
}

func (g *hostGame) Update() error {
	g.h.kbd.poll()
	g.h.t.step()
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	img := g.h.panel.Image(windowScale)
	if g.frame == nil {
		b := img.Bounds()
		g.frame = ebiten.NewImage(b.Dx(), b.Dy())
	}
	g.frame.WritePixels(img.Pix)
	screen.DrawImage(g.frame, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return display.ScanColumns * windowScale, display.Rows * windowScale
}
