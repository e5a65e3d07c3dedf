//go:build !tinygo && cgo

package hal

import (
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

const (
	buzzerSampleRate = 48000
	buzzerHz         = 2048
	buzzerAmplitude  = 6000
)

var audioOnce struct {
	sync.Once
	ctx *audio.Context
}

// startBuzzerAudio plays a square wave whenever the buzzer line is high.
func (h *Host) startBuzzerAudio() error {
	audioOnce.Do(func() { audioOnce.ctx = audio.NewContext(buzzerSampleRate) })
	p, err := audioOnce.ctx.NewPlayer(&squareWave{b: h.buzzer})
	if err != nil {
		return err
	}
	p.SetBufferSize(20 * time.Millisecond)
	p.Play()
	return nil
}

type squareWave struct {
	b     *hostBuzzer
	phase int
}

// Read produces 16-bit little-endian stereo. It never ends.
func (w *squareWave) Read(p []byte) (int, error) {
	const half = buzzerSampleRate / buzzerHz / 2
	on := w.b.Get()
	n := len(p) &^ 3
	for i := 0; i < n; i += 4 {
		var s int16
		if on {
			s = buzzerAmplitude
			if w.phase >= half {
				s = -buzzerAmplitude
			}
		}
		w.phase = (w.phase + 1) % (2 * half)
		p[i+0] = byte(s)
		p[i+1] = byte(s >> 8)
		p[i+2] = byte(s)
		p[i+3] = byte(s >> 8)
	}
	return n, nil
}
