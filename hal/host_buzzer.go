//go:build !tinygo

package hal

import "sync/atomic"

// hostBuzzer is the buzzer line. The window backend turns its level into sound.
type hostBuzzer struct {
	level atomic.Bool
	// edges counts rising edges for tests and the debug server.
	edges atomic.Uint64
}

func newHostBuzzer() *hostBuzzer { return &hostBuzzer{} }

func (b *hostBuzzer) Set(high bool) {
	if high && !b.level.Swap(true) {
		b.edges.Add(1)
		return
	}
	if !high {
		b.level.Store(false)
	}
}

func (b *hostBuzzer) Get() bool { return b.level.Load() }

// BuzzerEdges returns how many times the buzzer has switched on.
func (h *Host) BuzzerEdges() uint64 { return h.buzzer.edges.Load() }
