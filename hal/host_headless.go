//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	// Hz is how often wall time is turned into millisecond ticks.
	Hz int
	// Ticks stops the runner after that many millisecond ticks; 0 runs forever.
	Ticks uint64
}

// RunHeadless drives the tick source without opening a window. step runs after each
// batch of ticks; an error from it stops the runner.
func RunHeadless(ctx context.Context, h *Host, step func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 250
	}

	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			h.t.step()
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			if cfg.Ticks > 0 && h.t.seq >= cfg.Ticks {
				return nil
			}
		}
	}
}
