package app

import (
	"fmt"
	"image/color"
	"strings"

	"dotclock/clockos/clock"
	"dotclock/clockos/display"
	"dotclock/clockos/fonts"
	"dotclock/clockos/kernel"
	"dotclock/hal"

	"tinygo.org/x/tinyfont"
)

// installPanicHandler logs a task panic with its stack and puts "ERR t<task>" on the
// matrix. Interrupt context keeps scanning so the message stays lit.
func installPanicHandler(h hal.HAL, core *clock.Core) {
	kernel.SetPanicHandler(func(info kernel.PanicInfo) {
		if l := h.Logger(); l != nil {
			l.WriteLineString(fmt.Sprintf("clock panic: task=%d panic=%v", info.TaskID, info.Value))
			for _, line := range strings.Split(string(info.Stack), "\n") {
				if line == "" {
					continue
				}
				l.WriteLineString(line)
			}
		}
		msg := fmt.Sprintf("ERR t%d", info.TaskID)
		core.Halt(func(fb *display.Framebuffer) {
			fb.ClearDisplay()
			d := panicDisplay{fb: fb}
			tinyfont.WriteLine(d, fonts.Font, display.FirstTextColumn, fonts.Height, msg, color.RGBA{R: 255, A: 255})
		})
	})
}

// panicDisplay lets tinyfont draw on the matrix. Callers hold the framebuffer lock.
type panicDisplay struct {
	fb *display.Framebuffer
}

func (d panicDisplay) Size() (x, y int16) { return display.ScanColumns, display.Rows }

func (d panicDisplay) SetPixel(x, y int16, c color.RGBA) {
	d.fb.SetPixel(int(x), int(y), c.R|c.G|c.B != 0)
}

func (d panicDisplay) Display() error { return nil }
