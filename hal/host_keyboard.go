//go:build !tinygo && cgo

package hal

import "github.com/hajimehoshi/ebiten/v2"

// hostKeyboard holds a button line low while one of its keys is down.
type hostKeyboard struct {
	buttons [3]*VirtualLine
	keys    [3][]ebiten.Key
}

func newHostKeyboard(buttons [3]*VirtualLine) *hostKeyboard {
	return &hostKeyboard{
		buttons: buttons,
		keys: [3][]ebiten.Key{
			{ebiten.KeyM, ebiten.KeyEnter},
			{ebiten.KeyArrowUp, ebiten.KeyU},
			{ebiten.KeyArrowDown, ebiten.KeyD},
		},
	}
}

func (k *hostKeyboard) poll() {
	for i, keys := range k.keys {
		down := false
		for _, key := range keys {
			if ebiten.IsKeyPressed(key) {
				down = true
				break
			}
		}
		k.buttons[i].Set(!down)
	}
}
