//go:build !tinygo && !cgo

package hal

import "errors"

type hostKeyboard struct{}

func newHostKeyboard([3]*VirtualLine) *hostKeyboard { return &hostKeyboard{} }

func (*hostKeyboard) poll() {}

func (h *Host) startBuzzerAudio() error { return nil }

// RunWindow needs cgo for the window backend.
func RunWindow(h *Host, title string, step func() error) error {
	return errors.New("hal: window support requires cgo; run with --headless")
}
