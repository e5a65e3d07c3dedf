//go:build tinygo && baremetal && rp2040

package hal

import "machine"

// newSettingsFlash returns the settings region at the end of the flash area that
// follows the program image.
func newSettingsFlash() Flash {
	return newRegionFlash(machine.Flash, SettingsBlocks)
}
