//go:build tinygo && baremetal && !rp2040

package hal

func newSettingsFlash() Flash { return stubFlash{} }
