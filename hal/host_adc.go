//go:build !tinygo

package hal

import (
	"math"
	"time"
)

// Night and noon readings of the emulated light sensor.
const (
	lightNight = 150
	lightNoon  = 3900
)

type hostADC struct {
	light  int
	supply uint16
	now    func() time.Time
}

func newHostADC(light int, supply uint16, now func() time.Time) *hostADC {
	return &hostADC{light: light, supply: supply, now: now}
}

func (a *hostADC) Read(ch ADCChannel) uint16 {
	switch ch {
	case ADCLight:
		if a.light >= 0 {
			return uint16(min(a.light, ADCMax))
		}
		return dayCurve(a.now())
	case ADCSupply:
		return a.supply
	}
	return 0
}

// dayCurve is dark from 18:00 to 06:00 and peaks at noon.
func dayCurve(t time.Time) uint16 {
	h := float64(t.Hour()) + float64(t.Minute())/60
	s := math.Sin(math.Pi * (h - 6) / 12)
	if s < 0 {
		s = 0
	}
	return uint16(lightNight + (lightNoon-lightNight)*s)
}
