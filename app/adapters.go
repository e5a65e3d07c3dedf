package app

import (
	"dotclock/clockos/clock"
	"dotclock/clockos/setup"
	"dotclock/hal"
)

// lines maps the HAL's named GPIO lines onto the core's line set.
func lines(g hal.GPIO) clock.Lines {
	var l clock.Lines
	l.Buttons[setup.ButtonMode] = g.Line(hal.LineButtonMode)
	l.Buttons[setup.ButtonUp] = g.Line(hal.LineButtonUp)
	l.Buttons[setup.ButtonDown] = g.Line(hal.LineButtonDown)
	l.Buzzer = g.Line(hal.LineBuzzer)
	l.SDI = g.Line(hal.LineSDI)
	l.CLK = g.Line(hal.LineCLK)
	l.LE = g.Line(hal.LineLE)
	l.OE = g.Line(hal.LineOE)
	l.A0 = g.Line(hal.LineA0)
	l.A1 = g.Line(hal.LineA1)
	l.A2 = g.Line(hal.LineA2)
	return l
}

type adc struct{ a hal.ADC }

func (a adc) Read(ch clock.ADCChannel) uint16 {
	switch ch {
	case clock.ADCLight:
		return a.a.Read(hal.ADCLight)
	case clock.ADCSupply:
		return a.a.Read(hal.ADCSupply)
	}
	return 0
}
