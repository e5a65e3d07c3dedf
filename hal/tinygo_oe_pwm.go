//go:build tinygo && baremetal

package hal

import (
	"machine"
)

type pwmDevice interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	SetTop(top uint32)
	Top() uint32
	Set(channel uint8, value uint32)
	Enable(enable bool)
}

// pwmOE drives the active-low output enable from a PWM slice so the panel can be
// blanked for part of each row period. The carrier runs well above the row rate.
type pwmOE struct {
	pin machine.Pin
	pwm pwmDevice
	ch  uint8
	top uint32

	// off is the duty held while the row is lit.
	off  uint32
	high bool
}

func newPWMOE(pin machine.Pin) *pwmOE {
	pwm := pwmForPin(pin)
	if pwm == nil {
		return nil
	}
	const carrierHz = 62500
	if err := pwm.Configure(machine.PWMConfig{Period: 1e9 / carrierHz}); err != nil {
		return nil
	}
	ch, err := pwm.Channel(pin)
	if err != nil {
		return nil
	}
	o := &pwmOE{pin: pin, pwm: pwm, ch: ch}
	o.top = pwm.Top()
	o.Set(true)
	pwm.Enable(true)
	return o
}

func pwmForPin(pin machine.Pin) pwmDevice {
	slice, err := machine.PWMPeripheral(pin)
	if err != nil {
		return nil
	}
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		return nil
	}
}

// Set(true) blanks the panel; Set(false) lights it at the current level.
func (o *pwmOE) Set(high bool) {
	o.high = high
	if high {
		o.pwm.Set(o.ch, o.top)
		return
	}
	o.pwm.Set(o.ch, o.off)
}

func (o *pwmOE) Get() bool { return o.high }

func (o *pwmOE) BlankAfter(level int) {
	if level < 0 {
		level = 0
	}
	if level > MaxBrightness {
		level = MaxBrightness
	}
	o.off = o.top - o.top*uint32(level)/MaxBrightness
	if !o.high {
		o.pwm.Set(o.ch, o.off)
	}
}
