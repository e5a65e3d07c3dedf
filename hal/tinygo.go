//go:build tinygo && baremetal

package hal

import (
	"machine"

	"tinygo.org/x/drivers"
)

// Board wiring.
const (
	pinButtonMode = machine.GP13
	pinButtonUp   = machine.GP14
	pinButtonDown = machine.GP15
	pinBuzzer     = machine.GP16
	pinSDI        = machine.GP2
	pinCLK        = machine.GP3
	pinLE         = machine.GP4
	pinOE         = machine.GP5
	pinA0         = machine.GP8
	pinA1         = machine.GP9
	pinA2         = machine.GP10
	pinI2CSDA     = machine.GP6
	pinI2CSCL     = machine.GP7
	pinLight      = machine.ADC0
	pinSupply     = machine.ADC1
)

type tinyGoHAL struct {
	logger *uartLogger
	lines  LineSet
	adc    *tinyGoADC
	i2c    *machine.I2C
	t      *tinyGoTime
	oe     *pwmOE
	flash  Flash
	serial *uartSerial
}

// New returns the RP2040 clock board HAL.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1, shared by log lines and the
// remote protocol.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	h := &tinyGoHAL{
		logger: &uartLogger{uart: uart},
		adc:    newTinyGoADC(),
		i2c:    machine.I2C1,
		t:      newTinyGoTime(),
		flash:  newSettingsFlash(),
		serial: &uartSerial{uart: uart},
	}
	h.i2c.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       pinI2CSDA,
		SCL:       pinI2CSCL,
	})

	for id, pin := range map[LineID]machine.Pin{
		LineButtonMode: pinButtonMode,
		LineButtonUp:   pinButtonUp,
		LineButtonDown: pinButtonDown,
	} {
		pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
		h.lines[id] = pin
	}
	for id, pin := range map[LineID]machine.Pin{
		LineBuzzer: pinBuzzer,
		LineSDI:    pinSDI,
		LineCLK:    pinCLK,
		LineLE:     pinLE,
		LineA0:     pinA0,
		LineA1:     pinA1,
		LineA2:     pinA2,
	} {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pin.Low()
		h.lines[id] = pin
	}

	h.oe = newPWMOE(pinOE)
	if h.oe != nil {
		h.lines[LineOE] = h.oe
	} else {
		pinOE.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pinOE.High()
		h.lines[LineOE] = pinOE
	}
	return h
}

func (h *tinyGoHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHAL) GPIO() GPIO       { return &h.lines }
func (h *tinyGoHAL) ADC() ADC         { return h.adc }
func (h *tinyGoHAL) I2C() drivers.I2C { return h.i2c }
func (h *tinyGoHAL) Time() Time       { return h.t }
func (h *tinyGoHAL) Flash() Flash     { return h.flash }
func (h *tinyGoHAL) Serial() Serial   { return h.serial }

func (h *tinyGoHAL) OutputEnable() OutputEnable {
	if h.oe == nil {
		return fullBrightness{}
	}
	return h.oe
}

// fullBrightness is used when OE is a plain pin.
type fullBrightness struct{}

func (fullBrightness) BlankAfter(int) {}
