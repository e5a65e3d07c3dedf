//go:build !tinygo

package hal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"dotclock/clockos/rtc"

	"tinygo.org/x/drivers"
)

// HostConfig selects the host backends.
type HostConfig struct {
	LogLevel slog.Level
	// LogOutput defaults to stderr. A terminal gets coloured text, anything else JSON.
	LogOutput io.Writer

	// FlashPath is the file backing the emulated flash; empty disables flash.
	FlashPath string

	// I2CBus names a periph I2C bus holding a real DS3231. Empty simulates the chip.
	I2CBus string
	// Start is the simulated chip's initial time; zero means now.
	Start time.Time

	// SerialPort is opened for the remote protocol; empty uses stdin and stdout and
	// "none" disables it.
	SerialPort string
	SerialBaud int

	// Light is a fixed light sensor reading; negative follows a day curve.
	Light int
	// Supply is the fixed supply voltage reading.
	Supply uint16
}

// Host is the desktop HAL: emulated buttons, buzzer and LED panel, a simulated or
// real DS3231 and file-backed flash.
type Host struct {
	logger  *hostLogger
	lines   LineSet
	buttons [3]*VirtualLine
	buzzer  *hostBuzzer
	panel   *Panel
	adc     *hostADC
	i2c     drivers.I2C
	sim     *rtc.Simulator
	t       *hostTime
	flash   Flash
	serial  Serial
	kbd     *hostKeyboard
	closers []io.Closer
}

// New returns a host HAL implementation.
func New(cfg HostConfig) (*Host, error) {
	out := cfg.LogOutput
	if out == nil {
		out = os.Stderr
	}
	h := &Host{
		logger: newHostLogger(out, cfg.LogLevel),
		buzzer: newHostBuzzer(),
		panel:  NewPanel(),
		adc:    newHostADC(cfg.Light, cfg.Supply, time.Now),
		t:      newHostTime(),
		flash:  stubFlash{},
	}
	for i, id := range []LineID{LineButtonMode, LineButtonUp, LineButtonDown} {
		h.buttons[i] = NewVirtualLine(id.String(), true)
		h.lines[id] = h.buttons[i]
	}
	h.lines[LineBuzzer] = h.buzzer
	for _, id := range []LineID{LineSDI, LineCLK, LineLE, LineOE, LineA0, LineA1, LineA2} {
		h.lines[id] = h.panel.Line(id)
	}
	h.kbd = newHostKeyboard(h.buttons)

	if cfg.I2CBus != "" {
		bus, closer, err := openPeriphI2C(cfg.I2CBus)
		if err != nil {
			return nil, err
		}
		h.i2c = bus
		h.closers = append(h.closers, closer)
	} else {
		start := cfg.Start
		if start.IsZero() {
			start = time.Now()
		}
		h.sim = rtc.NewSimulator(start)
		h.i2c = h.sim
		h.t.onSecond = h.sim.Tick
	}

	if cfg.FlashPath != "" {
		f, err := newHostFlash(cfg.FlashPath)
		if err != nil {
			h.Close()
			return nil, err
		}
		h.flash = f
		h.closers = append(h.closers, f)
	}

	serial, closer, err := openSerial(cfg.SerialPort, cfg.SerialBaud)
	if err != nil {
		h.Close()
		return nil, err
	}
	h.serial = serial
	if closer != nil {
		h.closers = append(h.closers, closer)
	}
	return h, nil
}

func (h *Host) Logger() Logger             { return h.logger }
func (h *Host) GPIO() GPIO                 { return &h.lines }
func (h *Host) ADC() ADC                   { return h.adc }
func (h *Host) I2C() drivers.I2C           { return h.i2c }
func (h *Host) Time() Time                 { return h.t }
func (h *Host) OutputEnable() OutputEnable { return h.panel }
func (h *Host) Flash() Flash               { return h.flash }
func (h *Host) Serial() Serial {
	if h.serial == nil {
		return nil
	}
	return h.serial
}

// Slog returns the structured logger behind Logger.
func (h *Host) Slog() *slog.Logger { return h.logger.log }

// Panel returns the emulated LED matrix.
func (h *Host) Panel() *Panel { return h.panel }

// RTC returns the simulated chip, or nil when a real bus is used.
func (h *Host) RTC() *rtc.Simulator { return h.sim }

// Press holds or releases a button line.
func (h *Host) Press(id LineID, down bool) error {
	switch id {
	case LineButtonMode, LineButtonUp, LineButtonDown:
		h.buttons[id-LineButtonMode].Set(!down)
		return nil
	}
	return fmt.Errorf("hal: %s is not a button", id)
}

// Close releases the I2C bus, flash file and serial port.
func (h *Host) Close() error {
	var errs []error
	for _, c := range h.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	h.closers = nil
	return errors.Join(errs...)
}
