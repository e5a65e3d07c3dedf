package hal

import (
	"errors"
	"io"

	"tinygo.org/x/drivers"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// Line is one digital GPIO line.
type Line interface {
	Set(high bool)
	Get() bool
}

// ADCChannel names an analog input.
type ADCChannel uint8

const (
	ADCLight ADCChannel = iota
	ADCSupply
)

// ADCMax is the full-scale reading of every channel.
const ADCMax = 4095

// ADC samples analog inputs. Read must not block; it is called from the tick.
type ADC interface {
	Read(ch ADCChannel) uint16
}

// OutputEnable dims the matrix by blanking it part-way through each row period.
type OutputEnable interface {
	// BlankAfter blanks the outputs level/MaxBrightness into the row period.
	BlankAfter(level int)
}

// MaxBrightness is the level at which OutputEnable never blanks.
const MaxBrightness = 8

// Flash provides raw access to non-volatile memory.
//
// It is intentionally low-level: addresses and erase blocks only.
type Flash interface {
	SizeBytes() uint32
	EraseBlockBytes() uint32
	ReadAt(p []byte, off uint32) (int, error)
	WriteAt(p []byte, off uint32) (int, error)
	Erase(off, size uint32) error
}

// Time provides the base tick stream, one tick per millisecond.
type Time interface {
	Ticks() <-chan uint64
}

// Serial is the byte stream used by the remote line protocol.
type Serial interface {
	io.Reader
	io.Writer
}

// HAL provides the only contact point between the clock and the outside world.
type HAL interface {
	Logger() Logger
	GPIO() GPIO
	ADC() ADC
	I2C() drivers.I2C
	Time() Time
	OutputEnable() OutputEnable
	Flash() Flash
	Serial() Serial
}
