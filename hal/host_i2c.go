//go:build !tinygo

package hal

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// periphI2C adapts a periph bus to drivers.I2C.
type periphI2C struct {
	bus i2c.Bus
}

func openPeriphI2C(name string) (periphI2C, io.Closer, error) {
	if _, err := host.Init(); err != nil {
		return periphI2C{}, nil, fmt.Errorf("init periph.io: %w", err)
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return periphI2C{}, nil, fmt.Errorf("open i2c bus %q: %w", name, err)
	}
	return periphI2C{bus: bus}, bus, nil
}

func (p periphI2C) Tx(addr uint16, w, r []byte) error {
	return p.bus.Tx(addr, w, r)
}

func (p periphI2C) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return p.bus.Tx(uint16(addr), []byte{reg}, buf)
}

func (p periphI2C) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return p.bus.Tx(uint16(addr), append([]byte{reg}, buf...), nil)
}
