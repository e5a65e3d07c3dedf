package hal

import (
	"errors"
	"fmt"
)

// SettingsBlocks is how many erase blocks at the end of the device hold settings
// records: one per slot.
const SettingsBlocks = 2

var ErrFlashOutOfRange = errors.New("flash access out of range")

// blockDevice is the shape of machine.Flash.
type blockDevice interface {
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
	Size() int64
	EraseBlockSize() int64
	EraseBlocks(start, length int64) error
}

// regionFlash exposes the last blocks erase blocks of dev with offsets starting at 0.
type regionFlash struct {
	dev   blockDevice
	base  uint32
	size  uint32
	block uint32
}

// newRegionFlash returns a stub when dev cannot hold the region.
func newRegionFlash(dev blockDevice, blocks uint32) Flash {
	bs, total := dev.EraseBlockSize(), dev.Size()
	if bs <= 0 || bs > 1<<20 || total > int64(^uint32(0)) || total < bs*int64(blocks) {
		return stubFlash{}
	}
	block := uint32(bs)
	size := block * blocks
	// Round down so the region starts on a block boundary.
	end := uint32(total) / block * block
	return &regionFlash{dev: dev, base: end - size, size: size, block: block}
}

func (f *regionFlash) SizeBytes() uint32       { return f.size }
func (f *regionFlash) EraseBlockBytes() uint32 { return f.block }

func (f *regionFlash) check(off uint32, n int) error {
	if uint64(off)+uint64(n) > uint64(f.size) {
		return fmt.Errorf("%w: off=%d len=%d size=%d", ErrFlashOutOfRange, off, n, f.size)
	}
	return nil
}

func (f *regionFlash) ReadAt(p []byte, off uint32) (int, error) {
	if err := f.check(off, len(p)); err != nil {
		return 0, err
	}
	n, err := f.dev.ReadAt(p, int64(f.base+off))
	if err != nil {
		return n, fmt.Errorf("flash read at %d: %w", off, err)
	}
	return n, nil
}

func (f *regionFlash) WriteAt(p []byte, off uint32) (int, error) {
	if err := f.check(off, len(p)); err != nil {
		return 0, err
	}
	n, err := f.dev.WriteAt(p, int64(f.base+off))
	if err != nil {
		return n, fmt.Errorf("flash write at %d: %w", off, err)
	}
	return n, nil
}

func (f *regionFlash) Erase(off, size uint32) error {
	if size == 0 {
		return nil
	}
	if off%f.block != 0 || size%f.block != 0 {
		return fmt.Errorf("flash erase off=%d size=%d: unaligned", off, size)
	}
	if err := f.check(off, int(size)); err != nil {
		return err
	}
	return f.dev.EraseBlocks(int64((f.base+off)/f.block), int64(size/f.block))
}
