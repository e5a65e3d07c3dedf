package hal

import (
	"bytes"
	"errors"
	"testing"
)

type memBlockDevice struct {
	data  []byte
	block int64
}

func newMemBlockDevice(blocks int, block int64) *memBlockDevice {
	d := &memBlockDevice{data: make([]byte, int64(blocks)*block), block: block}
	for i := range d.data {
		d.data[i] = 0xFF
	}
	return d
}

func (d *memBlockDevice) ReadAt(p []byte, off int64) (int, error) {
	return copy(p, d.data[off:]), nil
}

func (d *memBlockDevice) WriteAt(p []byte, off int64) (int, error) {
	return copy(d.data[off:], p), nil
}

func (d *memBlockDevice) Size() int64           { return int64(len(d.data)) }
func (d *memBlockDevice) EraseBlockSize() int64 { return d.block }

func (d *memBlockDevice) EraseBlocks(start, length int64) error {
	for i := start * d.block; i < (start+length)*d.block; i++ {
		d.data[i] = 0xFF
	}
	return nil
}

func TestRegionFlashGeometry(t *testing.T) {
	dev := newMemBlockDevice(8, 4096)
	f := newRegionFlash(dev, SettingsBlocks)
	if got, want := f.SizeBytes(), uint32(SettingsBlocks*4096); got != want {
		t.Fatalf("SizeBytes() = %d, want %d", got, want)
	}
	if got := f.EraseBlockBytes(); got != 4096 {
		t.Fatalf("EraseBlockBytes() = %d, want 4096", got)
	}

	if _, err := f.WriteAt([]byte("dclk"), 4096); err != nil {
		t.Fatalf("WriteAt() = %v", err)
	}
	if got := dev.data[7*4096 : 7*4096+4]; !bytes.Equal(got, []byte("dclk")) {
		t.Fatalf("device bytes at last block = %q, want %q", got, "dclk")
	}
	if err := f.Erase(4096, 4096); err != nil {
		t.Fatalf("Erase() = %v", err)
	}
	if dev.data[7*4096] != 0xFF {
		t.Fatalf("last block not erased")
	}
}

func TestRegionFlashStaysInRange(t *testing.T) {
	dev := newMemBlockDevice(8, 4096)
	f := newRegionFlash(dev, SettingsBlocks)
	if _, err := f.WriteAt(make([]byte, 8), 2*4096-4); !errors.Is(err, ErrFlashOutOfRange) {
		t.Fatalf("WriteAt() past the end = %v, want ErrFlashOutOfRange", err)
	}
	if err := f.Erase(2*4096, 4096); !errors.Is(err, ErrFlashOutOfRange) {
		t.Fatalf("Erase() past the end = %v, want ErrFlashOutOfRange", err)
	}
	for i, b := range dev.data[:6*4096] {
		if b != 0xFF {
			t.Fatalf("byte %d below the region changed", i)
		}
	}
}

func TestRegionFlashTooSmall(t *testing.T) {
	f := newRegionFlash(newMemBlockDevice(1, 4096), SettingsBlocks)
	if _, ok := f.(stubFlash); !ok {
		t.Fatalf("newRegionFlash() on one block = %T, want stubFlash", f)
	}
}
