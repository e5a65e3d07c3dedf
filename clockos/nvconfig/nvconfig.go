// Package nvconfig keeps the clock settings in flash.
//
// Two erase blocks hold alternating copies of the record. Save writes the older slot,
// so a power cut during a write leaves the previous copy intact. Load returns the
// valid copy with the highest sequence number.
package nvconfig

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"sync"

	"dotclock/clockos/calendar"
	"dotclock/clockos/clock"
	"dotclock/clockos/setup"
	"dotclock/hal"
)

const (
	magic   = 0x4b4c4344 // "DCLK"
	version = 1

	headerBytes  = 12
	payloadBytes = 20
	recordBytes  = headerBytes + payloadBytes + 4
)

var (
	// ErrNoRecord means neither slot holds a valid record.
	ErrNoRecord = errors.New("nvconfig: no valid settings record")
	// ErrTooSmall means the flash cannot hold two slots.
	ErrTooSmall = errors.New("nvconfig: flash too small")
)

// Store persists clock.Settings. It implements clock.SettingsStore.
type Store struct {
	mu    sync.Mutex
	flash hal.Flash
	block uint32
	seq   uint32
	// slot is the slot written last, or -1.
	slot int
}

// New returns a store using the first two erase blocks of flash.
func New(flash hal.Flash) (*Store, error) {
	bs := flash.EraseBlockBytes()
	if bs < recordBytes || flash.SizeBytes() < 2*bs {
		return nil, ErrTooSmall
	}
	return &Store{flash: flash, block: bs, slot: -1}, nil
}

// Load returns the newest valid settings record.
func (s *Store) Load() (clock.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	best, bestSeq := -1, uint32(0)
	var bestSettings clock.Settings
	for slot := 0; slot < 2; slot++ {
		var buf [recordBytes]byte
		if _, err := s.flash.ReadAt(buf[:], uint32(slot)*s.block); err != nil {
			return clock.Settings{}, fmt.Errorf("nvconfig: read slot %d: %w", slot, err)
		}
		seq, st, ok := decode(buf[:])
		if !ok {
			continue
		}
		if best < 0 || int32(seq-bestSeq) > 0 {
			best, bestSeq, bestSettings = slot, seq, st
		}
	}
	if best < 0 {
		return clock.Settings{}, ErrNoRecord
	}
	s.slot, s.seq = best, bestSeq
	return bestSettings.Normalize(), nil
}

// Save writes st to the slot not written last.
func (s *Store) Save(st clock.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := 0
	if s.slot == 0 {
		slot = 1
	}
	off := uint32(slot) * s.block
	buf := encode(s.seq+1, st)
	if err := s.flash.Erase(off, s.block); err != nil {
		return fmt.Errorf("nvconfig: erase slot %d: %w", slot, err)
	}
	if _, err := s.flash.WriteAt(buf, off); err != nil {
		return fmt.Errorf("nvconfig: write slot %d: %w", slot, err)
	}
	s.seq++
	s.slot = slot
	return nil
}

// encode builds a record.
//
// Layout (little-endian):
//   - u32: magic "DCLK"
//   - u16: version
//   - u16: payload length
//   - u32: sequence number
//   - payload, see putSettings
//   - u32: CRC-32 (IEEE) of everything before it
func encode(seq uint32, st clock.Settings) []byte {
	buf := make([]byte, recordBytes)
	binary.LittleEndian.PutUint32(buf[0:4], magic)
	binary.LittleEndian.PutUint16(buf[4:6], version)
	binary.LittleEndian.PutUint16(buf[6:8], payloadBytes)
	binary.LittleEndian.PutUint32(buf[8:12], seq)
	putSettings(buf[headerBytes:headerBytes+payloadBytes], st)
	crc := crc32.ChecksumIEEE(buf[:headerBytes+payloadBytes])
	binary.LittleEndian.PutUint32(buf[headerBytes+payloadBytes:], crc)
	return buf
}

func decode(buf []byte) (seq uint32, st clock.Settings, ok bool) {
	if len(buf) < recordBytes {
		return 0, st, false
	}
	if binary.LittleEndian.Uint32(buf[0:4]) != magic ||
		binary.LittleEndian.Uint16(buf[4:6]) != version ||
		binary.LittleEndian.Uint16(buf[6:8]) != payloadBytes {
		return 0, st, false
	}
	crc := binary.LittleEndian.Uint32(buf[headerBytes+payloadBytes:])
	if crc32.ChecksumIEEE(buf[:headerBytes+payloadBytes]) != crc {
		return 0, st, false
	}
	return binary.LittleEndian.Uint32(buf[8:12]), getSettings(buf[headerBytes:]), true
}

// putSettings layout:
//   - u8: language, time format, chime mode, chime on, chime off, DST zone,
//     brightness, temperature unit
//   - u8: flags (bit 0 keyclick, bit 1 scrolling, bit 2 auto brightness)
//   - u8: scroll period (minutes)
//   - u16: scroll dot time (ms)
//   - u16: idle timeout (s)
//   - u16: alarm ring time (s)
//   - 4 bytes reserved
func putSettings(b []byte, st clock.Settings) {
	b[0] = byte(st.Language)
	b[1] = byte(st.TimeFormat)
	b[2] = byte(st.Chime)
	b[3] = byte(st.ChimeOn)
	b[4] = byte(st.ChimeOff)
	b[5] = byte(st.DST)
	b[6] = byte(st.Brightness)
	b[7] = byte(st.TemperatureUnit)
	var flags byte
	if st.Keyclick {
		flags |= 1
	}
	if st.ScrollEnabled {
		flags |= 2
	}
	if st.AutoBrightness {
		flags |= 4
	}
	b[8] = flags
	b[9] = byte(st.ScrollPeriod)
	binary.LittleEndian.PutUint16(b[10:12], uint16(st.ScrollDotMs))
	binary.LittleEndian.PutUint16(b[12:14], uint16(st.IdleTimeout))
	binary.LittleEndian.PutUint16(b[14:16], uint16(st.AlarmRingSeconds))
}

func getSettings(b []byte) clock.Settings {
	return clock.Settings{
		Language:         calendar.Language(b[0]),
		TimeFormat:       setup.TimeFormat(b[1]),
		Chime:            setup.ChimeMode(b[2]),
		ChimeOn:          int(b[3]),
		ChimeOff:         int(b[4]),
		DST:              calendar.DSTZone(b[5]),
		Brightness:       int(b[6]),
		TemperatureUnit:  clock.TemperatureUnit(b[7]),
		Keyclick:         b[8]&1 != 0,
		ScrollEnabled:    b[8]&2 != 0,
		AutoBrightness:   b[8]&4 != 0,
		ScrollPeriod:     int(b[9]),
		ScrollDotMs:      int(binary.LittleEndian.Uint16(b[10:12])),
		IdleTimeout:      int(binary.LittleEndian.Uint16(b[12:14])),
		AlarmRingSeconds: int(binary.LittleEndian.Uint16(b[14:16])),
	}
}
