package rtc

import (
	"fmt"
	"sync"
	"time"
)

// Simulator is an in-memory DS3231 that answers drivers.I2C transactions. It keeps
// its own register file, advances one second per Tick and raises the alarm flags the
// way the chip does. The host emulator and the tests use it in place of a real chip.
type Simulator struct {
	mu   sync.Mutex
	regs [numRegs]byte
	err  error
	txs  int
}

// NewSimulator returns a running chip set to t with the oscillator-stop flag clear.
func NewSimulator(t time.Time) *Simulator {
	s := &Simulator{}
	encodeTime(FromTime(t), s.regs[regTime:regTime+7])
	s.regs[regControl] = ctlINTCN
	s.SetTemperature(21500)
	return s
}

// Tx implements drivers.I2C. The first written byte is the register pointer; the
// remaining bytes are stored from there. r is filled from the pointer on.
func (s *Simulator) Tx(addr uint16, w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if addr != Address {
		return fmt.Errorf("rtc: no device at 0x%02x", addr)
	}
	if len(w) == 0 {
		return fmt.Errorf("rtc: empty write")
	}
	s.txs++
	ptr := int(w[0])
	for _, b := range w[1:] {
		s.store(ptr%numRegs, b)
		ptr++
	}
	for i := range r {
		r[i] = s.regs[ptr%numRegs]
		ptr++
	}
	return nil
}

// ReadRegister and WriteRegister serve callers that still use the register-style bus
// methods.
func (s *Simulator) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return s.Tx(uint16(addr), []byte{reg}, buf)
}

func (s *Simulator) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return s.Tx(uint16(addr), append([]byte{reg}, buf...), nil)
}

func (s *Simulator) store(reg int, b byte) {
	switch reg {
	case regStatus:
		// Flags can be cleared by writing 0 but never set from the bus.
		const clearable = stA1F | stA2F | stOSF
		s.regs[reg] = b&^clearable | s.regs[reg]&b&clearable
	case regTemp, regTemp + 1:
		// read-only
	default:
		s.regs[reg] = b
	}
}

// SetError makes every following transaction fail with err; nil restores the bus.
func (s *Simulator) SetError(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Transactions returns the number of successful bus transactions.
func (s *Simulator) Transactions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txs
}

// SetTemperature loads the temperature registers with mc millidegrees Celsius,
// rounded down to the chip's quarter-degree resolution.
func (s *Simulator) SetTemperature(mc int32) {
	q := mc / 250
	if mc < 0 && mc%250 != 0 {
		q--
	}
	raw := uint16(int16(q) << 6)
	s.mu.Lock()
	s.regs[regTemp] = byte(raw >> 8)
	s.regs[regTemp+1] = byte(raw)
	s.mu.Unlock()
}

// StopOscillator simulates a power loss: time stops and OSF is set.
func (s *Simulator) StopOscillator() {
	s.mu.Lock()
	s.regs[regControl] |= ctlEOSC
	s.regs[regStatus] |= stOSF
	s.mu.Unlock()
}

// Now returns the time held in the registers.
func (s *Simulator) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := decodeTime(s.regs[regTime : regTime+7])
	if !ok {
		return time.Time{}
	}
	return t.Go()
}

// Tick advances the clock by one second and evaluates both alarms.
func (s *Simulator) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.regs[regControl]&ctlEOSC != 0 {
		return
	}
	t, ok := decodeTime(s.regs[regTime : regTime+7])
	if !ok {
		return
	}
	// The chip's 12-hour flag is not preserved; the core always writes 24-hour values.
	encodeTime(FromTime(t.Go().Add(time.Second)), s.regs[regTime:regTime+7])
	now, _ := decodeTime(s.regs[regTime : regTime+7])

	if s.matchAlarm(s.regs[regAlarm1:regAlarm1+4], now) {
		s.regs[regStatus] |= stA1F
	}
	if now.Second == 0 && s.matchAlarm(s.regs[regAlarm2:regAlarm2+3], now) {
		s.regs[regStatus] |= stA2F
	}
}

// matchAlarm compares an alarm block against now. Alarm 1 blocks have four registers
// starting with seconds; alarm 2 blocks have three starting with minutes.
func (s *Simulator) matchAlarm(block []byte, now Time) bool {
	if len(block) == 4 {
		if block[0]&maskBit == 0 && fromBCD(block[0]&0x7f) != now.Second {
			return false
		}
		block = block[1:]
	}
	if block[0]&maskBit == 0 && fromBCD(block[0]&0x7f) != now.Minute {
		return false
	}
	if block[1]&maskBit == 0 && decodeHour(block[1]&^maskBit) != now.Hour {
		return false
	}
	day := block[2]
	if day&maskBit == 0 {
		if day&dyBit != 0 {
			if day&0x07 != weekdayReg(now.Weekday) {
				return false
			}
		} else if fromBCD(day&0x3f) != now.Day {
			return false
		}
	}
	return true
}
