package rtc

import (
	"fmt"
	"time"
)

// AlarmMode selects which registers an alarm compares.
type AlarmMode uint8

const (
	// AlarmOff leaves the registers alone and clears the interrupt enable.
	AlarmOff AlarmMode = iota
	// AlarmDaily matches hour, minute and (alarm 0 only) second.
	AlarmDaily
	// AlarmWeekly additionally matches the day of the week.
	AlarmWeekly
)

func (m AlarmMode) String() string {
	switch m {
	case AlarmOff:
		return "off"
	case AlarmDaily:
		return "daily"
	case AlarmWeekly:
		return "weekly"
	default:
		return fmt.Sprintf("alarm-mode(%d)", uint8(m))
	}
}

// Alarm is the content of one alarm register block. Alarm 1 on the chip (id 1 here)
// has no seconds register and fires at second 0.
type Alarm struct {
	Mode    AlarmMode
	Second  int
	Minute  int
	Hour    int
	Weekday time.Weekday
}

const (
	maskBit = 0x80
	dyBit   = 0x40
)

func alarmLayout(id int) (reg byte, size int, flag, enable byte, err error) {
	switch id {
	case 0:
		return regAlarm1, 4, stA1F, ctlA1IE, nil
	case 1:
		return regAlarm2, 3, stA2F, ctlA2IE, nil
	default:
		return 0, 0, 0, 0, fmt.Errorf("%w: %d", ErrInvalidAlarm, id)
	}
}

// WriteAlarm programs alarm id (0 or 1) and sets or clears its interrupt enable.
// Any pending flag is cleared so an old match cannot fire the new setting.
func (d *Device) WriteAlarm(id int, a Alarm) error {
	reg, size, flag, enable, err := alarmLayout(id)
	if err != nil {
		return err
	}
	if a.Mode != AlarmOff {
		if a.Second < 0 || a.Second > 59 || a.Minute < 0 || a.Minute > 59 || a.Hour < 0 || a.Hour > 23 {
			return fmt.Errorf("%w: alarm %d at %02d:%02d:%02d", ErrInvalidField, id, a.Hour, a.Minute, a.Second)
		}
		buf := d.w[:size+1]
		buf[0] = reg
		regs := buf[1:]
		if size == 4 {
			regs[0] = toBCD(a.Second)
			regs = regs[1:]
		}
		regs[0] = toBCD(a.Minute)
		regs[1] = toBCD(a.Hour)
		if a.Mode == AlarmWeekly {
			regs[2] = dyBit | weekdayReg(a.Weekday)
		} else {
			regs[2] = maskBit | dyBit | 1
		}
		if err := d.bus.Tx(d.addr, buf, nil); err != nil {
			return fmt.Errorf("rtc: write alarm %d: %w", id, err)
		}
	}

	st, err := d.readReg(regStatus)
	if err != nil {
		return fmt.Errorf("rtc: read status: %w", err)
	}
	if err := d.writeReg(regStatus, st&^flag); err != nil {
		return fmt.Errorf("rtc: write status: %w", err)
	}
	ctl, err := d.readReg(regControl)
	if err != nil {
		return fmt.Errorf("rtc: read control: %w", err)
	}
	if a.Mode == AlarmOff {
		ctl &^= enable
	} else {
		ctl |= enable | ctlINTCN
	}
	if err := d.writeReg(regControl, ctl); err != nil {
		return fmt.Errorf("rtc: write control: %w", err)
	}
	return nil
}

// ReadAlarm decodes alarm id. Mode is AlarmOff when the interrupt enable is clear;
// the time fields are still returned so a disabled alarm keeps its last setting.
func (d *Device) ReadAlarm(id int) (Alarm, error) {
	reg, size, _, enable, err := alarmLayout(id)
	if err != nil {
		return Alarm{}, err
	}
	regs := d.r[:size]
	if err := d.read(reg, regs); err != nil {
		return Alarm{}, fmt.Errorf("rtc: read alarm %d: %w", id, err)
	}
	var a Alarm
	if size == 4 {
		a.Second = fromBCD(regs[0] & 0x7f)
		regs = regs[1:]
	}
	a.Minute = fromBCD(regs[0] & 0x7f)
	a.Hour = decodeHour(regs[1] &^ maskBit)
	day := regs[2]
	if a.Minute > 59 || a.Hour > 23 || a.Second > 59 {
		// Never-programmed chips hold garbage here.
		a = Alarm{}
	}
	if day&dyBit != 0 && day&maskBit == 0 {
		a.Weekday = time.Weekday((int(day&0x07) + 6) % 7)
	}

	ctl, err := d.readReg(regControl)
	if err != nil {
		return Alarm{}, fmt.Errorf("rtc: read control: %w", err)
	}
	switch {
	case ctl&enable == 0:
		a.Mode = AlarmOff
	case day&maskBit != 0:
		a.Mode = AlarmDaily
	default:
		a.Mode = AlarmWeekly
	}
	return a, nil
}

// CheckAlarm reports whether alarm id fired and clears its flag when it did.
func (d *Device) CheckAlarm(id int) (bool, error) {
	_, _, flag, _, err := alarmLayout(id)
	if err != nil {
		return false, err
	}
	st, err := d.readReg(regStatus)
	if err != nil {
		return false, fmt.Errorf("rtc: read status: %w", err)
	}
	if st&flag == 0 {
		return false, nil
	}
	if err := d.writeReg(regStatus, st&^flag); err != nil {
		return true, fmt.Errorf("rtc: clear alarm %d: %w", id, err)
	}
	return true, nil
}
