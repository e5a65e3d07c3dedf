// Package rtc reads and writes the DS3231 real-time clock registers.
//
// The clock core only needs field-level access: reading the current time, writing a
// single field after a setup step, polling and clearing the alarm flags, and
// programming the two hardware alarms. Everything goes through drivers.I2C so the same
// code runs on a board bus, a Linux i2c-dev adapter and the in-memory Simulator.
package rtc

import (
	"errors"
	"fmt"
	"time"

	"dotclock/clockos/calendar"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ds3231"
)

// Address is the fixed DS3231 bus address.
const Address = ds3231.Address

// Register map.
const (
	regTime    = ds3231.REG_TIMEDATE
	regAlarm1  = ds3231.REG_ALARMONE
	regAlarm2  = ds3231.REG_ALARMTWO
	regControl = ds3231.REG_CONTROL
	regStatus  = ds3231.REG_STATUS
	regTemp    = ds3231.REG_TEMP

	numRegs = 0x13
)

// Control and status bits.
const (
	ctlA1IE  = 1 << ds3231.A1IE
	ctlA2IE  = 1 << ds3231.A2IE
	ctlINTCN = 1 << ds3231.INTCN
	ctlEOSC  = 1 << ds3231.EOSC

	stA1F = 1 << ds3231.A1F
	stA2F = 1 << ds3231.A2F
	stOSF = 1 << ds3231.OSF

	centuryBit = 0x80
	hour12Bit  = 0x40
	pmBit      = 0x20
)

var (
	// ErrInvalidField is returned for an unknown field or an out-of-range value.
	ErrInvalidField = errors.New("rtc: invalid field")
	// ErrInvalidAlarm is returned for an alarm id other than 0 or 1.
	ErrInvalidAlarm = errors.New("rtc: invalid alarm")
)

// Field names one writable time register.
type Field uint8

const (
	FieldSecond Field = iota
	FieldMinute
	FieldHour
	FieldWeekday
	FieldDay
	FieldMonth
	FieldYear
)

func (f Field) String() string {
	switch f {
	case FieldSecond:
		return "second"
	case FieldMinute:
		return "minute"
	case FieldHour:
		return "hour"
	case FieldWeekday:
		return "weekday"
	case FieldDay:
		return "day"
	case FieldMonth:
		return "month"
	case FieldYear:
		return "year"
	default:
		return fmt.Sprintf("field(%d)", uint8(f))
	}
}

// Time is the decoded content of the time registers.
type Time struct {
	Second  int
	Minute  int
	Hour    int
	Weekday time.Weekday
	Day     int
	Month   time.Month
	Year    int
}

// FromTime converts t, ignoring its location.
func FromTime(t time.Time) Time {
	return Time{
		Second:  t.Second(),
		Minute:  t.Minute(),
		Hour:    t.Hour(),
		Weekday: t.Weekday(),
		Day:     t.Day(),
		Month:   t.Month(),
		Year:    t.Year(),
	}
}

// Go returns t as a UTC time.Time.
func (t Time) Go() time.Time {
	return time.Date(t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second, 0, time.UTC)
}

func (t Time) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second)
}

// Device is a DS3231 on an I2C bus.
type Device struct {
	bus  drivers.I2C
	addr uint16
	chip ds3231.Device

	w [8]byte
	r [8]byte
}

// New returns a device at the default address. It does not touch the bus.
func New(bus drivers.I2C) *Device {
	return &Device{bus: bus, addr: Address, chip: ds3231.New(bus)}
}

// Configure starts the oscillator, selects alarm interrupts on INT/SQW and clears
// stale alarm flags. Alarm enables are left alone; the caller disables them at boot.
func (d *Device) Configure() error {
	if !d.chip.IsRunning() {
		if err := d.chip.SetRunning(true); err != nil {
			return fmt.Errorf("rtc: start oscillator: %w", err)
		}
	}
	ctl, err := d.readReg(regControl)
	if err != nil {
		return fmt.Errorf("rtc: configure: %w", err)
	}
	if err := d.writeReg(regControl, ctl|ctlINTCN); err != nil {
		return fmt.Errorf("rtc: configure: %w", err)
	}
	st, err := d.readReg(regStatus)
	if err != nil {
		return fmt.Errorf("rtc: configure: %w", err)
	}
	if err := d.writeReg(regStatus, st&^(stA1F|stA2F)); err != nil {
		return fmt.Errorf("rtc: configure: %w", err)
	}
	return nil
}

// TimeValid reports whether the oscillator ran continuously since the time was set.
func (d *Device) TimeValid() bool { return d.chip.IsTimeValid() }

// Temperature returns the die temperature in millidegrees Celsius.
func (d *Device) Temperature() (int32, error) {
	mc, err := d.chip.ReadTemperature()
	if err != nil {
		return 0, fmt.Errorf("rtc: read temperature: %w", err)
	}
	return mc, nil
}

// Read returns the current time. The weekday is derived from the date so a chip
// with an unset weekday register still reports the right day.
func (d *Device) Read() (Time, error) {
	buf := d.r[:7]
	if err := d.read(regTime, buf); err != nil {
		return Time{}, fmt.Errorf("rtc: read time: %w", err)
	}
	t, ok := decodeTime(buf)
	if !ok {
		return Time{}, fmt.Errorf("rtc: read time: %w: % x", ErrInvalidField, buf)
	}
	return t, nil
}

func decodeTime(buf []byte) (Time, bool) {
	t := Time{
		Second: fromBCD(buf[0] & 0x7f),
		Minute: fromBCD(buf[1] & 0x7f),
		Hour:   decodeHour(buf[2]),
		Day:    fromBCD(buf[4] & 0x3f),
		Month:  time.Month(fromBCD(buf[5] & 0x1f)),
		Year:   2000 + fromBCD(buf[6]),
	}
	if buf[5]&centuryBit != 0 {
		t.Year += 100
	}
	if t.Month < time.January || t.Month > time.December || t.Day < 1 || t.Day > 31 {
		return Time{}, false
	}
	t.Weekday = calendar.DayOfWeek(t.Year, t.Month, t.Day)
	return t, true
}

func encodeTime(t Time, buf []byte) {
	month := toBCD(int(t.Month))
	year := t.Year - 2000
	if year >= 100 {
		year -= 100
		month |= centuryBit
	}
	buf[0] = toBCD(t.Second)
	buf[1] = toBCD(t.Minute)
	buf[2] = toBCD(t.Hour)
	buf[3] = weekdayReg(calendar.DayOfWeek(t.Year, t.Month, t.Day))
	buf[4] = toBCD(t.Day)
	buf[5] = month
	buf[6] = toBCD(year)
}

// SetTime writes every time register and clears the oscillator-stop flag.
func (d *Device) SetTime(t Time) error {
	if err := checkTime(t); err != nil {
		return err
	}
	buf := d.w[:8]
	buf[0] = regTime
	encodeTime(t, buf[1:])
	if err := d.bus.Tx(d.addr, buf, nil); err != nil {
		return fmt.Errorf("rtc: set time: %w", err)
	}
	return d.clearOSF()
}

// WriteField writes one time field. FieldYear takes the full year (2000..2199) and
// keeps the month; day, month and year writes also rewrite the weekday register.
func (d *Device) WriteField(f Field, v int) error {
	var err error
	switch f {
	case FieldSecond:
		err = d.writeChecked(regTime+0, v, 0, 59)
	case FieldMinute:
		err = d.writeChecked(regTime+1, v, 0, 59)
	case FieldHour:
		err = d.writeChecked(regTime+2, v, 0, 23)
	case FieldWeekday:
		if v < 0 || v > 6 {
			return fmt.Errorf("%w: weekday %d", ErrInvalidField, v)
		}
		err = d.writeReg(regTime+3, weekdayReg(time.Weekday(v)))
	case FieldDay:
		err = d.writeChecked(regTime+4, v, 1, 31)
	case FieldMonth:
		if v < 1 || v > 12 {
			return fmt.Errorf("%w: month %d", ErrInvalidField, v)
		}
		var cur byte
		if cur, err = d.readReg(regTime + 5); err == nil {
			err = d.writeReg(regTime+5, cur&centuryBit|toBCD(v))
		}
	case FieldYear:
		if v < 2000 || v > 2199 {
			return fmt.Errorf("%w: year %d", ErrInvalidField, v)
		}
		var cur byte
		if cur, err = d.readReg(regTime + 5); err == nil {
			cur &^= centuryBit
			if v >= 2100 {
				cur |= centuryBit
			}
			d.w[0], d.w[1], d.w[2] = regTime+5, cur, toBCD((v-2000)%100)
			err = d.bus.Tx(d.addr, d.w[:3], nil)
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidField, f)
	}
	if err != nil {
		return fmt.Errorf("rtc: write %s: %w", f, err)
	}
	if f == FieldDay || f == FieldMonth || f == FieldYear {
		if err := d.syncWeekday(); err != nil {
			return err
		}
	}
	return d.clearOSF()
}

func (d *Device) writeChecked(reg byte, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%w: %d not in %d..%d", ErrInvalidField, v, lo, hi)
	}
	return d.writeReg(reg, toBCD(v))
}

func (d *Device) syncWeekday() error {
	t, err := d.Read()
	if err != nil {
		return err
	}
	if err := d.writeReg(regTime+3, weekdayReg(t.Weekday)); err != nil {
		return fmt.Errorf("rtc: write weekday: %w", err)
	}
	return nil
}

func (d *Device) clearOSF() error {
	st, err := d.readReg(regStatus)
	if err != nil {
		return fmt.Errorf("rtc: read status: %w", err)
	}
	if st&stOSF == 0 {
		return nil
	}
	if err := d.writeReg(regStatus, st&^stOSF); err != nil {
		return fmt.Errorf("rtc: write status: %w", err)
	}
	return nil
}

func (d *Device) read(reg byte, p []byte) error {
	d.w[0] = reg
	return d.bus.Tx(d.addr, d.w[:1], p)
}

func (d *Device) readReg(reg byte) (byte, error) {
	if err := d.read(reg, d.r[:1]); err != nil {
		return 0, err
	}
	return d.r[0], nil
}

func (d *Device) writeReg(reg, v byte) error {
	d.w[0], d.w[1] = reg, v
	return d.bus.Tx(d.addr, d.w[:2], nil)
}

func checkTime(t Time) error {
	switch {
	case t.Second < 0 || t.Second > 59, t.Minute < 0 || t.Minute > 59, t.Hour < 0 || t.Hour > 23:
		return fmt.Errorf("%w: time %s", ErrInvalidField, t)
	case t.Year < 2000 || t.Year > 2199, t.Month < time.January || t.Month > time.December:
		return fmt.Errorf("%w: date %s", ErrInvalidField, t)
	case t.Day < 1 || t.Day > calendar.MonthDays(t.Year, t.Month):
		return fmt.Errorf("%w: date %s", ErrInvalidField, t)
	}
	return nil
}

// weekdayReg maps Sunday..Saturday onto the chip's 1..7 day register.
func weekdayReg(wd time.Weekday) byte { return byte(wd%7) + 1 }

func toBCD(v int) byte { return byte(v/10<<4 | v%10) }

func fromBCD(b byte) int { return int(b>>4)*10 + int(b&0x0f) }

func decodeHour(b byte) int {
	if b&hour12Bit == 0 {
		return fromBCD(b & 0x3f)
	}
	h := fromBCD(b & 0x1f)
	if h == 12 {
		h = 0
	}
	if b&pmBit != 0 {
		h += 12
	}
	return h
}
