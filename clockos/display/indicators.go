package display

import "time"

// Indicators are the panel's status LEDs.
type Indicators struct {
	MoveOn     bool
	AlarmOn    bool
	CountDown  bool
	Fahrenheit bool
	Celsius    bool
	AM         bool
	PM         bool
	CountUp    bool

	// Weekday lamps, indexed by time.Weekday.
	Weekday [7]bool

	Hourly    bool
	AutoLight bool
}

const (
	bitMoveOn = 1 << iota
	bitAlarmOn
	bitCountDown
	bitFahrenheit
	bitCelsius
	bitAM
	bitPM
	bitCountUp
	bitHourly
	bitAutoLight
	bitWeekday0
)

// leftColumn lists the indicators in column pair 0..1, one per row.
var leftColumn = [Rows]uint32{
	bitMoveOn, bitAlarmOn, bitCountDown, bitFahrenheit, bitCelsius, bitAM, bitPM, bitCountUp,
}

// Row 0 lamps: column pair start for each bit.
var topRow = []struct {
	bit uint32
	col int
}{
	{bitWeekday0 << time.Monday, 3},
	{bitWeekday0 << time.Tuesday, 6},
	{bitWeekday0 << time.Wednesday, 9},
	{bitWeekday0 << time.Thursday, 12},
	{bitWeekday0 << time.Friday, 15},
	{bitWeekday0 << time.Saturday, 18},
	{bitWeekday0 << time.Sunday, 21},
	{bitHourly, 25},
	{bitAutoLight, 28},
}

// Bits packs the indicators for atomic publication.
func (ind Indicators) Bits() uint32 {
	var b uint32
	set := func(on bool, bit uint32) {
		if on {
			b |= bit
		}
	}
	set(ind.MoveOn, bitMoveOn)
	set(ind.AlarmOn, bitAlarmOn)
	set(ind.CountDown, bitCountDown)
	set(ind.Fahrenheit, bitFahrenheit)
	set(ind.Celsius, bitCelsius)
	set(ind.AM, bitAM)
	set(ind.PM, bitPM)
	set(ind.CountUp, bitCountUp)
	set(ind.Hourly, bitHourly)
	set(ind.AutoLight, bitAutoLight)
	for d, on := range ind.Weekday {
		set(on, bitWeekday0<<d)
	}
	return b
}

// IndicatorsFrom unpacks Bits.
func IndicatorsFrom(b uint32) Indicators {
	var ind Indicators
	ind.MoveOn = b&bitMoveOn != 0
	ind.AlarmOn = b&bitAlarmOn != 0
	ind.CountDown = b&bitCountDown != 0
	ind.Fahrenheit = b&bitFahrenheit != 0
	ind.Celsius = b&bitCelsius != 0
	ind.AM = b&bitAM != 0
	ind.PM = b&bitPM != 0
	ind.CountUp = b&bitCountUp != 0
	ind.Hourly = b&bitHourly != 0
	ind.AutoLight = b&bitAutoLight != 0
	for d := range ind.Weekday {
		ind.Weekday[d] = b&(bitWeekday0<<d) != 0
	}
	return ind
}

// rowBits returns the indicator plane byte for section s, row r.
func (ind Indicators) rowBits(s, r int) byte {
	return packedRowBits(ind.Bits(), s, r)
}

func packedRowBits(bits uint32, s, r int) byte {
	var out byte
	if s == 0 && bits&leftColumn[r] != 0 {
		out |= indicatorColumnMask
	}
	if r != 0 {
		return out
	}
	for _, lamp := range topRow {
		if bits&lamp.bit == 0 {
			continue
		}
		for col := lamp.col; col < lamp.col+2; col++ {
			if col/8 == s {
				out |= 1 << (col % 8)
			}
		}
	}
	return out
}
