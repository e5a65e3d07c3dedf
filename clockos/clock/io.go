package clock

import (
	"dotclock/clockos/rtc"
	"dotclock/clockos/setup"
)

// Clock is the RTC as the core sees it. rtc.Device implements it.
type Clock interface {
	Read() (rtc.Time, error)
	WriteField(f rtc.Field, v int) error
	CheckAlarm(id int) (bool, error)
	WriteAlarm(id int, a rtc.Alarm) error
	ReadAlarm(id int) (rtc.Alarm, error)
	// Temperature returns millidegrees Celsius.
	Temperature() (int32, error)
}

// Line is one digital GPIO line.
type Line interface {
	Set(high bool)
	Get() bool
}

// Lines are the GPIO lines the interrupt callbacks drive. Buttons are active low.
type Lines struct {
	Buttons [setup.NumButtons]Line
	Buzzer  Line

	// Matrix column shift register and row select.
	SDI Line
	CLK Line
	LE  Line
	// OE blanks the panel while high.
	OE Line
	A0 Line
	A1 Line
	A2 Line
}

// ADCChannel names an analog input.
type ADCChannel uint8

const (
	ADCLight ADCChannel = iota
	ADCSupply
)

// ADCMax is the full-scale reading.
const ADCMax = 4095

// ADC samples analog inputs.
type ADC interface {
	Read(ch ADCChannel) uint16
}

// OutputEnable dims the panel by blanking it part-way through each row period.
type OutputEnable interface {
	// BlankAfter blanks the outputs level/MaxBrightness into the current row period.
	// At MaxBrightness the outputs stay on.
	BlankAfter(level int)
}

// Logger receives log lines outside task context.
type Logger interface {
	WriteLineString(s string)
}

// SettingsStore persists settings across power cycles.
type SettingsStore interface {
	Save(s Settings) error
}

// EventLog records notable events for the debug server. x/net/trace.EventLog
// implements it.
type EventLog interface {
	Printf(format string, a ...any)
	Errorf(format string, a ...any)
}

type nopEventLog struct{}

func (nopEventLog) Printf(string, ...any) {}
func (nopEventLog) Errorf(string, ...any) {}

// Metrics counts core activity. Interrupt context calls it, so implementations must
// not block or allocate.
type Metrics interface {
	ButtonPress(b setup.Button, long bool)
	ScrollEnqueued()
	QueueFull()
	Chime()
	AlarmFired(id int)
	DSTChange()
	RTCError()
	EventDropped()
	Brightness(level int)
}

type nopMetrics struct{}

func (nopMetrics) ButtonPress(setup.Button, bool) {}
func (nopMetrics) ScrollEnqueued()                {}
func (nopMetrics) QueueFull()                     {}
func (nopMetrics) Chime()                         {}
func (nopMetrics) AlarmFired(int)                 {}
func (nopMetrics) DSTChange()                     {}
func (nopMetrics) RTCError()                      {}
func (nopMetrics) EventDropped()                  {}
func (nopMetrics) Brightness(int)                 {}
