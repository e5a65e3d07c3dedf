package hal

import (
	"fmt"
	"sync/atomic"
)

// LineID names one of the clock's GPIO lines.
type LineID uint8

const (
	LineButtonMode LineID = iota
	LineButtonUp
	LineButtonDown
	LineBuzzer
	LineSDI
	LineCLK
	LineLE
	LineOE
	LineA0
	LineA1
	LineA2
	NumLines
)

var lineNames = [NumLines]string{
	LineButtonMode: "BTN_MODE",
	LineButtonUp:   "BTN_UP",
	LineButtonDown: "BTN_DOWN",
	LineBuzzer:     "BUZZER",
	LineSDI:        "SDI",
	LineCLK:        "CLK",
	LineLE:         "LE",
	LineOE:         "OE",
	LineA0:         "A0",
	LineA1:         "A1",
	LineA2:         "A2",
}

func (id LineID) String() string {
	if id < NumLines {
		return lineNames[id]
	}
	return fmt.Sprintf("line(%d)", uint8(id))
}

// GPIO maps line names to lines.
//
// Implementations return a line that ignores writes for unwired IDs.
type GPIO interface {
	Line(id LineID) Line
}

type nullLine struct{}

func (nullLine) Set(bool)  {}
func (nullLine) Get() bool { return false }

// LineSet is a fixed GPIO map. Missing entries behave as unconnected lines.
type LineSet [NumLines]Line

func (s *LineSet) Line(id LineID) Line {
	if s == nil || id >= NumLines || s[id] == nil {
		return nullLine{}
	}
	return s[id]
}

// VirtualLine is a line held in memory. Inputs start high, as with a pull-up.
type VirtualLine struct {
	name  string
	level atomic.Bool
}

// NewVirtualLine returns a line at level high.
func NewVirtualLine(name string, high bool) *VirtualLine {
	l := &VirtualLine{name: name}
	l.level.Store(high)
	return l
}

func (l *VirtualLine) Name() string   { return l.name }
func (l *VirtualLine) Set(high bool)  { l.level.Store(high) }
func (l *VirtualLine) Get() bool      { return l.level.Load() }
func (l *VirtualLine) String() string { return fmt.Sprintf("%s=%t", l.name, l.Get()) }
