// Package sound drives the piezo buzzer from a queue of short tone patterns.
package sound

import (
	"fmt"

	"dotclock/clockos/ring"
)

// ToneID names an entry in the tone catalogue.
type ToneID uint8

const (
	ToneNone ToneID = iota
	ToneKeyclick
	ToneAlarm
	ToneChime
	ToneEvent
	ToneTimerDone
	ToneQueueFull
	ToneBoot
	ToneJingle1
	ToneJingle2
	ToneJingle3
	numTones
)

// vacantTone marks free queue slots.
const vacantTone ToneID = 0xaa

// QueueSize is the sound queue capacity.
const QueueSize = 16

func (id ToneID) String() string {
	switch id {
	case ToneNone:
		return "none"
	case ToneKeyclick:
		return "keyclick"
	case ToneAlarm:
		return "alarm"
	case ToneChime:
		return "chime"
	case ToneEvent:
		return "event"
	case ToneTimerDone:
		return "timer-done"
	case ToneQueueFull:
		return "queue-full"
	case ToneBoot:
		return "boot"
	case ToneJingle1, ToneJingle2, ToneJingle3:
		return fmt.Sprintf("jingle-%d", id-ToneJingle1+1)
	default:
		return fmt.Sprintf("tone(%d)", uint8(id))
	}
}

// JingleTone maps a calendar event jingle number to a tone; 0 is the plain event tone.
func JingleTone(jingle uint8) ToneID {
	if jingle == 0 || int(ToneJingle1)+int(jingle)-1 >= int(numTones) {
		return ToneEvent
	}
	return ToneJingle1 + ToneID(jingle-1)
}

// Step is one buzzer pulse followed by silence.
type Step struct {
	OnMs  uint16
	OffMs uint16
}

// Tone is a pattern of steps played Repeat times.
type Tone struct {
	Steps  []Step
	Repeat uint8
}

// Catalogue maps tone IDs to patterns.
var Catalogue = [numTones]Tone{
	ToneKeyclick:  {Steps: []Step{{15, 0}}, Repeat: 1},
	ToneAlarm:     {Steps: []Step{{100, 100}}, Repeat: 4},
	ToneChime:     {Steps: []Step{{250, 150}}, Repeat: 2},
	ToneEvent:     {Steps: []Step{{60, 60}}, Repeat: 6},
	ToneTimerDone: {Steps: []Step{{400, 200}}, Repeat: 3},
	ToneQueueFull: {Steps: []Step{{30, 70}}, Repeat: 3},
	ToneBoot:      {Steps: []Step{{80, 0}}, Repeat: 1},
	ToneJingle1:   {Steps: []Step{{120, 60}, {120, 60}, {250, 120}, {250, 120}, {250, 120}, {500, 300}}, Repeat: 1},
	ToneJingle2:   {Steps: []Step{{60, 40}, {60, 40}, {60, 200}}, Repeat: 3},
	ToneJingle3:   {Steps: []Step{{300, 100}, {100, 100}, {300, 300}}, Repeat: 2},
}

// Buzzer is the output line of an active buzzer.
type Buzzer interface {
	Set(on bool)
}

// Queue holds pending tones.
type Queue = ring.Queue[ToneID]

// NewQueue returns an empty tone queue.
func NewQueue() *Queue { return ring.NewQueue[ToneID](QueueSize, vacantTone) }

// Envelope plays queued tones one millisecond at a time. Tick and Silence belong to
// the millisecond context; they never block or allocate.
type Envelope struct {
	buzzer Buzzer
	queue  *Queue

	current ToneID
	step    int
	repeat  uint8
	on      bool
	left    uint16
}

// NewEnvelope returns an idle envelope pulling from q.
func NewEnvelope(b Buzzer, q *Queue) *Envelope {
	return &Envelope{buzzer: b, queue: q}
}

// Playing returns the tone in progress, or ToneNone.
func (e *Envelope) Playing() ToneID { return e.current }

// Tick advances the pattern by one millisecond.
func (e *Envelope) Tick() {
	if e.current == ToneNone {
		if !e.next() {
			return
		}
	}
	if e.left > 0 {
		e.left--
	}
	for e.left == 0 && e.current != ToneNone {
		e.advance()
	}
}

// Silence stops the tone in progress; queued tones still play.
func (e *Envelope) Silence() {
	e.current = ToneNone
	e.set(false)
}

// SilenceTone stops the tone in progress when it is id.
func (e *Envelope) SilenceTone(id ToneID) {
	if e.current == id {
		e.Silence()
	}
}

func (e *Envelope) next() bool {
	for {
		id, ok := e.queue.Dequeue()
		if !ok {
			return false
		}
		if id == ToneNone || id >= numTones || len(Catalogue[id].Steps) == 0 {
			continue
		}
		e.current = id
		e.step = 0
		e.repeat = 0
		e.startStep()
		return true
	}
}

func (e *Envelope) startStep() {
	s := Catalogue[e.current].Steps[e.step]
	e.on = true
	e.left = s.OnMs
	e.set(true)
}

func (e *Envelope) advance() {
	tone := &Catalogue[e.current]
	if e.on {
		e.on = false
		e.set(false)
		e.left = tone.Steps[e.step].OffMs
		if e.left > 0 {
			return
		}
	}
	e.step++
	if e.step >= len(tone.Steps) {
		e.step = 0
		e.repeat++
		if e.repeat >= tone.Repeat {
			e.current = ToneNone
			return
		}
	}
	e.startStep()
}

func (e *Envelope) set(on bool) {
	if e.buzzer != nil {
		e.buzzer.Set(on)
	}
}
