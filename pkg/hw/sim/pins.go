// Package sim provides in-memory hardware for the DIO engine.
package sim

import (
	"sync"

	"github.com/robotalks/dio.go/pkg/dio"
)

// Event is one recorded output change.
type Event struct {
	PinNum int
	Level  bool
	PWM    *PWM
}

// PWM is a recorded waveform.
type PWM struct {
	Clock    dio.PulseClock
	OnTicks  uint32
	OffTicks uint32
}

// Pins implements dio.Hardware in memory.
type Pins struct {
	lock      sync.Mutex
	inputs    map[int]bool
	outputs   map[int]Event
	events    []Event
	recording bool
}

// New creates Pins with all inputs low. Only the last event of each
// output is kept.
func New() *Pins {
	return &Pins{
		inputs:  make(map[int]bool),
		outputs: make(map[int]Event),
	}
}

// NewRecorder creates Pins which also keep every output event until
// collected by Events.
func NewRecorder() *Pins {
	p := New()
	p.recording = true
	return p
}

// SetInput sets the raw level of an input pin.
func (p *Pins) SetInput(pinNum int, level bool) {
	p.lock.Lock()
	p.inputs[pinNum] = level
	p.lock.Unlock()
}

// ReadInput implements dio.InputReader.
func (p *Pins) ReadInput(pinNum int) bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.inputs[pinNum]
}

// SetOutput implements dio.OutputDriver.
func (p *Pins) SetOutput(pinNum int, level bool) {
	p.record(Event{PinNum: pinNum, Level: level})
}

// SetOutputPWM implements dio.OutputDriver.
func (p *Pins) SetOutputPWM(pinNum int, clock dio.PulseClock, onTicks, offTicks uint32) {
	p.record(Event{
		PinNum: pinNum,
		Level:  onTicks > 0,
		PWM:    &PWM{Clock: clock, OnTicks: onTicks, OffTicks: offTicks},
	})
}

func (p *Pins) record(ev Event) {
	p.lock.Lock()
	p.outputs[ev.PinNum] = ev
	if p.recording {
		p.events = append(p.events, ev)
	}
	p.lock.Unlock()
}

// Output returns the last event of an output pin.
func (p *Pins) Output(pinNum int) (Event, bool) {
	p.lock.Lock()
	defer p.lock.Unlock()
	ev, ok := p.outputs[pinNum]
	return ev, ok
}

// Events returns and clears the recorded events. It is always empty
// unless created by NewRecorder.
func (p *Pins) Events() []Event {
	p.lock.Lock()
	defer p.lock.Unlock()
	evs := p.events
	p.events = nil
	return evs
}
