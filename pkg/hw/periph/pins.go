// Package periph drives board GPIOs through periph.io.
package periph

import (
	"fmt"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/robotalks/dio.go/pkg/dio"
	fx "github.com/robotalks/dio.go/pkg/framework"
)

// Pins implements dio.Hardware with the GPIOs of a board. Pin numbers
// map to periph names GPIO<num>.
type Pins struct {
	inputs  map[int]gpio.PinIO
	outputs map[int]gpio.PinIO
}

// Open initializes the host drivers and claims the board pins: inputs
// without edge detection, outputs driven low. Pins already claimed are
// released when a later one fails.
func Open(board dio.Board) (pins *Pins, err error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %v", err)
	}
	p := &Pins{
		inputs:  make(map[int]gpio.PinIO),
		outputs: make(map[int]gpio.PinIO),
	}
	defer func() {
		if err != nil {
			p.Close()
		}
	}()
	for _, m := range board.Inputs {
		pin, err := resolve(m.Num)
		if err != nil {
			return nil, err
		}
		p.inputs[m.Num] = pin
		if err = pin.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("set %s to input: %v", pin.Name(), err)
		}
	}
	for _, m := range board.Outputs {
		pin, err := resolve(m.Num)
		if err != nil {
			return nil, err
		}
		p.outputs[m.Num] = pin
		if err = pin.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("set %s to output: %v", pin.Name(), err)
		}
	}
	return p, nil
}

// Close halts every claimed pin and leaves outputs low.
func (p *Pins) Close() error {
	var errs fx.AggregatedError
	for _, pin := range p.inputs {
		errs.Add(pin.Halt())
	}
	for _, pin := range p.outputs {
		errs.Add(pin.Halt(), pin.Out(gpio.Low))
	}
	return errs.Aggregate()
}

func resolve(num int) (gpio.PinIO, error) {
	name := fmt.Sprintf("GPIO%d", num)
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("pin %s not found", name)
	}
	return pin, nil
}

// ReadInput implements dio.InputReader.
func (p *Pins) ReadInput(pinNum int) bool {
	pin := p.inputs[pinNum]
	return pin != nil && pin.Read() == gpio.High
}

// SetOutput implements dio.OutputDriver.
func (p *Pins) SetOutput(pinNum int, level bool) {
	pin := p.outputs[pinNum]
	if pin == nil {
		return
	}
	if err := pin.Out(gpio.Level(level)); err != nil {
		glog.Errorf("%s: %v", pin.Name(), err)
	}
}

// SetOutputPWM implements dio.OutputDriver.
func (p *Pins) SetOutputPWM(pinNum int, clock dio.PulseClock, onTicks, offTicks uint32) {
	pin := p.outputs[pinNum]
	if pin == nil {
		return
	}
	duty, freq := pwmOf(clock, onTicks, offTicks)
	if freq == 0 {
		p.SetOutput(pinNum, onTicks > 0)
		return
	}
	if err := pin.PWM(duty, freq); err != nil {
		glog.Errorf("%s: PWM %v at %v: %v", pin.Name(), duty, freq, err)
	}
}

func pwmOf(clock dio.PulseClock, onTicks, offTicks uint32) (gpio.Duty, physic.Frequency) {
	period := uint64(onTicks) + uint64(offTicks)
	if period == 0 {
		return 0, 0
	}
	duty := gpio.Duty(uint64(onTicks) * uint64(gpio.DutyMax) / period)
	freq := physic.Frequency(uint64(clock) * uint64(physic.Hertz) / period)
	return duty, freq
}
