package dio

import "fmt"

// InputReader samples DI pins.
type InputReader interface {
	ReadInput(pinNum int) bool
}

// OutputDriver drives DO pins.
type OutputDriver interface {
	// SetOutput drives a static level.
	SetOutput(pinNum int, level bool)
	// SetOutputPWM drives a waveform with onTicks active and offTicks
	// inactive ticks of the given clock.
	SetOutputPWM(pinNum int, clock PulseClock, onTicks, offTicks uint32)
}

// Hardware is everything the engine needs from the board.
type Hardware interface {
	InputReader
	OutputDriver
}

// PinMap maps a logical pin id to a physical pin number.
type PinMap struct {
	ID  PinID `yaml:"id"`
	Num int   `yaml:"num"`
}

// Board describes the pins compiled into the engine.
type Board struct {
	Name    string
	Inputs  [NumDI]PinMap
	Outputs [NumDO]PinMap
}

// DefaultBoard is the pin assignment of the reference module.
var DefaultBoard = Board{
	Name:    "default",
	Inputs:  [NumDI]PinMap{{ID: 0, Num: 12}, {ID: 1, Num: 15}},
	Outputs: [NumDO]PinMap{{ID: 0, Num: 0}, {ID: 1, Num: 8}},
}

// Validate checks pin ids are unique per direction.
func (b *Board) Validate() error {
	seen := make(map[PinID]bool)
	for _, m := range b.Inputs {
		if seen[m.ID] {
			return fmt.Errorf("duplicated DI pin id %d", m.ID)
		}
		seen[m.ID] = true
	}
	seen = make(map[PinID]bool)
	for _, m := range b.Outputs {
		if seen[m.ID] {
			return fmt.Errorf("duplicated DO pin id %d", m.ID)
		}
		seen[m.ID] = true
	}
	return nil
}
