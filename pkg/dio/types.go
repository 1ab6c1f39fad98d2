package dio

import (
	"errors"
	"fmt"
)

// Channel counts compiled into the engine.
const (
	NumDI = 2
	NumDO = 2
)

// PinID is the logical id of a DI or DO channel.
type PinID uint32

// FunctionType selects the output behavior of a DO channel.
type FunctionType uint32

// Function types.
const (
	FunctionNotSelected FunctionType = iota
	FunctionOneshot
	FunctionPulse
	FunctionInterlock
	FunctionInvert
	FunctionGenerate
)

var functionNames = [...]string{"not-selected", "oneshot", "pulse", "interlock", "invert", "generate"}

func (f FunctionType) String() string {
	if int(f) < len(functionNames) {
		return functionNames[f]
	}
	return fmt.Sprintf("function(%d)", uint32(f))
}

// ParseFunctionType parses the name produced by String.
func ParseFunctionType(s string) (FunctionType, error) {
	for n, name := range functionNames {
		if name == s {
			return FunctionType(n), nil
		}
	}
	return FunctionNotSelected, fmt.Errorf("unknown function %q", s)
}

// EdgeType is the DI edge condition of an edge relation.
type EdgeType uint32

// Edge types.
const (
	EdgeRising EdgeType = iota
	EdgeFalling
	EdgeBoth
)

var edgeNames = [...]string{"rising", "falling", "both"}

func (e EdgeType) String() string {
	if int(e) < len(edgeNames) {
		return edgeNames[e]
	}
	return fmt.Sprintf("edge(%d)", uint32(e))
}

// ParseEdgeType parses the name produced by String.
func ParseEdgeType(s string) (EdgeType, error) {
	for n, name := range edgeNames {
		if name == s {
			return EdgeType(n), nil
		}
	}
	return EdgeRising, fmt.Errorf("unknown edge %q", s)
}

// PulseClock is the PWM source clock in Hz.
type PulseClock uint32

// Supported pulse clocks.
const (
	Clock32K PulseClock = 32768
	Clock2M  PulseClock = 2000000
)

// Normalize coerces unsupported clocks to Clock2M.
func (c PulseClock) Normalize() PulseClock {
	if c == Clock32K {
		return c
	}
	return Clock2M
}

// Mode is the trigger mode of a DO channel.
type Mode int

// Modes.
const (
	ModeNone Mode = iota
	ModeSingle
	ModeEdge
	ModeCount
)

func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeEdge:
		return "edge"
	case ModeCount:
		return "count"
	}
	return "none"
}

// Step is the state of a PwmController.
type Step int

// Steps.
const (
	StepInitialize Step = iota
	StepStart
	StepDelay
	StepOutput
	StepRunning
	StepStop
)

var stepNames = [...]string{"initialize", "start", "delay", "output", "running", "stop"}

func (s Step) String() string {
	if s >= 0 && int(s) < len(stepNames) {
		return stepNames[s]
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// PulseSettings describes a PWM waveform in clock ticks.
type PulseSettings struct {
	Clock          PulseClock
	EffectiveTicks uint32
	PeriodTicks    uint32
}

// OffTicks is the inactive part of the period.
func (s PulseSettings) OffTicks() uint32 {
	if s.PeriodTicks < s.EffectiveTicks {
		return 0
	}
	return s.PeriodTicks - s.EffectiveTicks
}

// Output holds the settings shared by every DO mode.
type Output struct {
	Function    FunctionType
	Level       bool
	Pulse       PulseSettings
	DelayTicks  uint32
	OutputTicks uint32
}

// OutputConfig is the configuration of a DO channel, one of
// SingleConfig, EdgeConfig or CountConfig.
type OutputConfig interface {
	Mode() Mode
	Settings() Output
	validate() error
}

// SingleConfig drives a DO channel without any relation.
type SingleConfig struct {
	Output
}

// EdgeConfig triggers a DO channel from edges of a DI channel.
type EdgeConfig struct {
	Output
	Input           PinID
	Edge            EdgeType
	ChatteringTicks uint32
}

// CountConfig activates a DO channel inside a DI pulse count window.
type CountConfig struct {
	Output
	Input      PinID
	StartCount uint32
	StopCount  uint32
}

// Mode implements OutputConfig.
func (c *SingleConfig) Mode() Mode { return ModeSingle }

// Settings implements OutputConfig.
func (c *SingleConfig) Settings() Output { return c.Output }

func (c *SingleConfig) validate() error {
	switch c.Function {
	case FunctionOneshot, FunctionPulse:
		return nil
	}
	return ErrInvalidFunction
}

// Mode implements OutputConfig.
func (c *EdgeConfig) Mode() Mode { return ModeEdge }

// Settings implements OutputConfig.
func (c *EdgeConfig) Settings() Output { return c.Output }

func (c *EdgeConfig) validate() error {
	switch c.Function {
	case FunctionInterlock, FunctionInvert, FunctionGenerate, FunctionPulse:
	default:
		return ErrInvalidFunction
	}
	if c.Edge > EdgeBoth {
		return ErrInvalidEdge
	}
	return nil
}

// Mode implements OutputConfig.
func (c *CountConfig) Mode() Mode { return ModeCount }

// Settings implements OutputConfig.
func (c *CountConfig) Settings() Output { return c.Output }

func (c *CountConfig) validate() error {
	switch c.Function {
	case FunctionOneshot, FunctionPulse:
		return nil
	}
	return ErrInvalidFunction
}

var (
	// ErrUnknownPin indicates the pin id has no channel on the board.
	ErrUnknownPin = errors.New("unknown pin")
	// ErrInvalidFunction indicates the function type is not allowed for the mode.
	ErrInvalidFunction = errors.New("invalid function type")
	// ErrInvalidEdge indicates an unknown edge type.
	ErrInvalidEdge = errors.New("invalid edge type")
	// ErrInvalidRelation indicates the related pin is not a DI channel.
	ErrInvalidRelation = errors.New("invalid relation port")
)
