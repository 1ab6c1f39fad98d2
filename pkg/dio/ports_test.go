package dio_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/dio.go/pkg/dio"
	"github.com/robotalks/dio.go/pkg/hw/sim"
)

const (
	di0Num = 12
	do0Num = 0
)

type portsTestEnv struct {
	t     *testing.T
	pins  *sim.Pins
	ports *dio.PortManager
}

func newPortsTestEnv(t *testing.T) *portsTestEnv {
	pins := sim.New()
	return &portsTestEnv{t: t, pins: pins, ports: dio.NewPortManager(dio.DefaultBoard, pins)}
}

func (e *portsTestEnv) tick(n int) *portsTestEnv {
	for i := 0; i < n; i++ {
		e.ports.Tick()
	}
	return e
}

func (e *portsTestEnv) input(level bool) *portsTestEnv {
	e.pins.SetInput(di0Num, level)
	return e
}

// pulse drives one unfiltered DI0 pulse over two ticks.
func (e *portsTestEnv) pulse() *portsTestEnv {
	return e.input(true).tick(1).input(false).tick(1)
}

func (e *portsTestEnv) output() bool {
	ev, ok := e.pins.Output(do0Num)
	require.True(e.t, ok, "no output emitted")
	return ev.Level
}

func (e *portsTestEnv) event() sim.Event {
	ev, ok := e.pins.Output(do0Num)
	require.True(e.t, ok, "no output emitted")
	return ev
}

func (e *portsTestEnv) status() bool {
	st, err := e.ports.RelationStatus(0)
	require.NoError(e.t, err)
	return st
}

func (e *portsTestEnv) do0() *dio.PwmController {
	p, err := e.ports.Output(0)
	require.NoError(e.t, err)
	return p
}

func edgeConfig(fn dio.FunctionType, edge dio.EdgeType, chattering uint32) *dio.EdgeConfig {
	return &dio.EdgeConfig{
		Output:          dio.Output{Function: fn, Level: true},
		Input:           0,
		Edge:            edge,
		ChatteringTicks: chattering,
	}
}

func TestEdgeInterlockChattering(t *testing.T) {
	env := newPortsTestEnv(t)
	require.NoError(t, env.ports.ConfigurePulseCounter(0, true, 0, 100))
	require.NoError(t, env.ports.ConfigureOutput(0, edgeConfig(dio.FunctionInterlock, dio.EdgeRising, 2)))

	env.tick(5)
	require.False(t, env.status())

	env.input(true).tick(1) // T
	require.True(t, env.ports.Levels()[0])
	require.False(t, env.status())
	env.tick(1) // T+1
	require.False(t, env.status())
	env.tick(1) // T+2
	require.False(t, env.status())
	env.tick(1) // T+3
	require.True(t, env.status())
	require.Equal(t, dio.StepRunning, env.do0().Step())
	require.True(t, env.output())

	env.input(false).tick(1)
	require.False(t, env.output())
	env.input(true).tick(1)
	require.True(t, env.output())
}

func TestEdgeInvertFollowsInput(t *testing.T) {
	env := newPortsTestEnv(t)
	require.NoError(t, env.ports.ConfigurePulseCounter(0, true, 0, 100))
	require.NoError(t, env.ports.ConfigureOutput(0, edgeConfig(dio.FunctionInvert, dio.EdgeRising, 0)))
	env.input(true).tick(2)
	require.True(t, env.status())
	require.False(t, env.output())
	env.input(false).tick(1)
	require.True(t, env.output())
}

func TestEdgeInitialLevelDoesNotTrigger(t *testing.T) {
	env := newPortsTestEnv(t)
	env.input(true)
	require.NoError(t, env.ports.ConfigurePulseCounter(0, true, 0, 100))
	require.NoError(t, env.ports.ConfigureOutput(0, edgeConfig(dio.FunctionGenerate, dio.EdgeRising, 0)))
	env.tick(10)
	require.False(t, env.status())

	env.input(false).tick(3)
	require.False(t, env.status())
	env.input(true).tick(1)
	require.True(t, env.status())
	require.True(t, env.output())
}

func TestEdgeRearmsAfterTimedOutput(t *testing.T) {
	env := newPortsTestEnv(t)
	require.NoError(t, env.ports.ConfigurePulseCounter(0, true, 0, 100))
	cfg := edgeConfig(dio.FunctionGenerate, dio.EdgeRising, 0)
	cfg.OutputTicks = 2
	require.NoError(t, env.ports.ConfigureOutput(0, cfg))

	env.input(true).tick(2)
	require.True(t, env.status())
	require.True(t, env.output())
	env.tick(2)
	require.Equal(t, dio.StepStop, env.do0().Step())
	require.False(t, env.output())
	require.True(t, env.status())

	env.tick(1)
	require.Equal(t, dio.StepStart, env.do0().Step())
	require.False(t, env.status())

	// input still high: a new transition is required.
	env.tick(5)
	require.False(t, env.status())
	env.input(false).tick(1).input(true).tick(1)
	require.True(t, env.status())
}

// A "both" edge requires the input to stay away from the previously
// observed level. A comparison accepting either level would have armed
// while the input bounced back low.
func TestEdgeBothRequiresSustainedChange(t *testing.T) {
	env := newPortsTestEnv(t)
	require.NoError(t, env.ports.ConfigurePulseCounter(0, true, 0, 100))
	require.NoError(t, env.ports.ConfigureOutput(0, edgeConfig(dio.FunctionGenerate, dio.EdgeBoth, 3)))

	env.input(true).tick(3)
	env.input(false).tick(10)
	require.False(t, env.status())
	require.Equal(t, dio.StepStart, env.do0().Step())

	env.input(true).tick(3)
	require.False(t, env.status())
	env.tick(1)
	require.True(t, env.status())
}

func TestEdgeFalling(t *testing.T) {
	env := newPortsTestEnv(t)
	env.input(true)
	require.NoError(t, env.ports.ConfigurePulseCounter(0, true, 0, 100))
	require.NoError(t, env.ports.ConfigureOutput(0, edgeConfig(dio.FunctionGenerate, dio.EdgeFalling, 1)))
	env.tick(3)
	require.False(t, env.status())

	env.input(false).tick(1) // T
	require.False(t, env.status())
	env.tick(1) // T+1
	require.False(t, env.status())
	env.tick(1) // T+2
	require.True(t, env.status())
	require.True(t, env.output())
	require.Equal(t, dio.StepRunning, env.do0().Step())
}

func TestEdgeFallingIgnoresRising(t *testing.T) {
	env := newPortsTestEnv(t)
	require.NoError(t, env.ports.ConfigurePulseCounter(0, true, 0, 100))
	require.NoError(t, env.ports.ConfigureOutput(0, edgeConfig(dio.FunctionGenerate, dio.EdgeFalling, 0)))
	env.input(true).tick(5)
	require.False(t, env.status())
	require.Equal(t, dio.StepStart, env.do0().Step())
	env.input(false).tick(1)
	require.True(t, env.status())
}

func TestRelationPulseOutput(t *testing.T) {
	pulse := dio.PulseSettings{Clock: dio.Clock2M, EffectiveTicks: 100, PeriodTicks: 400}
	testCases := []struct {
		name    string
		cfg     dio.OutputConfig
		trigger func(*portsTestEnv)
	}{
		{"edge", &dio.EdgeConfig{
			Output: dio.Output{Function: dio.FunctionPulse, Level: true, Pulse: pulse, OutputTicks: 2},
			Input:  0,
			Edge:   dio.EdgeRising,
		}, func(e *portsTestEnv) { e.input(true).tick(2) }},
		{"count", &dio.CountConfig{
			Output:     dio.Output{Function: dio.FunctionPulse, Level: true, Pulse: pulse, OutputTicks: 2},
			Input:      0,
			StartCount: 1,
		}, func(e *portsTestEnv) { e.input(true).tick(1) }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newPortsTestEnv(t)
			require.NoError(t, env.ports.ConfigurePulseCounter(0, true, 0, 100))
			require.NoError(t, env.ports.ConfigureOutput(0, tc.cfg))
			env.tick(1)
			_, emitted := env.pins.Output(do0Num)
			require.False(t, emitted)

			tc.trigger(env)
			require.True(t, env.status())
			require.Equal(t, dio.StepRunning, env.do0().Step())
			ev := env.event()
			require.True(t, ev.Level)
			require.Equal(t, &sim.PWM{Clock: dio.Clock2M, OnTicks: 100, OffTicks: 300}, ev.PWM)

			env.tick(1)
			require.Equal(t, dio.StepRunning, env.do0().Step())
			env.tick(1)
			require.Equal(t, dio.StepStop, env.do0().Step())
			ev = env.event()
			require.False(t, ev.Level)
			require.Nil(t, ev.PWM)
		})
	}
}

func TestEdgeFollowersWithOutputTime(t *testing.T) {
	testCases := []struct {
		fn   dio.FunctionType
		want [3]bool
	}{
		{dio.FunctionInterlock, [3]bool{true, false, true}},
		{dio.FunctionInvert, [3]bool{false, true, false}},
	}
	for _, tc := range testCases {
		t.Run(tc.fn.String(), func(t *testing.T) {
			env := newPortsTestEnv(t)
			require.NoError(t, env.ports.ConfigurePulseCounter(0, true, 0, 100))
			cfg := edgeConfig(tc.fn, dio.EdgeRising, 0)
			cfg.OutputTicks = 4
			require.NoError(t, env.ports.ConfigureOutput(0, cfg))

			env.input(true).tick(2)
			require.Equal(t, dio.StepRunning, env.do0().Step())
			require.Equal(t, tc.want[0], env.output())
			env.input(false).tick(1)
			require.Equal(t, tc.want[1], env.output())
			env.input(true).tick(1)
			require.Equal(t, tc.want[2], env.output())
			env.tick(1)
			require.Equal(t, dio.StepRunning, env.do0().Step())
			require.Equal(t, uint32(3), env.do0().OutputElapsedTicks())

			env.tick(1)
			require.Equal(t, dio.StepStop, env.do0().Step())
			require.False(t, env.output())
		})
	}
}

func TestResetAboveMaxCountFreezesCount(t *testing.T) {
	testCases := []struct {
		name   string
		init   uint32
		expect uint32
	}{
		{"above max", 10, 10},
		{"at max", 5, 5},
		{"below max saturates", 3, 5},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newPortsTestEnv(t)
			require.NoError(t, env.ports.ConfigurePulseCounter(0, true, 0, 5))
			require.NoError(t, env.ports.ResetPulseCount(0, tc.init))
			env.pulse().pulse().pulse()
			count, err := env.ports.PulseCount(0)
			require.NoError(t, err)
			require.Equal(t, tc.expect, count)
		})
	}
}

func countConfig(start, stop, output uint32) *dio.CountConfig {
	return &dio.CountConfig{
		Output:     dio.Output{Function: dio.FunctionOneshot, Level: true, OutputTicks: output},
		Input:      0,
		StartCount: start,
		StopCount:  stop,
	}
}

func TestCountResetBelowStart(t *testing.T) {
	env := newPortsTestEnv(t)
	require.NoError(t, env.ports.ConfigurePulseCounter(0, true, 0, 100))
	require.NoError(t, env.ports.ConfigureOutput(0, countConfig(50, 0, 0)))
	env.tick(1)
	require.Equal(t, dio.StepStart, env.do0().Step())

	require.NoError(t, env.ports.ResetPulseCount(0, 30))
	count, err := env.ports.PulseCount(0)
	require.NoError(t, err)
	require.Equal(t, uint32(30), count)
	require.Equal(t, dio.StepStop, env.do0().Step())
	require.False(t, env.status())

	env.tick(1)
	require.Equal(t, dio.StepStart, env.do0().Step())
	env.tick(1)
	require.Equal(t, dio.StepStart, env.do0().Step())
}

func TestCountResetAtOrAboveStart(t *testing.T) {
	env := newPortsTestEnv(t)
	require.NoError(t, env.ports.ConfigurePulseCounter(0, true, 0, 100))
	require.NoError(t, env.ports.ConfigureOutput(0, countConfig(50, 0, 0)))
	env.tick(1)

	require.NoError(t, env.ports.ResetPulseCount(0, 60))
	require.Equal(t, dio.StepDelay, env.do0().Step())
	require.True(t, env.status())

	env.tick(1)
	require.Equal(t, dio.StepRunning, env.do0().Step())
	require.True(t, env.output())
}

func TestCountWindow(t *testing.T) {
	env := newPortsTestEnv(t)
	require.NoError(t, env.ports.ConfigurePulseCounter(0, true, 0, 5))
	require.NoError(t, env.ports.ConfigureOutput(0, countConfig(2, 3, 0)))

	env.pulse()
	require.Equal(t, dio.StepStart, env.do0().Step())
	env.pulse()
	require.Equal(t, dio.StepRunning, env.do0().Step())
	require.True(t, env.output())
	require.True(t, env.status())
	env.pulse()
	require.Equal(t, dio.StepRunning, env.do0().Step())
	env.pulse()
	require.Equal(t, dio.StepStop, env.do0().Step())
	require.False(t, env.output())

	// stays stopped until the input reaches its max count.
	env.tick(3)
	require.Equal(t, dio.StepStop, env.do0().Step())
	env.input(true).tick(1)
	require.Equal(t, dio.StepStart, env.do0().Step())
	require.False(t, env.status())
}

func TestResetIgnoresOtherModes(t *testing.T) {
	env := newPortsTestEnv(t)
	require.NoError(t, env.ports.ConfigurePulseCounter(0, true, 0, 100))
	require.NoError(t, env.ports.ConfigureOutput(0, edgeConfig(dio.FunctionGenerate, dio.EdgeRising, 0)))
	require.NoError(t, env.ports.ConfigureOutput(1, oneshot(true, 10, 0)))
	env.tick(1)
	require.NoError(t, env.ports.ResetPulseCount(0, 0))
	require.Equal(t, dio.StepStart, env.do0().Step())
	do1, err := env.ports.Output(1)
	require.NoError(t, err)
	require.Equal(t, dio.StepDelay, do1.Step())
}

func TestStopOutput(t *testing.T) {
	env := newPortsTestEnv(t)
	require.NoError(t, env.ports.ConfigureOutput(0, oneshot(true, 0, 0)))
	env.tick(1)
	require.True(t, env.output())
	require.NoError(t, env.ports.StopOutput(0))
	require.False(t, env.output())
	require.Equal(t, dio.StepStop, env.do0().Step())
	env.tick(3)
	require.Equal(t, dio.StepStop, env.do0().Step())
}

func TestPortManagerRejects(t *testing.T) {
	invalidEdge := edgeConfig(dio.FunctionGenerate, dio.EdgeType(3), 0)
	badRelation := edgeConfig(dio.FunctionGenerate, dio.EdgeRising, 0)
	badRelation.Input = 7
	countInterlock := countConfig(1, 0, 0)
	countInterlock.Function = dio.FunctionInterlock
	edgeOneshot := edgeConfig(dio.FunctionOneshot, dio.EdgeRising, 0)

	testCases := []struct {
		name string
		fn   func(*dio.PortManager) error
		err  error
	}{
		{"configure unknown DI", func(m *dio.PortManager) error { return m.ConfigurePulseCounter(9, true, 0, 1) }, dio.ErrUnknownPin},
		{"reset unknown DI", func(m *dio.PortManager) error { return m.ResetPulseCount(9, 0) }, dio.ErrUnknownPin},
		{"count unknown DI", func(m *dio.PortManager) error { _, err := m.PulseCount(9); return err }, dio.ErrUnknownPin},
		{"duty unknown DI", func(m *dio.PortManager) error { _, err := m.DutySumTime(9); return err }, dio.ErrUnknownPin},
		{"level unknown DI", func(m *dio.PortManager) error { _, err := m.PinLevel(9); return err }, dio.ErrUnknownPin},
		{"configure unknown DO", func(m *dio.PortManager) error { return m.ConfigureOutput(9, oneshot(true, 0, 0)) }, dio.ErrUnknownPin},
		{"stop unknown DO", func(m *dio.PortManager) error { return m.StopOutput(9) }, dio.ErrUnknownPin},
		{"status unknown DO", func(m *dio.PortManager) error { _, err := m.RelationStatus(9); return err }, dio.ErrUnknownPin},
		{"relation to unknown DI", func(m *dio.PortManager) error { return m.ConfigureOutput(0, badRelation) }, dio.ErrInvalidRelation},
		{"invalid edge", func(m *dio.PortManager) error { return m.ConfigureOutput(0, invalidEdge) }, dio.ErrInvalidEdge},
		{"edge with oneshot", func(m *dio.PortManager) error { return m.ConfigureOutput(0, edgeOneshot) }, dio.ErrInvalidFunction},
		{"count with interlock", func(m *dio.PortManager) error { return m.ConfigureOutput(0, countInterlock) }, dio.ErrInvalidFunction},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newPortsTestEnv(t)
			require.Equal(t, tc.err, tc.fn(env.ports))
			require.Equal(t, dio.StepInitialize, env.do0().Step())
			require.False(t, env.ports.Inputs()[0].Active())
		})
	}
}

func TestRearmingOutputKeepsNoHistory(t *testing.T) {
	env := newPortsTestEnv(t)
	require.NoError(t, env.ports.ConfigureOutput(0, countConfig(0, 0, 1)))
	env.tick(60000)
	require.Empty(t, env.pins.Events())
}
