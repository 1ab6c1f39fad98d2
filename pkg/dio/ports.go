package dio

import "github.com/golang/glog"

// PortManager owns every DI and DO channel of a board and advances them
// once per tick. It is not safe for concurrent use: ticks and requests
// must be serialized by the caller.
type PortManager struct {
	inputs  [NumDI]*PulseCounter
	outputs [NumDO]*PwmController
	hw      Hardware
}

// NewPortManager creates channels for the pins of the board.
func NewPortManager(board Board, hw Hardware) *PortManager {
	m := &PortManager{hw: hw}
	for n, pin := range board.Inputs {
		m.inputs[n] = NewPulseCounter(pin.ID, pin.Num)
	}
	for n, pin := range board.Outputs {
		m.outputs[n] = NewPwmController(pin.ID, pin.Num, hw)
	}
	return m
}

// Input finds the DI channel by pin id.
func (m *PortManager) Input(pin PinID) (*PulseCounter, error) {
	for _, c := range m.inputs {
		if c.Pin() == pin {
			return c, nil
		}
	}
	return nil, ErrUnknownPin
}

// Output finds the DO channel by pin id.
func (m *PortManager) Output(pin PinID) (*PwmController, error) {
	for _, p := range m.outputs {
		if p.Pin() == pin {
			return p, nil
		}
	}
	return nil, ErrUnknownPin
}

// Inputs returns all DI channels in board order.
func (m *PortManager) Inputs() []*PulseCounter { return m.inputs[:] }

// Outputs returns all DO channels in board order.
func (m *PortManager) Outputs() []*PwmController { return m.outputs[:] }

// ConfigurePulseCounter configures and starts a DI channel.
func (m *PortManager) ConfigurePulseCounter(pin PinID, activeHigh bool, minWidth, maxCount uint32) error {
	c, err := m.Input(pin)
	if err != nil {
		return err
	}
	c.Configure(activeHigh, minWidth, maxCount, m.hw.ReadInput(c.PinNum()))
	glog.V(2).Infof("DI[%d] configured: high=%v min=%d max=%d", pin, activeHigh, minWidth, maxCount)
	return nil
}

// ResetPulseCount resets the DI count and every count relation bound to it.
func (m *PortManager) ResetPulseCount(pin PinID, initVal uint32) error {
	c, err := m.Input(pin)
	if err != nil {
		return err
	}
	c.Reset(initVal)
	for _, p := range m.outputs {
		if in, ok := p.Input(); ok && in == pin {
			p.Reset(initVal)
		}
	}
	return nil
}

// PulseCount reads the DI count.
func (m *PortManager) PulseCount(pin PinID) (uint32, error) {
	c, err := m.Input(pin)
	if err != nil {
		return 0, err
	}
	return c.Count(), nil
}

// DutySumTime reads the accumulated on-time of a DI channel in ticks.
func (m *PortManager) DutySumTime(pin PinID) (uint32, error) {
	c, err := m.Input(pin)
	if err != nil {
		return 0, err
	}
	return c.OnTimeTicks(), nil
}

// Levels snapshots the confirmed level of every DI channel.
func (m *PortManager) Levels() [NumDI]bool {
	var levels [NumDI]bool
	for n, c := range m.inputs {
		levels[n] = c.Level()
	}
	return levels
}

// PinLevel reads the confirmed level of a DI channel.
func (m *PortManager) PinLevel(pin PinID) (bool, error) {
	c, err := m.Input(pin)
	if err != nil {
		return false, err
	}
	return c.PinLevel(), nil
}

// ConfigureOutput validates and applies a DO configuration.
func (m *PortManager) ConfigureOutput(pin PinID, cfg OutputConfig) error {
	p, err := m.Output(pin)
	if err != nil {
		return err
	}
	var di *PulseCounter
	switch c := cfg.(type) {
	case *EdgeConfig:
		if di, err = m.Input(c.Input); err != nil {
			return ErrInvalidRelation
		}
	case *CountConfig:
		if di, err = m.Input(c.Input); err != nil {
			return ErrInvalidRelation
		}
	}
	if err = p.Configure(cfg, di); err != nil {
		return err
	}
	glog.V(2).Infof("DO[%d] configured: mode=%s function=%s", pin, cfg.Mode(), cfg.Settings().Function)
	return nil
}

// StopOutput forces a DO channel to StepStop.
func (m *PortManager) StopOutput(pin PinID) error {
	p, err := m.Output(pin)
	if err != nil {
		return err
	}
	p.Stop()
	return nil
}

// RelationStatus reads the relation status of a DO channel.
func (m *PortManager) RelationStatus(pin PinID) (bool, error) {
	p, err := m.Output(pin)
	if err != nil {
		return false, err
	}
	return p.RelationStatus(), nil
}

// Tick samples and advances every active DI channel, then every DO channel.
func (m *PortManager) Tick() {
	for _, c := range m.inputs {
		if c.Active() {
			c.Tick(m.hw.ReadInput(c.PinNum()))
		}
	}
	for _, p := range m.outputs {
		var di *PulseCounter
		if in, ok := p.Input(); ok {
			di, _ = m.Input(in)
		}
		p.Tick(di)
	}
}
