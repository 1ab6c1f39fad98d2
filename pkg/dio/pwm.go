package dio

// PwmController is the output state machine of one DO channel.
type PwmController struct {
	pin    PinID
	pinNum int
	drv    OutputDriver

	mode Mode
	out  Output
	step Step

	delayElapsed  uint32
	outputElapsed uint32
	level         bool

	// relation
	input      PinID
	armed      bool
	rearm      bool
	edge       EdgeType
	chattering uint32
	started    bool
	prevEdge   bool
	edgeTicks  uint32
	startCount uint32
	stopCount  uint32
}

// NewPwmController creates a controller in StepInitialize.
func NewPwmController(pin PinID, pinNum int, drv OutputDriver) *PwmController {
	return &PwmController{
		pin:    pin,
		pinNum: pinNum,
		drv:    drv,
		out:    Output{Level: true, Pulse: PulseSettings{Clock: Clock32K}},
	}
}

// Pin returns the logical pin id.
func (p *PwmController) Pin() PinID { return p.pin }

// PinNum returns the physical pin number.
func (p *PwmController) PinNum() int { return p.pinNum }

// Mode returns the configured mode.
func (p *PwmController) Mode() Mode { return p.mode }

// Step returns the current state.
func (p *PwmController) Step() Step { return p.step }

// Settings returns the configured output settings.
func (p *PwmController) Settings() Output { return p.out }

// DelayElapsedTicks returns the ticks spent in StepDelay.
func (p *PwmController) DelayElapsedTicks() uint32 { return p.delayElapsed }

// OutputElapsedTicks returns the ticks counted in StepRunning.
func (p *PwmController) OutputElapsedTicks() uint32 { return p.outputElapsed }

// Input returns the related DI pin when a relation is configured.
func (p *PwmController) Input() (PinID, bool) {
	return p.input, p.mode == ModeEdge || p.mode == ModeCount
}

// RelationStatus reports the trigger flag of relation modes, or
// whether a single output is running.
func (p *PwmController) RelationStatus() bool {
	switch p.mode {
	case ModeEdge, ModeCount:
		return p.armed
	}
	return p.step == StepRunning
}

// Configure replaces the configuration. A channel past StepInitialize
// is stopped first. di is the related input of relation modes.
func (p *PwmController) Configure(cfg OutputConfig, di *PulseCounter) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	mode := cfg.Mode()
	if mode != ModeSingle && di == nil {
		return ErrInvalidRelation
	}

	out := cfg.Settings()
	out.Pulse.Clock = out.Pulse.Clock.Normalize()
	if p.step != StepInitialize {
		p.drive(!out.Level)
		p.outputElapsed = 0
		p.delayElapsed = 0
		p.step = StepStop
	}

	p.mode, p.out = mode, out
	p.armed, p.rearm = false, false
	p.started, p.edgeTicks = false, 0
	switch c := cfg.(type) {
	case *EdgeConfig:
		p.input = c.Input
		p.edge = c.Edge
		p.chattering = c.ChatteringTicks
		p.prevEdge = di.RisingEdge()
	case *CountConfig:
		p.input = c.Input
		p.startCount = c.StartCount
		p.stopCount = c.StopCount
	}
	p.step = StepStart
	return nil
}

// Stop forces the inactive level from any state.
func (p *PwmController) Stop() {
	p.drive(!p.out.Level)
	p.outputElapsed = 0
	p.delayElapsed = 0
	p.step = StepStop
}

// Reset reacts to a pulse count reset of the related input. Only count
// relations are affected.
func (p *PwmController) Reset(initVal uint32) {
	if p.mode != ModeCount {
		return
	}
	if p.startCount > initVal {
		p.Stop()
		p.armed = false
		p.rearm = true
		return
	}
	if p.step == StepOutput || p.step == StepRunning {
		p.drive(!p.out.Level)
	}
	p.outputElapsed = 0
	p.delayElapsed = 0
	p.rearm = false
	p.armed = true
	p.step = StepDelay
}

// Tick advances the state machine by one tick. di is the related input,
// nil for single mode.
func (p *PwmController) Tick(di *PulseCounter) {
	switch p.step {
	case StepStart:
		if !p.triggered(di) {
			return
		}
		if p.mode != ModeSingle {
			p.armed = true
		}
		p.step = StepDelay
		fallthrough
	case StepDelay:
		if p.delayElapsed < p.out.DelayTicks {
			p.delayElapsed++
			return
		}
		p.delayElapsed = 0
		p.step = StepOutput
		fallthrough
	case StepOutput:
		p.emit(di)
		p.step = StepRunning
	case StepRunning:
		p.run(di)
	case StepStop:
		p.restart(di)
	}
}

func (p *PwmController) triggered(di *PulseCounter) bool {
	switch p.mode {
	case ModeSingle:
		return true
	case ModeCount:
		return di.Count() >= p.startCount
	case ModeEdge:
		curr := di.RisingEdge()
		if !p.started {
			// nothing counts until the input moves away from the level
			// observed when configured.
			p.started = curr != p.prevEdge
			return false
		}
		var match bool
		switch p.edge {
		case EdgeRising:
			match = curr
		case EdgeFalling:
			match = !curr
		case EdgeBoth:
			match = curr != p.prevEdge
		}
		if !match {
			p.edgeTicks = 0
			return false
		}
		p.edgeTicks++
		return p.edgeTicks > p.chattering
	}
	return false
}

func (p *PwmController) emit(di *PulseCounter) {
	switch p.out.Function {
	case FunctionPulse:
		pulse := p.out.Pulse
		p.drv.SetOutputPWM(p.pinNum, pulse.Clock, pulse.EffectiveTicks, pulse.OffTicks())
		p.level = p.out.Level
	case FunctionInterlock:
		p.drive(di.Level())
	case FunctionInvert:
		p.drive(!di.Level())
	default:
		p.drive(p.out.Level)
	}
}

func (p *PwmController) run(di *PulseCounter) {
	switch p.out.Function {
	case FunctionInterlock:
		if lv := di.Level(); lv != p.level {
			p.drive(lv)
		}
	case FunctionInvert:
		if lv := !di.Level(); lv != p.level {
			p.drive(lv)
		}
	}
	if p.out.OutputTicks == 0 {
		if p.mode == ModeCount && p.stopCount > 0 && di.Count() > p.stopCount {
			p.Stop()
		}
		return
	}
	p.outputElapsed++
	if p.outputElapsed >= p.out.OutputTicks {
		p.Stop()
	}
}

func (p *PwmController) restart(di *PulseCounter) {
	switch p.mode {
	case ModeEdge:
		p.armed = false
		p.started = false
		p.edgeTicks = 0
		p.prevEdge = di.RisingEdge()
		p.step = StepStart
	case ModeCount:
		if p.rearm || di.Count() >= di.MaxCount() {
			p.armed = false
			p.rearm = false
			p.step = StepStart
		}
	}
}

func (p *PwmController) drive(level bool) {
	p.level = level
	p.drv.SetOutput(p.pinNum, level)
}
