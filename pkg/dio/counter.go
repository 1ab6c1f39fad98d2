package dio

// PulseCounter counts debounced pulses on one DI channel.
type PulseCounter struct {
	pin    PinID
	pinNum int

	active     bool
	activeHigh bool
	minWidth   uint32
	maxCount   uint32

	count  uint32
	onTime uint32

	confirmed bool
	candidate bool
	runLength uint32
}

// NewPulseCounter creates an inactive counter.
func NewPulseCounter(pin PinID, pinNum int) *PulseCounter {
	return &PulseCounter{pin: pin, pinNum: pinNum}
}

// Pin returns the logical pin id.
func (c *PulseCounter) Pin() PinID { return c.pin }

// PinNum returns the physical pin number.
func (c *PulseCounter) PinNum() int { return c.pinNum }

// Active tells whether the counter has been configured.
func (c *PulseCounter) Active() bool { return c.active }

// ActiveHigh tells whether high is the active level.
func (c *PulseCounter) ActiveHigh() bool { return c.activeHigh }

// MaxCount returns the configured saturation value.
func (c *PulseCounter) MaxCount() uint32 { return c.maxCount }

// Configure (re)arms the counter. Level tracking restarts from raw,
// the count is kept.
func (c *PulseCounter) Configure(activeHigh bool, minWidth, maxCount uint32, raw bool) {
	c.activeHigh = activeHigh
	c.minWidth = minWidth
	c.maxCount = maxCount
	c.confirmed = raw
	c.candidate = raw
	c.runLength = 0
	c.active = true
}

// Tick advances the debounce filter with one raw sample.
func (c *PulseCounter) Tick(raw bool) {
	if !c.active {
		return
	}
	if raw == c.candidate {
		if c.runLength != ^uint32(0) {
			c.runLength++
		}
	} else {
		c.candidate = raw
		c.runLength = 1
	}
	if c.candidate != c.confirmed && c.runLength > c.minWidth {
		c.confirmed = c.candidate
		if c.confirmed == c.activeHigh && c.count < c.maxCount {
			c.count++
		}
	}
	if c.confirmed == c.activeHigh && raw == c.activeHigh && c.onTime != ^uint32(0) {
		c.onTime++
	}
}

// Reset sets the count and clears the accumulated on-time.
func (c *PulseCounter) Reset(initVal uint32) {
	c.count = initVal
	c.onTime = 0
}

// Count returns the number of confirmed active edges.
func (c *PulseCounter) Count() uint32 { return c.count }

// OnTimeTicks returns the ticks spent at the active level.
func (c *PulseCounter) OnTimeTicks() uint32 { return c.onTime }

// Level returns the confirmed level.
func (c *PulseCounter) Level() bool { return c.confirmed }

// RisingEdge tells whether the confirmed level is the active polarity.
func (c *PulseCounter) RisingEdge() bool { return c.confirmed == c.activeHigh }

// PinLevel returns the confirmed level of the pin.
func (c *PulseCounter) PinLevel() bool { return c.confirmed }
