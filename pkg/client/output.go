package client

import (
	"math"

	"github.com/robotalks/dio.go/pkg/dio"
	"github.com/robotalks/dio.go/pkg/protocol"
)

// maxTicks2M is the longest on-time expressed at 2 MHz.
const maxTicks2M = 65535

// Output is the output part of a DO configuration. Pulse is only used
// by the pulse function.
type Output struct {
	Level       bool
	Pulse       dio.PulseSettings
	DelayTicks  uint32
	OutputTicks uint32
}

func (o *Output) params() protocol.OutputParams {
	return protocol.OutputParams{
		OutputLevel:        o.Level,
		PulseClock:         uint32(o.Pulse.Clock),
		PulseEffectiveTime: o.Pulse.EffectiveTicks,
		PulsePeriod:        o.Pulse.PeriodTicks,
		DelayTime:          o.DelayTicks,
		OutputTime:         o.OutputTicks,
	}
}

// PulseFor derives the pulse settings of a waveform with frequency in Hz
// and duty in percent. The 2 MHz clock is used unless the on-time
// doesn't fit 16 bits of it.
func PulseFor(frequency, duty float64) dio.PulseSettings {
	if frequency <= 0 {
		return dio.PulseSettings{Clock: dio.Clock2M}
	}
	period := 1 / frequency
	onTime := period * duty / 100
	clock := dio.Clock2M
	if onTime*float64(dio.Clock2M) > maxTicks2M {
		clock = dio.Clock32K
	}
	return dio.PulseSettings{
		Clock:          clock,
		EffectiveTicks: uint32(math.Round(onTime * float64(clock))),
		PeriodTicks:    uint32(math.Round(period * float64(clock))),
	}
}
