package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/dio.go/pkg/dio"
)

func TestPinsKeepOnlyLastOutput(t *testing.T) {
	p := New()
	for i := 0; i < 1000; i++ {
		p.SetOutput(3, i%2 == 0)
	}
	p.SetOutputPWM(4, dio.Clock2M, 10, 30)
	require.Empty(t, p.Events())
	require.Empty(t, p.events)

	ev, ok := p.Output(3)
	require.True(t, ok)
	require.False(t, ev.Level)
	ev, ok = p.Output(4)
	require.True(t, ok)
	require.Equal(t, &PWM{Clock: dio.Clock2M, OnTicks: 10, OffTicks: 30}, ev.PWM)
	_, ok = p.Output(5)
	require.False(t, ok)
}

func TestRecorderKeepsEvents(t *testing.T) {
	p := NewRecorder()
	p.SetOutput(3, true)
	p.SetOutput(3, false)
	require.Equal(t, []Event{{PinNum: 3, Level: true}, {PinNum: 3, Level: false}}, p.Events())
	require.Empty(t, p.Events())
}

func TestInputs(t *testing.T) {
	p := New()
	require.False(t, p.ReadInput(12))
	p.SetInput(12, true)
	require.True(t, p.ReadInput(12))
}
