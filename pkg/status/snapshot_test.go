package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/dio.go/pkg/dio"
	"github.com/robotalks/dio.go/pkg/hw/sim"
)

func TestCapture(t *testing.T) {
	pins := sim.New()
	ports := dio.NewPortManager(dio.DefaultBoard, pins)
	require.NoError(t, ports.ConfigurePulseCounter(0, true, 0, 100))
	require.NoError(t, ports.ConfigureOutput(1, &dio.CountConfig{
		Output:     dio.Output{Function: dio.FunctionOneshot, Level: true, OutputTicks: 10},
		Input:      0,
		StartCount: 5,
		StopCount:  8,
	}))
	pins.SetInput(dio.DefaultBoard.Inputs[0].Num, true)
	ports.Tick()

	now := time.Unix(100, 5)
	s := Capture(ports, now)
	require.Equal(t, now.UnixNano(), s.Timestamp)
	require.Len(t, s.Inputs, dio.NumDI)
	require.Len(t, s.Outputs, dio.NumDO)

	in := s.Inputs[0]
	require.Equal(t, uint32(0), in.Pin)
	require.True(t, in.Enabled)
	require.True(t, in.ActiveHigh)
	require.True(t, in.Level)
	require.Equal(t, uint32(1), in.Count)
	require.Equal(t, uint32(100), in.MaxCount)
	require.False(t, s.Inputs[1].Enabled)

	out := s.Outputs[1]
	require.Equal(t, uint32(1), out.Pin)
	require.Equal(t, "count", out.Mode)
	require.Equal(t, "oneshot", out.Function)
	require.True(t, out.HasInput)
	require.Equal(t, uint32(0), out.Input)
	require.Equal(t, "none", s.Outputs[0].Mode)
	require.False(t, s.Outputs[0].HasInput)
}

func TestEncodeDecode(t *testing.T) {
	s := &Snapshot{
		Timestamp: 42,
		Version:   "dio-rt 1.0.0",
		Inputs:    []*InputStatus{{Pin: 1, Level: true, Count: 7, OnTimeTicks: 300}},
		Outputs:   []*OutputStatus{{Pin: 0, Mode: "edge", Step: "running", Relation: true}},
	}
	b, err := s.Encode()
	require.NoError(t, err)
	decoded, err := Decode(b)
	require.NoError(t, err)
	require.Equal(t, s.Timestamp, decoded.Timestamp)
	require.Equal(t, s.Version, decoded.Version)
	require.Equal(t, uint32(7), decoded.Inputs[0].Count)
	require.True(t, decoded.Outputs[0].Relation)
	require.Equal(t, "running", decoded.Outputs[0].Step)

	_, err = Decode([]byte{0xff})
	require.Error(t, err)
}
