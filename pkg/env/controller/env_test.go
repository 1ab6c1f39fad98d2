package controller

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/dio.go/pkg/hw/sim"
	"github.com/robotalks/dio.go/pkg/transport/endpoint"
)

type closableHardware struct {
	*sim.Pins
	closed int
}

func (h *closableHardware) Close() error {
	h.closed++
	return nil
}

func TestListenURLs(t *testing.T) {
	conf := &Config{Listen: " tcp://:7700, ,ws://:7780/dio"}
	require.Equal(t, []string{"tcp://:7700", "ws://:7780/dio"}, conf.ListenURLs())
	conf.MQTTBrokerURL = "mqtt://broker:1883/site/"
	require.Equal(t, []string{"tcp://:7700", "ws://:7780/dio", "mqtt://broker:1883/site/"}, conf.ListenURLs())
	require.Empty(t, (&Config{}).ListenURLs())
}

func TestNewEnv(t *testing.T) {
	conf := NewConfig()
	conf.Info.Ref.ID = "test"
	conf.Listen = "tcp://127.0.0.1:0"
	conf.MQTTBrokerURL = ""
	conf.BoardFile = ""
	conf.Hardware = HardwareSim
	e, err := conf.NewEnv()
	require.NoError(t, err)
	defer e.Close()
	require.IsType(t, &sim.Pins{}, e.Hardware)
	require.Len(t, e.Listeners, 1)
	require.Equal(t, "default", e.Board.Name)
	require.NotNil(t, e.Service)
}

func TestNewEnvErrors(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
	}{
		{"no id", func(c *Config) { c.Info.Ref.ID = "" }},
		{"no listener", func(c *Config) { c.Listen = "" }},
		{"bad hardware", func(c *Config) { c.Hardware = "fpga" }},
		{"bad scheme", func(c *Config) { c.Listen = "udp://:7700" }},
		{"missing board", func(c *Config) { c.BoardFile = "/nonexistent/board.yaml" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := NewConfig()
			conf.Info.Ref.ID = "test"
			conf.Listen = "tcp://127.0.0.1:0"
			conf.MQTTBrokerURL = ""
			conf.BoardFile = ""
			conf.Hardware = HardwareSim
			tc.modify(conf)
			_, err := conf.NewEnv()
			require.Error(t, err)
		})
	}
}

func TestCloseReleasesHardware(t *testing.T) {
	conf := NewConfig()
	conf.Info.Ref.ID = "test"
	l, err := endpoint.Listen("tcp://127.0.0.1:0", conf.Info)
	require.NoError(t, err)
	hw := &closableHardware{Pins: sim.New()}
	e := &Env{Config: conf, Hardware: hw, Listeners: []endpoint.Listener{l}}
	require.NoError(t, e.Close())
	require.Equal(t, 1, hw.closed)

	// sim hardware has nothing to release.
	require.NoError(t, (&Env{Config: conf, Hardware: sim.New()}).Close())
}
