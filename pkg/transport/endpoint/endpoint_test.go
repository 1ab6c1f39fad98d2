package endpoint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/dio.go/pkg/transport"
	"github.com/robotalks/dio.go/pkg/transport/stream"
	"github.com/robotalks/dio.go/pkg/transport/websocket"
)

func TestListen(t *testing.T) {
	l, err := Listen("tcp://127.0.0.1:0", transport.Info{})
	require.NoError(t, err)
	require.IsType(t, &stream.Server{}, l)
	require.NoError(t, l.(*stream.Server).Close())

	l, err = Listen("ws://127.0.0.1:0/io", transport.Info{})
	require.NoError(t, err)
	require.Equal(t, "/io", l.(*websocket.Server).Path)
	require.NoError(t, l.(*websocket.Server).Close())

	require.Empty(t, Publishers(l))

	_, err = Listen("udp://127.0.0.1:0", transport.Info{})
	require.Equal(t, &UnsupportedSchemeError{Scheme: "udp"}, err)
}

func TestDialUnsupported(t *testing.T) {
	_, err := Dial(context.Background(), "serial:///dev/ttyS0", transport.Ref{})
	require.Equal(t, &UnsupportedSchemeError{Scheme: "serial"}, err)
}
