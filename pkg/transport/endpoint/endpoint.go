// Package endpoint creates transports from URLs:
//
//	tcp://host:port
//	ws://host:port/path
//	mqtt://broker:port/prefix
package endpoint

import (
	"context"
	"fmt"
	"io"
	"net/url"

	fx "github.com/robotalks/dio.go/pkg/framework"
	"github.com/robotalks/dio.go/pkg/status"
	"github.com/robotalks/dio.go/pkg/transport"
	"github.com/robotalks/dio.go/pkg/transport/mqtt"
	"github.com/robotalks/dio.go/pkg/transport/stream"
	"github.com/robotalks/dio.go/pkg/transport/websocket"
)

// Conn is a connection to a device.
type Conn interface {
	transport.PacketReadWriter
	io.Closer
}

// UnsupportedSchemeError indicates an unknown URL scheme.
type UnsupportedSchemeError struct {
	Scheme string
}

// Error implements error.
func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("unsupported scheme %q", e.Scheme)
}

// Listener is a serving endpoint. Some endpoints also publish status.
type Listener interface {
	fx.Runnable
}

// Listen creates a serving endpoint from URL.
func Listen(rawURL string, info transport.Info) (Listener, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	var l Listener
	switch u.Scheme {
	case "tcp":
		l, err = stream.Listen(u.Host)
	case "ws":
		l, err = websocket.Listen(u.Host, u.Path)
	case "mqtt", "mqtts":
		l, err = mqtt.NewServer(rawURL, info)
	default:
		return nil, &UnsupportedSchemeError{Scheme: u.Scheme}
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Publishers selects the listeners able to publish status.
func Publishers(listeners ...Listener) (pubs []status.Publisher) {
	for _, l := range listeners {
		if pub, ok := l.(status.Publisher); ok {
			pubs = append(pubs, pub)
		}
	}
	return
}

// Dial connects to a device. For MQTT, ref selects the device; with an
// empty ID the only registered device of ref.Type is used.
func Dial(ctx context.Context, rawURL string, ref transport.Ref) (Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	var conn Conn
	switch u.Scheme {
	case "tcp":
		conn, err = stream.Dial(ctx, u.Host)
	case "ws":
		conn, err = websocket.Dial(rawURL)
	case "mqtt", "mqtts":
		conn, err = dialMQTT(ctx, rawURL, ref)
	default:
		return nil, &UnsupportedSchemeError{Scheme: u.Scheme}
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func dialMQTT(ctx context.Context, rawURL string, ref transport.Ref) (Conn, error) {
	connector, err := mqtt.NewConnector(rawURL)
	if err != nil {
		return nil, err
	}
	if ref.ID == "" {
		if ref, err = discoverOne(ctx, connector, ref.Type); err != nil {
			return nil, err
		}
	}
	conn, err := connector.Dial(ctx, ref)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func discoverOne(ctx context.Context, connector *mqtt.Connector, devType string) (transport.Ref, error) {
	infos, err := connector.Discover(ctx, devType)
	if err != nil {
		return transport.Ref{}, err
	}
	switch len(infos) {
	case 0:
		return transport.Ref{}, fmt.Errorf("no %s device registered", devType)
	case 1:
		return infos[0].Ref, nil
	}
	return transport.Ref{}, fmt.Errorf("%d %s devices registered, ID required", len(infos), devType)
}
