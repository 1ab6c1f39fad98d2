package websocket

import (
	"context"
	"net"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/dio.go/pkg/framework"
	"github.com/robotalks/dio.go/pkg/transport"
)

// DefaultPath is the HTTP path serving the websocket.
const DefaultPath = "/dio"

// Server serves each websocket connection with a Pipe.
type Server struct {
	Listener net.Listener
	Path     string
}

// Listen creates a Server listening on a TCP address.
func Listen(addr, path string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = DefaultPath
	}
	return &Server{Listener: ln, Path: path}, nil
}

// Addr returns the listening address.
func (s *Server) Addr() net.Addr {
	return s.Listener.Addr()
}

// Close stops accepting connections.
func (s *Server) Close() error {
	return s.Listener.Close()
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(s.Path, websocket.Handler(func(conn *websocket.Conn) {
		glog.Infof("websocket accepted %s", conn.Request().RemoteAddr)
		conn.PayloadType = websocket.BinaryFrame
		if err := transport.NewPipe(New(conn)).Run(ctx); err != nil && err != context.Canceled {
			glog.Warningf("websocket %s: %v", conn.Request().RemoteAddr, err)
		}
	}))
	server := &http.Server{Handler: mux}
	err := fx.RunWithContextCloser(ctx, server, func() error {
		return server.Serve(s.Listener)
	})
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Dial connects to a websocket URL, like ws://host:port/dio.
func Dial(url string) (*ReadWriter, error) {
	conn, err := websocket.Dial(url, "", "http://localhost/")
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return New(conn), nil
}
