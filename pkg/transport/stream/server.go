package stream

import (
	"context"
	"net"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/dio.go/pkg/framework"
	"github.com/robotalks/dio.go/pkg/transport"
)

// Server accepts connections and serves each of them with a Pipe.
type Server struct {
	Listener net.Listener
}

// Listen creates a Server listening on a TCP address.
func Listen(addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{Listener: ln}, nil
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
	var wg sync.WaitGroup
	defer wg.Wait()
	return fx.RunWithContextCloser(ctx, s.Listener, func() error {
		for {
			conn, err := s.Listener.Accept()
			if err != nil {
				return err
			}
			glog.Infof("accepted %s", conn.RemoteAddr())
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := transport.NewPipe(New(conn)).Run(ctx); err != nil && err != context.Canceled {
					glog.Warningf("connection %s: %v", conn.RemoteAddr(), err)
				}
			}()
		}
	})
}

// Dial connects to a Server.
func Dial(ctx context.Context, addr string) (*ReadWriter, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}
