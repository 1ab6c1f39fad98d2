package transport

import (
	"context"
	"io"

	"github.com/golang/glog"

	fx "github.com/robotalks/dio.go/pkg/framework"
)

// RequestMsg carries one request frame into the loop. The processing
// controller must call Reply exactly once.
type RequestMsg struct {
	Frame []byte

	replyCh chan []byte
}

// NewRequestMsg creates a RequestMsg for frame.
func NewRequestMsg(frame []byte) *RequestMsg {
	return &RequestMsg{Frame: frame, replyCh: make(chan []byte, 1)}
}

// NewMessage implements Message.
func (m *RequestMsg) NewMessage() fx.Message { return NewRequestMsg(nil) }

// Reply hands the response back to the transport.
func (m *RequestMsg) Reply(resp []byte) {
	m.replyCh <- resp
}

// ReplyChan receives the response.
func (m *RequestMsg) ReplyChan() <-chan []byte {
	return m.replyCh
}

// Pipe serves requests read from a PacketReadWriter through the loop,
// one at a time: the next request is read only after the previous reply
// has been written.
type Pipe struct {
	ReadWriter PacketReadWriter
}

// NewPipe creates a Pipe with given PacketReadWriter.
func NewPipe(rw PacketReadWriter) *Pipe {
	return &Pipe{ReadWriter: rw}
}

// Run implements Runnable. ctx must be derived from a running Loop.
func (p *Pipe) Run(ctx context.Context) error {
	loopCtl := fx.LoopCtlFrom(ctx)
	err := fx.RunWithContextCloser(ctx, p, func() error {
		for {
			pkt, err := p.ReadWriter.ReadPacket()
			if err != nil {
				return err
			}
			msg := NewRequestMsg(pkt)
			loopCtl.PostMessage(msg)
			loopCtl.TriggerNext()
			var resp []byte
			select {
			case resp = <-msg.ReplyChan():
			case <-ctx.Done():
				return ctx.Err()
			}
			if err = p.ReadWriter.WritePacket(resp); err != nil {
				return err
			}
		}
	})
	if err == io.EOF {
		glog.V(2).Info("pipe closed by peer")
		return nil
	}
	return err
}

// Close implements Closer.
func (p *Pipe) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// AddToLoop implements LoopAdder.
func (p *Pipe) AddToLoop(loop *fx.Loop) {
	if adder, ok := p.ReadWriter.(fx.LoopAdder); ok {
		loop.Add(adder)
	} else if runnable, ok := p.ReadWriter.(fx.Runnable); ok {
		loop.AddRunnable(runnable)
	}
	loop.AddRunnable(p)
}
