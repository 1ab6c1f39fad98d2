package mqtt

import (
	"context"
	"io"
	"sync"

	"github.com/robotalks/dio.go/pkg/transport"
)

// ReadWriter implements PacketReadWriter over a pair of topics.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh  chan []byte
	doneCh    chan struct{}
	closeOnce sync.Once
	sub       *Subscription
	lock      sync.Mutex
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 1),
		doneCh:   make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForConnector sets topics using default convention for connector:
// SubTopic = type/id/msg
// PubTopic = type/id/cmd
func (p *ReadWriter) ForConnector(ref transport.Ref) *ReadWriter {
	prefix := ref.Name()
	return p.WithTopics(prefix+"/msg", prefix+"/cmd")
}

// ForDevice sets topics using default convention for the device:
// SubTopic = type/id/cmd
// PubTopic = type/id/msg
func (p *ReadWriter) ForDevice(ref transport.Ref) *ReadWriter {
	prefix := ref.Name()
	return p.WithTopics(prefix+"/cmd", prefix+"/msg")
}

// Subscribe subscribes SubTopic and waits for the broker.
func (p *ReadWriter) Subscribe() error {
	p.lock.Lock()
	if p.sub == nil {
		p.sub = p.Queue.Sub(p.SubTopic, Handler(p.handleMsg))
	}
	sub := p.sub
	p.lock.Unlock()
	return sub.Wait()
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.doneCh:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Close stops reading and unsubscribes.
func (p *ReadWriter) Close() (err error) {
	p.closeOnce.Do(func() {
		close(p.doneCh)
		p.lock.Lock()
		sub := p.sub
		p.lock.Unlock()
		if sub != nil {
			err = sub.Close()
		}
	})
	return
}

// Run implements Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	defer p.Close()
	if err := p.Subscribe(); err != nil {
		return err
	}
	<-ctx.Done()
	return ctx.Err()
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	pkt := make([]byte, len(payload))
	copy(pkt, payload)
	select {
	case p.packetCh <- pkt:
	case <-p.doneCh:
	}
}
