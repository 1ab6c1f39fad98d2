package transport

import (
	"io"
	"sync"
)

// Mailbox is one end of an in-process packet channel.
type Mailbox struct {
	recvCh <-chan []byte
	sendCh chan<- []byte
	done   *mailboxDone
}

type mailboxDone struct {
	ch   chan struct{}
	once sync.Once
}

// NewMailbox creates the two connected ends of a mailbox. Closing
// either end closes both.
func NewMailbox() (*Mailbox, *Mailbox) {
	a2b, b2a := make(chan []byte, 1), make(chan []byte, 1)
	done := &mailboxDone{ch: make(chan struct{})}
	return &Mailbox{recvCh: b2a, sendCh: a2b, done: done},
		&Mailbox{recvCh: a2b, sendCh: b2a, done: done}
}

// ReadPacket implements PacketReader.
func (m *Mailbox) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-m.recvCh:
		return pkt, nil
	case <-m.done.ch:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (m *Mailbox) WritePacket(pkt []byte) error {
	select {
	case <-m.done.ch:
		return io.ErrClosedPipe
	default:
	}
	buf := make([]byte, len(pkt))
	copy(buf, pkt)
	select {
	case m.sendCh <- buf:
		return nil
	case <-m.done.ch:
		return io.ErrClosedPipe
	}
}

// Close implements io.Closer.
func (m *Mailbox) Close() error {
	m.done.once.Do(func() { close(m.done.ch) })
	return nil
}
