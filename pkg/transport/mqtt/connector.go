package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/dio.go/pkg/status"
	"github.com/robotalks/dio.go/pkg/transport"
)

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// Connector finds and connects devices registered on a broker.
type Connector struct {
	DiscoverTimeout time.Duration

	options     *paho.ClientOptions
	topicPrefix string
	qos         byte
}

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	opts, topicPrefix, qos, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return &Connector{
		DiscoverTimeout: DefaultDiscoverTimeout,
		options:         opts,
		topicPrefix:     topicPrefix,
		qos:             qos,
	}, nil
}

func (c *Connector) newQueue() *Queue {
	q := NewQueue(c.options, c.topicPrefix)
	q.QoS = c.qos
	return q
}

// Discover collects retained registrations of devices with given type,
// or all devices if devType is empty.
func (c *Connector) Discover(ctx context.Context, devType string) (res []transport.Info, err error) {
	q := c.newQueue()
	if err = q.ConnectAndWait(); err != nil {
		return nil, err
	}
	defer q.Close()
	resCh := make(chan transport.Info, 1)
	sub := q.Sub("+/+/"+TopicMeta, Handler(func(topic string, payload []byte) {
		items := strings.Split(topic, "/")
		if len(items) != 3 || len(payload) == 0 {
			return
		}
		if devType != "" && items[0] != devType {
			return
		}
		info := transport.Info{Ref: transport.Ref{Type: items[0], ID: items[1]}}
		if err := json.Unmarshal(payload, &info.Meta); err != nil {
			glog.Warningf("invalid meta of %s: %v", info.Ref.Name(), err)
		}
		select {
		case resCh <- info:
		case <-time.After(time.Second):
		}
	}))
	defer sub.Close()

	dur := c.DiscoverTimeout
	if dur == 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.After(dur)
	for {
		select {
		case info := <-resCh:
			res = append(res, info)
		case <-timeout:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}

// Dial connects to the device.
func (c *Connector) Dial(ctx context.Context, ref transport.Ref) (*Conn, error) {
	conn := &Conn{Queue: c.newQueue()}
	if err := conn.Queue.ConnectAndWait(); err != nil {
		return nil, err
	}
	conn.ReadWriter = NewPacketReadWriter(conn.Queue).ForConnector(ref)
	if err := conn.ReadWriter.Subscribe(); err != nil {
		conn.Queue.Close()
		return nil, err
	}
	return conn, nil
}

// WatchStatus calls fn with each status snapshot published by the device
// until ctx is done.
func (c *Connector) WatchStatus(ctx context.Context, ref transport.Ref, fn func(*status.Snapshot)) error {
	q := c.newQueue()
	if err := q.ConnectAndWait(); err != nil {
		return err
	}
	defer q.Close()
	sub := q.Sub(ref.Name()+"/"+TopicStatus, Handler(func(_ string, payload []byte) {
		snapshot, err := status.Decode(payload)
		if err != nil {
			glog.Warningf("invalid status of %s: %v", ref.Name(), err)
			return
		}
		fn(snapshot)
	}))
	defer sub.Close()
	if err := sub.Wait(); err != nil {
		return err
	}
	<-ctx.Done()
	return ctx.Err()
}

// Conn is a PacketReadWriter to a device through the broker.
type Conn struct {
	*ReadWriter
	Queue *Queue
}

// Close implements io.Closer.
func (c *Conn) Close() error {
	err := c.ReadWriter.Close()
	c.Queue.Close()
	return err
}
