package mqtt

import (
	"context"
	"encoding/json"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/dio.go/pkg/status"
	"github.com/robotalks/dio.go/pkg/transport"
)

// Topic suffixes under type/id.
const (
	TopicCmd    = "cmd"
	TopicMsg    = "msg"
	TopicMeta   = "meta"
	TopicStatus = "status"
)

// Server registers the device on a broker and serves requests
// published to type/id/cmd. The meta is retained on type/id/meta
// while connected, and cleared by the will when the device goes away.
type Server struct {
	Queue *Queue
	Info  transport.Info

	metaJSON []byte
	rw       *ReadWriter
}

// NewServer creates a Server.
func NewServer(brokerURL string, info transport.Info) (*Server, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, qos, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+info.Ref.Name()+"/"+TopicMeta, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("dio:" + info.Ref.ID)
	}
	s := &Server{
		Queue:    NewQueue(opts, topicPrefix),
		Info:     info,
		metaJSON: meta,
	}
	s.Queue.QoS = qos
	s.Queue.OnConnect = func(*Queue) { s.publishMeta(s.metaJSON) }
	s.rw = NewPacketReadWriter(s.Queue).ForDevice(info.Ref)
	return s, nil
}

// Run implements Runnable. ctx must be derived from a running Loop.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Queue.ConnectAndWait(); err != nil {
		return err
	}
	defer s.Queue.Close()
	if err := s.rw.Subscribe(); err != nil {
		glog.Warningf("subscribe %s: %v", s.rw.SubTopic, err)
	}
	glog.Infof("registered %s", s.Info.Ref.Name())
	err := transport.NewPipe(s.rw).Run(ctx)
	s.publishMeta(nil).Wait()
	return err
}

// PublishSnapshot implements status.Publisher.
func (s *Server) PublishSnapshot(snapshot *status.Snapshot) error {
	payload, err := snapshot.Encode()
	if err != nil {
		return err
	}
	s.Queue.Pub(s.Info.Ref.Name()+"/"+TopicStatus, payload)
	return nil
}

func (s *Server) publishMeta(payload []byte) paho.Token {
	return s.Queue.PubWith(s.Info.Ref.Name()+"/"+TopicMeta, payload, 1, true)
}
