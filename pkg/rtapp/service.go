package rtapp

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/dio.go/pkg/dio"
	fx "github.com/robotalks/dio.go/pkg/framework"
	"github.com/robotalks/dio.go/pkg/status"
	"github.com/robotalks/dio.go/pkg/transport"
)

// DefaultStatusInterval is the default period of status snapshots.
const DefaultStatusInterval = time.Second

// statusBacklog bounds the snapshots waiting for publishers.
const statusBacklog = 4

// Service runs the engine inside a Loop:
// the tick controller advances the ports on every periodic iteration,
// the dispatch controller serves queued requests after the tick and
// the status controller samples snapshots for the publishers.
type Service struct {
	Ports          *dio.PortManager
	Dispatcher     *Dispatcher
	StatusInterval time.Duration
	Publishers     []status.Publisher

	lastStatus time.Time
	statusCh   chan *status.Snapshot
}

// NewService creates a Service over the ports.
func NewService(ports *dio.PortManager) *Service {
	return &Service{
		Ports:          ports,
		Dispatcher:     NewDispatcher(ports),
		StatusInterval: DefaultStatusInterval,
	}
}

// AddPublishers adds status publishers.
func (s *Service) AddPublishers(pubs ...status.Publisher) *Service {
	s.Publishers = append(s.Publishers, pubs...)
	return s
}

// AddToLoop implements LoopAdder.
func (s *Service) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvTick, fx.ControlFunc(s.tick))
	loop.AddController(fx.PrLvDispatch, fx.ControlFunc(s.dispatch))
	if s.StatusInterval > 0 && len(s.Publishers) > 0 {
		s.statusCh = make(chan *status.Snapshot, statusBacklog)
		loop.AddController(fx.PrLvTelemetry, fx.ControlFunc(s.sample))
		loop.AddRunnable(fx.NamedRun("status", fx.RunFunc(s.publish)))
	}
}

func (s *Service) tick(cc fx.ControlContext) error {
	if cc.Periodic() {
		s.Ports.Tick()
	}
	return nil
}

func (s *Service) dispatch(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
		if msg, ok := mc.CurrentMessage().(*transport.RequestMsg); ok {
			mc.MessageTaken()
			msg.Reply(s.Dispatcher.Dispatch(msg.Frame))
		}
	}))
	return nil
}

func (s *Service) sample(cc fx.ControlContext) error {
	now := cc.Time()
	if now.Sub(s.lastStatus) < s.StatusInterval {
		return nil
	}
	s.lastStatus = now
	select {
	case s.statusCh <- s.capture(now):
	default:
		glog.V(4).Info("status backlog full, snapshot dropped")
	}
	return nil
}

func (s *Service) publish(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snapshot := <-s.statusCh:
			for _, pub := range s.Publishers {
				if err := pub.PublishSnapshot(snapshot); err != nil {
					glog.Warningf("publish status: %v", err)
				}
			}
		}
	}
}

func (s *Service) capture(now time.Time) *status.Snapshot {
	snapshot := status.Capture(s.Ports, now)
	snapshot.Version = s.Dispatcher.Version
	return snapshot
}
