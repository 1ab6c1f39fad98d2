// Package status captures the engine state for telemetry. Snapshots are
// encoded as protobuf messages.
package status

import (
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/dio.go/pkg/dio"
)

// Snapshot is the state of all channels at one loop iteration.
type Snapshot struct {
	Timestamp int64           `protobuf:"varint,1,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	Inputs    []*InputStatus  `protobuf:"bytes,2,rep,name=inputs,proto3" json:"inputs,omitempty"`
	Outputs   []*OutputStatus `protobuf:"bytes,3,rep,name=outputs,proto3" json:"outputs,omitempty"`
	Version   string          `protobuf:"bytes,4,opt,name=version,proto3" json:"version,omitempty"`
}

// Reset implements proto.Message.
func (m *Snapshot) Reset() { *m = Snapshot{} }

// String implements proto.Message.
func (m *Snapshot) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*Snapshot) ProtoMessage() {}

// InputStatus is the state of a PulseCounter.
type InputStatus struct {
	Pin         uint32 `protobuf:"varint,1,opt,name=pin,proto3" json:"pin,omitempty"`
	Level       bool   `protobuf:"varint,2,opt,name=level,proto3" json:"level,omitempty"`
	Count       uint32 `protobuf:"varint,3,opt,name=count,proto3" json:"count,omitempty"`
	OnTimeTicks uint32 `protobuf:"varint,4,opt,name=on_time_ticks,json=onTimeTicks,proto3" json:"on_time_ticks,omitempty"`
	ActiveHigh  bool   `protobuf:"varint,5,opt,name=active_high,json=activeHigh,proto3" json:"active_high,omitempty"`
	Enabled     bool   `protobuf:"varint,6,opt,name=enabled,proto3" json:"enabled,omitempty"`
	MaxCount    uint32 `protobuf:"varint,7,opt,name=max_count,json=maxCount,proto3" json:"max_count,omitempty"`
}

// Reset implements proto.Message.
func (m *InputStatus) Reset() { *m = InputStatus{} }

// String implements proto.Message.
func (m *InputStatus) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*InputStatus) ProtoMessage() {}

// OutputStatus is the state of a PwmController.
type OutputStatus struct {
	Pin           uint32 `protobuf:"varint,1,opt,name=pin,proto3" json:"pin,omitempty"`
	Mode          string `protobuf:"bytes,2,opt,name=mode,proto3" json:"mode,omitempty"`
	Step          string `protobuf:"bytes,3,opt,name=step,proto3" json:"step,omitempty"`
	Function      string `protobuf:"bytes,4,opt,name=function,proto3" json:"function,omitempty"`
	Input         uint32 `protobuf:"varint,5,opt,name=input,proto3" json:"input,omitempty"`
	HasInput      bool   `protobuf:"varint,6,opt,name=has_input,json=hasInput,proto3" json:"has_input,omitempty"`
	Relation      bool   `protobuf:"varint,7,opt,name=relation,proto3" json:"relation,omitempty"`
	DelayElapsed  uint32 `protobuf:"varint,8,opt,name=delay_elapsed,json=delayElapsed,proto3" json:"delay_elapsed,omitempty"`
	OutputElapsed uint32 `protobuf:"varint,9,opt,name=output_elapsed,json=outputElapsed,proto3" json:"output_elapsed,omitempty"`
}

// Reset implements proto.Message.
func (m *OutputStatus) Reset() { *m = OutputStatus{} }

// String implements proto.Message.
func (m *OutputStatus) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*OutputStatus) ProtoMessage() {}

// Capture takes a Snapshot of the ports. It must be called on the loop
// goroutine.
func Capture(ports *dio.PortManager, now time.Time) *Snapshot {
	s := &Snapshot{Timestamp: now.UnixNano()}
	for _, di := range ports.Inputs() {
		s.Inputs = append(s.Inputs, &InputStatus{
			Pin:         uint32(di.Pin()),
			Level:       di.Level(),
			Count:       di.Count(),
			OnTimeTicks: di.OnTimeTicks(),
			ActiveHigh:  di.ActiveHigh(),
			Enabled:     di.Active(),
			MaxCount:    di.MaxCount(),
		})
	}
	for _, do := range ports.Outputs() {
		in, hasInput := do.Input()
		s.Outputs = append(s.Outputs, &OutputStatus{
			Pin:           uint32(do.Pin()),
			Mode:          do.Mode().String(),
			Step:          do.Step().String(),
			Function:      do.Settings().Function.String(),
			Input:         uint32(in),
			HasInput:      hasInput,
			Relation:      do.RelationStatus(),
			DelayElapsed:  do.DelayElapsedTicks(),
			OutputElapsed: do.OutputElapsedTicks(),
		})
	}
	return s
}

// Encode marshals the snapshot.
func (m *Snapshot) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// Decode unmarshals a snapshot.
func Decode(b []byte) (*Snapshot, error) {
	s := &Snapshot{}
	if err := proto.Unmarshal(b, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Publisher sends snapshots somewhere.
type Publisher interface {
	PublishSnapshot(*Snapshot) error
}
