// Package rtapp wires the DIO engine, the request dispatcher and the
// telemetry poller into a framework Loop.
package rtapp

import (
	"github.com/golang/glog"

	"github.com/robotalks/dio.go/pkg/dio"
	"github.com/robotalks/dio.go/pkg/protocol"
)

// Dispatcher decodes request frames, applies them to the ports and
// encodes the responses. It must run on the loop goroutine.
type Dispatcher struct {
	Ports   *dio.PortManager
	Version string
}

// NewDispatcher creates a Dispatcher replying the default Version.
func NewDispatcher(ports *dio.PortManager) *Dispatcher {
	return &Dispatcher{Ports: ports, Version: Version}
}

// Dispatch handles one request frame and returns the response frame.
// It always replies, with -1 or an NG frame on failure.
func (d *Dispatcher) Dispatch(frame []byte) []byte {
	req, err := protocol.DecodeRequest(frame)
	if err != nil {
		glog.Warningf("invalid request: %v", err)
		if hdr, herr := protocol.DecodeHeader(frame); herr == nil && protocol.HasFrameResponse(hdr.Code) {
			return protocol.FailureFrame().Encode()
		}
		return protocol.EncodeInt(protocol.ResultNG)
	}
	if protocol.HasFrameResponse(req.Code) {
		f, err := d.frameResult(req)
		if err != nil {
			glog.Warningf("%s: %v", req.Code, err)
			f = protocol.FailureFrame()
		}
		return f.Encode()
	}
	val, err := d.intResult(req)
	if err != nil {
		glog.Warningf("%s: %v", req.Code, err)
		val = protocol.ResultNG
	}
	glog.V(2).Infof("%s => %d", req.Code, val)
	return protocol.EncodeInt(val)
}

func (d *Dispatcher) frameResult(req *protocol.Request) (*protocol.Frame, error) {
	switch req.Code {
	case protocol.CodeDIReadPulseLevel:
		levels := d.Ports.Levels()
		return protocol.LevelsFrame(levels[:]), nil
	case protocol.CodeDIOReadVersion:
		return protocol.VersionFrame(d.Version)
	}
	return nil, &protocol.UnknownCodeError{Code: req.Code}
}

func (d *Dispatcher) intResult(req *protocol.Request) (int32, error) {
	ports := d.Ports
	switch body := req.Body.(type) {
	case *protocol.DIConfig:
		return ok(ports.ConfigurePulseCounter(dio.PinID(body.PinID), body.IsPulseHigh, body.MinPulseWidth, body.MaxPulseCount))
	case *protocol.Reset:
		return ok(ports.ResetPulseCount(dio.PinID(body.PinID), body.InitVal))
	case *protocol.DOSingle:
		return ok(ports.ConfigureOutput(dio.PinID(body.PinID), &dio.SingleConfig{
			Output: outputOf(body.FunctionType, &body.OutputParams),
		}))
	case *protocol.DOEdge:
		return ok(ports.ConfigureOutput(dio.PinID(body.PinID), &dio.EdgeConfig{
			Output:          outputOf(body.FunctionType, &body.OutputParams),
			Input:           dio.PinID(body.RelationPort),
			Edge:            dio.EdgeType(body.EdgeType),
			ChatteringTicks: body.ChatteringVal,
		}))
	case *protocol.DOCount:
		return ok(ports.ConfigureOutput(dio.PinID(body.PinID), &dio.CountConfig{
			Output:     outputOf(body.FunctionType, &body.OutputParams),
			Input:      dio.PinID(body.RelationPort),
			StartCount: body.StartOutputCount,
			StopCount:  body.StopOutputCount,
		}))
	case *protocol.Pin:
		return d.pinResult(req.Code, dio.PinID(body.PinID))
	}
	return 0, &protocol.UnknownCodeError{Code: req.Code}
}

func (d *Dispatcher) pinResult(code protocol.RequestCode, pin dio.PinID) (int32, error) {
	ports := d.Ports
	switch code {
	case protocol.CodeDIReadPulseCount:
		return count(ports.PulseCount(pin))
	case protocol.CodeDIReadDutySumTime:
		return count(ports.DutySumTime(pin))
	case protocol.CodeDIReadPinLevel:
		return flag(ports.PinLevel(pin))
	case protocol.CodeDOStopOutput:
		return ok(ports.StopOutput(pin))
	case protocol.CodeDOReadRelationStatus:
		return flag(ports.RelationStatus(pin))
	}
	return 0, &protocol.UnknownCodeError{Code: code}
}

func outputOf(fn uint32, params *protocol.OutputParams) dio.Output {
	return dio.Output{
		Function: dio.FunctionType(fn),
		Level:    params.OutputLevel,
		Pulse: dio.PulseSettings{
			Clock:          dio.PulseClock(params.PulseClock),
			EffectiveTicks: params.PulseEffectiveTime,
			PeriodTicks:    params.PulsePeriod,
		},
		DelayTicks:  params.DelayTime,
		OutputTicks: params.OutputTime,
	}
}

func ok(err error) (int32, error) {
	if err != nil {
		return 0, err
	}
	return protocol.ResultOK, nil
}

// count replies the raw 32 bits, a count of 0xffffffff is
// indistinguishable from a failure on the wire.
func count(v uint32, err error) (int32, error) {
	return int32(v), err
}

func flag(v bool, err error) (int32, error) {
	if err != nil || !v {
		return 0, err
	}
	return 1, nil
}
