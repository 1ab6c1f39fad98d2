// Package client is the configuring side of the DIO protocol. It sends
// typed requests over any transport and decodes the responses.
package client

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/dio.go/pkg/dio"
	"github.com/robotalks/dio.go/pkg/protocol"
	"github.com/robotalks/dio.go/pkg/transport"
)

// DefaultTimeout is the default time waiting for a response.
const DefaultTimeout = time.Second

var (
	// ErrTimeout indicates no response within Timeout.
	ErrTimeout = errors.New("request timeout")
	// ErrBadResponse indicates a response of unexpected size.
	ErrBadResponse = errors.New("bad response")
	// ErrClosed indicates the connection is gone.
	ErrClosed = errors.New("connection closed")
)

// CommandError is a request replied with failure.
type CommandError struct {
	Code protocol.RequestCode
}

// Error implements error.
func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed", e.Code)
}

// Client issues one request at a time over a packet transport.
type Client struct {
	Timeout time.Duration

	conn   transport.PacketReadWriter
	lock   sync.Mutex
	respCh chan []byte
	doneCh chan struct{}
	err    error
	broken bool
}

// New creates a Client and starts reading responses from conn.
func New(conn transport.PacketReadWriter) *Client {
	c := &Client{
		Timeout: DefaultTimeout,
		conn:    conn,
		respCh:  make(chan []byte, 1),
		doneCh:  make(chan struct{}),
	}
	go c.readResponses()
	return c
}

// Close closes the underlying connection if it is closable.
func (c *Client) Close() error {
	if closer, ok := c.conn.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Err returns the error stopping the reader, if any.
func (c *Client) Err() error {
	select {
	case <-c.doneCh:
		return c.err
	default:
		return nil
	}
}

func (c *Client) readResponses() {
	defer close(c.doneCh)
	for {
		pkt, err := c.conn.ReadPacket()
		if err != nil {
			c.err = err
			return
		}
		select {
		case c.respCh <- pkt:
		default:
			glog.Warningf("unexpected response of %d bytes dropped", len(pkt))
		}
	}
}

// Do sends a request and returns the raw response.
//
// Responses carry no sequence number, so a reply arriving after
// ErrTimeout can't be told apart from the reply of the next request.
// The connection is closed on ErrTimeout and every later request fails
// with ErrClosed; reconnect to continue.
func (c *Client) Do(req *protocol.Request) ([]byte, error) {
	frame, err := req.Encode()
	if err != nil {
		return nil, err
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.broken {
		return nil, ErrClosed
	}
	if err = c.conn.WritePacket(frame); err != nil {
		return nil, err
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case resp := <-c.respCh:
		glog.V(2).Infof("%s: %d bytes replied", req.Code, len(resp))
		return resp, nil
	case <-c.doneCh:
		if c.err != nil && c.err != io.EOF {
			return nil, c.err
		}
		return nil, ErrClosed
	case <-timer.C:
		glog.Warningf("%s: no response in %v, closing connection", req.Code, timeout)
		c.broken = true
		c.Close()
		return nil, ErrTimeout
	}
}

func (c *Client) doInt(req *protocol.Request) (int32, error) {
	resp, err := c.Do(req)
	if err != nil {
		return 0, err
	}
	val, err := protocol.DecodeInt(resp)
	if err != nil {
		return 0, ErrBadResponse
	}
	if val == protocol.ResultNG {
		return 0, &CommandError{Code: req.Code}
	}
	return val, nil
}

func (c *Client) doFrame(req *protocol.Request) (*protocol.Frame, error) {
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	f, err := protocol.DecodeFrame(resp)
	if err != nil {
		return nil, ErrBadResponse
	}
	if f.ReturnCode != protocol.ResultOK {
		return nil, &CommandError{Code: req.Code}
	}
	return f, nil
}

func (c *Client) doOK(req *protocol.Request) error {
	_, err := c.doInt(req)
	return err
}

func (c *Client) pinRequest(code protocol.RequestCode, pin dio.PinID) *protocol.Request {
	return &protocol.Request{Code: code, Body: &protocol.Pin{PinID: uint32(pin)}}
}

// ConfigPulseCounter configures and starts counting on a DI.
func (c *Client) ConfigPulseCounter(pin dio.PinID, activeHigh bool, minPulseWidth, maxPulseCount uint32) error {
	return c.doOK(&protocol.Request{Code: protocol.CodeDISetConfigAndStart, Body: &protocol.DIConfig{
		PinID:         uint32(pin),
		MinPulseWidth: minPulseWidth,
		MaxPulseCount: maxPulseCount,
		IsPulseHigh:   activeHigh,
	}})
}

// ResetPulseCount sets the DI count to initVal.
func (c *Client) ResetPulseCount(pin dio.PinID, initVal uint32) error {
	return c.doOK(&protocol.Request{Code: protocol.CodeDIPulseCountReset, Body: &protocol.Reset{
		PinID:   uint32(pin),
		InitVal: initVal,
	}})
}

// PulseCount reads the DI count.
func (c *Client) PulseCount(pin dio.PinID) (uint32, error) {
	val, err := c.doInt(c.pinRequest(protocol.CodeDIReadPulseCount, pin))
	return uint32(val), err
}

// DutySumTime reads the accumulated active time of a DI in ticks.
func (c *Client) DutySumTime(pin dio.PinID) (uint32, error) {
	val, err := c.doInt(c.pinRequest(protocol.CodeDIReadDutySumTime, pin))
	return uint32(val), err
}

// Levels reads the confirmed levels of all DIs.
func (c *Client) Levels() ([]bool, error) {
	f, err := c.doFrame(&protocol.Request{Code: protocol.CodeDIReadPulseLevel})
	if err != nil {
		return nil, err
	}
	return f.Levels()
}

// PinLevel reads the confirmed level of a DI.
func (c *Client) PinLevel(pin dio.PinID) (bool, error) {
	val, err := c.doInt(c.pinRequest(protocol.CodeDIReadPinLevel, pin))
	return val != 0, err
}

// ConfigSingle configures a DO without relation.
func (c *Client) ConfigSingle(pin dio.PinID, fn dio.FunctionType, out Output) error {
	return c.doOK(&protocol.Request{Code: protocol.CodeDOSetConfigSingle, Body: &protocol.DOSingle{
		PinID:        uint32(pin),
		FunctionType: uint32(fn),
		OutputParams: out.params(),
	}})
}

// ConfigEdgeTrigger configures a DO following edges of a DI.
func (c *Client) ConfigEdgeTrigger(pin dio.PinID, fn dio.FunctionType, input dio.PinID, edge dio.EdgeType, chattering uint32, out Output) error {
	return c.doOK(&protocol.Request{Code: protocol.CodeDOSetConfigEdgeTrigger, Body: &protocol.DOEdge{
		PinID:         uint32(pin),
		FunctionType:  uint32(fn),
		RelationPort:  uint32(input),
		EdgeType:      uint32(edge),
		ChatteringVal: chattering,
		OutputParams:  out.params(),
	}})
}

// ConfigCountTrigger configures a DO active inside a count window of a DI.
func (c *Client) ConfigCountTrigger(pin dio.PinID, fn dio.FunctionType, input dio.PinID, startCount, stopCount uint32, out Output) error {
	return c.doOK(&protocol.Request{Code: protocol.CodeDOSetConfigPulseCountTrigger, Body: &protocol.DOCount{
		PinID:            uint32(pin),
		FunctionType:     uint32(fn),
		RelationPort:     uint32(input),
		StartOutputCount: startCount,
		StopOutputCount:  stopCount,
		OutputParams:     out.params(),
	}})
}

// StopOutput stops a DO.
func (c *Client) StopOutput(pin dio.PinID) error {
	return c.doOK(c.pinRequest(protocol.CodeDOStopOutput, pin))
}

// RelationStatus reads the relation status of a DO.
func (c *Client) RelationStatus(pin dio.PinID) (bool, error) {
	val, err := c.doInt(c.pinRequest(protocol.CodeDOReadRelationStatus, pin))
	return val != 0, err
}

// Version reads the engine version.
func (c *Client) Version() (string, error) {
	f, err := c.doFrame(&protocol.Request{Code: protocol.CodeDIOReadVersion})
	if err != nil {
		return "", err
	}
	return f.Version()
}
