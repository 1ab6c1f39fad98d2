package protocol

import (
	"encoding/binary"
	"reflect"
)

// Body is one of the fixed-size request bodies.
type Body interface {
	// Size is the encoded size in bytes.
	Size() int
	// MarshalTo encodes into b which must have at least Size bytes.
	MarshalTo(b []byte)

	unmarshal(b []byte)
}

// Header precedes every request.
type Header struct {
	Code   RequestCode
	Length uint32
}

// Request is a decoded request frame.
type Request struct {
	Code RequestCode
	// Body is nil for codes without body.
	Body Body
}

// fields writes consecutive 4-byte slots. A bool takes a whole slot with
// the value in the first byte.
type fields struct {
	b   []byte
	off int
}

func (f *fields) u32(v uint32) {
	binary.LittleEndian.PutUint32(f.b[f.off:], v)
	f.off += 4
}

func (f *fields) flag(v bool) {
	var n uint32
	if v {
		n = 1
	}
	f.u32(n)
}

func (f *fields) readU32() uint32 {
	v := binary.LittleEndian.Uint32(f.b[f.off:])
	f.off += 4
	return v
}

func (f *fields) readFlag() bool {
	v := f.b[f.off] != 0
	f.off += 4
	return v
}

// DIConfig is the body of DI_SET_CONFIG_AND_START.
type DIConfig struct {
	PinID         uint32
	MinPulseWidth uint32
	MaxPulseCount uint32
	IsPulseHigh   bool
}

// Size implements Body.
func (d *DIConfig) Size() int { return DIConfigSize }

// MarshalTo implements Body.
func (d *DIConfig) MarshalTo(b []byte) {
	f := fields{b: b}
	f.u32(d.PinID)
	f.u32(d.MinPulseWidth)
	f.u32(d.MaxPulseCount)
	f.flag(d.IsPulseHigh)
}

func (d *DIConfig) unmarshal(b []byte) {
	f := fields{b: b}
	d.PinID = f.readU32()
	d.MinPulseWidth = f.readU32()
	d.MaxPulseCount = f.readU32()
	d.IsPulseHigh = f.readFlag()
}

// OutputParams is the tail shared by all DO config bodies.
type OutputParams struct {
	OutputLevel        bool
	PulseClock         uint32
	PulseEffectiveTime uint32
	PulsePeriod        uint32
	DelayTime          uint32
	OutputTime         uint32
}

func (o *OutputParams) marshal(f *fields) {
	f.flag(o.OutputLevel)
	f.u32(o.PulseClock)
	f.u32(o.PulseEffectiveTime)
	f.u32(o.PulsePeriod)
	f.u32(o.DelayTime)
	f.u32(o.OutputTime)
}

func (o *OutputParams) unmarshal(f *fields) {
	o.OutputLevel = f.readFlag()
	o.PulseClock = f.readU32()
	o.PulseEffectiveTime = f.readU32()
	o.PulsePeriod = f.readU32()
	o.DelayTime = f.readU32()
	o.OutputTime = f.readU32()
}

// DOSingle is the body of DO_SET_CONFIG_SINGLE.
type DOSingle struct {
	PinID        uint32
	FunctionType uint32
	OutputParams
}

// Size implements Body.
func (d *DOSingle) Size() int { return DOSingleSize }

// MarshalTo implements Body.
func (d *DOSingle) MarshalTo(b []byte) {
	f := fields{b: b}
	f.u32(d.PinID)
	f.u32(d.FunctionType)
	d.OutputParams.marshal(&f)
}

func (d *DOSingle) unmarshal(b []byte) {
	f := fields{b: b}
	d.PinID = f.readU32()
	d.FunctionType = f.readU32()
	d.OutputParams.unmarshal(&f)
}

// DOEdge is the body of DO_SET_CONFIG_EDGE_TRIGGER.
type DOEdge struct {
	PinID         uint32
	FunctionType  uint32
	RelationPort  uint32
	EdgeType      uint32
	ChatteringVal uint32
	OutputParams
}

// Size implements Body.
func (d *DOEdge) Size() int { return DOEdgeSize }

// MarshalTo implements Body.
func (d *DOEdge) MarshalTo(b []byte) {
	f := fields{b: b}
	f.u32(d.PinID)
	f.u32(d.FunctionType)
	f.u32(d.RelationPort)
	f.u32(d.EdgeType)
	f.u32(d.ChatteringVal)
	d.OutputParams.marshal(&f)
}

func (d *DOEdge) unmarshal(b []byte) {
	f := fields{b: b}
	d.PinID = f.readU32()
	d.FunctionType = f.readU32()
	d.RelationPort = f.readU32()
	d.EdgeType = f.readU32()
	d.ChatteringVal = f.readU32()
	d.OutputParams.unmarshal(&f)
}

// DOCount is the body of DO_SET_CONFIG_PULSECOUNT_TRIGGER.
type DOCount struct {
	PinID            uint32
	FunctionType     uint32
	RelationPort     uint32
	StartOutputCount uint32
	StopOutputCount  uint32
	OutputParams
}

// Size implements Body.
func (d *DOCount) Size() int { return DOCountSize }

// MarshalTo implements Body.
func (d *DOCount) MarshalTo(b []byte) {
	f := fields{b: b}
	f.u32(d.PinID)
	f.u32(d.FunctionType)
	f.u32(d.RelationPort)
	f.u32(d.StartOutputCount)
	f.u32(d.StopOutputCount)
	d.OutputParams.marshal(&f)
}

func (d *DOCount) unmarshal(b []byte) {
	f := fields{b: b}
	d.PinID = f.readU32()
	d.FunctionType = f.readU32()
	d.RelationPort = f.readU32()
	d.StartOutputCount = f.readU32()
	d.StopOutputCount = f.readU32()
	d.OutputParams.unmarshal(&f)
}

// Reset is the body of DI_PULSE_COUNT_RESET.
type Reset struct {
	PinID   uint32
	InitVal uint32
}

// Size implements Body.
func (r *Reset) Size() int { return ResetSize }

// MarshalTo implements Body.
func (r *Reset) MarshalTo(b []byte) {
	f := fields{b: b}
	f.u32(r.PinID)
	f.u32(r.InitVal)
}

func (r *Reset) unmarshal(b []byte) {
	f := fields{b: b}
	r.PinID = f.readU32()
	r.InitVal = f.readU32()
}

// Pin is the bare pin id body.
type Pin struct {
	PinID uint32
}

// Size implements Body.
func (p *Pin) Size() int { return PinSize }

// MarshalTo implements Body.
func (p *Pin) MarshalTo(b []byte) {
	binary.LittleEndian.PutUint32(b, p.PinID)
}

func (p *Pin) unmarshal(b []byte) {
	p.PinID = binary.LittleEndian.Uint32(b)
}

// Encode encodes the request with its header.
func (r *Request) Encode() ([]byte, error) {
	expected, ok := newBody(r.Code)
	if !ok {
		return nil, &UnknownCodeError{Code: r.Code}
	}
	if reflect.TypeOf(expected) != reflect.TypeOf(r.Body) ||
		(r.Body != nil && reflect.ValueOf(r.Body).IsNil()) {
		return nil, &BodyTypeError{Code: r.Code, Body: r.Body}
	}
	var size int
	if r.Body != nil {
		size = r.Body.Size()
	}
	b := make([]byte, HeaderSize+size)
	binary.LittleEndian.PutUint32(b[0:], uint32(r.Code))
	binary.LittleEndian.PutUint32(b[4:], uint32(size))
	if r.Body != nil {
		r.Body.MarshalTo(b[HeaderSize:])
	}
	return b, nil
}

// DecodeHeader decodes the header at the beginning of b.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, ErrShortFrame
	}
	return Header{
		Code:   RequestCode(binary.LittleEndian.Uint32(b[0:])),
		Length: binary.LittleEndian.Uint32(b[4:]),
	}, nil
}

// DecodeRequest decodes a whole request frame. The body length in the
// header and the frame length must both match the fixed body size.
func DecodeRequest(b []byte) (*Request, error) {
	hdr, err := DecodeHeader(b)
	if err != nil {
		return nil, err
	}
	body, ok := newBody(hdr.Code)
	if !ok {
		return nil, &UnknownCodeError{Code: hdr.Code}
	}
	var size int
	if body != nil {
		size = body.Size()
	}
	if hdr.Length != uint32(size) {
		return nil, &LengthError{Code: hdr.Code, Expected: size, Actual: int(hdr.Length)}
	}
	if len(b) != HeaderSize+size {
		return nil, &LengthError{Code: hdr.Code, Expected: size, Actual: len(b) - HeaderSize}
	}
	req := &Request{Code: hdr.Code}
	if body != nil {
		body.unmarshal(b[HeaderSize:])
		req.Body = body
	}
	return req, nil
}
