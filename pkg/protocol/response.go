package protocol

import "encoding/binary"

// MaxVersionLen is the number of significant bytes of a version string.
const MaxVersionLen = PayloadSize - 1

// EncodeInt encodes a 4-byte integer response.
func EncodeInt(v int32) []byte {
	b := make([]byte, IntResponseSize)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

// DecodeInt decodes a 4-byte integer response.
func DecodeInt(b []byte) (int32, error) {
	if len(b) != IntResponseSize {
		return 0, &ResponseSizeError{Expected: IntResponseSize, Actual: len(b)}
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// Frame is the fixed-size response carrying a payload.
type Frame struct {
	ReturnCode int32
	Length     uint32
	Payload    [PayloadSize]byte
}

// Encode encodes the frame.
func (f *Frame) Encode() []byte {
	b := make([]byte, FrameResponseSize)
	binary.LittleEndian.PutUint32(b[0:], uint32(f.ReturnCode))
	binary.LittleEndian.PutUint32(b[4:], f.Length)
	copy(b[HeaderSize:], f.Payload[:])
	return b
}

// DecodeFrame decodes a frame response.
func DecodeFrame(b []byte) (*Frame, error) {
	if len(b) != FrameResponseSize {
		return nil, &ResponseSizeError{Expected: FrameResponseSize, Actual: len(b)}
	}
	f := &Frame{
		ReturnCode: int32(binary.LittleEndian.Uint32(b[0:])),
		Length:     binary.LittleEndian.Uint32(b[4:]),
	}
	copy(f.Payload[:], b[HeaderSize:])
	return f, nil
}

// FailureFrame is the frame replied when a frame request fails.
func FailureFrame() *Frame {
	return &Frame{ReturnCode: ResultNG}
}

// LevelsFrame carries one level per DI channel.
func LevelsFrame(levels []bool) *Frame {
	f := &Frame{ReturnCode: ResultOK, Length: uint32(len(levels))}
	for n, lv := range levels {
		if lv {
			f.Payload[n] = 1
		}
	}
	return f
}

// Levels extracts the levels of a LevelsFrame.
func (f *Frame) Levels() ([]bool, error) {
	if f.ReturnCode != ResultOK {
		return nil, &ReturnCodeError{Code: f.ReturnCode}
	}
	if f.Length > PayloadSize {
		return nil, ErrPayloadTooLong
	}
	levels := make([]bool, f.Length)
	for n := range levels {
		levels[n] = f.Payload[n] != 0
	}
	return levels, nil
}

// VersionFrame carries a NUL-padded ASCII version.
func VersionFrame(version string) (*Frame, error) {
	if len(version) > MaxVersionLen {
		return nil, ErrPayloadTooLong
	}
	for n := 0; n < len(version); n++ {
		if version[n] > 0x7f {
			return nil, ErrNotASCII
		}
	}
	f := &Frame{ReturnCode: ResultOK, Length: uint32(len(version))}
	copy(f.Payload[:], version)
	return f, nil
}

// Version extracts the string of a VersionFrame, messageLen bytes long.
func (f *Frame) Version() (string, error) {
	if f.ReturnCode != ResultOK {
		return "", &ReturnCodeError{Code: f.ReturnCode}
	}
	if f.Length > MaxVersionLen {
		return "", ErrPayloadTooLong
	}
	return string(f.Payload[:f.Length]), nil
}
