package protocol

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func le(vals ...uint32) []byte {
	b := make([]byte, 0, len(vals)*4)
	for _, v := range vals {
		b = append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	return b
}

func TestRequestEncode(t *testing.T) {
	params := OutputParams{
		OutputLevel:        true,
		PulseClock:         2000000,
		PulseEffectiveTime: 1000,
		PulsePeriod:        4000,
		DelayTime:          3,
		OutputTime:         5,
	}
	paramBytes := le(1, 2000000, 1000, 4000, 3, 5)
	testCases := []struct {
		name   string
		req    Request
		expect []byte
	}{
		{"di config", Request{Code: CodeDISetConfigAndStart, Body: &DIConfig{PinID: 1, MinPulseWidth: 200, MaxPulseCount: 0xffffffff, IsPulseHigh: true}},
			le(1, 16, 1, 200, 0xffffffff, 1)},
		{"reset", Request{Code: CodeDIPulseCountReset, Body: &Reset{PinID: 0, InitVal: 30}}, le(2, 8, 0, 30)},
		{"read count", Request{Code: CodeDIReadPulseCount, Body: &Pin{PinID: 1}}, le(3, 4, 1)},
		{"read levels", Request{Code: CodeDIReadPulseLevel}, le(5, 0)},
		{"do single", Request{Code: CodeDOSetConfigSingle, Body: &DOSingle{PinID: 1, FunctionType: 2, OutputParams: params}},
			append(le(7, 32, 1, 2), paramBytes...)},
		{"do edge", Request{Code: CodeDOSetConfigEdgeTrigger, Body: &DOEdge{PinID: 0, FunctionType: 3, RelationPort: 1, EdgeType: 2, ChatteringVal: 10, OutputParams: params}},
			append(le(8, 44, 0, 3, 1, 2, 10), paramBytes...)},
		{"do count", Request{Code: CodeDOSetConfigPulseCountTrigger, Body: &DOCount{PinID: 0, FunctionType: 1, RelationPort: 0, StartOutputCount: 50, StopOutputCount: 60, OutputParams: params}},
			append(le(9, 44, 0, 1, 0, 50, 60), paramBytes...)},
		{"stop", Request{Code: CodeDOStopOutput, Body: &Pin{PinID: 0}}, le(10, 4, 0)},
		{"version", Request{Code: CodeDIOReadVersion}, le(255, 0)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := tc.req.Encode()
			require.NoError(t, err)
			require.Equal(t, tc.expect, b)
			decoded, err := DecodeRequest(b)
			require.NoError(t, err)
			require.Equal(t, &tc.req, decoded)
		})
	}
}

func TestRequestEncodeRejectsMismatchedBody(t *testing.T) {
	_, err := (&Request{Code: CodeDOSetConfigEdgeTrigger, Body: &DOCount{}}).Encode()
	require.IsType(t, &BodyTypeError{}, err)
	_, err = (&Request{Code: CodeDIReadPulseLevel, Body: &Pin{}}).Encode()
	require.IsType(t, &BodyTypeError{}, err)
	_, err = (&Request{Code: CodeDIReadPulseCount}).Encode()
	require.IsType(t, &BodyTypeError{}, err)
	_, err = (&Request{Code: CodeDOStopOutput, Body: (*Pin)(nil)}).Encode()
	require.IsType(t, &BodyTypeError{}, err)
	_, err = (&Request{Code: CodeDOSetConfigSingle, Body: (*DOSingle)(nil)}).Encode()
	require.IsType(t, &BodyTypeError{}, err)
	_, err = (&Request{Code: RequestCode(12)}).Encode()
	require.IsType(t, &UnknownCodeError{}, err)
}

func TestDecodeRequestErrors(t *testing.T) {
	testCases := []struct {
		name  string
		frame []byte
		check func(*testing.T, error)
	}{
		{"empty", nil, func(t *testing.T, err error) { require.Equal(t, ErrShortFrame, err) }},
		{"short header", []byte{1, 0, 0, 0, 4}, func(t *testing.T, err error) { require.Equal(t, ErrShortFrame, err) }},
		{"unknown code", le(12, 0), func(t *testing.T, err error) { require.IsType(t, &UnknownCodeError{}, err) }},
		{"header length mismatch", le(3, 8, 0, 0), func(t *testing.T, err error) {
			require.Equal(t, &LengthError{Code: CodeDIReadPulseCount, Expected: 4, Actual: 8}, err)
		}},
		{"truncated body", le(1, 16, 0, 0), func(t *testing.T, err error) {
			require.Equal(t, &LengthError{Code: CodeDISetConfigAndStart, Expected: 16, Actual: 8}, err)
		}},
		{"trailing bytes", append(le(10, 4, 0), 0), func(t *testing.T, err error) {
			require.Equal(t, &LengthError{Code: CodeDOStopOutput, Expected: 4, Actual: 5}, err)
		}},
		{"body on bodiless code", le(255, 4, 0), func(t *testing.T, err error) { require.IsType(t, &LengthError{}, err) }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := DecodeRequest(tc.frame)
			require.Nil(t, req)
			tc.check(t, err)
		})
	}
}

func TestBoolSlotIgnoresPadding(t *testing.T) {
	b := le(1, 16, 0, 5, 10, 0)
	b[HeaderSize+12] = 1
	b[HeaderSize+13] = 0xff
	req, err := DecodeRequest(b)
	require.NoError(t, err)
	require.True(t, req.Body.(*DIConfig).IsPulseHigh)

	b[HeaderSize+12] = 0
	req, err = DecodeRequest(b)
	require.NoError(t, err)
	require.False(t, req.Body.(*DIConfig).IsPulseHigh)
}

func TestIntResponse(t *testing.T) {
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, EncodeInt(ResultNG))
	require.Equal(t, []byte{1, 0, 0, 0}, EncodeInt(ResultOK))
	v, err := DecodeInt(EncodeInt(-1))
	require.NoError(t, err)
	require.Equal(t, int32(-1), v)
	_, err = DecodeInt(make([]byte, FrameResponseSize))
	require.IsType(t, &ResponseSizeError{}, err)
}

func TestVersionFrame(t *testing.T) {
	for _, version := range []string{"", "dio-rt 1.0.0", strings.Repeat("v", MaxVersionLen)} {
		f, err := VersionFrame(version)
		require.NoError(t, err)
		b := f.Encode()
		require.Len(t, b, FrameResponseSize)
		require.Equal(t, le(1, uint32(len(version))), b[:HeaderSize])
		require.Equal(t, []byte(version), b[HeaderSize:HeaderSize+len(version)])
		require.Equal(t, bytes.Repeat([]byte{0}, PayloadSize-len(version)), b[HeaderSize+len(version):])

		decoded, err := DecodeFrame(b)
		require.NoError(t, err)
		got, err := decoded.Version()
		require.NoError(t, err)
		require.Equal(t, version, got)
	}
	_, err := VersionFrame(strings.Repeat("v", PayloadSize))
	require.Equal(t, ErrPayloadTooLong, err)
	_, err = VersionFrame("dio-rt \xc2\xb5")
	require.Equal(t, ErrNotASCII, err)
}

func TestVersionLengthFromHeader(t *testing.T) {
	f := &Frame{ReturnCode: ResultOK, Length: 4}
	copy(f.Payload[:], "1.0\x00x")
	got, err := f.Version()
	require.NoError(t, err)
	require.Equal(t, "1.0\x00", got)

	f.Length = 2
	got, err = f.Version()
	require.NoError(t, err)
	require.Equal(t, "1.", got)

	f.Length = PayloadSize
	_, err = f.Version()
	require.Equal(t, ErrPayloadTooLong, err)

	_, err = FailureFrame().Version()
	require.Equal(t, &ReturnCodeError{Code: ResultNG}, err)
}

func TestLevelsFrame(t *testing.T) {
	b := LevelsFrame([]bool{true, false}).Encode()
	require.Equal(t, le(1, 2), b[:HeaderSize])
	require.Equal(t, []byte{1, 0}, b[HeaderSize:HeaderSize+2])
	f, err := DecodeFrame(b)
	require.NoError(t, err)
	levels, err := f.Levels()
	require.NoError(t, err)
	require.Equal(t, []bool{true, false}, levels)

	f, err = DecodeFrame(FailureFrame().Encode())
	require.NoError(t, err)
	_, err = f.Levels()
	require.Equal(t, &ReturnCodeError{Code: ResultNG}, err)
}
