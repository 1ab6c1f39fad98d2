// Package protocol implements the fixed-layout request/response frames
// exchanged between the configuring side and the DIO engine.
package protocol

import "fmt"

// RequestCode identifies a request.
type RequestCode uint32

// Request codes.
const (
	CodeDISetConfigAndStart          RequestCode = 1
	CodeDIPulseCountReset            RequestCode = 2
	CodeDIReadPulseCount             RequestCode = 3
	CodeDIReadDutySumTime            RequestCode = 4
	CodeDIReadPulseLevel             RequestCode = 5
	CodeDIReadPinLevel               RequestCode = 6
	CodeDOSetConfigSingle            RequestCode = 7
	CodeDOSetConfigEdgeTrigger       RequestCode = 8
	CodeDOSetConfigPulseCountTrigger RequestCode = 9
	CodeDOStopOutput                 RequestCode = 10
	CodeDOReadRelationStatus         RequestCode = 11
	CodeDIOReadVersion               RequestCode = 255
)

var codeNames = map[RequestCode]string{
	CodeDISetConfigAndStart:          "DI_SET_CONFIG_AND_START",
	CodeDIPulseCountReset:            "DI_PULSE_COUNT_RESET",
	CodeDIReadPulseCount:             "DI_READ_PULSE_COUNT",
	CodeDIReadDutySumTime:            "DI_READ_DUTY_SUM_TIME",
	CodeDIReadPulseLevel:             "DI_READ_PULSE_LEVEL",
	CodeDIReadPinLevel:               "DI_READ_PIN_LEVEL",
	CodeDOSetConfigSingle:            "DO_SET_CONFIG_SINGLE",
	CodeDOSetConfigEdgeTrigger:       "DO_SET_CONFIG_EDGE_TRIGGER",
	CodeDOSetConfigPulseCountTrigger: "DO_SET_CONFIG_PULSECOUNT_TRIGGER",
	CodeDOStopOutput:                 "DO_STOP_OUTPUT",
	CodeDOReadRelationStatus:         "DO_READ_RELATIONSTATUS",
	CodeDIOReadVersion:               "DIO_READ_VERSION",
}

func (c RequestCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("REQUEST(%d)", uint32(c))
}

// Frame sizes in bytes.
const (
	HeaderSize        = 8
	DIConfigSize      = 16
	DOSingleSize      = 32
	DOEdgeSize        = 44
	DOCountSize       = 44
	ResetSize         = 8
	PinSize           = 4
	IntResponseSize   = 4
	PayloadSize       = 256
	FrameResponseSize = HeaderSize + PayloadSize
)

// Return values.
const (
	ResultOK int32 = 1
	ResultNG int32 = -1
)

// newBody returns an empty body for the code, nil for codes without
// body. ok is false for unknown codes.
func newBody(code RequestCode) (body Body, ok bool) {
	switch code {
	case CodeDISetConfigAndStart:
		return &DIConfig{}, true
	case CodeDIPulseCountReset:
		return &Reset{}, true
	case CodeDIReadPulseCount, CodeDIReadDutySumTime, CodeDIReadPinLevel,
		CodeDOStopOutput, CodeDOReadRelationStatus:
		return &Pin{}, true
	case CodeDOSetConfigSingle:
		return &DOSingle{}, true
	case CodeDOSetConfigEdgeTrigger:
		return &DOEdge{}, true
	case CodeDOSetConfigPulseCountTrigger:
		return &DOCount{}, true
	case CodeDIReadPulseLevel, CodeDIOReadVersion:
		return nil, true
	}
	return nil, false
}

// HasFrameResponse tells whether the response of the code is a frame
// instead of a 4-byte integer.
func HasFrameResponse(code RequestCode) bool {
	return code == CodeDIReadPulseLevel || code == CodeDIOReadVersion
}
