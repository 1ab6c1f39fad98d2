package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrShortFrame indicates the frame is shorter than a header.
	ErrShortFrame = errors.New("frame too short")
	// ErrPayloadTooLong indicates the payload doesn't fit a frame.
	ErrPayloadTooLong = errors.New("payload too long")
	// ErrNotASCII indicates a version string with non-ASCII bytes.
	ErrNotASCII = errors.New("not ASCII")
)

// UnknownCodeError indicates an unsupported request code.
type UnknownCodeError struct {
	Code RequestCode
}

// Error implements error.
func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("unknown request code %d", uint32(e.Code))
}

// LengthError indicates the body length doesn't match the code.
type LengthError struct {
	Code     RequestCode
	Expected int
	Actual   int
}

// Error implements error.
func (e *LengthError) Error() string {
	return fmt.Sprintf("%s: body length %d, expect %d", e.Code, e.Actual, e.Expected)
}

// BodyTypeError indicates a body not matching the code when encoding.
type BodyTypeError struct {
	Code RequestCode
	Body Body
}

// Error implements error.
func (e *BodyTypeError) Error() string {
	return fmt.Sprintf("%s: unexpected body %T", e.Code, e.Body)
}

// ResponseSizeError indicates a response of unexpected size.
type ResponseSizeError struct {
	Expected int
	Actual   int
}

// Error implements error.
func (e *ResponseSizeError) Error() string {
	return fmt.Sprintf("response size %d, expect %d", e.Actual, e.Expected)
}

// ReturnCodeError is a frame response with a failure return code.
type ReturnCodeError struct {
	Code int32
}

// Error implements error.
func (e *ReturnCodeError) Error() string {
	return fmt.Sprintf("return code %d", e.Code)
}
