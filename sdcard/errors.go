package sdcard

import "fmt"

// BoundsError reports an invalid address/length argument rejected before any
// wire activity occurs.
type BoundsError struct {
	msg string
}

func (e *BoundsError) Error() string { return e.msg }

func boundsErrorf(format string, args ...interface{}) error {
	return &BoundsError{msg: fmt.Sprintf(format, args...)}
}

// TransportError wraps a failure reported by the underlying transport.Pipe.
type TransportError struct {
	msg string
	err error
}

func (e *TransportError) Error() string { return e.msg }
func (e *TransportError) Unwrap() error { return e.err }

func transportErrorf(err error, format string, args ...interface{}) error {
	return &TransportError{msg: fmt.Sprintf(format, args...), err: err}
}

// ProtocolError reports an unexpected wire response: a wrong token, a
// busy-wait that exceeded its ceiling, a CRC/write rejection, a data-error
// token on read, or an unexpected idle state after CMD55.
type ProtocolError struct {
	msg string
}

func (e *ProtocolError) Error() string { return e.msg }

func protocolErrorf(format string, args ...interface{}) error {
	return &ProtocolError{msg: fmt.Sprintf(format, args...)}
}
