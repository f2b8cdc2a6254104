package dp800

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned (wrapped in a CommunicationError) when an
// operation is attempted on a session that was never opened or already closed.
var ErrNotConnected = errors.New("not connected")

// ConnectionError indicates the TCP socket to the instrument could not be
// opened at all (host unreachable, connection refused, dial timeout).
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to device at %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IsConnectionError checks if err is a ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// CommunicationError indicates an I/O failure on an open socket, or a textual
// reply that could not be parsed into the expected type.
type CommunicationError struct {
	Op  string
	Err error
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("communication error during %s: %v", e.Op, e.Err)
}

func (e *CommunicationError) Unwrap() error { return e.Err }

// IsCommunicationError checks if err is a CommunicationError.
func IsCommunicationError(err error) bool {
	var ce *CommunicationError
	return errors.As(err, &ce)
}

// ValidationError indicates a caller-supplied value or a device identity
// string failed a precondition, range check, or format check. Validation
// always happens before any device I/O.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// IsValidationError checks if err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// VerificationError indicates a post-write read-back did not match the
// requested value within tolerance. "Device accepted" means "a subsequent
// read returns a value within tolerance", not "the write returned no error".
type VerificationError struct {
	Channel   int
	Parameter string
	Requested float64
	Actual    float64
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("channel %d %s verification failed: requested %g, device reports %g",
		e.Channel, e.Parameter, e.Requested, e.Actual)
}

// IsVerificationError checks if err is a VerificationError.
func IsVerificationError(err error) bool {
	var ve *VerificationError
	return errors.As(err, &ve)
}

// ProtocolError indicates a malformed binary frame in a device reply.
type ProtocolError struct {
	Msg string
}

func (e *ProtocolError) Error() string { return e.Msg }

// IsProtocolError checks if err is a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
