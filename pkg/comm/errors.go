package comm

import (
	"errors"
	"fmt"
)

var (
	// ErrBadTrailer indicates the bytes after the payload were not MagicEnd.
	ErrBadTrailer = errors.New("bad frame trailer")
	// ErrIncomplete indicates the stream went quiet in the middle of a frame.
	ErrIncomplete = errors.New("incomplete frame")
)

// IOError wraps a write or read failure at the transport.
// The attempt is abandoned and the transport should be closed.
type IOError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *IOError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// MismatchError describes a completed exchange whose content disagrees
// with what was expected. It is always recoverable.
type MismatchError struct {
	Mode Mode

	// ExpectedLen and ActualLen count the compared bytes.
	ExpectedLen int
	ActualLen   int
	// Expected and Actual hold the compared bytes.
	Expected []byte
	Actual   []byte

	// ExpectedSum and ActualSum are set in ModeChecksum.
	ExpectedSum byte
	ActualSum   byte
}

// Error implements error.
func (e *MismatchError) Error() string {
	if e.ActualLen != e.ExpectedLen {
		return fmt.Sprintf("%s mismatch: sent %d bytes, received %d bytes",
			e.Mode, e.ExpectedLen, e.ActualLen)
	}
	if e.Mode == ModeChecksum && e.ActualSum != e.ExpectedSum {
		return fmt.Sprintf("checksum mismatch: expected 0x%02X, received 0x%02X",
			e.ExpectedSum, e.ActualSum)
	}
	return fmt.Sprintf("%s mismatch: content differs at offset %d of %d",
		e.Mode, firstDiff(e.Expected, e.Actual), e.ExpectedLen)
}

// IsMismatch returns true if the error is a MismatchError.
func IsMismatch(err error) bool {
	var m *MismatchError
	return errors.As(err, &m)
}

func firstDiff(a, b []byte) int {
	for i := range a {
		if i >= len(b) || a[i] != b[i] {
			return i
		}
	}
	return len(a)
}
