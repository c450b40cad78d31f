package comm

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"
)

// State is the state of one transfer attempt.
type State int

// States of a transfer attempt.
const (
	StateIdle State = iota
	StateFrameSent
	StateVerified
	StateMismatch
	StateTransportError
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFrameSent:
		return "frame-sent"
	case StateVerified:
		return "verified"
	case StateMismatch:
		return "mismatch"
	case StateTransportError:
		return "transport-error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result is the outcome of one transfer attempt.
type Result struct {
	State    State
	Mode     Mode
	Sent     int
	Checksum byte
	Received []byte
	Mismatch *MismatchError
	Err      error
	Elapsed  time.Duration
}

// OK indicates the frame went out and nothing disagreed.
func (r *Result) OK() bool {
	return r.State == StateVerified || r.State == StateFrameSent
}

// String implements fmt.Stringer.
func (r *Result) String() string {
	switch r.State {
	case StateMismatch:
		return fmt.Sprintf("%s: %v", r.State, r.Mismatch)
	case StateTransportError:
		return fmt.Sprintf("%s: %v", r.State, r.Err)
	default:
		return fmt.Sprintf("%s: %s %d bytes sum=0x%02X in %s",
			r.State, r.Mode, r.Sent, r.Checksum, r.Elapsed)
	}
}

// Session drives transfers over one exclusively owned link.
type Session struct {
	ReadWriter io.ReadWriter
	Mode       Mode
	// Verifier overrides the verifier paired with Mode.
	Verifier Verifier
	// SkipVerify ends an attempt once the frame is written.
	SkipVerify bool
	// Settle is how long to wait after writing before reading back.
	Settle time.Duration

	state State
}

// DefaultSettle is the wait between writing and reading back.
const DefaultSettle = 100 * time.Millisecond

// NewSession creates a Session.
func NewSession(rw io.ReadWriter, mode Mode) *Session {
	return &Session{ReadWriter: rw, Mode: mode, Settle: DefaultSettle}
}

// State returns the state reached by the last attempt.
func (s *Session) State() State {
	return s.state
}

func (s *Session) verifier() Verifier {
	if s.Verifier != nil {
		return s.Verifier
	}
	return VerifierFor(s.Mode)
}

// Transfer writes one frame and verifies it. A mismatch is reported in the
// Result only; the returned error is set for transport failures and
// cancellation.
func (s *Session) Transfer(ctx context.Context, payload Payload) (*Result, error) {
	start := time.Now()
	frame := NewFrame(s.Mode, payload)
	res := &Result{Mode: s.Mode, Checksum: frame.Checksum()}
	defer func() {
		res.Elapsed = time.Since(start)
		s.state = res.State
	}()
	if err := ctx.Err(); err != nil {
		return res, err
	}

	w := bufio.NewWriterSize(s.ReadWriter, ChecksumFrameSize)
	n, err := frame.WriteTo(w)
	if err == nil {
		err = w.Flush()
	}
	res.Sent = int(n) - w.Buffered()
	if err != nil {
		res.State, res.Err = StateTransportError, &IOError{Op: "write", Err: err}
		return res, res.Err
	}
	res.State = StateFrameSent
	glog.V(3).Infof("%s frame sent: %d bytes sum=0x%02X", s.Mode, n, res.Checksum)
	if s.SkipVerify {
		return res, nil
	}
	if err := s.settle(ctx); err != nil {
		return res, err
	}

	var mismatch *MismatchError
	res.Received, err = s.verifier().Verify(frame, s.ReadWriter)
	switch {
	case err == nil:
		res.State = StateVerified
	case errors.As(err, &mismatch):
		res.State, res.Mismatch = StateMismatch, mismatch
		glog.Warningf("%s transfer: %v", s.Mode, mismatch)
	default:
		res.State, res.Err = StateTransportError, err
		return res, err
	}
	return res, nil
}

// Probe writes a short pattern and reports whether it was mirrored.
func (s *Session) Probe(ctx context.Context, pattern []byte) (bool, []byte, error) {
	if _, err := s.ReadWriter.Write(pattern); err != nil {
		return false, nil, &IOError{Op: "write", Err: err}
	}
	if err := s.settle(ctx); err != nil {
		return false, nil, err
	}
	got, err := ReadAtMost(s.ReadWriter, len(pattern))
	if err != nil {
		return false, got, &IOError{Op: "read", Err: err}
	}
	return bytes.Equal(got, pattern), got, nil
}

func (s *Session) settle(ctx context.Context) error {
	if s.Settle <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.Settle):
		return nil
	}
}
