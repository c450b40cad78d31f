package comm

import (
	"bytes"
	"io"
	"os"
)

// Verifier confirms reception of a frame already written to the link.
// It returns the bytes it read back. A *MismatchError reports content that
// disagrees with the frame; an *IOError reports a transport failure.
type Verifier interface {
	Verify(sent *Frame, r io.Reader) ([]byte, error)
}

// VerifyFunc is the func form of Verifier.
type VerifyFunc func(*Frame, io.Reader) ([]byte, error)

// Verify implements Verifier.
func (f VerifyFunc) Verify(sent *Frame, r io.Reader) ([]byte, error) {
	return f(sent, r)
}

// VerifierFor returns the verifier paired with the mode.
func VerifierFor(mode Mode) Verifier {
	if mode == ModeChecksum {
		return ChecksumVerifier{}
	}
	return EchoVerifier{}
}

// EchoVerifier expects the payload to be mirrored verbatim.
type EchoVerifier struct{}

// Verify implements Verifier.
func (EchoVerifier) Verify(sent *Frame, r io.Reader) ([]byte, error) {
	want := sent.Payload[:]
	got, err := ReadAtMost(r, len(want))
	if err != nil {
		return got, &IOError{Op: "read", Err: err}
	}
	if !bytes.Equal(got, want) {
		return got, &MismatchError{
			Mode:        ModeEcho,
			ExpectedLen: len(want),
			ActualLen:   len(got),
			Expected:    want,
			Actual:      got,
		}
	}
	return got, nil
}

// ChecksumVerifier expects the frame to be mirrored and checks the
// mirrored trailer against the sum of the mirrored payload and the sum of
// the sent payload.
type ChecksumVerifier struct{}

// Verify implements Verifier.
func (ChecksumVerifier) Verify(sent *Frame, r io.Reader) ([]byte, error) {
	got, err := ReadAtMost(r, ChecksumFrameSize)
	if err != nil {
		return got, &IOError{Op: "read", Err: err}
	}
	mismatch := &MismatchError{
		Mode:        ModeChecksum,
		ExpectedLen: ChecksumFrameSize,
		ActualLen:   len(got),
		Expected:    sent.Bytes(),
		Actual:      got,
		ExpectedSum: sent.Checksum(),
	}
	var p Parser
	for _, b := range got {
		pr := p.Parse(b)
		if pr.Frame == nil {
			continue
		}
		mismatch.ActualSum = pr.Frame.Checksum
		if err := pr.Frame.Verify(); err != nil {
			return got, err
		}
		if pr.Frame.Checksum != mismatch.ExpectedSum || pr.Frame.Payload != sent.Payload {
			return got, mismatch
		}
		return got, nil
	}
	if len(got) > 0 {
		mismatch.ActualSum = got[len(got)-1]
	}
	return got, mismatch
}

// ReadAtMost reads up to n bytes. It stops early once a read times out or
// returns nothing, so the wait is bounded by the reader's own timeout.
// A short read is not an error.
func ReadAtMost(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	got := 0
	for got < n {
		m, err := r.Read(buf[got:])
		got += m
		if err != nil {
			if IsTimeout(err) {
				break
			}
			return buf[:got], err
		}
		if m == 0 {
			break
		}
	}
	return buf[:got], nil
}

// IsTimeout reports whether err is a read deadline expiring.
func IsTimeout(err error) bool {
	return os.IsTimeout(err)
}
