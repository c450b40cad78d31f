package comm

import (
	"fmt"
	"io"
	"strings"
)

// PayloadSize is the fixed payload length, one byte per pixel.
const PayloadSize = 64

// Frame delimiters used in ModeChecksum.
var (
	MagicStart = []byte("START")
	MagicEnd   = []byte("END")
)

// ChecksumFrameSize is the wire length of a ModeChecksum frame.
var ChecksumFrameSize = len(MagicStart) + PayloadSize + len(MagicEnd) + 1

// Mode selects the framing and the matching verification.
type Mode int

const (
	// ModeEcho sends the bare payload and verifies by echo.
	ModeEcho Mode = iota
	// ModeChecksum delimits the payload and appends a checksum trailer.
	ModeChecksum
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeEcho:
		return "echo"
	case ModeChecksum:
		return "checksum"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// FrameSize returns the wire length of a frame in this mode.
func (m Mode) FrameSize() int {
	if m == ModeChecksum {
		return ChecksumFrameSize
	}
	return PayloadSize
}

// ParseMode parses the mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "echo", "a", "bare":
		return ModeEcho, nil
	case "checksum", "b", "framed":
		return ModeChecksum, nil
	default:
		return ModeEcho, fmt.Errorf("unknown mode %q", s)
	}
}

// Payload is one encoded image.
type Payload [PayloadSize]byte

// Sum is a running modulo-256 sum.
type Sum byte

// Add folds bytes into the sum.
func (s Sum) Add(bs ...byte) Sum {
	for _, b := range bs {
		s += Sum(b)
	}
	return s
}

// Checksum computes the modulo-256 sum of data in one pass.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// Frame is one unit of transmission.
type Frame struct {
	Mode    Mode
	Payload Payload
}

// NewFrame creates a frame.
func NewFrame(mode Mode, payload Payload) *Frame {
	return &Frame{Mode: mode, Payload: payload}
}

// Checksum returns the trailer checksum of the payload.
func (f *Frame) Checksum() byte {
	return Checksum(f.Payload[:])
}

// Bytes returns encoded bytes for sending.
func (f *Frame) Bytes() []byte {
	if f.Mode != ModeChecksum {
		b := make([]byte, PayloadSize)
		copy(b, f.Payload[:])
		return b
	}
	b := make([]byte, 0, ChecksumFrameSize)
	b = append(b, MagicStart...)
	b = append(b, f.Payload[:]...)
	b = append(b, MagicEnd...)
	return append(b, f.Checksum())
}

// WriteTo writes encoded bytes. The payload checksum is accumulated as the
// payload goes out and sent as the trailer in ModeChecksum.
func (f *Frame) WriteTo(w io.Writer) (n int64, err error) {
	if f.Mode != ModeChecksum {
		n1, err := w.Write(f.Payload[:])
		return int64(n1), err
	}
	write := func(b []byte) error {
		n1, err := w.Write(b)
		n += int64(n1)
		return err
	}
	if err = write(MagicStart); err != nil {
		return
	}
	var sum Sum
	for _, b := range f.Payload {
		if err = write([]byte{b}); err != nil {
			return
		}
		sum = sum.Add(b)
	}
	if err = write(MagicEnd); err != nil {
		return
	}
	err = write([]byte{byte(sum)})
	return
}
