package comm

// Received is a frame collected by the receiving side.
type Received struct {
	Payload  Payload
	Checksum byte // trailer as received; computed from Payload in ModeEcho
}

// Verify recomputes the payload sum and compares it to the trailer.
func (r *Received) Verify() error {
	return CheckChecksum(r.Payload, r.Checksum)
}

// Bytes re-encodes the frame exactly as it was received.
func (r *Received) Bytes() []byte {
	b := NewFrame(ModeChecksum, r.Payload).Bytes()
	b[len(b)-1] = r.Checksum
	return b
}

// CheckChecksum compares the modulo-256 sum of payload with the received
// checksum byte.
func CheckChecksum(payload Payload, received byte) error {
	if sum := Checksum(payload[:]); sum != received {
		return &MismatchError{
			Mode:        ModeChecksum,
			ExpectedLen: PayloadSize,
			ActualLen:   PayloadSize,
			Expected:    payload[:],
			Actual:      payload[:],
			ExpectedSum: sum,
			ActualSum:   received,
		}
	}
	return nil
}

// Parser parses ModeChecksum frames one byte at a time.
type Parser struct {
	state   parseState
	matched int
	payload Payload
	recvLen int
}

// ParseResult indicates the result after one parsing step.
type ParseResult struct {
	// Frame is set when a complete frame has been collected.
	Frame *Received
	// Err is set when a partial frame was dropped.
	Err error
}

type parseState int

const (
	stateStart   parseState = iota // matching MagicStart
	statePayload                   // collecting payload bytes
	stateEnd                       // matching MagicEnd
	stateSum                       // waiting for checksum byte
)

// Receiving indicates a frame is partially collected.
func (p *Parser) Receiving() bool {
	return p.state != stateStart || p.matched > 0
}

// Reset drops any partial frame.
func (p *Parser) Reset() {
	p.state, p.matched, p.recvLen = stateStart, 0, 0
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	switch p.state {
	case stateStart:
		p.matchStart(b)
		if p.matched == len(MagicStart) {
			p.state, p.matched, p.recvLen = statePayload, 0, 0
		}
	case statePayload:
		p.payload[p.recvLen] = b
		p.recvLen++
		if p.recvLen >= PayloadSize {
			p.state = stateEnd
		}
	case stateEnd:
		if b != MagicEnd[p.matched] {
			p.Reset()
			p.matchStart(b)
			pr.Err = ErrBadTrailer
			return
		}
		if p.matched++; p.matched == len(MagicEnd) {
			p.state, p.matched = stateSum, 0
		}
	case stateSum:
		pr.Frame = &Received{Payload: p.payload, Checksum: b}
		p.Reset()
	}
	return
}

// Timeout notifies the parser the stream went quiet.
func (p *Parser) Timeout() (pr ParseResult) {
	if p.state != stateStart {
		pr.Err = ErrIncomplete
	}
	p.Reset()
	return
}

func (p *Parser) matchStart(b byte) {
	switch {
	case b == MagicStart[p.matched]:
		p.matched++
	case b == MagicStart[0]:
		p.matched = 1
	default:
		p.matched = 0
	}
}
