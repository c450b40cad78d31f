package comm

import (
	"context"
	"io"
)

// FrameHandler is called when the device collects a frame or drops one.
type FrameHandler interface {
	HandleFrame(context.Context, *Received, error)
}

// HandleFrameFunc is func type of FrameHandler.
type HandleFrameFunc func(context.Context, *Received, error)

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, rcv *Received, err error) {
	f(ctx, rcv, err)
}

// Device is the receiving end of the link, as run by the matrix
// controller. Read on ReadWriter is expected to time out.
type Device struct {
	ReadWriter io.ReadWriter
	Mode       Mode
	Handler    FrameHandler
	// Echo mirrors every collected frame back to the host.
	Echo bool

	parser  Parser
	pending []byte
}

// NewDevice creates a Device which echoes.
func NewDevice(rw io.ReadWriter, mode Mode) *Device {
	return &Device{ReadWriter: rw, Mode: mode, Echo: true}
}

// Run receives frames until ctx is done or the link fails.
func (d *Device) Run(ctx context.Context) error {
	buf := make([]byte, ChecksumFrameSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := d.ReadWriter.Read(buf)
		if n > 0 {
			if err := d.Feed(ctx, buf[:n]); err != nil {
				return err
			}
		}
		if err != nil && !IsTimeout(err) {
			return err
		}
		if n == 0 || err != nil {
			d.Timeout(ctx)
		}
	}
}

// Feed processes received bytes.
func (d *Device) Feed(ctx context.Context, data []byte) error {
	if d.Mode != ModeChecksum {
		d.pending = append(d.pending, data...)
		for len(d.pending) >= PayloadSize {
			rcv := &Received{}
			copy(rcv.Payload[:], d.pending)
			d.pending = d.pending[PayloadSize:]
			rcv.Checksum = Checksum(rcv.Payload[:])
			if err := d.mirror(rcv.Payload[:]); err != nil {
				return err
			}
			d.handle(ctx, rcv, nil)
		}
		return nil
	}
	for _, b := range data {
		pr := d.parser.Parse(b)
		if pr.Err != nil {
			d.handle(ctx, nil, pr.Err)
		}
		if pr.Frame != nil {
			if err := d.mirror(pr.Frame.Bytes()); err != nil {
				return err
			}
			d.handle(ctx, pr.Frame, pr.Frame.Verify())
		}
	}
	return nil
}

// Timeout drops any partially collected frame.
func (d *Device) Timeout(ctx context.Context) {
	if d.Mode != ModeChecksum {
		if len(d.pending) > 0 {
			d.pending = d.pending[:0]
			d.handle(ctx, nil, ErrIncomplete)
		}
		return
	}
	if pr := d.parser.Timeout(); pr.Err != nil {
		d.handle(ctx, nil, pr.Err)
	}
}

func (d *Device) mirror(data []byte) error {
	if !d.Echo {
		return nil
	}
	if _, err := d.ReadWriter.Write(data); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	return nil
}

func (d *Device) handle(ctx context.Context, rcv *Received, err error) {
	if h := d.Handler; h != nil {
		h.HandleFrame(ctx, rcv, err)
	}
}
