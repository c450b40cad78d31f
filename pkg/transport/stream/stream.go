// Package stream adapts message oriented links to timed byte streams.
package stream

import (
	"io"
	"os"
	"sync"
	"time"
)

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketWriteFunc is the func form of PacketWriter.
type PacketWriteFunc func([]byte) error

// WritePacket implements PacketWriter.
func (f PacketWriteFunc) WritePacket(pkt []byte) error {
	return f(pkt)
}

// Packets turns delivered packets into a byte stream. Every Write becomes
// one packet. Read waits at most ReadTimeout and then returns (0, nil).
type Packets struct {
	Writer      PacketWriter
	ReadTimeout time.Duration

	packetCh  chan []byte
	pending   []byte
	closeCh   chan struct{}
	closeOnce sync.Once
}

// DefaultReadTimeout is used when ReadTimeout is not set.
const DefaultReadTimeout = time.Second

// NewPackets creates Packets.
func NewPackets(w PacketWriter, readTimeout time.Duration) *Packets {
	return &Packets{
		Writer:      w,
		ReadTimeout: readTimeout,
		packetCh:    make(chan []byte, 16),
		closeCh:     make(chan struct{}),
	}
}

// Deliver queues a received packet. It blocks while the queue is full.
func (s *Packets) Deliver(pkt []byte) {
	if len(pkt) == 0 {
		return
	}
	select {
	case s.packetCh <- append([]byte(nil), pkt...):
	case <-s.closeCh:
	}
}

// Read implements io.Reader.
func (s *Packets) Read(p []byte) (int, error) {
	if len(s.pending) == 0 {
		timeout := s.ReadTimeout
		if timeout <= 0 {
			timeout = DefaultReadTimeout
		}
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case s.pending = <-s.packetCh:
		case <-timer.C:
			return 0, nil
		case <-s.closeCh:
			return 0, io.EOF
		}
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// Write implements io.Writer.
func (s *Packets) Write(p []byte) (int, error) {
	select {
	case <-s.closeCh:
		return 0, os.ErrClosed
	default:
	}
	if err := s.Writer.WritePacket(append([]byte(nil), p...)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close implements io.Closer.
func (s *Packets) Close() error {
	s.closeOnce.Do(func() { close(s.closeCh) })
	return nil
}

// DeadlineConn is a connection supporting read deadlines.
type DeadlineConn interface {
	io.ReadWriteCloser
	SetReadDeadline(time.Time) error
}

// Deadline applies a fresh read deadline before every Read and reports an
// expired deadline as (0, nil).
type Deadline struct {
	Conn        DeadlineConn
	ReadTimeout time.Duration
}

// NewDeadline creates Deadline.
func NewDeadline(conn DeadlineConn, readTimeout time.Duration) *Deadline {
	return &Deadline{Conn: conn, ReadTimeout: readTimeout}
}

// Read implements io.Reader.
func (d *Deadline) Read(p []byte) (int, error) {
	timeout := d.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	if err := d.Conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	n, err := d.Conn.Read(p)
	if err != nil && os.IsTimeout(err) {
		err = nil
	}
	return n, err
}

// Write implements io.Writer.
func (d *Deadline) Write(p []byte) (int, error) {
	return d.Conn.Write(p)
}

// Close implements io.Closer.
func (d *Deadline) Close() error {
	return d.Conn.Close()
}
