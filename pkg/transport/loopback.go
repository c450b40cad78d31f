package transport

import (
	"os"
	"sync"
	"time"

	"github.com/robotalks/ledmatrix/pkg/transport/stream"
)

// Loopback mirrors every written byte back to the reader, like a
// controller running the echo firmware.
type Loopback struct {
	ReadTimeout time.Duration
	// Filter rewrites written bytes before they are mirrored.
	Filter func([]byte) []byte

	buf      []byte
	closed   bool
	lock     sync.Mutex
	notifyCh chan struct{}
}

// NewLoopback creates a Loopback.
func NewLoopback(readTimeout time.Duration) *Loopback {
	return &Loopback{ReadTimeout: readTimeout, notifyCh: make(chan struct{}, 1)}
}

// Write implements io.Writer.
func (l *Loopback) Write(p []byte) (int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.closed {
		return 0, os.ErrClosed
	}
	data := p
	if l.Filter != nil {
		data = l.Filter(append([]byte(nil), p...))
	}
	l.buf = append(l.buf, data...)
	select {
	case l.notifyCh <- struct{}{}:
	default:
	}
	return len(p), nil
}

// Read implements io.Reader.
func (l *Loopback) Read(p []byte) (int, error) {
	timeout := l.ReadTimeout
	if timeout <= 0 {
		timeout = stream.DefaultReadTimeout
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		l.lock.Lock()
		if l.closed {
			l.lock.Unlock()
			return 0, os.ErrClosed
		}
		if len(l.buf) > 0 {
			n := copy(p, l.buf)
			l.buf = l.buf[n:]
			l.lock.Unlock()
			return n, nil
		}
		l.lock.Unlock()
		select {
		case <-l.notifyCh:
		case <-deadline.C:
			return 0, nil
		}
	}
}

// Close implements io.Closer.
func (l *Loopback) Close() error {
	l.lock.Lock()
	l.closed = true
	l.lock.Unlock()
	select {
	case l.notifyCh <- struct{}{}:
	default:
	}
	return nil
}
