// Package transport opens the byte stream connecting host and matrix.
//
// A link is named by a URL-like string:
//
//	/dev/ttyUSB0, COM3, serial:///dev/ttyACM0   serial port
//	tcp://host:port                             raw TCP stream
//	ws://host:port/path                         binary websocket frames
//	mqtt://broker:1883/prefix/                  relayed by an MQTT broker
//	loop://                                     in-memory echo
//
// Every Transport reports an expired read timeout as (0, nil) so callers can
// bound their wait without special casing the link.
package transport

import (
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/robotalks/ledmatrix/pkg/transport/mqtt"
	"github.com/robotalks/ledmatrix/pkg/transport/serial"
	"github.com/robotalks/ledmatrix/pkg/transport/stream"
	"github.com/robotalks/ledmatrix/pkg/transport/websocket"
)

// Transport is an open link.
type Transport interface {
	io.ReadWriteCloser
}

// Options configures Open.
type Options struct {
	Baud        int
	ReadTimeout time.Duration
	// Device opens the controller side where the link is asymmetric.
	Device bool
}

// DefaultOptions matches the controller firmware.
func DefaultOptions() Options {
	return Options{Baud: serial.DefaultBaud, ReadTimeout: serial.DefaultReadTimeout}
}

// OpenError reports a link that could not be opened.
type OpenError struct {
	Name string
	Err  error
}

// Error implements error.
func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *OpenError) Unwrap() error {
	return e.Err
}

// Open opens the named link.
func Open(name string, opts Options) (Transport, error) {
	t, err := open(name, opts)
	if err != nil {
		return nil, &OpenError{Name: name, Err: err}
	}
	return t, nil
}

func open(name string, opts Options) (Transport, error) {
	scheme, rest := splitScheme(name)
	switch scheme {
	case "", "serial":
		if rest == "" {
			return nil, fmt.Errorf("missing port name")
		}
		return serial.Open(rest, opts.Baud, opts.ReadTimeout)
	case "tcp":
		conn, err := net.DialTimeout("tcp", rest, 5*time.Second)
		if err != nil {
			return nil, err
		}
		return stream.NewDeadline(conn, opts.ReadTimeout), nil
	case "ws", "wss":
		return websocket.Dial(name, opts.ReadTimeout)
	case "mqtt", "mqtts":
		return mqtt.Dial(name, opts.Device, opts.ReadTimeout)
	case "loop":
		return NewLoopback(opts.ReadTimeout), nil
	default:
		return nil, fmt.Errorf("unsupported scheme %q", scheme)
	}
}

func splitScheme(name string) (string, string) {
	if pos := strings.Index(name, "://"); pos > 0 {
		return strings.ToLower(name[:pos]), name[pos+3:]
	}
	return "", name
}
