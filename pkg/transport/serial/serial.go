// Package serial opens the matrix link on a serial port.
package serial

import (
	"io"
	"time"

	"github.com/golang/glog"
	"github.com/tarm/serial"
)

// Defaults matching the controller firmware.
const (
	DefaultBaud        = 115200
	DefaultReadTimeout = time.Second
)

// Port is an open serial port. Read returns (0, nil) once the read
// timeout expires without data.
type Port struct {
	Name string
	port *serial.Port
}

// Open opens the named port with 8N1 framing.
func Open(name string, baud int, readTimeout time.Duration) (*Port, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	p, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        baud,
		ReadTimeout: readTimeout,
		Size:        serial.DefaultSize,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	})
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("serial %s opened at %d baud", name, baud)
	port := &Port{Name: name, port: p}
	// Stale bytes from a previous session would be taken as an echo.
	if err := p.Flush(); err != nil {
		glog.Warningf("serial %s flush: %v", name, err)
	}
	return port, nil
}

// Read implements io.Reader.
func (p *Port) Read(b []byte) (int, error) {
	n, err := p.port.Read(b)
	if err == io.EOF && n == 0 {
		return 0, nil
	}
	return n, err
}

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Flush discards unread input.
func (p *Port) Flush() error {
	return p.port.Flush()
}

// Close implements io.Closer.
func (p *Port) Close() error {
	glog.V(1).Infof("serial %s closed", p.Name)
	return p.port.Close()
}
