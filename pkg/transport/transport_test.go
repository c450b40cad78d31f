package transport

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ledmatrix/pkg/comm"
)

func TestSplitScheme(t *testing.T) {
	testCases := []struct {
		name   string
		scheme string
		rest   string
	}{
		{"/dev/ttyUSB0", "", "/dev/ttyUSB0"},
		{"COM3", "", "COM3"},
		{"serial:///dev/ttyACM0", "serial", "/dev/ttyACM0"},
		{"TCP://localhost:7000", "tcp", "localhost:7000"},
		{"loop://", "loop", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			scheme, rest := splitScheme(tc.name)
			require.Equal(t, tc.scheme, scheme)
			require.Equal(t, tc.rest, rest)
		})
	}
}

func TestOpenErrors(t *testing.T) {
	_, err := Open("gopher://x", DefaultOptions())
	var openErr *OpenError
	require.True(t, errors.As(err, &openErr))
	require.Equal(t, "gopher://x", openErr.Name)

	_, err = Open("serial://", DefaultOptions())
	require.Error(t, err)
}

func TestLoopbackTransfer(t *testing.T) {
	tr, err := Open("loop://", Options{ReadTimeout: 20 * time.Millisecond})
	require.NoError(t, err)
	defer tr.Close()

	for _, mode := range []comm.Mode{comm.ModeEcho, comm.ModeChecksum} {
		s := comm.NewSession(tr, mode)
		s.Settle = 0
		res, err := s.Transfer(context.Background(), comm.Payload{1, 2, 3})
		require.NoError(t, err)
		require.Equal(t, comm.StateVerified, res.State)
	}
}

func TestLoopbackFilter(t *testing.T) {
	l := NewLoopback(20 * time.Millisecond)
	l.Filter = func(p []byte) []byte { return p[:len(p)/2] }
	s := comm.NewSession(l, comm.ModeEcho)
	s.Settle = 0
	res, err := s.Transfer(context.Background(), comm.Payload{})
	require.NoError(t, err)
	require.Equal(t, comm.StateMismatch, res.State)
	require.Equal(t, 32, res.Mismatch.ActualLen)
}

func TestLoopbackTimeoutAndClose(t *testing.T) {
	l := NewLoopback(10 * time.Millisecond)
	buf := make([]byte, 4)
	n, err := l.Read(buf)
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, l.Close())
	_, err = l.Write([]byte{1})
	require.Error(t, err)
	_, err = l.Read(buf)
	require.Error(t, err)
}

func TestOpenTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			conn.Write(buf[:n])
		}
	}()

	tr, err := Open("tcp://"+ln.Addr().String(), Options{ReadTimeout: 200 * time.Millisecond})
	require.NoError(t, err)
	defer tr.Close()
	s := comm.NewSession(tr, comm.ModeChecksum)
	s.Settle = 10 * time.Millisecond
	res, err := s.Transfer(context.Background(), comm.Payload{0xFF, 0xFF})
	require.NoError(t, err)
	require.Equal(t, comm.StateVerified, res.State)
}
