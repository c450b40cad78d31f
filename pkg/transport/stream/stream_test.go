package stream

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPackets(t *testing.T) {
	var sent [][]byte
	s := NewPackets(PacketWriteFunc(func(pkt []byte) error {
		sent = append(sent, pkt)
		return nil
	}), 10*time.Millisecond)

	n, err := s.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, [][]byte{{1, 2, 3}}, sent)

	s.Deliver([]byte{4, 5, 6})
	buf := make([]byte, 2)
	n, err = s.Read(buf)
	require.NoError(t, err)
	require.Equal(t, []byte{4, 5}, buf[:n])
	n, err = s.Read(buf)
	require.NoError(t, err)
	require.Equal(t, []byte{6}, buf[:n])

	n, err = s.Read(buf)
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, s.Close())
	_, err = s.Read(buf)
	require.Equal(t, io.EOF, err)
	_, err = s.Write([]byte{1})
	require.Error(t, err)
}

func TestDeadline(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()
	d := NewDeadline(a, 10*time.Millisecond)
	defer d.Close()

	buf := make([]byte, 4)
	n, err := d.Read(buf)
	require.NoError(t, err)
	require.Zero(t, n)

	d.ReadTimeout = time.Second
	go b.Write([]byte{7, 8})
	n, err = d.Read(buf)
	require.NoError(t, err)
	require.Equal(t, []byte{7, 8}, buf[:n])
}
