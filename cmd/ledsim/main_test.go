package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ledmatrix/pkg/comm"
	"github.com/robotalks/ledmatrix/pkg/config"
	"github.com/robotalks/ledmatrix/pkg/pixel"
	"github.com/robotalks/ledmatrix/pkg/transport"
)

func TestServeTCP(t *testing.T) {
	conf := config.NewConfig()
	conf.ReadTimeout = 20 * time.Millisecond
	sim := &simulator{mode: comm.ModeChecksum, conf: conf}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sim.serveTCP(ctx, ln) }()

	opts := transport.DefaultOptions()
	opts.ReadTimeout = 200 * time.Millisecond
	tr, err := transport.Open("tcp://"+ln.Addr().String(), opts)
	require.NoError(t, err)
	defer tr.Close()

	s := comm.NewSession(tr, comm.ModeChecksum)
	s.Settle = 0
	res, err := s.Transfer(ctx, comm.Payload(pixel.Heart().Payload()))
	require.NoError(t, err)
	require.Equal(t, comm.StateVerified, res.State)

	cancel()
	select {
	case err := <-done:
		require.Equal(t, context.Canceled, err)
	case <-time.After(5 * time.Second):
		t.Fatal("simulator did not stop")
	}
}
