package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/ledmatrix/pkg/comm"
	"github.com/robotalks/ledmatrix/pkg/config"
	fx "github.com/robotalks/ledmatrix/pkg/framework"
	"github.com/robotalks/ledmatrix/pkg/pixel"
	"github.com/robotalks/ledmatrix/pkg/transport"
	"github.com/robotalks/ledmatrix/pkg/transport/stream"
	"github.com/robotalks/ledmatrix/pkg/transport/websocket"
)

var (
	listenURL string
	noEcho    bool
)

func init() {
	config.SetupFlags()
	flag.StringVar(&listenURL, "listen", listenURL, "Accept hosts on tcp://ADDR or ws://ADDR/PATH instead of opening -link.")
	flag.BoolVar(&noEcho, "no-echo", noEcho, "Do not mirror received frames.")
}

// simulator plays the matrix controller.
type simulator struct {
	mode comm.Mode
	conf *config.Config
}

func (s *simulator) serve(ctx context.Context, rw io.ReadWriter, peer string) error {
	d := comm.NewDevice(rw, s.mode)
	d.Echo = !noEcho
	d.Handler = comm.HandleFrameFunc(func(_ context.Context, rcv *comm.Received, err error) {
		if err != nil {
			glog.Warningf("%s: %v", peer, err)
			return
		}
		g := pixel.FromPayload(rcv.Payload)
		row := g.Row(0)
		glog.Infof("%s: frame sum=0x%02X row0=[% X]", peer, rcv.Checksum, row[:])
	})
	glog.Infof("%s: serving %s frames", peer, s.mode)
	err := d.Run(ctx)
	if err == io.EOF {
		err = nil
	}
	glog.V(1).Infof("%s: done: %v", peer, err)
	return err
}

// serveTCP serves every accepted host until ctx is done, then waits for
// the connections to finish.
func (s *simulator) serveTCP(ctx context.Context, ln net.Listener) error {
	glog.Infof("listening on tcp %s", ln.Addr())
	var wg sync.WaitGroup
	defer wg.Wait()
	return fx.RunWithContextCloser(ctx, ln, func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return err
			}
			wg.Add(1)
			go func(conn net.Conn) {
				defer wg.Done()
				defer conn.Close()
				peer := conn.RemoteAddr().String()
				if err := s.serve(ctx, stream.NewDeadline(conn, s.conf.ReadTimeout), peer); err != nil && err != context.Canceled {
					glog.Warningf("%s: %v", peer, err)
				}
			}(conn)
		}
	})
}

func (s *simulator) serveWebsocket(ctx context.Context, addr, path string) error {
	if path == "" {
		path = "/"
	}
	mux := http.NewServeMux()
	mux.Handle(path, websocket.Handler(s.conf.ReadTimeout, func(conn *websocket.Conn) {
		peer := conn.RemoteAddr()
		if err := s.serve(ctx, conn, peer); err != nil && err != context.Canceled {
			glog.Warningf("%s: %v", peer, err)
		}
	}))
	srv := &http.Server{Addr: addr, Handler: mux}
	glog.Infof("listening on ws %s%s", addr, path)
	return fx.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
}

func (s *simulator) serveLink(ctx context.Context) error {
	if s.conf.Link == "" {
		return fmt.Errorf("either -link or -listen is required")
	}
	opts := s.conf.TransportOptions()
	opts.Device = true
	t, err := transport.Open(s.conf.Link, opts)
	if err != nil {
		return err
	}
	return fx.RunWithContextCloser(ctx, t, func() error {
		return s.serve(ctx, t, s.conf.Link)
	})
}

// Run implements framework.Runnable.
func (s *simulator) Run(ctx context.Context) error {
	if listenURL == "" {
		return s.serveLink(ctx)
	}
	u, err := url.Parse(listenURL)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "tcp":
		ln, err := net.Listen("tcp", u.Host)
		if err != nil {
			return err
		}
		return s.serveTCP(ctx, ln)
	case "ws":
		return s.serveWebsocket(ctx, u.Host, u.Path)
	default:
		return fmt.Errorf("unsupported listen scheme %q", u.Scheme)
	}
}

func main() {
	flag.Parse()

	conf, err := config.Load()
	if err != nil {
		glog.Exit(err)
	}
	mode, err := conf.ParseMode()
	if err != nil {
		glog.Exit(err)
	}
	sim := &simulator{mode: mode, conf: conf}
	if err := fx.Run(fx.NamedRun("ledsim", sim)); err != nil {
		glog.Exit(err)
	}
}
