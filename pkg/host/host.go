// Package host drives transfers of named patterns to the matrix.
package host

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/ledmatrix/pkg/comm"
	fx "github.com/robotalks/ledmatrix/pkg/framework"
	"github.com/robotalks/ledmatrix/pkg/pixel"
	"github.com/robotalks/ledmatrix/pkg/report"
)

// DefaultSequence is the pattern sequence used to check a new controller.
var DefaultSequence = []string{"white", "checkerboard", "gradient"}

// ProbePattern is written to check the link echoes at all.
var ProbePattern = []byte{0x55, 0xAA}

// Host sends patterns over a session.
type Host struct {
	Session  *comm.Session
	Patterns *pixel.Registry
	Reporter report.Reporter
	// Link names the transport in reports.
	Link string
	// Dwell is the pause between patterns of a sequence.
	Dwell time.Duration
}

// UnknownPatternError indicates the pattern is not registered.
type UnknownPatternError struct {
	Name string
}

// Error implements error.
func (e *UnknownPatternError) Error() string {
	return fmt.Sprintf("unknown pattern %q", e.Name)
}

// New creates a Host with builtin patterns which logs reports.
func New(s *comm.Session, link string) *Host {
	return &Host{
		Session:  s,
		Patterns: pixel.NewRegistry(),
		Reporter: report.Log{},
		Link:     link,
	}
}

// Send transfers a named pattern.
func (h *Host) Send(ctx context.Context, name string) (*comm.Result, error) {
	p, ok := h.Patterns.Lookup(name)
	if !ok {
		return nil, &UnknownPatternError{Name: name}
	}
	return h.SendGrid(ctx, name, p.Grid())
}

// SendGrid transfers a grid and reports the outcome under name.
func (h *Host) SendGrid(ctx context.Context, name string, g *pixel.Grid) (*comm.Result, error) {
	payload := comm.Payload(g.Payload())
	res, err := h.Session.Transfer(ctx, payload)
	if res != nil && res.State != comm.StateIdle && h.Reporter != nil {
		if rerr := h.Reporter.Report(ctx, report.New(h.Link, name, payload, res)); rerr != nil {
			glog.Warningf("report %s: %v", name, rerr)
		}
	}
	return res, err
}

// RunSequence sends the patterns in order, pausing Dwell between them.
// It stops at the first transport failure; mismatches do not stop it.
func (h *Host) RunSequence(ctx context.Context, names ...string) ([]*comm.Result, error) {
	if len(names) == 0 {
		names = DefaultSequence
	}
	results := make([]*comm.Result, 0, len(names))
	for n, name := range names {
		if n > 0 && h.Dwell > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(h.Dwell):
			}
		}
		res, err := h.Send(ctx, name)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// Probe checks the link mirrors a short pattern.
func (h *Host) Probe(ctx context.Context) (bool, error) {
	ok, got, err := h.Session.Probe(ctx, ProbePattern)
	if err != nil {
		return false, err
	}
	if ok {
		glog.Info("probe echoed")
	} else {
		glog.Warningf("probe not echoed, received [% X]", got)
	}
	return ok, nil
}

// ProbeThenSend probes the link and sends the pattern if the link works.
// A probe without echo does not prevent sending.
func (h *Host) ProbeThenSend(ctx context.Context, name string) (*comm.Result, error) {
	if _, err := h.Probe(ctx); err != nil {
		return nil, err
	}
	return h.Send(ctx, name)
}

// StreamStats summarizes a stream.
type StreamStats struct {
	Frames     int
	Mismatches int
}

// Stream sends random images every interval until ctx is done or count
// frames went out. Count 0 means unlimited.
func (h *Host) Stream(ctx context.Context, interval time.Duration, count int, src *rand.Rand) (StreamStats, error) {
	var stats StreamStats
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	loop := fx.NewLoop(interval)
	loop.Iterations = count
	loop.AddController(fx.ControlFunc(func(ctx context.Context, n int) error {
		g := pixel.Random(src)
		res, err := h.SendGrid(ctx, "random", g)
		if err != nil {
			return err
		}
		stats.Frames++
		if res.State == comm.StateMismatch {
			stats.Mismatches++
		}
		row := g.Row(0)
		glog.Infof("frame %d sum=0x%02X row0=[% X]", n, res.Checksum, row[:])
		return nil
	}))
	err := loop.Run(ctx)
	if err == context.Canceled {
		err = nil
	}
	return stats, err
}
