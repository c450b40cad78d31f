package host

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ledmatrix/pkg/comm"
	"github.com/robotalks/ledmatrix/pkg/pixel"
	"github.com/robotalks/ledmatrix/pkg/report"
	"github.com/robotalks/ledmatrix/pkg/transport"
)

type recorder struct {
	reports []*report.TransferReport
}

func (r *recorder) Report(_ context.Context, m *report.TransferReport) error {
	r.reports = append(r.reports, m)
	return nil
}

func newTestHost(mode comm.Mode) (*Host, *transport.Loopback, *recorder) {
	l := transport.NewLoopback(10 * time.Millisecond)
	s := comm.NewSession(l, mode)
	s.Settle = 0
	h := New(s, "loop://")
	rec := &recorder{}
	h.Reporter = rec
	return h, l, rec
}

func TestSend(t *testing.T) {
	h, l, rec := newTestHost(comm.ModeEcho)
	var written []byte
	l.Filter = func(p []byte) []byte {
		written = append(written, p...)
		return p
	}
	res, err := h.Send(context.Background(), "heart")
	require.NoError(t, err)
	require.Equal(t, comm.StateVerified, res.State)
	require.Equal(t, 64, res.Sent)
	require.Equal(t, pixel.HeartPattern[:], written)
	require.Len(t, rec.reports, 1)
	require.EqualValues(t, 64, rec.reports[0].Sent)
	require.Equal(t, "heart", rec.reports[0].Pattern)
	require.Equal(t, "verified", rec.reports[0].State)

	_, err = h.Send(context.Background(), "nyan")
	require.IsType(t, &UnknownPatternError{}, err)
}

func TestRunSequence(t *testing.T) {
	h, l, rec := newTestHost(comm.ModeEcho)
	h.Dwell = time.Millisecond
	// the second pattern comes back short
	writes := 0
	l.Filter = func(p []byte) []byte {
		writes++
		if writes == 2 {
			return p[:32]
		}
		return p
	}
	results, err := h.RunSequence(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, comm.StateVerified, results[0].State)
	require.Equal(t, comm.StateMismatch, results[1].State)
	require.Equal(t, comm.StateVerified, results[2].State)
	require.Len(t, rec.reports, 3)
	require.Equal(t, "checkerboard", rec.reports[1].Pattern)
}

func TestRunSequenceTransportError(t *testing.T) {
	h, l, _ := newTestHost(comm.ModeEcho)
	l.Close()
	results, err := h.RunSequence(context.Background(), "white", "black")
	require.Error(t, err)
	require.Len(t, results, 1)
	require.Equal(t, comm.StateTransportError, results[0].State)
}

func TestProbeThenSend(t *testing.T) {
	h, _, rec := newTestHost(comm.ModeEcho)
	ok, err := h.Probe(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	res, err := h.ProbeThenSend(context.Background(), "heart")
	require.NoError(t, err)
	require.Equal(t, comm.StateVerified, res.State)
	require.Len(t, rec.reports, 1)
}

func TestStream(t *testing.T) {
	h, _, rec := newTestHost(comm.ModeChecksum)
	h.Session.SkipVerify = true
	stats, err := h.Stream(context.Background(), time.Millisecond, 3, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Equal(t, 3, stats.Frames)
	require.Zero(t, stats.Mismatches)
	require.Len(t, rec.reports, 3)
	for _, r := range rec.reports {
		require.Equal(t, "frame-sent", r.State)
		require.EqualValues(t, 73, r.Sent)
	}
}

func TestStreamVerified(t *testing.T) {
	h, _, _ := newTestHost(comm.ModeChecksum)
	stats, err := h.Stream(context.Background(), time.Millisecond, 2, nil)
	require.NoError(t, err)
	require.Equal(t, StreamStats{Frames: 2}, stats)
}
