package framework

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoopIterations(t *testing.T) {
	var seen []int
	l := NewLoop(time.Millisecond)
	l.Iterations = 3
	l.AddController(ControlFunc(func(ctx context.Context, n int) error {
		seen = append(seen, n)
		return nil
	}))
	require.NoError(t, l.Run(context.Background()))
	require.Equal(t, []int{0, 1, 2}, seen)
}

func TestLoopStop(t *testing.T) {
	count := 0
	l := NewLoop(time.Millisecond)
	l.AddController(ControlFunc(func(ctx context.Context, n int) error {
		count++
		if n == 1 {
			return ErrStopLoop
		}
		return nil
	}))
	require.NoError(t, l.Run(context.Background()))
	require.Equal(t, 2, count)

	fail := errors.New("unplugged")
	l = NewLoop(time.Millisecond).AddController(ControlFunc(func(context.Context, int) error {
		return fail
	}))
	require.Equal(t, fail, l.Run(context.Background()))
}

func TestLoopCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := NewLoop(time.Hour)
	l.AddController(ControlFunc(func(context.Context, int) error {
		cancel()
		return nil
	}))
	require.Equal(t, context.Canceled, l.Run(ctx))
}

func TestRunnerAggregatesErrors(t *testing.T) {
	fail := errors.New("fail")
	r := NewRunner().Go(
		RunFunc(func(context.Context) error { return nil }),
		NamedRun("failing", RunFunc(func(context.Context) error { return fail })),
		RunFunc(func(context.Context) error { return context.Canceled }),
	)
	err := r.Wait()
	require.Error(t, err)
	agg, ok := err.(*AggregatedError)
	require.True(t, ok)
	require.Len(t, agg.Errors, 1)
	require.ErrorIs(t, err, fail)
	require.Equal(t, "failing: fail", err.Error())
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).AddFor("link", nil).Aggregate())

	closed := errors.New("already closed")
	errs.AddFor("link", closed).Add(io.EOF)
	err := errs.Aggregate()
	require.Error(t, err)
	require.Equal(t, "2 errors: link: already closed; EOF", err.Error())
	require.ErrorIs(t, err, closed)
	require.ErrorIs(t, err, io.EOF)

	var res *ResourceError
	require.ErrorAs(t, err, &res)
	require.Equal(t, "link", res.Resource)
}

type testCloser struct {
	closed int
	ch     chan struct{}
}

func (c *testCloser) Close() error {
	c.closed++
	close(c.ch)
	return nil
}

var _ io.Closer = &testCloser{}

func TestRunWithContextCloser(t *testing.T) {
	c := &testCloser{ch: make(chan struct{})}
	require.NoError(t, RunWithContextCloser(context.Background(), c, func() error { return nil }))
	require.Equal(t, 1, c.closed)

	c = &testCloser{ch: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunWithContextCloser(ctx, c, func() error {
		<-c.ch
		return io.EOF
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, c.closed)
}
