package framework

import (
	"context"
	"errors"
	"time"

	"github.com/golang/glog"
)

// ErrStopLoop can be returned by a Controller to end the loop without error.
var ErrStopLoop = errors.New("stop loop")

// DefaultInterval is used when Loop.Interval is not set.
const DefaultInterval = time.Second

// Loop invokes controllers at a fixed interval.
type Loop struct {
	Interval time.Duration
	// Iterations limits the number of iterations, 0 means unlimited.
	Iterations int

	controllers []Controller
}

// NewLoop creates a Loop.
func NewLoop(interval time.Duration) *Loop {
	return &Loop{Interval: interval}
}

// AddController registers controllers to the loop.
// They run in the order of registration.
func (l *Loop) AddController(ctls ...Controller) *Loop {
	l.controllers = append(l.controllers, ctls...)
	return l
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for n := 0; l.Iterations <= 0 || n < l.Iterations; n++ {
		if n > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.runIteration(ctx, n); err != nil {
			if err == ErrStopLoop {
				return nil
			}
			return err
		}
	}
	return nil
}

func (l *Loop) runIteration(ctx context.Context, n int) error {
	glog.V(4).Infof("loop iteration %d", n)
	for _, ctl := range l.controllers {
		if err := ctl.Control(ctx, n); err != nil {
			return err
		}
	}
	return nil
}
