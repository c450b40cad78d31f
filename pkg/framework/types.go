package framework

import (
	"context"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Controller is invoked once per loop iteration.
type Controller interface {
	Control(ctx context.Context, iteration int) error
}

// ControlFunc defines the func form of Controller.
type ControlFunc func(ctx context.Context, iteration int) error

// Control implements Controller.
func (f ControlFunc) Control(ctx context.Context, iteration int) error {
	return f(ctx, iteration)
}
