// Package shutdown ties process lifetime to termination signals.
package shutdown

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
)

// NotifyContext is cancelled on SIGINT or SIGTERM.
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// Func releases one resource before the deadline in ctx.
type Func func(ctx context.Context) error

// Graceful runs fns in order under a shared timeout and returns every error.
// A timeout <= 0 means no deadline.
func Graceful(timeout time.Duration, fns ...Func) error {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	var errs error
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		errs = multierr.Append(errs, fn(ctx))
	}
	return errs
}
