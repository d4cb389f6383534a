// Package effect runs best-effort side effects: work the caller starts but
// never waits for and whose failure must not affect the primary action.
package effect

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/logging"
)

const defaultTimeout = 10 * time.Second

type Runner struct {
	logger  logging.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewRunner returns a Runner giving every effect at most timeout to
// finish. A non-positive timeout selects the default.
func NewRunner(logger logging.Logger, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Runner{logger: logger.With("module", "effect"), timeout: timeout}
}

// Go starts fn in its own goroutine. fn keeps ctx values but not its
// cancellation; errors are logged under name and otherwise dropped.
func (r *Runner) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			r.logger.Warn(ctx, "effect failed", "effect", name, "error", err)
		}
	}()
}

// Wait blocks until all started effects finish or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush waits at most d for pending effects.
func (r *Runner) Flush(ctx context.Context, d time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return r.Wait(ctx)
}

// Every calls fn each interval until ctx is done, and once up front when
// immediate is set. Calls never overlap.
func Every(ctx context.Context, interval time.Duration, immediate bool, fn func(ctx context.Context)) {
	if immediate {
		fn(ctx)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fn(ctx)
		case <-ctx.Done():
			return
		}
	}
}
