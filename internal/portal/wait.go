package portal

import (
	"context"
	"time"
)

// poll evaluates cond until it returns true, an error, or timeout elapses. cond is always
// evaluated at least once. A timeout yields ErrWaitTimeout; cancellation of ctx yields ctx.Err().
func poll(ctx context.Context, timeout, interval time.Duration, cond func(context.Context) (bool, error)) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ok, err := cond(wctx)
		if ok && err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if wctx.Err() != nil {
			return ErrWaitTimeout
		}
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wctx.Done():
			return ErrWaitTimeout
		case <-ticker.C:
		}
	}
}
