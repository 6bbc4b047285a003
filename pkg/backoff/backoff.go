package backoff

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/clock"
	"github.com/juju/retry"
)

// Policy describes a bounded retry loop: at most Attempts calls, with a
// fixed Delay between consecutive calls. There is no jitter and no growth;
// callers that poll remote endpoints rely on the total wait being exactly
// (failures × Delay).
type Policy struct {
	Attempts int
	Delay    time.Duration
	Clock    clock.Clock
}

// Fixed returns a policy making attempts calls spaced by delay on the wall clock.
func Fixed(attempts int, delay time.Duration) Policy {
	return Policy{Attempts: attempts, Delay: delay, Clock: clock.WallClock}
}

// WithClock returns a copy of the policy that waits on clk.
func (p Policy) WithClock(clk clock.Clock) Policy {
	p.Clock = clk
	return p
}

// Validate reports whether the policy can drive a loop.
func (p Policy) Validate() error {
	if p.Attempts <= 0 {
		return fmt.Errorf("attempts must be positive, got %d", p.Attempts)
	}
	if p.Delay <= 0 {
		return fmt.Errorf("delay must be positive, got %s", p.Delay)
	}
	return nil
}

// ExhaustedError is returned when every attempt failed. Err is the error of
// the last attempt.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Operation is one attempt. attempt starts at 1.
type Operation func(ctx context.Context, attempt int) error

// Notify is called after every failed attempt, before the delay.
type Notify func(err error, attempt int)

// Run calls op until it succeeds, the attempts are exhausted or ctx is done.
func (p Policy) Run(ctx context.Context, op Operation, notify Notify) error {
	if err := p.Validate(); err != nil {
		return err
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.WallClock
	}

	attempt := 0
	var lastErr error
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			attempt++
			lastErr = op(ctx, attempt)
			return lastErr
		},
		IsFatalError: func(error) bool {
			return ctx.Err() != nil
		},
		NotifyFunc: func(err error, i int) {
			if notify != nil {
				notify(err, i)
			}
		},
		Attempts: p.Attempts,
		Delay:    p.Delay,
		Clock:    clk,
		Stop:     ctx.Done(),
	})
	switch {
	case err == nil:
		return nil
	case retry.IsAttemptsExceeded(err):
		return &ExhaustedError{Attempts: attempt, Err: lastErr}
	case retry.IsRetryStopped(err) || ctx.Err() != nil:
		return fmt.Errorf("interrupted after %d attempts: %w", attempt, ctx.Err())
	default:
		return lastErr
	}
}
