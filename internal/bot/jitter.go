package bot

import (
	"context"
	"math/rand/v2"
	"time"
)

// SleepFunc blocks for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Jitter waits a random duration in [Min, Max] so actions don't run at a
// fixed cadence.
type Jitter struct {
	Min   time.Duration
	Max   time.Duration
	Sleep SleepFunc
}

// Duration draws the next delay, both bounds inclusive
func (j Jitter) Duration() time.Duration {
	if j.Max <= j.Min {
		return j.Min
	}
	return j.Min + time.Duration(rand.Int64N(int64(j.Max-j.Min)+1))
}

// Wait blocks for a freshly drawn delay
func (j Jitter) Wait(ctx context.Context) error {
	sleep := j.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	return sleep(ctx, j.Duration())
}
