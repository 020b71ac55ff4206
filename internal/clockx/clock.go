package clockx

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts time so the simulated latencies (sign-in delay, upload
// stepping, analysis wait) can be advanced virtually in tests.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type Real struct{}

func NewReal() Real { return Real{} }

func (Real) Now() time.Time { return time.Now().UTC() }

func (Real) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fake advances instantly and records every requested sleep.
type Fake struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	if d > 0 {
		f.now = f.now.Add(d)
	}
	f.slept = append(f.slept, d)
	f.mu.Unlock()

	return nil
}

// Slept returns a copy of every duration passed to Sleep, in order.
func (f *Fake) Slept() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]time.Duration, len(f.slept))
	copy(out, f.slept)
	return out
}

// TotalSlept sums all recorded sleeps.
func (f *Fake) TotalSlept() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()

	var total time.Duration
	for _, d := range f.slept {
		total += d
	}
	return total
}
