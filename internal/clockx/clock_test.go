package clockx

import (
	"context"
	"testing"
	"time"
)

func TestFakeSleepAdvancesAndRecords(t *testing.T) {
	start := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	f := NewFake(start)

	if err := f.Sleep(context.Background(), 1500*time.Millisecond); err != nil {
		t.Fatalf("sleep returned error: %v", err)
	}
	if err := f.Sleep(context.Background(), 500*time.Millisecond); err != nil {
		t.Fatalf("sleep returned error: %v", err)
	}

	wantNow := start.Add(2 * time.Second)
	if got := f.Now(); !got.Equal(wantNow) {
		t.Fatalf("Now() = %v, want %v", got, wantNow)
	}

	slept := f.Slept()
	if len(slept) != 2 {
		t.Fatalf("recorded %d sleeps, want 2", len(slept))
	}
	if slept[0] != 1500*time.Millisecond || slept[1] != 500*time.Millisecond {
		t.Fatalf("recorded sleeps = %v", slept)
	}
	if got := f.TotalSlept(); got != 2*time.Second {
		t.Fatalf("TotalSlept() = %v, want 2s", got)
	}
}

func TestFakeSleepHonorsCanceledContext(t *testing.T) {
	f := NewFake(time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := f.Sleep(ctx, time.Second); err == nil {
		t.Fatal("expected error from canceled context")
	}
	if len(f.Slept()) != 0 {
		t.Fatal("canceled sleep should not be recorded")
	}
}

func TestRealSleepReturnsOnCancel(t *testing.T) {
	r := NewReal()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- r.Sleep(ctx, time.Minute)
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected context error")
		}
	case <-time.After(time.Second):
		t.Fatal("Sleep did not return after cancellation")
	}
}
