package app

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoop_RunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := 0
	l := Loop{
		Interval: time.Millisecond,
		Tick: func(context.Context) {
			ticks++
			if ticks == 3 {
				cancel()
			}
		},
	}

	err := l.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if ticks != 3 {
		t.Errorf("ticks = %d, want 3", ticks)
	}
}

func TestLoop_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := Loop{Interval: time.Millisecond, Tick: func(context.Context) { called = true }}.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if called {
		t.Error("Tick called after cancellation")
	}
}

func TestLoop_CancelDuringSleep(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	ticks := 0
	start := time.Now()
	err := Loop{Interval: time.Hour, Tick: func(context.Context) { ticks++ }}.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want context.DeadlineExceeded", err)
	}
	if ticks != 1 {
		t.Errorf("ticks = %d, want 1", ticks)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Run did not return promptly on cancellation")
	}
}
