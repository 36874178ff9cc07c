package app

import (
	"context"
	"time"
)

// Loop runs Tick, sleeps Interval, and repeats until ctx is cancelled.
// There is no skip-if-busy logic: the sleep starts only after Tick returns.
type Loop struct {
	Interval time.Duration
	Tick     func(ctx context.Context)
}

func (l Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.Tick(ctx)

		t := time.NewTimer(l.Interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
