package store

import (
	"context"
	"math/rand"
	"time"
)

// Latency is the simulated round-trip range applied to every store call.
type Latency struct {
	Min time.Duration
	Max time.Duration
}

// DefaultLatency mirrors a slow mobile connection.
var DefaultLatency = Latency{Min: 100 * time.Millisecond, Max: 500 * time.Millisecond}

// NoLatency disables the simulated delay, used in tests.
var NoLatency = Latency{}

func (l Latency) duration() time.Duration {
	if l.Max <= 0 {
		return 0
	}
	if l.Max <= l.Min {
		return l.Min
	}
	return l.Min + time.Duration(rand.Int63n(int64(l.Max-l.Min)))
}

// wait blocks for one simulated round trip. A canceled context aborts the call
// before it touches any state.
func (l Latency) wait(ctx context.Context) error {
	d := l.duration()
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
