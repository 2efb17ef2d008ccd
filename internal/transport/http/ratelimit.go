package http

import (
	"sync/atomic"
	"time"
)

// rateLimiter caps game messages per minute on one connection so a runaway
// client cannot flood the hub inbox. Zero limit disables it.
type rateLimiter struct {
	limit   int64
	counter atomic.Int64
	reset   *time.Ticker
}

func newRateLimiter(limit int64) *rateLimiter {
	r := &rateLimiter{limit: limit}
	if limit > 0 {
		r.reset = time.NewTicker(time.Minute)
	}
	return r
}

func (r *rateLimiter) allow() bool {
	if r == nil || r.limit <= 0 {
		return true
	}
	return r.counter.Add(1) <= r.limit
}

// startReset zeroes the window counter every minute until stop is closed.
func (r *rateLimiter) startReset(stop <-chan struct{}) {
	if r == nil || r.reset == nil {
		return
	}
	go func() {
		for {
			select {
			case <-r.reset.C:
				r.counter.Store(0)
			case <-stop:
				r.reset.Stop()
				return
			}
		}
	}()
}
