package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces outbound calls to an upstream that enforces request quotas.
// A nil Pacer never blocks.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer allows roughly requestsPerMinute sustained calls with the given
// burst. Non-positive inputs disable pacing.
func NewPacer(requestsPerMinute int, burst int) *Pacer {
	if requestsPerMinute <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}

	interval := time.Minute / time.Duration(requestsPerMinute)
	return &Pacer{limiter: rate.NewLimiter(rate.Every(interval), burst)}
}

// NewIntervalPacer enforces a fixed minimum gap between calls.
func NewIntervalPacer(gap time.Duration) *Pacer {
	if gap <= 0 {
		return nil
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(gap), 1)}
}

// Wait blocks until the next call is allowed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}

// Allow reports whether a call may proceed immediately without blocking.
func (p *Pacer) Allow() bool {
	if p == nil || p.limiter == nil {
		return true
	}
	return p.limiter.Allow()
}
