package edgar

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/time/rate"

	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/config"
)

// Limiter is the single global throttle for outbound SEC requests: a token
// bucket with capacity = burst = the configured requests-per-second, refilled
// at that same rate. Every GET acquires one token regardless of which worker
// issues it, so concurrent workers back off against the shared budget.
type Limiter struct {
	rl  *rate.Limiter
	rps float64
}

// NewLimiter builds a limiter for the given requests-per-second. Values
// above the SEC ceiling or at or below zero are rejected at construction.
func NewLimiter(rps float64) (*Limiter, error) {
	if rps <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %v", rps)
	}
	if rps > config.MaxRateLimitRPS {
		return nil, fmt.Errorf("rate limit %v exceeds the SEC ceiling of %v requests/sec",
			rps, config.MaxRateLimitRPS)
	}
	burst := int(math.Ceil(rps))
	if burst < 1 {
		burst = 1
	}
	return &Limiter{rl: rate.NewLimiter(rate.Limit(rps), burst), rps: rps}, nil
}

// Acquire blocks until n tokens are available or the context ends.
func (l *Limiter) Acquire(ctx context.Context, n int) error {
	return l.rl.WaitN(ctx, n)
}

// RPS reports the configured rate.
func (l *Limiter) RPS() float64 {
	return l.rps
}
