// Package ratelimit paces requests that are sent one by one, such as the
// per-point deletes of a bulk action.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/leadpanel/panelctl/internal/logging"
)

// Bulk request pacing: 5 requests/second after an initial burst of 10.
const (
	BulkRatePerSec    = 5.0
	BulkBurstCapacity = 10
)

// slowWait is the wait above which Wait logs that it is throttling.
const slowWait = time.Second

// RateLimiter is a token bucket that allows bursts up to its capacity and
// then refills at a fixed rate.
type RateLimiter struct {
	lim    *rate.Limiter
	logger *logging.Logger

	mu       sync.Mutex
	lastWarn time.Time
}

// NewRateLimiter creates a limiter that starts with a full bucket.
func NewRateLimiter(tokensPerSecond float64, burstSize int) *RateLimiter {
	return &RateLimiter{
		lim:    rate.NewLimiter(rate.Limit(tokensPerSecond), burstSize),
		logger: logging.NewNopLogger(),
	}
}

// NewBulkRateLimiter creates the limiter used for per-item bulk requests.
func NewBulkRateLimiter(logger *logging.Logger) *RateLimiter {
	rl := NewRateLimiter(BulkRatePerSec, BulkBurstCapacity)
	if logger != nil {
		rl.logger = logger.Named("ratelimit")
	}
	return rl
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.lim.Allow() {
		return nil
	}

	if wait := rl.untilNextToken(); wait > slowWait {
		rl.mu.Lock()
		if time.Since(rl.lastWarn) > 10*time.Second {
			rl.logger.Debug().Dur("wait", wait).Msg("rate limited, waiting for capacity")
			rl.lastWarn = time.Now()
		}
		rl.mu.Unlock()
	}
	return rl.lim.Wait(ctx)
}

// untilNextToken is how long until at least one token is available.
func (rl *RateLimiter) untilNextToken() time.Duration {
	missing := 1 - rl.lim.Tokens()
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / float64(rl.lim.Limit()) * float64(time.Second))
}

// Tokens returns the tokens currently available.
func (rl *RateLimiter) Tokens() float64 {
	return rl.lim.Tokens()
}
