package reqflow

import (
	"errors"
	"net/http"
	"sync/atomic"
	"time"
)

// ErrRateLimited is returned by RateLimitMiddleware when no token is left.
// It reaches lifecycle hooks as a transport failure.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimiter is a lock-free token bucket holding up to burst tokens and
// gaining one token every interval.
type RateLimiter struct {
	burst    int64
	interval int64
	tokens   atomic.Int64
	last     atomic.Int64
	now      func() time.Time
}

// NewRateLimiter returns a full bucket. A non-positive interval never
// refills.
func NewRateLimiter(burst int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{burst: int64(burst), interval: int64(interval), now: time.Now}
	rl.tokens.Store(int64(burst))
	rl.last.Store(rl.now().UnixNano())
	return rl
}

// Allow takes one token, reporting false when the bucket is empty.
func (rl *RateLimiter) Allow() bool {
	rl.refill()
	for {
		n := rl.tokens.Load()
		if n <= 0 {
			return false
		}
		if rl.tokens.CompareAndSwap(n, n-1) {
			return true
		}
	}
}

// Tokens reports the tokens currently available.
func (rl *RateLimiter) Tokens() int {
	rl.refill()
	return int(rl.tokens.Load())
}

func (rl *RateLimiter) refill() {
	if rl.interval <= 0 {
		return
	}
	now := rl.now().UnixNano()
	for {
		last := rl.last.Load()
		gained := (now - last) / rl.interval
		if gained <= 0 {
			return
		}
		// Advance by whole intervals so partial progress is kept.
		if !rl.last.CompareAndSwap(last, last+gained*rl.interval) {
			continue
		}
		for {
			n := rl.tokens.Load()
			next := min(n+gained, rl.burst)
			if rl.tokens.CompareAndSwap(n, next) {
				return
			}
		}
	}
}

// RateLimitMiddleware fails requests with ErrRateLimited once rl is
// exhausted. The request never reaches the network.
func RateLimitMiddleware(rl *RateLimiter) Middleware {
	return func(req *http.Request, next RoundTripper) (*http.Response, error) {
		if !rl.Allow() {
			return nil, ErrRateLimited
		}
		return next.RoundTrip(req)
	}
}

// WithRateLimit allows burst requests and refills one every interval.
func WithRateLimit(burst int, interval time.Duration) Option {
	return WithMiddleware(RateLimitMiddleware(NewRateLimiter(burst, interval)))
}
