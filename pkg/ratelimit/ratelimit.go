// Package ratelimit provides a token-bucket limiter for venue request
// quotas.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenBucket allows bursts up to its capacity and a steady refill rate
// after that. Safe for concurrent use.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   int
	tokens     int
	refillRate int // tokens per second
	lastRefill time.Time
}

// NewTokenBucket builds a full bucket. capacity and refillRate must be
// positive.
func NewTokenBucket(capacity, refillRate int) *TokenBucket {
	if capacity <= 0 || refillRate <= 0 {
		panic("ratelimit: capacity and refill rate must be positive")
	}
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// refill advances lastRefill only by the time actually converted into
// tokens, so fractional progress carries into the next call.
func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill)
	if elapsed <= 0 {
		return
	}
	add := int(elapsed.Seconds() * float64(tb.refillRate))
	if add <= 0 {
		return
	}
	if tb.tokens+add > tb.capacity {
		tb.tokens = tb.capacity
		tb.lastRefill = now
		return
	}
	tb.tokens += add
	tb.lastRefill = tb.lastRefill.Add(time.Duration(add) * time.Second / time.Duration(tb.refillRate))
}

// Allow consumes one token if available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill(time.Now())
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or ctx is done.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		now := time.Now()
		tb.refill(now)
		if tb.tokens > 0 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}
		next := tb.lastRefill.Add(time.Second / time.Duration(tb.refillRate))
		tb.mu.Unlock()

		wait := next.Sub(now)
		if wait < time.Millisecond {
			wait = time.Millisecond
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Remaining reports the tokens currently available.
func (tb *TokenBucket) Remaining() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill(time.Now())
	return tb.tokens
}
