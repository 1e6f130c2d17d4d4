package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowConsumesBurst(t *testing.T) {
	tb := NewTokenBucket(3, 1)
	for i := 0; i < 3; i++ {
		if !tb.Allow() {
			t.Fatalf("request %d denied inside burst capacity", i)
		}
	}
	if tb.Allow() {
		t.Fatal("request allowed with empty bucket")
	}
}

func TestRefill(t *testing.T) {
	tb := NewTokenBucket(5, 100)
	for i := 0; i < 5; i++ {
		tb.Allow()
	}
	if tb.Remaining() != 0 {
		t.Fatalf("Remaining() = %d after draining, want 0", tb.Remaining())
	}

	time.Sleep(60 * time.Millisecond)
	if got := tb.Remaining(); got < 1 {
		t.Fatalf("Remaining() = %d after refill window, want >= 1", got)
	}
}

func TestRefillCapsAtCapacity(t *testing.T) {
	tb := NewTokenBucket(2, 1000)
	time.Sleep(20 * time.Millisecond)
	if got := tb.Remaining(); got != 2 {
		t.Fatalf("Remaining() = %d, want capacity 2", got)
	}
}

func TestWaitBlocksUntilToken(t *testing.T) {
	tb := NewTokenBucket(1, 100)
	if !tb.Allow() {
		t.Fatal("first request denied")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	if err := tb.Wait(ctx); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("Wait() took %v, expected a single refill interval", elapsed)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	tb.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tb.Wait(ctx); err == nil {
		t.Fatal("Wait() on canceled context returned nil error")
	}
}

func TestNewTokenBucketPanicsOnBadInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("no panic for zero capacity")
		}
	}()
	NewTokenBucket(0, 1)
}
