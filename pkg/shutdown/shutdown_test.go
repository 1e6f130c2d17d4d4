package shutdown

import (
	"context"
	"testing"
	"time"
)

func TestShutdownRunsHooksInReverseOrder(t *testing.T) {
	m := NewManager()
	var order []string
	m.OnShutdown("first", func(ctx context.Context) { order = append(order, "first") })
	m.OnShutdown("second", func(ctx context.Context) { order = append(order, "second") })
	m.OnShutdown("third", func(ctx context.Context) { order = append(order, "third") })

	m.Shutdown(context.Background())

	want := []string{"third", "second", "first"}
	if len(order) != len(want) {
		t.Fatalf("ran %d hooks, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("hook %d = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestShutdownRunsOnce(t *testing.T) {
	m := NewManager()
	count := 0
	m.OnShutdown("counter", func(ctx context.Context) { count++ })

	m.Shutdown(context.Background())
	m.Shutdown(context.Background())

	if count != 1 {
		t.Fatalf("hook ran %d times, want 1", count)
	}
}

func TestShutdownAbandonsHungHook(t *testing.T) {
	m := NewManager()
	reached := false
	m.OnShutdown("early", func(ctx context.Context) { reached = true })
	m.OnShutdown("hung", func(ctx context.Context) { <-make(chan struct{}) })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	m.Shutdown(ctx)
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("shutdown blocked for %v", elapsed)
	}
	if reached {
		t.Error("hooks behind the hung one must be skipped")
	}
}

func TestShutdownIgnoresNilHook(t *testing.T) {
	m := NewManager()
	m.OnShutdown("nil", nil)
	m.Shutdown(context.Background())
}
