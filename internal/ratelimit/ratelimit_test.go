package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter() (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	l := New(10, time.Minute)
	l.now = clock.now
	return l, clock
}

func TestEleventhRequestRejected(t *testing.T) {
	l, clock := newTestLimiter()

	for i := 0; i < 10; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
		clock.advance(time.Second)
	}
	if l.Allow("1.2.3.4") {
		t.Error("11th request inside the window should be rejected")
	}
	if !l.Allow("5.6.7.8") {
		t.Error("another client must have its own window")
	}
}

func TestWindowResets(t *testing.T) {
	l, clock := newTestLimiter()

	for i := 0; i < 11; i++ {
		l.Allow("c")
	}
	clock.advance(time.Minute)

	if !l.Allow("c") {
		t.Fatal("first request after the window should succeed")
	}
	if got := l.clients["c"].count; got != 1 {
		t.Errorf("count should reset to 1, got %d", got)
	}
	// Nine more fit in the new window.
	for i := 0; i < 9; i++ {
		if !l.Allow("c") {
			t.Fatalf("request %d of the new window should be allowed", i+2)
		}
	}
	if l.Allow("c") {
		t.Error("limit must apply again in the new window")
	}
}

func TestRejectedRequestsDoNotExtendWindow(t *testing.T) {
	l, clock := newTestLimiter()
	for i := 0; i < 10; i++ {
		l.Allow("c")
	}
	clock.advance(59 * time.Second)
	if l.Allow("c") {
		t.Fatal("should still be limited at 59s")
	}
	clock.advance(time.Second)
	if !l.Allow("c") {
		t.Error("window must expire 60s after it started")
	}
}

func TestSweep(t *testing.T) {
	l, clock := newTestLimiter()
	l.Allow("old")
	clock.advance(30 * time.Second)
	l.Allow("new")

	clock.advance(30 * time.Second)
	if n := l.Sweep(clock.now()); n != 1 {
		t.Errorf("expected 1 eviction, got %d", n)
	}
	if l.Len() != 1 {
		t.Errorf("expected 1 tracked client, got %d", l.Len())
	}
	if _, ok := l.clients["new"]; !ok {
		t.Error("unexpired window must survive the sweep")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	l := New(1, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx, time.Millisecond)
		close(done)
	}()

	l.Allow("c")
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if l.Len() != 0 {
		t.Errorf("expected expired window to be swept, got %d clients", l.Len())
	}
}

func TestConcurrentAllow(t *testing.T) {
	l := New(100, time.Hour)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if l.Allow(fmt.Sprintf("client-%d", i%2)) {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if allowed != 200 {
		t.Errorf("expected all 200 requests across two clients to fit, got %d", allowed)
	}
}
