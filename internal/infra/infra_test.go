package infra

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(ttl time.Duration) (*Cache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewCache[string](ttl)
	c.now = clock.now
	return c, clock
}

func TestCacheGetSet(t *testing.T) {
	c, clock := newTestCache(time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache should miss")
	}
	c.Set("a", "alpha")
	if v, ok := c.Get("a"); !ok || v != "alpha" {
		t.Errorf("Get(a): got %q, %v", v, ok)
	}

	clock.t = clock.t.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("Get after TTL should miss")
	}
}

func TestCacheZeroTTLDisables(t *testing.T) {
	c, _ := newTestCache(0)
	c.Set("a", "alpha")
	if c.Len() != 0 {
		t.Errorf("Len: got %d, want 0", c.Len())
	}
}

func TestCacheCleanupAndInvalidate(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	c.Set("short", "x")
	c.SetWithTTL("long", "y", time.Hour)
	c.Set("gone", "z")
	c.Invalidate("gone")

	clock.t = clock.t.Add(5 * time.Minute)
	c.Cleanup()
	if c.Len() != 1 {
		t.Fatalf("Len after cleanup: got %d, want 1", c.Len())
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("long-lived entry should survive cleanup")
	}

	c.Flush()
	if c.Len() != 0 {
		t.Errorf("Len after flush: got %d, want 0", c.Len())
	}
}

func TestGetOrCompute(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	calls := 0
	compute := func() (string, error) {
		calls++
		return "result", nil
	}

	v, hit, err := c.GetOrCompute("k", compute)
	if err != nil || hit || v != "result" {
		t.Fatalf("first call: got %q, hit=%v, err=%v", v, hit, err)
	}
	v, hit, err = c.GetOrCompute("k", compute)
	if err != nil || !hit || v != "result" {
		t.Fatalf("second call: got %q, hit=%v, err=%v", v, hit, err)
	}
	if calls != 1 {
		t.Errorf("compute calls: got %d, want 1", calls)
	}

	boom := errors.New("boom")
	_, _, err = c.GetOrCompute("bad", func() (string, error) { return "", boom })
	if !errors.Is(err, boom) {
		t.Errorf("error: got %v, want %v", err, boom)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("failed computation should not be cached")
	}
}

func TestRunCleanupStopsOnCancel(t *testing.T) {
	c := NewCache[int](time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.RunCleanup(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunCleanup did not return after cancel")
	}
}

func TestKey(t *testing.T) {
	if Key("a", "bc") == Key("ab", "c") {
		t.Error("Key should separate parts")
	}
	if Key("x") != Key("x") {
		t.Error("Key should be deterministic")
	}
	if len(Key("x")) != 64 {
		t.Errorf("Key length: got %d, want 64", len(Key("x")))
	}
}
