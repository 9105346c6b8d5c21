package session

import (
	"context"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(ttl time.Duration) (*MemoryStore, *clock) {
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(ttl)
	s.now = c.now
	return s, c
}

func TestMemoryStore_GetTouches(t *testing.T) {
	s, c := newTestStore(time.Hour)
	s.Put(&Session{ID: "a"})

	c.advance(50 * time.Minute)
	if _, ok := s.Get("a"); !ok {
		t.Fatal("session expired early")
	}
	c.advance(50 * time.Minute)
	if _, ok := s.Get("a"); !ok {
		t.Fatal("Get did not refresh the idle timer")
	}
	c.advance(61 * time.Minute)
	if _, ok := s.Get("a"); ok {
		t.Fatal("idle session still returned")
	}
	if s.Len() != 0 {
		t.Errorf("expired session not removed on Get, len = %d", s.Len())
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	s, c := newTestStore(time.Hour)
	s.Put(&Session{ID: "old"})
	c.advance(45 * time.Minute)
	s.Put(&Session{ID: "new"})
	c.advance(30 * time.Minute)

	if n := s.Sweep(); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if _, ok := s.Get("new"); !ok {
		t.Error("fresh session swept")
	}
	if _, ok := s.Get("old"); ok {
		t.Error("stale session kept")
	}
}

func TestMemoryStore_ZeroTTLNeverExpires(t *testing.T) {
	s, c := newTestStore(0)
	s.Put(&Session{ID: "a"})
	c.advance(24 * 365 * time.Hour)
	if n := s.Sweep(); n != 0 {
		t.Errorf("Sweep removed %d, want 0", n)
	}
	if _, ok := s.Get("a"); !ok {
		t.Error("session expired with zero TTL")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	s.Put(&Session{ID: "a"})
	s.Delete("a")
	s.Delete("unknown")
	if _, ok := s.Get("a"); ok {
		t.Error("deleted session returned")
	}
}

func TestMemoryStore_RunStopsWithContext(t *testing.T) {
	s := NewMemoryStore(time.Nanosecond)
	s.Put(&Session{ID: "a"})

	ctx, cancel := context.WithCancel(context.Background())
	swept := make(chan int, 16)
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond, func(n int) {
			select {
			case swept <- n:
			default:
			}
		})
		close(done)
	}()

	select {
	case <-swept:
	case <-time.After(2 * time.Second):
		t.Fatal("no sweep happened")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if s.Len() != 0 {
		t.Errorf("len = %d, want 0", s.Len())
	}
}
