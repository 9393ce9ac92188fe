package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestGetSet(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(5*time.Minute, 10, clock)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) = hit, want miss")
	}

	c.Set("k", []byte("v"))
	got, ok := c.Get("k")
	if !ok || string(got) != "v" {
		t.Errorf("Get(k) = %q %v, want v true", got, ok)
	}
}

func TestExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(5*time.Minute, 10, clock)

	c.Set("k", []byte("v"))

	clock.Advance(5*time.Minute - time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Error("Get before expiry = miss, want hit")
	}

	clock.Advance(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("Get after expiry = hit, want miss")
	}
	if c.Len() != 0 {
		t.Errorf("Len after expired read = %d, want 0", c.Len())
	}
}

func TestCapacityEviction(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(5*time.Minute, 3, clock)

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), []byte("v"))
		clock.Advance(time.Second)
	}
	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}

	// full with nothing expired: the entry closest to expiry (k0) is dropped
	c.Set("k3", []byte("v"))
	if c.Len() != 3 {
		t.Errorf("Len after eviction = %d, want 3", c.Len())
	}
	if _, ok := c.Get("k0"); ok {
		t.Error("oldest entry survived eviction")
	}
	if _, ok := c.Get("k3"); !ok {
		t.Error("new entry missing after eviction")
	}
}

func TestEvictionPrefersExpired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(time.Minute, 2, clock)

	c.Set("stale", []byte("v"))
	clock.Advance(2 * time.Minute)
	c.Set("fresh", []byte("v"))

	c.Set("new", []byte("v"))
	if _, ok := c.Get("fresh"); !ok {
		t.Error("unexpired entry evicted while an expired one existed")
	}
	if _, ok := c.Get("new"); !ok {
		t.Error("new entry missing")
	}
}

func TestSetOverwriteDoesNotEvict(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(time.Minute, 2, clock)

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Set("a", []byte("3"))

	if got, _ := c.Get("a"); string(got) != "3" {
		t.Errorf("Get(a) = %q, want 3", got)
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("overwrite of existing key evicted another entry")
	}
}
