package cache

import (
	"sync"
	"testing"
	"time"
)

func alwaysActive() int64 { return 1_000_000 }

func TestCache_PutGet(t *testing.T) {
	c := New(0, 0, alwaysActive)

	if _, ok := c.Get("index"); ok {
		t.Fatal("empty cache should miss")
	}

	c.Put("index", "<html>payload</html>", c.Gen())
	got, ok := c.Get("index")
	if !ok {
		t.Fatal("expected a hit")
	}
	if got != "<html>payload</html>" {
		t.Fatalf("payload: got %q", got)
	}
}

func TestCache_ActivationThreshold(t *testing.T) {
	volume := int64(0)
	c := New(0, 200, func() int64 { return volume })

	// At the threshold exactly, puts are still discarded.
	volume = 200
	c.Put("index", "early", c.Gen())
	if _, ok := c.Get("index"); ok {
		t.Fatal("put below or at threshold must be a no-op")
	}

	// One past the threshold, puts take effect.
	volume = 201
	c.Put("index", "late", c.Gen())
	if got, ok := c.Get("index"); !ok || got != "late" {
		t.Fatalf("put above threshold: got %q, ok=%v", got, ok)
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	current := time.Unix(1000, 0)
	c := New(30*time.Second, 0, alwaysActive)
	c.now = func() time.Time { return current }

	c.Put("index", "payload", c.Gen())

	current = current.Add(30 * time.Second)
	if _, ok := c.Get("index"); !ok {
		t.Fatal("entry should survive exactly at the deadline")
	}

	current = current.Add(time.Nanosecond)
	if _, ok := c.Get("index"); ok {
		t.Fatal("entry should expire past the deadline")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be evicted, len=%d", c.Len())
	}
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	current := time.Unix(1000, 0)
	c := New(0, 0, alwaysActive)
	c.now = func() time.Time { return current }

	c.Put("index", "payload", c.Gen())
	current = current.Add(24 * time.Hour)
	if _, ok := c.Get("index"); !ok {
		t.Fatal("zero ttl entries must not expire")
	}
}

func TestCache_PurgeAll(t *testing.T) {
	c := New(0, 0, alwaysActive)
	c.Put("index", "a", c.Gen())
	c.Put("candidate:1", "b", c.Gen())

	c.PurgeAll()

	if c.Len() != 0 {
		t.Fatalf("len after purge: got %d, want 0", c.Len())
	}
	if _, ok := c.Get("index"); ok {
		t.Fatal("purged entry should miss")
	}
}

func TestCache_PurgeWins_StalePutDiscarded(t *testing.T) {
	// A composer reads the generation, then a purge lands before its Put.
	// The stale payload must not enter the cache.
	c := New(0, 0, alwaysActive)

	gen := c.Gen()
	c.PurgeAll()
	c.Put("index", "stale", gen)

	if _, ok := c.Get("index"); ok {
		t.Fatal("put with a pre-purge generation must be discarded")
	}

	// A put carrying the fresh generation still works.
	c.Put("index", "fresh", c.Gen())
	if got, ok := c.Get("index"); !ok || got != "fresh" {
		t.Fatalf("fresh put: got %q, ok=%v", got, ok)
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New(time.Minute, 0, alwaysActive)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.Put("index", "payload", c.Gen())
				c.Get("index")
				if j%50 == 0 {
					c.PurgeAll()
				}
			}
		}()
	}
	wg.Wait()
}
