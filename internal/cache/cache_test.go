package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock is a controllable time source for expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestGetOrComputeHitWithinTTL(t *testing.T) {
	clock := newFakeClock()
	c := NewWithClock(60*time.Second, clock.Now)

	var calls int32
	compute := func() (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "result", nil
	}

	first, hit, err := c.GetOrCompute("key", compute)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if hit {
		t.Error("first call reported a cache hit")
	}

	clock.Advance(59 * time.Second)

	second, hit, err := c.GetOrCompute("key", compute)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if !hit {
		t.Error("second call within TTL missed the cache")
	}
	if first != second {
		t.Errorf("cached value differs: %v vs %v", first, second)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("compute ran %d times, want 1", got)
	}
}

func TestGetOrComputeRecomputesAfterTTL(t *testing.T) {
	clock := newFakeClock()
	c := NewWithClock(60*time.Second, clock.Now)

	var calls int32
	compute := func() (interface{}, error) {
		return atomic.AddInt32(&calls, 1), nil
	}

	if _, _, err := c.GetOrCompute("key", compute); err != nil {
		t.Fatal(err)
	}

	clock.Advance(60 * time.Second)

	value, hit, err := c.GetOrCompute("key", compute)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("expired entry reported as a hit")
	}
	if value != int32(2) {
		t.Errorf("value = %v, want recomputed 2", value)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("compute ran %d times, want 2", got)
	}
}

func TestGetOrComputeDistinctKeys(t *testing.T) {
	c := New(time.Minute)

	var calls int32
	compute := func() (interface{}, error) {
		return atomic.AddInt32(&calls, 1), nil
	}

	if _, _, err := c.GetOrCompute("a", compute); err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.GetOrCompute("b", compute); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("compute ran %d times, want 2", got)
	}
	if c.Len() != 2 {
		t.Errorf("cache holds %d entries, want 2", c.Len())
	}
}

// Ten concurrent cold-cache requests for one key must trigger exactly one
// computation.
func TestGetOrComputeSingleflight(t *testing.T) {
	c := New(time.Minute)

	var calls int32
	started := make(chan struct{})
	compute := func() (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-started
		return "shared", nil
	}

	const goroutines = 10
	var wg sync.WaitGroup
	results := make([]interface{}, goroutines)
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, errs[i] = c.GetOrCompute("cold", compute)
		}(i)
	}

	// Give the goroutines time to pile onto the flight, then release it.
	time.Sleep(50 * time.Millisecond)
	close(started)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("compute ran %d times, want 1", got)
	}
	for i := 0; i < goroutines; i++ {
		if errs[i] != nil {
			t.Errorf("goroutine %d failed: %v", i, errs[i])
		}
		if results[i] != "shared" {
			t.Errorf("goroutine %d got %v, want shared", i, results[i])
		}
	}
}

func TestGetOrComputeDoesNotCacheErrors(t *testing.T) {
	c := New(time.Minute)

	var calls int32
	fail := errors.New("backend down")
	compute := func() (interface{}, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, fail
		}
		return "ok", nil
	}

	if _, _, err := c.GetOrCompute("key", compute); !errors.Is(err, fail) {
		t.Fatalf("first call error = %v, want %v", err, fail)
	}
	if c.Len() != 0 {
		t.Errorf("failed computation was cached (%d entries)", c.Len())
	}

	value, hit, err := c.GetOrCompute("key", compute)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if hit {
		t.Error("retry reported a hit after a failure")
	}
	if value != "ok" {
		t.Errorf("retry value = %v, want ok", value)
	}
}

func TestPurge(t *testing.T) {
	c := New(time.Minute)
	if _, _, err := c.GetOrCompute("key", func() (interface{}, error) { return 1, nil }); err != nil {
		t.Fatal(err)
	}
	c.Purge()
	if c.Len() != 0 {
		t.Errorf("cache holds %d entries after purge, want 0", c.Len())
	}
}
