package modelcache

import (
	"errors"
	"sync"
	"testing"
)

func TestGetLoadsOnceAndCaches(t *testing.T) {
	c := New()
	var loads int
	var mu sync.Mutex

	load := func() (interface{}, error) {
		mu.Lock()
		loads++
		mu.Unlock()
		return "loaded", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Get("model-a", load)
			if err != nil {
				t.Errorf("Get: %v", err)
			}
			if v != "loaded" {
				t.Errorf("Get returned %v, want %q", v, "loaded")
			}
		}()
	}
	wg.Wait()

	if loads != 1 {
		t.Fatalf("load called %d times, want exactly 1", loads)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}

func TestGetDifferentKeysLoadIndependently(t *testing.T) {
	c := New()
	c.Get("a", func() (interface{}, error) { return 1, nil })
	c.Get("b", func() (interface{}, error) { return 2, nil })
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
}

func TestGetFailedLoadIsRetried(t *testing.T) {
	c := New()
	var attempts int
	load := func() (interface{}, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("boom")
		}
		return "ok", nil
	}

	if _, err := c.Get("k", load); err == nil {
		t.Fatal("expected first load to fail")
	}
	v, err := c.Get("k", load)
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if v != "ok" {
		t.Fatalf("Get returned %v, want %q", v, "ok")
	}
	if attempts != 2 {
		t.Fatalf("load called %d times, want 2", attempts)
	}
}

func TestEvict(t *testing.T) {
	c := New()
	c.Get("k", func() (interface{}, error) { return 1, nil })
	c.Evict("k")
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after Evict, want 0", c.Len())
	}
}
