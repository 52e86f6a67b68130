package resolve

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestCacheRunsFunctionOnce(t *testing.T) {
	cache := NewCache()
	var calls atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := cache.Do("pink floyd", func() (Resolution, error) {
				calls.Add(1)
				return Resolution{Reason: ReasonNotFound}, nil
			})
			if err != nil {
				t.Errorf("Do returned error: %v", err)
			}
			if res.Reason != ReasonNotFound {
				t.Errorf("unexpected resolution: %+v", res)
			}
		}()
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("resolution function ran %d times, want 1", got)
	}
	if cache.Len() != 1 {
		t.Fatalf("cache.Len() = %d, want 1", cache.Len())
	}
}

func TestCacheCachesErrors(t *testing.T) {
	cache := NewCache()
	sentinel := errors.New("store broke")
	calls := 0

	for i := 0; i < 3; i++ {
		_, err := cache.Do("rush", func() (Resolution, error) {
			calls++
			return Resolution{}, sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("call %d: err = %v, want %v", i, err, sentinel)
		}
	}
	if calls != 1 {
		t.Fatalf("resolution function ran %d times, want 1", calls)
	}
}

func TestCacheDistinctKeys(t *testing.T) {
	cache := NewCache()
	calls := 0
	for _, key := range []string{"a", "b", "c"} {
		if _, err := cache.Do(key, func() (Resolution, error) {
			calls++
			return Resolution{}, nil
		}); err != nil {
			t.Fatalf("Do(%q): %v", key, err)
		}
	}
	if calls != 3 {
		t.Fatalf("resolution function ran %d times, want 3", calls)
	}
}
