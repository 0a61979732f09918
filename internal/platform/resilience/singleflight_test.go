package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_CollapsesConcurrentFetches(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	var executions int32
	var shared int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			val, err, wasShared := g.Do("/divisions/d-1/standings", func() (any, error) {
				atomic.AddInt32(&executions, 1)
				time.Sleep(20 * time.Millisecond)
				return "payload", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
			if val != "payload" {
				t.Errorf("unexpected value: %v", val)
			}
			if wasShared {
				atomic.AddInt32(&shared, 1)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&executions); got != 1 {
		t.Fatalf("expected one execution, got %d", got)
	}
	if got := atomic.LoadInt32(&shared); got != workers-1 {
		t.Fatalf("expected %d shared results, got %d", workers-1, got)
	}
}

func TestSingleFlight_DistinctKeysRunIndependently(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	var executions int32

	var wg sync.WaitGroup
	for _, key := range []string{"/divisions/d-1/results", "/divisions/d-2/results"} {
		key := key
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err, _ := g.Do(key, func() (any, error) {
				atomic.AddInt32(&executions, 1)
				return nil, nil
			}); err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&executions); got != 2 {
		t.Fatalf("expected both keys to execute, got %d", got)
	}
}
