package datasync

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestKeyLock_SerialisesSameKey(t *testing.T) {
	t.Parallel()

	l := newKeyLock()
	var (
		inside  atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("city:valencia")
			n := inside.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	if got := maxSeen.Load(); got != 1 {
		t.Errorf("max concurrent holders = %d, want 1", got)
	}
	if got := l.size(); got != 0 {
		t.Errorf("lock table size after release = %d, want 0", got)
	}
}

func TestKeyLock_DifferentKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	l := newKeyLock()
	unlockA := l.Lock("city:a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := l.Lock("city:b")
		unlock()
		close(done)
	}()
	<-done

	if got := l.size(); got != 1 {
		t.Errorf("lock table size = %d, want 1", got)
	}
}
