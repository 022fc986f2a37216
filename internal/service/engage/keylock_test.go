package engage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLock_SerializesSameKey(t *testing.T) {
	l := newKeyLock()
	var counter int
	const n = 64

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			unlock := l.Lock("k")
			counter++ // 没有锁会被 -race 抓到
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, n, counter)
}

func TestKeyLock_ReleasesIdleEntries(t *testing.T) {
	l := newKeyLock()
	unlock := l.Lock("a")
	unlock()
	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.m)
}

func TestKeyLock_IndependentKeys(t *testing.T) {
	l := newKeyLock()
	unlockA := l.Lock("a")
	done := make(chan struct{})
	go func() {
		unlockB := l.Lock("b") // 不同键不互斥，不会卡住
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
}
