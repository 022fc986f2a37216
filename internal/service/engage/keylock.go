package engage

import "sync"

// keyLock 按 (user,item) 键串行化切换。
// x/sync 没有带键互斥；singleflight 只能合并读，合并不了读改写，
// 所以这里自己维护一张带引用计数的锁表，空闲键即时回收。
type keyLock struct {
	mu sync.Mutex
	m  map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyLock() *keyLock {
	return &keyLock{m: make(map[string]*lockEntry)}
}

// Lock 返回对应的解锁函数
func (l *keyLock) Lock(key string) func() {
	l.mu.Lock()
	e, ok := l.m[key]
	if !ok {
		e = &lockEntry{}
		l.m[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.m, key)
		}
		l.mu.Unlock()
	}
}
