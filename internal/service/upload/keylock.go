package upload

import (
	"context"
	"sync"
)

// keyLocker - мьютекс на каждый ключ хранилища. Запись удаляется, когда ключ никто не держит и не ждет.
type keyLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

// keyLock захвачен, пока в sem лежит значение
type keyLock struct {
	sem  chan struct{}
	refs int
}

func newKeyLocker() *keyLocker {
	return &keyLocker{locks: make(map[string]*keyLock)}
}

// LockContext блокирует ключ и возвращает функцию освобождения.
// Если ctx отменен раньше, чем ключ освободился, возвращает ошибку контекста.
func (l *keyLocker) LockContext(ctx context.Context, key string) (unlock func(), err error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.sem <- struct{}{}:
		return func() {
			<-kl.sem
			l.release(key, kl)
		}, nil
	case <-ctx.Done():
		l.release(key, kl)
		return nil, ctx.Err()
	}
}

func (l *keyLocker) release(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

func (l *keyLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
