package upload

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestKeyLockerSerializesSameKey(t *testing.T) {
	l := newKeyLocker()
	ctx := context.Background()

	unlock, err := l.LockContext(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}

	acquired := make(chan struct{})
	go func() {
		second, err := l.LockContext(ctx, "k")
		if err != nil {
			t.Errorf("second lock: %v", err)
			close(acquired)
			return
		}
		close(acquired)
		second()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while the first is held")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock not acquired after unlock")
	}
}

func TestKeyLockerDifferentKeysDoNotBlock(t *testing.T) {
	l := newKeyLocker()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	a, err := l.LockContext(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := l.LockContext(ctx, "b")
	if err != nil {
		t.Fatalf("lock on another key blocked: %v", err)
	}
	a()
	b()
	if n := l.size(); n != 0 {
		t.Errorf("size = %d, want 0", n)
	}
}

func TestKeyLockerContextCancel(t *testing.T) {
	l := newKeyLocker()
	unlock, err := l.LockContext(context.Background(), "k")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.LockContext(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	// отказавшийся ожидающий не держит запись
	if n := l.size(); n != 1 {
		t.Errorf("size = %d, want 1", n)
	}

	unlock()
	if n := l.size(); n != 0 {
		t.Errorf("size = %d, want 0", n)
	}
}
