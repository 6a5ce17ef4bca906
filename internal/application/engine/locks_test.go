package engine

import (
	"sync"
	"testing"
	"time"
)

func TestWithLockSerializesSameRoom(t *testing.T) {
	table := newRoomLockTable(time.Hour, time.Hour)
	defer table.stop()

	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = table.withLock(1, func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("counter = %d, want %d", counter, workers)
	}
}

func TestWithLockDifferentRoomsParallel(t *testing.T) {
	table := newRoomLockTable(time.Hour, time.Hour)
	defer table.stop()

	started := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = table.withLock(1, func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	// 房间 1 被长时间持有时，房间 2 仍可立即取锁
	done := make(chan struct{})
	go func() {
		_ = table.withLock(2, func() error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on a different room blocked")
	}
	close(release)
}

func TestWithLockPropagatesError(t *testing.T) {
	table := newRoomLockTable(time.Hour, time.Hour)
	defer table.stop()

	want := errSentinel{}
	if got := table.withLock(1, func() error { return want }); got != want {
		t.Errorf("got %v, want sentinel error", got)
	}
}

type errSentinel struct{}

func (errSentinel) Error() string { return "boom" }

func TestCleanupRemovesIdleLocks(t *testing.T) {
	table := newRoomLockTable(time.Hour, time.Millisecond)
	defer table.stop()

	_ = table.withLock(1, func() error { return nil })
	_ = table.withLock(2, func() error { return nil })
	if table.size() != 2 {
		t.Fatalf("size = %d, want 2", table.size())
	}

	time.Sleep(5 * time.Millisecond)
	table.cleanup()
	if table.size() != 0 {
		t.Errorf("size after cleanup = %d, want 0", table.size())
	}
}

func TestCleanupSkipsHeldLocks(t *testing.T) {
	table := newRoomLockTable(time.Hour, time.Nanosecond)
	defer table.stop()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = table.withLock(1, func() error {
			close(started)
			<-release
			return nil
		})
		close(done)
	}()
	<-started

	table.cleanup()
	if table.size() != 1 {
		t.Errorf("held lock must survive cleanup, size = %d", table.size())
	}

	close(release)
	<-done
}
