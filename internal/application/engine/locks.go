package engine

import (
	"sync"
	"time"
)

// roomLockTable 房间级互斥锁表。
// 同一房间的回合处理必须串行；不同房间完全并行。
// 锁惰性创建，空闲超时后由清理协程回收。
type roomLockTable struct {
	mu    sync.RWMutex
	locks map[int64]*roomLock

	idleTimeout time.Duration
	ticker      *time.Ticker
	stopCh      chan struct{}
}

type roomLock struct {
	mu       sync.Mutex
	lastUsed time.Time
}

// newRoomLockTable 创建房间锁表并启动空闲回收
func newRoomLockTable(cleanupInterval, idleTimeout time.Duration) *roomLockTable {
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}
	if idleTimeout <= 0 {
		idleTimeout = 30 * time.Minute
	}

	t := &roomLockTable{
		locks:       make(map[int64]*roomLock),
		idleTimeout: idleTimeout,
		ticker:      time.NewTicker(cleanupInterval),
		stopCh:      make(chan struct{}),
	}
	go t.cleanupLoop()
	return t
}

// get 获取房间锁，不存在则双重检查后创建
func (t *roomLockTable) get(roomID int64) *roomLock {
	t.mu.RLock()
	if l, ok := t.locks[roomID]; ok {
		t.mu.RUnlock()
		return l
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if l, ok := t.locks[roomID]; ok {
		return l
	}
	l := &roomLock{lastUsed: time.Now()}
	t.locks[roomID] = l
	return l
}

// withLock 持有房间锁执行 fn，串行化同房间的所有写路径
func (t *roomLockTable) withLock(roomID int64, fn func() error) error {
	l := t.get(roomID)
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastUsed = time.Now()
	return fn()
}

func (t *roomLockTable) cleanupLoop() {
	for {
		select {
		case <-t.stopCh:
			t.ticker.Stop()
			return
		case <-t.ticker.C:
			t.cleanup()
		}
	}
}

// cleanup 回收空闲锁。TryLock 失败说明锁正被持有，跳过。
func (t *roomLockTable) cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	for roomID, l := range t.locks {
		if now.Sub(l.lastUsed) < t.idleTimeout {
			continue
		}
		if !l.mu.TryLock() {
			continue
		}
		l.mu.Unlock()
		delete(t.locks, roomID)
	}
}

// stop 停止清理协程
func (t *roomLockTable) stop() {
	close(t.stopCh)
}

// size 当前锁表大小，用于 ActiveRooms 指标
func (t *roomLockTable) size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.locks)
}
