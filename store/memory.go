package store

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/placerec/core"
)

// MemoryStore 是进程内实现的 Store，Redis 不可用时的缓存后端。
// 条目保存 (value, 绝对过期时间)，Get 时惰性淘汰过期条目；并发安全。
// 进程重启后数据丢失。
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string]entry
	now   Clock
	clean *time.Ticker
	done  chan struct{}
	once  sync.Once
}

type entry struct {
	value  []byte
	expire time.Time // 零值表示不过期
}

func (e entry) expired(now time.Time) bool {
	return !e.expire.IsZero() && now.After(e.expire)
}

// MemoryOption MemoryStore 配置选项
type MemoryOption func(*MemoryStore)

// WithClock 替换时钟（测试中模拟时间流逝）
func WithClock(clock Clock) MemoryOption {
	return func(m *MemoryStore) {
		m.now = clock
	}
}

// WithSweepInterval 启用后台定期清理过期条目，避免只写不读的 key 堆积
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(m *MemoryStore) {
		if d > 0 {
			m.clean = time.NewTicker(d)
		}
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	ms := &MemoryStore{
		data: make(map[string]entry),
		now:  time.Now,
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ms)
	}
	if ms.clean != nil {
		go ms.cleanup()
	}
	return ms
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	if e.expired(m.now()) {
		m.mu.Lock()
		// 加写锁后重新检查，避免删掉并发写入的新值
		if cur, ok := m.data[key]; ok && cur.expired(m.now()) {
			delete(m.data, key)
		}
		m.mu.Unlock()
		return nil, core.ErrStoreNotFound
	}
	return e.value, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expire = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.data[key] = e
	m.mu.Unlock()
	return nil
}

// Len 返回当前条目数（含尚未淘汰的过期条目）
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MemoryStore) Close() error {
	m.once.Do(func() {
		close(m.done)
		if m.clean != nil {
			m.clean.Stop()
		}
	})
	return nil
}

func (m *MemoryStore) cleanup() {
	for {
		select {
		case <-m.clean.C:
			m.sweep()
		case <-m.done:
			return
		}
	}
}

func (m *MemoryStore) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, e := range m.data {
		if e.expired(now) {
			delete(m.data, k)
		}
	}
}

var _ core.Store = (*MemoryStore)(nil)
