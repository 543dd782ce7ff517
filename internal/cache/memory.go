package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/ricesearch/rbo/internal/rbo"
)

type memoryEntry struct {
	key     string
	result  rbo.Result
	expires time.Time // zero = never
}

// Memory is an in-process LRU cache.
type Memory struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	order   *list.List // front = most recently used
	items   map[string]*list.Element
	now     func() time.Time
}

// NewMemory creates an LRU cache holding at most maxSize results. A zero ttl
// keeps entries until evicted.
func NewMemory(maxSize int, ttl time.Duration) *Memory {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &Memory{
		maxSize: maxSize,
		ttl:     ttl,
		order:   list.New(),
		items:   make(map[string]*list.Element),
		now:     time.Now,
	}
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) (rbo.Result, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.items[key]
	if !ok {
		return rbo.Result{}, false, nil
	}
	ent := el.Value.(*memoryEntry)
	if !ent.expires.IsZero() && m.now().After(ent.expires) {
		m.order.Remove(el)
		delete(m.items, key)
		return rbo.Result{}, false, nil
	}
	m.order.MoveToFront(el)
	return ent.result, true, nil
}

// Set implements Cache.
func (m *Memory) Set(_ context.Context, key string, r rbo.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expires time.Time
	if m.ttl > 0 {
		expires = m.now().Add(m.ttl)
	}

	if el, ok := m.items[key]; ok {
		ent := el.Value.(*memoryEntry)
		ent.result = r
		ent.expires = expires
		m.order.MoveToFront(el)
		return nil
	}

	for m.order.Len() >= m.maxSize {
		oldest := m.order.Back()
		m.order.Remove(oldest)
		delete(m.items, oldest.Value.(*memoryEntry).key)
	}

	m.items[key] = m.order.PushFront(&memoryEntry{key: key, result: r, expires: expires})
	return nil
}

// Len returns the number of cached results.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

// Close implements Cache.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order.Init()
	m.items = make(map[string]*list.Element)
	return nil
}
