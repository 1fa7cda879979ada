package cache

import (
	"container/list"
	"sync"
	"time"
)

// Clock is the time source used to stamp entries
type Clock interface {
	Now() time.Time
}

type ttlEntry[K comparable, V any] struct {
	key   K
	value V
	setAt time.Time
	elem  *list.Element
}

// TTLMap is a capacity-bounded map whose entries expire ttl after their last Set
// Expiry is opportunistic: entries are only dropped when EvictExpired runs
type TTLMap[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	clock    Clock
	entries  map[K]*ttlEntry[K, V]
	order    *list.List // Insertion order, oldest at front

	// OnEvict is invoked for entries dropped by expiry or capacity, never for Set/Delete
	// Called without the internal lock held
	OnEvict func(key K, value V)
}

// NewTTLMap creates a map bounded to capacity entries (minimum 1)
func NewTTLMap[K comparable, V any](capacity int, ttl time.Duration, clock Clock) *TTLMap[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &TTLMap[K, V]{
		capacity: capacity,
		ttl:      ttl,
		clock:    clock,
		entries:  make(map[K]*ttlEntry[K, V], capacity),
		order:    list.New(),
	}
}

// Get returns the value for key regardless of its age
func (m *TTLMap[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok {
		return e.value, true
	}
	var zero V
	return zero, false
}

// Set stores value under key and returns whatever it replaced
// Overwriting refreshes the entry's timestamp and insertion position
func (m *TTLMap[K, V]) Set(key K, value V) (V, bool) {
	m.mu.Lock()

	var prev V
	var had bool
	if e, ok := m.entries[key]; ok {
		prev, had = e.value, true
		m.order.Remove(e.elem)
		delete(m.entries, key)
	}

	e := &ttlEntry[K, V]{key: key, value: value, setAt: m.clock.Now()}
	e.elem = m.order.PushBack(e)
	m.entries[key] = e

	var evicted []*ttlEntry[K, V]
	for len(m.entries) > m.capacity {
		oldest := m.order.Front().Value.(*ttlEntry[K, V])
		m.removeLocked(oldest)
		evicted = append(evicted, oldest)
	}
	m.mu.Unlock()

	m.notify(evicted)
	return prev, had
}

// Delete removes key and returns the removed value
func (m *TTLMap[K, V]) Delete(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	m.removeLocked(e)
	return e.value, true
}

// EvictExpired drops entries strictly older than ttl at now and returns how many were dropped
func (m *TTLMap[K, V]) EvictExpired(now time.Time) int {
	m.mu.Lock()
	var evicted []*ttlEntry[K, V]
	for el := m.order.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*ttlEntry[K, V])
		if now.Sub(e.setAt) > m.ttl {
			m.removeLocked(e)
			evicted = append(evicted, e)
		}
		el = next
	}
	m.mu.Unlock()

	m.notify(evicted)
	return len(evicted)
}

// Len returns the number of stored entries
func (m *TTLMap[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Keys returns stored keys, oldest first
func (m *TTLMap[K, V]) Keys() []K {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]K, 0, len(m.entries))
	for el := m.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*ttlEntry[K, V]).key)
	}
	return keys
}

func (m *TTLMap[K, V]) removeLocked(e *ttlEntry[K, V]) {
	m.order.Remove(e.elem)
	delete(m.entries, e.key)
}

func (m *TTLMap[K, V]) notify(evicted []*ttlEntry[K, V]) {
	if m.OnEvict == nil {
		return
	}
	for _, e := range evicted {
		m.OnEvict(e.key, e.value)
	}
}
