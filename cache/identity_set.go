package cache

import "sync"

// IdentitySet is a bounded FIFO set of ids
// Membership is O(1); once full, each insertion evicts the oldest surviving id
type IdentitySet struct {
	mu       sync.Mutex
	capacity int
	ring     []string
	head     int // Index of the oldest id
	size     int
	members  map[string]struct{}
}

// NewIdentitySet creates a set holding at most capacity ids (minimum 1)
func NewIdentitySet(capacity int) *IdentitySet {
	if capacity < 1 {
		capacity = 1
	}
	return &IdentitySet{
		capacity: capacity,
		ring:     make([]string, capacity),
		members:  make(map[string]struct{}, capacity),
	}
}

// Add records id, evicting the oldest id when at capacity
// Re-adding a present id is a no-op and does not refresh its position
func (s *IdentitySet) Add(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLocked(id)
}

func (s *IdentitySet) addLocked(id string) bool {
	if _, ok := s.members[id]; ok {
		return false
	}

	if s.size == s.capacity {
		delete(s.members, s.ring[s.head])
		s.ring[s.head] = id
		s.head = (s.head + 1) % s.capacity
	} else {
		s.ring[(s.head+s.size)%s.capacity] = id
		s.size++
	}
	s.members[id] = struct{}{}
	return true
}

// Has reports whether id is currently remembered
func (s *IdentitySet) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[id]
	return ok
}

// AddIfAbsent records id and reports true when it was not already present
// Check and insert happen under one lock
func (s *IdentitySet) AddIfAbsent(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(id)
}

// Len returns the number of remembered ids
func (s *IdentitySet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Capacity returns the configured bound
func (s *IdentitySet) Capacity() int {
	return s.capacity
}
