package cache

import (
	"context"
	"sync"
	"time"
)

// SeenSet records event identifiers for a bounded window so redelivered
// webhooks can be dropped.
type SeenSet interface {
	// CheckAndMark marks the key as seen and reports whether it had already
	// been seen within the window.
	CheckAndMark(ctx context.Context, key string, window time.Duration) (bool, error)
}

// MemorySeenSet is an in-process SeenSet with expiration
type MemorySeenSet struct {
	mu    sync.Mutex
	items map[string]time.Time
	now   func() time.Time
}

// NewMemorySeenSet creates a new in-memory seen set
func NewMemorySeenSet() *MemorySeenSet {
	return &MemorySeenSet{
		items: make(map[string]time.Time),
		now:   time.Now,
	}
}

// NewMemorySeenSetWithClock creates a seen set using the given clock
func NewMemorySeenSetWithClock(now func() time.Time) *MemorySeenSet {
	return &MemorySeenSet{
		items: make(map[string]time.Time),
		now:   now,
	}
}

func (s *MemorySeenSet) CheckAndMark(_ context.Context, key string, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpired(now)

	expireTime, exists := s.items[key]
	if exists && now.Before(expireTime) {
		return true, nil
	}

	s.items[key] = now.Add(window)
	return false, nil
}

// evictExpired removes expired entries. Called with the lock held.
func (s *MemorySeenSet) evictExpired(now time.Time) {
	for key, expireTime := range s.items {
		if now.After(expireTime) {
			delete(s.items, key)
		}
	}
}

// Len returns the number of live entries
func (s *MemorySeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
