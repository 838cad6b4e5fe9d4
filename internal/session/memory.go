package session

import (
	"context"
	"sync"
	"time"

	"sitecms/internal/model"
)

type memoryEntry struct {
	user      model.User
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Sessions do not survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Purger = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// Save stores a copy of user under token. A non-positive ttl never expires.
func (s *MemoryStore) Save(_ context.Context, token string, user *model.User, ttl time.Duration) error {
	e := memoryEntry{user: *user}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[HashToken(token)] = e
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (*model.User, error) {
	s.mu.RLock()
	e, ok := s.entries[HashToken(token)]
	s.mu.RUnlock()
	if !ok || s.expired(e) {
		return nil, nil
	}
	u := e.user
	return &u, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.entries, HashToken(token))
	s.mu.Unlock()
	return nil
}

// PurgeExpired drops expired entries and returns how many were removed.
func (s *MemoryStore) PurgeExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, k)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}
