package flash

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	messages  []Message
	expiresAt time.Time
}

// MemoryStore はプロセス内でメッセージを保持する Store です。
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*memoryEntry
}

// NewMemoryStore は MemoryStore を作成します。ttl が 0 の場合は期限切れになりません。
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*memoryEntry),
	}
}

// Push はメッセージを末尾に追加し、期限を延長します。
func (s *MemoryStore) Push(ctx context.Context, sessionID string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	entry, ok := s.entries[sessionID]
	if !ok {
		entry = &memoryEntry{}
		s.entries[sessionID] = entry
	}
	entry.messages = append(entry.messages, msg)
	entry.expiresAt = expiry(now, s.ttl)
	return nil
}

// Drain は積まれたメッセージを返して削除します。
func (s *MemoryStore) Drain(ctx context.Context, sessionID string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sessionID]
	if !ok {
		return nil, nil
	}
	delete(s.entries, sessionID)
	if expired(entry, s.now()) {
		return nil, nil
	}
	return entry.messages, nil
}

func (s *MemoryStore) sweep(now time.Time) {
	for id, entry := range s.entries {
		if expired(entry, now) {
			delete(s.entries, id)
		}
	}
}

func expired(entry *memoryEntry, now time.Time) bool {
	return !entry.expiresAt.IsZero() && now.After(entry.expiresAt)
}
