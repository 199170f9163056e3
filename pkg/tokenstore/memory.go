package tokenstore

import "sync"

// MemoryStore keeps the token in memory. Useful for testing or when
// persistence is not wanted.
type MemoryStore struct {
	mu    sync.RWMutex
	token string

	saves  int
	clears int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Read implements Reader.
func (s *MemoryStore) Read() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token, s.token != ""
}

// Save implements Store.
func (s *MemoryStore) Save(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.saves++
}

// Clear implements Store.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.clears++
}

// Writes returns how many times Save and Clear were called.
func (s *MemoryStore) Writes() (saves, clears int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.saves, s.clears
}
