package session

import (
	"net/http"
	"sync"
)

// MemoryStore is an in-process Store for tests. It ignores the request and
// response writer and keeps a single token pair, mirroring the one-session
// model of the cookie store.
type MemoryStore struct {
	mu      sync.Mutex
	pair    TokenPair
	present bool

	// Counters for assertions.
	Writes int
	Clears int
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Seed sets the stored pair directly, bypassing the write counter.
func (s *MemoryStore) Seed(pair TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	s.present = true
}

func (s *MemoryStore) Read(r *http.Request) TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair
}

func (s *MemoryStore) Write(w http.ResponseWriter, pair TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	s.present = true
	s.Writes++
}

func (s *MemoryStore) Clear(w http.ResponseWriter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = TokenPair{}
	s.present = false
	s.Clears++
}

// Current returns the stored pair and whether a session exists.
func (s *MemoryStore) Current() (TokenPair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair, s.present
}
