package stokercloud

import (
	"sync"
	"time"
)

// Token is the opaque credential returned by login. Tokens are replaced,
// never mutated: a re-login stores a fresh value.
type Token struct {
	Value      string
	ObtainedAt time.Time
}

// TokenStore holds the current token in a single process-wide slot. Both
// poll streams can trigger a re-login independently; the store is safe for
// concurrent use and the accepted policy is last writer wins.
type TokenStore struct {
	mu    sync.RWMutex
	token Token
	valid bool
}

// NewTokenStore returns an empty store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token and whether it is usable.
func (s *TokenStore) Get() (Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.valid
}

// Set replaces the current token.
func (s *TokenStore) Set(tok Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tok
	s.valid = true
}

// Invalidate marks the current token unusable. The value is kept so that a
// concurrent reader holding it can still fail fast on its next request.
func (s *TokenStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.valid = false
}
