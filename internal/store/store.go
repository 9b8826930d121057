// Package store keeps the latest good value of each poll stream and the
// registered web-push subscriptions. Everything lives in memory for the
// process lifetime and is dropped on shutdown; a failed poll cycle leaves
// the previous value in place so readers see stale-but-present data.
package store

import (
	"sync"
	"time"

	"boiler-status-backend/internal/eventlog"
	"boiler-status-backend/internal/parse"
)

// Subscription is one registered web-push endpoint.
type Subscription struct {
	Endpoint string    `json:"endpoint"`
	P256DH   string    `json:"p256dh"`
	Auth     string    `json:"auth"`
	Created  time.Time `json:"created"`
}

// Store is the process-wide latest-value store.
type Store struct {
	mu       sync.RWMutex
	snapshot *parse.Snapshot
	events   *eventlog.Result
	subs     map[string]Subscription
}

// New returns an empty store.
func New() *Store {
	return &Store{subs: make(map[string]Subscription)}
}

// SetSnapshot replaces the latest controller snapshot.
func (s *Store) SetSnapshot(snap parse.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = &snap
}

// Snapshot returns the latest controller snapshot, or ok=false before the
// first successful poll.
func (s *Store) Snapshot() (parse.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return parse.Snapshot{}, false
	}
	return *s.snapshot, true
}

// SetEventLog replaces the latest event-log result.
func (s *Store) SetEventLog(result eventlog.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = &result
}

// EventLog returns the latest event-log result, or ok=false before the first
// successful poll.
func (s *Store) EventLog() (eventlog.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.events == nil {
		return eventlog.Result{}, false
	}
	return *s.events, true
}

// UpsertSubscription creates or replaces a subscription keyed by endpoint.
func (s *Store) UpsertSubscription(sub Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.subs[sub.Endpoint]; ok {
		sub.Created = existing.Created
	} else if sub.Created.IsZero() {
		sub.Created = time.Now().UTC()
	}
	s.subs[sub.Endpoint] = sub
}

// Subscription looks up a subscription by endpoint.
func (s *Store) Subscription(endpoint string) (Subscription, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[endpoint]
	return sub, ok
}

// DeleteSubscription removes a subscription by endpoint.
func (s *Store) DeleteSubscription(endpoint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, endpoint)
}

// Subscriptions returns a copy of all registered subscriptions.
func (s *Store) Subscriptions() []Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subs := make([]Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	return subs
}
