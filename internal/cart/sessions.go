package cart

import (
	"context"
	"sync"
	"time"
)

// IdleTTL is how long a cart stays cached after its last use.
const IdleTTL = 30 * time.Minute

type cachedStore struct {
	store    *Store
	lastUsed time.Time
}

// Sessions hands out one Store per session id for mutations. The Persister
// is the source of truth: a cached Store is reloaded on every Get and is
// dropped once it has been idle for longer than the TTL.
type Sessions struct {
	persister Persister
	ttl       time.Duration
	now       func() time.Time

	mu        sync.Mutex
	stores    map[string]*cachedStore
	lastSweep time.Time
}

// NewSessions creates a session registry backed by p.
func NewSessions(p Persister) *Sessions {
	return &Sessions{
		persister: p,
		ttl:       IdleTTL,
		now:       time.Now,
		stores:    make(map[string]*cachedStore),
	}
}

// Get returns the cart of sessionID for a mutation. Concurrent callers for
// the same session share one Store, so their writes are serialized.
func (s *Sessions) Get(ctx context.Context, sessionID string) (*Store, error) {
	s.mu.Lock()
	now := s.now()
	s.sweepLocked(now)
	cached, ok := s.stores[sessionID]
	if ok {
		cached.lastUsed = now
	}
	s.mu.Unlock()

	if ok {
		if err := cached.store.reload(ctx); err != nil {
			return nil, err
		}
		return cached.store, nil
	}

	st, err := Open(ctx, sessionID, s.persister)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.stores[sessionID]; ok {
		// Another request opened it first.
		cached.lastUsed = now
		return cached.store, nil
	}
	s.stores[sessionID] = &cachedStore{store: st, lastUsed: now}
	return st, nil
}

// View returns the stored cart of sessionID for reading. Nothing is cached.
func (s *Sessions) View(ctx context.Context, sessionID string) (*Store, error) {
	return Open(ctx, sessionID, s.persister)
}

// Len returns the number of cached carts.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}

// sweepLocked drops idle carts. It runs at most once per TTL.
func (s *Sessions) sweepLocked(now time.Time) {
	if now.Sub(s.lastSweep) < s.ttl {
		return
	}
	s.lastSweep = now
	for id, cached := range s.stores {
		if now.Sub(cached.lastUsed) > s.ttl {
			delete(s.stores, id)
		}
	}
}
