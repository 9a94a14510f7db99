package repository

import "context"

// InMemoryCartRepository keeps serialized carts keyed by session id.
type InMemoryCartRepository struct {
	db *memoryDB
}

// LoadCart returns nil data when the session has no stored cart.
func (r *InMemoryCartRepository) LoadCart(ctx context.Context, sessionID string) ([]byte, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	data, ok := r.db.carts[sessionID]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (r *InMemoryCartRepository) SaveCart(ctx context.Context, sessionID string, data []byte) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.carts[sessionID] = append([]byte(nil), data...)
	return nil
}
