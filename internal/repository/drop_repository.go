package repository

import (
	"context"
	"sort"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
)

type InMemoryDropRepository struct {
	db *memoryDB
}

// GetAll returns drops ordered by start time
func (r *InMemoryDropRepository) GetAll(ctx context.Context) ([]models.Drop, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	drops := make([]models.Drop, 0, len(r.db.drops))
	for _, d := range r.db.drops {
		drops = append(drops, d)
	}
	sort.Slice(drops, func(i, j int) bool {
		return drops[i].StartsAt.Before(drops[j].StartsAt)
	})
	return drops, nil
}

func (r *InMemoryDropRepository) GetByID(ctx context.Context, id string) (*models.Drop, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	d, exists := r.db.drops[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (r *InMemoryDropRepository) Create(ctx context.Context, d *models.Drop) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.drops[d.ID]; exists {
		return ErrConflict
	}
	r.db.drops[d.ID] = *d
	return nil
}

func (r *InMemoryDropRepository) Update(ctx context.Context, d *models.Drop) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.drops[d.ID]; !exists {
		return ErrNotFound
	}
	r.db.drops[d.ID] = *d
	return nil
}

func (r *InMemoryDropRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.drops[id]; !exists {
		return ErrNotFound
	}
	delete(r.db.drops, id)
	return nil
}
