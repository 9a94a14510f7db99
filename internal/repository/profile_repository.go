package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
)

type InMemoryProfileRepository struct {
	db *memoryDB
}

func (r *InMemoryProfileRepository) GetAll(ctx context.Context) ([]models.Profile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	profiles := make([]models.Profile, 0, len(r.db.profiles))
	for _, p := range r.db.profiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
	})
	return profiles, nil
}

func (r *InMemoryProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	p, exists := r.db.profiles[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *InMemoryProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, p := range r.db.profiles {
		if strings.EqualFold(p.Email, email) {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (r *InMemoryProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.profiles[p.ID]; exists {
		return ErrConflict
	}
	for _, existing := range r.db.profiles {
		if strings.EqualFold(existing.Email, p.Email) {
			return ErrConflict
		}
	}
	r.db.profiles[p.ID] = *p
	return nil
}

func (r *InMemoryProfileRepository) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, exists := r.db.profiles[id]
	if !exists {
		return ErrNotFound
	}
	p.IsAdmin = isAdmin
	r.db.profiles[id] = p
	return nil
}
