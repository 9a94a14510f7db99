package repository

import (
	"context"
	"sort"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
)

type InMemoryCategoryRepository struct {
	db *memoryDB
}

// GetAll returns categories ordered by sort order, then name
func (r *InMemoryCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	categories := make([]models.Category, 0, len(r.db.categories))
	for _, c := range r.db.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		if categories[i].Name != categories[j].Name {
			return categories[i].Name < categories[j].Name
		}
		return categories[i].ID < categories[j].ID
	})
	return categories, nil
}

func (r *InMemoryCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	c, exists := r.db.categories[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *InMemoryCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.categories[c.ID]; exists {
		return ErrConflict
	}
	r.db.categories[c.ID] = *c
	return nil
}

func (r *InMemoryCategoryRepository) Update(ctx context.Context, c *models.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.categories[c.ID]; !exists {
		return ErrNotFound
	}
	r.db.categories[c.ID] = *c
	return nil
}

// Delete removes the category and detaches its children and products.
func (r *InMemoryCategoryRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.categories[id]; !exists {
		return ErrNotFound
	}
	delete(r.db.categories, id)

	for cid, c := range r.db.categories {
		if c.ParentID != nil && *c.ParentID == id {
			c.ParentID = nil
			r.db.categories[cid] = c
		}
	}
	for pid, p := range r.db.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			r.db.products[pid] = p
		}
	}
	return nil
}
