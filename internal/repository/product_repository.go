package repository

import (
	"context"
	"sort"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
)

// InMemoryProductRepository implements ProductRepository with in-memory storage
type InMemoryProductRepository struct {
	db *memoryDB
}

// GetAll returns all products, newest first
func (r *InMemoryProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	products := make([]models.Product, 0, len(r.db.products))
	for _, product := range r.db.products {
		products = append(products, cloneProduct(product))
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].ID < products[j].ID
		}
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

// GetByID returns a product by its ID
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	product, exists := r.db.products[id]
	if !exists {
		return nil, ErrNotFound
	}
	product = cloneProduct(product)
	return &product, nil
}

func (r *InMemoryProductRepository) Create(ctx context.Context, p *models.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.products[p.ID]; exists {
		return ErrConflict
	}
	r.db.products[p.ID] = cloneProduct(*p)
	return nil
}

func (r *InMemoryProductRepository) Update(ctx context.Context, p *models.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.products[p.ID]; !exists {
		return ErrNotFound
	}
	r.db.products[p.ID] = cloneProduct(*p)
	return nil
}

func (r *InMemoryProductRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.products[id]; !exists {
		return ErrNotFound
	}
	delete(r.db.products, id)
	return nil
}

func cloneProduct(p models.Product) models.Product {
	p.Images = append([]string{}, p.Images...)
	return p
}
