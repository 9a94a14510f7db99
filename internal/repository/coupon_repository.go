package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
)

type InMemoryCouponRepository struct {
	db *memoryDB
}

// GetAll returns coupons in creation order
func (r *InMemoryCouponRepository) GetAll(ctx context.Context) ([]models.Coupon, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	coupons := make([]models.Coupon, 0, len(r.db.coupons))
	for _, c := range r.db.coupons {
		coupons = append(coupons, c)
	}
	sort.Slice(coupons, func(i, j int) bool {
		if coupons[i].CreatedAt.Equal(coupons[j].CreatedAt) {
			return coupons[i].Code < coupons[j].Code
		}
		return coupons[i].CreatedAt.Before(coupons[j].CreatedAt)
	})
	return coupons, nil
}

func (r *InMemoryCouponRepository) GetByID(ctx context.Context, id string) (*models.Coupon, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	c, exists := r.db.coupons[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *InMemoryCouponRepository) Create(ctx context.Context, c *models.Coupon) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.coupons[c.ID]; exists || r.codeTaken(c.Code, "") {
		return ErrConflict
	}
	r.db.coupons[c.ID] = *c
	return nil
}

// Update replaces the coupon settings. The usage count is only changed by
// PlaceOrder.
func (r *InMemoryCouponRepository) Update(ctx context.Context, c *models.Coupon) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, exists := r.db.coupons[c.ID]
	if !exists {
		return ErrNotFound
	}
	if r.codeTaken(c.Code, c.ID) {
		return ErrConflict
	}
	updated := *c
	updated.UsageCount = existing.UsageCount
	r.db.coupons[c.ID] = updated
	return nil
}

func (r *InMemoryCouponRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.coupons[id]; !exists {
		return ErrNotFound
	}
	delete(r.db.coupons, id)
	return nil
}

// codeTaken reports whether another coupon uses code. Callers hold the lock.
func (r *InMemoryCouponRepository) codeTaken(code, exceptID string) bool {
	for id, c := range r.db.coupons {
		if id != exceptID && strings.EqualFold(c.Code, code) {
			return true
		}
	}
	return false
}

// redeemable mirrors the coupon validity rule for the conditional increment.
func redeemable(c models.Coupon, now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.ExpiresAt != nil && !c.ExpiresAt.After(now) {
		return false
	}
	return c.UsageLimit == nil || c.UsageCount < *c.UsageLimit
}
