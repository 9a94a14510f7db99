package repository

import (
	"context"
	"sort"
	"time"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
)

type InMemorySpinRepository struct {
	db *memoryDB
}

func (r *InMemorySpinRepository) RecordSpin(ctx context.Context, history models.SpinHistory, grant *models.UserCoupon, window time.Duration) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if last, ok := r.db.lastSpin[history.Subject]; ok && history.CreatedAt.Sub(last) < window {
		return ErrSpinTooSoon
	}

	r.db.lastSpin[history.Subject] = history.CreatedAt
	r.db.spins = append(r.db.spins, history)
	if grant != nil {
		r.db.userCoupons = append(r.db.userCoupons, *grant)
	}
	return nil
}

func (r *InMemorySpinRepository) LastSpin(ctx context.Context, subject string) (time.Time, bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	last, ok := r.db.lastSpin[subject]
	return last, ok, nil
}

// GetUserCoupons returns the coupons won by userID, newest first.
func (r *InMemorySpinRepository) GetUserCoupons(ctx context.Context, userID string) ([]models.UserCoupon, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	coupons := []models.UserCoupon{}
	for _, uc := range r.db.userCoupons {
		if uc.UserID == userID {
			coupons = append(coupons, uc)
		}
	}
	sort.SliceStable(coupons, func(i, j int) bool {
		return coupons[i].CreatedAt.After(coupons[j].CreatedAt)
	})
	return coupons, nil
}
