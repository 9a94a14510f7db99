package repository

import (
	"context"
	"sort"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
)

// InMemoryOrderRepository implements OrderRepository with in-memory storage
type InMemoryOrderRepository struct {
	db *memoryDB
}

// PlaceOrder checks every precondition before touching any table, so a
// failed order leaves no partial state behind.
func (r *InMemoryOrderRepository) PlaceOrder(ctx context.Context, order *models.Order) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.orders[order.ID]; exists {
		return ErrConflict
	}

	seen := make(map[string]bool, len(order.Items))
	for _, item := range order.Items {
		p, exists := r.db.products[item.ProductID]
		if !exists || p.IsSold || seen[item.ProductID] {
			return ErrProductUnavailable
		}
		seen[item.ProductID] = true
	}

	var coupon models.Coupon
	if order.CouponID != nil {
		c, exists := r.db.coupons[*order.CouponID]
		if !exists || !redeemable(c, order.CreatedAt) {
			return ErrCouponUnavailable
		}
		coupon = c
	}

	for _, item := range order.Items {
		p := r.db.products[item.ProductID]
		p.IsSold = true
		r.db.products[p.ID] = p
	}

	if order.CouponID != nil {
		coupon.UsageCount++
		r.db.coupons[coupon.ID] = coupon

		if order.UserID != nil {
			for i, uc := range r.db.userCoupons {
				if uc.UserID == *order.UserID && uc.CouponID == coupon.ID && !uc.IsUsed {
					r.db.userCoupons[i].IsUsed = true
					break
				}
			}
		}
	}

	r.db.orders[order.ID] = cloneOrder(*order)
	return nil
}

// GetAll returns orders matching filter, newest first
func (r *InMemoryOrderRepository) GetAll(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	orders := make([]models.Order, 0, len(r.db.orders))
	for _, o := range r.db.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.UserID != "" && (o.UserID == nil || *o.UserID != filter.UserID) {
			continue
		}
		orders = append(orders, cloneOrder(o))
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *InMemoryOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	o, exists := r.db.orders[id]
	if !exists {
		return nil, ErrNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r *InMemoryOrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	o, exists := r.db.orders[id]
	if !exists {
		return ErrNotFound
	}
	if o.Status != from {
		return ErrStatusChanged
	}

	if to == models.OrderStatusCancelled {
		for _, item := range o.Items {
			if p, ok := r.db.products[item.ProductID]; ok {
				p.IsSold = false
				r.db.products[p.ID] = p
			}
		}
	}

	o.Status = to
	r.db.orders[id] = o
	return nil
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem{}, o.Items...)
	return o
}
