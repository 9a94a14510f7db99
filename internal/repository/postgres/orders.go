package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/lib/pq"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
)

type OrderRepo struct {
	db *sql.DB
}

const orderColumns = `id, user_id, customer_name, customer_email, customer_phone,
	shipping_method, street, city, postal_code, country, locker_id, notes,
	subtotal, discount_amount, shipping_fee, total_amount, coupon_id, coupon_code,
	status, created_at`

// PlaceOrder runs every write in one transaction. The product and coupon
// updates are conditional, so concurrent orders for the same piece or the
// last use of a coupon cannot both succeed.
func (r *OrderRepo) PlaceOrder(ctx context.Context, o *models.Order) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, item := range o.Items {
			res, err := tx.ExecContext(ctx,
				`UPDATE products SET is_sold = TRUE WHERE id = $1 AND NOT is_sold`, item.ProductID)
			if err := expectOne(res, err, "mark product sold"); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return repository.ErrProductUnavailable
				}
				return err
			}
		}

		if o.CouponID != nil {
			res, err := tx.ExecContext(ctx, `
				UPDATE coupons SET usage_count = usage_count + 1
				WHERE id = $1
				  AND is_active
				  AND (expires_at IS NULL OR expires_at > $2)
				  AND (usage_limit IS NULL OR usage_count < usage_limit)`,
				*o.CouponID, o.CreatedAt)
			if err := expectOne(res, err, "redeem coupon"); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return repository.ErrCouponUnavailable
				}
				return err
			}

			if o.UserID != nil {
				_, err := tx.ExecContext(ctx, `
					UPDATE user_coupons SET is_used = TRUE
					WHERE id = (
						SELECT id FROM user_coupons
						WHERE user_id = $1 AND coupon_id = $2 AND NOT is_used
						ORDER BY created_at
						LIMIT 1
					)`, *o.UserID, *o.CouponID)
				if err != nil {
					return errors.Wrap(err, "mark user coupon used")
				}
			}
		}

		a := o.ShippingAddress
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (`+orderColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
			o.ID, o.UserID, o.CustomerName, o.CustomerEmail, o.CustomerPhone,
			a.Method, a.Street, a.City, a.PostalCode, a.Country, a.LockerID, a.Notes,
			o.Subtotal, o.DiscountAmount, o.ShippingFee, o.TotalAmount, o.CouponID, o.CouponCode,
			o.Status, o.CreatedAt)
		if err != nil {
			return mapErr(err, "insert order")
		}

		for i, item := range o.Items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (order_id, position, product_id, name, quantity, price)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				o.ID, i, item.ProductID, item.Name, item.Quantity, item.Price)
			if err != nil {
				return errors.Wrap(err, "insert order item")
			}
		}
		return nil
	})
}

func scanOrder(s scanner) (models.Order, error) {
	var o models.Order
	a := &o.ShippingAddress
	err := s.Scan(&o.ID, &o.UserID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&a.Method, &a.Street, &a.City, &a.PostalCode, &a.Country, &a.LockerID, &a.Notes,
		&o.Subtotal, &o.DiscountAmount, &o.ShippingFee, &o.TotalAmount, &o.CouponID, &o.CouponCode,
		&o.Status, &o.CreatedAt)
	o.Items = []models.OrderItem{}
	return o, err
}

func (r *OrderRepo) GetAll(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	var where []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	defer rows.Close()

	orders := []models.Order{}
	index := make(map[string]int)
	ids := []string{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		index[o.ID] = len(orders)
		ids = append(ids, o.ID)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate orders")
	}
	if len(ids) == 0 {
		return orders, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, name, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`, pq.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, "query order items")
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID string
		var it models.OrderItem
		if err := itemRows.Scan(&orderID, &it.ProductID, &it.Name, &it.Quantity, &it.Price); err != nil {
			return nil, errors.Wrap(err, "scan order item")
		}
		i := index[orderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return orders, errors.Wrap(itemRows.Err(), "iterate order items")
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "get order")
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, name, quantity, price
		FROM order_items WHERE order_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, errors.Wrap(err, "query order items")
	}
	defer rows.Close()

	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Quantity, &it.Price); err != nil {
			return nil, errors.Wrap(err, "scan order item")
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate order items")
	}
	return &o, nil
}

// UpdateStatus is conditional on the current status. A cancellation
// releases the order's products in the same transaction.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = $3 WHERE id = $1 AND status = $2`, id, from, to)
		if err := expectOne(res, err, "update order status"); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			var exists bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
				return errors.Wrap(err, "check order")
			}
			if exists {
				return repository.ErrStatusChanged
			}
			return repository.ErrNotFound
		}

		if to == models.OrderStatusCancelled {
			_, err := tx.ExecContext(ctx, `
				UPDATE products SET is_sold = FALSE
				WHERE id IN (SELECT product_id FROM order_items WHERE order_id = $1)`, id)
			if err != nil {
				return errors.Wrap(err, "release products")
			}
		}
		return nil
	})
}
