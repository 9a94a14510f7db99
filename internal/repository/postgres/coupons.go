package postgres

import (
	"context"
	"database/sql"

	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
)

type CouponRepo struct {
	db *sql.DB
}

const couponColumns = `id, code, discount_type, discount_amount, usage_limit, usage_count,
	expires_at, is_active, is_spin_prize, spin_probability, spin_color, spin_label, created_at`

func scanCoupon(s scanner) (models.Coupon, error) {
	var c models.Coupon
	err := s.Scan(&c.ID, &c.Code, &c.DiscountType, &c.DiscountAmount, &c.UsageLimit,
		&c.UsageCount, &c.ExpiresAt, &c.IsActive, &c.IsSpinPrize, &c.SpinProbability,
		&c.SpinColor, &c.SpinLabel, &c.CreatedAt)
	return c, err
}

func (r *CouponRepo) GetAll(ctx context.Context) ([]models.Coupon, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY created_at, code`)
	if err != nil {
		return nil, errors.Wrap(err, "query coupons")
	}
	defer rows.Close()

	coupons := []models.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan coupon")
		}
		coupons = append(coupons, c)
	}
	return coupons, errors.Wrap(rows.Err(), "iterate coupons")
}

func (r *CouponRepo) GetByID(ctx context.Context, id string) (*models.Coupon, error) {
	c, err := scanCoupon(r.db.QueryRowContext(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "get coupon")
	}
	return &c, nil
}

func (r *CouponRepo) Create(ctx context.Context, c *models.Coupon) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO coupons (`+couponColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.Code, c.DiscountType, c.DiscountAmount, c.UsageLimit, c.UsageCount,
		c.ExpiresAt, c.IsActive, c.IsSpinPrize, c.SpinProbability, c.SpinColor, c.SpinLabel, c.CreatedAt)
	return mapErr(err, "insert coupon")
}

// Update leaves usage_count alone; only order placement moves it.
func (r *CouponRepo) Update(ctx context.Context, c *models.Coupon) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE coupons
		SET code = $2, discount_type = $3, discount_amount = $4, usage_limit = $5,
		    expires_at = $6, is_active = $7, is_spin_prize = $8, spin_probability = $9,
		    spin_color = $10, spin_label = $11
		WHERE id = $1`,
		c.ID, c.Code, c.DiscountType, c.DiscountAmount, c.UsageLimit,
		c.ExpiresAt, c.IsActive, c.IsSpinPrize, c.SpinProbability, c.SpinColor, c.SpinLabel)
	return expectOne(res, err, "update coupon")
}

func (r *CouponRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	return expectOne(res, err, "delete coupon")
}
