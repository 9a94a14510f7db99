package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
)

type SpinRepo struct {
	db *sql.DB
}

// RecordSpin claims the subject's slot with a conditional upsert: the
// update branch only fires when the previous spin is outside the window,
// and RETURNING yields no row otherwise.
func (r *SpinRepo) RecordSpin(ctx context.Context, h models.SpinHistory, grant *models.UserCoupon, window time.Duration) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		var subject string
		err := tx.QueryRowContext(ctx, `
			INSERT INTO spin_claims (subject, last_spin_at) VALUES ($1, $2)
			ON CONFLICT (subject) DO UPDATE SET last_spin_at = EXCLUDED.last_spin_at
			WHERE spin_claims.last_spin_at <= $3
			RETURNING subject`,
			h.Subject, h.CreatedAt, h.CreatedAt.Add(-window)).Scan(&subject)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrSpinTooSoon
		}
		if err != nil {
			return errors.Wrap(err, "claim spin")
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO spin_history (id, subject, user_id, coupon_id, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			h.ID, h.Subject, h.UserID, h.CouponID, h.CreatedAt)
		if err != nil {
			return errors.Wrap(err, "insert spin history")
		}

		if grant != nil {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO user_coupons (id, user_id, coupon_id, code, is_used, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				grant.ID, grant.UserID, grant.CouponID, grant.Code, grant.IsUsed, grant.CreatedAt)
			if err != nil {
				return errors.Wrap(err, "insert user coupon")
			}
		}
		return nil
	})
}

func (r *SpinRepo) LastSpin(ctx context.Context, subject string) (time.Time, bool, error) {
	var last time.Time
	err := r.db.QueryRowContext(ctx, `SELECT last_spin_at FROM spin_claims WHERE subject = $1`, subject).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, errors.Wrap(err, "get last spin")
	}
	return last, true, nil
}

func (r *SpinRepo) GetUserCoupons(ctx context.Context, userID string) ([]models.UserCoupon, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, coupon_id, code, is_used, created_at
		FROM user_coupons WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query user coupons")
	}
	defer rows.Close()

	coupons := []models.UserCoupon{}
	for rows.Next() {
		var uc models.UserCoupon
		if err := rows.Scan(&uc.ID, &uc.UserID, &uc.CouponID, &uc.Code, &uc.IsUsed, &uc.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan user coupon")
		}
		coupons = append(coupons, uc)
	}
	return coupons, errors.Wrap(rows.Err(), "iterate user coupons")
}

type ProfileRepo struct {
	db *sql.DB
}

const profileColumns = `id, email, full_name, password_hash, is_admin, created_at`

func scanProfile(s scanner) (models.Profile, error) {
	var p models.Profile
	err := s.Scan(&p.ID, &p.Email, &p.FullName, &p.PasswordHash, &p.IsAdmin, &p.CreatedAt)
	return p, err
}

func (r *ProfileRepo) GetAll(ctx context.Context) ([]models.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at`)
	if err != nil {
		return nil, errors.Wrap(err, "query profiles")
	}
	defer rows.Close()

	profiles := []models.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan profile")
		}
		profiles = append(profiles, p)
	}
	return profiles, errors.Wrap(rows.Err(), "iterate profiles")
}

func (r *ProfileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "get profile")
	}
	return &p, nil
}

func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		return nil, mapErr(err, "get profile by email")
	}
	return &p, nil
}

func (r *ProfileRepo) Create(ctx context.Context, p *models.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Email, p.FullName, p.PasswordHash, p.IsAdmin, p.CreatedAt)
	return mapErr(err, "insert profile")
}

func (r *ProfileRepo) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET is_admin = $2 WHERE id = $1`, id, isAdmin)
	return expectOne(res, err, "set admin")
}

type CartRepo struct {
	db *sql.DB
}

func (r *CartRepo) LoadCart(ctx context.Context, sessionID string) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM carts WHERE session_id = $1`, sessionID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	return data, nil
}

func (r *CartRepo) SaveCart(ctx context.Context, sessionID string, data []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO carts (session_id, data, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (session_id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		sessionID, data)
	if err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}
