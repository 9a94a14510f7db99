package models

import "time"

// SpinHistory records one spin of the wheel. Subject is the user id for
// authenticated users and the session id for anonymous visitors.
type SpinHistory struct {
	ID        string    `json:"id"`
	Subject   string    `json:"-"`
	UserID    *string   `json:"user_id,omitempty"`
	CouponID  string    `json:"coupon_id"`
	CreatedAt time.Time `json:"created_at"`
}

// UserCoupon is a won coupon granted to a user, redeemable once.
type UserCoupon struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CouponID  string    `json:"coupon_id"`
	Code      string    `json:"code"`
	IsUsed    bool      `json:"is_used"`
	CreatedAt time.Time `json:"created_at"`
}
