package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage   DiscountType = "percentage"
	DiscountFixedCart    DiscountType = "fixed_cart"
	DiscountFixedProduct DiscountType = "fixed_product"
	DiscountFreeShipping DiscountType = "free_shipping"
)

// Valid reports whether t is a known discount type.
func (t DiscountType) Valid() bool {
	switch t {
	case DiscountPercentage, DiscountFixedCart, DiscountFixedProduct, DiscountFreeShipping:
		return true
	}
	return false
}

// Coupon is a discount code with validity constraints and a discount rule.
// Spin prizes are coupons flagged with IsSpinPrize.
type Coupon struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	DiscountType    DiscountType    `json:"discount_type"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	UsageLimit      *int            `json:"usage_limit,omitempty"`
	UsageCount      int             `json:"usage_count"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
	IsActive        bool            `json:"is_active"`
	IsSpinPrize     bool            `json:"is_spin_prize"`
	SpinProbability float64         `json:"spin_probability"`
	SpinColor       string          `json:"spin_color,omitempty"`
	SpinLabel       string          `json:"spin_label,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
