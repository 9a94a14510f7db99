package coupon

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
)

var (
	ErrInvalidOrExpired = errors.New("invalid or expired coupon")
	// ErrCouponExhausted is returned when the coupon stopped being redeemable
	// between applying it and placing the order.
	ErrCouponExhausted = repository.ErrCouponUnavailable
)

// Application is the result of a successful ApplyCoupon. Exactly one of
// DiscountPercent and DiscountAmount is set, depending on the coupon type;
// free shipping coupons set neither.
type Application struct {
	Success         bool                `json:"success"`
	Code            string              `json:"code"`
	DiscountType    models.DiscountType `json:"discount_type"`
	DiscountPercent *decimal.Decimal    `json:"discount_percent,omitempty"`
	DiscountAmount  *decimal.Decimal    `json:"discount_amount,omitempty"`
	Coupon          models.Coupon       `json:"-"`
}

// NormalizeCode trims and upper-cases a code for comparison.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValid reports whether c can be redeemed at now: it is active, not expired
// and below its usage limit.
func IsValid(c models.Coupon, now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.ExpiresAt != nil && !c.ExpiresAt.After(now) {
		return false
	}
	if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
		return false
	}
	return true
}

// ActiveCoupons returns the coupons of all that are valid at now, in order.
func ActiveCoupons(all []models.Coupon, now time.Time) []models.Coupon {
	active := make([]models.Coupon, 0, len(all))
	for _, c := range all {
		if IsValid(c, now) {
			active = append(active, c)
		}
	}
	return active
}

// ApplyCoupon matches code case-insensitively against available, which the
// caller has already filtered with ActiveCoupons.
func ApplyCoupon(code string, available []models.Coupon) (*Application, error) {
	want := NormalizeCode(code)
	if want == "" {
		return nil, ErrInvalidOrExpired
	}

	for _, c := range available {
		if NormalizeCode(c.Code) != want {
			continue
		}

		app := &Application{
			Success:      true,
			Code:         c.Code,
			DiscountType: c.DiscountType,
			Coupon:       c,
		}
		amount := c.DiscountAmount
		switch c.DiscountType {
		case models.DiscountPercentage:
			app.DiscountPercent = &amount
		case models.DiscountFixedCart, models.DiscountFixedProduct:
			app.DiscountAmount = &amount
		}
		return app, nil
	}

	return nil, ErrInvalidOrExpired
}
