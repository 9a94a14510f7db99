package coupon

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculate(t *testing.T) {
	lines := []Line{
		{Price: dec("189"), Quantity: 1},
		{Price: dec("59"), Quantity: 2},
	}
	shipping := dec("15")

	tests := []struct {
		name         string
		coupon       *models.Coupon
		lines        []Line
		wantDiscount string
		wantShipping string
		wantTotal    string
	}{
		{
			name:         "no coupon",
			lines:        lines,
			wantDiscount: "0",
			wantShipping: "15",
			wantTotal:    "322",
		},
		{
			// 307 × 10% = 30.7, rounds to 31
			name:         "percentage rounds to whole units",
			coupon:       &models.Coupon{DiscountType: models.DiscountPercentage, DiscountAmount: dec("10")},
			lines:        lines,
			wantDiscount: "31",
			wantShipping: "15",
			wantTotal:    "291",
		},
		{
			// 10 × 15% = 1.5, half away from zero
			name:         "percentage half rounds up",
			coupon:       &models.Coupon{DiscountType: models.DiscountPercentage, DiscountAmount: dec("15")},
			lines:        []Line{{Price: dec("10"), Quantity: 1}},
			wantDiscount: "2",
			wantShipping: "15",
			wantTotal:    "23",
		},
		{
			name:         "fixed cart",
			coupon:       &models.Coupon{DiscountType: models.DiscountFixedCart, DiscountAmount: dec("50")},
			lines:        lines,
			wantDiscount: "50",
			wantShipping: "15",
			wantTotal:    "272",
		},
		{
			name:         "fixed cart capped at subtotal",
			coupon:       &models.Coupon{DiscountType: models.DiscountFixedCart, DiscountAmount: dec("500")},
			lines:        lines,
			wantDiscount: "307",
			wantShipping: "15",
			wantTotal:    "15",
		},
		{
			// 100 off the 189 unit, 59 off each 59 unit
			name:         "fixed product capped per unit",
			coupon:       &models.Coupon{DiscountType: models.DiscountFixedProduct, DiscountAmount: dec("100")},
			lines:        lines,
			wantDiscount: "218",
			wantShipping: "15",
			wantTotal:    "104",
		},
		{
			name:         "free shipping",
			coupon:       &models.Coupon{DiscountType: models.DiscountFreeShipping},
			lines:        lines,
			wantDiscount: "0",
			wantShipping: "0",
			wantTotal:    "307",
		},
		{
			name:         "empty cart",
			coupon:       &models.Coupon{DiscountType: models.DiscountFixedCart, DiscountAmount: dec("50")},
			wantDiscount: "0",
			wantShipping: "15",
			wantTotal:    "15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Calculate(tt.coupon, tt.lines, shipping)

			if !b.Discount.Equal(dec(tt.wantDiscount)) {
				t.Errorf("discount = %s, want %s", b.Discount, tt.wantDiscount)
			}
			if !b.Shipping.Equal(dec(tt.wantShipping)) {
				t.Errorf("shipping = %s, want %s", b.Shipping, tt.wantShipping)
			}
			if !b.Total.Equal(dec(tt.wantTotal)) {
				t.Errorf("total = %s, want %s", b.Total, tt.wantTotal)
			}
			if !b.Total.Equal(b.Subtotal.Sub(b.Discount).Add(b.Shipping)) {
				t.Error("total is not subtotal - discount + shipping")
			}
		})
	}
}
