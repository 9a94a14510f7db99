package coupon

import (
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Line is a priced cart line for discount calculation
type Line struct {
	Price    decimal.Decimal
	Quantity int
}

// Breakdown is the priced result of a checkout.
type Breakdown struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	Shipping     decimal.Decimal `json:"shipping"`
	Total        decimal.Decimal `json:"total"`
	FreeShipping bool            `json:"free_shipping"`
}

// Calculate prices lines with an optional coupon and a shipping fee.
//
//   - percentage:    round(subtotal × pct / 100), half away from zero
//   - fixed_cart:    the flat amount, capped at the subtotal
//   - fixed_product: the flat amount off every unit, capped at the unit price
//   - free_shipping: no item discount, shipping waived
func Calculate(c *models.Coupon, lines []Line, shipping decimal.Decimal) Breakdown {
	b := Breakdown{Subtotal: decimal.Zero, Discount: decimal.Zero, Shipping: shipping}
	for _, l := range lines {
		b.Subtotal = b.Subtotal.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	if c != nil {
		switch c.DiscountType {
		case models.DiscountPercentage:
			b.Discount = b.Subtotal.Mul(c.DiscountAmount).Div(hundred).Round(0)
		case models.DiscountFixedCart:
			b.Discount = c.DiscountAmount
		case models.DiscountFixedProduct:
			for _, l := range lines {
				perUnit := decimal.Min(c.DiscountAmount, l.Price)
				b.Discount = b.Discount.Add(perUnit.Mul(decimal.NewFromInt(int64(l.Quantity))))
			}
		case models.DiscountFreeShipping:
			b.FreeShipping = true
			b.Shipping = decimal.Zero
		}
	}

	if b.Discount.IsNegative() {
		b.Discount = decimal.Zero
	}
	if b.Discount.GreaterThan(b.Subtotal) {
		b.Discount = b.Subtotal
	}

	b.Total = b.Subtotal.Sub(b.Discount).Add(b.Shipping)
	return b
}
