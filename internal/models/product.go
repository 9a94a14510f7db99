package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a single secondhand piece. Vintage stock is one-off, so a
// product is sold at most once.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Size        string          `json:"size,omitempty"`
	Brand       string          `json:"brand,omitempty"`
	Condition   string          `json:"condition,omitempty"`
	CategoryID  *string         `json:"category_id,omitempty"`
	DropID      *string         `json:"drop_id,omitempty"`
	Images      []string        `json:"images"`
	IsSold      bool            `json:"is_sold"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	CategoryIDs map[string]bool // nil means any category
	DropID      string
	IncludeSold bool
}

// Matches reports whether p passes the filter.
func (f ProductFilter) Matches(p Product) bool {
	if p.IsSold && !f.IncludeSold {
		return false
	}
	if f.DropID != "" && (p.DropID == nil || *p.DropID != f.DropID) {
		return false
	}
	if f.CategoryIDs != nil && (p.CategoryID == nil || !f.CategoryIDs[*p.CategoryID]) {
		return false
	}
	return true
}
