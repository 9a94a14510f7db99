package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type ShippingMethod string

const (
	ShippingCourier     ShippingMethod = "courier"
	ShippingPickupPoint ShippingMethod = "pickup_point"
)

// ShippingAddress is embedded in the order header. LockerID is set only for
// the pickup point method.
type ShippingAddress struct {
	Method     ShippingMethod `json:"method"`
	Street     string         `json:"street,omitempty"`
	City       string         `json:"city,omitempty"`
	PostalCode string         `json:"postal_code,omitempty"`
	Country    string         `json:"country,omitempty"`
	LockerID   string         `json:"locker_id,omitempty"`
	Notes      string         `json:"notes,omitempty"`
}

// Order represents a placed order
type Order struct {
	ID              string          `json:"id"`
	UserID          *string         `json:"user_id,omitempty"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerPhone   string          `json:"customer_phone"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	ShippingFee     decimal.Decimal `json:"shipping_fee"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CouponID        *string         `json:"-"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []OrderItem     `json:"items"`
}

// OrderItem snapshots the price at purchase time, not the live product price.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderFilter narrows an order listing.
type OrderFilter struct {
	Status OrderStatus
	UserID string
}
