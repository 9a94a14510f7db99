package repository

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
	// ErrCouponUnavailable is returned when a conditional usage increment
	// finds the coupon inactive, expired or at its limit.
	ErrCouponUnavailable = errors.New("coupon is no longer available")
	// ErrProductUnavailable is returned when an ordered product is missing or
	// already sold.
	ErrProductUnavailable = errors.New("product is no longer available")
	// ErrStatusChanged is returned when an order is no longer in the status
	// a conditional status update expected.
	ErrStatusChanged = errors.New("order status changed")
	// ErrSpinTooSoon is returned when the subject already spun within the window.
	ErrSpinTooSoon = errors.New("already spun within the window")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) error
}

type CategoryRepository interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id string) error
}

type DropRepository interface {
	GetAll(ctx context.Context) ([]models.Drop, error)
	GetByID(ctx context.Context, id string) (*models.Drop, error)
	Create(ctx context.Context, d *models.Drop) error
	Update(ctx context.Context, d *models.Drop) error
	Delete(ctx context.Context, id string) error
}

// CouponRepository stores coupons. Codes are unique case-insensitively.
type CouponRepository interface {
	GetAll(ctx context.Context) ([]models.Coupon, error)
	GetByID(ctx context.Context, id string) (*models.Coupon, error)
	Create(ctx context.Context, c *models.Coupon) error
	Update(ctx context.Context, c *models.Coupon) error
	Delete(ctx context.Context, id string) error
}

// OrderRepository stores orders.
//
// PlaceOrder is all-or-nothing: it inserts the header and the line items,
// marks the ordered products sold, and, when the order carries a coupon,
// increments its usage only if the coupon is still redeemable at
// order.CreatedAt. A won coupon of the ordering user is marked used.
//
// UpdateStatus moves an order from one status to another only while it is
// still in from, otherwise ErrStatusChanged. Cancelling an order puts its
// products back on sale in the same step.
type OrderRepository interface {
	PlaceOrder(ctx context.Context, order *models.Order) error
	GetAll(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error
}

// SpinRepository records spins.
//
// RecordSpin claims the spin slot of history.Subject and stores the history
// and the optional grant in one step. It fails with ErrSpinTooSoon when the
// subject's last spin is within window of history.CreatedAt.
type SpinRepository interface {
	RecordSpin(ctx context.Context, history models.SpinHistory, grant *models.UserCoupon, window time.Duration) error
	LastSpin(ctx context.Context, subject string) (time.Time, bool, error)
	GetUserCoupons(ctx context.Context, userID string) ([]models.UserCoupon, error)
}

// ProfileRepository stores accounts. Emails are unique case-insensitively.
type ProfileRepository interface {
	GetAll(ctx context.Context) ([]models.Profile, error)
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	Create(ctx context.Context, p *models.Profile) error
	SetAdmin(ctx context.Context, id string, isAdmin bool) error
}

// CartRepository stores serialized carts per session.
type CartRepository interface {
	LoadCart(ctx context.Context, sessionID string) ([]byte, error)
	SaveCart(ctx context.Context, sessionID string, data []byte) error
}

// Repositories groups the stores of one storage driver.
type Repositories struct {
	Products   ProductRepository
	Categories CategoryRepository
	Drops      DropRepository
	Coupons    CouponRepository
	Orders     OrderRepository
	Spins      SpinRepository
	Profiles   ProfileRepository
	Carts      CartRepository
}
