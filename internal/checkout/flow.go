// Package checkout implements the two-step checkout wizard: shipping info,
// then payment review and order submission.
package checkout

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/vintage-drops/internal/cart"
	"github.com/Lixing-Zhang/vintage-drops/internal/coupon"
	"github.com/Lixing-Zhang/vintage-drops/internal/models"
)

type State string

const (
	StateShippingInfo  State = "shipping_info"
	StatePaymentReview State = "payment_review"
	StateSubmitting    State = "submitting"
	StateSuccess       State = "success"
	StateFailure       State = "failure"
)

var (
	ErrInvalidTransition = errors.New("action not allowed in the current checkout step")
	ErrEmptyCart         = errors.New("cart is empty")
)

// CartStore is the session cart the flow checks out. *cart.Store satisfies it.
type CartStore interface {
	Items() []cart.Item
	ClearCart(ctx context.Context) error
}

type CouponEvaluator interface {
	Apply(ctx context.Context, code string) (*coupon.Application, error)
	Revalidate(ctx context.Context, id string) (*models.Coupon, error)
}

// OrderPlacer persists an order, its items and the coupon usage as one
// all-or-nothing step.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, order *models.Order) error
}

// Notifier is told about every placed order.
type Notifier interface {
	OrderPlaced(order models.Order)
}

// Fees are the flat shipping fees per method.
type Fees map[models.ShippingMethod]decimal.Decimal

// Deps are shared by every flow of a Manager.
type Deps struct {
	Coupons  CouponEvaluator
	Orders   OrderPlacer
	Notifier Notifier
	Fees     Fees
	Logger   *slog.Logger
	Now      func() time.Time
}

// Flow is the checkout of one session.
type Flow struct {
	deps *Deps

	mu      sync.Mutex
	cart    CartStore
	userID  string
	state   State
	info    ShippingInfo
	applied *coupon.Application
	order   *models.Order
	err     error
	history []State
}

func newFlow(deps *Deps, c CartStore, userID string) *Flow {
	return &Flow{
		deps:    deps,
		cart:    c,
		userID:  userID,
		state:   StateShippingInfo,
		history: []State{StateShippingInfo},
	}
}

// attach points the flow at the session's current cart and caller.
func (f *Flow) attach(c CartStore, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cart = c
	f.userID = userID
}

// View is a read-only snapshot of a flow.
type View struct {
	State    State               `json:"state"`
	Shipping *ShippingInfo       `json:"shipping,omitempty"`
	Coupon   *coupon.Application `json:"coupon,omitempty"`
	Quote    coupon.Breakdown    `json:"quote"`
	Order    *models.Order       `json:"order,omitempty"`
	Error    string              `json:"error,omitempty"`
	History  []State             `json:"history"`
}

// State returns the current step.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// View returns a snapshot of the flow.
func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View{
		State:   f.state,
		Coupon:  f.applied,
		Quote:   f.quoteLocked(),
		Order:   f.order,
		History: append([]State(nil), f.history...),
	}
	if f.state != StateShippingInfo || f.info.Name != "" {
		info := f.info
		v.Shipping = &info
	}
	if f.err != nil {
		v.Error = f.err.Error()
	}
	return v
}

// transition moves to next. Callers hold f.mu.
func (f *Flow) transition(next State) {
	f.state = next
	f.history = append(f.history, next)
}

// SubmitShipping validates info and advances to payment review. On
// validation failure the flow stays on the shipping step and the returned
// error is a ValidationErrors.
func (f *Flow) SubmitShipping(info ShippingInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateShippingInfo {
		return ErrInvalidTransition
	}
	if len(f.cart.Items()) == 0 {
		return ErrEmptyCart
	}
	if errs := Validate(info); errs != nil {
		return errs
	}

	f.info = normalize(info)
	f.transition(StatePaymentReview)
	return nil
}

// Back returns from payment review, or from a failed submission, to the
// shipping step.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StatePaymentReview && f.state != StateFailure {
		return ErrInvalidTransition
	}
	f.err = nil
	f.transition(StateShippingInfo)
	return nil
}

// Retry returns from a failed submission to payment review.
func (f *Flow) Retry() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateFailure {
		return ErrInvalidTransition
	}
	f.err = nil
	f.transition(StatePaymentReview)
	return nil
}

// ApplyCoupon applies code to the order under review. A rejected code
// clears any previously applied coupon.
func (f *Flow) ApplyCoupon(ctx context.Context, code string) (*coupon.Application, error) {
	f.mu.Lock()
	if f.state != StatePaymentReview {
		f.mu.Unlock()
		return nil, ErrInvalidTransition
	}
	f.mu.Unlock()

	app, err := f.deps.Coupons.Apply(ctx, code)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StatePaymentReview {
		return nil, ErrInvalidTransition
	}
	if err != nil {
		f.applied = nil
		return nil, err
	}
	f.applied = app
	return app, nil
}

// RemoveCoupon drops the applied coupon.
func (f *Flow) RemoveCoupon() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StatePaymentReview {
		return ErrInvalidTransition
	}
	f.applied = nil
	return nil
}

// Quote prices the cart with the applied coupon and the shipping fee of the
// chosen method.
func (f *Flow) Quote() coupon.Breakdown {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quoteLocked()
}

func (f *Flow) quoteLocked() coupon.Breakdown {
	var c *models.Coupon
	if f.applied != nil {
		c = &f.applied.Coupon
	}
	return coupon.Calculate(c, lines(f.cart.Items()), f.fee())
}

func (f *Flow) fee() decimal.Decimal {
	method := f.info.Address.Method
	if method == "" {
		method = models.ShippingCourier
	}
	if fee, ok := f.deps.Fees[method]; ok {
		return fee
	}
	return decimal.Zero
}

func lines(items []cart.Item) []coupon.Line {
	out := make([]coupon.Line, len(items))
	for i, it := range items {
		out[i] = coupon.Line{Price: it.Price, Quantity: it.Quantity}
	}
	return out
}

// Submit places the order. The applied coupon is re-validated first; the
// order header, its items and the coupon usage are then stored in one
// all-or-nothing call. On success the cart is cleared. Any failure moves
// the flow to StateFailure with the cart untouched, from where the visitor
// may Retry.
func (f *Flow) Submit(ctx context.Context) (*models.Order, error) {
	f.mu.Lock()
	if f.state != StatePaymentReview && f.state != StateFailure {
		f.mu.Unlock()
		return nil, ErrInvalidTransition
	}
	items := f.cart.Items()
	if len(items) == 0 {
		f.mu.Unlock()
		return nil, ErrEmptyCart
	}
	f.err = nil
	f.transition(StateSubmitting)
	info, applied, userID := f.info, f.applied, f.userID
	fee := f.fee()
	f.mu.Unlock()

	order, err := f.place(ctx, items, info, applied, userID, fee)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.err = err
		f.transition(StateFailure)
		return nil, err
	}
	f.order = order
	f.applied = nil
	f.transition(StateSuccess)
	return order, nil
}

func (f *Flow) place(ctx context.Context, items []cart.Item, info ShippingInfo, applied *coupon.Application, userID string, fee decimal.Decimal) (*models.Order, error) {
	var c *models.Coupon
	if applied != nil {
		fresh, err := f.deps.Coupons.Revalidate(ctx, applied.Coupon.ID)
		if err != nil {
			return nil, err
		}
		c = fresh
	}

	now := time.Now
	if f.deps.Now != nil {
		now = f.deps.Now
	}

	quote := coupon.Calculate(c, lines(items), fee)
	order := &models.Order{
		ID:              uuid.NewString(),
		CustomerName:    info.Name,
		CustomerEmail:   info.Email,
		CustomerPhone:   info.Phone,
		ShippingAddress: info.Address,
		Subtotal:        quote.Subtotal,
		DiscountAmount:  quote.Discount,
		ShippingFee:     quote.Shipping,
		TotalAmount:     quote.Total,
		Status:          models.OrderStatusPending,
		CreatedAt:       now().UTC(),
		Items:           make([]models.OrderItem, 0, len(items)),
	}
	if userID != "" {
		order.UserID = &userID
	}
	if c != nil {
		id := c.ID
		order.CouponID = &id
		order.CouponCode = c.Code
	}
	for _, it := range items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: it.ID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	if err := f.deps.Orders.PlaceOrder(ctx, order); err != nil {
		return nil, errors.Wrap(err, "place order")
	}

	// The order is stored; a failure to clear the cart must not report the
	// checkout as failed.
	if err := f.cart.ClearCart(ctx); err != nil && f.deps.Logger != nil {
		f.deps.Logger.Warn("failed to clear cart after order", "order_id", order.ID, "error", err)
	}
	if f.deps.Notifier != nil {
		f.deps.Notifier.OrderPlaced(*order)
	}
	return order, nil
}
