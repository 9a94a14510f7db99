package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
)

var testNow = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

func TestInMemoryProductRepository_GetAll(t *testing.T) {
	repos := NewInMemory(true, testNow)

	products, err := repos.Products.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll() unexpected error: %v", err)
	}

	if len(products) != 6 {
		t.Fatalf("GetAll() returned %d products, want 6", len(products))
	}

	for i := 1; i < len(products); i++ {
		if products[i].CreatedAt.After(products[i-1].CreatedAt) {
			t.Errorf("products not sorted newest first at index %d", i)
		}
	}
}

func TestInMemoryProductRepository_GetByID(t *testing.T) {
	repos := NewInMemory(true, testNow)

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "existing product", id: "1"},
		{name: "missing product", id: "99", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product, err := repos.Products.GetByID(context.Background(), tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("GetByID() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && product.ID != tt.id {
				t.Errorf("GetByID() id = %s, want %s", product.ID, tt.id)
			}
		})
	}
}

func TestInMemoryProductRepository_ReturnsCopies(t *testing.T) {
	repos := NewInMemory(true, testNow)
	ctx := context.Background()

	p, _ := repos.Products.GetByID(ctx, "1")
	p.Name = "changed"
	p.Images = append(p.Images, "x.jpg")

	again, _ := repos.Products.GetByID(ctx, "1")
	if again.Name == "changed" || len(again.Images) != 0 {
		t.Error("mutating a returned product leaked into the store")
	}
}

func TestInMemoryCategoryRepository_DeleteDetachesChildren(t *testing.T) {
	repos := NewInMemory(true, testNow)
	ctx := context.Background()

	if err := repos.Categories.Delete(ctx, "men"); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}

	child, err := repos.Categories.GetByID(ctx, "men-denim")
	if err != nil {
		t.Fatalf("GetByID() unexpected error: %v", err)
	}
	if child.ParentID != nil {
		t.Errorf("child parent = %v, want nil", *child.ParentID)
	}

	if err := repos.Categories.Delete(ctx, "men"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestInMemoryCouponRepository_CodeUniqueness(t *testing.T) {
	repos := NewInMemory(true, testNow)
	ctx := context.Background()

	dup := &models.Coupon{ID: "c-new", Code: "summer10", DiscountType: models.DiscountPercentage}
	if err := repos.Coupons.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("Create() duplicate code error = %v, want ErrConflict", err)
	}

	existing, _ := repos.Coupons.GetByID(ctx, "c-welcome50")
	existing.Code = "Summer10"
	if err := repos.Coupons.Update(ctx, existing); !errors.Is(err, ErrConflict) {
		t.Errorf("Update() to taken code error = %v, want ErrConflict", err)
	}

	summer, _ := repos.Coupons.GetByID(ctx, "c-summer10")
	summer.DiscountAmount = decimal.NewFromInt(12)
	if err := repos.Coupons.Update(ctx, summer); err != nil {
		t.Errorf("Update() keeping own code unexpected error: %v", err)
	}
}

func newOrder(id string, couponID *string, userID *string, productIDs ...string) *models.Order {
	o := &models.Order{
		ID:        id,
		UserID:    userID,
		CouponID:  couponID,
		Status:    models.OrderStatusPending,
		CreatedAt: testNow,
	}
	for _, pid := range productIDs {
		o.Items = append(o.Items, models.OrderItem{ProductID: pid, Quantity: 1, Price: decimal.NewFromInt(10)})
	}
	return o
}

func TestInMemoryOrderRepository_PlaceOrder(t *testing.T) {
	tests := []struct {
		name     string
		order    *models.Order
		wantErr  error
		wantSold bool
	}{
		{name: "plain order", order: newOrder("o1", nil, nil, "1", "2"), wantSold: true},
		{name: "with valid coupon", order: newOrder("o1", strPtr("c-welcome50"), nil, "1"), wantSold: true},
		{name: "already sold product", order: newOrder("o1", nil, nil, "1", "6"), wantErr: ErrProductUnavailable},
		{name: "unknown product", order: newOrder("o1", nil, nil, "404"), wantErr: ErrProductUnavailable},
		{name: "duplicate product", order: newOrder("o1", nil, nil, "1", "1"), wantErr: ErrProductUnavailable},
		{name: "expired coupon", order: newOrder("o1", strPtr("c-expired20"), nil, "1"), wantErr: ErrCouponUnavailable},
		{name: "unknown coupon", order: newOrder("o1", strPtr("c-nope"), nil, "1"), wantErr: ErrCouponUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := NewInMemory(true, testNow)
			ctx := context.Background()

			err := repos.Orders.PlaceOrder(ctx, tt.order)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("PlaceOrder() error = %v, want %v", err, tt.wantErr)
			}

			p, _ := repos.Products.GetByID(ctx, "1")
			if p.IsSold != tt.wantSold {
				t.Errorf("product 1 sold = %v, want %v", p.IsSold, tt.wantSold)
			}

			_, getErr := repos.Orders.GetByID(ctx, "o1")
			if tt.wantErr != nil && !errors.Is(getErr, ErrNotFound) {
				t.Error("failed PlaceOrder() stored an order")
			}
		})
	}
}

func TestInMemoryOrderRepository_CouponLimitUnderContention(t *testing.T) {
	repos := NewInMemory(false, testNow)
	ctx := context.Background()

	limit := 3
	_ = repos.Coupons.Create(ctx, &models.Coupon{
		ID: "c-limited", Code: "LIMITED", DiscountType: models.DiscountFixedCart,
		DiscountAmount: decimal.NewFromInt(5), UsageLimit: &limit, IsActive: true,
	})

	const attempts = 20
	for i := 0; i < attempts; i++ {
		_ = repos.Products.Create(ctx, &models.Product{ID: fmt.Sprintf("p%d", i), Price: decimal.NewFromInt(10)})
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	placed := 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order := newOrder(fmt.Sprintf("o%d", i), strPtr("c-limited"), nil, fmt.Sprintf("p%d", i))
			if err := repos.Orders.PlaceOrder(ctx, order); err == nil {
				mu.Lock()
				placed++
				mu.Unlock()
			} else if !errors.Is(err, ErrCouponUnavailable) {
				t.Errorf("PlaceOrder() unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if placed != limit {
		t.Errorf("placed %d orders, want %d", placed, limit)
	}
	c, _ := repos.Coupons.GetByID(ctx, "c-limited")
	if c.UsageCount != limit {
		t.Errorf("usage count = %d, want %d", c.UsageCount, limit)
	}
}

func TestInMemoryOrderRepository_MarksWonCouponUsed(t *testing.T) {
	repos := NewInMemory(true, testNow)
	ctx := context.Background()

	grant := &models.UserCoupon{ID: "uc1", UserID: "u1", CouponID: "c-spin5", Code: "SPIN5", CreatedAt: testNow}
	history := models.SpinHistory{ID: "s1", Subject: "user:u1", UserID: strPtr("u1"), CouponID: "c-spin5", CreatedAt: testNow}
	if err := repos.Spins.RecordSpin(ctx, history, grant, 24*time.Hour); err != nil {
		t.Fatalf("RecordSpin() unexpected error: %v", err)
	}

	if err := repos.Orders.PlaceOrder(ctx, newOrder("o1", strPtr("c-spin5"), strPtr("u1"), "1")); err != nil {
		t.Fatalf("PlaceOrder() unexpected error: %v", err)
	}

	coupons, _ := repos.Spins.GetUserCoupons(ctx, "u1")
	if len(coupons) != 1 || !coupons[0].IsUsed {
		t.Errorf("user coupons = %+v, want one used coupon", coupons)
	}
}

func TestInMemoryOrderRepository_GetAllFilters(t *testing.T) {
	repos := NewInMemory(true, testNow)
	ctx := context.Background()

	first := newOrder("o1", nil, strPtr("u1"), "1")
	second := newOrder("o2", nil, nil, "2")
	second.CreatedAt = testNow.Add(time.Minute)
	_ = repos.Orders.PlaceOrder(ctx, first)
	_ = repos.Orders.PlaceOrder(ctx, second)
	_ = repos.Orders.UpdateStatus(ctx, "o2", models.OrderStatusPending, models.OrderStatusShipped)

	all, _ := repos.Orders.GetAll(ctx, models.OrderFilter{})
	if len(all) != 2 || all[0].ID != "o2" {
		t.Errorf("GetAll() = %d orders, first %q; want 2 newest first", len(all), all[0].ID)
	}

	shipped, _ := repos.Orders.GetAll(ctx, models.OrderFilter{Status: models.OrderStatusShipped})
	if len(shipped) != 1 || shipped[0].ID != "o2" {
		t.Errorf("status filter returned %+v", shipped)
	}

	mine, _ := repos.Orders.GetAll(ctx, models.OrderFilter{UserID: "u1"})
	if len(mine) != 1 || mine[0].ID != "o1" {
		t.Errorf("user filter returned %+v", mine)
	}

	if err := repos.Orders.UpdateStatus(ctx, "missing", models.OrderStatusPending, models.OrderStatusShipped); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateStatus() error = %v, want ErrNotFound", err)
	}
}

func TestInMemoryOrderRepository_UpdateStatusIsConditional(t *testing.T) {
	repos := NewInMemory(true, testNow)
	ctx := context.Background()
	if err := repos.Orders.PlaceOrder(ctx, newOrder("o1", nil, nil, "1", "2")); err != nil {
		t.Fatalf("PlaceOrder() unexpected error: %v", err)
	}

	if err := repos.Orders.UpdateStatus(ctx, "o1", models.OrderStatusConfirmed, models.OrderStatusShipped); !errors.Is(err, ErrStatusChanged) {
		t.Errorf("UpdateStatus() from a stale status error = %v, want ErrStatusChanged", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	won := 0
	for _, to := range []models.OrderStatus{models.OrderStatusConfirmed, models.OrderStatusCancelled, models.OrderStatusConfirmed, models.OrderStatusCancelled} {
		wg.Add(1)
		go func(to models.OrderStatus) {
			defer wg.Done()
			if err := repos.Orders.UpdateStatus(ctx, "o1", models.OrderStatusPending, to); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}(to)
	}
	wg.Wait()

	if won != 1 {
		t.Errorf("%d concurrent updates from pending succeeded, want 1", won)
	}
}

func TestInMemoryOrderRepository_CancelReleasesProducts(t *testing.T) {
	repos := NewInMemory(true, testNow)
	ctx := context.Background()
	if err := repos.Orders.PlaceOrder(ctx, newOrder("o1", nil, nil, "1", "2")); err != nil {
		t.Fatalf("PlaceOrder() unexpected error: %v", err)
	}

	if err := repos.Orders.UpdateStatus(ctx, "o1", models.OrderStatusPending, models.OrderStatusCancelled); err != nil {
		t.Fatalf("UpdateStatus() unexpected error: %v", err)
	}

	for _, id := range []string{"1", "2"} {
		p, _ := repos.Products.GetByID(ctx, id)
		if p.IsSold {
			t.Errorf("product %s still sold after cancellation", id)
		}
	}
	if err := repos.Orders.PlaceOrder(ctx, newOrder("o2", nil, nil, "1")); err != nil {
		t.Errorf("PlaceOrder() of a released product unexpected error: %v", err)
	}
}

func TestInMemorySpinRepository_OneClaimPerWindow(t *testing.T) {
	repos := NewInMemory(false, testNow)
	ctx := context.Background()
	window := 24 * time.Hour

	var wg sync.WaitGroup
	var mu sync.Mutex
	won := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h := models.SpinHistory{ID: fmt.Sprintf("s%d", i), Subject: "session:abc", CouponID: "c", CreatedAt: testNow}
			if err := repos.Spins.RecordSpin(ctx, h, nil, window); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if won != 1 {
		t.Fatalf("%d concurrent spins succeeded, want 1", won)
	}

	later := models.SpinHistory{ID: "late", Subject: "session:abc", CouponID: "c", CreatedAt: testNow.Add(window - time.Second)}
	if err := repos.Spins.RecordSpin(ctx, later, nil, window); !errors.Is(err, ErrSpinTooSoon) {
		t.Errorf("RecordSpin() inside window error = %v, want ErrSpinTooSoon", err)
	}

	later.CreatedAt = testNow.Add(window)
	if err := repos.Spins.RecordSpin(ctx, later, nil, window); err != nil {
		t.Errorf("RecordSpin() after window unexpected error: %v", err)
	}

	last, ok, _ := repos.Spins.LastSpin(ctx, "session:abc")
	if !ok || !last.Equal(testNow.Add(window)) {
		t.Errorf("LastSpin() = %v, %v", last, ok)
	}
}

func TestInMemoryProfileRepository_EmailUniqueness(t *testing.T) {
	repos := NewInMemory(false, testNow)
	ctx := context.Background()

	if err := repos.Profiles.Create(ctx, &models.Profile{ID: "u1", Email: "Ada@example.com"}); err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if err := repos.Profiles.Create(ctx, &models.Profile{ID: "u2", Email: "ada@EXAMPLE.com"}); !errors.Is(err, ErrConflict) {
		t.Errorf("Create() duplicate email error = %v, want ErrConflict", err)
	}

	p, err := repos.Profiles.GetByEmail(ctx, "ADA@example.com")
	if err != nil || p.ID != "u1" {
		t.Fatalf("GetByEmail() = %v, %v", p, err)
	}

	if err := repos.Profiles.SetAdmin(ctx, "u1", true); err != nil {
		t.Fatalf("SetAdmin() unexpected error: %v", err)
	}
	p, _ = repos.Profiles.GetByID(ctx, "u1")
	if !p.IsAdmin {
		t.Error("expected profile to be admin")
	}
}

func TestInMemoryCartRepository_RoundTrip(t *testing.T) {
	repos := NewInMemory(false, testNow)
	ctx := context.Background()

	data, err := repos.Carts.LoadCart(ctx, "s1")
	if err != nil || data != nil {
		t.Fatalf("LoadCart() of empty session = %q, %v", data, err)
	}

	_ = repos.Carts.SaveCart(ctx, "s1", []byte(`[{"id":"1"}]`))
	data, _ = repos.Carts.LoadCart(ctx, "s1")
	if string(data) != `[{"id":"1"}]` {
		t.Errorf("LoadCart() = %s", data)
	}
}
