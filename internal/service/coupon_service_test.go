package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
)

type recordingTracker struct {
	codes []string
}

func (r *recordingTracker) Track(code string) { r.codes = append(r.codes, code) }

func TestCouponAdminService_Create(t *testing.T) {
	limit := -1

	tests := []struct {
		name    string
		coupon  models.Coupon
		wantErr error
	}{
		{name: "valid", coupon: models.Coupon{Code: " autumn25 ", DiscountType: models.DiscountPercentage, DiscountAmount: decimal.NewFromInt(25), IsActive: true}},
		{name: "empty code", coupon: models.Coupon{DiscountType: models.DiscountFixedCart, DiscountAmount: decimal.NewFromInt(10)}, wantErr: ErrInvalidCouponData},
		{name: "unknown type", coupon: models.Coupon{Code: "X", DiscountType: "bogo"}, wantErr: ErrInvalidCouponData},
		{name: "percentage over 100", coupon: models.Coupon{Code: "X", DiscountType: models.DiscountPercentage, DiscountAmount: decimal.NewFromInt(120)}, wantErr: ErrInvalidCouponData},
		{name: "negative amount", coupon: models.Coupon{Code: "X", DiscountType: models.DiscountFixedCart, DiscountAmount: decimal.NewFromInt(-5)}, wantErr: ErrInvalidCouponData},
		{name: "negative limit", coupon: models.Coupon{Code: "X", DiscountType: models.DiscountFreeShipping, UsageLimit: &limit}, wantErr: ErrInvalidCouponData},
		{name: "taken code", coupon: models.Coupon{Code: "summer10", DiscountType: models.DiscountPercentage, DiscountAmount: decimal.NewFromInt(5)}, wantErr: repository.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := repository.NewInMemory(true, testNow)
			tracker := &recordingTracker{}
			svc := NewCouponAdminService(repos.Coupons, tracker)
			svc.now = func() time.Time { return testNow }

			c := tt.coupon
			c.UsageCount = 7
			err := svc.Create(context.Background(), &c)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if len(tracker.codes) != 0 {
					t.Errorf("tracked %v after a failed create", tracker.codes)
				}
				return
			}

			if c.Code != "AUTUMN25" {
				t.Errorf("code = %q, want AUTUMN25", c.Code)
			}
			if c.UsageCount != 0 {
				t.Errorf("usage count = %d, want 0", c.UsageCount)
			}
			if len(tracker.codes) != 1 || tracker.codes[0] != "AUTUMN25" {
				t.Errorf("tracked = %v", tracker.codes)
			}
		})
	}
}

func TestCouponAdminService_UpdateKeepsUsage(t *testing.T) {
	repos := repository.NewInMemory(true, testNow)
	svc := NewCouponAdminService(repos.Coupons, &recordingTracker{})
	ctx := context.Background()

	order := &models.Order{
		ID:        "o1",
		CouponID:  strPtr("c-summer10"),
		Status:    models.OrderStatusPending,
		CreatedAt: testNow,
		Items:     []models.OrderItem{{ProductID: "1", Quantity: 1, Price: decimal.NewFromInt(189)}},
	}
	if err := repos.Orders.PlaceOrder(ctx, order); err != nil {
		t.Fatalf("PlaceOrder() unexpected error: %v", err)
	}

	update := models.Coupon{
		ID:             "c-summer10",
		Code:           "summer12",
		DiscountType:   models.DiscountPercentage,
		DiscountAmount: decimal.NewFromInt(12),
		IsActive:       true,
	}
	if err := svc.Update(ctx, &update); err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}

	got, _ := repos.Coupons.GetByID(ctx, "c-summer10")
	if got.Code != "SUMMER12" || !got.DiscountAmount.Equal(decimal.NewFromInt(12)) {
		t.Errorf("updated coupon = %+v", got)
	}
	if got.UsageCount != 1 {
		t.Errorf("usage count = %d, want 1", got.UsageCount)
	}
}

func TestDropAdminService_Validate(t *testing.T) {
	repos := repository.NewInMemory(false, testNow)
	svc := NewDropAdminService(repos.Drops)
	ctx := context.Background()

	bad := models.Drop{Name: "Backwards", StartsAt: testNow, EndsAt: testNow.Add(-time.Hour)}
	if err := svc.Create(ctx, &bad); !errors.Is(err, ErrInvalidDrop) {
		t.Errorf("Create() backwards window error = %v, want ErrInvalidDrop", err)
	}

	good := models.Drop{Name: "Spring", StartsAt: testNow, EndsAt: testNow.Add(48 * time.Hour), IsActive: true}
	if err := svc.Create(ctx, &good); err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	drops, _ := svc.List(ctx)
	if len(drops) != 1 || drops[0].ID != good.ID {
		t.Errorf("List() = %v", drops)
	}
}
