package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/vintage-drops/internal/coupon"
	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
)

type staticCounter int

func (c staticCounter) Count() int { return int(c) }

func TestAnalyticsService_Summary(t *testing.T) {
	repos := repository.NewInMemory(true, testNow)
	ctx := context.Background()

	placeTestOrder(t, repos.Orders, "o1", "1", 189, nil)
	placeTestOrder(t, repos.Orders, "o2", "2", 449, nil)
	placeTestOrder(t, repos.Orders, "o3", "3", 229, nil)
	if err := repos.Orders.UpdateStatus(ctx, "o2", models.OrderStatusPending, models.OrderStatusCancelled); err != nil {
		t.Fatalf("UpdateStatus() unexpected error: %v", err)
	}

	evaluator := coupon.NewEvaluator(repos.Coupons)
	svc := NewAnalyticsService(repos.Orders, evaluator, staticCounter(2))

	sum, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() unexpected error: %v", err)
	}

	if !sum.Revenue.Equal(decimal.NewFromInt(418)) {
		t.Errorf("revenue = %s, want 418", sum.Revenue)
	}
	if sum.Orders != 3 {
		t.Errorf("orders = %d, want 3", sum.Orders)
	}
	if sum.OrdersByStatus[models.OrderStatusPending] != 2 || sum.OrdersByStatus[models.OrderStatusCancelled] != 1 {
		t.Errorf("orders by status = %v", sum.OrdersByStatus)
	}
	if !sum.AverageOrderValue.Equal(decimal.NewFromInt(209)) {
		t.Errorf("average order value = %s, want 209", sum.AverageOrderValue)
	}
	if len(sum.TopProducts) != 2 || sum.TopProducts[0].ProductID != "3" {
		t.Errorf("top products = %+v, want product 3 first and no cancelled items", sum.TopProducts)
	}
	if sum.Coupons.Total != 6 {
		t.Errorf("coupon total = %d, want 6", sum.Coupons.Total)
	}
	if sum.OnlineAdmins != 2 {
		t.Errorf("online admins = %d, want 2", sum.OnlineAdmins)
	}
}

func TestAnalyticsService_NoOrders(t *testing.T) {
	repos := repository.NewInMemory(false, testNow)
	svc := NewAnalyticsService(repos.Orders, nil, nil)

	sum, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary() unexpected error: %v", err)
	}
	if !sum.Revenue.IsZero() || !sum.AverageOrderValue.IsZero() || len(sum.TopProducts) != 0 {
		t.Errorf("empty summary = %+v", sum)
	}
}
