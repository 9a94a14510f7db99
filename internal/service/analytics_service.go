package service

import (
	"context"
	"sort"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/vintage-drops/internal/coupon"
	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
)

const topProductsLimit = 5

// CouponStatter reports coupon statistics.
type CouponStatter interface {
	GetStats(ctx context.Context) (coupon.Stats, error)
}

// SubscriberCounter reports how many admins watch the live order feed.
type SubscriberCounter interface {
	Count() int
}

// ProductSales is one entry of the best-seller list.
type ProductSales struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// Summary is the admin dashboard payload.
type Summary struct {
	Revenue           decimal.Decimal            `json:"revenue"`
	Orders            int                        `json:"orders"`
	OrdersByStatus    map[models.OrderStatus]int `json:"orders_by_status"`
	AverageOrderValue decimal.Decimal            `json:"average_order_value"`
	TopProducts       []ProductSales             `json:"top_products"`
	Coupons           coupon.Stats               `json:"coupons"`
	OnlineAdmins      int                        `json:"online_admins"`
}

// AnalyticsService aggregates the dashboard figures.
type AnalyticsService struct {
	orders  repository.OrderRepository
	coupons CouponStatter
	live    SubscriberCounter
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(orders repository.OrderRepository, coupons CouponStatter, live SubscriberCounter) *AnalyticsService {
	return &AnalyticsService{orders: orders, coupons: coupons, live: live}
}

// Summary computes the dashboard. Cancelled orders count per status but not
// towards revenue or best sellers.
func (s *AnalyticsService) Summary(ctx context.Context) (*Summary, error) {
	orders, err := s.orders.GetAll(ctx, models.OrderFilter{})
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	sum := &Summary{
		Revenue:           decimal.Zero,
		Orders:            len(orders),
		OrdersByStatus:    make(map[models.OrderStatus]int),
		AverageOrderValue: decimal.Zero,
		TopProducts:       []ProductSales{},
	}

	sales := make(map[string]*ProductSales)
	counted := 0
	for _, o := range orders {
		sum.OrdersByStatus[o.Status]++
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		counted++
		sum.Revenue = sum.Revenue.Add(o.TotalAmount)

		for _, item := range o.Items {
			ps, ok := sales[item.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: item.ProductID, Name: item.Name, Revenue: decimal.Zero}
				sales[item.ProductID] = ps
			}
			ps.Quantity += item.Quantity
			ps.Revenue = ps.Revenue.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	if counted > 0 {
		sum.AverageOrderValue = sum.Revenue.Div(decimal.NewFromInt(int64(counted))).Round(2)
	}

	for _, ps := range sales {
		sum.TopProducts = append(sum.TopProducts, *ps)
	}
	sort.Slice(sum.TopProducts, func(i, j int) bool {
		a, b := sum.TopProducts[i], sum.TopProducts[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		if !a.Revenue.Equal(b.Revenue) {
			return a.Revenue.GreaterThan(b.Revenue)
		}
		return a.ProductID < b.ProductID
	})
	if len(sum.TopProducts) > topProductsLimit {
		sum.TopProducts = sum.TopProducts[:topProductsLimit]
	}

	if s.coupons != nil {
		stats, err := s.coupons.GetStats(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "coupon stats")
		}
		sum.Coupons = stats
	}
	if s.live != nil {
		sum.OnlineAdmins = s.live.Count()
	}
	return sum, nil
}
