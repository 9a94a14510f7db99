package repository

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
)

// memoryDB is the shared state of the in-memory repositories. A single lock
// guards every table so multi-table writes such as PlaceOrder are atomic.
type memoryDB struct {
	mu          sync.RWMutex
	products    map[string]models.Product
	categories  map[string]models.Category
	drops       map[string]models.Drop
	coupons     map[string]models.Coupon
	orders      map[string]models.Order
	lastSpin    map[string]time.Time
	spins       []models.SpinHistory
	userCoupons []models.UserCoupon
	profiles    map[string]models.Profile
	carts       map[string][]byte
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		products:   make(map[string]models.Product),
		categories: make(map[string]models.Category),
		drops:      make(map[string]models.Drop),
		coupons:    make(map[string]models.Coupon),
		orders:     make(map[string]models.Order),
		lastSpin:   make(map[string]time.Time),
		profiles:   make(map[string]models.Profile),
		carts:      make(map[string][]byte),
	}
}

// NewInMemory creates repositories backed by process memory. When seed is
// true the catalog is populated with demo data relative to now.
func NewInMemory(seed bool, now time.Time) *Repositories {
	db := newMemoryDB()
	if seed {
		seedDemoData(db, now)
	}

	return &Repositories{
		Products:   &InMemoryProductRepository{db: db},
		Categories: &InMemoryCategoryRepository{db: db},
		Drops:      &InMemoryDropRepository{db: db},
		Coupons:    &InMemoryCouponRepository{db: db},
		Orders:     &InMemoryOrderRepository{db: db},
		Spins:      &InMemorySpinRepository{db: db},
		Profiles:   &InMemoryProfileRepository{db: db},
		Carts:      &InMemoryCartRepository{db: db},
	}
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func seedDemoData(db *memoryDB, now time.Time) {
	categories := []models.Category{
		{ID: "women", Name: "Women", Slug: "women", AssignedGender: "women", SortOrder: 1},
		{ID: "women-jackets", Name: "Jackets", Slug: "women-jackets", ParentID: strPtr("women"), SortOrder: 1},
		{ID: "women-dresses", Name: "Dresses", Slug: "women-dresses", ParentID: strPtr("women"), SortOrder: 2},
		{ID: "men", Name: "Men", Slug: "men", AssignedGender: "men", SortOrder: 2},
		{ID: "men-jackets", Name: "Jackets", Slug: "men-jackets", ParentID: strPtr("men"), SortOrder: 1},
		{ID: "men-denim", Name: "Denim", Slug: "men-denim", ParentID: strPtr("men"), SortOrder: 2},
		{ID: "accessories", Name: "Accessories", Slug: "accessories", AssignedGender: "unisex", SortOrder: 3},
	}
	for _, c := range categories {
		db.categories[c.ID] = c
	}

	drops := []models.Drop{
		{ID: "autumn", Name: "Autumn Drop", StartsAt: now.Add(-24 * time.Hour), EndsAt: now.Add(7 * 24 * time.Hour), IsActive: true},
		{ID: "winter", Name: "Winter Drop", StartsAt: now.Add(30 * 24 * time.Hour), EndsAt: now.Add(37 * 24 * time.Hour), IsActive: true},
	}
	for _, d := range drops {
		db.drops[d.ID] = d
	}

	products := []models.Product{
		{ID: "1", Name: "Levi's 501 Vintage Jeans", Price: decimal.NewFromInt(189), Size: "W32 L32", Brand: "Levi's", Condition: "very good", CategoryID: strPtr("men-denim")},
		{ID: "2", Name: "Barbour Waxed Jacket", Price: decimal.NewFromInt(449), Size: "L", Brand: "Barbour", Condition: "good", CategoryID: strPtr("men-jackets")},
		{ID: "3", Name: "Silk Midi Dress", Price: decimal.NewFromInt(229), Size: "S", Condition: "excellent", CategoryID: strPtr("women-dresses")},
		{ID: "4", Name: "Suede Trucker Jacket", Price: decimal.NewFromInt(359), Size: "M", Condition: "good", CategoryID: strPtr("women-jackets")},
		{ID: "5", Name: "Lambswool Scarf", Price: decimal.NewFromInt(59), Condition: "very good", CategoryID: strPtr("accessories")},
		{ID: "6", Name: "Carhartt Detroit Jacket", Price: decimal.NewFromInt(399), Size: "XL", Brand: "Carhartt", Condition: "worn", CategoryID: strPtr("men-jackets"), IsSold: true},
	}
	for i, p := range products {
		p.DropID = strPtr("autumn")
		p.Images = []string{}
		p.CreatedAt = now.Add(-time.Duration(len(products)-i) * time.Minute)
		db.products[p.ID] = p
	}

	expired := now.Add(-24 * time.Hour)
	coupons := []models.Coupon{
		{ID: "c-summer10", Code: "SUMMER10", DiscountType: models.DiscountPercentage, DiscountAmount: decimal.NewFromInt(10), IsActive: true},
		{ID: "c-welcome50", Code: "WELCOME50", DiscountType: models.DiscountFixedCart, DiscountAmount: decimal.NewFromInt(50), UsageLimit: intPtr(100), IsActive: true},
		{ID: "c-expired20", Code: "EXPIRED20", DiscountType: models.DiscountPercentage, DiscountAmount: decimal.NewFromInt(20), ExpiresAt: &expired, IsActive: true},
		{ID: "c-spin5", Code: "SPIN5", DiscountType: models.DiscountPercentage, DiscountAmount: decimal.NewFromInt(5), IsActive: true, IsSpinPrize: true, SpinProbability: 50, SpinColor: "#F4A261", SpinLabel: "5% off"},
		{ID: "c-spin15", Code: "SPIN15", DiscountType: models.DiscountPercentage, DiscountAmount: decimal.NewFromInt(15), IsActive: true, IsSpinPrize: true, SpinProbability: 30, SpinColor: "#2A9D8F", SpinLabel: "15% off"},
		{ID: "c-spinship", Code: "SPINSHIP", DiscountType: models.DiscountFreeShipping, DiscountAmount: decimal.Zero, IsActive: true, IsSpinPrize: true, SpinProbability: 20, SpinColor: "#E76F51", SpinLabel: "Free shipping"},
	}
	for i, c := range coupons {
		c.CreatedAt = now.Add(-time.Duration(len(coupons)-i) * time.Minute)
		db.coupons[c.ID] = c
	}
}
