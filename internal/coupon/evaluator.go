package coupon

import (
	"context"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
)

// Repository is the coupon data access the evaluator needs.
type Repository interface {
	GetAll(ctx context.Context) ([]models.Coupon, error)
	GetByID(ctx context.Context, id string) (*models.Coupon, error)
}

// Evaluator validates user supplied codes against stored coupons.
//
// It keeps a bloom filter of every code ever issued so lookups of codes that
// never existed are answered without reading the store. Codes created after
// the last Refresh must be registered with Track.
type Evaluator struct {
	repo Repository
	now  func() time.Time

	mu      sync.RWMutex
	filter  *bloom.BloomFilter
	tracked uint
}

// NewEvaluator creates a new coupon evaluator
func NewEvaluator(repo Repository) *Evaluator {
	return &Evaluator{
		repo: repo,
		now:  time.Now,
	}
}

// Refresh rebuilds the code filter from the repository.
func (e *Evaluator) Refresh(ctx context.Context) error {
	all, err := e.repo.GetAll(ctx)
	if err != nil {
		return errors.Wrap(err, "list coupons")
	}

	// Leave headroom so codes added with Track keep the false positive rate low.
	filter := bloom.NewWithEstimates(uint(len(all))*2+1024, 0.001)
	for _, c := range all {
		filter.AddString(NormalizeCode(c.Code))
	}

	e.mu.Lock()
	e.filter = filter
	e.tracked = uint(len(all))
	e.mu.Unlock()
	return nil
}

// Track registers a newly created code with the filter.
func (e *Evaluator) Track(code string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.filter == nil {
		return
	}
	e.filter.AddString(NormalizeCode(code))
	e.tracked++
}

// mayExist reports false only for codes that were never issued.
func (e *Evaluator) mayExist(code string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.filter == nil {
		return true
	}
	return e.filter.TestString(NormalizeCode(code))
}

// Apply matches code against the currently valid coupons.
func (e *Evaluator) Apply(ctx context.Context, code string) (*Application, error) {
	if NormalizeCode(code) == "" || !e.mayExist(code) {
		return nil, ErrInvalidOrExpired
	}

	all, err := e.repo.GetAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list coupons")
	}
	return ApplyCoupon(code, ActiveCoupons(all, e.now()))
}

// Revalidate re-reads the coupon and checks it is still redeemable. It is
// the commit-time check; the usage increment itself is a conditional update
// in the order store.
func (e *Evaluator) Revalidate(ctx context.Context, id string) (*models.Coupon, error) {
	c, err := e.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCouponExhausted
	}
	if err != nil {
		return nil, errors.Wrap(err, "get coupon")
	}
	if !IsValid(*c, e.now()) {
		return nil, ErrCouponExhausted
	}
	return c, nil
}

// Stats summarizes stored coupons for the back-office.
type Stats struct {
	Total       int  `json:"total"`
	Active      int  `json:"active"`
	SpinPrizes  int  `json:"spin_prizes"`
	Redemptions int  `json:"redemptions"`
	Indexed     uint `json:"indexed_codes"`
}

// GetStats returns statistics about stored coupons
func (e *Evaluator) GetStats(ctx context.Context) (Stats, error) {
	all, err := e.repo.GetAll(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "list coupons")
	}

	now := e.now()
	stats := Stats{Total: len(all)}
	for _, c := range all {
		if IsValid(c, now) {
			stats.Active++
		}
		if c.IsSpinPrize {
			stats.SpinPrizes++
		}
		stats.Redemptions += c.UsageCount
	}

	e.mu.RLock()
	stats.Indexed = e.tracked
	e.mu.RUnlock()

	return stats, nil
}
