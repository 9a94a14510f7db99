package service

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/vintage-drops/internal/coupon"
	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
)

var ErrInvalidCouponData = errors.New("coupon needs a code, a known discount type and a non-negative amount")

var hundred = decimal.NewFromInt(100)

// CodeTracker learns codes created after the evaluator was built.
type CodeTracker interface {
	Track(code string)
}

// CouponAdminService manages coupons and spin prizes.
type CouponAdminService struct {
	repo    repository.CouponRepository
	tracker CodeTracker
	now     func() time.Time
}

// NewCouponAdminService creates a new coupon admin service
func NewCouponAdminService(repo repository.CouponRepository, tracker CodeTracker) *CouponAdminService {
	return &CouponAdminService{repo: repo, tracker: tracker, now: time.Now}
}

func (s *CouponAdminService) List(ctx context.Context) ([]models.Coupon, error) {
	return s.repo.GetAll(ctx)
}

func (s *CouponAdminService) Create(ctx context.Context, c *models.Coupon) error {
	if err := validateCoupon(c); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.UsageCount = 0
	c.CreatedAt = s.now().UTC()

	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}
	s.tracker.Track(c.Code)
	return nil
}

// Update replaces the coupon's settings. The usage count is owned by order
// placement and is kept.
func (s *CouponAdminService) Update(ctx context.Context, c *models.Coupon) error {
	if err := validateCoupon(c); err != nil {
		return err
	}
	existing, err := s.repo.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	c.UsageCount = existing.UsageCount
	c.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, c); err != nil {
		return err
	}
	s.tracker.Track(c.Code)
	return nil
}

func (s *CouponAdminService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validateCoupon(c *models.Coupon) error {
	c.Code = coupon.NormalizeCode(c.Code)
	if c.Code == "" || !c.DiscountType.Valid() || c.DiscountAmount.IsNegative() {
		return ErrInvalidCouponData
	}
	if c.DiscountType == models.DiscountPercentage && c.DiscountAmount.GreaterThan(hundred) {
		return ErrInvalidCouponData
	}
	if c.UsageLimit != nil && *c.UsageLimit < 0 {
		return ErrInvalidCouponData
	}
	if c.SpinProbability < 0 {
		return ErrInvalidCouponData
	}
	return nil
}
