package spin

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/Lixing-Zhang/vintage-drops/internal/coupon"
	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
)

var (
	ErrTooSoon   = repository.ErrSpinTooSoon
	ErrNoSubject = errors.New("spin requires a user or a session")
)

// TooSoonError carries the time the subject may spin again.
type TooSoonError struct {
	NextSpinAt time.Time
}

func (e *TooSoonError) Error() string {
	return fmt.Sprintf("already spun, next spin at %s", e.NextSpinAt.Format(time.RFC3339))
}

func (e *TooSoonError) Unwrap() error { return ErrTooSoon }

// Subject identifies who spins: a signed-in user, or else an anonymous
// browser session.
type Subject struct {
	UserID    string
	SessionID string
}

// Key is the eligibility key of the subject.
func (s Subject) Key() string {
	switch {
	case s.UserID != "":
		return "user:" + s.UserID
	case s.SessionID != "":
		return "session:" + s.SessionID
	}
	return ""
}

// Segment is one slice of the wheel as rendered.
type Segment struct {
	CouponID string `json:"coupon_id"`
	Label    string `json:"label"`
	Color    string `json:"color"`
}

type Eligibility struct {
	CanSpin    bool       `json:"can_spin"`
	NextSpinAt *time.Time `json:"next_spin_at,omitempty"`
}

// Result is the outcome of a spin. Grant is set for signed-in users only;
// anonymous visitors get the code to copy.
type Result struct {
	Segment    Segment            `json:"segment"`
	Index      int                `json:"index"`
	Code       string             `json:"code"`
	Rotation   float64            `json:"rotation"`
	NextSpinAt time.Time          `json:"next_spin_at"`
	Grant      *models.UserCoupon `json:"grant,omitempty"`
}

// Service runs the prize wheel.
type Service struct {
	coupons repository.CouponRepository
	spins   repository.SpinRepository
	window  time.Duration
	now     func() time.Time

	mu  sync.Mutex
	rng Source
}

// NewService creates a new spin service
func NewService(coupons repository.CouponRepository, spins repository.SpinRepository, window time.Duration) *Service {
	if window <= 0 {
		window = Window
	}
	return &Service{
		coupons: coupons,
		spins:   spins,
		window:  window,
		now:     time.Now,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// prizes returns the redeemable spin prizes in wheel order.
func (s *Service) prizes(ctx context.Context) ([]models.Coupon, error) {
	all, err := s.coupons.GetAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list coupons")
	}

	var prizes []models.Coupon
	for _, c := range coupon.ActiveCoupons(all, s.now()) {
		if c.IsSpinPrize {
			prizes = append(prizes, c)
		}
	}
	return prizes, nil
}

// Wheel returns the segments of the wheel.
func (s *Service) Wheel(ctx context.Context) ([]Segment, error) {
	prizes, err := s.prizes(ctx)
	if err != nil {
		return nil, err
	}

	segments := make([]Segment, 0, len(prizes))
	for _, p := range prizes {
		segments = append(segments, segmentOf(p))
	}
	return segments, nil
}

func segmentOf(c models.Coupon) Segment {
	label := c.SpinLabel
	if label == "" {
		label = c.Code
	}
	return Segment{CouponID: c.ID, Label: label, Color: c.SpinColor}
}

// Status reports whether subject may spin now.
func (s *Service) Status(ctx context.Context, subject Subject) (Eligibility, error) {
	key := subject.Key()
	if key == "" {
		return Eligibility{}, ErrNoSubject
	}

	last, ok, err := s.spins.LastSpin(ctx, key)
	if err != nil {
		return Eligibility{}, errors.Wrap(err, "last spin")
	}
	if CanSpin(last, ok, s.now(), s.window) {
		return Eligibility{CanSpin: true}, nil
	}
	next := NextSpinAt(last, s.window)
	return Eligibility{NextSpinAt: &next}, nil
}

// Spin selects a prize and records it. The eligibility check and the record
// are one atomic claim in the store, so concurrent spins of one subject
// yield a single winner.
func (s *Service) Spin(ctx context.Context, subject Subject) (*Result, error) {
	key := subject.Key()
	if key == "" {
		return nil, ErrNoSubject
	}

	prizes, err := s.prizes(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	idx, err := Select(prizes, s.rng)
	jitter := s.rng.Float64()*2 - 1
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	prize := prizes[idx]

	now := s.now()
	history := models.SpinHistory{
		ID:        uuid.NewString(),
		Subject:   key,
		CouponID:  prize.ID,
		CreatedAt: now,
	}

	var grant *models.UserCoupon
	if subject.UserID != "" {
		userID := subject.UserID
		history.UserID = &userID
		grant = &models.UserCoupon{
			ID:        uuid.NewString(),
			UserID:    userID,
			CouponID:  prize.ID,
			Code:      prize.Code,
			CreatedAt: now,
		}
	}

	if err := s.spins.RecordSpin(ctx, history, grant, s.window); err != nil {
		if errors.Is(err, repository.ErrSpinTooSoon) {
			return nil, s.tooSoon(ctx, key, now)
		}
		return nil, errors.Wrap(err, "record spin")
	}

	return &Result{
		Segment:    segmentOf(prize),
		Index:      idx,
		Code:       prize.Code,
		Rotation:   RotationAngle(idx, len(prizes), ExtraTurns, jitter),
		NextSpinAt: NextSpinAt(now, s.window),
		Grant:      grant,
	}, nil
}

func (s *Service) tooSoon(ctx context.Context, key string, now time.Time) error {
	last, ok, err := s.spins.LastSpin(ctx, key)
	if err != nil || !ok {
		return &TooSoonError{NextSpinAt: NextSpinAt(now, s.window)}
	}
	return &TooSoonError{NextSpinAt: NextSpinAt(last, s.window)}
}

// UserCoupons lists the coupons won by userID.
func (s *Service) UserCoupons(ctx context.Context, userID string) ([]models.UserCoupon, error) {
	return s.spins.GetUserCoupons(ctx, userID)
}
