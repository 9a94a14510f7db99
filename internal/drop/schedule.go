// Package drop answers whether the storefront is open: items are sold in
// time-boxed drops.
package drop

import (
	"context"
	"sort"
	"time"

	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
)

// Schedule is a set of drops ordered by start time.
type Schedule []models.Drop

// NewSchedule sorts drops by start time.
func NewSchedule(drops []models.Drop) Schedule {
	s := append(Schedule(nil), drops...)
	sort.SliceStable(s, func(i, j int) bool { return s[i].StartsAt.Before(s[j].StartsAt) })
	return s
}

// Current returns the drop open at now. When drops overlap the one that
// started last wins.
func (s Schedule) Current(now time.Time) *models.Drop {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].OpenAt(now) {
			d := s[i]
			return &d
		}
	}
	return nil
}

// Next returns the first active drop that starts after now.
func (s Schedule) Next(now time.Time) *models.Drop {
	for _, d := range s {
		if d.IsActive && d.StartsAt.After(now) {
			return &d
		}
	}
	return nil
}

// Status is the storefront state shown to visitors.
type Status struct {
	Open bool         `json:"open"`
	Drop *models.Drop `json:"drop,omitempty"`
	Next *models.Drop `json:"next,omitempty"`
}

type Lister interface {
	GetAll(ctx context.Context) ([]models.Drop, error)
}

// Service reads the drop schedule from storage.
type Service struct {
	repo Lister
	now  func() time.Time
}

// NewService creates a new drop service
func NewService(repo Lister) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Status returns the open drop, if any, and the next one.
func (s *Service) Status(ctx context.Context) (Status, error) {
	drops, err := s.repo.GetAll(ctx)
	if err != nil {
		return Status{}, errors.Wrap(err, "list drops")
	}

	now := s.now()
	schedule := NewSchedule(drops)
	st := Status{Drop: schedule.Current(now), Next: schedule.Next(now)}
	st.Open = st.Drop != nil
	return st, nil
}

// IsOpen reports whether a drop is open now.
func (s *Service) IsOpen(ctx context.Context) (bool, error) {
	st, err := s.Status(ctx)
	return st.Open, err
}
