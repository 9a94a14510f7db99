package service

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
)

var ErrInvalidDrop = errors.New("drop needs a name and must end after it starts")

// DropAdminService manages the drop calendar.
type DropAdminService struct {
	repo repository.DropRepository
}

// NewDropAdminService creates a new drop admin service
func NewDropAdminService(repo repository.DropRepository) *DropAdminService {
	return &DropAdminService{repo: repo}
}

func (s *DropAdminService) List(ctx context.Context) ([]models.Drop, error) {
	return s.repo.GetAll(ctx)
}

func (s *DropAdminService) Create(ctx context.Context, d *models.Drop) error {
	if err := validateDrop(d); err != nil {
		return err
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return s.repo.Create(ctx, d)
}

func (s *DropAdminService) Update(ctx context.Context, d *models.Drop) error {
	if err := validateDrop(d); err != nil {
		return err
	}
	return s.repo.Update(ctx, d)
}

func (s *DropAdminService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validateDrop(d *models.Drop) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" || !d.EndsAt.After(d.StartsAt) {
		return ErrInvalidDrop
	}
	return nil
}
