package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/go-faster/errors"

	"github.com/Lixing-Zhang/vintage-drops/internal/category"
	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
)

var (
	ErrInvalidCategory = errors.New("category needs a name")
	ErrCategoryCycle   = errors.New("category cannot be its own ancestor")
)

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases name and joins its words with dashes.
func Slugify(name string) string {
	return strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// CategoryService serves the category tree and its administration.
type CategoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// Tree returns the category forest, restricted to gender when set.
func (s *CategoryService) Tree(ctx context.Context, gender string) ([]*category.Node, error) {
	flat, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return category.FilterByGender(category.BuildTree(flat), gender), nil
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.repo.GetAll(ctx)
}

func (s *CategoryService) Create(ctx context.Context, c *models.Category) error {
	if err := s.validate(ctx, c); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = c.Slug
	}
	return s.repo.Create(ctx, c)
}

func (s *CategoryService) Update(ctx context.Context, c *models.Category) error {
	if err := s.validate(ctx, c); err != nil {
		return err
	}
	return s.repo.Update(ctx, c)
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// validate checks the name and that the parent exists without making c an
// ancestor of itself.
func (s *CategoryService) validate(ctx context.Context, c *models.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return ErrInvalidCategory
	}
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	if c.ParentID == nil {
		return nil
	}

	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return errors.Wrap(err, "list categories")
	}
	parents := make(map[string]*string, len(all))
	for _, existing := range all {
		parents[existing.ID] = existing.ParentID
	}

	id := *c.ParentID
	for steps := 0; steps <= len(all); steps++ {
		if c.ID != "" && id == c.ID {
			return ErrCategoryCycle
		}
		parent, ok := parents[id]
		if !ok {
			if steps == 0 {
				return ErrUnknownCategory
			}
			return nil
		}
		if parent == nil {
			return nil
		}
		id = *parent
	}
	return ErrCategoryCycle
}
