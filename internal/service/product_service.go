package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/Lixing-Zhang/vintage-drops/internal/category"
	"github.com/Lixing-Zhang/vintage-drops/internal/export"
	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
)

var (
	ErrInvalidProduct  = errors.New("product needs a name and a non-negative price")
	ErrUnknownCategory = errors.New("category does not exist")
	ErrUnknownDrop     = errors.New("drop does not exist")
)

// ProductQuery narrows the storefront listing.
type ProductQuery struct {
	CategoryID  string // includes the whole subtree
	Gender      string // top-level gender group
	DropID      string
	IncludeSold bool
}

// ProductService handles business logic for products
type ProductService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	drops      repository.DropRepository
	now        func() time.Time
}

// NewProductService creates a new product service
func NewProductService(repo repository.ProductRepository, categories repository.CategoryRepository, drops repository.DropRepository) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		drops:      drops,
		now:        time.Now,
	}
}

// ListProducts returns the products matching q, newest first
func (s *ProductService) ListProducts(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	filter := models.ProductFilter{DropID: q.DropID, IncludeSold: q.IncludeSold}

	if q.CategoryID != "" || q.Gender != "" {
		ids, err := s.categoryScope(ctx, q.CategoryID, q.Gender)
		if err != nil {
			return nil, err
		}
		filter.CategoryIDs = ids
	}

	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	products := make([]models.Product, 0, len(all))
	for _, p := range all {
		if filter.Matches(p) {
			products = append(products, p)
		}
	}
	return products, nil
}

// categoryScope resolves the category ids a listing may show.
func (s *ProductService) categoryScope(ctx context.Context, categoryID, gender string) (map[string]bool, error) {
	flat, err := s.categories.GetAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	tree := category.FilterByGender(category.BuildTree(flat), gender)

	if categoryID == "" {
		ids := make(map[string]bool)
		for _, root := range tree {
			for id := range category.SubtreeIDs(root) {
				ids[id] = true
			}
		}
		return ids, nil
	}

	node := category.Find(tree, categoryID)
	if node == nil {
		return map[string]bool{}, nil
	}
	return category.SubtreeIDs(node), nil
}

// GetProduct returns a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := s.validate(ctx, p); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	return s.repo.Create(ctx, p)
}

// UpdateProduct replaces the stored product, keeping its creation time.
func (s *ProductService) UpdateProduct(ctx context.Context, p *models.Product) error {
	if err := s.validate(ctx, p); err != nil {
		return err
	}
	existing, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = existing.CreatedAt
	return s.repo.Update(ctx, p)
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *ProductService) validate(ctx context.Context, p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || p.Price.IsNegative() {
		return ErrInvalidProduct
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *p.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUnknownCategory
			}
			return errors.Wrap(err, "get category")
		}
	}
	if p.DropID != nil {
		if _, err := s.drops.GetByID(ctx, *p.DropID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUnknownDrop
			}
			return errors.Wrap(err, "get drop")
		}
	}
	return nil
}

// ImportResult summarizes a spreadsheet import.
type ImportResult struct {
	Created int               `json:"created"`
	Updated int               `json:"updated"`
	Skipped []export.RowError `json:"skipped"`
}

// ImportProducts creates or updates products from a workbook. Rows with an
// unknown id or none are created.
func (s *ProductService) ImportProducts(ctx context.Context, data []byte) (*ImportResult, error) {
	products, rowErrs, err := export.ReadProducts(data)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{Skipped: rowErrs}
	if res.Skipped == nil {
		res.Skipped = []export.RowError{}
	}
	for i := range products {
		p := &products[i]
		if p.ID != "" {
			if _, err := s.repo.GetByID(ctx, p.ID); err == nil {
				if err := s.UpdateProduct(ctx, p); err != nil {
					res.Skipped = append(res.Skipped, export.RowError{Reason: p.ID + ": " + err.Error()})
					continue
				}
				res.Updated++
				continue
			}
		}
		if err := s.CreateProduct(ctx, p); err != nil {
			res.Skipped = append(res.Skipped, export.RowError{Reason: p.Name + ": " + err.Error()})
			continue
		}
		res.Created++
	}
	return res, nil
}
