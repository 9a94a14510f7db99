package postgres

import (
	"context"
	"database/sql"

	"github.com/go-faster/errors"
	"github.com/lib/pq"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
)

type ProductRepo struct {
	db *sql.DB
}

const productColumns = `id, name, description, price, size, brand, condition,
	category_id, drop_id, images, is_sold, created_at`

func scanProduct(s scanner) (models.Product, error) {
	var p models.Product
	var images pq.StringArray
	err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Size, &p.Brand,
		&p.Condition, &p.CategoryID, &p.DropID, &images, &p.IsSold, &p.CreatedAt)
	p.Images = []string(images)
	if p.Images == nil {
		p.Images = []string{}
	}
	return p, err
}

func (r *ProductRepo) GetAll(ctx context.Context) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, errors.Wrap(err, "query products")
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		products = append(products, p)
	}
	return products, errors.Wrap(rows.Err(), "iterate products")
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "get product")
	}
	return &p, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *models.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.Name, p.Description, p.Price, p.Size, p.Brand, p.Condition,
		p.CategoryID, p.DropID, pq.Array(p.Images), p.IsSold, p.CreatedAt)
	return mapErr(err, "insert product")
}

func (r *ProductRepo) Update(ctx context.Context, p *models.Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, size = $5, brand = $6,
		    condition = $7, category_id = $8, drop_id = $9, images = $10, is_sold = $11
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Price, p.Size, p.Brand, p.Condition,
		p.CategoryID, p.DropID, pq.Array(p.Images), p.IsSold)
	return expectOne(res, err, "update product")
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	return expectOne(res, err, "delete product")
}

type CategoryRepo struct {
	db *sql.DB
}

const categoryColumns = `id, name, slug, parent_id, assigned_gender, sort_order`

func scanCategory(s scanner) (models.Category, error) {
	var c models.Category
	err := s.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.AssignedGender, &c.SortOrder)
	return c, err
}

func (r *CategoryRepo) GetAll(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY sort_order, name, id`)
	if err != nil {
		return nil, errors.Wrap(err, "query categories")
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan category")
		}
		categories = append(categories, c)
	}
	return categories, errors.Wrap(rows.Err(), "iterate categories")
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*models.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "get category")
	}
	return &c, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *models.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Slug, c.ParentID, c.AssignedGender, c.SortOrder)
	return mapErr(err, "insert category")
}

func (r *CategoryRepo) Update(ctx context.Context, c *models.Category) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories
		SET name = $2, slug = $3, parent_id = $4, assigned_gender = $5, sort_order = $6
		WHERE id = $1`,
		c.ID, c.Name, c.Slug, c.ParentID, c.AssignedGender, c.SortOrder)
	return expectOne(res, err, "update category")
}

// Delete relies on ON DELETE SET NULL to detach children and products.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return expectOne(res, err, "delete category")
}

type DropRepo struct {
	db *sql.DB
}

func scanDrop(s scanner) (models.Drop, error) {
	var d models.Drop
	err := s.Scan(&d.ID, &d.Name, &d.StartsAt, &d.EndsAt, &d.IsActive)
	return d, err
}

func (r *DropRepo) GetAll(ctx context.Context) ([]models.Drop, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, starts_at, ends_at, is_active FROM drops ORDER BY starts_at`)
	if err != nil {
		return nil, errors.Wrap(err, "query drops")
	}
	defer rows.Close()

	drops := []models.Drop{}
	for rows.Next() {
		d, err := scanDrop(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan drop")
		}
		drops = append(drops, d)
	}
	return drops, errors.Wrap(rows.Err(), "iterate drops")
}

func (r *DropRepo) GetByID(ctx context.Context, id string) (*models.Drop, error) {
	d, err := scanDrop(r.db.QueryRowContext(ctx, `SELECT id, name, starts_at, ends_at, is_active FROM drops WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "get drop")
	}
	return &d, nil
}

func (r *DropRepo) Create(ctx context.Context, d *models.Drop) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO drops (id, name, starts_at, ends_at, is_active) VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.Name, d.StartsAt, d.EndsAt, d.IsActive)
	return mapErr(err, "insert drop")
}

func (r *DropRepo) Update(ctx context.Context, d *models.Drop) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE drops SET name = $2, starts_at = $3, ends_at = $4, is_active = $5 WHERE id = $1`,
		d.ID, d.Name, d.StartsAt, d.EndsAt, d.IsActive)
	return expectOne(res, err, "update drop")
}

func (r *DropRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM drops WHERE id = $1`, id)
	return expectOne(res, err, "delete drop")
}
