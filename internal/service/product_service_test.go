package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/vintage-drops/internal/export"
	"github.com/Lixing-Zhang/vintage-drops/internal/models"
	"github.com/Lixing-Zhang/vintage-drops/internal/repository"
)

var testNow = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func newTestProductService() (*ProductService, *repository.Repositories) {
	repos := repository.NewInMemory(true, testNow)
	svc := NewProductService(repos.Products, repos.Categories, repos.Drops)
	svc.now = func() time.Time { return testNow }
	return svc, repos
}

func productIDs(products []models.Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func TestProductService_ListProducts(t *testing.T) {
	svc, _ := newTestProductService()

	tests := []struct {
		name  string
		query ProductQuery
		want  []string
	}{
		{name: "unsold newest first", query: ProductQuery{}, want: []string{"5", "4", "3", "2", "1"}},
		{name: "include sold", query: ProductQuery{IncludeSold: true}, want: []string{"6", "5", "4", "3", "2", "1"}},
		{name: "men with unisex", query: ProductQuery{Gender: "men"}, want: []string{"5", "2", "1"}},
		{name: "category subtree", query: ProductQuery{CategoryID: "women"}, want: []string{"4", "3"}},
		{name: "leaf category", query: ProductQuery{CategoryID: "men-jackets", IncludeSold: true}, want: []string{"6", "2"}},
		{name: "category outside gender", query: ProductQuery{CategoryID: "women", Gender: "men"}, want: []string{}},
		{name: "unknown category", query: ProductQuery{CategoryID: "shoes"}, want: []string{}},
		{name: "other drop", query: ProductQuery{DropID: "winter"}, want: []string{}},
		{name: "current drop", query: ProductQuery{DropID: "autumn", CategoryID: "accessories"}, want: []string{"5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := svc.ListProducts(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("ListProducts() unexpected error: %v", err)
			}

			got := productIDs(products)
			if len(got) != len(tt.want) {
				t.Fatalf("ListProducts() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ListProducts()[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestProductService_CreateProduct(t *testing.T) {
	svc, _ := newTestProductService()
	ctx := context.Background()

	tests := []struct {
		name    string
		product models.Product
		wantErr error
	}{
		{name: "valid", product: models.Product{Name: " Wool Coat ", Price: decimal.NewFromInt(120), CategoryID: strPtr("women-jackets")}},
		{name: "missing name", product: models.Product{Price: decimal.NewFromInt(10)}, wantErr: ErrInvalidProduct},
		{name: "negative price", product: models.Product{Name: "Hat", Price: decimal.NewFromInt(-1)}, wantErr: ErrInvalidProduct},
		{name: "unknown category", product: models.Product{Name: "Hat", CategoryID: strPtr("hats")}, wantErr: ErrUnknownCategory},
		{name: "unknown drop", product: models.Product{Name: "Hat", DropID: strPtr("spring")}, wantErr: ErrUnknownDrop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.product
			err := svc.CreateProduct(ctx, &p)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateProduct() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}

			if p.ID == "" {
				t.Error("expected an id to be generated")
			}
			if !p.CreatedAt.Equal(testNow) {
				t.Errorf("created_at = %v, want %v", p.CreatedAt, testNow)
			}
			stored, err := svc.GetProduct(ctx, p.ID)
			if err != nil {
				t.Fatalf("GetProduct() unexpected error: %v", err)
			}
			if stored.Name != "Wool Coat" {
				t.Errorf("name = %q, want trimmed", stored.Name)
			}
		})
	}
}

func TestProductService_UpdateKeepsCreatedAt(t *testing.T) {
	svc, _ := newTestProductService()
	ctx := context.Background()

	before, err := svc.GetProduct(ctx, "3")
	if err != nil {
		t.Fatalf("GetProduct() unexpected error: %v", err)
	}

	update := *before
	update.Price = decimal.NewFromInt(199)
	update.CreatedAt = time.Time{}
	if err := svc.UpdateProduct(ctx, &update); err != nil {
		t.Fatalf("UpdateProduct() unexpected error: %v", err)
	}

	after, _ := svc.GetProduct(ctx, "3")
	if !after.Price.Equal(decimal.NewFromInt(199)) {
		t.Errorf("price = %s, want 199", after.Price)
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("created_at changed to %v", after.CreatedAt)
	}

	missing := models.Product{ID: "nope", Name: "Ghost"}
	if err := svc.UpdateProduct(ctx, &missing); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("UpdateProduct() unknown id error = %v, want ErrNotFound", err)
	}
}

func TestProductService_ImportProducts(t *testing.T) {
	svc, _ := newTestProductService()
	ctx := context.Background()

	existing, _ := svc.GetProduct(ctx, "1")
	existing.Price = decimal.NewFromInt(150)
	rows := []models.Product{
		*existing,
		{Name: "Corduroy Cap", Price: decimal.NewFromInt(35), CategoryID: strPtr("accessories")},
		{Name: "Mystery", Price: decimal.NewFromInt(5), CategoryID: strPtr("hats")},
	}

	var buf bytes.Buffer
	if err := export.WriteProducts(&buf, rows); err != nil {
		t.Fatalf("WriteProducts() unexpected error: %v", err)
	}

	res, err := svc.ImportProducts(ctx, buf.Bytes())
	if err != nil {
		t.Fatalf("ImportProducts() unexpected error: %v", err)
	}
	if res.Created != 1 || res.Updated != 1 {
		t.Errorf("created/updated = %d/%d, want 1/1", res.Created, res.Updated)
	}
	if len(res.Skipped) != 1 {
		t.Errorf("skipped = %v, want one row", res.Skipped)
	}

	updated, _ := svc.GetProduct(ctx, "1")
	if !updated.Price.Equal(decimal.NewFromInt(150)) {
		t.Errorf("imported price = %s, want 150", updated.Price)
	}
}
