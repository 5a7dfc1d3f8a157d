package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/RafaGarcia5/grocerease-api/pkg/db/models"
	"github.com/RafaGarcia5/grocerease-api/pkg/enums"
	pkgerrors "github.com/RafaGarcia5/grocerease-api/pkg/errors"
	"github.com/RafaGarcia5/grocerease-api/pkg/pagination"
)

type stubProductRepo struct {
	products map[uuid.UUID]*models.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: map[uuid.UUID]*models.Product{}}
}

func (s *stubProductRepo) Create(_ context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	s.products[product.ID] = product
	return product, nil
}

func (s *stubProductRepo) List(_ context.Context) ([]models.Product, error) {
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *stubProductRepo) Search(_ context.Context, _ string, _ *uuid.UUID, _ pagination.Params) ([]models.Product, int64, error) {
	rows, _ := s.List(context.Background())
	return rows, int64(len(rows)), nil
}

func (s *stubProductRepo) Update(_ context.Context, id uuid.UUID, updates map[string]any) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if v, ok := updates["name"]; ok {
		p.Name = v.(string)
	}
	if v, ok := updates["price"]; ok {
		p.Price = v.(decimal.Decimal)
	}
	if v, ok := updates["stock"]; ok {
		p.Stock = v.(int)
	}
	if v, ok := updates["status"]; ok {
		p.Status = v.(enums.ProductStatus)
	}
	return p, nil
}

func (s *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.products, id)
	return nil
}

type stubCategoryLoader struct {
	categories map[uuid.UUID]*models.Category
}

func (s *stubCategoryLoader) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	c, ok := s.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func buildProductService(t *testing.T) (Service, *stubProductRepo, *stubCategoryLoader) {
	t.Helper()

	repo := newStubProductRepo()
	categories := &stubCategoryLoader{categories: map[uuid.UUID]*models.Category{}}
	svc, err := NewService(repo, categories)
	require.NoError(t, err)
	return svc, repo, categories
}

func TestServiceCreateStampsVendor(t *testing.T) {
	svc, repo, _ := buildProductService(t)
	vendorID := uuid.New()

	created, err := svc.Create(context.Background(), vendorID, CreateProductRequest{
		Name:  "Basmati Rice",
		Price: decimal.RequireFromString("7.80"),
		Stock: 25,
	})
	require.NoError(t, err)
	assert.Equal(t, vendorID, created.VendorID)
	assert.Equal(t, enums.ProductStatusActive, created.Status)
	assert.Len(t, repo.products, 1)
}

func TestServiceCreateRejectsNegativePrice(t *testing.T) {
	svc, _, _ := buildProductService(t)

	_, err := svc.Create(context.Background(), uuid.New(), CreateProductRequest{
		Name:  "Broken",
		Price: decimal.RequireFromString("-1.00"),
	})
	require.Error(t, err)

	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestServiceCreateRejectsUnknownCategory(t *testing.T) {
	svc, _, _ := buildProductService(t)
	missing := uuid.New()

	_, err := svc.Create(context.Background(), uuid.New(), CreateProductRequest{
		Name:       "Oat Milk",
		Price:      decimal.RequireFromString("3.10"),
		CategoryID: &missing,
	})
	require.Error(t, err)

	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestServiceUpdateStatus(t *testing.T) {
	svc, repo, _ := buildProductService(t)

	created, err := repo.Create(context.Background(), &models.Product{
		Name:   "Honey",
		Price:  decimal.RequireFromString("5.60"),
		Stock:  9,
		Status: enums.ProductStatusActive,
	})
	require.NoError(t, err)

	inactive := "inactive"
	updated, err := svc.Update(context.Background(), created.ID, UpdateProductRequest{Status: &inactive})
	require.NoError(t, err)
	assert.Equal(t, enums.ProductStatusInactive, updated.Status)
}

func TestServiceUpdateUnknownProduct(t *testing.T) {
	svc, _, _ := buildProductService(t)

	name := "Renamed"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateProductRequest{Name: &name})
	require.Error(t, err)

	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestServiceDelete(t *testing.T) {
	svc, repo, _ := buildProductService(t)

	created, err := repo.Create(context.Background(), &models.Product{
		Name:   "Chips",
		Price:  decimal.RequireFromString("1.25"),
		Status: enums.ProductStatusActive,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Empty(t, repo.products)
}

func TestServiceSearchValidatesCategory(t *testing.T) {
	svc, _, categories := buildProductService(t)

	known := uuid.New()
	categories.categories[known] = &models.Category{ID: known, Name: "Bakery"}

	_, err := svc.Search(context.Background(), SearchParams{
		Term:       "bread",
		CategoryID: &known,
		Page:       pagination.Params{Page: 1, PerPage: 10},
	})
	require.NoError(t, err)

	missing := uuid.New()
	_, err = svc.Search(context.Background(), SearchParams{
		Term:       "bread",
		CategoryID: &missing,
		Page:       pagination.Params{Page: 1, PerPage: 10},
	})
	require.Error(t, err)

	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}
