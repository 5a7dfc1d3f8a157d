package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RafaGarcia5/grocerease-api/api/middleware"
	productsvc "github.com/RafaGarcia5/grocerease-api/internal/products"
	"github.com/RafaGarcia5/grocerease-api/pkg/db/models"
	"github.com/RafaGarcia5/grocerease-api/pkg/enums"
	"github.com/RafaGarcia5/grocerease-api/pkg/pagination"
)

type stubProductService struct {
	product      *models.Product
	err          error
	searchParams *productsvc.SearchParams
	createVendor uuid.UUID
	createReq    *productsvc.CreateProductRequest
}

func (s *stubProductService) List(ctx context.Context) ([]models.Product, error) {
	return []models.Product{}, s.err
}

func (s *stubProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.product, s.err
}

func (s *stubProductService) Search(ctx context.Context, params productsvc.SearchParams) (*pagination.Page[models.Product], error) {
	s.searchParams = &params
	page := pagination.NewPage([]models.Product{}, params.Page, 0)
	return &page, s.err
}

func (s *stubProductService) Create(ctx context.Context, vendorID uuid.UUID, req productsvc.CreateProductRequest) (*models.Product, error) {
	s.createVendor = vendorID
	s.createReq = &req
	return s.product, s.err
}

func (s *stubProductService) Update(ctx context.Context, id uuid.UUID, req productsvc.UpdateProductRequest) (*models.Product, error) {
	return s.product, s.err
}

func (s *stubProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.err
}

func TestSearchProductsPassesQueryAndPagination(t *testing.T) {
	svc := &stubProductService{}
	handler := SearchProducts(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/product/search?q=coffee&page=2&per_page=5", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.searchParams == nil {
		t.Fatal("expected search to be called")
	}
	if svc.searchParams.Term != "coffee" {
		t.Fatalf("unexpected term: %q", svc.searchParams.Term)
	}
	if svc.searchParams.Page.Page != 2 || svc.searchParams.Page.PerPage != 5 {
		t.Fatalf("unexpected pagination: %+v", svc.searchParams.Page)
	}
}

func TestProductsByCategoryBindsPathParam(t *testing.T) {
	svc := &stubProductService{}
	handler := ProductsByCategory(svc, nil)

	categoryID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/product/category/"+categoryID.String(), nil)
	req = withPathParam(req, "categoryId", categoryID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.searchParams == nil || svc.searchParams.CategoryID == nil || *svc.searchParams.CategoryID != categoryID {
		t.Fatalf("expected category filter %s, got %+v", categoryID, svc.searchParams)
	}
}

func TestGetProductRejectsBadID(t *testing.T) {
	handler := GetProduct(&stubProductService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/product/nope", nil)
	req = withPathParam(req, "id", "nope")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestCreateProductStampsVendorFromContext(t *testing.T) {
	vendorID := uuid.New()
	svc := &stubProductService{product: &models.Product{
		ID:       uuid.New(),
		VendorID: vendorID,
		Name:     "Rooibos",
		Price:    decimal.RequireFromString("4.50"),
	}}
	handler := CreateProduct(svc, nil)

	body := `{"name":"Rooibos","price":"4.50","stock":10}`
	req := httptest.NewRequest(http.MethodPost, "/product", strings.NewReader(body))
	ctx := middleware.WithUserID(req.Context(), vendorID.String())
	ctx = middleware.WithRole(ctx, enums.RoleVendor.String())
	req = req.WithContext(ctx)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.createVendor != vendorID {
		t.Fatalf("expected vendor %s got %s", vendorID, svc.createVendor)
	}

	var envelope struct {
		Data models.Product `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Name != "Rooibos" {
		t.Fatalf("unexpected product name: %q", envelope.Data.Name)
	}
}

func TestCreateProductRequiresAuthContext(t *testing.T) {
	handler := CreateProduct(&stubProductService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/product", strings.NewReader(`{"name":"x","price":"1.00","stock":1}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
