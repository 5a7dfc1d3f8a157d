package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/RafaGarcia5/grocerease-api/api/middleware"
	cartsvc "github.com/RafaGarcia5/grocerease-api/internal/cart"
	"github.com/RafaGarcia5/grocerease-api/pkg/db/models"
	"github.com/RafaGarcia5/grocerease-api/pkg/enums"
	pkgerrors "github.com/RafaGarcia5/grocerease-api/pkg/errors"
)

type stubCartService struct {
	cart    *models.Cart
	err     error
	addReq  *cartsvc.AddItemRequest
	addUser uuid.UUID
}

func (s *stubCartService) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, userID uuid.UUID, req cartsvc.AddItemRequest) (*models.Cart, error) {
	s.addReq = &req
	s.addUser = userID
	return s.cart, s.err
}

func (s *stubCartService) UpdateItem(ctx context.Context, userID uuid.UUID, itemID uuid.UUID, req cartsvc.UpdateItemRequest) (*models.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) (*models.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) Clear(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return s.cart, s.err
}

func authedRequest(method, target, body string, userID uuid.UUID, role enums.Role) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, role.String())
	return req.WithContext(ctx)
}

func TestGetCartSuccess(t *testing.T) {
	userID := uuid.New()
	record := &models.Cart{ID: uuid.New(), UserID: userID, Status: enums.CartStatusActive}
	handler := GetCart(&stubCartService{cart: record}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/cart", "", userID, enums.RoleCustomer))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data models.Cart `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != record.ID {
		t.Fatalf("unexpected cart id: %s", envelope.Data.ID)
	}
}

func TestGetCartMissingAuthContext(t *testing.T) {
	handler := GetCart(&stubCartService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAddCartItemPassesPayload(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	svc := &stubCartService{cart: &models.Cart{ID: uuid.New(), UserID: userID}}
	handler := AddCartItem(svc, nil)

	body := `{"product_id":"` + productID.String() + `","quantity":3}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/cart/add", body, userID, enums.RoleCustomer))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.addReq == nil || svc.addReq.ProductID != productID || svc.addReq.Quantity != 3 {
		t.Fatalf("unexpected add request: %+v", svc.addReq)
	}
	if svc.addUser != userID {
		t.Fatalf("expected user %s got %s", userID, svc.addUser)
	}
}

func TestAddCartItemRejectsZeroQuantity(t *testing.T) {
	handler := AddCartItem(&stubCartService{}, nil)

	body := `{"product_id":"` + uuid.NewString() + `","quantity":0}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/cart/add", body, uuid.New(), enums.RoleCustomer))

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestAddCartItemInsufficientStock(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock")}
	handler := AddCartItem(svc, nil)

	body := `{"product_id":"` + uuid.NewString() + `","quantity":5}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/cart/add", body, uuid.New(), enums.RoleCustomer))

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Message != "insufficient stock" {
		t.Fatalf("unexpected message: %q", envelope.Error.Message)
	}
}

func TestUpdateCartItemRejectsBadID(t *testing.T) {
	handler := UpdateCartItem(&stubCartService{}, nil)

	req := authedRequest(http.MethodPut, "/cart/item/not-a-uuid", `{"quantity":2}`, uuid.New(), enums.RoleCustomer)
	req = withPathParam(req, "id", "not-a-uuid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}
