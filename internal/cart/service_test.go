package cart

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
)

type stubCartRepo struct {
	carts map[uuid.UUID]*models.Cart
	items map[uuid.UUID]*models.CartItem
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{
		carts: map[uuid.UUID]*models.Cart{},
		items: map[uuid.UUID]*models.CartItem{},
	}
}

func (s *stubCartRepo) FindActiveByUser(_ context.Context, userID uuid.UUID) (*models.Cart, error) {
	for _, c := range s.carts {
		if c.UserID == userID && c.Status == enums.CartStatusActive {
			out := *c
			out.Items = nil
			for _, item := range s.items {
				if item.CartID == c.ID {
					out.Items = append(out.Items, *item)
				}
			}
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) FindOrCreateActive(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if cart, err := s.FindActiveByUser(ctx, userID); err == nil {
		return cart, nil
	}
	cart := &models.Cart{ID: uuid.New(), UserID: userID, Status: enums.CartStatusActive}
	s.carts[cart.ID] = cart
	return cart, nil
}

func (s *stubCartRepo) FindItem(_ context.Context, itemID uuid.UUID) (*models.CartItem, error) {
	item, ok := s.items[itemID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (s *stubCartRepo) FindItemByProduct(_ context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	for _, item := range s.items {
		if item.CartID == cartID && item.ProductID == productID {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) CreateItem(_ context.Context, item *models.CartItem) (*models.CartItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.items[item.ID] = item
	return item, nil
}

func (s *stubCartRepo) UpdateItemQuantity(_ context.Context, itemID uuid.UUID, quantity int) error {
	item, ok := s.items[itemID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.Quantity = quantity
	return nil
}

func (s *stubCartRepo) DeleteItem(_ context.Context, itemID uuid.UUID) error {
	delete(s.items, itemID)
	return nil
}

func (s *stubCartRepo) ClearItems(_ context.Context, cartID uuid.UUID) error {
	for id, item := range s.items {
		if item.CartID == cartID {
			delete(s.items, id)
		}
	}
	return nil
}

type stubProductFinder struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductFinder) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func buildCartService(t *testing.T) (Service, *stubCartRepo, *stubProductFinder) {
	t.Helper()

	repo := newStubCartRepo()
	products := &stubProductFinder{products: map[uuid.UUID]*models.Product{}}
	svc, err := NewService(repo, products)
	require.NoError(t, err)
	return svc, repo, products
}

func seedFinderProduct(finder *stubProductFinder, stock int, status enums.ProductStatus) *models.Product {
	p := &models.Product{
		ID:     uuid.New(),
		Name:   "Olive Oil",
		Price:  decimal.RequireFromString("8.90"),
		Stock:  stock,
		Status: status,
	}
	finder.products[p.ID] = p
	return p
}

func TestServiceGetCreatesCartOnFirstUse(t *testing.T) {
	svc, repo, _ := buildCartService(t)
	userID := uuid.New()

	cart, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, cart.UserID)
	assert.Empty(t, cart.Items)
	assert.Len(t, repo.carts, 1)

	again, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
	assert.Len(t, repo.carts, 1)
}

func TestServiceAddItemMergesQuantities(t *testing.T) {
	svc, repo, products := buildCartService(t)
	userID := uuid.New()
	product := seedFinderProduct(products, 10, enums.ProductStatusActive)

	_, err := svc.AddItem(context.Background(), userID, AddItemRequest{ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)

	cart, err := svc.AddItem(context.Background(), userID, AddItemRequest{ProductID: product.ID, Quantity: 4})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 7, cart.Items[0].Quantity)
	assert.Len(t, repo.items, 1)
}

func TestServiceAddItemRejectsInsufficientStock(t *testing.T) {
	svc, _, products := buildCartService(t)
	userID := uuid.New()
	product := seedFinderProduct(products, 5, enums.ProductStatusActive)

	_, err := svc.AddItem(context.Background(), userID, AddItemRequest{ProductID: product.ID, Quantity: 4})
	require.NoError(t, err)

	_, err = svc.AddItem(context.Background(), userID, AddItemRequest{ProductID: product.ID, Quantity: 2})
	require.Error(t, err)

	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())

	details, ok := coded.Details().(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "stock")
	assert.NotEmpty(t, details["stock"])
}

func TestServiceAddItemRejectsInactiveProduct(t *testing.T) {
	svc, _, products := buildCartService(t)
	product := seedFinderProduct(products, 5, enums.ProductStatusInactive)

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemRequest{ProductID: product.ID, Quantity: 1})
	require.Error(t, err)

	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
}

func TestServiceUpdateItemSetsAbsoluteQuantity(t *testing.T) {
	svc, repo, products := buildCartService(t)
	userID := uuid.New()
	product := seedFinderProduct(products, 10, enums.ProductStatusActive)

	cart, err := svc.AddItem(context.Background(), userID, AddItemRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	updated, err := svc.UpdateItem(context.Background(), userID, cart.Items[0].ID, UpdateItemRequest{Quantity: 9})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, 9, updated.Items[0].Quantity)
	assert.Equal(t, 9, repo.items[cart.Items[0].ID].Quantity)
}

func TestServiceUpdateItemRejectsForeignCart(t *testing.T) {
	svc, _, products := buildCartService(t)
	owner := uuid.New()
	intruder := uuid.New()
	product := seedFinderProduct(products, 10, enums.ProductStatusActive)

	cart, err := svc.AddItem(context.Background(), owner, AddItemRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = svc.UpdateItem(context.Background(), intruder, cart.Items[0].ID, UpdateItemRequest{Quantity: 1})
	require.Error(t, err)

	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestServiceRemoveItem(t *testing.T) {
	svc, repo, products := buildCartService(t)
	userID := uuid.New()
	product := seedFinderProduct(products, 10, enums.ProductStatusActive)

	cart, err := svc.AddItem(context.Background(), userID, AddItemRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	after, err := svc.RemoveItem(context.Background(), userID, cart.Items[0].ID)
	require.NoError(t, err)
	assert.Empty(t, after.Items)
	assert.Empty(t, repo.items)
}

func TestServiceClear(t *testing.T) {
	svc, repo, products := buildCartService(t)
	userID := uuid.New()
	first := seedFinderProduct(products, 10, enums.ProductStatusActive)
	second := seedFinderProduct(products, 10, enums.ProductStatusActive)

	_, err := svc.AddItem(context.Background(), userID, AddItemRequest{ProductID: first.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), userID, AddItemRequest{ProductID: second.ID, Quantity: 3})
	require.NoError(t, err)

	cart, err := svc.Clear(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Empty(t, repo.items)
}
