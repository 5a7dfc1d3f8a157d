package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/RafaGarcia5/grocerease-api/pkg/db/models"
	"github.com/RafaGarcia5/grocerease-api/pkg/enums"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL,
  category_id TEXT,
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  image_url TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  checked_out_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_single_active ON carts (user_id) WHERE status = 'active';`,
		`CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, product_id)
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM cart_items")
		db.Exec("DELETE FROM carts")
		db.Exec("DELETE FROM products")
	})

	return db
}

func createCartProduct(t *testing.T, db *gorm.DB) *models.Product {
	t.Helper()

	product := models.Product{
		ID:       uuid.New(),
		VendorID: uuid.New(),
		Name:     "Sparkling Water",
		Price:    decimal.RequireFromString("1.10"),
		Stock:    24,
		Status:   enums.ProductStatusActive,
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func TestRepositoryFindOrCreateActive(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	first, err := repo.FindOrCreateActive(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, enums.CartStatusActive, first.Status)
	assert.Empty(t, first.Items)

	second, err := repo.FindOrCreateActive(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Cart{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepositoryItemLifecycle(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := createCartProduct(t, db)
	cart, err := repo.FindOrCreateActive(ctx, uuid.New())
	require.NoError(t, err)

	item, err := repo.CreateItem(ctx, &models.CartItem{
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  2,
	})
	require.NoError(t, err)

	byProduct, err := repo.FindItemByProduct(ctx, cart.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, byProduct.ID)

	require.NoError(t, repo.UpdateItemQuantity(ctx, item.ID, 5))

	loaded, err := repo.FindItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.Quantity)
	require.NotNil(t, loaded.Product)
	assert.Equal(t, "Sparkling Water", loaded.Product.Name)

	require.NoError(t, repo.DeleteItem(ctx, item.ID))
	_, err = repo.FindItem(ctx, item.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryClearItems(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cart, err := repo.FindOrCreateActive(ctx, uuid.New())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		product := createCartProduct(t, db)
		_, err := repo.CreateItem(ctx, &models.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  1,
		})
		require.NoError(t, err)
	}

	require.NoError(t, repo.ClearItems(ctx, cart.ID))

	reloaded, err := repo.FindActiveByUser(ctx, cart.UserID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Items)
}

func TestRepositoryMarkCheckedOut(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	cart, err := repo.FindOrCreateActive(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, repo.MarkCheckedOut(ctx, cart.ID))

	_, err = repo.FindActiveByUser(ctx, userID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	closed, err := repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CartStatusCheckedOut, closed.Status)
	assert.NotNil(t, closed.CheckedOutAt)

	assert.ErrorIs(t, repo.MarkCheckedOut(ctx, cart.ID), gorm.ErrRecordNotFound)
}
