package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/RafaGarcia5/grocerease-api/pkg/db/models"
	"github.com/RafaGarcia5/grocerease-api/pkg/enums"
	"github.com/RafaGarcia5/grocerease-api/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'customer',
  payment TEXT NOT NULL DEFAULT 'card',
  phone TEXT,
  address TEXT,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
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
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  order_date DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  total NUMERIC NOT NULL,
  stripe_session_id TEXT UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_details (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT,
  pieces INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM order_details")
		db.Exec("DELETE FROM orders")
		db.Exec("DELETE FROM products")
		db.Exec("DELETE FROM users")
	})

	return db
}

func createOrderUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := models.User{
		ID:           uuid.New(),
		Name:         "Buyer",
		Email:        email,
		PasswordHash: "x",
		Role:         enums.RoleCustomer,
		Payment:      enums.PaymentPreferenceCard,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createOrder(t *testing.T, repo *Repository, userID uuid.UUID, total string, when time.Time) *models.Order {
	t.Helper()

	order, err := repo.Create(context.Background(), &models.Order{
		UserID:    userID,
		OrderDate: when,
		Status:    enums.OrderStatusPending,
		Total:     decimal.RequireFromString(total),
		Details: []models.OrderDetail{
			{Pieces: 2, UnitPrice: decimal.RequireFromString("1.50")},
		},
	})
	require.NoError(t, err)
	return order
}

func TestRepositoryCreateAssignsLineIDs(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	user := createOrderUser(t, db, "buyer@example.com")
	order := createOrder(t, repo, user.ID, "3.00", time.Now().UTC())

	require.NotEqual(t, uuid.Nil, order.ID)
	require.Len(t, order.Details, 1)
	assert.NotEqual(t, uuid.Nil, order.Details[0].ID)
	assert.Equal(t, order.ID, order.Details[0].OrderID)

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, found.Details, 1)
	require.NotNil(t, found.User)
	assert.Equal(t, "buyer@example.com", found.User.Email)
}

func TestRepositoryListScopesAndSorts(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	alice := createOrderUser(t, db, "alice@example.com")
	bob := createOrderUser(t, db, "bob@example.com")

	older := createOrder(t, repo, alice.ID, "3.00", time.Now().UTC().Add(-time.Hour))
	newer := createOrder(t, repo, alice.ID, "6.00", time.Now().UTC())
	createOrder(t, repo, bob.ID, "9.00", time.Now().UTC())

	rows, total, err := repo.List(ctx, ListFilter{
		UserID: &alice.ID,
		Page:   pagination.Params{Page: 1, PerPage: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID)

	rows, _, err = repo.List(ctx, ListFilter{
		UserID:  &alice.ID,
		SortDir: "asc",
		Page:    pagination.Params{Page: 1, PerPage: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, older.ID, rows[0].ID)
}

func TestRepositoryListFiltersByStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := createOrderUser(t, db, "buyer@example.com")
	pending := createOrder(t, repo, user.ID, "3.00", time.Now().UTC())
	shipped := createOrder(t, repo, user.ID, "6.00", time.Now().UTC())
	_, err := repo.Update(ctx, shipped.ID, map[string]any{"status": enums.OrderStatusSend})
	require.NoError(t, err)

	status := enums.OrderStatusPending
	rows, total, err := repo.List(ctx, ListFilter{
		Status: &status,
		Page:   pagination.Params{Page: 1, PerPage: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, pending.ID, rows[0].ID)
}

func TestRepositorySearchByEmailSubstring(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	alice := createOrderUser(t, db, "alice@shop.test")
	bob := createOrderUser(t, db, "bob@shop.test")
	createOrder(t, repo, alice.ID, "3.00", time.Now().UTC())
	createOrder(t, repo, bob.ID, "6.00", time.Now().UTC())

	rows, total, err := repo.Search(ctx, SearchFilter{
		Query: "ALICE",
		Page:  pagination.Params{Page: 1, PerPage: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].User)
	assert.Equal(t, "alice@shop.test", rows[0].User.Email)
}

func TestRepositorySearchByOrderID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := createOrderUser(t, db, "buyer@example.com")
	order := createOrder(t, repo, user.ID, "3.00", time.Now().UTC())
	createOrder(t, repo, user.ID, "6.00", time.Now().UTC())

	rows, total, err := repo.Search(ctx, SearchFilter{
		Query: order.ID.String()[:8],
		Page:  pagination.Params{Page: 1, PerPage: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, order.ID, rows[0].ID)
}

func TestRepositoryFindBySessionID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := createOrderUser(t, db, "buyer@example.com")
	sessionID := "cs_test_123"
	_, err := repo.Create(ctx, &models.Order{
		UserID:          user.ID,
		OrderDate:       time.Now().UTC(),
		Status:          enums.OrderStatusPending,
		Total:           decimal.RequireFromString("3.00"),
		StripeSessionID: &sessionID,
	})
	require.NoError(t, err)

	found, err := repo.FindBySessionID(ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, found.StripeSessionID)
	assert.Equal(t, sessionID, *found.StripeSessionID)

	_, err = repo.FindBySessionID(ctx, "cs_test_missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryDeleteRemovesDetails(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := createOrderUser(t, db, "buyer@example.com")
	order := createOrder(t, repo, user.ID, "3.00", time.Now().UTC())

	require.NoError(t, repo.Delete(ctx, order.ID))

	_, err := repo.FindByID(ctx, order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, db.Model(&models.OrderDetail{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRepositoryDetailCRUD(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := createOrderUser(t, db, "buyer@example.com")
	order := createOrder(t, repo, user.ID, "3.00", time.Now().UTC())

	productID := uuid.New()
	detail, err := repo.CreateDetail(ctx, &models.OrderDetail{
		OrderID:   order.ID,
		ProductID: &productID,
		Pieces:    4,
		UnitPrice: decimal.RequireFromString("2.20"),
	})
	require.NoError(t, err)

	updated, err := repo.UpdateDetail(ctx, detail.ID, map[string]any{"pieces": 6})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Pieces)

	require.NoError(t, repo.DeleteDetail(ctx, detail.ID))
	_, err = repo.FindDetail(ctx, detail.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
