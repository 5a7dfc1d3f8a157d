package orders

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RafaGarcia5/grocerease-api/pkg/db/models"
	"github.com/RafaGarcia5/grocerease-api/pkg/enums"
	"github.com/RafaGarcia5/grocerease-api/pkg/pagination"
)

// ListFilter narrows and orders the order listing.
type ListFilter struct {
	// UserID limits results to a single buyer. Nil lists every order.
	UserID *uuid.UUID
	// Status filters by lifecycle state when set.
	Status *enums.OrderStatus
	// SortDir is "asc" or "desc" over order_date. Defaults to desc.
	SortDir string
	// PreloadUser attaches the buyer row to each order.
	PreloadUser bool
	Page        pagination.Params
}

// SearchFilter matches orders by id prefix or buyer email substring.
type SearchFilter struct {
	Query   string
	SortBy  string
	SortDir string
	Page    pagination.Params
}

// Repository persists orders and their line items.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts an order together with its details.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Details {
		if order.Details[i].ID == uuid.Nil {
			order.Details[i].ID = uuid.New()
		}
		order.Details[i].OrderID = order.ID
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// List returns a page of orders honoring the filter.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("Details")
	if filter.PreloadUser {
		query = query.Preload("User")
	}

	var rows []models.Order
	err := query.
		Order("order_date " + sortDirection(filter.SortDir)).
		Offset(filter.Page.Offset()).
		Limit(filter.Page.PerPage).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Search matches orders whose id or buyer email contains the query term.
func (r *Repository) Search(ctx context.Context, filter SearchFilter) ([]models.Order, int64, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Query)) + "%"
	base := r.db.WithContext(ctx).Model(&models.Order{}).
		Joins("JOIN users ON users.id = orders.user_id").
		Where("LOWER(CAST(orders.id AS TEXT)) LIKE ? OR LOWER(users.email) LIKE ?", pattern, pattern)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Order
	err := base.
		Preload("User").
		Preload("Details").
		Order(sortColumn(filter.SortBy) + " " + sortDirection(filter.SortDir)).
		Offset(filter.Page.Offset()).
		Limit(filter.Page.PerPage).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListAllWithUsers returns every order with buyer and product rows attached.
func (r *Repository) ListAllWithUsers(ctx context.Context) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Details.Product").
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads an order with details, products, and the buyer.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Details.Product").
		Preload("User").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindBySessionID loads the order reconciled from a checkout session, if any.
func (r *Repository) FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Details.Product").
		First(&order, "stripe_session_id = ?", sessionID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Update applies a partial column update and returns the fresh row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Order, error) {
	if len(updates) > 0 {
		err := r.db.WithContext(ctx).
			Model(&models.Order{}).
			Where("id = ?", id).
			Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

// Delete removes an order. Details cascade at the database level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&models.OrderDetail{}, "order_id = ?", id).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id).Error
}

// ListDetails returns every order line, most recent first.
func (r *Repository) ListDetails(ctx context.Context) ([]models.OrderDetail, error) {
	var rows []models.OrderDetail
	err := r.db.WithContext(ctx).
		Preload("Product").
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindDetail loads a single order line.
func (r *Repository) FindDetail(ctx context.Context, id uuid.UUID) (*models.OrderDetail, error) {
	var detail models.OrderDetail
	err := r.db.WithContext(ctx).
		Preload("Product").
		First(&detail, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// CreateDetail inserts a standalone order line.
func (r *Repository) CreateDetail(ctx context.Context, detail *models.OrderDetail) (*models.OrderDetail, error) {
	if detail.ID == uuid.Nil {
		detail.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(detail).Error; err != nil {
		return nil, err
	}
	return detail, nil
}

// UpdateDetail applies a partial update to an order line.
func (r *Repository) UpdateDetail(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.OrderDetail, error) {
	if len(updates) > 0 {
		err := r.db.WithContext(ctx).
			Model(&models.OrderDetail{}).
			Where("id = ?", id).
			Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}
	return r.FindDetail(ctx, id)
}

// DeleteDetail removes an order line.
func (r *Repository) DeleteDetail(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.OrderDetail{}, "id = ?", id).Error
}

// sortColumn whitelists sortable columns for Search.
func sortColumn(requested string) string {
	switch strings.ToLower(strings.TrimSpace(requested)) {
	case "total":
		return "orders.total"
	case "status":
		return "orders.status"
	case "created_at":
		return "orders.created_at"
	default:
		return "orders.order_date"
	}
}

func sortDirection(requested string) string {
	if strings.EqualFold(strings.TrimSpace(requested), "asc") {
		return "ASC"
	}
	return "DESC"
}
