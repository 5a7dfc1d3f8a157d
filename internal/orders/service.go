package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/RafaGarcia5/grocerease-api/internal/products"
	"github.com/RafaGarcia5/grocerease-api/pkg/db/models"
	"github.com/RafaGarcia5/grocerease-api/pkg/enums"
	pkgerrors "github.com/RafaGarcia5/grocerease-api/pkg/errors"
	"github.com/RafaGarcia5/grocerease-api/pkg/pagination"
)

// Service exposes order and order line operations.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*models.Order, error)
	List(ctx context.Context, actorID uuid.UUID, actorRole enums.Role, req ListRequest) (*pagination.Page[models.Order], error)
	Search(ctx context.Context, req SearchRequest) (*pagination.Page[models.Order], error)
	ListAll(ctx context.Context) ([]models.Order, error)
	Get(ctx context.Context, actorID uuid.UUID, actorRole enums.Role, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, actorID uuid.UUID, actorRole enums.Role, id uuid.UUID, req UpdateOrderRequest) (*models.Order, error)
	Delete(ctx context.Context, actorID uuid.UUID, actorRole enums.Role, id uuid.UUID) error

	ListDetails(ctx context.Context) ([]models.OrderDetail, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*models.OrderDetail, error)
	CreateDetail(ctx context.Context, req CreateDetailRequest) (*models.OrderDetail, error)
	UpdateDetail(ctx context.Context, id uuid.UUID, req UpdateDetailRequest) (*models.OrderDetail, error)
	DeleteDetail(ctx context.Context, id uuid.UUID) error
}

// TxRunner executes a function within a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type orderRepository interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error)
	Search(ctx context.Context, filter SearchFilter) ([]models.Order, int64, error)
	ListAllWithUsers(ctx context.Context) ([]models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListDetails(ctx context.Context) ([]models.OrderDetail, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*models.OrderDetail, error)
	CreateDetail(ctx context.Context, detail *models.OrderDetail) (*models.OrderDetail, error)
	UpdateDetail(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.OrderDetail, error)
	DeleteDetail(ctx context.Context, id uuid.UUID) error
}

type stockReserver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ReserveStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
}

// ServiceParams packages the order service dependencies. The factories exist
// so stock reservation and order insertion share one transaction.
type ServiceParams struct {
	TxRunner           TxRunner
	Repo               orderRepository
	OrderRepoFactory   func(tx *gorm.DB) orderRepository
	ProductRepoFactory func(tx *gorm.DB) stockReserver
}

type service struct {
	tx          TxRunner
	repo        orderRepository
	orderRepo   func(tx *gorm.DB) orderRepository
	productRepo func(tx *gorm.DB) stockReserver
}

// NewService constructs an orders service.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repository required")
	}
	if params.OrderRepoFactory == nil {
		params.OrderRepoFactory = func(tx *gorm.DB) orderRepository {
			return NewRepository(tx)
		}
	}
	if params.ProductRepoFactory == nil {
		params.ProductRepoFactory = func(tx *gorm.DB) stockReserver {
			return products.NewRepository(tx)
		}
	}
	return &service{
		tx:          params.TxRunner,
		repo:        params.Repo,
		orderRepo:   params.OrderRepoFactory,
		productRepo: params.ProductRepoFactory,
	}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*models.Order, error) {
	if len(req.Details) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one line")
	}

	status := enums.OrderStatusPending
	if req.Status != nil {
		parsed, err := enums.ParseOrderStatus(*req.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
		}
		status = parsed
	}

	orderDate := time.Now().UTC()
	if req.OrderDate != nil {
		orderDate = req.OrderDate.UTC()
	}

	details := make([]models.OrderDetail, 0, len(req.Details))
	total := decimal.Zero
	for _, line := range req.Details {
		if line.Pieces < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "pieces must be at least 1")
		}
		if line.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
		}
		productID := line.ProductID
		details = append(details, models.OrderDetail{
			ProductID: &productID,
			Pieces:    line.Pieces,
			UnitPrice: line.UnitPrice,
		})
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Pieces))))
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := s.productRepo(tx)
		for _, line := range req.Details {
			product, err := productRepo.FindByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "product does not exist").
						WithDetails(map[string]any{"product_id": line.ProductID})
				}
				return err
			}
			ok, err := productRepo.ReserveStock(ctx, line.ProductID, line.Pieces)
			if err != nil {
				return err
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").
					WithDetails(map[string]any{
						"stock":      fmt.Sprintf("insufficient stock for %s: %d available", product.Name, product.Stock),
						"product_id": line.ProductID,
						"requested":  line.Pieces,
					})
			}
		}

		order, err := s.orderRepo(tx).Create(ctx, &models.Order{
			UserID:    userID,
			OrderDate: orderDate,
			Status:    status,
			Total:     total,
			Details:   details,
		})
		if err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil {
			return nil, coded
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}
	return created, nil
}

func (s *service) List(ctx context.Context, actorID uuid.UUID, actorRole enums.Role, req ListRequest) (*pagination.Page[models.Order], error) {
	filter := ListFilter{
		SortDir: req.SortDir,
		Page:    req.Page,
	}
	if actorRole == enums.RoleVendor {
		filter.PreloadUser = true
	} else {
		filter.UserID = &actorID
	}
	if req.Status != nil {
		status, err := enums.ParseOrderStatus(*req.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
		}
		filter.Status = &status
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	page := pagination.NewPage(rows, req.Page, total)
	return &page, nil
}

func (s *service) Search(ctx context.Context, req SearchRequest) (*pagination.Page[models.Order], error) {
	rows, total, err := s.repo.Search(ctx, SearchFilter{
		Query:   req.Query,
		SortBy:  req.SortBy,
		SortDir: req.SortDir,
		Page:    req.Page,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search orders")
	}
	page := pagination.NewPage(rows, req.Page, total)
	return &page, nil
}

func (s *service) ListAll(ctx context.Context) ([]models.Order, error) {
	rows, err := s.repo.ListAllWithUsers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list all orders")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, actorID uuid.UUID, actorRole enums.Role, id uuid.UUID) (*models.Order, error) {
	return s.visibleOrder(ctx, actorID, actorRole, id)
}

func (s *service) Update(ctx context.Context, actorID uuid.UUID, actorRole enums.Role, id uuid.UUID, req UpdateOrderRequest) (*models.Order, error) {
	if _, err := s.visibleOrder(ctx, actorID, actorRole, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Status != nil {
		status, err := enums.ParseOrderStatus(*req.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
		}
		updates["status"] = status
	}
	if req.Total != nil {
		if req.Total.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "total cannot be negative")
		}
		updates["total"] = *req.Total
	}

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, actorID uuid.UUID, actorRole enums.Role, id uuid.UUID) error {
	if _, err := s.visibleOrder(ctx, actorID, actorRole, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete order")
	}
	return nil
}

func (s *service) ListDetails(ctx context.Context) ([]models.OrderDetail, error) {
	rows, err := s.repo.ListDetails(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list order details")
	}
	return rows, nil
}

func (s *service) GetDetail(ctx context.Context, id uuid.UUID) (*models.OrderDetail, error) {
	detail, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order detail not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order detail")
	}
	return detail, nil
}

func (s *service) CreateDetail(ctx context.Context, req CreateDetailRequest) (*models.OrderDetail, error) {
	if req.Pieces < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pieces must be at least 1")
	}
	if req.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if _, err := s.repo.FindByID(ctx, req.OrderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order")
	}

	productID := req.ProductID
	detail, err := s.repo.CreateDetail(ctx, &models.OrderDetail{
		OrderID:   req.OrderID,
		ProductID: &productID,
		Pieces:    req.Pieces,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order detail")
	}
	return detail, nil
}

func (s *service) UpdateDetail(ctx context.Context, id uuid.UUID, req UpdateDetailRequest) (*models.OrderDetail, error) {
	if _, err := s.GetDetail(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Pieces != nil {
		if *req.Pieces < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "pieces must be at least 1")
		}
		updates["pieces"] = *req.Pieces
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
		}
		updates["unit_price"] = *req.UnitPrice
	}

	detail, err := s.repo.UpdateDetail(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order detail")
	}
	return detail, nil
}

func (s *service) DeleteDetail(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetDetail(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteDetail(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete order detail")
	}
	return nil
}

// visibleOrder loads the order and enforces per-role visibility. Customers
// only ever see their own orders.
func (s *service) visibleOrder(ctx context.Context, actorID uuid.UUID, actorRole enums.Role, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order")
	}
	if actorRole != enums.RoleVendor && order.UserID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}
