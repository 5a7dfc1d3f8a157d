package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RafaGarcia5/grocerease-api/pkg/pagination"
)

// OrderLineRequest is a single line of a direct order submission.
type OrderLineRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Pieces    int             `json:"pieces" validate:"required,gte=1"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
}

// CreateOrderRequest is the payload for direct order creation. The client
// never supplies a total; it is recomputed from the lines.
type CreateOrderRequest struct {
	OrderDate *time.Time         `json:"order_date,omitempty"`
	Status    *string            `json:"status,omitempty" validate:"omitempty,oneof=pending send delivered cancel"`
	Details   []OrderLineRequest `json:"details" validate:"required,min=1,dive"`
}

// UpdateOrderRequest carries the mutable order fields.
type UpdateOrderRequest struct {
	Status *string          `json:"status,omitempty" validate:"omitempty,oneof=pending send delivered cancel"`
	Total  *decimal.Decimal `json:"total,omitempty"`
}

// ListRequest narrows the order listing.
type ListRequest struct {
	Status  *string
	SortDir string
	Page    pagination.Params
}

// SearchRequest matches orders by id or buyer email substring.
type SearchRequest struct {
	Query   string
	SortBy  string
	SortDir string
	Page    pagination.Params
}

// CreateDetailRequest inserts a raw order line.
type CreateDetailRequest struct {
	OrderID   uuid.UUID       `json:"order_id" validate:"required"`
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Pieces    int             `json:"pieces" validate:"required,gte=1"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
}

// UpdateDetailRequest carries the mutable order line fields.
type UpdateDetailRequest struct {
	Pieces    *int             `json:"pieces,omitempty" validate:"omitempty,gte=1"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}
