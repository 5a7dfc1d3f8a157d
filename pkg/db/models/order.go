package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RafaGarcia5/grocerease-api/pkg/enums"
)

// Order represents a finalized purchase produced from a cart or a direct
// customer submission. StripeSessionID is unique so payment reconciliation
// can run repeatedly without duplicating orders.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	OrderDate       time.Time         `gorm:"column:order_date;not null" json:"order_date"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	Total           decimal.Decimal   `gorm:"column:total;type:numeric(10,2);not null" json:"total"`
	StripeSessionID *string           `gorm:"column:stripe_session_id;uniqueIndex" json:"stripe_session_id,omitempty"`
	Details         []OrderDetail     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"details,omitempty"`
	User            *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
