package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/RafaGarcia5/grocerease-api/pkg/enums"
)

// Cart is the buyer-scoped container of pending items. At most one cart per
// user may be active at a time, enforced by a partial unique index.
type Cart struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID        `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	Status       enums.CartStatus `gorm:"column:status;type:text;not null;default:'active'" json:"status"`
	CheckedOutAt *time.Time       `gorm:"column:checked_out_at" json:"checked_out_at,omitempty"`
	Items        []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
