package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/RafaGarcia5/grocerease-api/pkg/enums"
	"github.com/RafaGarcia5/grocerease-api/pkg/types"
)

// User represents the canonical identity entity.
type User struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string                  `gorm:"column:name;not null" json:"name"`
	Email        string                  `gorm:"column:email;type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string                  `gorm:"column:password_hash;not null" json:"-"`
	Role         enums.Role              `gorm:"column:role;type:text;not null;default:'customer'" json:"role"`
	Payment      enums.PaymentPreference `gorm:"column:payment;type:text;not null;default:'card'" json:"payment"`
	Phone        *string                 `gorm:"column:phone" json:"phone,omitempty"`
	Address      *types.Address          `gorm:"column:address;type:jsonb;serializer:json" json:"address,omitempty"`
	LastLoginAt  *time.Time              `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	Orders       []Order                 `gorm:"foreignKey:UserID" json:"orders,omitempty"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
