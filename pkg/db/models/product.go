package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RafaGarcia5/grocerease-api/pkg/enums"
)

// Product represents the canonical catalog listing.
type Product struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VendorID    uuid.UUID           `gorm:"column:vendor_id;type:uuid;not null" json:"vendor_id"`
	CategoryID  *uuid.UUID          `gorm:"column:category_id;type:uuid" json:"category_id,omitempty"`
	Name        string              `gorm:"column:name;not null" json:"name"`
	Description *string             `gorm:"column:description" json:"description,omitempty"`
	Price       decimal.Decimal     `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	Stock       int                 `gorm:"column:stock;not null;default:0" json:"stock"`
	ImageURL    *string             `gorm:"column:image_url" json:"image_url,omitempty"`
	Status      enums.ProductStatus `gorm:"column:status;type:text;not null;default:'active'" json:"status"`
	Category    *Category           `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
