package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/RafaGarcia5/grocerease-api/pkg/db/models"
	"github.com/RafaGarcia5/grocerease-api/pkg/enums"
	"github.com/RafaGarcia5/grocerease-api/pkg/types"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID               `json:"id"`
	Name        string                  `json:"name"`
	Email       string                  `json:"email"`
	Role        enums.Role              `json:"role"`
	Payment     enums.PaymentPreference `json:"payment"`
	Phone       *string                 `json:"phone,omitempty"`
	Address     *types.Address          `json:"address,omitempty"`
	LastLoginAt *time.Time              `json:"last_login_at,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// AdminUserDTO extends UserDTO with the user's order history for the
// vendor-facing account overview.
type AdminUserDTO struct {
	UserDTO
	Orders []models.Order `json:"orders"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Name         string
	Email        string
	PasswordHash string
	Role         enums.Role
	Payment      enums.PaymentPreference
	Phone        *string
	Address      *types.Address
}

// UpdateUserDTO carries the profile fields a user may change.
type UpdateUserDTO struct {
	Name    *string
	Email   *string
	Payment *enums.PaymentPreference
	Phone   *string
	Address *types.Address
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Payment:     u.Payment,
		Phone:       u.Phone,
		Address:     u.Address,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func FromModelWithOrders(u *models.User) *AdminUserDTO {
	if u == nil {
		return nil
	}

	orders := u.Orders
	if orders == nil {
		orders = []models.Order{}
	}
	return &AdminUserDTO{UserDTO: *FromModel(u), Orders: orders}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.RoleCustomer
	}
	payment := c.Payment
	if payment == "" {
		payment = enums.PaymentPreferenceCard
	}

	return &models.User{
		ID:           uuid.New(),
		Name:         c.Name,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Role:         role,
		Payment:      payment,
		Phone:        c.Phone,
		Address:      c.Address,
	}
}
