package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RafaGarcia5/grocerease-api/pkg/db/models"
	"github.com/RafaGarcia5/grocerease-api/pkg/enums"
	pkgerrors "github.com/RafaGarcia5/grocerease-api/pkg/errors"
	"github.com/RafaGarcia5/grocerease-api/pkg/types"
)

// UpdateUserRequest carries the mutable profile fields.
type UpdateUserRequest struct {
	Name    *string        `json:"name,omitempty" validate:"omitempty,min=1"`
	Email   *string        `json:"email,omitempty" validate:"omitempty,email"`
	Payment *string        `json:"payment,omitempty" validate:"omitempty,oneof=cash card"`
	Phone   *string        `json:"phone,omitempty"`
	Address *types.Address `json:"address,omitempty"`
}

// Service defines the behavior needed by the user controllers.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	Update(ctx context.Context, actorID uuid.UUID, actorRole enums.Role, targetID uuid.UUID, req UpdateUserRequest) (*UserDTO, error)
	Delete(ctx context.Context, actorID uuid.UUID, actorRole enums.Role, targetID uuid.UUID) error
	ListAll(ctx context.Context) ([]AdminUserDTO, error)
}

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, dto UpdateUserDTO) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListAllWithOrders(ctx context.Context) ([]models.User, error)
}

type service struct {
	repo userRepository
}

// NewService constructs a users service with the provided repository.
func NewService(repo userRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return FromModel(user), nil
}

func (s *service) Update(ctx context.Context, actorID uuid.UUID, actorRole enums.Role, targetID uuid.UUID, req UpdateUserRequest) (*UserDTO, error) {
	if err := s.authorize(actorID, actorRole, targetID); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	dto := UpdateUserDTO{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing.ID != targetID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}
		dto.Email = &email
	}

	if req.Payment != nil {
		payment, err := enums.ParsePaymentPreference(*req.Payment)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment preference")
		}
		dto.Payment = &payment
	}

	updated, err := s.repo.UpdateProfile(ctx, targetID, dto)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, actorID uuid.UUID, actorRole enums.Role, targetID uuid.UUID) error {
	if err := s.authorize(actorID, actorRole, targetID); err != nil {
		return err
	}

	if _, err := s.repo.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}
	return nil
}

func (s *service) ListAll(ctx context.Context) ([]AdminUserDTO, error) {
	rows, err := s.repo.ListAllWithOrders(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}

	out := make([]AdminUserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModelWithOrders(&rows[i]))
	}
	return out, nil
}

// Vendors may manage any account; everyone else only their own.
func (s *service) authorize(actorID uuid.UUID, actorRole enums.Role, targetID uuid.UUID) error {
	if actorID == targetID || actorRole == enums.RoleVendor {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "cannot manage another user")
}
