package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/RafaGarcia5/grocerease-api/internal/users"
	pkgAuth "github.com/RafaGarcia5/grocerease-api/pkg/auth"
	"github.com/RafaGarcia5/grocerease-api/pkg/auth/session"
	"github.com/RafaGarcia5/grocerease-api/pkg/config"
	"github.com/RafaGarcia5/grocerease-api/pkg/db/models"
	"github.com/RafaGarcia5/grocerease-api/pkg/enums"
	pkgerrors "github.com/RafaGarcia5/grocerease-api/pkg/errors"
	"github.com/RafaGarcia5/grocerease-api/pkg/security"
	"github.com/RafaGarcia5/grocerease-api/pkg/types"
)

// RegisterRequest contains the payload required for onboarding a new account.
type RegisterRequest struct {
	Name                 string         `json:"name" validate:"required"`
	Email                string         `json:"email" validate:"required,email"`
	Password             string         `json:"password" validate:"required,min=8"`
	PasswordConfirmation string         `json:"password_confirmation" validate:"required,eqfield=Password"`
	Role                 *string        `json:"role,omitempty" validate:"omitempty,oneof=customer vendor"`
	Payment              *string        `json:"payment,omitempty" validate:"omitempty,oneof=cash card"`
	Phone                *string        `json:"phone,omitempty"`
	Address              *types.Address `json:"address,omitempty"`
}

// RegisterService handles the onboarding transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
}

// TxRunner executes a function within a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	TxRunner        TxRunner
	UserRepoFactory func(tx *gorm.DB) registerUserRepository
	SessionManager  sessionManager
	PasswordConfig  config.PasswordConfig
	JWTConfig       config.JWTConfig
}

type registerService struct {
	tx          TxRunner
	userRepo    func(tx *gorm.DB) registerUserRepository
	session     sessionManager
	passwordCfg config.PasswordConfig
	jwtCfg      config.JWTConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.SessionManager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session manager required")
	}
	if params.UserRepoFactory == nil {
		params.UserRepoFactory = func(tx *gorm.DB) registerUserRepository {
			return users.NewRepository(tx)
		}
	}
	return &registerService{
		tx:          params.TxRunner,
		userRepo:    params.UserRepoFactory,
		session:     params.SessionManager,
		passwordCfg: params.PasswordConfig,
		jwtCfg:      params.JWTConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	role := enums.RoleCustomer
	if req.Role != nil {
		parsed, err := enums.ParseRole(*req.Role)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
		}
		role = parsed
	}

	payment := enums.PaymentPreferenceCard
	if req.Payment != nil {
		parsed, err := enums.ParsePaymentPreference(*req.Payment)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment preference")
		}
		payment = parsed
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var user *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.userRepo(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		created, err := userRepo.Create(ctx, users.CreateUserDTO{
			Name:         req.Name,
			Email:        email,
			PasswordHash: passwordHash,
			Role:         role,
			Payment:      payment,
			Phone:        req.Phone,
			Address:      req.Address,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if _, err := s.session.Generate(ctx, accessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store session")
	}

	return &RegisterResponse{
		AccessToken: accessToken,
		User:        users.FromModel(user),
	}, nil
}
